package transport

import "sync"

// Replay is a Transport test double. It never touches the network:
// Start/Stop just flip a flag, Write captures what was sent for later
// inspection, and tests drive the other side of the conversation with
// Feed/SimulateConnect/SimulateDisconnect. It exists for deterministic
// session and messenger tests that need to script a phone's side of a
// conversation without a real socket.
type Replay struct {
	callbacks Callbacks

	mu        sync.Mutex
	started   bool
	connected bool
	written   [][]byte
}

// NewReplay creates a Replay transport reporting through cb.
func NewReplay(cb Callbacks) *Replay {
	return &Replay{callbacks: cb}
}

// Start marks the transport started. It does not itself connect; call
// SimulateConnect once the test is ready to report an established link.
func (r *Replay) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = true
	return nil
}

// Stop marks the transport stopped.
func (r *Replay) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = false
	r.connected = false
	return nil
}

// Write records data for later retrieval via Written, regardless of
// connection state. Tests often want to see exactly what was sent even
// across a simulated disconnect.
func (r *Replay) Write(data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)

	r.mu.Lock()
	r.written = append(r.written, cp)
	r.mu.Unlock()
}

// IsConnected reports the simulated connection state.
func (r *Replay) IsConnected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connected
}

// Feed delivers data to the owner as if it had arrived over the wire.
func (r *Replay) Feed(data []byte) {
	if r.callbacks.DataReceived != nil {
		r.callbacks.DataReceived(data)
	}
}

// SimulateConnect marks the transport connected and fires Callbacks.Connected.
func (r *Replay) SimulateConnect() {
	r.mu.Lock()
	r.connected = true
	r.mu.Unlock()

	if r.callbacks.Connected != nil {
		r.callbacks.Connected()
	}
}

// SimulateDisconnect marks the transport disconnected and fires Callbacks.Disconnected.
func (r *Replay) SimulateDisconnect() {
	r.mu.Lock()
	r.connected = false
	r.mu.Unlock()

	if r.callbacks.Disconnected != nil {
		r.callbacks.Disconnected()
	}
}

// SimulateError fires Callbacks.Error without changing connection state.
func (r *Replay) SimulateError(message string) {
	if r.callbacks.Error != nil {
		r.callbacks.Error(message)
	}
}

// Written returns every chunk passed to Write so far, in order.
func (r *Replay) Written() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]byte, len(r.written))
	copy(out, r.written)
	return out
}

// ClearWritten discards the recorded Write history.
func (r *Replay) ClearWritten() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.written = nil
}

var _ Transport = (*Replay)(nil)
