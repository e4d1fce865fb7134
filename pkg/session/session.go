// Package session implements the head-unit-side connection lifecycle:
// version exchange, TLS handshake, service discovery, ping liveness,
// channel routing and graceful shutdown, built on top of pkg/messenger,
// pkg/cryptor and pkg/channel.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pion/logging"
	"golang.org/x/crypto/hkdf"

	"github.com/openauto/prodigy-core/pkg/channel"
	"github.com/openauto/prodigy-core/pkg/cryptor"
	"github.com/openauto/prodigy-core/pkg/messenger"
	"github.com/openauto/prodigy-core/pkg/transport"
)

// sessionTagLength is the size, in bytes, of the derived log-correlation
// tag before hex encoding.
const sessionTagLength = 8

// sessionTagLabel is the RFC 5705 exporter label used to derive a
// session's log-correlation tag from its TLS keying material. It has no
// wire meaning; it only needs to be distinct from any label a real TLS
// extension might use.
const sessionTagLabel = "oaa-prodigy-session-tag"

// Callbacks reports session lifecycle events upward, mirroring the
// reference AASession's stateChanged/channelOpened/disconnected/
// audioFocusChanged signals.
type Callbacks struct {
	OnStateChanged        func(State)
	OnChannelOpened       func(channel.ID)
	OnChannelOpenRejected func(channel.ID)
	OnDisconnected        func(DisconnectReason)

	// OnAudioFocusChanged is called when the phone requests an audio
	// focus change over the control channel. focusType is forwarded
	// opaque; Session does not interpret it.
	OnAudioFocusChanged      func(focusType []byte)
	OnNavigationFocusRequest func(payload []byte)
	OnVoiceSessionRequest    func(payload []byte)
}

// NewTransport builds the Transport a Session drives, given the
// Callbacks the Session needs wired to it. Callers pass a closure over
// transport.NewTCP or transport.NewReplay so Session can supply its own
// callback methods without a transport existing yet at construction
// time.
type NewTransport func(transport.Callbacks) transport.Transport

// Session owns one transport, one cryptor, one messenger and the
// channel-handler registry, and drives the
// Idle→...→Active→ShuttingDown→Disconnected state machine.
type Session struct {
	id        uuid.UUID
	cfg       Config
	callbacks Callbacks
	log       logging.LeveledLogger

	transport transport.Transport
	cryptor   *cryptor.Cryptor
	messenger *messenger.Messenger
	control   *controlChannel

	mu       sync.Mutex
	state    State
	handlers map[uint8]channel.Handler
	tag      string

	stateTimer  *time.Timer
	pingTimer   *time.Timer
	missedPings int
}

// New constructs a Session. newTransport is called once, during
// construction, to build the underlying Transport wired to the
// Session's own callback methods.
func New(newTransport NewTransport, cfg Config, callbacks Callbacks, lf logging.LoggerFactory) *Session {
	s := &Session{
		id:        uuid.New(),
		cfg:       cfg.WithDefaults(),
		callbacks: callbacks,
		cryptor:   &cryptor.Cryptor{},
		handlers:  make(map[uint8]channel.Handler),
		state:     Idle,
	}
	if lf != nil {
		s.log = lf.NewLogger("session")
	}

	tr := newTransport(transport.Callbacks{
		Connected:    s.onTransportConnected,
		Disconnected: s.onTransportDisconnected,
		DataReceived: s.onDataReceived,
		Error:        s.onTransportError,
	})
	s.transport = tr

	s.messenger = messenger.New(messenger.Config{
		Transport: tr,
		Cryptor:   s.cryptor,
		Callbacks: messenger.Callbacks{
			OnMessage:           s.onMessage,
			OnHandshakeComplete: s.onHandshakeComplete,
		},
		LoggerFactory: lf,
	})
	s.control = newControlChannel(s.messenger)

	return s
}

// Start begins connecting. It returns ErrAlreadyStarted if the session
// has already left Idle.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.state != Idle {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.setStateLocked(Connecting)
	s.mu.Unlock()
	s.emitStateChanged(Connecting)

	if err := s.cryptor.Init(cryptor.Client); err != nil {
		return err
	}
	return s.transport.Start()
}

// Stop initiates a graceful shutdown: sends ShutdownRequest(reason) and
// waits up to VersionTimeout (5s by default, since there is no
// dedicated shutdown timeout in the configuration) for a
// ShutdownResponse before forcing Disconnected(Timeout). Stop is a
// no-op outside Active.
func (s *Session) Stop(reason byte) {
	s.mu.Lock()
	if s.state != Active {
		s.mu.Unlock()
		return
	}
	s.setStateLocked(ShuttingDown)
	s.armTimerLocked(s.cfg.VersionTimeout)
	s.mu.Unlock()
	s.emitStateChanged(ShuttingDown)

	s.control.sendShutdownRequest(reason)
}

// RegisterHandler binds h to its ChannelID. h.Send calls route through
// the Session's Messenger. Registration must happen before the phone's
// ChannelOpenRequest for that channel arrives, typically right after
// New.
func (s *Session) RegisterHandler(h channel.Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uint8(h.ChannelID())
	if _, exists := s.handlers[id]; exists {
		return ErrChannelAlreadyRegistered
	}
	if sa, ok := h.(channel.SenderAware); ok {
		sa.SetSender(s)
	}
	s.handlers[id] = h
	return nil
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ID returns the session's unique identifier, assigned at construction.
// Embedders running more than one concurrent conversation (one per USB
// endpoint or TCP accept) use it to correlate log lines and metrics
// across sessions.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Send implements channel.Sender, letting a registered Handler emit
// messages on its own channel.
func (s *Session) Send(channelID channel.ID, messageID uint16, payload []byte) {
	s.messenger.Send(uint8(channelID), messageID, payload)
}

// SendAudioFocusResponse lets the caller answer a forwarded
// OnAudioFocusChanged event.
func (s *Session) SendAudioFocusResponse(payload []byte) {
	s.control.sendAudioFocusResponse(payload)
}

// SendNavigationFocusResponse lets the caller answer a forwarded
// OnNavigationFocusRequest event.
func (s *Session) SendNavigationFocusResponse(payload []byte) {
	s.control.sendNavigationFocusResponse(payload)
}

func (s *Session) onDataReceived(data []byte) {
	s.messenger.Feed(data)
}

func (s *Session) onTransportConnected() {
	s.mu.Lock()
	if s.state != Connecting {
		s.mu.Unlock()
		return
	}
	s.setStateLocked(VersionExchange)
	s.armTimerLocked(s.cfg.VersionTimeout)
	s.mu.Unlock()
	s.emitStateChanged(VersionExchange)

	s.control.sendVersionRequest(s.cfg.ProtocolMajor, s.cfg.ProtocolMinor)
}

func (s *Session) onTransportDisconnected() {
	s.mu.Lock()
	if s.state == Disconnected {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.disconnect(TransportError)
}

func (s *Session) onTransportError(message string) {
	if s.log != nil {
		s.log.Errorf("transport error: %s", message)
	}
}

func (s *Session) onHandshakeComplete() {
	s.mu.Lock()
	if s.state != TLSHandshake {
		s.mu.Unlock()
		return
	}
	s.stopTimerLocked()
	s.mu.Unlock()

	s.deriveSessionTag()
	s.control.sendAuthComplete(true)

	s.mu.Lock()
	s.setStateLocked(ServiceDiscovery)
	s.armTimerLocked(s.cfg.DiscoveryTimeout)
	s.mu.Unlock()
	s.emitStateChanged(ServiceDiscovery)
}

// onMessage dispatches every decrypted, assembled, non-handshake
// message. Control-channel traffic drives the state machine; all other
// channels route to their registered Handler.
func (s *Session) onMessage(channelID uint8, messageID uint16, payload []byte) {
	if channelID == uint8(channel.Control) {
		s.onControlMessage(messageID, payload)
		return
	}

	s.mu.Lock()
	h, ok := s.handlers[channelID]
	s.mu.Unlock()
	if !ok {
		if s.log != nil {
			s.log.Warnf("stub: message on unregistered channel %d, msgId=0x%04x, len=%d", channelID, messageID, len(payload))
		}
		return
	}
	h.OnMessage(messageID, payload)
}

func (s *Session) onControlMessage(messageID uint16, payload []byte) {
	switch messageID {
	case channel.MsgVersionResponse:
		s.handleVersionResponse(payload)
	case channel.MsgServiceDiscoveryRequest:
		s.handleServiceDiscoveryRequest()
	case channel.MsgChannelOpenRequest:
		s.handleChannelOpenRequest(payload)
	case channel.MsgPingRequest:
		if ts, ok := decodeTimestamp(payload); ok {
			s.control.sendPingResponse(ts)
		}
	case channel.MsgPingResponse:
		s.handlePingResponse()
	case channel.MsgShutdownRequest:
		s.handleShutdownRequest(payload)
	case channel.MsgShutdownResponse:
		s.handleShutdownResponse()
	case channel.MsgNavigationFocusRequest:
		if s.callbacks.OnNavigationFocusRequest != nil {
			s.callbacks.OnNavigationFocusRequest(payload)
		}
	case channel.MsgVoiceSessionRequest:
		if s.callbacks.OnVoiceSessionRequest != nil {
			s.callbacks.OnVoiceSessionRequest(payload)
		}
	case channel.MsgAudioFocusRequest:
		if s.callbacks.OnAudioFocusChanged != nil {
			s.callbacks.OnAudioFocusChanged(payload)
		}
	default:
		if s.log != nil {
			s.log.Warnf("control: unhandled msgId=0x%04x, len=%d", messageID, len(payload))
		}
	}
}

func (s *Session) handleVersionResponse(payload []byte) {
	major, _, ok := decodeVersionResponse(payload)
	s.mu.Lock()
	if s.state != VersionExchange {
		s.mu.Unlock()
		return
	}
	if !ok || major != s.cfg.ProtocolMajor {
		s.mu.Unlock()
		s.disconnect(VersionMismatch)
		return
	}
	s.stopTimerLocked()
	s.setStateLocked(TLSHandshake)
	s.armTimerLocked(s.cfg.HandshakeTimeout)
	s.mu.Unlock()
	s.emitStateChanged(TLSHandshake)

	s.messenger.DriveHandshake()
}

func (s *Session) handleServiceDiscoveryRequest() {
	s.mu.Lock()
	if s.state != ServiceDiscovery {
		s.mu.Unlock()
		return
	}
	s.stopTimerLocked()
	ids := make([]uint8, 0, len(s.handlers))
	for id := range s.handlers {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	s.control.sendServiceDiscoveryResponse(buildServiceDiscoveryResponse(s.cfg, ids))

	s.mu.Lock()
	s.setStateLocked(Active)
	s.missedPings = 0
	s.mu.Unlock()
	s.emitStateChanged(Active)
	s.schedulePingTick()
}

func (s *Session) handleChannelOpenRequest(payload []byte) {
	targetID, ok := decodeChannelOpenRequest(payload)
	if !ok {
		return
	}

	s.mu.Lock()
	h, hasHandler := s.handlers[targetID]
	s.mu.Unlock()

	s.control.sendChannelOpenResponse(targetID, hasHandler)

	cid := channel.ID(targetID)
	if !hasHandler {
		if s.callbacks.OnChannelOpenRejected != nil {
			s.callbacks.OnChannelOpenRejected(cid)
		}
		return
	}
	h.OnChannelOpened()
	if s.callbacks.OnChannelOpened != nil {
		s.callbacks.OnChannelOpened(cid)
	}
}

func (s *Session) handlePingResponse() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.missedPings = 0
}

func (s *Session) handleShutdownRequest(payload []byte) {
	_ = decodeShutdownReason(payload)
	s.control.sendShutdownResponse()
	s.disconnect(Normal)
}

func (s *Session) handleShutdownResponse() {
	s.mu.Lock()
	if s.state != ShuttingDown {
		s.mu.Unlock()
		return
	}
	s.stopTimerLocked()
	s.mu.Unlock()
	s.disconnect(UserRequested)
}

// schedulePingTick arms the next ping tick, but only while still
// Active; entering any other state lets the timer expire without
// rearming.
func (s *Session) schedulePingTick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Active {
		return
	}
	s.pingTimer = time.AfterFunc(s.cfg.PingInterval, s.onPingTick)
}

func (s *Session) onPingTick() {
	s.mu.Lock()
	if s.state != Active {
		s.mu.Unlock()
		return
	}
	if s.missedPings >= s.cfg.pingMissBudget() {
		s.mu.Unlock()
		s.disconnect(PingTimeout)
		return
	}
	s.missedPings++
	s.mu.Unlock()

	s.control.sendPingRequest(time.Now().UnixMilli())
	s.schedulePingTick()
}

// disconnect tears the session down from any state and reports reason
// exactly once.
func (s *Session) disconnect(reason DisconnectReason) {
	s.mu.Lock()
	if s.state == Disconnected {
		s.mu.Unlock()
		return
	}
	s.stopTimerLocked()
	if s.pingTimer != nil {
		s.pingTimer.Stop()
		s.pingTimer = nil
	}
	s.setStateLocked(Disconnected)
	s.mu.Unlock()
	s.emitStateChanged(Disconnected)

	s.cryptor.Deinit()
	s.transport.Stop()

	if s.callbacks.OnDisconnected != nil {
		s.callbacks.OnDisconnected(reason)
	}
}

// deriveSessionTag computes a short, opaque log-correlation tag from
// the now-completed TLS session's exported keying material. It is never
// sent on the wire and carries no secrecy requirement beyond not being
// the raw keying material itself: it exists purely so two log lines
// about the same TLS session can be tied together without printing key
// material or relying on timing.
func (s *Session) deriveSessionTag() {
	km, err := s.cryptor.ExportKeyingMaterial(sessionTagLabel, sha256.Size)
	if err != nil {
		return
	}
	tag := make([]byte, sessionTagLength)
	if _, err := io.ReadFull(hkdf.Expand(sha256.New, km, []byte("log-tag")), tag); err != nil {
		return
	}

	s.mu.Lock()
	s.tag = hex.EncodeToString(tag)
	s.mu.Unlock()

	if s.log != nil {
		s.log.Infof("session %s: handshake complete, tag=%s", s.id, s.tag)
	}
}

// onStateTimeout handles every per-state timer's expiry uniformly:
// expiration of any non-terminal, non-Active state's timer transitions
// to Disconnected(Timeout).
func (s *Session) onStateTimeout() {
	s.disconnect(Timeout)
}

func (s *Session) setStateLocked(newState State) {
	s.state = newState
}

// emitStateChanged reports a state transition. Call it only after
// releasing s.mu, so a callback that calls back into the Session (e.g.
// reading State() or calling Stop()) cannot deadlock.
func (s *Session) emitStateChanged(newState State) {
	if s.callbacks.OnStateChanged != nil {
		s.callbacks.OnStateChanged(newState)
	}
}

func (s *Session) armTimerLocked(d time.Duration) {
	s.stopTimerLocked()
	s.stateTimer = time.AfterFunc(d, s.onStateTimeout)
}

func (s *Session) stopTimerLocked() {
	if s.stateTimer != nil {
		s.stateTimer.Stop()
		s.stateTimer = nil
	}
}

var _ channel.Sender = (*Session)(nil)
