package transport

import (
	"io"
	"net"
	"sync"

	"github.com/pion/logging"
)

// readBufferSize bounds a single conn.Read call. It has no protocol
// meaning; frame.Parser reassembles frames across arbitrary chunk
// boundaries regardless of how this is sized.
const readBufferSize = 4096

// TCPConfig configures a TCP transport.
type TCPConfig struct {
	// DialAddr, if set, makes Start() establish an outbound connection
	// (e.g. "192.168.1.50:5277").
	DialAddr string

	// Listener, if set, makes Start() Accept() a single inbound
	// connection from it and then stop listening.
	Listener net.Listener

	// Conn, if set, is used directly without dialing or accepting.
	// Useful for wrapping a connection handed off by other glue code
	// (USB accessory bridges, an already-accepted net.Conn, etc).
	Conn net.Conn

	Callbacks Callbacks

	// LoggerFactory builds the transport's logger. If nil, logging is
	// disabled.
	LoggerFactory logging.LoggerFactory
}

// TCP is a Transport backed by a single net.Conn, either dialed,
// accepted from a net.Listener, or supplied ready-made.
type TCP struct {
	cfg TCPConfig
	log logging.LeveledLogger

	mu        sync.Mutex
	conn      net.Conn
	started   bool
	stopped   bool
	connected bool

	wg sync.WaitGroup
}

// NewTCP creates a TCP transport from the given configuration. Exactly
// one of DialAddr, Listener or Conn should be set.
func NewTCP(cfg TCPConfig) *TCP {
	t := &TCP{cfg: cfg}
	if cfg.LoggerFactory != nil {
		t.log = cfg.LoggerFactory.NewLogger("transport-tcp")
	}
	return t
}

// Start connects (or accepts) and begins the read loop in a background
// goroutine, reporting Callbacks.Connected once established.
func (t *TCP) Start() error {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return ErrAlreadyStarted
	}
	t.started = true
	t.mu.Unlock()

	t.wg.Add(1)
	go t.run()
	return nil
}

func (t *TCP) run() {
	defer t.wg.Done()

	conn, err := t.establish()
	if err != nil {
		if t.log != nil {
			t.log.Errorf("establishing connection: %v", err)
		}
		if t.cfg.Callbacks.Error != nil {
			t.cfg.Callbacks.Error(err.Error())
		}
		return
	}

	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		conn.Close()
		return
	}
	t.conn = conn
	t.connected = true
	t.mu.Unlock()

	if t.log != nil {
		t.log.Infof("connected to %s", conn.RemoteAddr())
	}
	if t.cfg.Callbacks.Connected != nil {
		t.cfg.Callbacks.Connected()
	}

	t.readLoop(conn)
}

func (t *TCP) establish() (net.Conn, error) {
	switch {
	case t.cfg.Conn != nil:
		return t.cfg.Conn, nil
	case t.cfg.Listener != nil:
		return t.cfg.Listener.Accept()
	default:
		return net.Dial("tcp", t.cfg.DialAddr)
	}
}

func (t *TCP) readLoop(conn net.Conn) {
	buf := make([]byte, readBufferSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 && t.cfg.Callbacks.DataReceived != nil {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			t.cfg.Callbacks.DataReceived(chunk)
		}
		if err != nil {
			t.mu.Lock()
			alreadyStopped := t.stopped
			t.connected = false
			t.mu.Unlock()

			if err != io.EOF && !alreadyStopped {
				if t.log != nil {
					t.log.Warnf("read error: %v", err)
				}
				if t.cfg.Callbacks.Error != nil {
					t.cfg.Callbacks.Error(err.Error())
				}
			}
			if t.cfg.Callbacks.Disconnected != nil {
				t.cfg.Callbacks.Disconnected()
			}
			return
		}
	}
}

// Write sends data on the underlying connection. If not yet connected,
// the data is dropped and reported through Callbacks.Error.
func (t *TCP) Write(data []byte) {
	t.mu.Lock()
	conn := t.conn
	connected := t.connected
	t.mu.Unlock()

	if !connected || conn == nil {
		if t.log != nil {
			t.log.Warn("write while not connected, dropping")
		}
		if t.cfg.Callbacks.Error != nil {
			t.cfg.Callbacks.Error(ErrNotConnected.Error())
		}
		return
	}

	if _, err := conn.Write(data); err != nil {
		if t.log != nil {
			t.log.Errorf("write error: %v", err)
		}
		if t.cfg.Callbacks.Error != nil {
			t.cfg.Callbacks.Error(err.Error())
		}
	}
}

// IsConnected reports whether the underlying connection is established.
func (t *TCP) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

// Stop closes the connection and stops the read loop. Stop is idempotent
// and safe to call even if Start never completed.
func (t *TCP) Stop() error {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return nil
	}
	t.stopped = true
	conn := t.conn
	t.connected = false
	t.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if t.cfg.Listener != nil {
		t.cfg.Listener.Close()
	}
	t.wg.Wait()
	return nil
}

var _ Transport = (*TCP)(nil)
