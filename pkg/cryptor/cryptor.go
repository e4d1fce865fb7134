// Package cryptor bridges the frame-level Encrypted payload to a real
// TLS implementation via a pair of in-memory byte queues, the same
// memory-BIO technique OpenSSL-based Android Auto stacks use.
// crypto/tls never sees a socket; it only ever talks to the two
// memBIOs wrapped by bioConn.
package cryptor

import (
	"crypto/tls"
	"sync"
	"sync/atomic"
)

// Cryptor drives one TLS session over in-memory queues. It is not safe
// for concurrent use: the session that owns it calls every method from
// its single executor, matching the rest of the core's cooperative
// concurrency model.
type Cryptor struct {
	role Role

	incoming *memBIO // bytes written in from the wire
	outgoing *memBIO // bytes to be drained out to the wire
	conn     *bioConn
	tlsConn  *tls.Conn

	handshakeOnce sync.Once
	handshakeDone chan struct{}
	handshakeErr  error
	active        atomic.Bool
}

// Init (re-)initializes the Cryptor for role, discarding any prior
// session. Init is idempotent and safe to call on a fresh or
// already-initialized Cryptor, mirroring the reference deinit-then-
// init-again contract.
func (c *Cryptor) Init(role Role) error {
	if !role.IsValid() {
		return ErrInvalidRole
	}
	c.Deinit()

	cert, err := tls.X509KeyPair([]byte(certificatePEM), []byte(privateKeyPEM))
	if err != nil {
		return err
	}

	c.role = role
	c.incoming = newMemBIO()
	c.outgoing = newMemBIO()
	c.conn = newBioConn(c.incoming, c.outgoing)
	c.handshakeDone = make(chan struct{})
	c.handshakeOnce = sync.Once{}
	c.handshakeErr = nil
	c.active.Store(false)

	cfg := &tls.Config{
		Certificates:       []tls.Certificate{cert},
		InsecureSkipVerify: true, // Android Auto does not validate the head unit's identity.
	}

	if role == Client {
		c.tlsConn = tls.Client(c.conn, cfg)
	} else {
		c.tlsConn = tls.Server(c.conn, cfg)
	}
	return nil
}

// Deinit releases the TLS session and both memBIOs. It is idempotent.
func (c *Cryptor) Deinit() {
	if c.incoming != nil {
		c.incoming.Close()
	}
	if c.outgoing != nil {
		c.outgoing.Close()
	}
	c.tlsConn = nil
	c.incoming = nil
	c.outgoing = nil
	c.conn = nil
	c.active.Store(false)
}

// DoHandshake drives the handshake forward and returns true exactly
// once it completes, after which IsActive is true and further calls
// keep returning true. Go's crypto/tls exposes no WANT_READ/WANT_WRITE
// distinction: Handshake either blocks on conn.Read or returns, so the
// first call launches it on its own goroutine and every call,
// including that one, polls non-blockingly for completion. Bytes the
// handshake wants to send appear on the outgoing queue regardless of
// whether this call is the one driving it or a later poll.
//
// This non-blocking form suits a caller that is already polling both
// sides of a handshake in a loop. A caller driven by discrete inbound
// events instead, one carrier message at a time, wants
// DriveHandshakeStep, which waits for this step's output rather than
// risking a read that runs before the goroutine has produced anything.
func (c *Cryptor) DoHandshake() (bool, error) {
	if c.active.Load() {
		return true, nil
	}
	if c.tlsConn == nil {
		return false, ErrNotInitialized
	}

	c.handshakeOnce.Do(func() {
		go func() {
			c.handshakeErr = c.tlsConn.Handshake()
			close(c.handshakeDone)
		}()
	})

	select {
	case <-c.handshakeDone:
		if c.handshakeErr != nil {
			return false, c.handshakeErr
		}
		c.active.Store(true)
		return true, nil
	default:
		return false, nil
	}
}

// DriveHandshakeStep launches the handshake if it has not started, then
// blocks until this step either produces bytes to send or the
// handshake completes, and returns whatever was produced. Unlike
// DoHandshake, it never returns an empty flight while the handshake
// goroutine is still mid-step: WriteIncoming must already hold
// whatever flight the peer sent before this is called, since the
// handshake goroutine blocks reading it otherwise and this call blocks
// right along with it.
func (c *Cryptor) DriveHandshakeStep() (done bool, out []byte, err error) {
	if c.active.Load() {
		return true, nil, nil
	}
	if c.tlsConn == nil {
		return false, nil, ErrNotInitialized
	}

	c.handshakeOnce.Do(func() {
		go func() {
			c.handshakeErr = c.tlsConn.Handshake()
			close(c.handshakeDone)
		}()
	})

	out = c.outgoing.waitForData(c.handshakeDone)

	select {
	case <-c.handshakeDone:
		if c.handshakeErr != nil {
			return false, out, c.handshakeErr
		}
		c.active.Store(true)
		return true, out, nil
	default:
		return false, out, nil
	}
}

// IsActive reports whether the handshake has completed.
func (c *Cryptor) IsActive() bool {
	return c.active.Load()
}

// ExportKeyingMaterial derives length bytes from the completed TLS
// session, per RFC 5705. It exists so callers can derive session-scoped
// secrets (log correlation tags, local caching keys) without exposing
// raw TLS session state. Returns ErrNotInitialized before the handshake
// completes.
func (c *Cryptor) ExportKeyingMaterial(label string, length int) ([]byte, error) {
	if c.tlsConn == nil || !c.active.Load() {
		return nil, ErrNotInitialized
	}
	return c.tlsConn.ConnectionState().ExportKeyingMaterial(label, nil, length)
}

// ReadOutgoing drains whatever TLS bytes are queued to go out on the
// wire, without blocking. Used both while driving the handshake and
// after Encrypt.
func (c *Cryptor) ReadOutgoing() []byte {
	if c.outgoing == nil {
		return nil
	}
	return c.outgoing.TryDrain()
}

// WriteIncoming feeds bytes that arrived over the wire into the
// incoming queue, for the handshake (or a subsequent Decrypt) to
// consume.
func (c *Cryptor) WriteIncoming(data []byte) {
	if c.incoming == nil {
		return
	}
	c.incoming.Write(data)
}

// Encrypt pushes plaintext through the active TLS session and returns
// the resulting ciphertext record bytes.
func (c *Cryptor) Encrypt(plaintext []byte) ([]byte, error) {
	if c.tlsConn == nil {
		return nil, ErrNotInitialized
	}
	if _, err := c.tlsConn.Write(plaintext); err != nil {
		return nil, err
	}
	return c.outgoing.TryDrain(), nil
}

// Decrypt feeds ciphertext into the incoming queue and reads back all
// plaintext TLS produces from it. The caller must supply complete TLS
// record data, the same discipline Messenger keeps by handing it one
// encrypted frame payload at a time, since a partial record would
// leave the read loop blocked waiting for bytes nothing will supply.
func (c *Cryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	if c.tlsConn == nil {
		return nil, ErrNotInitialized
	}
	c.incoming.Write(ciphertext)

	var plaintext []byte
	chunk := make([]byte, 2048)
	for c.incoming.Len() > 0 {
		n, err := c.tlsConn.Read(chunk)
		if n > 0 {
			plaintext = append(plaintext, chunk[:n]...)
		}
		if err != nil {
			break
		}
	}
	return plaintext, nil
}
