// Package messenger implements the send/receive pipeline that sits
// between a Session and the wire: message_id framing, encryption policy
// application, the Input-priority send queue, and the TLS handshake
// carrier special case on the control channel.
package messenger

import (
	"encoding/binary"

	"github.com/pion/logging"

	"github.com/openauto/prodigy-core/pkg/channel"
	"github.com/openauto/prodigy-core/pkg/cryptor"
	"github.com/openauto/prodigy-core/pkg/frame"
	"github.com/openauto/prodigy-core/pkg/policy"
	"github.com/openauto/prodigy-core/pkg/transport"
)

// Callbacks delivers events from the messenger up to its owning
// Session.
type Callbacks struct {
	// OnMessage is called for every assembled, decrypted, non-handshake
	// message, with the 2-byte message_id prefix already stripped.
	OnMessage func(channelID uint8, messageID uint16, payload []byte)

	// OnHandshakeComplete is called once the TLS handshake driven
	// through the control channel finishes.
	OnHandshakeComplete func()
}

// Config wires a Messenger to its collaborators.
type Config struct {
	Transport     transport.Transport
	Cryptor       *cryptor.Cryptor
	Callbacks     Callbacks
	LoggerFactory logging.LoggerFactory
}

// Messenger owns frame parsing, reassembly, the send queue and the
// handshake-driving logic. A Session owns exactly one Messenger and
// drives it from Transport callbacks and outbound channel sends.
type Messenger struct {
	cfg Config
	log logging.LeveledLogger

	parser    *frame.Parser
	assembler *frame.Assembler

	queue   sendQueue
	sending bool
}

// New creates a Messenger wired to cfg's transport and cryptor.
func New(cfg Config) *Messenger {
	m := &Messenger{cfg: cfg}
	if cfg.LoggerFactory != nil {
		m.log = cfg.LoggerFactory.NewLogger("messenger")
	}

	m.assembler = frame.NewAssembler(m.onMessage, m.log)
	m.parser = frame.NewParser(m.onFrame)
	return m
}

// Feed hands a chunk of bytes received from the transport to the frame
// parser. It is the direct target of Transport Callbacks.DataReceived.
func (m *Messenger) Feed(data []byte) {
	m.parser.Feed(data)
}

func (m *Messenger) onFrame(h frame.Header, payload []byte) {
	if m.log != nil {
		m.log.Tracef("recv channel=%d type=%v msgType=%v enc=%v len=%d", h.ChannelID, h.FrameType, h.MessageType, h.Encryption, len(payload))
	}

	if h.Encryption == frame.Encrypted {
		plaintext, err := m.cfg.Cryptor.Decrypt(payload)
		if err != nil {
			if m.log != nil {
				m.log.Errorf("decrypt failed on channel %d: %v", h.ChannelID, err)
			}
			return
		}
		payload = plaintext
	}
	m.assembler.Feed(h, payload)
}

func (m *Messenger) onMessage(msg frame.Message) {
	if len(msg.Payload) < 2 {
		if m.log != nil {
			m.log.Warnf("channel %d: message shorter than message_id prefix, dropping", msg.ChannelID)
		}
		return
	}
	messageID := binary.BigEndian.Uint16(msg.Payload[:2])
	body := msg.Payload[2:]

	if m.log != nil {
		m.log.Tracef("dispatch channel=%d msgId=0x%04x len=%d", msg.ChannelID, messageID, len(body))
	}

	if msg.ChannelID == uint8(channel.Control) && messageID == channel.MsgSSLHandshake && !m.cfg.Cryptor.IsActive() {
		m.cfg.Cryptor.WriteIncoming(body)
		m.driveHandshake()
		return
	}

	if m.cfg.Callbacks.OnMessage != nil {
		m.cfg.Callbacks.OnMessage(msg.ChannelID, messageID, body)
	}
}

// DriveHandshake advances the TLS handshake one step and forwards any
// bytes it produces to the peer as an SSLHandshake carrier message. A
// Session calls this once on entering TLSHandshake to emit the first
// flight (a TLS client has bytes to send before it has received any),
// and the messenger calls it again every time a handshake carrier
// message arrives, with that message's bytes already handed to the
// cryptor via WriteIncoming.
func (m *Messenger) DriveHandshake() {
	m.driveHandshake()
}

func (m *Messenger) driveHandshake() {
	done, out, err := m.cfg.Cryptor.DriveHandshakeStep()
	if err != nil {
		if m.log != nil {
			m.log.Errorf("TLS handshake failed: %v", err)
		}
		return
	}

	if len(out) > 0 {
		m.Send(uint8(channel.Control), channel.MsgSSLHandshake, out)
	}

	if done && m.cfg.Callbacks.OnHandshakeComplete != nil {
		m.cfg.Callbacks.OnHandshakeComplete()
	}
}

// Send frames, optionally encrypts, and enqueues payload for delivery on
// channelID under messageID. It never blocks.
func (m *Messenger) Send(channelID uint8, messageID uint16, payload []byte) {
	full := make([]byte, 2+len(payload))
	binary.BigEndian.PutUint16(full, messageID)
	copy(full[2:], payload)

	messageType := frame.Specific
	if channelID != 0 && messageID == channel.MsgChannelOpenResponse {
		messageType = frame.Control
	}

	encrypt := policy.ShouldEncrypt(channelID, messageID, m.cfg.Cryptor.IsActive())
	encFlag := frame.Plain
	if encrypt {
		encFlag = frame.Encrypted
	}

	frames := frame.Serialize(channelID, messageType, encFlag, full)
	if encrypt {
		for i := range frames {
			ciphertext, err := m.cfg.Cryptor.Encrypt(frames[i].Payload)
			if err != nil {
				if m.log != nil {
					m.log.Errorf("encrypt failed on channel %d: %v", channelID, err)
				}
				return
			}
			frames[i].Payload = ciphertext
		}
	}

	priority := channelID == uint8(channel.Input)
	m.queue.enqueue(sendUnit{frames: frames}, priority)
	m.drain()
}

// drain writes queued frames to the transport. The sending flag makes a
// reentrant call (a Transport.Write triggering, synchronously, another
// Send) a safe no-op: the outer call is already draining the queue.
func (m *Messenger) drain() {
	if m.sending {
		return
	}
	m.sending = true
	defer func() { m.sending = false }()

	for {
		unit, ok := m.queue.pop()
		if !ok {
			return
		}
		for _, f := range unit.frames {
			m.cfg.Transport.Write(f.Encode())
		}
	}
}
