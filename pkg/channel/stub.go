package channel

import (
	"encoding/hex"

	"github.com/pion/logging"
)

// stubHexDumpLimit bounds how much of an unhandled message's payload
// gets logged, mirroring the reference StubChannelHandler's 128-byte cap.
const stubHexDumpLimit = 128

// StubHandler answers a channel open that has no real registered
// handler so a phone's discovery flow never stalls waiting for a reply.
// It accepts the open, then logs (rather than acting on) anything that
// arrives afterward.
type StubHandler struct {
	id  ID
	log logging.LeveledLogger
}

// NewStubHandler creates a StubHandler for the given channel. log may be
// nil to silence its diagnostics entirely.
func NewStubHandler(id ID, log logging.LeveledLogger) *StubHandler {
	return &StubHandler{id: id, log: log}
}

// ChannelID implements Handler.
func (s *StubHandler) ChannelID() ID { return s.id }

// OnChannelOpened implements Handler.
func (s *StubHandler) OnChannelOpened() {
	if s.log != nil {
		s.log.Infof("stub: channel %s opened", s.id)
	}
}

// OnChannelClosed implements Handler.
func (s *StubHandler) OnChannelClosed() {
	if s.log != nil {
		s.log.Infof("stub: channel %s closed", s.id)
	}
}

// OnMessage implements Handler, logging the message instead of acting
// on it.
func (s *StubHandler) OnMessage(messageID uint16, payload []byte) {
	if s.log == nil {
		return
	}
	dump := payload
	if len(dump) > stubHexDumpLimit {
		dump = dump[:stubHexDumpLimit]
	}
	s.log.Infof("stub: channel %s msgId=0x%04x len=%d hex=%s", s.id, messageID, len(payload), hex.EncodeToString(dump))
}

var _ Handler = (*StubHandler)(nil)
