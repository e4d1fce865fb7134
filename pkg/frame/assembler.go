package frame

import "github.com/pion/logging"

// Message is a fully reassembled application message: the concatenated
// payload of a Bulk frame or of a First..Last fragment run, tagged with
// the message_type its leading frame declared.
type Message struct {
	ChannelID   uint8
	MessageType MessageType
	Payload     []byte
}

type partial struct {
	messageType MessageType
	payload     []byte
}

// Assembler reassembles the frame stream emitted by a Parser into whole
// messages. It tracks at most one in-flight partial message per
// channel; fragmentation on one channel never affects any other.
type Assembler struct {
	onMessage func(Message)
	log       logging.LeveledLogger

	partials map[uint8]*partial
}

// NewAssembler creates an Assembler that invokes onMessage for each
// reassembled message. log may be nil to disable warnings about
// malformed fragment sequences.
func NewAssembler(onMessage func(Message), log logging.LeveledLogger) *Assembler {
	return &Assembler{
		onMessage: onMessage,
		log:       log,
		partials:  make(map[uint8]*partial),
	}
}

// Feed processes one decoded frame, the direct consumer of a Parser's
// onFrame callback.
func (a *Assembler) Feed(h Header, payload []byte) {
	switch h.FrameType {
	case TypeBulk:
		a.emit(h.ChannelID, h.MessageType, payload)

	case TypeFirst:
		if _, exists := a.partials[h.ChannelID]; exists && a.log != nil {
			a.log.Warnf("channel %d: First frame arrived with an in-flight partial message, discarding it", h.ChannelID)
		}
		buf := make([]byte, len(payload))
		copy(buf, payload)
		a.partials[h.ChannelID] = &partial{messageType: h.MessageType, payload: buf}

	case TypeMiddle:
		p, exists := a.partials[h.ChannelID]
		if !exists {
			if a.log != nil {
				a.log.Warnf("channel %d: Middle frame with no preceding First, dropping", h.ChannelID)
			}
			return
		}
		p.payload = append(p.payload, payload...)

	case TypeLast:
		p, exists := a.partials[h.ChannelID]
		if !exists {
			if a.log != nil {
				a.log.Warnf("channel %d: Last frame with no preceding First, dropping", h.ChannelID)
			}
			return
		}
		p.payload = append(p.payload, payload...)
		delete(a.partials, h.ChannelID)
		a.emit(h.ChannelID, p.messageType, p.payload)
	}
}

func (a *Assembler) emit(channelID uint8, messageType MessageType, payload []byte) {
	if a.onMessage == nil {
		return
	}
	a.onMessage(Message{ChannelID: channelID, MessageType: messageType, Payload: payload})
}
