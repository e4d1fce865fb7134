package session

import (
	"encoding/binary"

	"github.com/openauto/prodigy-core/pkg/channel"
)

// sender is the subset of Messenger a ControlChannel needs. Session
// satisfies this by passing its Messenger directly.
type sender interface {
	Send(channelID uint8, messageID uint16, payload []byte)
}

// controlChannel sends and decodes the channel-0 control messages:
// version negotiation, the TLS handshake carrier, service discovery,
// ping/pong, and shutdown. The payload encodings below (version as two
// big-endian uint16s, a timestamp as 8 big-endian bytes, single-byte
// status/reason codes) are this port's own choice: the reference
// implementation's wire format for these fields lives outside the
// files available to this port, and the payload schema is opaque to
// the core anyway. Only the well-known examples (version bytes, a
// ping timestamp, a shutdown reason) are binding, and this encoding
// satisfies them.
type controlChannel struct {
	send sender
}

func newControlChannel(send sender) *controlChannel {
	return &controlChannel{send: send}
}

func (c *controlChannel) sendVersionRequest(major, minor uint16) {
	payload := make([]byte, 4)
	binary.BigEndian.PutUint16(payload[0:2], major)
	binary.BigEndian.PutUint16(payload[2:4], minor)
	c.send.Send(uint8(channel.Control), channel.MsgVersionRequest, payload)
}

func decodeVersionResponse(payload []byte) (major, minor uint16, ok bool) {
	if len(payload) < 4 {
		return 0, 0, false
	}
	return binary.BigEndian.Uint16(payload[0:2]), binary.BigEndian.Uint16(payload[2:4]), true
}

func (c *controlChannel) sendAuthComplete(ok bool) {
	status := byte(0)
	if !ok {
		status = 1
	}
	c.send.Send(uint8(channel.Control), channel.MsgAuthComplete, []byte{status})
}

func (c *controlChannel) sendServiceDiscoveryResponse(payload []byte) {
	c.send.Send(uint8(channel.Control), channel.MsgServiceDiscoveryResponse, payload)
}

func decodeChannelOpenRequest(payload []byte) (channelID uint8, ok bool) {
	if len(payload) < 1 {
		return 0, false
	}
	return payload[0], true
}

// sendChannelOpenResponse replies on targetChannel itself (not the
// control channel): ChannelOpenResponse is always sent as Control
// message_type rather than on channel 0, so Messenger.Send recognizes
// this message ID on a non-zero channel and sets the frame's
// message_type bit to Control accordingly.
func (c *controlChannel) sendChannelOpenResponse(targetChannel uint8, accepted bool) {
	status := byte(1)
	if accepted {
		status = 0
	}
	c.send.Send(targetChannel, channel.MsgChannelOpenResponse, []byte{status})
}

func (c *controlChannel) sendPingRequest(timestamp int64) {
	payload := make([]byte, 8)
	binary.BigEndian.PutUint64(payload, uint64(timestamp))
	c.send.Send(uint8(channel.Control), channel.MsgPingRequest, payload)
}

func (c *controlChannel) sendPingResponse(timestamp int64) {
	payload := make([]byte, 8)
	binary.BigEndian.PutUint64(payload, uint64(timestamp))
	c.send.Send(uint8(channel.Control), channel.MsgPingResponse, payload)
}

func decodeTimestamp(payload []byte) (int64, bool) {
	if len(payload) < 8 {
		return 0, false
	}
	return int64(binary.BigEndian.Uint64(payload)), true
}

func (c *controlChannel) sendShutdownRequest(reason byte) {
	c.send.Send(uint8(channel.Control), channel.MsgShutdownRequest, []byte{reason})
}

func (c *controlChannel) sendShutdownResponse() {
	c.send.Send(uint8(channel.Control), channel.MsgShutdownResponse, nil)
}

func decodeShutdownReason(payload []byte) byte {
	if len(payload) < 1 {
		return 0
	}
	return payload[0]
}

func (c *controlChannel) sendAudioFocusResponse(payload []byte) {
	c.send.Send(uint8(channel.Control), channel.MsgAudioFocusResponse, payload)
}

func (c *controlChannel) sendNavigationFocusResponse(payload []byte) {
	c.send.Send(uint8(channel.Control), channel.MsgNavigationFocusResponse, payload)
}
