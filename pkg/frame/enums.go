package frame

import "fmt"

// Type is the fragmentation role of a frame within a message, carried in
// the two low bits of header byte 1.
type Type uint8

const (
	// TypeMiddle carries an interior fragment of a multi-frame message.
	TypeMiddle Type = 0x00
	// TypeFirst carries the first fragment of a multi-frame message and
	// additionally carries the message's total plaintext size.
	TypeFirst Type = 0x01
	// TypeLast carries the final fragment of a multi-frame message.
	TypeLast Type = 0x02
	// TypeBulk carries a complete, unfragmented message.
	TypeBulk Type = 0x03
)

const typeMask = 0x03

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case TypeMiddle:
		return "Middle"
	case TypeFirst:
		return "First"
	case TypeLast:
		return "Last"
	case TypeBulk:
		return "Bulk"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// IsValid reports whether t is one of the four defined frame types.
func (t Type) IsValid() bool {
	switch t {
	case TypeMiddle, TypeFirst, TypeLast, TypeBulk:
		return true
	default:
		return false
	}
}

// Encryption indicates whether a frame's payload is ciphertext, carried
// in bit 3 of header byte 1.
type Encryption uint8

const (
	// Plain means the payload is carried as-is.
	Plain Encryption = 0x00
	// Encrypted means the payload is TLS ciphertext produced by Cryptor.
	Encrypted Encryption = 0x08
)

const encryptionMask = 0x08

// String implements fmt.Stringer.
func (e Encryption) String() string {
	if e == Encrypted {
		return "Encrypted"
	}
	return "Plain"
}

// MessageType is a dispatch hint carried in bit 2 of header byte 1,
// distinguishing control-channel protocol messages from channel-specific
// application messages.
type MessageType uint8

const (
	// Specific marks an ordinary channel message.
	Specific MessageType = 0x00
	// Control marks a protocol control message (e.g. ChannelOpenResponse
	// on a non-zero channel, or anything on channel 0).
	Control MessageType = 0x04
)

const messageTypeMask = 0x04

// String implements fmt.Stringer.
func (m MessageType) String() string {
	if m == Control {
		return "Control"
	}
	return "Specific"
}

// sizeFieldLength returns how many bytes follow the 2-byte header to
// encode the frame's size: 6 for First frames (2-byte frame_payload_size
// plus 4-byte total_size), 2 for every other frame type.
func sizeFieldLength(t Type) int {
	if t == TypeFirst {
		return 6
	}
	return 2
}
