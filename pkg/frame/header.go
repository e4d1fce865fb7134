package frame

// MaxPayloadSize is the largest payload a single frame may carry.
// FrameSerializer chunks larger messages into First/Middle/Last
// sequences bounded by this size.
const MaxPayloadSize = 16384

// headerSize is the fixed-size portion of every frame header: channel_id
// plus the flags byte.
const headerSize = 2

// Header describes one frame's control fields, decoded from or destined
// for the two fixed bytes plus the variable-length size field that
// precede every frame's payload on the wire.
type Header struct {
	ChannelID   uint8
	FrameType   Type
	MessageType MessageType
	Encryption  Encryption

	// TotalSize is the plaintext size across all fragments of the
	// message this frame belongs to. It is only meaningful (and only
	// encoded) on First frames; Parser discards it on decode per the
	// streaming state machine's contract, since the assembler never
	// needs it to reconstruct a message.
	TotalSize uint32
}

// flagsByte packs FrameType, MessageType and Encryption into the single
// byte that follows channel_id on the wire.
func (h Header) flagsByte() byte {
	return byte(h.FrameType)&typeMask | byte(h.MessageType)&messageTypeMask | byte(h.Encryption)&encryptionMask
}

// decodeFlagsByte unpacks the flags byte written by flagsByte.
func decodeFlagsByte(b byte) (Type, MessageType, Encryption) {
	return Type(b & typeMask), MessageType(b & messageTypeMask), Encryption(b & encryptionMask)
}

// SizeFieldLength returns how many bytes of size field follow this
// header's two fixed bytes: 6 for First frames, 2 otherwise.
func (h Header) SizeFieldLength() int {
	return sizeFieldLength(h.FrameType)
}
