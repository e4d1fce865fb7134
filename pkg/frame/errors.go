package frame

import "errors"

// Errors returned while decoding or building frames.
var (
	// ErrShortHeader is returned when fewer than 2 bytes are available
	// where a frame header was expected.
	ErrShortHeader = errors.New("frame: short header")

	// ErrInvalidType is returned when a header's frame type bits do not
	// decode to one of the four defined Type values.
	ErrInvalidType = errors.New("frame: invalid frame type")

	// ErrPayloadTooLarge is returned when a single frame's payload would
	// exceed MaxPayloadSize.
	ErrPayloadTooLarge = errors.New("frame: payload exceeds maximum frame size")
)
