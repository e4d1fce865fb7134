package messenger

import "errors"

// Errors produced by Messenger.
var (
	// ErrPayloadTooShort is returned when a received message is too
	// short to contain even the 2-byte message_id prefix.
	ErrPayloadTooShort = errors.New("messenger: payload shorter than the message_id prefix")

	// ErrNoTransport is returned by Send when the messenger has no
	// transport to write to.
	ErrNoTransport = errors.New("messenger: no transport configured")
)
