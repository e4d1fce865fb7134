package transport

import "errors"

// Errors returned by transport implementations.
var (
	// ErrAlreadyStarted is returned when Start is called on a running transport.
	ErrAlreadyStarted = errors.New("transport: already started")

	// ErrClosed is returned when an operation is attempted on a stopped transport.
	ErrClosed = errors.New("transport: closed")

	// ErrNotConnected is reported through Callbacks.Error when Write is called
	// without an established connection.
	ErrNotConnected = errors.New("transport: write while not connected")
)
