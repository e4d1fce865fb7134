package cryptor

import "errors"

// Errors returned by Cryptor.
var (
	// ErrNotInitialized is returned when an operation is attempted
	// before Init.
	ErrNotInitialized = errors.New("cryptor: not initialized")

	// ErrHandshakeFailed is returned by DoHandshake when the underlying
	// TLS handshake terminates with an error rather than WANT_READ-style
	// progress.
	ErrHandshakeFailed = errors.New("cryptor: handshake failed")

	// ErrInvalidRole is returned by Init for an unrecognized Role.
	ErrInvalidRole = errors.New("cryptor: invalid role")
)
