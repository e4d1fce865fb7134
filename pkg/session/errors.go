package session

import "errors"

var (
	// ErrAlreadyStarted is returned by Start when the session has left
	// Idle.
	ErrAlreadyStarted = errors.New("session: already started")

	// ErrChannelAlreadyRegistered is returned by RegisterHandler for a
	// channel ID that already has a handler.
	ErrChannelAlreadyRegistered = errors.New("session: handler already registered for this channel")
)
