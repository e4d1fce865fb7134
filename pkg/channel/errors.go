package channel

import "errors"

// ErrAlreadyRegistered is returned when a Handler is registered for a
// channel ID that already has one.
var ErrAlreadyRegistered = errors.New("channel: handler already registered for this channel")
