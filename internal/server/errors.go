package server

import "errors"

// The closed set of registry failures callers are expected to handle.
// Anything else bubbling out of a handler is a defect and gets logged.
var (
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmptyUsername = errors.New("username must not be empty")
	ErrNotRegistered = errors.New("connection is not registered")
)
