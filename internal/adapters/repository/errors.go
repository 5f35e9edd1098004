package repository

import "errors"

// Sentinel kinds for record store errors.
var (
	ErrNotFound       = errors.New("record store not found")
	ErrMalformed      = errors.New("record store malformed")
	ErrUnavailable    = errors.New("record store unavailable")
	ErrInvalidRecord  = errors.New("invalid mention record")
	ErrUnknownBackend = errors.New("unknown store backend")
)
