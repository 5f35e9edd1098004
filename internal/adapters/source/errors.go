package source

import "errors"

// Sentinel kinds for source errors.
var (
	ErrUnavailable = errors.New("rumor source unavailable")
	ErrBadStatus   = errors.New("unexpected source status")
	ErrParse       = errors.New("rumor page parse failed")
	ErrInvalidURL  = errors.New("invalid source url")
)
