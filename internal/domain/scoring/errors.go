package scoring

import "errors"

var (
	// ErrInvalidWindow is returned for a non-positive window length.
	ErrInvalidWindow = errors.New("invalid scoring window")
	// ErrInvalidBuckets is returned for unusable recency tiers.
	ErrInvalidBuckets = errors.New("invalid recency buckets")
)
