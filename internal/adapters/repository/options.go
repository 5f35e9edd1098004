package repository

import (
	"os"
	"time"
)

// Default store configuration constants.
const (
	defaultFileMode    os.FileMode = 0o644
	defaultBusyTimeout             = 5 * time.Second
)

type options struct {
	fileMode    os.FileMode
	busyTimeout time.Duration
}

func newOptions(opts []Option) options {
	o := options{fileMode: defaultFileMode, busyTimeout: defaultBusyTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option applies a configuration option to a store.
type Option func(*options)

// WithFileMode sets the permissions of the CSV file.
func WithFileMode(mode os.FileMode) Option {
	return func(o *options) {
		if mode != 0 {
			o.fileMode = mode
		}
	}
}

// WithBusyTimeout sets how long SQLite waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.busyTimeout = d
		}
	}
}
