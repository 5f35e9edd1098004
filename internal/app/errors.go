package service

import "errors"

var (
	// ErrIngestRunning is returned when an ingestion run is already in progress.
	ErrIngestRunning = errors.New("ingestion already running")
	// ErrNoSource is returned when ingestion is requested without a source.
	ErrNoSource = errors.New("no rumor source configured")
	// ErrSourceUnavailable is returned when the first page could not be fetched.
	ErrSourceUnavailable = errors.New("rumor source unavailable")
	// ErrStoreRead is returned when the record store is malformed or unreadable.
	ErrStoreRead = errors.New("record store read failed")
	// ErrStoreWrite is returned when an ingestion run could not be persisted.
	ErrStoreWrite = errors.New("record store write failed")
	// ErrPlayerNotFound is returned for an unknown player slug or name.
	ErrPlayerNotFound = errors.New("player not found")
	// ErrInvalidLimit is returned for a negative leaderboard limit.
	ErrInvalidLimit = errors.New("invalid limit")
)
