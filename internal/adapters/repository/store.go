// Package repository persists mention records.
//
// Every ingestion run rewrites the whole dataset and every read loads a
// complete snapshot, so readers never observe a half-written run.
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/rumorboard/internal/domain/model"
	"github.com/okian/rumorboard/pkg/metrics"
)

// Supported backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Store provides read/write access to the persisted records.
type Store interface {
	// Save replaces the whole dataset with records.
	Save(ctx context.Context, records []model.MentionRecord) error
	// Load returns a consistent snapshot of the dataset in stored order.
	// Returns ErrNotFound if nothing was ever saved.
	Load(ctx context.Context) ([]model.MentionRecord, error)
	// Backend names the storage engine.
	Backend() string
	Close() error
}

// Open creates the store for backend at path.
func Open(backend, path string, opts ...Option) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendCSV:
		return NewCSVStore(path, opts...), nil
	case BackendSQLite:
		return OpenSQLite(path, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

func validate(records []model.MentionRecord) error {
	for i, r := range records {
		if strings.TrimSpace(r.Player) == "" {
			return fmt.Errorf("%w: record %d has no player", ErrInvalidRecord, i)
		}
		if r.Date.IsZero() {
			return fmt.Errorf("%w: record %d has no date", ErrInvalidRecord, i)
		}
	}
	return nil
}

// observe reports a store call to metrics. n is the dataset size after a
// successful call.
func observe(backend, op string, start time.Time, n int, err error) {
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
	}
	metrics.RecordStoreOperation(backend, op, outcome, float64(time.Since(start).Microseconds())/1000)
	if err == nil {
		metrics.UpdateStoredRecords(n)
	}
}
