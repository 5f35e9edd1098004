package repository

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/okian/rumorboard/internal/domain/model"
)

var csvHeader = []string{"player", "date", "snippet", "source_url", "outlet"} //nolint:gochecknoglobals // fixed file layout

// CSVStore keeps records in a flat CSV file. Writes go to a temporary file
// in the same directory that is then renamed over the target.
type CSVStore struct {
	path string
	opts options
	mu   sync.Mutex // serializes writers in this process
}

// NewCSVStore creates a store for the file at path.
func NewCSVStore(path string, opts ...Option) *CSVStore {
	return &CSVStore{path: path, opts: newOptions(opts)}
}

// Backend implements Store.
func (s *CSVStore) Backend() string { return BackendCSV }

// Close implements Store.
func (s *CSVStore) Close() error { return nil }

// Path returns the file location.
func (s *CSVStore) Path() string { return s.path }

// Save implements Store.
func (s *CSVStore) Save(ctx context.Context, records []model.MentionRecord) (err error) {
	start := time.Now()
	defer func() { observe(BackendCSV, "save", start, len(records), err) }()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validate(records); err != nil {
		return err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	for _, r := range records {
		row := []string{r.Player, model.FormatDate(model.Day(r.Date)), r.Snippet, r.SourceURL, r.Outlet}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeAtomic(s.path, buf.Bytes(), s.opts.fileMode); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

func writeAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	defer func() { _ = os.Remove(name) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(name, mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(name, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// Load implements Store. The file is read whole before parsing so a
// concurrent rename cannot split the snapshot.
func (s *CSVStore) Load(ctx context.Context) (records []model.MentionRecord, err error) {
	start := time.Now()
	defer func() { observe(BackendCSV, "load", start, len(records), err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return decodeCSV(data)
}

func decodeCSV(data []byte) ([]model.MentionRecord, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(csvHeader)
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header", ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformed, err)
	}
	for i, col := range csvHeader {
		if strings.TrimPrefix(strings.TrimSpace(header[i]), "\ufeff") != col {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrMalformed, i+1, header[i], col)
		}
	}

	records := make([]model.MentionRecord, 0)
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformed, line, err)
		}
		player := strings.TrimSpace(row[0])
		if player == "" {
			return nil, fmt.Errorf("%w: line %d: empty player", ErrMalformed, line)
		}
		date, err := model.ParseDate(strings.TrimSpace(row[1]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformed, line, err)
		}
		records = append(records, model.MentionRecord{
			Player:    player,
			Date:      date,
			Snippet:   row[2],
			SourceURL: row[3],
			Outlet:    row[4],
		})
	}
	return records, nil
}
