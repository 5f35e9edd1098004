// Package dedupe collapses repeated mention records.
package dedupe

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/okian/rumorboard/internal/domain/model"
)

// keySnippetRunes is how much of the snippet takes part in the identity key.
const keySnippetRunes = 100

// Deduper records seen keys so each one is kept at most once.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	Size() int64
}

// inMemoryDeduper keeps every key for its lifetime. Nothing is ever evicted,
// otherwise a repeat could slip through after its first copy left the set.
type inMemoryDeduper struct {
	mu       sync.Mutex
	seen     map[string]struct{}
	capacity int
	size     atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{}, d.capacity)
	return d
}

// SeenAndRecord atomically checks if id was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}
	d.seen[id] = struct{}{}
	d.size.Add(1)
	return false
}

// Size returns the current number of entries in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}

// Key identifies a mention: player, calendar date and the first 100 runes of
// the snippet.
func Key(r model.MentionRecord) string {
	snippet := r.Snippet
	if utf8.RuneCountInString(snippet) > keySnippetRunes {
		snippet = string([]rune(snippet)[:keySnippetRunes])
	}
	var b strings.Builder
	b.Grow(len(r.Player) + len(model.DateLayout) + len(snippet) + 2)
	b.WriteString(r.Player)
	b.WriteByte('|')
	b.WriteString(model.FormatDate(model.Day(r.Date)))
	b.WriteByte('|')
	b.WriteString(snippet)
	return b.String()
}

// Records keeps the first record for every key, in input order. Running it on
// its own output returns the same list.
func Records(ctx context.Context, records []model.MentionRecord) []model.MentionRecord {
	return Filter(ctx, NewInMemoryDeduper(WithCapacity(len(records))), records)
}

// Filter drops records whose key the deduper has already seen. A shared
// deduper lets several batches collapse against each other.
func Filter(ctx context.Context, d Deduper, records []model.MentionRecord) []model.MentionRecord {
	out := make([]model.MentionRecord, 0, len(records))
	for _, r := range records {
		if d.SeenAndRecord(ctx, Key(r)) {
			continue
		}
		out = append(out, r)
	}
	return out
}
