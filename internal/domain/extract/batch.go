package extract

import "github.com/okian/rumorboard/internal/domain/model"

// Outcome tallies a batch extraction.
type Outcome struct {
	Fragments int
	Mentions  int
	Dropped   map[string]int // reason -> fragments
}

// ExtractAll resolves fragments in order and concatenates their records.
func (e *Extractor) ExtractAll(fragments []model.CandidateFragment) ([]model.MentionRecord, Outcome) {
	out := Outcome{Fragments: len(fragments), Dropped: make(map[string]int)}
	var recs []model.MentionRecord
	for _, f := range fragments {
		r, reason := e.extract(f)
		if reason != "" {
			out.Dropped[reason]++
			continue
		}
		recs = append(recs, r...)
	}
	out.Mentions = len(recs)
	return recs, out
}
