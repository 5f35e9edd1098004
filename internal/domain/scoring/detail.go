package scoring

import (
	"sort"
	"time"

	"github.com/okian/rumorboard/internal/domain/model"
)

// PlayerMentions returns every record of player, newest first. Records on the
// same day keep their stored order.
func PlayerMentions(records []model.MentionRecord, player string) []model.MentionRecord {
	out := make([]model.MentionRecord, 0)
	for _, r := range records {
		if r.Player == player {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return model.Day(out[a].Date).After(model.Day(out[b].Date))
	})
	return out
}

// DailyCounts returns one entry per window day, oldest first, with the number
// of mentions of player on that day. A zero asOf means the latest record date.
func (e *Engine) DailyCounts(records []model.MentionRecord, player string, asOf time.Time) []model.DailyCount {
	if e.windowDays <= 0 {
		return nil
	}
	if asOf.IsZero() {
		var ok bool
		if asOf, ok = AsOf(records); !ok {
			return nil
		}
	}
	start, end := e.Window(asOf)
	out := make([]model.DailyCount, e.windowDays)
	for i := range out {
		out[i].Date = model.AddDays(start, i)
	}
	for _, r := range records {
		if r.Player != player {
			continue
		}
		d := model.Day(r.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		out[model.DaysBetween(start, d)].Mentions++
	}
	return out
}
