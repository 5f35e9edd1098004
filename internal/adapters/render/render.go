// Package render prints leaderboards and player details as aligned text
// tables. Widths are measured in terminal cells so accented and wide names
// line up.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/okian/rumorboard/internal/domain/types"
)

const (
	columnGap       = "  "
	snippetCells    = 80
	ellipsis        = "…"
	scorePrecision  = 2
	emptyTeamMarker = "-"
)

type align int

const (
	left align = iota
	right
)

type column struct {
	title string
	align align
}

// table accumulates rows and writes them padded to the widest cell.
type table struct {
	cols []column
	rows [][]string
}

func newTable(cols ...column) *table {
	return &table{cols: cols}
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) write(w io.Writer) error {
	widths := make([]int, len(t.cols))
	for i, c := range t.cols {
		widths[i] = runewidth.StringWidth(c.title)
	}
	for _, row := range t.rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}

	header := make([]string, len(t.cols))
	for i, c := range t.cols {
		header[i] = c.title
	}
	if err := t.line(w, widths, header); err != nil {
		return err
	}
	for _, row := range t.rows {
		if err := t.line(w, widths, row); err != nil {
			return err
		}
	}
	return nil
}

func (t *table) line(w io.Writer, widths []int, cells []string) error {
	var sb strings.Builder
	for i, c := range t.cols {
		content := ""
		if i < len(cells) {
			content = cells[i]
		}
		if i > 0 {
			sb.WriteString(columnGap)
		}
		switch {
		case c.align == right:
			sb.WriteString(runewidth.FillLeft(content, widths[i]))
		case i == len(t.cols)-1:
			sb.WriteString(content)
		default:
			sb.WriteString(runewidth.FillRight(content, widths[i]))
		}
	}
	sb.WriteByte('\n')
	_, err := io.WriteString(w, sb.String())
	return err
}

// Leaderboard writes the ranking. An empty leaderboard prints a single
// "no activity" line.
func Leaderboard(w io.Writer, lb types.Leaderboard) error {
	if lb.Empty() {
		_, err := fmt.Fprintf(w, "No activity in the last %d days.\n", lb.WindowDays)
		return err
	}
	if _, err := fmt.Fprintf(w, "Trade rumor leaderboard as of %s (%s to %s, %d players)\n\n",
		lb.AsOf, lb.WindowStart, lb.WindowEnd, lb.Players); err != nil {
		return err
	}

	t := newTable(
		column{"#", right},
		column{"PLAYER", left},
		column{"TEAM", left},
		column{"SCORE", right},
		column{"RECENT", right},
		column{"MID", right},
		column{"OLD", right},
		column{"LAST", left},
	)
	for _, e := range lb.Entries {
		t.add(
			strconv.Itoa(e.Rank),
			e.Player,
			orDash(e.Team),
			formatScore(e.Score),
			strconv.Itoa(e.Recent),
			strconv.Itoa(e.Mid),
			strconv.Itoa(e.Old),
			e.LastMention,
		)
	}
	return t.write(w)
}

// Player writes a player's score line and mention history.
func Player(w io.Writer, d types.PlayerDetail) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s)\n", d.Player, d.Slug)
	if d.Team != "" {
		fmt.Fprintf(&sb, "Team: %s\n", d.Team)
	}
	if s := d.Score; s != nil {
		fmt.Fprintf(&sb, "Rank %d, score %s (recent %d, mid %d, old %d) as of %s\n",
			s.Rank, formatScore(s.Score), s.Recent, s.Mid, s.Old, d.AsOf)
	} else {
		sb.WriteString("No mentions in the current window.\n")
	}
	if active := activeDays(d.Daily); active > 0 {
		fmt.Fprintf(&sb, "Active on %d of the last %d days\n", active, len(d.Daily))
	}
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}
	if len(d.Mentions) == 0 {
		return nil
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	t := newTable(
		column{"DATE", left},
		column{"OUTLET", left},
		column{"SNIPPET", left},
	)
	for _, m := range d.Mentions {
		t.add(m.Date, orDash(m.Outlet), runewidth.Truncate(m.Snippet, snippetCells, ellipsis))
	}
	return t.write(w)
}

func activeDays(daily []types.DailyCount) int {
	n := 0
	for _, dc := range daily {
		if dc.Mentions > 0 {
			n++
		}
	}
	return n
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', scorePrecision, 64)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return emptyTeamMarker
	}
	return s
}
