package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/injury-monitor/internal/domain/injury"
	"github.com/valyala/bytebufferpool"
)

const (
	otherInjuriesLimit = 20
	placeholderTBD     = "TBD"

	noChangesMessage = "No status changes detected since last check."
	noImpactMessage  = "No injuries affecting today's games."
)

// Summary renders the human-readable report. Lines are joined by newlines with no trailing newline.
func (r Report) Summary() string {
	w := newLineWriter()
	defer w.release()

	w.linef("=== INJURY REPORT -- %s ===", r.GeneratedAt.UTC().Format("January 02, 2006"))
	w.line("")

	for _, sport := range r.SportsInOrder() {
		writeSportSummary(w, sport, r.Sports[sport])
	}

	succeeded := 0
	failed := make([]string, 0)
	for _, name := range r.SourcesInOrder() {
		switch r.SourceStatus[name].Status {
		case SourceStatusOK:
			succeeded++
		case SourceStatusError:
			failed = append(failed, name)
		}
	}
	w.linef("Sources: %d succeeded, %d failed", succeeded, len(failed))
	if len(failed) > 0 {
		w.line("  Failed: " + strings.Join(failed, ", "))
	}
	return w.String()
}

func writeSportSummary(w *lineWriter, sport injury.Sport, section SportSection) {
	w.linef("--- %s (%d injuries, %d of %d games affected) ---",
		strings.ToUpper(string(sport)), len(section.Injuries), section.AffectedGames, section.GamesToday)
	w.line("")

	var changed, today, other []injury.Record
	for _, record := range section.Injuries {
		switch {
		case record.StatusChanged:
			changed = append(changed, record)
		case record.GameToday != nil:
			today = append(today, record)
		default:
			other = append(other, record)
		}
	}

	if len(changed) > 0 {
		w.line("** STATUS CHANGES **")
		for _, record := range changed {
			w.linef("  %s (%s) -- %s -> %s -- %s",
				record.Player, record.Team, previousStatusText(record), record.Status, record.InjuryOrDefault())
			if record.GameToday != nil {
				opponent, at := gameText(record.GameToday)
				w.linef("    GAME TODAY: vs %s at %s", opponent, at)
			}
		}
		w.line("")
	}

	if len(today) > 0 {
		w.line("** INJURIES (Teams Playing Today) **")
		byTeam := make(map[string][]injury.Record)
		teams := make([]string, 0)
		for _, record := range today {
			if _, ok := byTeam[record.Team]; !ok {
				teams = append(teams, record.Team)
			}
			byTeam[record.Team] = append(byTeam[record.Team], record)
		}
		sort.Strings(teams)
		for _, team := range teams {
			members := byTeam[team]
			opponent, at := gameText(members[0].GameToday)
			w.linef("  %s (vs %s at %s):", team, opponent, at)
			for _, record := range members {
				w.linef("    [%s] %s -- %s", statusLabel(record), record.Player, record.InjuryOrDefault())
			}
		}
		w.line("")
	}

	if len(other) > 0 {
		w.linef("** OTHER INJURIES (%d players) **", len(other))
		for i, record := range other {
			if i == otherInjuriesLimit {
				break
			}
			w.linef("  [%s] %s (%s) -- %s", statusLabel(record), record.Player, record.Team, record.InjuryOrDefault())
		}
		if len(other) > otherInjuriesLimit {
			w.linef("  ... and %d more", len(other)-otherInjuriesLimit)
		}
		w.line("")
	}
}

// RenderChanges prints one line per status change.
func RenderChanges(records []injury.Record) string {
	if len(records) == 0 {
		return noChangesMessage
	}

	w := newLineWriter()
	defer w.release()
	for _, record := range records {
		game := ""
		if record.GameToday != nil {
			opponent, _ := gameText(record.GameToday)
			game = fmt.Sprintf(" ** GAME TODAY vs %s **", opponent)
		}
		w.linef("%s (%s): %s -> %s -- %s%s",
			record.Player, record.Team, previousStatusText(record), record.Status, record.InjuryOrDefault(), game)
	}
	return w.String()
}

// RenderTodayImpact prints one line per injury whose team plays today.
func RenderTodayImpact(records []injury.Record) string {
	if len(records) == 0 {
		return noImpactMessage
	}

	w := newLineWriter()
	defer w.release()
	for _, record := range records {
		opponent, at := gameText(record.GameToday)
		w.linef("[%s] %s (%s) -- %s -- vs %s at %s",
			statusLabel(record), record.Player, record.Team, record.InjuryOrDefault(), opponent, at)
	}
	return w.String()
}

// lineWriter joins lines with newlines into a pooled buffer, without a
// trailing newline.
type lineWriter struct {
	buf   *bytebufferpool.ByteBuffer
	lines int
}

func newLineWriter() *lineWriter {
	return &lineWriter{buf: bytebufferpool.Get()}
}

func (w *lineWriter) line(text string) {
	if w.lines > 0 {
		_ = w.buf.WriteByte('\n')
	}
	_, _ = w.buf.WriteString(text)
	w.lines++
}

func (w *lineWriter) linef(format string, args ...any) {
	if w.lines > 0 {
		_ = w.buf.WriteByte('\n')
	}
	_, _ = fmt.Fprintf(w.buf, format, args...)
	w.lines++
}

// String copies the buffer so it survives release.
func (w *lineWriter) String() string {
	return w.buf.String()
}

func (w *lineWriter) release() {
	bytebufferpool.Put(w.buf)
	w.buf = nil
}

// RenderRecordsJSON renders a filtered record list, always as a JSON array.
func RenderRecordsJSON(records []injury.Record) ([]byte, error) {
	if records == nil {
		records = []injury.Record{}
	}
	return sonic.ConfigStd.MarshalIndent(records, "", "  ")
}

func statusLabel(record injury.Record) string {
	if record.Status == "" {
		return "UNKNOWN"
	}
	return strings.ToUpper(string(record.Status))
}

func previousStatusText(record injury.Record) string {
	if record.PreviousStatus == nil {
		return "?"
	}
	return string(*record.PreviousStatus)
}

func gameText(game *injury.GameToday) (string, string) {
	if game == nil {
		return placeholderTBD, placeholderTBD
	}
	opponent, at := game.Opponent, game.Time
	if strings.TrimSpace(opponent) == "" {
		opponent = placeholderTBD
	}
	if strings.TrimSpace(at) == "" {
		at = placeholderTBD
	}
	return opponent, at
}
