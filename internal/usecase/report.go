package usecase

import (
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/injury-monitor/internal/domain/injury"
)

const (
	SourceStatusOK    = "ok"
	SourceStatusError = "error"
)

type SourceStatus struct {
	Status string `json:"status"`
	Count  *int   `json:"count,omitempty"`
	Error  string `json:"error,omitempty"`
}

type SportSection struct {
	Injuries      []injury.Record `json:"injuries"`
	TotalInjuries int             `json:"total_injuries"`
	GamesToday    int             `json:"games_today"`
	AffectedGames int             `json:"affected_games"`
	StatusChanges int             `json:"status_changes"`
}

// Report is the single in-memory result of a run. JSON and Summary both render from it.
type Report struct {
	GeneratedAt    time.Time                     `json:"generated_at"`
	Sports         map[injury.Sport]SportSection `json:"sports"`
	SourceStatus   map[string]SourceStatus       `json:"source_status"`
	StatePersisted bool                          `json:"state_persisted"`

	sportOrder  []injury.Sport
	sourceOrder []string
}

// SortRecords orders changed records first, then records with a game today, then by player.
func SortRecords(records []injury.Record) []injury.Record {
	out := append([]injury.Record(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.StatusChanged != b.StatusChanged {
			return a.StatusChanged
		}
		aToday, bToday := a.GameToday != nil, b.GameToday != nil
		if aToday != bToday {
			return aToday
		}
		return a.Player < b.Player
	})
	return out
}

// AffectedGames assumes flagged teams pair up into games: ceil(distinct teams / 2).
// Teams are not checked against each other's game ID, so two teams from different
// games can be counted as one game.
func AffectedGames(records []injury.Record) int {
	teams := make(map[string]struct{})
	for _, record := range records {
		if record.GameToday == nil {
			continue
		}
		teams[strings.ToLower(record.Team)] = struct{}{}
	}
	n := len(teams)
	return n/2 + n%2
}

// BuildSportReport expects records already sorted.
func BuildSportReport(records []injury.Record, gamesToday int) SportSection {
	changes := 0
	for _, record := range records {
		if record.StatusChanged {
			changes++
		}
	}
	if records == nil {
		records = []injury.Record{}
	}
	return SportSection{
		Injuries:      records,
		TotalInjuries: len(records),
		GamesToday:    gamesToday,
		AffectedGames: AffectedGames(records),
		StatusChanges: changes,
	}
}

func (r Report) JSON() ([]byte, error) {
	return sonic.ConfigStd.MarshalIndent(r, "", "  ")
}

// SportsInOrder returns the sports in the order they were requested.
func (r Report) SportsInOrder() []injury.Sport {
	if len(r.sportOrder) > 0 {
		return r.sportOrder
	}
	out := make([]injury.Sport, 0, len(r.Sports))
	for sport := range r.Sports {
		out = append(out, sport)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SourcesInOrder returns source names in registration order, unknown names sorted after.
func (r Report) SourcesInOrder() []string {
	out := make([]string, 0, len(r.SourceStatus))
	seen := make(map[string]struct{}, len(r.SourceStatus))
	for _, name := range r.sourceOrder {
		if _, ok := r.SourceStatus[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	rest := make([]string, 0)
	for name := range r.SourceStatus {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// Changes returns every changed record across sports, in report order.
func (r Report) Changes() []injury.Record {
	return r.filter(func(record injury.Record) bool { return record.StatusChanged })
}

// TodayImpact returns every record whose team plays today, in report order.
func (r Report) TodayImpact() []injury.Record {
	return r.filter(func(record injury.Record) bool { return record.GameToday != nil })
}

func (r Report) filter(keep func(injury.Record) bool) []injury.Record {
	out := make([]injury.Record, 0)
	for _, sport := range r.SportsInOrder() {
		for _, record := range r.Sports[sport].Injuries {
			if keep(record) {
				out = append(out, record)
			}
		}
	}
	return out
}
