package injurysources

import (
	"testing"
	"time"

	"github.com/riskibarqy/injury-monitor/internal/domain/injury"
	"github.com/riskibarqy/injury-monitor/internal/platform/logging"
)

func sourceNames(t *testing.T, cfg RegistryConfig) []string {
	t.Helper()
	sources, err := Registry(cfg, &stubPageGetter{}, logging.Default())
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	names := make([]string, 0, len(sources))
	for _, source := range sources {
		names = append(names, source.Name())
	}
	return names
}

func TestRegistry_Order(t *testing.T) {
	t.Parallel()

	got := sourceNames(t, RegistryConfig{SoccerLeagues: []string{"premier-league", " MLS "}})
	want := []string{
		"espn_nba", "cbs_nba", "nba_official",
		"espn_mlb", "cbs_mlb", "mlb_transactions",
		"espn_soccer_premier-league", "espn_soccer_mls",
	}
	if len(got) != len(want) {
		t.Fatalf("unexpected sources: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("source %d = %s, want %s (all: %v)", i, got[i], want[i], got)
		}
	}
}

func TestRegistry_Disabled(t *testing.T) {
	t.Parallel()

	got := sourceNames(t, RegistryConfig{Disabled: []string{"CBS_NBA", "nba_official", "cbs_mlb"}})
	want := []string{"espn_nba", "espn_mlb", "mlb_transactions"}
	if len(got) != len(want) {
		t.Fatalf("unexpected sources: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("source %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestNewRecord(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 5, 9, 30, 0, 0, time.FixedZone("EST", -5*3600))
	record, err := newRecord(rowInput{
		Player:    "  Ja   Morant ",
		RawStatus: " OUT ",
		Source:    "espn",
		Sport:     "nba",
	}, at)
	if err != nil {
		t.Fatalf("new record: %v", err)
	}
	if record.Player != "Ja Morant" || record.Team != "Unknown" || record.Status != injury.StatusOut || record.RawStatus != "OUT" {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.Injury != injury.UndisclosedInjury || record.FetchedAt != "2026-03-05T14:30:00Z" || record.Updated != "" {
		t.Fatalf("unexpected defaults: %+v", record)
	}

	for _, player := range []string{"", "  ", "Name", "PLAYER"} {
		if _, err := newRecord(rowInput{Player: player, Source: "espn", Sport: "nba"}, at); err != errSkipRow {
			t.Fatalf("expected skip for %q, got %v", player, err)
		}
	}
	if _, err := newRecord(rowInput{Player: "Someone", Source: "espn", Sport: "nhl"}, at); err == nil {
		t.Fatalf("expected validation error for unsupported sport")
	}
}
