package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/injury-monitor/internal/domain/injury"
	"github.com/riskibarqy/injury-monitor/internal/domain/schedule"
)

func TestMatchTeam_SubstringExample(t *testing.T) {
	t.Parallel()

	games := schedule.TeamGameMap{
		"los angeles lakers": {Sport: injury.SportNBA, Opponent: "Warriors", Time: "19:30", GameID: "g1"},
	}

	got := AnnotateWithSchedule([]injury.Record{{Player: "LeBron James", Team: "Lakers"}}, games)
	if got[0].GameToday == nil {
		t.Fatalf("expected a game today")
	}
	if got[0].GameToday.Opponent != "Warriors" {
		t.Fatalf("unexpected opponent: %s", got[0].GameToday.Opponent)
	}
}

func TestMatchTeam_FoldsAccents(t *testing.T) {
	t.Parallel()

	games := BuildTeamGameMap(context.Background(), &stubScheduleProvider{games: map[injury.Sport][]ExternalGame{
		injury.SportSoccer: {{GameID: "s1", HomeTeam: "Atlético Madrid", AwayTeam: "Sevilla", StartTime: "20:00"}},
	}}, []injury.Sport{injury.SportSoccer}, nil)

	entry, ok := MatchTeam("Atletico  Madrid", games)
	if !ok || entry.Opponent != "Sevilla" || !entry.Home {
		t.Fatalf("expected accent-insensitive match, got %+v ok=%v", entry, ok)
	}
}

func TestMatchTeam_ExactBeatsSubstring(t *testing.T) {
	t.Parallel()

	games := schedule.TeamGameMap{
		"boston celtics": {Opponent: "Substring"},
		"celtics":        {Opponent: "Exact"},
	}

	entry, ok := MatchTeam("Celtics", games)
	if !ok || entry.Opponent != "Exact" {
		t.Fatalf("expected exact match, got %+v ok=%v", entry, ok)
	}
}

func TestMatchTeam_SubstringBeatsLastWord(t *testing.T) {
	t.Parallel()

	// "aaa sox" sorts first and only matches on last word; substring must still win.
	games := schedule.TeamGameMap{
		"aaa sox":           {Opponent: "LastWord"},
		"chicago white sox": {Opponent: "Substring"},
	}

	entry, ok := MatchTeam("White Sox", games)
	if !ok || entry.Opponent != "Substring" {
		t.Fatalf("expected substring match, got %+v ok=%v", entry, ok)
	}
}

func TestMatchTeam_LastWordFallback(t *testing.T) {
	t.Parallel()

	games := schedule.TeamGameMap{
		"la clippers": {Opponent: "Nuggets"},
	}

	entry, ok := MatchTeam("Los Angeles Clippers", games)
	if !ok || entry.Opponent != "Nuggets" {
		t.Fatalf("expected last-word match, got %+v ok=%v", entry, ok)
	}
}

func TestMatchTeam_NoMatchAndBlankTeam(t *testing.T) {
	t.Parallel()

	games := schedule.TeamGameMap{
		"denver nuggets": {Opponent: "Clippers"},
	}

	if _, ok := MatchTeam("Miami Heat", games); ok {
		t.Fatalf("expected no match")
	}
	if _, ok := MatchTeam("   ", games); ok {
		t.Fatalf("blank team must never match")
	}

	got := AnnotateWithSchedule([]injury.Record{{Player: "X", Team: "Miami Heat"}}, games)
	if got[0].GameToday != nil {
		t.Fatalf("expected nil game today, got %+v", got[0].GameToday)
	}
}

func TestMatchTeam_DeterministicAmongSubstringCandidates(t *testing.T) {
	t.Parallel()

	games := schedule.TeamGameMap{
		"new york yankees": {Opponent: "Second"},
		"new york mets":    {Opponent: "First"},
	}

	for i := 0; i < 50; i++ {
		entry, ok := MatchTeam("New York", games)
		if !ok || entry.Opponent != "First" {
			t.Fatalf("expected sorted-first candidate, got %+v", entry)
		}
	}
}

func TestAnnotateWithSchedule_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	input := []injury.Record{{Player: "A", Team: "Lakers"}}
	_ = AnnotateWithSchedule(input, schedule.TeamGameMap{"lakers": {Opponent: "Suns"}})
	if input[0].GameToday != nil {
		t.Fatalf("input slice must not be mutated")
	}
}

type stubScheduleProvider struct {
	games map[injury.Sport][]ExternalGame
	errs  map[injury.Sport]error
	calls map[injury.Sport]int
}

func (s *stubScheduleProvider) TodaysGames(_ context.Context, sport injury.Sport) ([]ExternalGame, error) {
	if s.calls == nil {
		s.calls = make(map[injury.Sport]int)
	}
	s.calls[sport]++
	if err := s.errs[sport]; err != nil {
		return nil, err
	}
	return s.games[sport], nil
}

func TestBuildTeamGameMap_BothSidesAndFailureDegrades(t *testing.T) {
	t.Parallel()

	provider := &stubScheduleProvider{
		games: map[injury.Sport][]ExternalGame{
			injury.SportNBA: {{GameID: "g1", HomeTeam: "Los Angeles Lakers", AwayTeam: "Golden State Warriors", StartTime: "19:30"}},
		},
		errs: map[injury.Sport]error{injury.SportMLB: errors.New("provider down")},
	}

	games := BuildTeamGameMap(context.Background(), provider, injury.AllSports(), nil)
	if len(games) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(games))
	}
	home := games["los angeles lakers"]
	if !home.Home || home.Opponent != "Golden State Warriors" || home.GameID != "g1" || home.Sport != injury.SportNBA {
		t.Fatalf("unexpected home entry: %+v", home)
	}
	away := games["golden state warriors"]
	if away.Home || away.Opponent != "Los Angeles Lakers" || away.Time != "19:30" {
		t.Fatalf("unexpected away entry: %+v", away)
	}
}

func TestScheduleBook_FetchesEachSportOncePerRun(t *testing.T) {
	t.Parallel()

	provider := &stubScheduleProvider{
		games: map[injury.Sport][]ExternalGame{
			injury.SportNBA: {{GameID: "g1", HomeTeam: "Heat", AwayTeam: "Knicks"}},
		},
		errs: map[injury.Sport]error{injury.SportSoccer: errors.New("timeout")},
	}
	book := newScheduleBook(provider, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_ = book.TeamGameMap(ctx)
		games, err := book.TodaysGames(ctx, injury.SportNBA)
		if err != nil || len(games) != 1 {
			t.Fatalf("unexpected games: %v err=%v", games, err)
		}
		soccer, err := book.TodaysGames(ctx, injury.SportSoccer)
		if err != nil || len(soccer) != 0 {
			t.Fatalf("failed sport should degrade to empty: %v err=%v", soccer, err)
		}
	}

	for _, sport := range injury.AllSports() {
		if provider.calls[sport] != 1 {
			t.Fatalf("expected 1 provider call for %s, got %d", sport, provider.calls[sport])
		}
	}
}
