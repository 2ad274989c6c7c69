package usecase

import (
	"context"
	"strings"

	"github.com/riskibarqy/injury-monitor/internal/domain/injury"
	"github.com/riskibarqy/injury-monitor/internal/domain/schedule"
	"github.com/riskibarqy/injury-monitor/internal/platform/cache"
	"github.com/riskibarqy/injury-monitor/internal/platform/logging"
)

type ScheduleProvider interface {
	TodaysGames(ctx context.Context, sport injury.Sport) ([]ExternalGame, error)
}

type ExternalGame struct {
	GameID    string
	HomeTeam  string
	AwayTeam  string
	StartTime string
	Status    string
}

// BuildTeamGameMap indexes both sides of every game for the given sports.
// A sport whose schedule cannot be fetched contributes no entries.
func BuildTeamGameMap(ctx context.Context, provider ScheduleProvider, sports []injury.Sport, logger *logging.Logger) schedule.TeamGameMap {
	if logger == nil {
		logger = logging.Default()
	}

	out := make(schedule.TeamGameMap)
	if provider == nil {
		return out
	}

	for _, sport := range sports {
		games, err := provider.TodaysGames(ctx, sport)
		if err != nil {
			logger.WarnContext(ctx, "fetch schedule failed, sport has no games today", "sport", sport, "error", err)
			continue
		}
		for _, game := range games {
			home := strings.TrimSpace(game.HomeTeam)
			away := strings.TrimSpace(game.AwayTeam)
			if home != "" {
				out[schedule.TeamKey(home)] = schedule.Entry{
					Sport:    sport,
					Opponent: away,
					Time:     game.StartTime,
					GameID:   game.GameID,
					Home:     true,
				}
			}
			if away != "" {
				out[schedule.TeamKey(away)] = schedule.Entry{
					Sport:    sport,
					Opponent: home,
					Time:     game.StartTime,
					GameID:   game.GameID,
					Home:     false,
				}
			}
		}
	}
	return out
}

const teamGameMapKey = "team-game-map"

// scheduleBook memoizes schedule lookups for a single run. Provider failures are
// remembered as empty schedules so a flaky provider is asked at most once per sport.
type scheduleBook struct {
	provider ScheduleProvider
	games    *cache.Store[[]ExternalGame]
	teamMap  *cache.Store[schedule.TeamGameMap]
	logger   *logging.Logger
}

func newScheduleBook(provider ScheduleProvider, logger *logging.Logger) *scheduleBook {
	if logger == nil {
		logger = logging.Default()
	}
	return &scheduleBook{
		provider: provider,
		games:    cache.NewStore[[]ExternalGame](0),
		teamMap:  cache.NewStore[schedule.TeamGameMap](0),
		logger:   logger,
	}
}

func (b *scheduleBook) TodaysGames(ctx context.Context, sport injury.Sport) ([]ExternalGame, error) {
	return b.games.GetOrLoad(ctx, string(sport), func(ctx context.Context) ([]ExternalGame, error) {
		if b.provider == nil {
			return []ExternalGame{}, nil
		}
		games, err := b.provider.TodaysGames(ctx, sport)
		if err != nil {
			b.logger.WarnContext(ctx, "fetch today's games failed", "sport", sport, "error", err)
			return []ExternalGame{}, nil
		}
		if games == nil {
			games = []ExternalGame{}
		}
		return games, nil
	})
}

// TeamGameMap is built on first use, across every supported sport.
func (b *scheduleBook) TeamGameMap(ctx context.Context) schedule.TeamGameMap {
	games, err := b.teamMap.GetOrLoad(ctx, teamGameMapKey, func(ctx context.Context) (schedule.TeamGameMap, error) {
		return BuildTeamGameMap(ctx, b, injury.AllSports(), b.logger), nil
	})
	if err != nil {
		b.logger.ErrorContext(ctx, "build team game map failed", "error", err)
		return schedule.TeamGameMap{}
	}
	return games
}
