package usecase

import (
	"sort"
	"strings"

	"github.com/riskibarqy/injury-monitor/internal/domain/injury"
	"github.com/riskibarqy/injury-monitor/internal/domain/schedule"
)

// MatchTeam resolves a free-text team name against today's games, compared by
// schedule.TeamKey. Exact key first, then substring in either direction, then equal last word.
// Fuzzy passes walk the keys in sorted order so ties resolve the same way every run.
func MatchTeam(team string, games schedule.TeamGameMap) (schedule.Entry, bool) {
	needle := schedule.TeamKey(team)
	if needle == "" || len(games) == 0 {
		return schedule.Entry{}, false
	}
	if entry, ok := games[needle]; ok {
		return entry, true
	}

	keys := make([]string, 0, len(games))
	for key := range games {
		if strings.TrimSpace(key) == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if strings.Contains(key, needle) || strings.Contains(needle, key) {
			return games[key], true
		}
	}

	nickname := lastWord(needle)
	for _, key := range keys {
		if lastWord(key) == nickname {
			return games[key], true
		}
	}

	return schedule.Entry{}, false
}

// AnnotateWithSchedule returns a copy of records with GameToday set from games, or nil on no match.
func AnnotateWithSchedule(records []injury.Record, games schedule.TeamGameMap) []injury.Record {
	out := make([]injury.Record, len(records))
	for i, record := range records {
		record.GameToday = nil
		if entry, ok := MatchTeam(record.Team, games); ok {
			record.GameToday = &injury.GameToday{
				Opponent: entry.Opponent,
				Time:     entry.Time,
				GameID:   entry.GameID,
			}
		}
		out[i] = record
	}
	return out
}

func lastWord(value string) string {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
