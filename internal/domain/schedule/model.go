package schedule

import (
	"strings"
	"unicode"

	"github.com/riskibarqy/injury-monitor/internal/domain/injury"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Entry is one team's view of a game scheduled today.
type Entry struct {
	Sport    injury.Sport `json:"sport"`
	Opponent string       `json:"opponent"`
	Time     string       `json:"time"`
	GameID   string       `json:"game_id"`
	Home     bool         `json:"home"`
}

// TeamGameMap indexes today's games by TeamKey.
type TeamGameMap map[string]Entry

// TeamKey lowercases name, collapses inner whitespace and strips diacritics,
// so "Atlético  Madrid" and "atletico madrid" share a key.
func TeamKey(name string) string {
	name = strings.ToLower(strings.Join(strings.Fields(name), " "))
	if name == "" {
		return ""
	}
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		return name
	}
	return folded
}
