package injury

import "strings"

// Sport identifies which league family a record belongs to.
type Sport string

const (
	SportNBA    Sport = "nba"
	SportMLB    Sport = "mlb"
	SportSoccer Sport = "soccer"
)

const UndisclosedInjury = "Undisclosed"

// AllSports lists the supported sports in report order.
func AllSports() []Sport {
	return []Sport{SportNBA, SportMLB, SportSoccer}
}

func ParseSport(value string) (Sport, bool) {
	switch Sport(strings.ToLower(strings.TrimSpace(value))) {
	case SportNBA:
		return SportNBA, true
	case SportMLB:
		return SportMLB, true
	case SportSoccer:
		return SportSoccer, true
	default:
		return "", false
	}
}

// GameToday is the same-day game context attached by schedule matching.
type GameToday struct {
	Opponent string `json:"opponent"`
	Time     string `json:"time"`
	GameID   string `json:"game_id"`
}

// Record is one player's injury status as reported by a single source.
type Record struct {
	Player         string `json:"player"`
	Team           string `json:"team"`
	Status         Status `json:"status"`
	RawStatus      string `json:"raw_status"`
	Injury         string `json:"injury"`
	Source         string `json:"source"`
	Sport          Sport  `json:"sport"`
	Updated        string `json:"updated"`
	FetchedAt      string `json:"fetched_at"`
	League         string `json:"league,omitempty"`
	ExpectedReturn string `json:"expected_return,omitempty"`

	GameToday      *GameToday `json:"game_today"`
	StatusChanged  bool       `json:"status_changed"`
	PreviousStatus *Status    `json:"previous_status"`
}

// IdentityKey correlates records across sources and across runs.
func IdentityKey(player, team string) string {
	return strings.ToLower(player) + "|" + strings.ToLower(team)
}

func (r Record) Key() string {
	return IdentityKey(r.Player, r.Team)
}

// InjuryOrDefault returns the injury description, falling back to Undisclosed.
func (r Record) InjuryOrDefault() string {
	if strings.TrimSpace(r.Injury) == "" {
		return UndisclosedInjury
	}
	return r.Injury
}
