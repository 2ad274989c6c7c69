package injurysources

import (
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/injury-monitor/internal/domain/injury"
)

const (
	unknownTeam   = "Unknown"
	unknownPlayer = "Unknown"
)

var (
	rowValidator = validator.New()
	errSkipRow   = crerr.New("blank or header row")
)

// rowInput is one scraped row before normalization.
type rowInput struct {
	Player         string `validate:"required,max=160"`
	Team           string `validate:"max=160"`
	RawStatus      string
	Injury         string
	Source         string `validate:"required"`
	Sport          string `validate:"required,oneof=nba mlb soccer"`
	Updated        string
	League         string
	ExpectedReturn string
}

// newRecord trims and validates a row and builds the normalized record.
// Blank and header rows ("name", "player") are rejected with errSkipRow.
func newRecord(in rowInput, fetchedAt time.Time) (injury.Record, error) {
	in.Player = cleanText(in.Player)
	in.Team = cleanText(in.Team)
	in.RawStatus = cleanText(in.RawStatus)
	in.Injury = cleanText(in.Injury)
	in.Updated = cleanText(in.Updated)
	in.ExpectedReturn = cleanText(in.ExpectedReturn)

	switch strings.ToLower(in.Player) {
	case "", "name", "player":
		return injury.Record{}, errSkipRow
	}
	if err := rowValidator.Struct(in); err != nil {
		return injury.Record{}, crerr.Wrap(err, "invalid injury row")
	}

	team := in.Team
	if team == "" {
		team = unknownTeam
	}
	injuryText := in.Injury
	if injuryText == "" {
		injuryText = injury.UndisclosedInjury
	}

	return injury.Record{
		Player:         in.Player,
		Team:           team,
		Status:         injury.NormalizeStatus(in.RawStatus),
		RawStatus:      in.RawStatus,
		Injury:         injuryText,
		Source:         in.Source,
		Sport:          injury.Sport(in.Sport),
		Updated:        in.Updated,
		FetchedAt:      fetchedAt.UTC().Format(time.RFC3339),
		League:         in.League,
		ExpectedReturn: in.ExpectedReturn,
	}, nil
}

// cleanText collapses runs of whitespace and trims the ends.
func cleanText(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
