package injurysources

import (
	"context"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/injury-monitor/internal/domain/injury"
	"github.com/riskibarqy/injury-monitor/internal/platform/logging"
)

const (
	mlbTransactionsURL   = "https://statsapi.mlb.com/api/v1/transactions"
	mlbTransactionLayout = "01/02/2006"
)

var ilTransactionTypes = map[string]struct{}{
	"Placed on IL":             {},
	"Placed on 10-Day IL":      {},
	"Placed on 15-Day IL":      {},
	"Placed on 60-Day IL":      {},
	"Activated from IL":        {},
	"Activated from 10-Day IL": {},
	"Activated from 15-Day IL": {},
	"Activated from 60-Day IL": {},
	"Transferred to 60-Day IL": {},
}

var injuryMarkers = []string{"with", "due to", "suffering from"}

type transactionsEnvelope struct {
	Transactions []transaction `json:"transactions"`
}

type transaction struct {
	Description   string `json:"description"`
	TypeDesc      string `json:"typeDesc"`
	EffectiveDate string `json:"effectiveDate"`
	Player        struct {
		FullName string `json:"fullName"`
	} `json:"player"`
	Team struct {
		Name string `json:"name"`
	} `json:"team"`
}

// MLBTransactionsSource reads today's injured-list moves from the MLB Stats API.
type MLBTransactionsSource struct {
	pageSource
}

func NewMLBTransactionsSource(fetcher PageGetter, logger *logging.Logger) *MLBTransactionsSource {
	return &MLBTransactionsSource{pageSource: newPageSource(sourceMLBStatsAPI, injury.SportMLB, mlbTransactionsURL, fetcher, logger)}
}

func (s *MLBTransactionsSource) Fetch(ctx context.Context) ([]injury.Record, error) {
	now := s.now().UTC()
	day := now.Format(mlbTransactionLayout)
	query := url.Values{}
	query.Set("startDate", day)
	query.Set("endDate", day)

	body, err := s.fetcher.Get(ctx, s.url+"?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var envelope transactionsEnvelope
	if err := sonic.Unmarshal(body, &envelope); err != nil {
		return nil, crerr.Wrap(err, "decode mlb transactions")
	}
	return s.parsed(ctx, transactionRecords(envelope.Transactions, now)), nil
}

func transactionRecords(transactions []transaction, fetchedAt time.Time) []injury.Record {
	out := make([]injury.Record, 0)
	for _, txn := range transactions {
		if !isInjuredListMove(txn) {
			continue
		}

		player := txn.Player.FullName
		if strings.TrimSpace(player) == "" {
			player = unknownPlayer
		}
		record, err := newRecord(rowInput{
			Player:    player,
			Team:      txn.Team.Name,
			RawStatus: txn.TypeDesc,
			Injury:    injuryFromDescription(txn.Description),
			Source:    sourceMLBStatsAPI,
			Sport:     string(injury.SportMLB),
			Updated:   txn.EffectiveDate,
		}, fetchedAt)
		if err != nil {
			continue
		}
		record.Status = transactionStatus(txn)
		out = append(out, record)
	}
	return out
}

func isInjuredListMove(txn transaction) bool {
	if _, ok := ilTransactionTypes[txn.TypeDesc]; ok {
		return true
	}
	description := strings.ToLower(txn.Description)
	return strings.Contains(description, "injured list") ||
		strings.Contains(strings.ToLower(txn.TypeDesc), "il") ||
		strings.Contains(description, "disabled list")
}

func transactionStatus(txn transaction) injury.Status {
	text := strings.ToLower(txn.TypeDesc) + " " + strings.ToLower(txn.Description)
	switch {
	case strings.Contains(text, "activated"):
		return injury.StatusActive
	case strings.Contains(text, "60-day"):
		return injury.StatusIL60
	case strings.Contains(text, "15-day"):
		return injury.StatusIL15
	case strings.Contains(text, "10-day"):
		return injury.StatusIL10
	default:
		return injury.StatusIL15
	}
}

// injuryFromDescription keeps the text after the first marker found, e.g.
// "... with right elbow inflammation." becomes "right elbow inflammation".
func injuryFromDescription(description string) string {
	lower := strings.ToLower(description)
	for _, marker := range injuryMarkers {
		idx := strings.Index(lower, marker)
		if idx < 0 {
			continue
		}
		return strings.TrimRight(strings.TrimSpace(description[idx+len(marker):]), ".")
	}
	return description
}
