package injurysources

import (
	"context"
	"time"

	"github.com/riskibarqy/injury-monitor/internal/domain/injury"
	"github.com/riskibarqy/injury-monitor/internal/platform/logging"
)

const (
	sourceESPN        = "espn"
	sourceCBS         = "cbs"
	sourceNBAOfficial = "nba_official"
	sourceMLBStatsAPI = "mlb_transactions"
)

// pageSource holds what every adapter shares: where it reads from and how.
type pageSource struct {
	name    string
	sport   injury.Sport
	url     string
	fetcher PageGetter
	logger  *logging.Logger
	now     func() time.Time
}

func newPageSource(name string, sport injury.Sport, url string, fetcher PageGetter, logger *logging.Logger) pageSource {
	if logger == nil {
		logger = logging.Default()
	}
	return pageSource{
		name:    name,
		sport:   sport,
		url:     url,
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
}

func (s pageSource) Name() string {
	return s.name
}

func (s pageSource) Sport() injury.Sport {
	return s.sport
}

func (s pageSource) loadPage(ctx context.Context) (*page, error) {
	body, err := s.fetcher.Get(ctx, s.url)
	if err != nil {
		return nil, err
	}
	return parsePage(body)
}

func (s pageSource) parsed(ctx context.Context, records []injury.Record) []injury.Record {
	s.logger.InfoContext(ctx, "parsed injuries", "source", s.name, "sport", s.sport, "count", len(records))
	return records
}
