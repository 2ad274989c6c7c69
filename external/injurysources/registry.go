package injurysources

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/injury-monitor/internal/domain/injury"
	"github.com/riskibarqy/injury-monitor/internal/platform/logging"
	"github.com/riskibarqy/injury-monitor/internal/usecase"
)

type RegistryConfig struct {
	SoccerLeagues []string
	// Disabled holds status keys such as cbs_mlb to leave out.
	Disabled []string
}

// Registry builds every adapter in collection order, minus the disabled ones.
func Registry(cfg RegistryConfig, fetcher PageGetter, logger *logging.Logger) ([]usecase.InjurySource, error) {
	cbsNBA, err := NewCBSSource(injury.SportNBA, fetcher, logger)
	if err != nil {
		return nil, fmt.Errorf("build cbs nba source: %w", err)
	}
	cbsMLB, err := NewCBSSource(injury.SportMLB, fetcher, logger)
	if err != nil {
		return nil, fmt.Errorf("build cbs mlb source: %w", err)
	}

	all := []usecase.InjurySource{
		NewESPNSource(injury.SportNBA, fetcher, logger),
		cbsNBA,
		NewNBAOfficialSource(fetcher, logger),
		NewESPNSource(injury.SportMLB, fetcher, logger),
		cbsMLB,
		NewMLBTransactionsSource(fetcher, logger),
	}
	for _, league := range cfg.SoccerLeagues {
		league = strings.ToLower(strings.TrimSpace(league))
		if league == "" {
			continue
		}
		all = append(all, NewSoccerSource(league, fetcher, logger))
	}

	disabled := make(map[string]struct{}, len(cfg.Disabled))
	for _, name := range cfg.Disabled {
		disabled[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}

	out := make([]usecase.InjurySource, 0, len(all))
	for _, source := range all {
		if _, skip := disabled[source.Name()]; skip {
			continue
		}
		out = append(out, source)
	}
	return out, nil
}
