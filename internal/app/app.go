package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/injury-monitor/external/injurysources"
	"github.com/riskibarqy/injury-monitor/external/shipp"
	"github.com/riskibarqy/injury-monitor/internal/config"
	"github.com/riskibarqy/injury-monitor/internal/domain/state"
	"github.com/riskibarqy/injury-monitor/internal/infrastructure/repository/file"
	"github.com/riskibarqy/injury-monitor/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/injury-monitor/internal/infrastructure/repository/postgres"
	redisrepo "github.com/riskibarqy/injury-monitor/internal/infrastructure/repository/redis"
	"github.com/riskibarqy/injury-monitor/internal/observability"
	"github.com/riskibarqy/injury-monitor/internal/platform/logging"
	"github.com/riskibarqy/injury-monitor/internal/platform/resilience"
	"github.com/riskibarqy/injury-monitor/internal/usecase"
)

// Monitor bundles the wired service with everything that must be released after a run.
type Monitor struct {
	Service *usecase.MonitorService
	closers []func(context.Context) error
}

// NewMonitor wires config into a ready MonitorService: state store, schedule
// client, source registry and collector.
func NewMonitor(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Monitor, error) {
	if logger == nil {
		logger = logging.Default()
	}
	m := &Monitor{}

	shutdownTelemetry, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init uptrace: %w", err)
	}
	m.closers = append(m.closers, shutdownTelemetry)

	stateRepo, closeState, err := newStateStore(ctx, cfg, logger)
	if err != nil {
		_ = m.Close(ctx)
		return nil, err
	}
	if closeState != nil {
		m.closers = append(m.closers, closeState)
	}

	schedules, err := shipp.NewClient(shipp.ClientConfig{
		BaseURL:      cfg.ShippBaseURL,
		APIKey:       cfg.ShippAPIKey,
		Timeout:      cfg.ShippTimeout,
		MaxRetries:   cfg.ShippMaxRetries,
		RetryBackoff: cfg.ShippRetryBackoff,
		Logger:       logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ShippCircuitEnabled,
			FailureThreshold: cfg.ShippCircuitFailureCount,
			OpenTimeout:      cfg.ShippCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ShippCircuitHalfOpenMaxReq,
		},
	})
	if err != nil {
		_ = m.Close(ctx)
		return nil, fmt.Errorf("build shipp client: %w", err)
	}

	fetcher := injurysources.NewPageFetcher(injurysources.FetcherConfig{
		Timeout:     cfg.SourceTimeout,
		RetryDelay:  cfg.SourceRetryDelay,
		PoliteDelay: cfg.SourcePoliteDelay,
		Logger:      logger,
	})
	sources, err := injurysources.Registry(injurysources.RegistryConfig{
		SoccerLeagues: cfg.SoccerLeagues,
		Disabled:      cfg.SourcesDisabled,
	}, fetcher, logger)
	if err != nil {
		_ = m.Close(ctx)
		return nil, err
	}
	collector := usecase.NewSourceCollector(sources, cfg.SourceMaxWorkers, logger)

	m.Service = usecase.NewMonitorService(collector, schedules, stateRepo, logger)
	logger.Debug("monitor wired",
		"state_backend", cfg.StateBackend,
		"sources", len(sources),
		"max_workers", cfg.SourceMaxWorkers,
	)
	return m, nil
}

// Close releases resources in reverse order of acquisition.
func (m *Monitor) Close(ctx context.Context) error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	m.closers = nil
	return errors.Join(errs...)
}

func newStateStore(ctx context.Context, cfg config.Config, logger *logging.Logger) (state.Store, func(context.Context) error, error) {
	switch cfg.StateBackend {
	case config.StateBackendMemory:
		return memory.NewStateRepository(nil), nil, nil
	case config.StateBackendRedis:
		client, err := redisrepo.NewClient(cfg.StateRedisURL)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func(context.Context) error { return client.Close() }
		return redisrepo.NewStateRepository(client, cfg.StateRedisKey), closeFn, nil
	case config.StateBackendPostgres:
		db, err := openDB(ctx, cfg.DBURL, logger)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func(context.Context) error { return db.Close() }
		return postgres.NewStateRepository(db), closeFn, nil
	default:
		return file.NewStateRepository(cfg.StatePath), nil, nil
	}
}
