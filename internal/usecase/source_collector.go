package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/injury-monitor/internal/domain/injury"
	"github.com/riskibarqy/injury-monitor/internal/platform/logging"
	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel/attribute"
)

// InjurySource fetches one sport's injuries from one public source.
// Name is the per-source status key, e.g. espn_nba.
type InjurySource interface {
	Name() string
	Sport() injury.Sport
	Fetch(ctx context.Context) ([]injury.Record, error)
}

// SourceResult carries either Records or Err, never both.
type SourceResult struct {
	Name     string
	Sport    injury.Sport
	Records  []injury.Record
	Err      error
	Duration time.Duration
}

func (r SourceResult) OK() bool {
	return r.Err == nil
}

// SourceBatch holds one result per requested source, in registration order.
type SourceBatch struct {
	Results []SourceResult
}

// RecordsFor concatenates the successful results for sport in registration order.
func (b SourceBatch) RecordsFor(sport injury.Sport) []injury.Record {
	out := make([]injury.Record, 0)
	for _, result := range b.Results {
		if result.Sport != sport || !result.OK() {
			continue
		}
		out = append(out, result.Records...)
	}
	return out
}

// Statuses returns the per-source status map and the names in registration order.
func (b SourceBatch) Statuses() (map[string]SourceStatus, []string) {
	statuses := make(map[string]SourceStatus, len(b.Results))
	order := make([]string, 0, len(b.Results))
	for _, result := range b.Results {
		order = append(order, result.Name)
		if !result.OK() {
			statuses[result.Name] = SourceStatus{Status: SourceStatusError, Error: result.Err.Error()}
			continue
		}
		count := len(result.Records)
		statuses[result.Name] = SourceStatus{Status: SourceStatusOK, Count: &count}
	}
	return statuses, order
}

type SourceCollector struct {
	sources    []InjurySource
	maxWorkers int
	logger     *logging.Logger
}

func NewSourceCollector(sources []InjurySource, maxWorkers int, logger *logging.Logger) *SourceCollector {
	if logger == nil {
		logger = logging.Default()
	}
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &SourceCollector{
		sources:    sources,
		maxWorkers: maxWorkers,
		logger:     logger,
	}
}

// CollectInjuries runs every source registered for the requested sports. A failing or
// panicking source becomes an error result; it never aborts the other sources.
func (c *SourceCollector) CollectInjuries(ctx context.Context, sports []injury.Sport) SourceBatch {
	ctx, span := startUsecaseSpan(ctx, "usecase.SourceCollector.CollectInjuries", sportsAttribute(sports))
	defer span.End()

	wanted := make(map[injury.Sport]struct{}, len(sports))
	for _, sport := range sports {
		wanted[sport] = struct{}{}
	}

	selected := make([]InjurySource, 0, len(c.sources))
	for _, source := range c.sources {
		if source == nil {
			continue
		}
		if _, ok := wanted[source.Sport()]; ok {
			selected = append(selected, source)
		}
	}

	results := make([]SourceResult, len(selected))
	if len(selected) == 0 {
		return SourceBatch{Results: results}
	}

	workerCount := c.maxWorkers
	if workerCount > len(selected) {
		workerCount = len(selected)
	}

	if workerCount == 1 {
		for i, source := range selected {
			results[i] = c.fetchOne(ctx, source)
		}
		return SourceBatch{Results: results}
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		c.logger.WarnContext(ctx, "create source worker pool failed, collecting sequentially", "error", err)
		for i, source := range selected {
			results[i] = c.fetchOne(ctx, source)
		}
		return SourceBatch{Results: results}
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for i, source := range selected {
		i, source := i, source
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			results[i] = c.fetchOne(ctx, source)
		}); err != nil {
			workers.Done()
			results[i] = SourceResult{
				Name:  source.Name(),
				Sport: source.Sport(),
				Err:   fmt.Errorf("%w: submit to worker pool: %v", ErrSourceFailed, err),
			}
		}
	}
	workers.Wait()

	return SourceBatch{Results: results}
}

func (c *SourceCollector) fetchOne(ctx context.Context, source InjurySource) SourceResult {
	result := SourceResult{Name: source.Name(), Sport: source.Sport()}
	ctx, span := startUsecaseSpan(ctx, "usecase.SourceCollector.fetchOne", attribute.String("injury.source", result.Name))
	start := time.Now()

	var records []injury.Record
	var fetchErr error
	var catcher panics.Catcher
	catcher.Try(func() {
		records, fetchErr = source.Fetch(ctx)
	})
	result.Duration = time.Since(start)

	if recovered := catcher.Recovered(); recovered != nil {
		fetchErr = fmt.Errorf("%w: %s panicked: %v", ErrSourceFailed, result.Name, recovered.AsError())
	}
	finishSpan(span, fetchErr)
	if fetchErr != nil {
		result.Err = fetchErr
		c.logger.WarnContext(ctx, "injury source failed", "source", result.Name, "sport", result.Sport, "error", fetchErr)
		return result
	}

	if records == nil {
		records = []injury.Record{}
	}
	result.Records = records
	c.logger.InfoContext(ctx, "injury source fetched", "source", result.Name, "sport", result.Sport, "count", len(records), "duration", result.Duration)
	return result
}
