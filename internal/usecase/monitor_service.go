package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/injury-monitor/internal/domain/injury"
	"github.com/riskibarqy/injury-monitor/internal/domain/state"
	"github.com/riskibarqy/injury-monitor/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type injuryCollector interface {
	CollectInjuries(ctx context.Context, sports []injury.Sport) SourceBatch
}

// MonitorService runs the reconciliation pipeline once per call.
type MonitorService struct {
	collector injuryCollector
	schedules ScheduleProvider
	stateRepo state.Store
	logger    *logging.Logger
	now       func() time.Time
}

func NewMonitorService(
	collector injuryCollector,
	schedules ScheduleProvider,
	stateRepo state.Store,
	logger *logging.Logger,
) *MonitorService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MonitorService{
		collector: collector,
		schedules: schedules,
		stateRepo: stateRepo,
		logger:    logger,
		now:       time.Now,
	}
}

// FullReport fetches, reconciles and persists state for the requested sports.
// An empty list means every sport. Only invalid input is returned as an error; source,
// schedule and state failures degrade the report instead.
func (s *MonitorService) FullReport(ctx context.Context, sports []injury.Sport) (Report, error) {
	sports, err := normalizeSports(sports)
	if err != nil {
		return Report{}, err
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.MonitorService.FullReport", sportsAttribute(sports))
	if s.collector == nil {
		err := fmt.Errorf("%w: injury collector is not configured", ErrDependencyUnavailable)
		finishSpan(span, err)
		return Report{}, err
	}
	defer span.End()

	previous := s.loadState(ctx)
	batch := s.collector.CollectInjuries(ctx, sports)
	book := newScheduleBook(s.schedules, s.logger)

	generatedAt := s.now().UTC()
	seenAt := generatedAt.Format(time.RFC3339)

	sections := make(map[injury.Sport]SportSection, len(sports))
	fragment := make(state.Snapshot)
	for _, sport := range sports {
		records := Dedupe(batch.RecordsFor(sport))
		records = AnnotateWithSchedule(records, book.TeamGameMap(ctx))
		records = DetectChanges(records, previous)
		records = SortRecords(records)

		games, _ := book.TodaysGames(ctx, sport)
		section := BuildSportReport(records, len(games))
		sections[sport] = section

		for key, entry := range SnapshotOf(records, sport, seenAt) {
			fragment[key] = entry
		}

		s.logger.InfoContext(ctx, "sport reconciled",
			"sport", sport,
			"injuries", section.TotalInjuries,
			"status_changes", section.StatusChanges,
			"games_today", section.GamesToday,
			"affected_games", section.AffectedGames,
		)
	}

	persisted := s.saveState(ctx, previous.Merge(fragment))
	statuses, order := batch.Statuses()
	span.SetAttributes(attribute.Bool("injury.state_persisted", persisted))

	return Report{
		GeneratedAt:    generatedAt,
		Sports:         sections,
		SourceStatus:   statuses,
		StatePersisted: persisted,
		sportOrder:     sports,
		sourceOrder:    order,
	}, nil
}

func (s *MonitorService) SportReport(ctx context.Context, sport injury.Sport) (Report, error) {
	return s.FullReport(ctx, []injury.Sport{sport})
}

// StatusChanges runs a full cycle and keeps only changed records.
func (s *MonitorService) StatusChanges(ctx context.Context, sports []injury.Sport) ([]injury.Record, error) {
	report, err := s.FullReport(ctx, sports)
	if err != nil {
		return nil, err
	}
	return report.Changes(), nil
}

// TodayImpact runs a full cycle and keeps only records whose team plays today.
func (s *MonitorService) TodayImpact(ctx context.Context, sports []injury.Sport) ([]injury.Record, error) {
	report, err := s.FullReport(ctx, sports)
	if err != nil {
		return nil, err
	}
	return report.TodayImpact(), nil
}

func (s *MonitorService) loadState(ctx context.Context) state.Snapshot {
	if s.stateRepo == nil {
		return state.Snapshot{}
	}
	snapshot, err := s.stateRepo.Load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "load previous state failed, change detection starts fresh", "error", err)
		return state.Snapshot{}
	}
	if snapshot == nil {
		return state.Snapshot{}
	}
	return snapshot
}

func (s *MonitorService) saveState(ctx context.Context, snapshot state.Snapshot) bool {
	if s.stateRepo == nil {
		return false
	}
	if err := s.stateRepo.Save(ctx, snapshot); err != nil {
		s.logger.ErrorContext(ctx, "save state failed, next run may report stale changes", "error", err, "entries", len(snapshot))
		return false
	}
	return true
}

func normalizeSports(sports []injury.Sport) ([]injury.Sport, error) {
	if len(sports) == 0 {
		return injury.AllSports(), nil
	}

	out := make([]injury.Sport, 0, len(sports))
	seen := make(map[injury.Sport]struct{}, len(sports))
	for _, raw := range sports {
		sport, ok := injury.ParseSport(string(raw))
		if !ok {
			return nil, fmt.Errorf("%w: unsupported sport %q", ErrInvalidInput, raw)
		}
		if _, dup := seen[sport]; dup {
			continue
		}
		seen[sport] = struct{}{}
		out = append(out, sport)
	}
	return out, nil
}
