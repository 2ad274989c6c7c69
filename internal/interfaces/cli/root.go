package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/riskibarqy/injury-monitor/internal/config"
	"github.com/riskibarqy/injury-monitor/internal/domain/injury"
	"github.com/riskibarqy/injury-monitor/internal/platform/logging"
	"github.com/riskibarqy/injury-monitor/internal/usecase"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap/zapcore"
)

const (
	FormatSummary = "summary"
	FormatJSON    = "json"

	sportAll = "all"

	tracerName  = "injury-monitor/internal/interfaces/cli"
	runSpanName = "injury-monitor.run"
)

// Monitor is the part of MonitorService the command drives.
type Monitor interface {
	FullReport(ctx context.Context, sports []injury.Sport) (usecase.Report, error)
	StatusChanges(ctx context.Context, sports []injury.Sport) ([]injury.Record, error)
	TodayImpact(ctx context.Context, sports []injury.Sport) ([]injury.Record, error)
}

// Builder wires a Monitor from loaded config. The returned close func may be nil.
type Builder func(ctx context.Context, cfg config.Config, logger *logging.Logger) (Monitor, func(context.Context) error, error)

type options struct {
	sport       string
	changesOnly bool
	todayOnly   bool
	format      string
	verbose     bool
	statePath   string
}

// NewRootCommand builds the injury-monitor command. loadConfig runs after flag
// validation so bad flags fail without touching the environment.
func NewRootCommand(build Builder, loadConfig func() (config.Config, error)) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "injury-monitor",
		Short: "Aggregate injury reports across NBA, MLB and soccer",
		Long: `injury-monitor scrapes public injury reports, merges them per player,
matches them against today's schedule and flags status changes since the
previous run.`,
		Example: `  injury-monitor
  injury-monitor --sport nba --changes-only
  injury-monitor --today-only --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts, build, loadConfig)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.sport, "sport", sportAll, "sport to monitor: nba, mlb, soccer or all")
	flags.BoolVar(&opts.changesOnly, "changes-only", false, "show only status changes since the last check")
	flags.BoolVar(&opts.todayOnly, "today-only", false, "show only injuries affecting today's games")
	flags.StringVar(&opts.format, "format", FormatSummary, "output format: summary or json")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&opts.statePath, "state-path", "", "state file path (file backend only)")

	return cmd
}

func run(cmd *cobra.Command, opts *options, build Builder, loadConfig func() (config.Config, error)) (err error) {
	sports, err := parseSportFlag(opts.sport)
	if err != nil {
		return err
	}
	format := strings.ToLower(strings.TrimSpace(opts.format))
	if format != FormatSummary && format != FormatJSON {
		return fmt.Errorf("invalid --format %q: valid values are %s, %s", opts.format, FormatSummary, FormatJSON)
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if path := strings.TrimSpace(opts.statePath); path != "" {
		cfg.StatePath = path
	}
	if opts.verbose {
		cfg.LogLevel = zapcore.DebugLevel
	}

	logger := logging.New(cfg.LogFormat, cfg.LogLevel, cmd.ErrOrStderr())
	logging.SetDefault(logger)
	defer func() {
		_ = logger.Sync()
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	monitor, closeFn, err := build(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build monitor: %w", err)
	}
	if closeFn != nil {
		defer func() {
			if err := closeFn(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("close monitor resources failed", "error", err)
			}
		}()
	}

	// The tracer is resolved after build so it picks up the provider that
	// build installs. The span ends before the close func flushes it.
	ctx, span := otel.Tracer(tracerName).Start(ctx, runSpanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("injury.sport_flag", opts.sport),
			attribute.String("injury.mode", opts.mode()),
			attribute.String("injury.format", format),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	out := cmd.OutOrStdout()
	switch {
	case opts.changesOnly:
		changes, err := monitor.StatusChanges(ctx, sports)
		if err != nil {
			return err
		}
		return writeRecords(out, format, changes, usecase.RenderChanges)
	case opts.todayOnly:
		impact, err := monitor.TodayImpact(ctx, sports)
		if err != nil {
			return err
		}
		return writeRecords(out, format, impact, usecase.RenderTodayImpact)
	default:
		report, err := monitor.FullReport(ctx, sports)
		if err != nil {
			return err
		}
		if format == FormatJSON {
			raw, err := report.JSON()
			if err != nil {
				return fmt.Errorf("encode report: %w", err)
			}
			return writeLine(out, string(raw))
		}
		return writeLine(out, report.Summary())
	}
}

func (o *options) mode() string {
	switch {
	case o.changesOnly:
		return "changes_only"
	case o.todayOnly:
		return "today_only"
	default:
		return "full"
	}
}

// parseSportFlag maps "all" to nil, which the service reads as every sport.
func parseSportFlag(value string) ([]injury.Sport, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" || value == sportAll {
		return nil, nil
	}
	sport, ok := injury.ParseSport(value)
	if !ok {
		return nil, fmt.Errorf("invalid --sport %q: valid values are nba, mlb, soccer, all", value)
	}
	return []injury.Sport{sport}, nil
}

func writeRecords(out io.Writer, format string, records []injury.Record, render func([]injury.Record) string) error {
	if format == FormatJSON {
		raw, err := usecase.RenderRecordsJSON(records)
		if err != nil {
			return fmt.Errorf("encode records: %w", err)
		}
		return writeLine(out, string(raw))
	}
	return writeLine(out, render(records))
}

func writeLine(out io.Writer, text string) error {
	_, err := fmt.Fprintln(out, text)
	return err
}
