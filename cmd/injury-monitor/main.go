package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/injury-monitor/internal/app"
	"github.com/riskibarqy/injury-monitor/internal/config"
	"github.com/riskibarqy/injury-monitor/internal/interfaces/cli"
	"github.com/riskibarqy/injury-monitor/internal/platform/logging"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand(buildMonitor, config.Load)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func buildMonitor(ctx context.Context, cfg config.Config, logger *logging.Logger) (cli.Monitor, func(context.Context) error, error) {
	monitor, err := app.NewMonitor(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return monitor.Service, monitor.Close, nil
}
