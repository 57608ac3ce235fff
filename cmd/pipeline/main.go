package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rpattn/dataqc/internal/config"
	"github.com/rpattn/dataqc/internal/db"
	"github.com/rpattn/dataqc/internal/ledger"
	"github.com/rpattn/dataqc/internal/logging"
	"github.com/rpattn/dataqc/internal/output"
	"github.com/rpattn/dataqc/internal/pipeline"
	"github.com/rpattn/dataqc/internal/report"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: pipeline <input-dir> <output-dir>")
		fmt.Fprintln(os.Stderr, "please provide input and output directories as command-line arguments")
		os.Exit(1)
	}
	inputDir, outputDir := os.Args[1], os.Args[2]

	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := openLedger(ctx, cfg)
	if err != nil {
		slog.Error("failed to open ledger", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	files, err := pipeline.Discover(inputDir, cfg.InputPattern)
	if err != nil {
		slog.Error("failed to discover input files", "input_dir", inputDir, "error", err)
		os.Exit(1)
	}

	runner := pipeline.NewRunner(store, output.NewPartitioner(outputDir))
	summary, runErr := runner.Run(ctx, files)

	if cfg.ReportPath != "" {
		if err := report.Write(cfg.ReportPath, summary); err != nil {
			slog.Error("failed to write run report", "path", cfg.ReportPath, "error", err)
		}
	}

	if runErr != nil {
		slog.Error("pipeline run aborted", "error", runErr)
		os.Exit(1)
	}
}

// openLedger builds the configured ledger backend. The returned cleanup is
// safe to call unconditionally.
func openLedger(ctx context.Context, cfg config.Config) (ledger.Store, func(), error) {
	switch cfg.LedgerBackend {
	case config.LedgerBackendPostgres:
		if err := db.RunMigrations(cfg.Database, "./migrations"); err != nil {
			return nil, func() {}, err
		}
		conn, err := db.NewConnection(ctx, cfg.Database)
		if err != nil {
			return nil, func() {}, err
		}
		return ledger.NewPostgresStore(conn.Pool), conn.Close, nil
	default:
		store, err := ledger.NewFileStore(cfg.LedgerPath)
		if err != nil {
			return nil, func() {}, err
		}
		return store, func() {}, nil
	}
}
