// Package main is the entry point for the retention archiver.
//
// The archiver is a run-to-completion job, intended for cron or a container
// scheduler. Each run exports completed and cancelled tasks past the
// retention window, plus aged recommendation documents, to gzip NDJSON
// files, then deletes the exported rows. Export happens before deletion so
// an interrupted run never loses data.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"cropwatch/internal/config"
	"cropwatch/internal/db"
	"cropwatch/internal/scheduler"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("cropwatch archiver starting",
		"environment", cfg.Environment,
		"dir", cfg.Archive.Dir,
		"older_than", cfg.Archive.OlderThan,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := newPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}
	defer pool.Close()

	archiver := scheduler.NewArchiver(scheduler.ArchiverConfig{
		Tasks:           db.NewTaskRepository(pool),
		Recommendations: db.NewRecommendationRepository(pool),
		Dir:             cfg.Archive.Dir,
		OlderThan:       cfg.Archive.OlderThan,
		BatchSize:       cfg.Archive.BatchSize,
		Logger:          logger,
	})

	counts, err := archiver.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("archive pass: %w", err)
	}
	logger.Info("archive pass complete",
		"tasks", counts.TasksArchived,
		"recommendations", counts.RecommendationsArchived,
	)
	return nil
}

func newPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL.Unmask())
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.HealthCheckPeriod = cfg.HealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.AcquireTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
