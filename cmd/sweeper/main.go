// Package main is the entry point for the standalone alert sweeper.
//
// The sweeper runs the periodic alert pass: reconcile past-due tasks to
// overdue, scan every field with active tasks, and dispatch the resulting
// alerts over the configured channels. A retention pass on the same cadence
// purges dispatched-alert records past their window. Deployments that run
// the sweep inside cmd/api do not need this binary.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"cropwatch/internal/alerts"
	"cropwatch/internal/config"
	"cropwatch/internal/db"
	"cropwatch/internal/notify"
	"cropwatch/internal/scheduler"
	"cropwatch/internal/sim"
	"cropwatch/internal/tasks"
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
	logger.Info("cropwatch sweeper starting",
		"environment", cfg.Environment,
		"interval", cfg.Alerts.SweepInterval,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := newPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}
	defer pool.Close()

	taskRepo := db.NewTaskRepository(pool)
	alertRepo := db.NewAlertRepository(pool)

	manager := tasks.NewManager(tasks.ManagerConfig{
		Store:  taskRepo,
		Logger: logger,
	})

	dashboard := alerts.NewDashboard()
	dispatcher := notify.NewDispatcher(buildChannels(cfg.Notify, logger), cfg.Alerts.Recipient, logger)
	scanner := alerts.NewScanner(alerts.ScannerConfig{
		Tasks:      manager,
		Claims:     alertRepo,
		Dispatcher: dispatcher,
		Weather:    sim.WeatherSim{},
		Dashboard:  dashboard,
		Recipient:  cfg.Alerts.Recipient,
		Logger:     logger,
	})

	sweeper := scheduler.NewSweeper(scheduler.SweeperConfig{
		Reconciler: manager,
		Scanner:    scanner,
		Fields:     taskRepo,
		Interval:   cfg.Alerts.SweepInterval,
		Logger:     logger,
	})
	retention := scheduler.NewRetention(scheduler.RetentionConfig{
		AlertLog:  alertRepo,
		Dashboard: dashboard,
		MaxAge:    cfg.Alerts.Retention,
		Logger:    logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sweeper.Run(gctx) })
	g.Go(func() error {
		ticker := time.NewTicker(cfg.Alerts.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if _, err := retention.RunOnce(gctx); err != nil {
					logger.Error("retention pass failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("sweeper stopped cleanly")
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

func buildChannels(cfg config.NotifyConfig, logger *slog.Logger) []notify.Channel {
	var channels []notify.Channel

	if cfg.SMTPAddr != "" {
		sender := &notify.SMTPSender{Addr: cfg.SMTPAddr}
		if cfg.SMTPUser != "" {
			host := cfg.SMTPAddr
			if h, _, err := net.SplitHostPort(cfg.SMTPAddr); err == nil {
				host = h
			}
			sender.Auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword.Unmask(), host)
		}
		channels = append(channels, notify.NewEmailChannel(sender, cfg.EmailFrom))
	}

	httpChannels := []struct {
		name     string
		endpoint string
		apiKey   string
	}{
		{"sms", cfg.SMSEndpoint, cfg.SMSAPIKey.Unmask()},
		{"whatsapp", cfg.WhatsAppEndpoint, cfg.WhatsAppAPIKey.Unmask()},
		{"push", cfg.PushEndpoint, cfg.PushAPIKey.Unmask()},
	}
	for _, hc := range httpChannels {
		if hc.endpoint == "" {
			continue
		}
		channels = append(channels, notify.NewHTTPChannel(notify.HTTPChannelConfig{
			Name:     hc.name,
			Endpoint: hc.endpoint,
			APIKey:   hc.apiKey,
			Timeout:  cfg.ChannelTimeout,
		}))
	}

	if len(channels) == 0 {
		logger.Warn("no notification channels configured; alerts reach the dashboard only")
	}
	return channels
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
