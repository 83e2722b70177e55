// Package main is the entry point for the cropwatch API server.
//
// It loads configuration, connects the Postgres pool, wires the
// recommendation engine, task manager, and alert subsystem, and serves the
// HTTP API. The alert sweep and retention loops run in-process so the
// dashboard endpoints reflect live alerts; deployments that scale the API
// horizontally run cmd/sweeper standalone instead and leave
// ALERT_SWEEP_INTERVAL at 0 here.
//
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/smtp"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"cropwatch/internal/alerts"
	"cropwatch/internal/config"
	"cropwatch/internal/core"
	"cropwatch/internal/db"
	"cropwatch/internal/notify"
	"cropwatch/internal/recommend"
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

// run encapsulates the startup lifecycle so that main() can cleanly exit on
// error.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("cropwatch API starting",
		"environment", cfg.Environment,
		"service", cfg.Service,
		"port", cfg.Server.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := newPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}
	defer pool.Close()

	taskRepo := db.NewTaskRepository(pool)
	recRepo := db.NewRecommendationRepository(pool)
	alertRepo := db.NewAlertRepository(pool)

	engine := recommend.NewEngine(recommend.EngineConfig{
		Cache:   recommend.NewMemoryCache(cfg.Engine.CacheTTL),
		History: recRepo,
		Logger:  logger,
	})

	manager := tasks.NewManager(tasks.ManagerConfig{
		Store:  taskRepo,
		Logger: logger,
	})

	// Synthetic field-data providers until the satellite and weather feeds
	// are integrated.
	measurements := &sim.ZoneProvider{}
	weather := sim.WeatherSim{}
	crop := sim.CropSim{}

	dashboard := alerts.NewDashboard()
	dispatcher := notify.NewDispatcher(buildChannels(cfg.Notify, logger), cfg.Alerts.Recipient, logger)
	scanner := alerts.NewScanner(alerts.ScannerConfig{
		Tasks:      manager,
		Claims:     alertRepo,
		Dispatcher: dispatcher,
		Weather:    weather,
		Dashboard:  dashboard,
		Recipient:  cfg.Alerts.Recipient,
		Logger:     logger,
	})

	srv, err := core.NewServer(core.ServerConfig{
		Config:          cfg,
		Logger:          logger,
		Recommendations: engine,
		History:         recRepo,
		Tasks:           manager,
		Dashboard:       dashboard,
		Measurements:    measurements,
		Weather:         weather,
		Crop:            crop,
		Probes:          []core.HealthProbe{poolProbe{pool}},
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Alerts.SweepInterval > 0 {
		sweeper := scheduler.NewSweeper(scheduler.SweeperConfig{
			Reconciler: manager,
			Scanner:    scanner,
			Fields:     taskRepo,
			Interval:   cfg.Alerts.SweepInterval,
			Logger:     logger,
		})
		g.Go(func() error { return sweeper.Run(gctx) })

		retention := scheduler.NewRetention(scheduler.RetentionConfig{
			AlertLog:  alertRepo,
			Dashboard: dashboard,
			MaxAge:    cfg.Alerts.Retention,
			Logger:    logger,
		})
		g.Go(func() error { return runRetentionLoop(gctx, retention, cfg.Alerts.SweepInterval) })
	}

	g.Go(func() error { return runHTTPServer(gctx, srv, cfg, logger) })

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("server stopped cleanly")
	return nil
}

// newPool builds the pgx connection pool from the database configuration
// and verifies connectivity before returning.
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

// buildChannels registers every notification channel with configuration.
// Channels with an empty endpoint (or, for email, no SMTP relay) are
// skipped so local development needs no provider credentials.
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

// runRetentionLoop runs the retention purge on the same cadence as the
// alert sweep.
func runRetentionLoop(ctx context.Context, retention *scheduler.Retention, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := retention.RunOnce(ctx); err != nil {
				slog.Default().Error("retention pass failed", "error", err)
			}
		}
	}
}

// runHTTPServer serves until the context is cancelled, then shuts down
// gracefully within the configured deadline.
func runHTTPServer(ctx context.Context, srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	logger.Info("initiating graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// poolProbe reports database health for the /health endpoint.
type poolProbe struct {
	pool *pgxpool.Pool
}

func (p poolProbe) Name() string { return "database" }

func (p poolProbe) Check(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// newLogger creates a structured slog.Logger for the given log level.
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
