// Command api serves the BigHome Hub HTTP API: leads and their aging,
// the team directory, the in-app inbox and CSV exports.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bighome_hub/internal/directory"
	"bighome_hub/internal/email"
	"bighome_hub/internal/events"
	"bighome_hub/internal/exports"
	apphttp "bighome_hub/internal/http"
	"bighome_hub/internal/http/router"
	"bighome_hub/internal/leads"
	"bighome_hub/internal/notification"
	"bighome_hub/internal/scheduler"
	"bighome_hub/platform/clock"
	"bighome_hub/platform/config"
	"bighome_hub/platform/db"
	"bighome_hub/platform/logger"
	"bighome_hub/platform/retry"
	"bighome_hub/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Env)
	if err := run(cfg, log); err != nil {
		log.Error("api stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr, "demoMode", cfg.IsDemoMode())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := retry.Startup.Do(ctx, log, "database migrations", func(ctx context.Context) error {
		return db.RunMigrations(ctx, cfg)
	}); err != nil {
		return err
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := retry.Startup.Do(ctx, log, "database connection", func(ctx context.Context) (err error) {
		pool, err = db.NewPool(ctx, cfg)
		return err
	}); err != nil {
		return err
	}
	defer pool.Close()

	loc, err := clock.LoadZone(cfg.GetAgingTimezone())
	if err != nil {
		return fmt.Errorf("aging timezone: %w", err)
	}

	sender, err := email.NewSender(cfg)
	if err != nil {
		return fmt.Errorf("email sender: %w", err)
	}

	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	directoryModule := directory.NewModule(pool)

	leadsModule, err := leads.NewModule(pool, eventBus, validator.New(), directoryModule.Service(), cfg, log)
	if err != nil {
		return fmt.Errorf("leads module: %w", err)
	}
	if sweeps := newSweepClient(cfg, log); sweeps != nil {
		defer func() { _ = sweeps.Close() }()
		leadsModule.SetSweepTrigger(sweeps)
	}

	// LeadOverdue is published by cmd/scheduler; here the module only serves the inbox.
	notificationModule := notification.New(pool, sender, directoryModule.Service(), cfg, loc, log)
	notificationModule.RegisterHandlers(eventBus)

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: router.New(&apphttp.App{
			Config: cfg,
			Logger: log,
			Health: db.NewPoolAdapter(pool),
			Modules: []apphttp.Module{
				directoryModule,
				leadsModule,
				notificationModule,
				exports.NewModule(pool, clock.NewZoned(loc)),
			},
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return serve(ctx, srv, log)
}

func serve(ctx context.Context, srv *http.Server, log *logger.Logger) error {
	listenErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr)
		listenErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-listenErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutdown signal received, draining connections")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newSweepClient returns nil when redis is not configured; POST /aging/sweep
// then answers 503.
func newSweepClient(cfg config.SchedulerConfig, log *logger.Logger) *scheduler.Client {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; manual aging sweeps disabled")
		return nil
	}
	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil
	}
	return client
}
