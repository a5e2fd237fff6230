// Command scheduler runs the background side of BigHome Hub: the periodic
// overdue sweep, its asynq worker and the read-notification cleanup.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bighome_hub/internal/directory"
	"bighome_hub/internal/email"
	"bighome_hub/internal/events"
	"bighome_hub/internal/leads/aging"
	leadrepo "bighome_hub/internal/leads/repository"
	"bighome_hub/internal/notification"
	"bighome_hub/internal/notification/inapp"
	"bighome_hub/internal/scheduler"
	"bighome_hub/platform/clock"
	"bighome_hub/platform/config"
	"bighome_hub/platform/db"
	"bighome_hub/platform/logger"
	"bighome_hub/platform/retry"

	"github.com/jackc/pgx/v5/pgxpool"
)

const cleanupInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Env)
	if err := run(cfg, log); err != nil {
		log.Error("scheduler stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	log.Info("starting scheduler", "env", cfg.Env, "cron", cfg.GetAgingSweepCron())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	redisClient, err := scheduler.NewRedisClient(cfg)
	if err != nil {
		return fmt.Errorf("redis client: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	if err := retry.Startup.Do(ctx, log, "redis connection", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	}); err != nil {
		return err
	}

	sender, err := email.NewSender(cfg)
	if err != nil {
		return fmt.Errorf("email sender: %w", err)
	}

	// The sweep publishes synchronously, so the bus never has handlers in flight at exit.
	eventBus := events.NewInMemoryBus(log)
	directoryModule := directory.NewModule(pool)
	notification.New(pool, sender, directoryModule.Service(), cfg, loc, log).RegisterHandlers(eventBus)

	sweeper := scheduler.NewSweeper(
		leadrepo.New(pool),
		aging.NewEngine(clock.NewZoned(loc)),
		scheduler.NewRedisNoticeLedger(redisClient, cfg.GetOverdueNotifyTTL()),
		eventBus,
		log,
	)

	cleanup := scheduler.NewNotificationCleanup(inapp.NewRepository(pool), log, cleanupInterval, cfg.GetNotificationRetention())
	go cleanup.Run(ctx)

	periodic, err := scheduler.NewPeriodicScheduler(cfg, loc, log)
	if err != nil {
		return fmt.Errorf("periodic scheduler: %w", err)
	}
	entryID, err := scheduler.RegisterPeriodic(periodic, cfg)
	if err != nil {
		return fmt.Errorf("register aging sweep: %w", err)
	}
	if err := periodic.Start(); err != nil {
		return fmt.Errorf("start periodic scheduler: %w", err)
	}
	defer periodic.Shutdown()
	log.Info("aging sweep registered", "entryId", entryID, "timezone", loc.String())

	worker, err := scheduler.NewWorker(cfg, sweeper, log)
	if err != nil {
		return fmt.Errorf("scheduler worker: %w", err)
	}
	return worker.Run(ctx)
}
