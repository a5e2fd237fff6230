package scheduler

import (
	"context"
	"time"

	"bighome_hub/platform/logger"
)

const (
	defaultNotificationCleanupInterval = time.Hour
	defaultReadNotificationRetention   = 30 * 24 * time.Hour
)

// ReadNotificationPurger deletes in-app notifications already read before a cutoff.
type ReadNotificationPurger interface {
	DeleteReadBefore(ctx context.Context, before time.Time) (int64, error)
}

// NotificationCleanup periodically removes old read in-app notifications.
type NotificationCleanup struct {
	repo      ReadNotificationPurger
	log       *logger.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
}

func NewNotificationCleanup(repo ReadNotificationPurger, log *logger.Logger, interval, retention time.Duration) *NotificationCleanup {
	if interval <= 0 {
		interval = defaultNotificationCleanupInterval
	}
	if retention <= 0 {
		retention = defaultReadNotificationRetention
	}

	return &NotificationCleanup{
		repo:      repo,
		log:       log,
		interval:  interval,
		retention: retention,
		now:       time.Now,
	}
}

func (c *NotificationCleanup) Run(ctx context.Context) {
	if c == nil || c.repo == nil {
		return
	}

	c.cleanup(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *NotificationCleanup) cleanup(ctx context.Context) {
	deleted, err := c.repo.DeleteReadBefore(ctx, c.now().Add(-c.retention))
	if err != nil {
		c.log.Warn("notification cleanup failed", "error", err)
		return
	}

	if deleted > 0 {
		c.log.Info("notification cleanup deleted read notifications", "deleted", deleted)
	}
}
