package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const overdueKeyPrefix = "bighome:overdue:"

// NoticeLedger remembers which overdue leads were already announced.
type NoticeLedger interface {
	// Claim reports whether the caller is the first to announce this lapse.
	Claim(ctx context.Context, leadID uuid.UUID, followup *time.Time) (bool, error)
	Release(ctx context.Context, leadID uuid.UUID, followup *time.Time) error
}

// RedisNoticeLedger keeps one SET NX key per lapse, expiring after ttl.
type RedisNoticeLedger struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisNoticeLedger(client redis.Cmdable, ttl time.Duration) *RedisNoticeLedger {
	return &RedisNoticeLedger{client: client, ttl: ttl}
}

// overdueKey changes when the follow-up is rescheduled, so a new lapse is
// announced even inside the ttl of the previous one.
func overdueKey(leadID uuid.UUID, followup *time.Time) string {
	suffix := "idle"
	if followup != nil {
		suffix = strconv.FormatInt(followup.Unix(), 10)
	}
	return overdueKeyPrefix + leadID.String() + ":" + suffix
}

func (l *RedisNoticeLedger) Claim(ctx context.Context, leadID uuid.UUID, followup *time.Time) (bool, error) {
	ok, err := l.client.SetNX(ctx, overdueKey(leadID, followup), time.Now().Unix(), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim overdue notice: %w", err)
	}
	return ok, nil
}

func (l *RedisNoticeLedger) Release(ctx context.Context, leadID uuid.UUID, followup *time.Time) error {
	if err := l.client.Del(ctx, overdueKey(leadID, followup)).Err(); err != nil {
		return fmt.Errorf("release overdue notice: %w", err)
	}
	return nil
}

var _ NoticeLedger = (*RedisNoticeLedger)(nil)
