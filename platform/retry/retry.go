// Package retry retries startup dependencies (database, redis) that may come
// up after the process does.
package retry

import (
	"context"
	"fmt"
	"time"

	"bighome_hub/platform/logger"

	"github.com/cenkalti/backoff/v4"
)

// Policy makes up to Attempts calls, doubling the wait from BaseDelay.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
}

// Startup is the policy both commands use for their backing services.
var Startup = Policy{Attempts: 5, BaseDelay: 2 * time.Second}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.BaseDelay
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxInterval = 16 * p.BaseDelay
	exp.MaxElapsedTime = 0
	exp.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(p.Attempts-1)), ctx)
}

// Do runs fn until it succeeds, the attempts run out or ctx ends.
// The last failure is wrapped in the returned error.
func (p Policy) Do(ctx context.Context, log *logger.Logger, name string, fn func(context.Context) error) error {
	if p.Attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	attempt := 0
	op := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		attempt++
		return fn(ctx)
	}
	notify := func(err error, wait time.Duration) {
		log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "retryIn", wait, "error", err)
	}

	if err := backoff.RetryNotify(op, p.backOff(ctx), notify); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
