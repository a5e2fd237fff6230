package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"bighome_hub/platform/logger"

	"github.com/hibiken/asynq"
)

type testSchedulerConfig struct {
	redisURL string
	cron     string
	queue    string
}

func (c testSchedulerConfig) GetRedisURL() string                     { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool               { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string               { return c.queue }
func (c testSchedulerConfig) GetAsynqConcurrency() int                { return 0 }
func (c testSchedulerConfig) GetAgingSweepCron() string               { return c.cron }
func (c testSchedulerConfig) GetOverdueNotifyTTL() time.Duration      { return time.Hour }
func (c testSchedulerConfig) GetNotificationRetention() time.Duration { return time.Hour }

type recordingRegistrar struct {
	spec string
	task *asynq.Task
	opts []asynq.Option
	err  error
}

func (r *recordingRegistrar) Register(spec string, task *asynq.Task, opts ...asynq.Option) (string, error) {
	r.spec, r.task, r.opts = spec, task, opts
	return "entry-1", r.err
}

func TestRegisterPeriodicUsesConfiguredCron(t *testing.T) {
	reg := &recordingRegistrar{}
	id, err := RegisterPeriodic(reg, testSchedulerConfig{cron: "*/30 * * * *"})
	if err != nil {
		t.Fatal(err)
	}
	if id != "entry-1" || reg.spec != "*/30 * * * *" {
		t.Fatalf("registered %q as %q", reg.spec, id)
	}
	if reg.task.Type() != TaskAgingSweep {
		t.Fatalf("task type = %q", reg.task.Type())
	}
	payload, err := ParseAgingSweepPayload(reg.task)
	if err != nil || payload.Trigger != TriggerCron {
		t.Fatalf("payload = %+v, %v", payload, err)
	}
	if len(reg.opts) == 0 {
		t.Fatal("expected task options")
	}
}

func TestRegisterPeriodicRequiresCron(t *testing.T) {
	if _, err := RegisterPeriodic(&recordingRegistrar{}, testSchedulerConfig{}); err == nil {
		t.Fatal("expected error for empty cron")
	}
}

func TestRegisterPeriodicWrapsRegistrarError(t *testing.T) {
	reg := &recordingRegistrar{err: errors.New("bad spec")}
	if _, err := RegisterPeriodic(reg, testSchedulerConfig{cron: "nope"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseAgingSweepPayloadAcceptsEmptyPayload(t *testing.T) {
	payload, err := ParseAgingSweepPayload(asynq.NewTask(TaskAgingSweep, nil))
	if err != nil || payload.Trigger != "" {
		t.Fatalf("payload = %+v, %v", payload, err)
	}
}

func TestRedisOptionsHonorsTLSInsecure(t *testing.T) {
	opt, err := redisOptions("rediss://:secret@cache.internal:6380/2", true)
	if err != nil {
		t.Fatal(err)
	}
	if opt.Addr != "cache.internal:6380" || opt.Password != "secret" || opt.DB != 2 {
		t.Fatalf("options = %+v", opt)
	}
	if opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify {
		t.Fatal("expected insecure tls config")
	}

	plain, err := redisOptions("redis://localhost:6379/0", false)
	if err != nil {
		t.Fatal(err)
	}
	if plain.TLSConfig != nil {
		t.Fatal("plain url should not use tls")
	}
}

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatal("expected error")
	}
	if _, err := NewRedisClient(testSchedulerConfig{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestNilClientEnqueueIsNoop(t *testing.T) {
	var c *Client
	if err := c.EnqueueAgingSweep(context.Background(), TriggerManual); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
}

type countingSweep struct {
	runs atomic.Int32
	err  error
}

func (s *countingSweep) Run(context.Context) (SweepStats, error) {
	s.runs.Add(1)
	return SweepStats{}, s.err
}

func TestWorkerRoutesSweepTask(t *testing.T) {
	sweep := &countingSweep{}
	w := &Worker{sweep: sweep, log: logger.Discard()}
	mux := w.newMux()

	task, err := NewAgingSweepTask(AgingSweepPayload{Trigger: TriggerManual})
	if err != nil {
		t.Fatal(err)
	}
	if err := mux.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("process: %v", err)
	}
	if sweep.runs.Load() != 1 {
		t.Fatalf("runs = %d", sweep.runs.Load())
	}

	sweep.err = errors.New("boom")
	if err := mux.ProcessTask(context.Background(), task); err == nil {
		t.Fatal("expected sweep error to surface for retry")
	}
}

type fakePurger struct {
	before time.Time
	calls  int
}

func (p *fakePurger) DeleteReadBefore(_ context.Context, before time.Time) (int64, error) {
	p.before = before
	p.calls++
	return 3, nil
}

func TestNotificationCleanupUsesRetention(t *testing.T) {
	purger := &fakePurger{}
	c := NewNotificationCleanup(purger, logger.Discard(), 0, 48*time.Hour)
	now := time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Run(ctx)

	if purger.calls != 1 {
		t.Fatalf("calls = %d", purger.calls)
	}
	if !purger.before.Equal(now.Add(-48 * time.Hour)) {
		t.Fatalf("cutoff = %s", purger.before)
	}
	if c.interval != defaultNotificationCleanupInterval {
		t.Fatalf("interval = %s", c.interval)
	}
}
