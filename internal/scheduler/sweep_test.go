package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bighome_hub/internal/events"
	"bighome_hub/internal/leads/aging"
	"bighome_hub/internal/leads/repository"
	"bighome_hub/platform/clock"
	"bighome_hub/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type staticSource struct {
	candidates []repository.AgingCandidate
	stages     []string
	err        error
}

func (s *staticSource) ListAgingCandidates(_ context.Context, stages []string) ([]repository.AgingCandidate, error) {
	s.stages = stages
	return s.candidates, s.err
}

type overdueRecorder struct {
	mu     sync.Mutex
	events []events.LeadOverdue
	fail   map[uuid.UUID]bool
}

func (r *overdueRecorder) Handle(_ context.Context, event events.Event) error {
	e := event.(events.LeadOverdue)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail[e.LeadID] {
		return errors.New("smtp down")
	}
	r.events = append(r.events, e)
	return nil
}

type sweepFixture struct {
	sweeper  *Sweeper
	source   *staticSource
	recorder *overdueRecorder
	redis    *miniredis.Miniredis
	now      time.Time
	agent    uuid.UUID
}

func newSweepFixture(t *testing.T) *sweepFixture {
	t.Helper()
	loc, err := clock.LoadZone("America/Sao_Paulo")
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2025, 3, 12, 15, 0, 0, 0, loc)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	bus := events.NewInMemoryBus(logger.Discard())
	recorder := &overdueRecorder{fail: map[uuid.UUID]bool{}}
	bus.Subscribe(events.LeadOverdue{}.EventName(), recorder)

	source := &staticSource{}
	engine := aging.NewEngine(clock.NewFixed(now, loc))
	sweeper := NewSweeper(source, engine, NewRedisNoticeLedger(client, 24*time.Hour), bus, logger.Discard())

	return &sweepFixture{sweeper: sweeper, source: source, recorder: recorder, redis: mr, now: now, agent: uuid.New()}
}

func (f *sweepFixture) lead(name string, idleDays int, agent *uuid.UUID, followup *time.Time) repository.AgingCandidate {
	last := f.now.AddDate(0, 0, -idleDays)
	return repository.AgingCandidate{
		ID:                  uuid.New(),
		OrganizationID:      uuid.New(),
		Name:                name,
		Stage:               "Atendimento",
		AssignedAgentID:     agent,
		LastInteractionAt:   &last,
		FollowupScheduledAt: followup,
	}
}

func TestSweepAnnouncesOverdueLeadsOnce(t *testing.T) {
	f := newSweepFixture(t)
	overdue := f.lead("Ana", 6, &f.agent, nil)
	fresh := f.lead("Bruno", 1, &f.agent, nil)
	unassigned := f.lead("Carla", 7, nil, nil)
	f.source.candidates = []repository.AgingCandidate{overdue, fresh, unassigned}

	stats, err := f.sweeper.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.Evaluated != 3 || stats.Overdue != 2 || stats.Notified != 1 || stats.Skipped != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(f.recorder.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(f.recorder.events))
	}
	got := f.recorder.events[0]
	if got.LeadID != overdue.ID || got.AgentID != f.agent || got.TenantID != overdue.OrganizationID {
		t.Fatalf("unexpected event %+v", got)
	}
	if got.Percentage != 100 || got.DaysDiff != 6 {
		t.Fatalf("aging = %d%% / %d days", got.Percentage, got.DaysDiff)
	}
	if !got.OccurredAt().Equal(f.now) {
		t.Fatalf("event stamped %s, want %s", got.OccurredAt(), f.now)
	}

	if len(f.source.stages) != len(aging.QualifyingStages()) {
		t.Fatalf("sweep asked for stages %v", f.source.stages)
	}

	stats, err = f.sweeper.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if stats.Notified != 0 || len(f.recorder.events) != 1 {
		t.Fatalf("second run re-announced: %+v", stats)
	}
}

func TestSweepAnnouncesAgainAfterTTL(t *testing.T) {
	f := newSweepFixture(t)
	f.source.candidates = []repository.AgingCandidate{f.lead("Ana", 6, &f.agent, nil)}

	if _, err := f.sweeper.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	f.redis.FastForward(25 * time.Hour)
	if _, err := f.sweeper.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(f.recorder.events) != 2 {
		t.Fatalf("expected a second notice after ttl, got %d", len(f.recorder.events))
	}
}

func TestSweepRescheduledFollowupIsANewLapse(t *testing.T) {
	f := newSweepFixture(t)
	first := f.now.Add(-2 * time.Hour)
	lead := f.lead("Ana", 1, &f.agent, &first)
	f.source.candidates = []repository.AgingCandidate{lead}

	if _, err := f.sweeper.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	second := f.now.Add(-time.Hour)
	lead.FollowupScheduledAt = &second
	f.source.candidates = []repository.AgingCandidate{lead}
	if _, err := f.sweeper.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(f.recorder.events) != 2 {
		t.Fatalf("expected 2 notices, got %d", len(f.recorder.events))
	}
}

func TestSweepReleasesClaimWhenDeliveryFails(t *testing.T) {
	f := newSweepFixture(t)
	lead := f.lead("Ana", 6, &f.agent, nil)
	f.source.candidates = []repository.AgingCandidate{lead}
	f.recorder.fail[lead.ID] = true

	if _, err := f.sweeper.Run(context.Background()); err == nil {
		t.Fatal("expected delivery error")
	}
	if f.redis.Exists(overdueKey(lead.ID, nil)) {
		t.Fatal("claim kept after failed delivery")
	}

	delete(f.recorder.fail, lead.ID)
	stats, err := f.sweeper.Run(context.Background())
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if stats.Notified != 1 {
		t.Fatalf("retry stats = %+v", stats)
	}
}

func TestSweepSourceErrorIsReturned(t *testing.T) {
	f := newSweepFixture(t)
	f.source.err = errors.New("db down")

	if _, err := f.sweeper.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestSweepFansOutAcrossManyLeads(t *testing.T) {
	f := newSweepFixture(t)
	for i := 0; i < 40; i++ {
		f.source.candidates = append(f.source.candidates, f.lead("Lead", 10, &f.agent, nil))
	}

	stats, err := f.sweeper.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Notified != 40 || len(f.recorder.events) != 40 {
		t.Fatalf("stats = %+v, events = %d", stats, len(f.recorder.events))
	}
}

func TestOverdueKey(t *testing.T) {
	id := uuid.MustParse("7f1d1d1d-0000-4000-8000-000000000001")
	if got := overdueKey(id, nil); got != "bighome:overdue:7f1d1d1d-0000-4000-8000-000000000001:idle" {
		t.Fatalf("idle key = %q", got)
	}
	at := time.Unix(1741611600, 0)
	if got := overdueKey(id, &at); got != "bighome:overdue:7f1d1d1d-0000-4000-8000-000000000001:1741611600" {
		t.Fatalf("followup key = %q", got)
	}
}
