package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"bighome_hub/internal/events"
	"bighome_hub/internal/leads/aging"
	"bighome_hub/internal/leads/repository"
	"bighome_hub/platform/logger"

	"golang.org/x/sync/errgroup"
)

const defaultSweepWorkers = 8

// CandidateSource lists the leads the sweep evaluates.
type CandidateSource interface {
	ListAgingCandidates(ctx context.Context, stages []string) ([]repository.AgingCandidate, error)
}

// SweepStats summarises one sweep run.
type SweepStats struct {
	Evaluated int
	Overdue   int
	Notified  int
	Skipped   int
}

// Sweeper finds overdue leads and announces each lapse once.
type Sweeper struct {
	source  CandidateSource
	engine  *aging.Engine
	ledger  NoticeLedger
	bus     events.Bus
	log     *logger.Logger
	workers int
}

func NewSweeper(source CandidateSource, engine *aging.Engine, ledger NoticeLedger, bus events.Bus, log *logger.Logger) *Sweeper {
	return &Sweeper{
		source:  source,
		engine:  engine,
		ledger:  ledger,
		bus:     bus,
		log:     log,
		workers: defaultSweepWorkers,
	}
}

// Run evaluates every qualifying lead against one pinned instant. Leads
// without an assigned agent are counted as overdue but never announced.
func (s *Sweeper) Run(ctx context.Context) (SweepStats, error) {
	start := time.Now()
	now := s.engine.Now()

	candidates, err := s.source.ListAgingCandidates(ctx, aging.QualifyingStages())
	if err != nil {
		return SweepStats{}, err
	}

	stats := SweepStats{Evaluated: len(candidates)}
	var due []overdueLead
	for _, c := range candidates {
		stage := c.Stage
		result := s.engine.ComputeAt(aging.Input{
			LastInteractionAt:   c.LastInteractionAt,
			FollowupScheduledAt: c.FollowupScheduledAt,
			Stage:               &stage,
		}, now)
		if !result.IsOverdue {
			continue
		}
		stats.Overdue++
		if c.AssignedAgentID == nil {
			stats.Skipped++
			continue
		}
		due = append(due, overdueLead{candidate: c, result: result})
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, lead := range due {
		g.Go(func() error {
			notified, err := s.announce(gctx, lead, now)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			if notified {
				stats.Notified++
			} else {
				stats.Skipped++
			}
			return nil
		})
	}
	_ = g.Wait()

	s.log.AgingSweep(stats.Evaluated, stats.Overdue, stats.Notified, float64(time.Since(start).Microseconds())/1000)
	return stats, errors.Join(errs...)
}

type overdueLead struct {
	candidate repository.AgingCandidate
	result    aging.Result
}

func (s *Sweeper) announce(ctx context.Context, lead overdueLead, now time.Time) (bool, error) {
	c := lead.candidate

	claimed, err := s.ledger.Claim(ctx, c.ID, c.FollowupScheduledAt)
	if err != nil {
		return false, err
	}
	if !claimed {
		return false, nil
	}

	err = s.bus.PublishSync(ctx, events.LeadOverdue{
		BaseEvent:           events.NewBaseEvent(now),
		LeadID:              c.ID,
		TenantID:            c.OrganizationID,
		AgentID:             *c.AssignedAgentID,
		LeadName:            c.Name,
		Stage:               c.Stage,
		Percentage:          lead.result.Percentage,
		DaysDiff:            lead.result.DaysDiff,
		FollowupScheduledAt: c.FollowupScheduledAt,
	})
	if err != nil {
		s.log.Warn("overdue notice failed, releasing claim", "leadId", c.ID, "error", err)
		if releaseErr := s.ledger.Release(context.WithoutCancel(ctx), c.ID, c.FollowupScheduledAt); releaseErr != nil {
			err = errors.Join(err, releaseErr)
		}
		return false, err
	}

	return true, nil
}
