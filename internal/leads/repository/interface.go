package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// LeadReader provides read-only access to lead data.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) (Lead, error)
	List(ctx context.Context, params ListParams) ([]Lead, error)
	Count(ctx context.Context, params ListParams) (int, error)
}

// LeadWriter provides write operations for lead management.
type LeadWriter interface {
	Create(ctx context.Context, params CreateLeadParams) (Lead, error)
	Update(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, params UpdateLeadParams) (Lead, error)
	UpdateStage(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, stage string, clearFollowup bool) (Lead, error)
	Delete(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) error
}

// FollowupScheduler manages the scheduled follow-up of a lead.
type FollowupScheduler interface {
	ScheduleFollowup(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, at time.Time) (Lead, error)
	ClearFollowup(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) (Lead, error)
}

// ActivityLogger records and lists interactions on leads.
type ActivityLogger interface {
	RecordInteraction(ctx context.Context, params RecordInteractionParams) (Lead, Activity, error)
	ListActivities(ctx context.Context, leadID uuid.UUID, organizationID uuid.UUID, limit int) ([]Activity, error)
}

// AgingSource feeds the aging summary and the overdue sweep.
type AgingSource interface {
	ListAgingCandidates(ctx context.Context, stages []string) ([]AgingCandidate, error)
	ListOrganizationCandidates(ctx context.Context, organizationID uuid.UUID) ([]AgingCandidate, error)
}

// LeadsRepository composes every capability the leads service needs.
type LeadsRepository interface {
	LeadReader
	LeadWriter
	FollowupScheduler
	ActivityLogger
	AgingSource
}

var _ LeadsRepository = (*Repository)(nil)
