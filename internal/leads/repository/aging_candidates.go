package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AgingCandidate is the slice of a lead the aging engine and the overdue
// sweep need.
type AgingCandidate struct {
	ID                  uuid.UUID
	OrganizationID      uuid.UUID
	Name                string
	Stage               string
	AssignedAgentID     *uuid.UUID
	LastInteractionAt   *time.Time
	FollowupScheduledAt *time.Time
}

const candidateColumns = `id, organization_id, name, stage, assigned_agent_id, last_interaction_at, followup_scheduled_at`

// ListAgingCandidates returns every live lead whose normalised stage is in
// stages, across all organizations.
func (r *Repository) ListAgingCandidates(ctx context.Context, stages []string) ([]AgingCandidate, error) {
	return r.queryCandidates(ctx, `
		SELECT `+candidateColumns+`
		FROM leads
		WHERE deleted_at IS NULL AND normalize(lower(stage), NFC) = ANY($1)
		ORDER BY organization_id, id
	`, stages)
}

// ListOrganizationCandidates returns every live lead of one organization
// regardless of stage.
func (r *Repository) ListOrganizationCandidates(ctx context.Context, organizationID uuid.UUID) ([]AgingCandidate, error) {
	return r.queryCandidates(ctx, `
		SELECT `+candidateColumns+`
		FROM leads
		WHERE deleted_at IS NULL AND organization_id = $1
		ORDER BY id
	`, organizationID)
}

func (r *Repository) queryCandidates(ctx context.Context, query string, args ...any) ([]AgingCandidate, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query aging candidates: %w", err)
	}
	defer rows.Close()

	items := make([]AgingCandidate, 0)
	for rows.Next() {
		var c AgingCandidate
		if err := rows.Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Stage, &c.AssignedAgentID,
			&c.LastInteractionAt, &c.FollowupScheduledAt); err != nil {
			return nil, fmt.Errorf("scan aging candidate: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aging candidates: %w", err)
	}
	return items, nil
}
