package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ActivitySummaryMaxLen caps the stored summary of an interaction.
const ActivitySummaryMaxLen = 400

// Interaction kinds accepted by RecordInteraction.
const (
	ActivityCall     = "call"
	ActivityWhatsApp = "whatsapp"
	ActivityEmail    = "email"
	ActivityVisit    = "visit"
	ActivityNote     = "note"
)

var activityKinds = map[string]struct{}{
	ActivityCall:     {},
	ActivityWhatsApp: {},
	ActivityEmail:    {},
	ActivityVisit:    {},
	ActivityNote:     {},
}

func IsActivityKind(kind string) bool {
	_, ok := activityKinds[kind]
	return ok
}

// TruncateSummary trims text to maxLen runes, appending "..." on overflow.
// Returns nil for blank input.
func TruncateSummary(text string, maxLen int) *string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if runes := []rune(trimmed); len(runes) > maxLen {
		trimmed = string(runes[:maxLen]) + "..."
	}
	return &trimmed
}

type Activity struct {
	ID             uuid.UUID
	LeadID         uuid.UUID
	OrganizationID uuid.UUID
	ActorID        *uuid.UUID
	Kind           string
	Summary        *string
	OccurredAt     time.Time
	CreatedAt      time.Time
}

type RecordInteractionParams struct {
	LeadID         uuid.UUID
	OrganizationID uuid.UUID
	ActorID        *uuid.UUID
	Kind           string
	Summary        *string
	OccurredAt     time.Time
}

// RecordInteraction appends an activity and moves last_interaction_at to
// OccurredAt in one transaction.
func (r *Repository) RecordInteraction(ctx context.Context, params RecordInteractionParams) (lead Lead, activity Activity, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Lead{}, Activity{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	lead, err = scanOne(tx.QueryRow(ctx, `
		UPDATE leads SET last_interaction_at = $3, updated_at = now()
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
		RETURNING `+leadColumns,
		params.LeadID, params.OrganizationID, params.OccurredAt,
	))
	if err != nil {
		return Lead{}, Activity{}, err
	}

	activity, err = scanActivity(tx.QueryRow(ctx, `
		INSERT INTO lead_activities (lead_id, organization_id, actor_id, kind, summary, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+activityColumns,
		params.LeadID, params.OrganizationID, params.ActorID, params.Kind, params.Summary, params.OccurredAt,
	))
	if err != nil {
		return Lead{}, Activity{}, fmt.Errorf("insert activity: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return Lead{}, Activity{}, err
	}
	return lead, activity, nil
}

const activityColumns = `id, lead_id, organization_id, actor_id, kind, summary, occurred_at, created_at`

func scanActivity(s rowScanner) (Activity, error) {
	var a Activity
	err := s.Scan(&a.ID, &a.LeadID, &a.OrganizationID, &a.ActorID, &a.Kind, &a.Summary, &a.OccurredAt, &a.CreatedAt)
	return a, err
}

// ListActivities returns the interaction log of a lead, newest first.
func (r *Repository) ListActivities(ctx context.Context, leadID uuid.UUID, organizationID uuid.UUID, limit int) ([]Activity, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+activityColumns+`
		FROM lead_activities
		WHERE lead_id = $1 AND organization_id = $2
		ORDER BY occurred_at DESC, id
		LIMIT $3
	`, leadID, organizationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Activity, 0)
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
