package exports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LeadRow is one lead as it appears in the spreadsheet export.
type LeadRow struct {
	ID                  uuid.UUID
	Name                string
	Phone               string
	Email               *string
	Stage               string
	Source              *string
	AgentName           *string
	LastInteractionAt   *time.Time
	FollowupScheduledAt *time.Time
	CreatedAt           time.Time
}

// Repository reads export rows straight from the leads tables.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListLeads returns live leads created in [from, to], oldest first.
func (r *Repository) ListLeads(ctx context.Context, organizationID uuid.UUID, from, to time.Time, limit int) ([]LeadRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT l.id, l.name, l.phone, l.email, l.stage, l.source, m.name,
			l.last_interaction_at, l.followup_scheduled_at, l.created_at
		FROM leads l
		LEFT JOIN team_members m
			ON m.id = l.assigned_agent_id AND m.organization_id = l.organization_id
		WHERE l.organization_id = $1
			AND l.deleted_at IS NULL
			AND l.created_at BETWEEN $2 AND $3
		ORDER BY l.created_at, l.id
		LIMIT $4
	`, organizationID, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("list export leads: %w", err)
	}
	defer rows.Close()

	items := make([]LeadRow, 0)
	for rows.Next() {
		var row LeadRow
		if err := rows.Scan(
			&row.ID, &row.Name, &row.Phone, &row.Email, &row.Stage, &row.Source, &row.AgentName,
			&row.LastInteractionAt, &row.FollowupScheduledAt, &row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan export lead: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate export leads: %w", err)
	}
	return items, nil
}
