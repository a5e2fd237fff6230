package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

// maxPageSize bounds List when the caller passes no or an oversized limit.
const maxPageSize = 200

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID                  uuid.UUID
	OrganizationID      uuid.UUID
	Name                string
	Phone               string
	Email               *string
	Source              *string
	Stage               string
	AssignedAgentID     *uuid.UUID
	PropertyRef         *string
	Notes               *string
	LastInteractionAt   *time.Time
	FollowupScheduledAt *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type CreateLeadParams struct {
	OrganizationID      uuid.UUID
	Name                string
	Phone               string
	Email               *string
	Source              *string
	Stage               string
	AssignedAgentID     *uuid.UUID
	PropertyRef         *string
	Notes               *string
	LastInteractionAt   *time.Time
	FollowupScheduledAt *time.Time
}

// UpdateLeadParams carries a partial update. Nil fields are left untouched;
// ClearAssignee unassigns the lead.
type UpdateLeadParams struct {
	Name            *string
	Phone           *string
	Email           *string
	Source          *string
	AssignedAgentID *uuid.UUID
	ClearAssignee   bool
	PropertyRef     *string
	Notes           *string
}

// ListParams filters and pages a lead listing inside one organization.
type ListParams struct {
	OrganizationID  uuid.UUID
	Stages          []string
	AssignedAgentID *uuid.UUID
	Search          string
	SortBy          string
	Offset          int
	Limit           int
}

const leadColumns = `id, organization_id, name, phone, email, source, stage, assigned_agent_id,
	property_ref, notes, last_interaction_at, followup_scheduled_at, created_at, updated_at`

// rowScanner is satisfied by pgx.Rows and pgx.Row.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(s rowScanner) (Lead, error) {
	var lead Lead
	err := s.Scan(
		&lead.ID, &lead.OrganizationID, &lead.Name, &lead.Phone, &lead.Email, &lead.Source, &lead.Stage,
		&lead.AssignedAgentID, &lead.PropertyRef, &lead.Notes, &lead.LastInteractionAt, &lead.FollowupScheduledAt,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	return lead, err
}

func scanOne(row pgx.Row) (Lead, error) {
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, err
	}
	return lead, nil
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	return scanOne(r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			organization_id, name, phone, email, source, stage, assigned_agent_id,
			property_ref, notes, last_interaction_at, followup_scheduled_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+leadColumns,
		params.OrganizationID, params.Name, params.Phone, params.Email, params.Source, params.Stage, params.AssignedAgentID,
		params.PropertyRef, params.Notes, params.LastInteractionAt, params.FollowupScheduledAt,
	))
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) (Lead, error) {
	return scanOne(r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
	`, id, organizationID))
}

var sortColumns = map[string]string{
	"":                 "created_at DESC",
	"created":          "created_at DESC",
	"name":             "name ASC",
	"last_interaction": "last_interaction_at ASC NULLS FIRST",
	"followup":         "followup_scheduled_at ASC NULLS LAST",
}

// ValidSort reports whether sortBy is an accepted ListParams.SortBy value.
func ValidSort(sortBy string) bool {
	_, ok := sortColumns[sortBy]
	return ok
}

func listFilter(params ListParams) (string, []any) {
	clauses := []string{"organization_id = $1", "deleted_at IS NULL"}
	args := []any{params.OrganizationID}

	if len(params.Stages) > 0 {
		args = append(args, params.Stages)
		clauses = append(clauses, fmt.Sprintf("normalize(lower(stage), NFC) = ANY($%d)", len(args)))
	}
	if params.AssignedAgentID != nil {
		args = append(args, *params.AssignedAgentID)
		clauses = append(clauses, fmt.Sprintf("assigned_agent_id = $%d", len(args)))
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR phone ILIKE $%d OR email ILIKE $%d)", n, n, n))
	}

	return strings.Join(clauses, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]Lead, error) {
	where, args := listFilter(params)

	orderBy, ok := sortColumns[params.SortBy]
	if !ok {
		orderBy = sortColumns[""]
	}

	limit := params.Limit
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	offset := max(params.Offset, 0)

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM leads WHERE %s ORDER BY %s, id LIMIT $%d OFFSET $%d`,
		leadColumns, where, orderBy, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := make([]Lead, 0, limit)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}

	return leads, nil
}

func (r *Repository) Count(ctx context.Context, params ListParams) (int, error) {
	where, args := listFilter(params)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads WHERE `+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count leads: %w", err)
	}
	return total, nil
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, params UpdateLeadParams) (Lead, error) {
	return scanOne(r.pool.QueryRow(ctx, `
		UPDATE leads SET
			name = COALESCE($3, name),
			phone = COALESCE($4, phone),
			email = COALESCE($5, email),
			source = COALESCE($6, source),
			assigned_agent_id = CASE WHEN $8 THEN NULL ELSE COALESCE($7, assigned_agent_id) END,
			property_ref = COALESCE($9, property_ref),
			notes = COALESCE($10, notes),
			updated_at = now()
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
		RETURNING `+leadColumns,
		id, organizationID, params.Name, params.Phone, params.Email, params.Source,
		params.AssignedAgentID, params.ClearAssignee, params.PropertyRef, params.Notes,
	))
}

// UpdateStage moves a lead to stage. When clearFollowup is set the scheduled
// follow-up is removed in the same statement.
func (r *Repository) UpdateStage(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, stage string, clearFollowup bool) (Lead, error) {
	return scanOne(r.pool.QueryRow(ctx, `
		UPDATE leads SET
			stage = $3,
			followup_scheduled_at = CASE WHEN $4 THEN NULL ELSE followup_scheduled_at END,
			updated_at = now()
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
		RETURNING `+leadColumns,
		id, organizationID, stage, clearFollowup,
	))
}

// ScheduleFollowup sets the next follow-up for a lead.
func (r *Repository) ScheduleFollowup(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, at time.Time) (Lead, error) {
	return r.setFollowup(ctx, id, organizationID, &at)
}

func (r *Repository) ClearFollowup(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) (Lead, error) {
	return r.setFollowup(ctx, id, organizationID, nil)
}

func (r *Repository) setFollowup(ctx context.Context, id uuid.UUID, organizationID uuid.UUID, at *time.Time) (Lead, error) {
	return scanOne(r.pool.QueryRow(ctx, `
		UPDATE leads SET followup_scheduled_at = $3, updated_at = now()
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
		RETURNING `+leadColumns,
		id, organizationID, at,
	))
}

// Delete soft-deletes a lead.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
	`, id, organizationID)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
