package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("team member not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Member is a user of an organization who can own leads.
type Member struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	Email          string
	Phone          *string
	Role           string
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const memberColumns = `id, organization_id, name, email, phone, role, active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(s rowScanner) (Member, error) {
	var m Member
	err := s.Scan(&m.ID, &m.OrganizationID, &m.Name, &m.Email, &m.Phone, &m.Role, &m.Active, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (r *Repository) GetMember(ctx context.Context, organizationID, memberID uuid.UUID) (Member, error) {
	m, err := scanMember(r.pool.QueryRow(ctx, `
		SELECT `+memberColumns+`
		FROM team_members
		WHERE id = $1 AND organization_id = $2
	`, memberID, organizationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Member{}, ErrNotFound
	}
	if err != nil {
		return Member{}, fmt.Errorf("get team member: %w", err)
	}
	return m, nil
}

// ListMembers returns the organization's team ordered by name. Inactive
// members are included only when includeInactive is set.
func (r *Repository) ListMembers(ctx context.Context, organizationID uuid.UUID, includeInactive bool) ([]Member, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+memberColumns+`
		FROM team_members
		WHERE organization_id = $1 AND (active OR $2)
		ORDER BY lower(name), id
	`, organizationID, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	defer rows.Close()

	members := make([]Member, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate team members: %w", err)
	}
	return members, nil
}

type CreateMemberParams struct {
	OrganizationID uuid.UUID
	Name           string
	Email          string
	Phone          *string
	Role           string
}

// CreateMember inserts a team member. Used by seeding and tests; team
// management itself lives in the identity provider.
func (r *Repository) CreateMember(ctx context.Context, params CreateMemberParams) (Member, error) {
	m, err := scanMember(r.pool.QueryRow(ctx, `
		INSERT INTO team_members (organization_id, name, email, phone, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+memberColumns,
		params.OrganizationID, params.Name, params.Email, params.Phone, params.Role,
	))
	if err != nil {
		return Member{}, fmt.Errorf("create team member: %w", err)
	}
	return m, nil
}
