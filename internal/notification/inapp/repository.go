package inapp

import (
	"context"
	"time"

	"bighome_hub/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opCreate      = "notification.inapp.repository.create"
	opList        = "notification.inapp.repository.list"
	opCountUnread = "notification.inapp.repository.count_unread"
	opMarkRead    = "notification.inapp.repository.mark_read"
	opMarkAllRead = "notification.inapp.repository.mark_all_read"
	opDelete      = "notification.inapp.repository.delete"
	opPurge       = "notification.inapp.repository.purge"

	errUserRequired = "organizationId and userId are required"
)

type Notification struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"userId"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	ResourceID   *uuid.UUID `json:"resourceId,omitempty"`
	ResourceType *string    `json:"resourceType,omitempty"`
	Category     string     `json:"category"`
	IsRead       bool       `json:"isRead"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type CreateParams struct {
	OrganizationID uuid.UUID
	UserID         uuid.UUID
	Title          string
	Content        string
	ResourceID     *uuid.UUID
	ResourceType   *string
	Category       string
}

// Recipient scopes every read and update to one user of one organization.
type Recipient struct {
	OrganizationID uuid.UUID
	UserID         uuid.UUID
}

func (r Recipient) valid() bool {
	return r.OrganizationID != uuid.Nil && r.UserID != uuid.Nil
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const notificationColumns = `id, user_id, title, content, resource_id, resource_type, category, is_read, created_at`

func (r *Repository) Create(ctx context.Context, p CreateParams) (Notification, error) {
	if p.OrganizationID == uuid.Nil || p.UserID == uuid.Nil {
		return Notification{}, apperr.Validation(errUserRequired).WithOp(opCreate)
	}
	if p.Title == "" || p.Content == "" {
		return Notification{}, apperr.Validation("title and content are required").WithOp(opCreate)
	}

	category := p.Category
	if category == "" {
		category = CategoryInfo
	}

	var n Notification
	err := r.pool.QueryRow(ctx, `
		INSERT INTO in_app_notifications
		(organization_id, user_id, title, content, resource_id, resource_type, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+notificationColumns,
		p.OrganizationID, p.UserID, p.Title, p.Content, p.ResourceID, p.ResourceType, category,
	).Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.ResourceID, &n.ResourceType, &n.Category, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return Notification{}, apperr.Internal("create in-app notification failed", err).WithOp(opCreate)
	}

	return n, nil
}

func (r *Repository) List(ctx context.Context, to Recipient, limit, offset int) ([]Notification, int, error) {
	if !to.valid() {
		return nil, 0, apperr.Validation(errUserRequired).WithOp(opList)
	}

	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM in_app_notifications
		WHERE organization_id = $1 AND user_id = $2
	`, to.OrganizationID, to.UserID).Scan(&total)
	if err != nil {
		return nil, 0, apperr.Internal("count notifications failed", err).WithOp(opList)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM in_app_notifications
		WHERE organization_id = $1 AND user_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`, to.OrganizationID, to.UserID, limit, offset)
	if err != nil {
		return nil, 0, apperr.Internal("list notifications query failed", err).WithOp(opList)
	}
	defer rows.Close()

	items := make([]Notification, 0, limit)
	for rows.Next() {
		var n Notification
		if scanErr := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.ResourceID, &n.ResourceType, &n.Category, &n.IsRead, &n.CreatedAt); scanErr != nil {
			return nil, 0, apperr.Internal("scan notifications failed", scanErr).WithOp(opList)
		}
		items = append(items, n)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, 0, apperr.Internal("iterate notifications failed", rowsErr).WithOp(opList)
	}

	return items, total, nil
}

func (r *Repository) CountUnread(ctx context.Context, to Recipient) (int, error) {
	if !to.valid() {
		return 0, apperr.Validation(errUserRequired).WithOp(opCountUnread)
	}

	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM in_app_notifications
		WHERE organization_id = $1 AND user_id = $2 AND is_read = FALSE
	`, to.OrganizationID, to.UserID).Scan(&count)
	if err != nil {
		return 0, apperr.Internal("count unread notifications failed", err).WithOp(opCountUnread)
	}

	return count, nil
}

func (r *Repository) MarkRead(ctx context.Context, to Recipient, notificationID uuid.UUID) error {
	if !to.valid() || notificationID == uuid.Nil {
		return apperr.Validation(errUserRequired).WithOp(opMarkRead)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE in_app_notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, now())
		WHERE id = $1 AND organization_id = $2 AND user_id = $3
	`, notificationID, to.OrganizationID, to.UserID)
	if err != nil {
		return apperr.Internal("mark notification read failed", err).WithOp(opMarkRead)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(msgNotificationNotFound).WithOp(opMarkRead)
	}

	return nil
}

func (r *Repository) MarkAllRead(ctx context.Context, to Recipient) (int, error) {
	if !to.valid() {
		return 0, apperr.Validation(errUserRequired).WithOp(opMarkAllRead)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE in_app_notifications
		SET is_read = TRUE, read_at = now()
		WHERE organization_id = $1 AND user_id = $2 AND is_read = FALSE
	`, to.OrganizationID, to.UserID)
	if err != nil {
		return 0, apperr.Internal("mark all notifications read failed", err).WithOp(opMarkAllRead)
	}

	return int(tag.RowsAffected()), nil
}

func (r *Repository) Delete(ctx context.Context, to Recipient, notificationID uuid.UUID) error {
	if !to.valid() || notificationID == uuid.Nil {
		return apperr.Validation(errUserRequired).WithOp(opDelete)
	}

	tag, err := r.pool.Exec(ctx, `
		DELETE FROM in_app_notifications
		WHERE id = $1 AND organization_id = $2 AND user_id = $3
	`, notificationID, to.OrganizationID, to.UserID)
	if err != nil {
		return apperr.Internal("delete notification failed", err).WithOp(opDelete)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(msgNotificationNotFound).WithOp(opDelete)
	}

	return nil
}

// DeleteReadBefore removes notifications read before the cutoff, across all users.
func (r *Repository) DeleteReadBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM in_app_notifications
		WHERE is_read = TRUE AND read_at < $1
	`, before)
	if err != nil {
		return 0, apperr.Internal("purge read notifications failed", err).WithOp(opPurge)
	}
	return tag.RowsAffected(), nil
}
