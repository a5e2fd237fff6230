// Package inapp stores the notification inbox each team member sees in the app.
package inapp

import (
	"context"

	"bighome_hub/platform/logger"

	"github.com/google/uuid"
)

const (
	CategoryInfo    = "info"
	CategoryWarning = "warning"

	ResourceTypeLead = "lead"

	msgNotificationNotFound = "notification not found"

	defaultPageSize = 20
	maxPageSize     = 100
)

// Store is the persistence behind the inbox.
type Store interface {
	Create(ctx context.Context, p CreateParams) (Notification, error)
	List(ctx context.Context, to Recipient, limit, offset int) ([]Notification, int, error)
	CountUnread(ctx context.Context, to Recipient) (int, error)
	MarkRead(ctx context.Context, to Recipient, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, to Recipient) (int, error)
	Delete(ctx context.Context, to Recipient, notificationID uuid.UUID) error
}

var _ Store = (*Repository)(nil)

type Service struct {
	repo Store
	log  *logger.Logger
}

func NewService(repo Store, log *logger.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

type SendParams struct {
	OrgID        uuid.UUID
	UserID       uuid.UUID
	Title        string
	Content      string
	ResourceID   *uuid.UUID
	ResourceType string
	Category     string
}

// Send persists the notification for the recipient.
func (s *Service) Send(ctx context.Context, p SendParams) (Notification, error) {
	var resourceType *string
	if p.ResourceType != "" {
		resourceType = &p.ResourceType
	}

	notif, err := s.repo.Create(ctx, CreateParams{
		OrganizationID: p.OrgID,
		UserID:         p.UserID,
		Title:          p.Title,
		Content:        p.Content,
		ResourceID:     p.ResourceID,
		ResourceType:   resourceType,
		Category:       p.Category,
	})
	if err != nil {
		s.log.Error("failed to persist in-app notification", "error", err, "userId", p.UserID)
		return Notification{}, err
	}

	return notif, nil
}

// Page is one page of a member's inbox plus its unread badge count.
type Page struct {
	Items  []Notification `json:"items"`
	Total  int            `json:"total"`
	Unread int            `json:"unread"`
	Page   int            `json:"page"`
}

func (s *Service) List(ctx context.Context, to Recipient, page, pageSize int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	items, total, err := s.repo.List(ctx, to, pageSize, (page-1)*pageSize)
	if err != nil {
		return Page{}, err
	}
	unread, err := s.repo.CountUnread(ctx, to)
	if err != nil {
		return Page{}, err
	}

	return Page{Items: items, Total: total, Unread: unread, Page: page}, nil
}

func (s *Service) CountUnread(ctx context.Context, to Recipient) (int, error) {
	return s.repo.CountUnread(ctx, to)
}

func (s *Service) MarkRead(ctx context.Context, to Recipient, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, to, id)
}

func (s *Service) MarkAllRead(ctx context.Context, to Recipient) (int, error) {
	return s.repo.MarkAllRead(ctx, to)
}

func (s *Service) Delete(ctx context.Context, to Recipient, id uuid.UUID) error {
	return s.repo.Delete(ctx, to, id)
}
