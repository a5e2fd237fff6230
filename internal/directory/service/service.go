// Package service resolves team members for the rest of the application.
package service

import (
	"context"
	"errors"

	"bighome_hub/internal/directory/repository"
	"bighome_hub/internal/directory/transport"
	"bighome_hub/platform/apperr"

	"github.com/google/uuid"
)

const msgMemberNotFound = "team member not found"

// MemberStore is the persistence the directory needs.
type MemberStore interface {
	GetMember(ctx context.Context, organizationID, memberID uuid.UUID) (repository.Member, error)
	ListMembers(ctx context.Context, organizationID uuid.UUID, includeInactive bool) ([]repository.Member, error)
}

type Service struct {
	repo MemberStore
}

func New(repo MemberStore) *Service {
	return &Service{repo: repo}
}

// Lookup returns one member of the organization.
func (s *Service) Lookup(ctx context.Context, organizationID, memberID uuid.UUID) (repository.Member, error) {
	m, err := s.repo.GetMember(ctx, organizationID, memberID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Member{}, apperr.NotFound(msgMemberNotFound)
	}
	return m, err
}

// IsActiveMember reports whether memberID belongs to the organization and
// can own leads.
func (s *Service) IsActiveMember(ctx context.Context, organizationID, memberID uuid.UUID) (bool, error) {
	m, err := s.repo.GetMember(ctx, organizationID, memberID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return m.Active, nil
}

func (s *Service) Member(ctx context.Context, organizationID, memberID uuid.UUID) (transport.MemberResponse, error) {
	m, err := s.Lookup(ctx, organizationID, memberID)
	if err != nil {
		return transport.MemberResponse{}, err
	}
	return toMemberResponse(m), nil
}

// Team lists the organization's members for the team management screen.
func (s *Service) Team(ctx context.Context, organizationID uuid.UUID, includeInactive bool) (transport.TeamResponse, error) {
	members, err := s.repo.ListMembers(ctx, organizationID, includeInactive)
	if err != nil {
		return transport.TeamResponse{}, err
	}

	items := make([]transport.MemberResponse, len(members))
	for i, m := range members {
		items[i] = toMemberResponse(m)
	}
	return transport.TeamResponse{Items: items}, nil
}

func toMemberResponse(m repository.Member) transport.MemberResponse {
	return transport.MemberResponse{
		ID:     m.ID,
		Name:   m.Name,
		Email:  m.Email,
		Phone:  m.Phone,
		Role:   m.Role,
		Active: m.Active,
	}
}
