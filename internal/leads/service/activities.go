package service

import (
	"context"

	"bighome_hub/internal/events"
	"bighome_hub/internal/leads/repository"
	"bighome_hub/internal/leads/transport"
	"bighome_hub/platform/sanitize"

	"github.com/google/uuid"
)

const activityPageSize = 50

// RecordInteraction logs a contact with the lead and resets its aging clock
// to the current instant.
func (s *Service) RecordInteraction(ctx context.Context, tenantID, actorID, id uuid.UUID, req transport.RecordInteractionRequest) (transport.InteractionResponse, error) {
	now := s.engine.Now()

	lead, activity, err := s.repo.RecordInteraction(ctx, repository.RecordInteractionParams{
		LeadID:         id,
		OrganizationID: tenantID,
		ActorID:        &actorID,
		Kind:           req.Kind,
		Summary:        repository.TruncateSummary(sanitize.Text(req.Summary), repository.ActivitySummaryMaxLen),
		OccurredAt:     now,
	})
	if err != nil {
		return transport.InteractionResponse{}, mapNotFound(err)
	}

	s.eventBus.Publish(ctx, events.InteractionRecorded{
		BaseEvent:     events.NewBaseEvent(now),
		LeadID:        lead.ID,
		TenantID:      tenantID,
		ActorID:       actorID,
		Kind:          activity.Kind,
		InteractionAt: activity.OccurredAt,
	})

	return transport.InteractionResponse{
		Lead:     s.toLeadResponse(lead, now),
		Activity: toActivityResponse(activity),
	}, nil
}

func (s *Service) ListActivities(ctx context.Context, tenantID, id uuid.UUID) (transport.ActivityListResponse, error) {
	if _, err := s.getLead(ctx, tenantID, id); err != nil {
		return transport.ActivityListResponse{}, err
	}

	activities, err := s.repo.ListActivities(ctx, id, tenantID, activityPageSize)
	if err != nil {
		return transport.ActivityListResponse{}, err
	}

	items := make([]transport.ActivityResponse, len(activities))
	for i, a := range activities {
		items[i] = toActivityResponse(a)
	}
	return transport.ActivityListResponse{Items: items}, nil
}

func toActivityResponse(a repository.Activity) transport.ActivityResponse {
	return transport.ActivityResponse{
		ID:         a.ID,
		Kind:       a.Kind,
		Summary:    a.Summary,
		ActorID:    a.ActorID,
		OccurredAt: a.OccurredAt,
	}
}
