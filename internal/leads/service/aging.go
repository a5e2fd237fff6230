package service

import (
	"context"
	"time"

	"bighome_hub/internal/leads/aging"
	"bighome_hub/internal/leads/transport"

	"github.com/google/uuid"
)

func agingInput(stage string, lastInteraction, followup *time.Time) aging.Input {
	return aging.Input{
		LastInteractionAt:   lastInteraction,
		FollowupScheduledAt: followup,
		Stage:               &stage,
	}
}

func (s *Service) agingAt(in aging.Input, now time.Time) transport.AgingResponse {
	result := s.engine.ComputeAt(in, now)
	return transport.AgingResponse{
		Result:      result,
		ColorHex:    result.Color.Hex(),
		EvaluatedAt: now,
		Timezone:    s.engine.Location().String(),
	}
}

// Aging evaluates one stored lead at the current instant.
func (s *Service) Aging(ctx context.Context, tenantID, id uuid.UUID) (transport.AgingResponse, error) {
	lead, err := s.getLead(ctx, tenantID, id)
	if err != nil {
		return transport.AgingResponse{}, err
	}
	return s.agingAt(agingInput(lead.Stage, lead.LastInteractionAt, lead.FollowupScheduledAt), s.engine.Now()), nil
}

// Countdown reports the time left until the lead's follow-up.
func (s *Service) Countdown(ctx context.Context, tenantID, id uuid.UUID) (transport.CountdownResponse, error) {
	lead, err := s.getLead(ctx, tenantID, id)
	if err != nil {
		return transport.CountdownResponse{}, err
	}

	resp := transport.CountdownResponse{LeadID: lead.ID}
	if lead.FollowupScheduledAt != nil {
		cd := s.countdown.Until(*lead.FollowupScheduledAt)
		resp.Scheduled = true
		resp.Countdown = &cd
	}
	return resp, nil
}

// Preview evaluates unsaved lead fields without touching storage.
func (s *Service) Preview(req transport.AgingPreviewRequest) transport.AgingResponse {
	return s.agingAt(aging.Input{
		LastInteractionAt:   req.LastInteractionAt.Value,
		FollowupScheduledAt: req.FollowupScheduledAt.Value,
		Stage:               req.Stage,
	}, s.engine.Now())
}

// Summary counts the organization's live leads per aging band.
func (s *Service) Summary(ctx context.Context, tenantID uuid.UUID) (transport.AgingSummaryResponse, error) {
	candidates, err := s.repo.ListOrganizationCandidates(ctx, tenantID)
	if err != nil {
		return transport.AgingSummaryResponse{}, err
	}

	now := s.engine.Now()
	counts := make(map[aging.Band]int, len(aging.Bands))
	overdue := 0
	for _, c := range candidates {
		result := s.engine.ComputeAt(agingInput(c.Stage, c.LastInteractionAt, c.FollowupScheduledAt), now)
		counts[result.Band]++
		if result.IsOverdue {
			overdue++
		}
	}

	bands := make([]transport.BandCount, 0, len(aging.Bands))
	for _, b := range aging.Bands {
		bands = append(bands, transport.BandCount{
			Band:     b,
			Label:    b.Label(),
			Color:    b.Color(),
			ColorHex: b.Color().Hex(),
			Count:    counts[b],
		})
	}

	return transport.AgingSummaryResponse{
		Total:       len(candidates),
		Overdue:     overdue,
		Bands:       bands,
		EvaluatedAt: now,
	}, nil
}
