package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"bighome_hub/internal/events"
	"bighome_hub/internal/leads/aging"
	"bighome_hub/internal/leads/countdown"
	"bighome_hub/internal/leads/domain"
	"bighome_hub/internal/leads/repository"
	"bighome_hub/internal/leads/transport"
	"bighome_hub/platform/apperr"
	"bighome_hub/platform/clock"
	"bighome_hub/platform/phone"
	"bighome_hub/platform/sanitize"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	// bandScanBatch is the page size used to walk the filtered set when a
	// list is filtered by aging band, which SQL cannot express.
	bandScanBatch = 500
)

const (
	msgLeadNotFound  = "lead not found"
	msgInvalidPhone  = "invalid phone number"
	msgUnknownStage  = "unknown pipeline stage"
	msgUnknownAgent  = "assigned agent is not an active team member"
	msgPastFollowup  = "follow-up must be scheduled in the future"
	msgClosedLead    = "cannot schedule a follow-up on a finished lead"
	msgUnknownBand   = "unknown aging band"
	msgInvalidAgent  = "invalid assigned agent id"
	msgUnknownSortBy = "unknown sort order"
)

// AgentDirectory answers whether a team member can own leads.
type AgentDirectory interface {
	IsActiveMember(ctx context.Context, organizationID, memberID uuid.UUID) (bool, error)
}

type Service struct {
	repo        repository.LeadsRepository
	engine      *aging.Engine
	countdown   *countdown.Presenter
	directory   AgentDirectory
	eventBus    events.Bus
	phoneRegion string
}

// New builds the service. Aging and countdowns read time from clk.
func New(repo repository.LeadsRepository, clk clock.Clock, directory AgentDirectory, eventBus events.Bus, phoneRegion string) *Service {
	if phoneRegion == "" {
		phoneRegion = phone.DefaultRegion
	}
	return &Service{
		repo:        repo,
		engine:      aging.NewEngine(clk),
		countdown:   countdown.NewPresenter(clk),
		directory:   directory,
		eventBus:    eventBus,
		phoneRegion: phoneRegion,
	}
}

func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	now := s.engine.Now()

	normalizedPhone, err := s.normalizePhone(req.Phone)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	stage := domain.PipelineStageNew
	if strings.TrimSpace(req.Stage) != "" {
		if !domain.IsKnownPipelineStage(req.Stage) {
			return transport.LeadResponse{}, apperr.Validation(msgUnknownStage)
		}
		stage = domain.NormalizeStage(req.Stage)
	}

	if req.FollowupScheduledAt != nil && !req.FollowupScheduledAt.After(now) {
		return transport.LeadResponse{}, apperr.Validation(msgPastFollowup)
	}

	params := repository.CreateLeadParams{
		OrganizationID:      tenantID,
		Name:                sanitize.Text(req.Name),
		Phone:               normalizedPhone,
		Email:               optionalEmail(req.Email),
		Source:              sanitize.TextPtr(&req.Source),
		Stage:               stage,
		PropertyRef:         sanitize.TextPtr(&req.PropertyRef),
		Notes:               sanitize.TextPtr(&req.Notes),
		LastInteractionAt:   &now,
		FollowupScheduledAt: req.FollowupScheduledAt,
	}
	if params.Name == "" {
		return transport.LeadResponse{}, apperr.Validation("name is required")
	}

	if req.AssignedAgentID.Value != nil {
		if err := s.ensureAgent(ctx, tenantID, *req.AssignedAgentID.Value); err != nil {
			return transport.LeadResponse{}, err
		}
		params.AssignedAgentID = req.AssignedAgentID.Value
	}

	lead, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	source := ""
	if lead.Source != nil {
		source = *lead.Source
	}
	s.eventBus.Publish(ctx, events.LeadCreated{
		BaseEvent:       events.NewBaseEvent(now),
		LeadID:          lead.ID,
		TenantID:        tenantID,
		AssignedAgentID: lead.AssignedAgentID,
		Stage:           lead.Stage,
		Source:          source,
	})

	return s.toLeadResponse(lead, now), nil
}

func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.getLead(ctx, tenantID, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return s.toLeadResponse(lead, s.engine.Now()), nil
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = defaultPageSize
	}
	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}
	if !repository.ValidSort(req.SortBy) {
		return transport.LeadListResponse{}, apperr.Validation(msgUnknownSortBy)
	}

	params := repository.ListParams{
		OrganizationID: tenantID,
		Search:         req.Search,
		SortBy:         req.SortBy,
		Offset:         (req.Page - 1) * req.PageSize,
		Limit:          req.PageSize,
	}

	if req.Stage != "" {
		for _, raw := range strings.Split(req.Stage, ",") {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			if !domain.IsKnownPipelineStage(raw) {
				return transport.LeadListResponse{}, apperr.Validation(msgUnknownStage)
			}
			params.Stages = append(params.Stages, domain.NormalizeStage(raw))
		}
	}
	if req.AssignedAgentID != "" {
		agentID, err := uuid.Parse(req.AssignedAgentID)
		if err != nil {
			return transport.LeadListResponse{}, apperr.Validation(msgInvalidAgent)
		}
		params.AssignedAgentID = &agentID
	}

	now := s.engine.Now()

	if req.Band != "" {
		band, ok := aging.ParseBand(req.Band)
		if !ok {
			return transport.LeadListResponse{}, apperr.Validation(msgUnknownBand)
		}
		return s.listByBand(ctx, params, band, req.Page, req.PageSize, now)
	}

	var (
		leads []repository.Lead
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		leads, err = s.repo.List(gctx, params)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, params)
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.LeadListResponse{}, err
	}

	items := make([]transport.LeadResponse, len(leads))
	for i, lead := range leads {
		items[i] = s.toLeadResponse(lead, now)
	}

	return pageOf(items, total, req.Page, req.PageSize), nil
}

// listByBand ages every row of the filtered set against now, walking it in
// batches, and pages through the ones that fall in band. Total counts all of
// them, so it agrees with Summary.
func (s *Service) listByBand(ctx context.Context, params repository.ListParams, band aging.Band, page, pageSize int, now time.Time) (transport.LeadListResponse, error) {
	params.Limit = bandScanBatch

	matched := make([]transport.LeadResponse, 0)
	for params.Offset = 0; ; params.Offset += bandScanBatch {
		leads, err := s.repo.List(ctx, params)
		if err != nil {
			return transport.LeadListResponse{}, err
		}
		for _, lead := range leads {
			resp := s.toLeadResponse(lead, now)
			if resp.Aging.Band == band {
				matched = append(matched, resp)
			}
		}
		if len(leads) < bandScanBatch {
			break
		}
	}

	start := min((page-1)*pageSize, len(matched))
	end := min(start+pageSize, len(matched))

	return pageOf(matched[start:end], len(matched), page, pageSize), nil
}

func pageOf(items []transport.LeadResponse, total, page, pageSize int) transport.LeadListResponse {
	return transport.LeadListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
}

func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	params := repository.UpdateLeadParams{
		Source:      sanitize.TextPtr(req.Source),
		PropertyRef: sanitize.TextPtr(req.PropertyRef),
		Notes:       sanitize.TextPtr(req.Notes),
	}

	if req.Name != nil {
		name := sanitize.Text(*req.Name)
		if name == "" {
			return transport.LeadResponse{}, apperr.Validation("name is required")
		}
		params.Name = &name
	}
	if req.Phone != nil {
		normalized, err := s.normalizePhone(*req.Phone)
		if err != nil {
			return transport.LeadResponse{}, err
		}
		params.Phone = &normalized
	}
	if req.Email != nil {
		params.Email = optionalEmail(*req.Email)
	}
	if req.AssignedAgentID.Set {
		if req.AssignedAgentID.Clears() {
			params.ClearAssignee = true
		} else {
			if err := s.ensureAgent(ctx, tenantID, *req.AssignedAgentID.Value); err != nil {
				return transport.LeadResponse{}, err
			}
			params.AssignedAgentID = req.AssignedAgentID.Value
		}
	}

	lead, err := s.repo.Update(ctx, id, tenantID, params)
	if err != nil {
		return transport.LeadResponse{}, mapNotFound(err)
	}
	return s.toLeadResponse(lead, s.engine.Now()), nil
}

// ChangeStage moves a lead along the pipeline. Entering a terminal stage
// cancels any scheduled follow-up.
func (s *Service) ChangeStage(ctx context.Context, tenantID, actorID, id uuid.UUID, req transport.ChangeStageRequest) (transport.LeadResponse, error) {
	current, err := s.getLead(ctx, tenantID, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	now := s.engine.Now()
	next := domain.NormalizeStage(req.Stage)

	if reason := domain.ValidateStageTransition(current.Stage, next); reason != "" {
		return transport.LeadResponse{}, apperr.Validation(reason)
	}
	if domain.NormalizeStage(current.Stage) == next {
		return s.toLeadResponse(current, now), nil
	}

	clearFollowup := domain.ClearsFollowup(next) && current.FollowupScheduledAt != nil

	lead, err := s.repo.UpdateStage(ctx, id, tenantID, next, clearFollowup)
	if err != nil {
		return transport.LeadResponse{}, mapNotFound(err)
	}

	s.eventBus.Publish(ctx, events.LeadStageChanged{
		BaseEvent:        events.NewBaseEvent(now),
		LeadID:           lead.ID,
		TenantID:         tenantID,
		ActorID:          actorID,
		OldStage:         current.Stage,
		NewStage:         lead.Stage,
		FollowupCanceled: clearFollowup,
	})

	return s.toLeadResponse(lead, now), nil
}

// ScheduleFollowup sets the next follow-up. Past instants are rejected
// unless allowPast is set, which back-office imports use.
func (s *Service) ScheduleFollowup(ctx context.Context, tenantID, actorID, id uuid.UUID, req transport.ScheduleFollowupRequest) (transport.LeadResponse, error) {
	now := s.engine.Now()
	if !req.AllowPast && !req.ScheduledAt.After(now) {
		return transport.LeadResponse{}, apperr.Validation(msgPastFollowup)
	}

	current, err := s.getLead(ctx, tenantID, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if domain.IsTerminalPipelineStage(current.Stage) {
		return transport.LeadResponse{}, apperr.Validation(msgClosedLead)
	}

	lead, err := s.repo.ScheduleFollowup(ctx, id, tenantID, req.ScheduledAt)
	if err != nil {
		return transport.LeadResponse{}, mapNotFound(err)
	}

	s.eventBus.Publish(ctx, events.FollowupScheduled{
		BaseEvent:       events.NewBaseEvent(now),
		LeadID:          lead.ID,
		TenantID:        tenantID,
		ActorID:         actorID,
		AssignedAgentID: lead.AssignedAgentID,
		ScheduledAt:     req.ScheduledAt,
	})

	return s.toLeadResponse(lead, now), nil
}

func (s *Service) ClearFollowup(ctx context.Context, tenantID, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.ClearFollowup(ctx, id, tenantID)
	if err != nil {
		return transport.LeadResponse{}, mapNotFound(err)
	}
	return s.toLeadResponse(lead, s.engine.Now()), nil
}

func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return mapNotFound(s.repo.Delete(ctx, id, tenantID))
}

func (s *Service) getLead(ctx context.Context, tenantID, id uuid.UUID) (repository.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return repository.Lead{}, mapNotFound(err)
	}
	return lead, nil
}

func (s *Service) ensureAgent(ctx context.Context, tenantID, agentID uuid.UUID) error {
	ok, err := s.directory.IsActiveMember(ctx, tenantID, agentID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Validation(msgUnknownAgent)
	}
	return nil
}

func (s *Service) normalizePhone(input string) (string, error) {
	if !phone.IsValid(input, s.phoneRegion) {
		return "", apperr.Validation(msgInvalidPhone)
	}
	return phone.NormalizeE164(input, s.phoneRegion), nil
}

func optionalEmail(email string) *string {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgLeadNotFound)
	}
	return err
}

func (s *Service) toLeadResponse(lead repository.Lead, now time.Time) transport.LeadResponse {
	resp := transport.LeadResponse{
		ID:                  lead.ID,
		Name:                lead.Name,
		Phone:               lead.Phone,
		Email:               lead.Email,
		Source:              lead.Source,
		Stage:               lead.Stage,
		AssignedAgentID:     lead.AssignedAgentID,
		PropertyRef:         lead.PropertyRef,
		Notes:               lead.Notes,
		LastInteractionAt:   lead.LastInteractionAt,
		FollowupScheduledAt: lead.FollowupScheduledAt,
		Aging:               s.agingAt(agingInput(lead.Stage, lead.LastInteractionAt, lead.FollowupScheduledAt), now),
		CreatedAt:           lead.CreatedAt,
		UpdatedAt:           lead.UpdatedAt,
	}
	if lead.FollowupScheduledAt != nil {
		cd := countdown.At(*lead.FollowupScheduledAt, now)
		resp.Followup = &cd
	}
	return resp
}
