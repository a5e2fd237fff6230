package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"bighome_hub/internal/events"
	"bighome_hub/internal/leads/aging"
	"bighome_hub/internal/leads/repository"
	"bighome_hub/internal/leads/transport"
	"bighome_hub/platform/apperr"
	"bighome_hub/platform/clock"

	"github.com/google/uuid"
)

var saoPaulo = func() *time.Location {
	loc, err := clock.LoadZone(clock.DefaultZone)
	if err != nil {
		panic(err)
	}
	return loc
}()

// 2025-03-12 15:00 in São Paulo.
var fixedNow = time.Date(2025, 3, 12, 15, 0, 0, 0, saoPaulo)

type fakeRepo struct {
	mu         sync.Mutex
	leads      map[uuid.UUID]repository.Lead
	activities []repository.Activity
	listCalls  int
	countCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{leads: map[uuid.UUID]repository.Lead{}}
}

func (f *fakeRepo) put(lead repository.Lead) repository.Lead {
	f.mu.Lock()
	defer f.mu.Unlock()
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	f.leads[lead.ID] = lead
	return lead
}

func (f *fakeRepo) find(id, org uuid.UUID) (repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok || lead.OrganizationID != org {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id, org uuid.UUID) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find(id, org)
}

func (f *fakeRepo) matching(params repository.ListParams) []repository.Lead {
	out := make([]repository.Lead, 0)
	for _, lead := range f.leads {
		if lead.OrganizationID == params.OrganizationID {
			out = append(out, lead)
		}
	}
	return out
}

func (f *fakeRepo) List(_ context.Context, params repository.ListParams) ([]repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	all := f.matching(params)
	slices.SortFunc(all, func(a, b repository.Lead) int { return strings.Compare(a.ID.String(), b.ID.String()) })
	start := min(params.Offset, len(all))
	end := min(start+params.Limit, len(all))
	return all[start:end], nil
}

func (f *fakeRepo) Count(_ context.Context, params repository.ListParams) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countCalls++
	return len(f.matching(params)), nil
}

func (f *fakeRepo) Create(_ context.Context, p repository.CreateLeadParams) (repository.Lead, error) {
	return f.put(repository.Lead{
		OrganizationID:      p.OrganizationID,
		Name:                p.Name,
		Phone:               p.Phone,
		Email:               p.Email,
		Source:              p.Source,
		Stage:               p.Stage,
		AssignedAgentID:     p.AssignedAgentID,
		PropertyRef:         p.PropertyRef,
		Notes:               p.Notes,
		LastInteractionAt:   p.LastInteractionAt,
		FollowupScheduledAt: p.FollowupScheduledAt,
	}), nil
}

func (f *fakeRepo) Update(_ context.Context, id, org uuid.UUID, p repository.UpdateLeadParams) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, err := f.find(id, org)
	if err != nil {
		return lead, err
	}
	if p.Name != nil {
		lead.Name = *p.Name
	}
	if p.Phone != nil {
		lead.Phone = *p.Phone
	}
	if p.Notes != nil {
		lead.Notes = p.Notes
	}
	if p.ClearAssignee {
		lead.AssignedAgentID = nil
	} else if p.AssignedAgentID != nil {
		lead.AssignedAgentID = p.AssignedAgentID
	}
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeRepo) UpdateStage(_ context.Context, id, org uuid.UUID, stage string, clearFollowup bool) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, err := f.find(id, org)
	if err != nil {
		return lead, err
	}
	lead.Stage = stage
	if clearFollowup {
		lead.FollowupScheduledAt = nil
	}
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeRepo) Delete(_ context.Context, id, org uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.find(id, org); err != nil {
		return err
	}
	delete(f.leads, id)
	return nil
}

func (f *fakeRepo) ScheduleFollowup(_ context.Context, id, org uuid.UUID, at time.Time) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, err := f.find(id, org)
	if err != nil {
		return lead, err
	}
	lead.FollowupScheduledAt = &at
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeRepo) ClearFollowup(_ context.Context, id, org uuid.UUID) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, err := f.find(id, org)
	if err != nil {
		return lead, err
	}
	lead.FollowupScheduledAt = nil
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeRepo) RecordInteraction(_ context.Context, p repository.RecordInteractionParams) (repository.Lead, repository.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, err := f.find(p.LeadID, p.OrganizationID)
	if err != nil {
		return lead, repository.Activity{}, err
	}
	at := p.OccurredAt
	lead.LastInteractionAt = &at
	f.leads[lead.ID] = lead
	activity := repository.Activity{
		ID: uuid.New(), LeadID: lead.ID, OrganizationID: p.OrganizationID, ActorID: p.ActorID,
		Kind: p.Kind, Summary: p.Summary, OccurredAt: p.OccurredAt,
	}
	f.activities = append(f.activities, activity)
	return lead, activity, nil
}

func (f *fakeRepo) ListActivities(_ context.Context, leadID, _ uuid.UUID, _ int) ([]repository.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.Activity, 0)
	for _, a := range f.activities {
		if a.LeadID == leadID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListAgingCandidates(context.Context, []string) ([]repository.AgingCandidate, error) {
	return nil, errors.New("not used")
}

func (f *fakeRepo) ListOrganizationCandidates(_ context.Context, org uuid.UUID) ([]repository.AgingCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.AgingCandidate, 0)
	for _, lead := range f.leads {
		if lead.OrganizationID == org {
			out = append(out, repository.AgingCandidate{
				ID: lead.ID, OrganizationID: org, Name: lead.Name, Stage: lead.Stage,
				AssignedAgentID: lead.AssignedAgentID, LastInteractionAt: lead.LastInteractionAt,
				FollowupScheduledAt: lead.FollowupScheduledAt,
			})
		}
	}
	return out, nil
}

type fakeDirectory struct {
	members map[uuid.UUID]bool
}

func (d fakeDirectory) IsActiveMember(_ context.Context, _, memberID uuid.UUID) (bool, error) {
	return d.members[memberID], nil
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.EventName()
	}
	return out
}

type fixture struct {
	svc   *Service
	repo  *fakeRepo
	bus   *recordingBus
	org   uuid.UUID
	actor uuid.UUID
	agent uuid.UUID
}

func newFixture() fixture {
	repo := newFakeRepo()
	bus := &recordingBus{}
	agent := uuid.New()
	svc := New(repo, clock.NewFixed(fixedNow, saoPaulo), fakeDirectory{members: map[uuid.UUID]bool{agent: true}}, bus, "BR")
	return fixture{svc: svc, repo: repo, bus: bus, org: uuid.New(), actor: uuid.New(), agent: agent}
}

func ptr[T any](v T) *T { return &v }

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", kind)
	}
	if got := apperr.GetKind(err); got != kind {
		t.Fatalf("expected kind %v, got %v (%v)", kind, got, err)
	}
}

func TestCreateNormalizesAndStampsInteraction(t *testing.T) {
	f := newFixture()

	resp, err := f.svc.Create(context.Background(), f.org, transport.CreateLeadRequest{
		Name:            "<b>Joana</b> Silva",
		Phone:           "(11) 98765-4321",
		Email:           " Joana@Example.com ",
		Stage:           " Atendimento ",
		AssignedAgentID: transport.OptionalUUID{Value: &f.agent, Set: true},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if resp.Name != "Joana Silva" {
		t.Errorf("name = %q", resp.Name)
	}
	if resp.Phone != "+5511987654321" {
		t.Errorf("phone = %q", resp.Phone)
	}
	if resp.Email == nil || *resp.Email != "joana@example.com" {
		t.Errorf("email = %v", resp.Email)
	}
	if resp.Stage != "atendimento" {
		t.Errorf("stage = %q", resp.Stage)
	}
	if resp.LastInteractionAt == nil || !resp.LastInteractionAt.Equal(fixedNow) {
		t.Errorf("last interaction = %v", resp.LastInteractionAt)
	}
	if resp.Aging.Percentage != 0 || resp.Aging.Band != aging.BandOnTime {
		t.Errorf("fresh lead aging = %+v", resp.Aging.Result)
	}
	if names := f.bus.names(); len(names) != 1 || names[0] != "leads.lead.created" {
		t.Errorf("events = %v", names)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cases := map[string]transport.CreateLeadRequest{
		"phone":    {Name: "A", Phone: "123"},
		"stage":    {Name: "A", Phone: "11987654321", Stage: "arquivado"},
		"agent":    {Name: "A", Phone: "11987654321", AssignedAgentID: transport.OptionalUUID{Value: ptr(uuid.New()), Set: true}},
		"followup": {Name: "A", Phone: "11987654321", FollowupScheduledAt: ptr(fixedNow.Add(-time.Minute))},
		"name":     {Name: "<i></i>", Phone: "11987654321"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, f.org, req)
			requireKind(t, err, apperr.KindValidation)
		})
	}
}

func TestGetScopesByOrganization(t *testing.T) {
	f := newFixture()
	lead := f.repo.put(repository.Lead{OrganizationID: f.org, Name: "X", Stage: "proposta"})

	_, err := f.svc.Get(context.Background(), uuid.New(), lead.ID)
	requireKind(t, err, apperr.KindNotFound)
}

func TestGetAttachesAgingAndCountdown(t *testing.T) {
	f := newFixture()
	followup := fixedNow.Add(26*time.Hour + 3*time.Minute)
	lead := f.repo.put(repository.Lead{
		OrganizationID:      f.org,
		Name:                "Carlos",
		Stage:               "Em Atendimento",
		LastInteractionAt:   ptr(fixedNow.Add(-72 * time.Hour)),
		FollowupScheduledAt: &followup,
	})

	resp, err := f.svc.Get(context.Background(), f.org, lead.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.Aging.Percentage != 80 || resp.Aging.Band != aging.BandCritical {
		t.Errorf("aging = %+v, want tomorrow step", resp.Aging.Result)
	}
	if resp.Aging.Timezone != clock.DefaultZone {
		t.Errorf("timezone = %q", resp.Aging.Timezone)
	}
	if resp.Followup == nil || resp.Followup.Text != "1d 02h 03m 00s" {
		t.Errorf("countdown = %+v", resp.Followup)
	}
}

func TestListRunsPageAndCountWithPinnedInstant(t *testing.T) {
	f := newFixture()
	for i := range 3 {
		f.repo.put(repository.Lead{
			OrganizationID:    f.org,
			Name:              "Lead",
			Stage:             "atendimento",
			LastInteractionAt: ptr(fixedNow.AddDate(0, 0, -i*2)),
		})
	}
	f.repo.put(repository.Lead{OrganizationID: uuid.New(), Name: "Other", Stage: "atendimento"})

	resp, err := f.svc.List(context.Background(), f.org, transport.ListLeadsRequest{PageSize: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.Total != 3 || resp.TotalPages != 2 || len(resp.Items) != 2 {
		t.Fatalf("page = total %d pages %d items %d", resp.Total, resp.TotalPages, len(resp.Items))
	}
	if f.repo.listCalls != 1 || f.repo.countCalls != 1 {
		t.Errorf("list calls %d count calls %d", f.repo.listCalls, f.repo.countCalls)
	}
	for _, item := range resp.Items {
		if !item.Aging.EvaluatedAt.Equal(fixedNow) {
			t.Errorf("item evaluated at %v", item.Aging.EvaluatedAt)
		}
	}
}

func TestListFiltersByBand(t *testing.T) {
	f := newFixture()
	overdue := f.repo.put(repository.Lead{
		OrganizationID: f.org, Name: "Late", Stage: "atendimento",
		LastInteractionAt: ptr(fixedNow.AddDate(0, 0, -6)),
	})
	f.repo.put(repository.Lead{
		OrganizationID: f.org, Name: "Fresh", Stage: "atendimento",
		LastInteractionAt: ptr(fixedNow),
	})

	resp, err := f.svc.List(context.Background(), f.org, transport.ListLeadsRequest{Band: "vencido"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if resp.Total != 1 || len(resp.Items) != 1 || resp.Items[0].ID != overdue.ID {
		t.Fatalf("band filter returned %+v", resp.Items)
	}
	if f.repo.countCalls != 0 {
		t.Errorf("band listing should not issue a count query")
	}
}

func TestListByBandCoversWholeOrganization(t *testing.T) {
	f := newFixture()
	const overdueLeads = 1200
	for i := 0; i < overdueLeads; i++ {
		f.repo.put(repository.Lead{
			OrganizationID: f.org, Name: "Idle", Stage: "atendimento",
			LastInteractionAt: ptr(fixedNow.AddDate(0, 0, -10)),
		})
	}
	f.repo.put(repository.Lead{
		OrganizationID: f.org, Name: "Fresh", Stage: "atendimento",
		LastInteractionAt: ptr(fixedNow),
	})

	resp, err := f.svc.List(context.Background(), f.org, transport.ListLeadsRequest{Band: "vencido", Page: 3, PageSize: 100})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	summary, err := f.svc.Summary(context.Background(), f.org)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if resp.Total != overdueLeads || resp.TotalPages != 12 || len(resp.Items) != 100 {
		t.Fatalf("total=%d pages=%d items=%d", resp.Total, resp.TotalPages, len(resp.Items))
	}
	if resp.Total != summary.Overdue {
		t.Fatalf("band total %d disagrees with summary overdue %d", resp.Total, summary.Overdue)
	}
	seen := map[uuid.UUID]bool{}
	for page := 1; page <= resp.TotalPages; page++ {
		r, err := f.svc.List(context.Background(), f.org, transport.ListLeadsRequest{Band: "vencido", Page: page, PageSize: 100})
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		for _, item := range r.Items {
			seen[item.ID] = true
		}
	}
	if len(seen) != overdueLeads {
		t.Fatalf("paging visited %d distinct leads, want %d", len(seen), overdueLeads)
	}
}

func TestListRejectsUnknownFilters(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.List(ctx, f.org, transport.ListLeadsRequest{Band: "late"})
	requireKind(t, err, apperr.KindValidation)

	_, err = f.svc.List(ctx, f.org, transport.ListLeadsRequest{Stage: "atendimento,arquivado"})
	requireKind(t, err, apperr.KindValidation)

	_, err = f.svc.List(ctx, f.org, transport.ListLeadsRequest{SortBy: "phone"})
	requireKind(t, err, apperr.KindValidation)
}

func TestChangeStageToTerminalClearsFollowup(t *testing.T) {
	f := newFixture()
	lead := f.repo.put(repository.Lead{
		OrganizationID: f.org, Name: "Ana", Stage: "proposta",
		FollowupScheduledAt: ptr(fixedNow.Add(48 * time.Hour)),
	})

	resp, err := f.svc.ChangeStage(context.Background(), f.org, f.actor, lead.ID, transport.ChangeStageRequest{Stage: "Fechado"})
	if err != nil {
		t.Fatalf("change stage: %v", err)
	}
	if resp.Stage != "fechado" || resp.FollowupScheduledAt != nil {
		t.Fatalf("unexpected lead %+v", resp)
	}
	if resp.Aging.Band != aging.BandNew {
		t.Errorf("closed lead should not age, got %+v", resp.Aging.Result)
	}

	f.bus.mu.Lock()
	defer f.bus.mu.Unlock()
	if len(f.bus.events) != 1 {
		t.Fatalf("events = %d", len(f.bus.events))
	}
	changed, ok := f.bus.events[0].(events.LeadStageChanged)
	if !ok || changed.OldStage != "proposta" || changed.NewStage != "fechado" || !changed.FollowupCanceled {
		t.Fatalf("event = %+v", f.bus.events[0])
	}
}

func TestChangeStageSameStageIsNoop(t *testing.T) {
	f := newFixture()
	lead := f.repo.put(repository.Lead{OrganizationID: f.org, Name: "Ana", Stage: "proposta"})

	if _, err := f.svc.ChangeStage(context.Background(), f.org, f.actor, lead.ID, transport.ChangeStageRequest{Stage: " PROPOSTA"}); err != nil {
		t.Fatalf("change stage: %v", err)
	}
	if names := f.bus.names(); len(names) != 0 {
		t.Errorf("expected no events, got %v", names)
	}
}

func TestChangeStageRejectsInvalidTransition(t *testing.T) {
	f := newFixture()
	lead := f.repo.put(repository.Lead{OrganizationID: f.org, Name: "Ana", Stage: "perdido"})

	_, err := f.svc.ChangeStage(context.Background(), f.org, f.actor, lead.ID, transport.ChangeStageRequest{Stage: "fechado"})
	requireKind(t, err, apperr.KindValidation)
}

func TestScheduleFollowup(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	lead := f.repo.put(repository.Lead{OrganizationID: f.org, Name: "Bia", Stage: "documentação", AssignedAgentID: &f.agent})

	_, err := f.svc.ScheduleFollowup(ctx, f.org, f.actor, lead.ID, transport.ScheduleFollowupRequest{ScheduledAt: fixedNow.Add(-time.Hour)})
	requireKind(t, err, apperr.KindValidation)

	past := fixedNow.Add(-time.Hour)
	resp, err := f.svc.ScheduleFollowup(ctx, f.org, f.actor, lead.ID, transport.ScheduleFollowupRequest{ScheduledAt: past, AllowPast: true})
	if err != nil {
		t.Fatalf("schedule past with allowPast: %v", err)
	}
	if !resp.Aging.IsOverdue || resp.Aging.Percentage != 100 {
		t.Errorf("past follow-up aging = %+v", resp.Aging.Result)
	}
	if resp.Followup == nil || !resp.Followup.Expired {
		t.Errorf("countdown = %+v", resp.Followup)
	}

	next := fixedNow.Add(4 * 24 * time.Hour)
	if _, err := f.svc.ScheduleFollowup(ctx, f.org, f.actor, lead.ID, transport.ScheduleFollowupRequest{ScheduledAt: next}); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	names := f.bus.names()
	if len(names) != 2 || names[1] != "leads.followup.scheduled" {
		t.Errorf("events = %v", names)
	}

	cleared, err := f.svc.ClearFollowup(ctx, f.org, lead.ID)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if cleared.FollowupScheduledAt != nil || cleared.Followup != nil {
		t.Errorf("follow-up not cleared: %+v", cleared)
	}
}

func TestScheduleFollowupRejectsFinishedLead(t *testing.T) {
	f := newFixture()
	lead := f.repo.put(repository.Lead{OrganizationID: f.org, Name: "Bia", Stage: "fechado"})

	_, err := f.svc.ScheduleFollowup(context.Background(), f.org, f.actor, lead.ID, transport.ScheduleFollowupRequest{ScheduledAt: fixedNow.Add(time.Hour)})
	requireKind(t, err, apperr.KindValidation)
}

func TestRecordInteractionResetsAging(t *testing.T) {
	f := newFixture()
	lead := f.repo.put(repository.Lead{
		OrganizationID: f.org, Name: "Rui", Stage: "atendimento",
		LastInteractionAt: ptr(fixedNow.AddDate(0, 0, -10)),
	})

	resp, err := f.svc.RecordInteraction(context.Background(), f.org, f.actor, lead.ID, transport.RecordInteractionRequest{
		Kind: "whatsapp", Summary: "<p>enviou fotos</p>",
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if resp.Lead.Aging.Percentage != 0 || resp.Lead.Aging.IsOverdue {
		t.Errorf("aging after interaction = %+v", resp.Lead.Aging.Result)
	}
	if resp.Activity.Summary == nil || *resp.Activity.Summary != "enviou fotos" {
		t.Errorf("summary = %v", resp.Activity.Summary)
	}

	list, err := f.svc.ListActivities(context.Background(), f.org, lead.ID)
	if err != nil {
		t.Fatalf("list activities: %v", err)
	}
	if len(list.Items) != 1 {
		t.Errorf("activities = %d", len(list.Items))
	}

	if len(f.bus.events) != 1 {
		t.Fatalf("published %v", f.bus.names())
	}
	recorded, ok := f.bus.events[0].(events.InteractionRecorded)
	if !ok {
		t.Fatalf("published %T, want InteractionRecorded", f.bus.events[0])
	}
	if recorded.LeadID != lead.ID || recorded.ActorID != f.actor || recorded.Kind != "whatsapp" {
		t.Errorf("event = %+v", recorded)
	}
	if !recorded.InteractionAt.Equal(resp.Activity.OccurredAt) || !recorded.OccurredAt().Equal(fixedNow) {
		t.Errorf("event times = %v / %v, activity at %v", recorded.InteractionAt, recorded.OccurredAt(), resp.Activity.OccurredAt)
	}
}

func TestUpdateAssigneeAndClear(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	lead := f.repo.put(repository.Lead{OrganizationID: f.org, Name: "Léo", Stage: "novo"})

	resp, err := f.svc.Update(ctx, f.org, lead.ID, transport.UpdateLeadRequest{
		AssignedAgentID: transport.OptionalUUID{Value: &f.agent, Set: true},
		Notes:           ptr("quer 2 quartos"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if resp.AssignedAgentID == nil || *resp.AssignedAgentID != f.agent {
		t.Fatalf("assignee = %v", resp.AssignedAgentID)
	}

	resp, err = f.svc.Update(ctx, f.org, lead.ID, transport.UpdateLeadRequest{AssignedAgentID: transport.OptionalUUID{Set: true}})
	if err != nil {
		t.Fatalf("clear assignee: %v", err)
	}
	if resp.AssignedAgentID != nil {
		t.Errorf("assignee not cleared")
	}

	_, err = f.svc.Update(ctx, f.org, uuid.New(), transport.UpdateLeadRequest{Notes: ptr("x")})
	requireKind(t, err, apperr.KindNotFound)
}

func TestDelete(t *testing.T) {
	f := newFixture()
	lead := f.repo.put(repository.Lead{OrganizationID: f.org, Name: "Zé", Stage: "novo"})

	if err := f.svc.Delete(context.Background(), f.org, lead.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	requireKind(t, f.svc.Delete(context.Background(), f.org, lead.ID), apperr.KindNotFound)
}

func TestPreviewIsStateless(t *testing.T) {
	f := newFixture()

	resp := f.svc.Preview(transport.AgingPreviewRequest{
		LastInteractionAt: transport.LenientTime{Value: ptr(fixedNow.AddDate(0, 0, -2))},
		Stage:             ptr("atendimento"),
	})
	if resp.Percentage != 40 || resp.Band != aging.BandWarning || resp.ColorHex == "" {
		t.Errorf("preview = %+v", resp)
	}

	if got := f.svc.Preview(transport.AgingPreviewRequest{}); got.Band != aging.BandNew {
		t.Errorf("preview without stage = %+v", got)
	}
}

func TestSummaryCountsBands(t *testing.T) {
	f := newFixture()
	f.repo.put(repository.Lead{OrganizationID: f.org, Name: "a", Stage: "atendimento", LastInteractionAt: ptr(fixedNow.AddDate(0, 0, -7))})
	f.repo.put(repository.Lead{OrganizationID: f.org, Name: "b", Stage: "atendimento", LastInteractionAt: ptr(fixedNow)})
	f.repo.put(repository.Lead{OrganizationID: f.org, Name: "c", Stage: "fechado"})

	resp, err := f.svc.Summary(context.Background(), f.org)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if resp.Total != 3 || resp.Overdue != 1 {
		t.Fatalf("total %d overdue %d", resp.Total, resp.Overdue)
	}

	counts := map[aging.Band]int{}
	for _, b := range resp.Bands {
		counts[b.Band] = b.Count
	}
	if len(resp.Bands) != len(aging.Bands) {
		t.Errorf("bands = %d", len(resp.Bands))
	}
	if counts[aging.BandOverdue] != 1 || counts[aging.BandOnTime] != 1 || counts[aging.BandNew] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestCountdown(t *testing.T) {
	f := newFixture()
	lead := f.repo.put(repository.Lead{OrganizationID: f.org, Name: "Rita", Stage: "proposta",
		FollowupScheduledAt: ptr(fixedNow.Add(3*time.Hour + 4*time.Minute + 5*time.Second))})
	unscheduled := f.repo.put(repository.Lead{OrganizationID: f.org, Name: "Sem", Stage: "proposta"})

	resp, err := f.svc.Countdown(context.Background(), f.org, lead.ID)
	if err != nil {
		t.Fatalf("countdown: %v", err)
	}
	if !resp.Scheduled || resp.Countdown.Text != "03:04:05" {
		t.Errorf("countdown = %+v", resp.Countdown)
	}

	resp, err = f.svc.Countdown(context.Background(), f.org, unscheduled.ID)
	if err != nil {
		t.Fatalf("countdown: %v", err)
	}
	if resp.Scheduled || resp.Countdown != nil {
		t.Errorf("unscheduled countdown = %+v", resp)
	}
}
