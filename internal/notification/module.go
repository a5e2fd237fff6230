// Package notification provides event handlers for sending notifications
// in response to domain events.
// This module subscribes to events and inverts the dependency: the leads domain
// and the aging sweep never need to know about email providers or templates.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	directoryrepo "bighome_hub/internal/directory/repository"
	"bighome_hub/internal/email"
	"bighome_hub/internal/events"
	apphttp "bighome_hub/internal/http"
	notifhandler "bighome_hub/internal/notification/handler"
	"bighome_hub/internal/notification/inapp"
	"bighome_hub/platform/config"
	"bighome_hub/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const followupDateLayout = "02/01/2006 15:04"

// MemberLookup resolves the team member a notification is addressed to.
type MemberLookup interface {
	Lookup(ctx context.Context, organizationID, memberID uuid.UUID) (directoryrepo.Member, error)
}

// Inbox persists in-app notifications.
type Inbox interface {
	Send(ctx context.Context, p inapp.SendParams) (inapp.Notification, error)
}

// Module handles all notification-related event subscriptions.
type Module struct {
	sender       email.Sender
	members      MemberLookup
	inbox        Inbox
	cfg          config.NotificationConfig
	loc          *time.Location
	log          *logger.Logger
	inAppHandler *notifhandler.HTTPHandler
}

// New creates a new notification module. loc is the zone follow-up times are
// shown in.
func New(pool *pgxpool.Pool, sender email.Sender, members MemberLookup, cfg config.NotificationConfig, loc *time.Location, log *logger.Logger) *Module {
	inAppSvc := inapp.NewService(inapp.NewRepository(pool), log)

	return &Module{
		sender:       sender,
		members:      members,
		inbox:        inAppSvc,
		cfg:          cfg,
		loc:          loc,
		log:          log,
		inAppHandler: notifhandler.NewHTTPHandler(inAppSvc),
	}
}

func (m *Module) Name() string { return "notification" }

// RegisterRoutes exposes the in-app inbox of the signed-in member.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.inAppHandler.RegisterRoutes(ctx.Protected.Group("/notifications"))
}

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadOverdue{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadOverdue:
		return m.handleLeadOverdue(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleLeadOverdue(ctx context.Context, e events.LeadOverdue) error {
	agent, err := m.members.Lookup(ctx, e.TenantID, e.AgentID)
	if err != nil {
		return fmt.Errorf("resolve agent %s: %w", e.AgentID, err)
	}
	if !agent.Active {
		m.log.Info("skipping overdue notice for inactive agent", "leadId", e.LeadID, "agentId", e.AgentID)
		return nil
	}

	overdue := email.OverdueLead{
		AgentName:  agent.Name,
		LeadName:   e.LeadName,
		Stage:      e.Stage,
		Percentage: e.Percentage,
		DaysDiff:   e.DaysDiff,
		FollowupAt: m.formatFollowup(e.FollowupScheduledAt),
		LeadURL:    m.buildLeadURL(e.LeadID),
	}

	var errs []error

	leadID := e.LeadID
	_, err = m.inbox.Send(ctx, inapp.SendParams{
		OrgID:        e.TenantID,
		UserID:       agent.ID,
		Title:        "Follow-up vencido",
		Content:      overdueContent(overdue),
		ResourceID:   &leadID,
		ResourceType: inapp.ResourceTypeLead,
		Category:     inapp.CategoryWarning,
	})
	m.log.OverdueNotice(e.LeadID.String(), agent.ID.String(), "in_app", err)
	if err != nil {
		errs = append(errs, err)
	}

	if strings.TrimSpace(agent.Email) == "" {
		m.log.Warn("agent has no email address", "agentId", agent.ID)
		return errors.Join(errs...)
	}

	err = m.sender.SendLeadOverdueEmail(ctx, agent.Email, overdue)
	m.log.OverdueNotice(e.LeadID.String(), agent.ID.String(), "email", err)
	if err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func overdueContent(lead email.OverdueLead) string {
	if lead.FollowupAt != "" {
		return fmt.Sprintf("O follow-up de %s agendado para %s venceu.", lead.LeadName, lead.FollowupAt)
	}
	return fmt.Sprintf("%s está há %d dias sem contato.", lead.LeadName, lead.DaysDiff)
}

func (m *Module) formatFollowup(at *time.Time) string {
	if at == nil {
		return ""
	}
	loc := m.loc
	if loc == nil {
		loc = time.UTC
	}
	return at.In(loc).Format(followupDateLayout)
}

func (m *Module) buildLeadURL(leadID uuid.UUID) string {
	base := strings.TrimRight(m.cfg.GetAppBaseURL(), "/")
	return base + "/leads/" + leadID.String()
}

var _ apphttp.Module = (*Module)(nil)
