// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"bighome_hub/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

var (
	_ Event = LeadCreated{}
	_ Event = LeadStageChanged{}
	_ Event = FollowupScheduled{}
	_ Event = InteractionRecorded{}
	_ Event = LeadOverdue{}
)

// LeadCreated is published when a new lead is created.
type LeadCreated struct {
	BaseEvent
	LeadID          uuid.UUID  `json:"leadId"`
	TenantID        uuid.UUID  `json:"tenantId"`
	AssignedAgentID *uuid.UUID `json:"assignedAgentId,omitempty"`
	Stage           string     `json:"stage"`
	Source          string     `json:"source,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStageChanged is published when a lead moves to another pipeline stage.
type LeadStageChanged struct {
	BaseEvent
	LeadID           uuid.UUID `json:"leadId"`
	TenantID         uuid.UUID `json:"tenantId"`
	ActorID          uuid.UUID `json:"actorId"`
	OldStage         string    `json:"oldStage"`
	NewStage         string    `json:"newStage"`
	FollowupCanceled bool      `json:"followupCanceled"`
}

func (e LeadStageChanged) EventName() string { return "leads.stage.changed" }

// FollowupScheduled is published when a follow-up is set on a lead.
type FollowupScheduled struct {
	BaseEvent
	LeadID          uuid.UUID  `json:"leadId"`
	TenantID        uuid.UUID  `json:"tenantId"`
	ActorID         uuid.UUID  `json:"actorId"`
	AssignedAgentID *uuid.UUID `json:"assignedAgentId,omitempty"`
	ScheduledAt     time.Time  `json:"scheduledAt"`
}

func (e FollowupScheduled) EventName() string { return "leads.followup.scheduled" }

// InteractionRecorded is published when a contact with the lead is logged.
type InteractionRecorded struct {
	BaseEvent
	LeadID        uuid.UUID `json:"leadId"`
	TenantID      uuid.UUID `json:"tenantId"`
	ActorID       uuid.UUID `json:"actorId"`
	Kind          string    `json:"kind"`
	InteractionAt time.Time `json:"occurredAt"`
}

func (e InteractionRecorded) EventName() string { return "leads.interaction.recorded" }

// LeadOverdue is published by the aging sweep for a lead whose follow-up or
// idle window has lapsed. At most one is published per lead per notify window.
type LeadOverdue struct {
	BaseEvent
	LeadID              uuid.UUID  `json:"leadId"`
	TenantID            uuid.UUID  `json:"tenantId"`
	AgentID             uuid.UUID  `json:"agentId"`
	LeadName            string     `json:"leadName"`
	Stage               string     `json:"stage"`
	Percentage          int        `json:"percentage"`
	DaysDiff            int        `json:"daysDiff"`
	FollowupScheduledAt *time.Time `json:"followupScheduledAt,omitempty"`
}

func (e LeadOverdue) EventName() string { return "leads.aging.overdue" }
