package transport

import (
	"time"

	"bighome_hub/internal/leads/aging"
	"bighome_hub/internal/leads/countdown"

	"github.com/google/uuid"
)

// Request DTOs

type CreateLeadRequest struct {
	Name                string       `json:"name" validate:"required,min=1,max=200"`
	Phone               string       `json:"phone" validate:"required,min=8,max=30"`
	Email               string       `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Source              string       `json:"source,omitempty" validate:"max=100"`
	Stage               string       `json:"stage,omitempty" validate:"omitempty,pipeline_stage"`
	AssignedAgentID     OptionalUUID `json:"assignedAgentId,omitempty" validate:"-"`
	PropertyRef         string       `json:"propertyRef,omitempty" validate:"max=200"`
	Notes               string       `json:"notes,omitempty" validate:"max=4000"`
	FollowupScheduledAt *time.Time   `json:"followupScheduledAt,omitempty"`
}

type UpdateLeadRequest struct {
	Name            *string      `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Phone           *string      `json:"phone,omitempty" validate:"omitempty,min=8,max=30"`
	Email           *string      `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Source          *string      `json:"source,omitempty" validate:"omitempty,max=100"`
	AssignedAgentID OptionalUUID `json:"assignedAgentId,omitempty" validate:"-"`
	PropertyRef     *string      `json:"propertyRef,omitempty" validate:"omitempty,max=200"`
	Notes           *string      `json:"notes,omitempty" validate:"omitempty,max=4000"`
}

type ChangeStageRequest struct {
	Stage string `json:"stage" validate:"required,pipeline_stage"`
}

type RecordInteractionRequest struct {
	Kind    string `json:"kind" validate:"required,oneof=call whatsapp email visit note"`
	Summary string `json:"summary,omitempty" validate:"max=2000"`
}

type ScheduleFollowupRequest struct {
	ScheduledAt time.Time `json:"scheduledAt" validate:"required"`
	AllowPast   bool      `json:"allowPast,omitempty"`
}

type ListLeadsRequest struct {
	Stage           string `form:"stage" validate:"omitempty,max=200"`
	AssignedAgentID string `form:"assignedAgentId" validate:"omitempty,uuid"`
	Band            string `form:"band" validate:"omitempty,aging_band"`
	Search          string `form:"search" validate:"max=100"`
	Page            int    `form:"page" validate:"omitempty,min=1"`
	PageSize        int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
	SortBy          string `form:"sortBy" validate:"omitempty,oneof=created name last_interaction followup"`
}

// AgingPreviewRequest mirrors the fields the dashboard edits before saving.
type AgingPreviewRequest struct {
	LastInteractionAt   LenientTime `json:"lastInteractionAt,omitzero"`
	FollowupScheduledAt LenientTime `json:"followupScheduledAt,omitzero"`
	Stage               *string     `json:"stage,omitempty" validate:"omitempty,max=100"`
}

// Response DTOs

type AgingResponse struct {
	aging.Result
	ColorHex    string    `json:"colorHex"`
	EvaluatedAt time.Time `json:"evaluatedAt"`
	Timezone    string    `json:"timezone"`
}

type LeadResponse struct {
	ID                  uuid.UUID            `json:"id"`
	Name                string               `json:"name"`
	Phone               string               `json:"phone"`
	Email               *string              `json:"email,omitempty"`
	Source              *string              `json:"source,omitempty"`
	Stage               string               `json:"stage"`
	AssignedAgentID     *uuid.UUID           `json:"assignedAgentId,omitempty"`
	PropertyRef         *string              `json:"propertyRef,omitempty"`
	Notes               *string              `json:"notes,omitempty"`
	LastInteractionAt   *time.Time           `json:"lastInteractionAt,omitempty"`
	FollowupScheduledAt *time.Time           `json:"followupScheduledAt,omitempty"`
	Aging               AgingResponse        `json:"aging"`
	Followup            *countdown.Countdown `json:"followup,omitempty"`
	CreatedAt           time.Time            `json:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt"`
}

type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type ActivityResponse struct {
	ID         uuid.UUID  `json:"id"`
	Kind       string     `json:"kind"`
	Summary    *string    `json:"summary,omitempty"`
	ActorID    *uuid.UUID `json:"actorId,omitempty"`
	OccurredAt time.Time  `json:"occurredAt"`
}

type InteractionResponse struct {
	Lead     LeadResponse     `json:"lead"`
	Activity ActivityResponse `json:"activity"`
}

type ActivityListResponse struct {
	Items []ActivityResponse `json:"items"`
}

type CountdownResponse struct {
	LeadID    uuid.UUID            `json:"leadId"`
	Scheduled bool                 `json:"scheduled"`
	Countdown *countdown.Countdown `json:"countdown,omitempty"`
}

type BandCount struct {
	Band     aging.Band  `json:"band"`
	Label    string      `json:"label"`
	Color    aging.Color `json:"color"`
	ColorHex string      `json:"colorHex"`
	Count    int         `json:"count"`
}

type AgingSummaryResponse struct {
	Total       int         `json:"total"`
	Overdue     int         `json:"overdue"`
	Bands       []BandCount `json:"bands"`
	EvaluatedAt time.Time   `json:"evaluatedAt"`
}
