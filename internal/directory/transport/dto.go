package transport

import "github.com/google/uuid"

type MemberResponse struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Phone  *string   `json:"phone,omitempty"`
	Role   string    `json:"role"`
	Active bool      `json:"active"`
}

type TeamResponse struct {
	Items []MemberResponse `json:"items"`
}

type ListTeamRequest struct {
	IncludeInactive bool `form:"includeInactive"`
}
