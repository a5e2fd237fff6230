// Package email delivers transactional messages to team members.
package email

import (
	"context"

	"bighome_hub/platform/config"
)

// OverdueLead is what an agent needs to act on an overdue lead.
type OverdueLead struct {
	AgentName  string
	LeadName   string
	Stage      string
	Percentage int
	DaysDiff   int
	FollowupAt string
	LeadURL    string
}

type Sender interface {
	SendLeadOverdueEmail(ctx context.Context, toEmail string, lead OverdueLead) error
}

// NoopSender drops every message. Used when email is disabled.
type NoopSender struct{}

func (NoopSender) SendLeadOverdueEmail(ctx context.Context, toEmail string, lead OverdueLead) error {
	return nil
}

// NewSender returns an SMTP sender, or a NoopSender when email is disabled.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}

	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	), nil
}
