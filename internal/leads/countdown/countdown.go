// Package countdown turns a target instant into the remaining-time display
// shown next to a lead's scheduled follow-up.
package countdown

import (
	"fmt"
	"time"

	"bighome_hub/platform/clock"
)

// ExpiredText is shown once the target has passed.
const ExpiredText = "Vencido"

// Countdown is the remaining time split into display units.
type Countdown struct {
	Target    time.Time `json:"target"`
	Days      int       `json:"days"`
	Hours     int       `json:"hours"`
	Minutes   int       `json:"minutes"`
	Seconds   int       `json:"seconds"`
	Remaining int64     `json:"remainingSeconds"`
	Expired   bool      `json:"expired"`
	Text      string    `json:"text"`
}

// Presenter derives countdowns from an injected clock.
type Presenter struct {
	clock clock.Clock
}

func NewPresenter(c clock.Clock) *Presenter {
	return &Presenter{clock: c}
}

// Until returns the countdown to target at the clock's current instant.
func (p *Presenter) Until(target time.Time) Countdown {
	return At(target, p.clock.Now())
}

// At returns the countdown to target as seen at now. Sub-second remainders
// are truncated, so a target 0.4s away already reads as expired.
func At(target, now time.Time) Countdown {
	remaining := target.Sub(now).Truncate(time.Second)
	if remaining <= 0 {
		return Countdown{Target: target, Expired: true, Text: ExpiredText}
	}

	total := int64(remaining / time.Second)
	c := Countdown{
		Target:    target,
		Days:      int(total / 86400),
		Hours:     int(total % 86400 / 3600),
		Minutes:   int(total % 3600 / 60),
		Seconds:   int(total % 60),
		Remaining: total,
	}
	c.Text = format(c)
	return c
}

func format(c Countdown) string {
	if c.Days > 0 {
		return fmt.Sprintf("%dd %02dh %02dm %02ds", c.Days, c.Hours, c.Minutes, c.Seconds)
	}
	return fmt.Sprintf("%02d:%02d:%02d", c.Hours, c.Minutes, c.Seconds)
}
