// Package aging computes how urgent a lead's next contact is from its last
// interaction, its scheduled follow-up and its pipeline stage.
//
// All day arithmetic happens on civil days in the engine's zone, so "today",
// "tomorrow" and "N days ago" mean the same thing for every user regardless
// of where their browser runs. The computation is pure: the only input
// besides the lead's fields is the injected clock.
package aging

import (
	"math"
	"time"

	"bighome_hub/platform/clock"
)

const (
	// defaultWindowDays is how long a lead without a follow-up may sit idle
	// before it is overdue.
	defaultWindowDays = 5

	// tomorrowPercentage is the fixed early-warning step for a follow-up due
	// on the next civil day.
	tomorrowPercentage = 80

	// distantCeiling keeps follow-ups more than a day away out of the
	// critical band.
	distantCeiling = 70

	// anomalyPercentage is used when the follow-up is scheduled on or before
	// the day of the last interaction.
	anomalyPercentage = 80
)

// Input is what the engine needs from a lead. Nil fields are absent.
type Input struct {
	LastInteractionAt   *time.Time
	FollowupScheduledAt *time.Time
	Stage               *string
}

// Result is the urgency of one lead at one instant.
type Result struct {
	Percentage int    `json:"percentage"`
	Color      Color  `json:"color"`
	Label      string `json:"label"`
	Band       Band   `json:"band"`
	DaysDiff   int    `json:"daysDiff"`
	IsOverdue  bool   `json:"isOverdue"`
}

// NewResult is returned for leads whose stage does not age.
var NewResult = Result{
	Percentage: 0,
	Color:      ColorGreen,
	Label:      LabelNew,
	Band:       BandNew,
	DaysDiff:   0,
	IsOverdue:  false,
}

// Engine evaluates aging against an injected clock.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	clock clock.Clock
}

// NewEngine returns an engine that reads "now" and the civil zone from c.
func NewEngine(c clock.Clock) *Engine {
	return &Engine{clock: c}
}

// Location is the civil zone day boundaries are computed in.
func (e *Engine) Location() *time.Location {
	return e.clock.Location()
}

// Now is the engine's current instant.
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// Compute evaluates in at the clock's current instant.
func (e *Engine) Compute(in Input) Result {
	return e.ComputeAt(in, e.clock.Now())
}

// ComputeAt evaluates in as if the current instant were now. Batch callers
// pin one instant so every row of a page is judged against the same "today".
func (e *Engine) ComputeAt(in Input, now time.Time) Result {
	if in.Stage == nil || !QualifiesForAging(*in.Stage) {
		return NewResult
	}

	loc := e.clock.Location()

	lastInteraction := now
	if in.LastInteractionAt != nil {
		lastInteraction = *in.LastInteractionAt
	}

	daysSinceInteraction := clock.CalendarDaysBetween(now, lastInteraction, loc)

	var (
		percentage float64
		overdue    bool
	)

	if in.FollowupScheduledAt != nil {
		followup := *in.FollowupScheduledAt
		daysUntilFollowup := clock.CalendarDaysBetween(followup, now, loc)

		switch {
		case daysUntilFollowup <= 0:
			percentage = 100
			overdue = now.After(followup) || clock.DayIndex(now, loc) > clock.DayIndex(followup, loc)
		case daysUntilFollowup == 1:
			percentage = tomorrowPercentage
		default:
			window := clock.CalendarDaysBetween(followup, lastInteraction, loc)
			if window <= 0 {
				percentage = anomalyPercentage
			} else {
				percentage = math.Min(float64(daysSinceInteraction)/float64(window)*100, distantCeiling)
			}
		}
	} else {
		if daysSinceInteraction >= defaultWindowDays {
			percentage = 100
			overdue = true
		} else {
			percentage = float64(daysSinceInteraction) / defaultWindowDays * 100
		}
	}

	pct := normalize(percentage)
	color, label, band := classify(pct)

	return Result{
		Percentage: pct,
		Color:      color,
		Label:      label,
		Band:       band,
		DaysDiff:   max(0, daysSinceInteraction),
		IsOverdue:  overdue,
	}
}

// normalize maps NaN to 0, clamps to [0,100] and rounds half away from zero.
func normalize(p float64) int {
	if math.IsNaN(p) {
		return 0
	}
	p = math.Max(0, math.Min(100, p))
	return int(math.Round(p))
}
