// Package clock provides an injectable time source pinned to a civil time zone.
// This is part of the platform layer and contains no business logic.
package clock

import (
	"fmt"
	"strings"
	"time"

	// Embedded zone database so civil-day arithmetic does not depend on the host.
	_ "time/tzdata"
)

// DefaultZone is the civil calendar every "day" boundary is computed in.
const DefaultZone = "America/Sao_Paulo"

// Clock is the time source handed to every component that needs "now".
type Clock interface {
	// Now returns the current instant expressed in the clock's zone.
	Now() time.Time
	// Location returns the civil zone the clock reports in.
	Location() *time.Location
}

// Zoned reads the wall clock and reports it in a fixed zone.
type Zoned struct {
	loc *time.Location
}

// NewZoned returns a system clock reporting in loc. A nil loc means UTC.
func NewZoned(loc *time.Location) *Zoned {
	if loc == nil {
		loc = time.UTC
	}
	return &Zoned{loc: loc}
}

func (z *Zoned) Now() time.Time {
	return time.Now().In(z.loc)
}

func (z *Zoned) Location() *time.Location {
	return z.loc
}

// Fixed always reports the same instant. Used for tests and for pinning one
// instant across a batch evaluation.
type Fixed struct {
	at  time.Time
	loc *time.Location
}

// NewFixed returns a clock frozen at the given instant, reported in loc.
func NewFixed(at time.Time, loc *time.Location) *Fixed {
	if loc == nil {
		loc = time.UTC
	}
	return &Fixed{at: at.In(loc), loc: loc}
}

func (f *Fixed) Now() time.Time {
	return f.at
}

func (f *Fixed) Location() *time.Location {
	return f.loc
}

// LoadZone resolves an IANA zone name, falling back to DefaultZone for blanks.
func LoadZone(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load zone %q: %w", name, err)
	}
	return loc, nil
}

// StartOfDay returns local midnight of t in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DayIndex returns a monotonically increasing civil-day number for t in loc.
// Two instants on the same calendar date in loc share the same index.
func DayIndex(t time.Time, loc *time.Location) int64 {
	local := t.In(loc)
	y, m, d := local.Date()
	// Anchoring the civil date in UTC removes DST-length days from the count.
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// CalendarDaysBetween returns the signed number of civil-day boundaries from
// "from" to "to" in loc: positive when to falls on a later date.
func CalendarDaysBetween(to, from time.Time, loc *time.Location) int {
	return int(DayIndex(to, loc) - DayIndex(from, loc))
}
