// Package datetime turns the "YYYY-MM-DD" / "HH:MM" strings carried by events
// into comparable instants.
//
// Malformed input never fails loudly: it yields an invalid Instant, and every
// ordering predicate involving an invalid Instant reports false. Callers that
// need a hard error validate beforehand (see internal/form).
package datetime

import (
	"regexp"
	"time"

	"schedcal/internal/model"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

var (
	dateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	clockRe = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// Instant is a point in time that may be invalid. The zero value is invalid.
type Instant struct {
	t     time.Time
	valid bool
}

// TimeRange is the [Start, End) span of a single event.
type TimeRange struct {
	Start Instant
	End   Instant
}

// At wraps an already-known time.
func At(t time.Time) Instant {
	return Instant{t: t, valid: true}
}

// Invalid returns the sentinel produced for unparseable input.
func Invalid() Instant {
	return Instant{}
}

func (i Instant) Valid() bool { return i.valid }

// Time returns the underlying time; the zero time for an invalid Instant.
func (i Instant) Time() time.Time { return i.t }

func (i Instant) Before(o Instant) bool {
	return i.valid && o.valid && i.t.Before(o.t)
}

func (i Instant) After(o Instant) bool {
	return i.valid && o.valid && i.t.After(o.t)
}

func (i Instant) Equal(o Instant) bool {
	return i.valid && o.valid && i.t.Equal(o.t)
}

func (i Instant) BeforeOrEqual(o Instant) bool {
	return i.valid && o.valid && !i.t.After(o.t)
}

// Add shifts a valid Instant; an invalid one stays invalid.
func (i Instant) Add(d time.Duration) Instant {
	if !i.valid {
		return i
	}
	return Instant{t: i.t.Add(d), valid: true}
}

func (i Instant) String() string {
	if !i.valid {
		return "Invalid Date"
	}
	return i.t.Format(time.RFC3339)
}

// ParseDateTime parses date+clock as wall-clock time in time.Local.
func ParseDateTime(date, clock string) Instant {
	return ParseDateTimeIn(date, clock, time.Local)
}

// ParseDateTimeIn parses date+clock as wall-clock time in loc (time.Local if
// nil). Strings not matching YYYY-MM-DD / HH:MM, or naming impossible values
// such as 2025-02-30 or 24:10, give an invalid Instant.
func ParseDateTimeIn(date, clock string, loc *time.Location) Instant {
	if !dateRe.MatchString(date) || !clockRe.MatchString(clock) {
		return Invalid()
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, loc)
	if err != nil {
		return Invalid()
	}
	return At(t)
}

// ParseDate parses a bare "YYYY-MM-DD" as midnight in loc.
func ParseDate(date string, loc *time.Location) (time.Time, bool) {
	in := ParseDateTimeIn(date, "00:00", loc)
	return in.Time(), in.Valid()
}

// EventRange combines the event's date with its start and end times.
func EventRange(ev model.Event) TimeRange {
	return EventRangeIn(ev, time.Local)
}

func EventRangeIn(ev model.Event, loc *time.Location) TimeRange {
	return TimeRange{
		Start: ParseDateTimeIn(ev.Date, ev.StartTime, loc),
		End:   ParseDateTimeIn(ev.Date, ev.EndTime, loc),
	}
}

// EventStart is the start instant of ev.
func EventStart(ev model.Event, loc *time.Location) Instant {
	return ParseDateTimeIn(ev.Date, ev.StartTime, loc)
}
