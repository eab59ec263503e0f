package recurrence

import (
	"time"

	"github.com/teambition/rrule-go"

	"schedcal/internal/datetime"
	appLog "schedcal/internal/log"
	"schedcal/internal/model"
)

const (
	defaultMaxOccurrencesPerEvent = 5000
)

// ExpandConfig controls how recurring events are materialized.
type ExpandConfig struct {
	// Location is the zone event dates/times are interpreted in.
	// If nil, time.Local is used.
	Location *time.Location

	// RangeStart / RangeEnd bound the window; an occurrence is kept when its
	// [start, end) span touches the window.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrences caps a single series. If zero,
	// defaultMaxOccurrencesPerEvent is used.
	MaxOccurrences int
}

// ExpandResult is the flattened list of occurrences plus the IDs of series
// that hit the cap.
type ExpandResult struct {
	Occurrences []model.Event
	Truncated   []string
}

var frequencies = map[model.RepeatType]rrule.Frequency{
	model.RepeatDaily:   rrule.DAILY,
	model.RepeatWeekly:  rrule.WEEKLY,
	model.RepeatMonthly: rrule.MONTHLY,
	model.RepeatYearly:  rrule.YEARLY,
}

// Option builds the rrule options for ev. ok is false for non-recurring events
// and for events whose date/start time cannot be parsed.
//
// Monthly and yearly rules follow RFC 5545: a series anchored on the 31st
// skips shorter months, one anchored on Feb 29 only fires in leap years.
func Option(ev model.Event, loc *time.Location) (opt rrule.ROption, ok bool) {
	freq, known := frequencies[ev.Repeat.Type]
	if !known {
		return rrule.ROption{}, false
	}
	start := datetime.EventStart(ev, loc)
	if !start.Valid() {
		return rrule.ROption{}, false
	}

	interval := ev.Repeat.Interval
	if interval < 1 {
		interval = 1
	}
	opt = rrule.ROption{
		Freq:     freq,
		Dtstart:  start.Time(),
		Interval: interval,
	}
	if until, ok := endOfDay(ev.Repeat.EndDate, loc); ok {
		opt.Until = until
	}
	return opt, true
}

// RRule renders ev's repeat rule as an RFC 5545 RRULE value
// ("FREQ=WEEKLY;INTERVAL=2;UNTIL=..."), or "" when ev does not repeat.
func RRule(ev model.Event, loc *time.Location) string {
	opt, ok := Option(ev, loc)
	if !ok {
		return ""
	}
	opt.Dtstart = time.Time{}
	return opt.RRuleString()
}

// ExpandAll expands every event into concrete occurrences inside the window.
// Non-recurring events are passed through when they intersect the window.
// Occurrences keep their series ID, so overlap checks still exclude an event
// from conflicting with itself.
func ExpandAll(events []model.Event, cfg ExpandConfig) ExpandResult {
	var result ExpandResult
	cfg = normalize(cfg)

	for _, ev := range events {
		occ, hitCap := expand(ev, cfg)
		if hitCap {
			result.Truncated = append(result.Truncated, ev.ID)
			appLog.Warn("recurrence: truncated occurrences due to cap",
				"id", ev.ID,
				"cap", cfg.MaxOccurrences,
			)
		}
		result.Occurrences = append(result.Occurrences, occ...)
	}
	return result
}

// Expand is ExpandAll for a single event.
func Expand(ev model.Event, cfg ExpandConfig) []model.Event {
	return ExpandAll([]model.Event{ev}, cfg).Occurrences
}

func normalize(cfg ExpandConfig) ExpandConfig {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MaxOccurrences <= 0 {
		cfg.MaxOccurrences = defaultMaxOccurrencesPerEvent
	}
	return cfg
}

func expand(ev model.Event, cfg ExpandConfig) ([]model.Event, bool) {
	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return nil, false
	}
	rng := datetime.EventRangeIn(ev, cfg.Location)
	if !rng.Start.Valid() || !rng.End.Valid() {
		appLog.Debug("recurrence: skipping event with unparseable time", "id", ev.ID, "date", ev.Date)
		return nil, false
	}
	dur := rng.End.Time().Sub(rng.Start.Time())

	opt, ok := Option(ev, cfg.Location)
	if !ok {
		if intersects(rng.Start.Time(), rng.End.Time(), cfg) {
			return []model.Event{ev}, false
		}
		return nil, false
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		appLog.Error("recurrence: invalid rule", err, "id", ev.ID, "repeat", ev.Repeat.Type)
		return nil, false
	}

	// Widen the lower bound by the duration so an occurrence that started
	// before the window but is still running is included.
	lower := cfg.RangeStart.In(cfg.Location).Add(-dur)
	upper := cfg.RangeEnd.In(cfg.Location)
	starts := r.Between(lower, upper, true)

	hitCap := false
	if len(starts) > cfg.MaxOccurrences {
		starts = starts[:cfg.MaxOccurrences]
		hitCap = true
	}

	out := make([]model.Event, 0, len(starts))
	for _, s := range starts {
		if !intersects(s, s.Add(dur), cfg) {
			continue
		}
		occ := ev
		occ.Date = s.In(cfg.Location).Format(datetime.DateLayout)
		out = append(out, occ)
	}
	return out, hitCap
}

// intersects uses inclusive bounds: an occurrence that ends exactly at
// RangeStart is still considered part of the window.
func intersects(start, end time.Time, cfg ExpandConfig) bool {
	if end.Before(cfg.RangeStart) {
		return false
	}
	if cfg.RangeEnd.Before(start) {
		return false
	}
	return true
}

func endOfDay(date string, loc *time.Location) (time.Time, bool) {
	if date == "" {
		return time.Time{}, false
	}
	in := datetime.ParseDateTimeIn(date, "23:59", loc)
	if !in.Valid() {
		return time.Time{}, false
	}
	return in.Time().Add(59 * time.Second), true
}
