package overlap

import (
	"time"

	"schedcal/internal/datetime"
	"schedcal/internal/model"
	"schedcal/internal/recurrence"
)

// IsOverlapping reports whether a and b share any time, treating each event as
// the half-open span [start, end). Touching endpoints do not overlap, and an
// event with an unparseable date or time never overlaps anything.
func IsOverlapping(a, b model.Event) bool {
	return IsOverlappingIn(a, b, time.Local)
}

func IsOverlappingIn(a, b model.Event, loc *time.Location) bool {
	return rangesOverlap(datetime.EventRangeIn(a, loc), datetime.EventRangeIn(b, loc))
}

func rangesOverlap(a, b datetime.TimeRange) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// FindOverlappingEvents returns the events in existing that overlap candidate,
// in their original order. An event sharing candidate's ID is skipped so that
// editing an event does not conflict with its stored version; drafts (empty
// ID) are compared against everything.
func FindOverlappingEvents(candidate model.Event, existing []model.Event) []model.Event {
	return FindOverlappingEventsIn(candidate, existing, time.Local)
}

func FindOverlappingEventsIn(candidate model.Event, existing []model.Event, loc *time.Location) []model.Event {
	out := make([]model.Event, 0)
	cr := datetime.EventRangeIn(candidate, loc)
	for _, ev := range existing {
		if sameEvent(candidate, ev) {
			continue
		}
		if rangesOverlap(cr, datetime.EventRangeIn(ev, loc)) {
			out = append(out, ev)
		}
	}
	return out
}

func sameEvent(a, b model.Event) bool {
	return a.ID != "" && a.ID == b.ID
}

// Window bounds the occurrence expansion used by FindOverlappingOccurrences.
type Window struct {
	Location *time.Location
	Start    time.Time
	End      time.Time
}

// FindOverlappingOccurrences is FindOverlappingEvents for recurring events:
// candidate and existing events are both expanded inside w, and every stored
// event with at least one clashing occurrence is reported once, in the order
// of existing.
func FindOverlappingOccurrences(candidate model.Event, existing []model.Event, w Window) []model.Event {
	cfg := recurrence.ExpandConfig{
		Location:   w.Location,
		RangeStart: w.Start,
		RangeEnd:   w.End,
	}
	mine := recurrence.ExpandAll([]model.Event{candidate}, cfg).Occurrences

	out := make([]model.Event, 0)
	for _, ev := range existing {
		if sameEvent(candidate, ev) {
			continue
		}
		theirs := recurrence.ExpandAll([]model.Event{ev}, cfg).Occurrences
		if anyClash(mine, theirs, cfg.Location) {
			out = append(out, ev)
		}
	}
	return out
}

func anyClash(a, b []model.Event, loc *time.Location) bool {
	for _, x := range a {
		xr := datetime.EventRangeIn(x, loc)
		for _, y := range b {
			if rangesOverlap(xr, datetime.EventRangeIn(y, loc)) {
				return true
			}
		}
	}
	return false
}
