package notify

import (
	"strings"
	"time"

	"schedcal/internal/model"
	"schedcal/internal/recurrence"
)

const keySep = "@"

// Key identifies one occurrence for the notified set. A recurring series
// alerts once per date, so its key carries the date.
func Key(ev model.Event) string {
	if ev.ID == "" || !ev.Repeat.Recurring() {
		return ev.ID
	}
	return ev.ID + keySep + ev.Date
}

// Occurrences expands recurring events into the occurrences that can alert
// around now: those starting within a day before now up to a day past the
// longest lead time. Non-recurring events pass through unchanged.
func Occurrences(events []model.Event, now time.Time) []model.Event {
	maxLead := 0
	for _, ev := range events {
		if ev.Repeat.Recurring() && ev.NotificationTime > maxLead {
			maxLead = ev.NotificationTime
		}
	}
	cfg := recurrence.ExpandConfig{
		Location:   now.Location(),
		RangeStart: now.AddDate(0, 0, -1),
		RangeEnd:   now.Add(time.Duration(maxLead)*time.Minute).AddDate(0, 0, 1),
	}

	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if !ev.Repeat.Recurring() {
			out = append(out, ev)
			continue
		}
		if ev.NotificationTime <= 0 {
			continue
		}
		out = append(out, recurrence.Expand(ev, cfg)...)
	}
	return out
}

func seriesOf(key string) string {
	if i := strings.LastIndex(key, keySep); i >= 0 {
		return key[:i]
	}
	return key
}

// occurrenceDate returns the date part of an occurrence key.
func occurrenceDate(key string) (string, bool) {
	i := strings.LastIndex(key, keySep)
	if i < 0 {
		return "", false
	}
	return key[i+len(keySep):], true
}
