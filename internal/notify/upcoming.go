package notify

import (
	"fmt"
	"time"

	"schedcal/internal/datetime"
	"schedcal/internal/model"
)

// IDSet is a set of event IDs that have already been notified.
type IDSet map[string]struct{}

func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// UpcomingEvents returns, in input order, the events whose notification
// window [start - NotificationTime, start) contains now. Events with
// NotificationTime 0, events whose ID is in notified and events whose
// start cannot be parsed are skipped. Event dates are read in now's location.
func UpcomingEvents(events []model.Event, now time.Time, notified IDSet) []model.Event {
	out := make([]model.Event, 0)
	at := datetime.At(now)
	for _, ev := range events {
		if ev.NotificationTime <= 0 || notified.Has(ev.ID) {
			continue
		}
		start := datetime.EventStart(ev, now.Location())
		notifyAt := start.Add(-time.Duration(ev.NotificationTime) * time.Minute)
		if notifyAt.BeforeOrEqual(at) && at.Before(start) {
			out = append(out, ev)
		}
	}
	return out
}

// Message is the text shown for an upcoming event.
func Message(ev model.Event) string {
	return fmt.Sprintf("%d분 후 %s 일정이 시작됩니다.", ev.NotificationTime, ev.Title)
}

// Option is one choice of notification lead time offered by the event form.
type Option struct {
	Minutes int    `json:"value"`
	Label   string `json:"label"`
}

// Options lists the lead times a user can pick.
func Options() []Option {
	return []Option{
		{Minutes: 1, Label: "1분 전"},
		{Minutes: 10, Label: "10분 전"},
		{Minutes: 60, Label: "1시간 전"},
		{Minutes: 120, Label: "2시간 전"},
		{Minutes: 1440, Label: "1일 전"},
	}
}
