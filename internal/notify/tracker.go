package notify

import (
	"sync"
	"time"

	"schedcal/internal/datetime"
	"schedcal/internal/model"
)

// Notification is one alert produced by a poll.
type Notification struct {
	EventID string    `json:"id"`
	Date    string    `json:"date"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Tracker owns the notification state that UpcomingEvents itself never keeps:
// which IDs were already notified and which alerts are still on screen. The
// cron poller and the HTTP handlers share one Tracker.
type Tracker struct {
	mu       sync.Mutex
	notified IDSet
	active   []Notification
}

func NewTracker() *Tracker {
	return &Tracker{notified: NewIDSet()}
}

// Poll runs UpcomingEvents over the occurrences around now, records every
// hit as notified and returns only the new alerts. Recurring series are
// tracked per occurrence (see Key), so UpcomingEvents sees only candidates
// whose key is still unseen.
func (t *Tracker) Poll(now time.Time, events []model.Event) []Notification {
	candidates := Occurrences(events, now)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.prune(now, events)

	unseen := make([]model.Event, 0, len(candidates))
	for _, ev := range candidates {
		if !t.notified.Has(Key(ev)) {
			unseen = append(unseen, ev)
		}
	}

	upcoming := UpcomingEvents(unseen, now, NewIDSet())
	fresh := make([]Notification, 0, len(upcoming))
	for _, ev := range upcoming {
		n := Notification{EventID: ev.ID, Date: ev.Date, Message: Message(ev), At: now}
		fresh = append(fresh, n)
		if k := Key(ev); k != "" {
			t.notified[k] = struct{}{}
		}
	}
	t.active = append(t.active, fresh...)
	return fresh
}

// prune drops notified keys that can never alert again: occurrences dated
// before the day preceding now, and plain IDs whose event is gone or lies
// before that day. Must be called with t.mu held.
func (t *Tracker) prune(now time.Time, events []model.Event) {
	cutoff := now.AddDate(0, 0, -1).Format(datetime.DateLayout)
	dates := make(map[string]string, len(events))
	for _, ev := range events {
		dates[ev.ID] = ev.Date
	}
	for k := range t.notified {
		date, ok := occurrenceDate(k)
		if !ok {
			d, live := dates[k]
			if live && d >= cutoff {
				continue
			}
		} else if date >= cutoff {
			continue
		}
		delete(t.notified, k)
	}
}

// Active returns a copy of the alerts not yet dismissed.
func (t *Tracker) Active() []Notification {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Notification, len(t.active))
	copy(out, t.active)
	return out
}

// Dismiss removes the alert at index i. It reports false for an index out
// of range.
func (t *Tracker) Dismiss(i int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i < 0 || i >= len(t.active) {
		return false
	}
	t.active = append(t.active[:i], t.active[i+1:]...)
	return true
}

// Forget clears the notified marks for id and all of its occurrences, e.g.
// after the event was rescheduled, so it can alert again.
func (t *Tracker) Forget(id string) {
	if id == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for k := range t.notified {
		if seriesOf(k) == id {
			delete(t.notified, k)
		}
	}
}

// Notified reports whether key (see Key) has already produced an alert.
func (t *Tracker) Notified(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.notified.Has(key)
}
