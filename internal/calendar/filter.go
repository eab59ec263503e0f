package calendar

import (
	"strings"
	"time"

	"schedcal/internal/datetime"
	"schedcal/internal/model"
)

// View is the calendar page being shown.
type View string

const (
	ViewWeek  View = "week"
	ViewMonth View = "month"
)

// ParseView maps a query value to a View; unknown values give month.
func ParseView(s string) View {
	if View(strings.ToLower(s)) == ViewWeek {
		return ViewWeek
	}
	return ViewMonth
}

// Navigate moves date one page forward (direction > 0) or back
// (direction < 0). Month paging pins the day to the 1st first so that
// Jan 31 + 1 month lands in February rather than March.
func Navigate(date time.Time, view View, direction int) time.Time {
	step := 1
	if direction < 0 {
		step = -1
	} else if direction == 0 {
		return date
	}
	if view == ViewWeek {
		return date.AddDate(0, 0, 7*step)
	}
	first := time.Date(date.Year(), date.Month(), 1, date.Hour(), date.Minute(), date.Second(), date.Nanosecond(), date.Location())
	return first.AddDate(0, step, 0)
}

// IsDateInRange reports start <= date <= end.
func IsDateInRange(date, start, end time.Time) bool {
	return !date.Before(start) && !date.After(end)
}

// EventsForDay returns the events whose Date is the calendar day of date.
func EventsForDay(events []model.Event, date time.Time) []model.Event {
	want := FormatDate(date, 0)
	out := make([]model.Event, 0)
	for _, ev := range events {
		if ev.Date == want {
			out = append(out, ev)
		}
	}
	return out
}

// Search keeps events whose title, description or location contains term,
// case-insensitively. An empty term keeps everything.
func Search(events []model.Event, term string) []model.Event {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if term == "" ||
			strings.Contains(strings.ToLower(ev.Title), term) ||
			strings.Contains(strings.ToLower(ev.Description), term) ||
			strings.Contains(strings.ToLower(ev.Location), term) {
			out = append(out, ev)
		}
	}
	return out
}

// FilterByView applies Search and then keeps events dated inside the week or
// month containing date. Events with an unparseable date are dropped.
func FilterByView(events []model.Event, term string, date time.Time, view View) []model.Event {
	start, end := viewBounds(date, view)
	matched := Search(events, term)
	out := make([]model.Event, 0, len(matched))
	for _, ev := range matched {
		d, ok := datetime.ParseDate(ev.Date, date.Location())
		if ok && IsDateInRange(d, start, end) {
			out = append(out, ev)
		}
	}
	return out
}

// viewBounds returns the first and last calendar day (at midnight) of the
// page showing date.
func viewBounds(date time.Time, view View) (time.Time, time.Time) {
	loc := date.Location()
	if view == ViewWeek {
		days := WeekDates(date)
		s, e := days[0], days[6]
		return time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, loc),
			time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, loc)
	}
	y, m := date.Year(), date.Month()
	return time.Date(y, m, 1, 0, 0, 0, 0, loc),
		time.Date(y, m, DaysInMonth(y, m), 0, 0, 0, 0, loc)
}
