package ics

import (
	"bytes"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"schedcal/internal/datetime"
	appLog "schedcal/internal/log"
	"schedcal/internal/model"
	"schedcal/internal/recurrence"
)

// Import converts every VEVENT in an ICS payload into an Event whose date and
// times are expressed in loc.
//
//   - All-day events become 00:00–23:59 on their start date.
//   - An end on a later day is clamped to 23:59 of the start date.
//   - RRULE FREQ/INTERVAL/UNTIL/COUNT map onto Repeat; other parts are dropped.
//   - The first VALARM with a TRIGGER at or before the start sets
//     NotificationTime.
//
// VEVENTs that cannot be converted are logged and skipped. Returned events
// have no ID; the store assigns one.
func Import(body []byte, loc *time.Location) ([]model.Event, error) {
	if len(body) == 0 {
		return nil, errors.New("ics: empty body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	events := make([]model.Event, 0)
	for _, ve := range cal.Events() {
		ev, perr := convertVEvent(ve, loc)
		if perr != nil {
			appLog.Warn("ics vevent skipped", "err", perr, "uid", ve.Id())
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("ics import completed", "event_count", len(events))
	return events, nil
}

func convertVEvent(ve *ical.VEvent, loc *time.Location) (model.Event, error) {
	var out model.Event

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyCategories); p != nil {
		out.Category = strings.TrimSpace(strings.SplitN(p.Value, ",", 2)[0])
	}
	if out.Title == "" {
		out.Title = "(제목 없음)"
	}

	var start time.Time
	if isAllDay(ve) {
		day, err := ve.GetAllDayStartAt()
		if err != nil {
			return out, err
		}
		// A DATE value has no zone; keep the calendar day as written.
		start = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
		out.Date = start.Format(datetime.DateLayout)
		out.StartTime, out.EndTime = "00:00", "23:59"
	} else {
		t, err := ve.GetStartAt()
		if err != nil {
			return out, err
		}
		start = inLocation(t, ve.GetProperty(ical.ComponentPropertyDtStart), loc)

		end := start.Add(time.Hour)
		if t, err := ve.GetEndAt(); err == nil {
			end = inLocation(t, ve.GetProperty(ical.ComponentPropertyDtEnd), loc)
		}
		if end.Before(start) {
			end = start
		}
		out.Date = start.Format(datetime.DateLayout)
		out.StartTime = start.Format(datetime.ClockLayout)
		if end.Format(datetime.DateLayout) != out.Date {
			out.EndTime = "23:59"
		} else {
			out.EndTime = end.Format(datetime.ClockLayout)
		}
	}

	out.Repeat = model.Repeat{Type: model.RepeatNone, Interval: 1}
	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil && p.Value != "" {
		rep, rerr := recurrence.FromRRule(p.Value, start, loc)
		if rerr != nil {
			appLog.Warn("ics rrule ignored", "err", rerr, "uid", ve.Id())
		} else {
			out.Repeat = rep
		}
	}

	for _, a := range ve.Alarms() {
		p := a.GetProperty(ical.ComponentPropertyTrigger)
		if p == nil {
			continue
		}
		if minutes, ok := parseTrigger(p.Value); ok {
			out.NotificationTime = minutes
			break
		}
	}

	return out, nil
}

// inLocation converts t to loc. Floating values (no "Z", no TZID) are read
// as wall-clock time in loc rather than in the process zone.
func inLocation(t time.Time, p *ical.IANAProperty, loc *time.Location) time.Time {
	if p != nil && !strings.HasSuffix(p.Value, "Z") {
		if _, ok := p.ICalParameters["TZID"]; !ok {
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
		}
	}
	return t.In(loc)
}

// isAllDay follows DTSTART: VALUE=DATE or a value without a time part.
func isAllDay(ve *ical.VEvent) bool {
	p := ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil {
		return false
	}
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

var triggerRe = regexp.MustCompile(`^(-?)P(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseTrigger reads a relative TRIGGER such as "-PT15M" or "-P1DT2H" and
// returns the lead time in whole minutes. Triggers after the start are
// rejected.
func parseTrigger(v string) (int, bool) {
	m := triggerRe.FindStringSubmatch(strings.TrimSpace(v))
	if m == nil {
		return 0, false
	}
	num := func(s string) int {
		n, _ := strconv.Atoi(s)
		return n
	}
	minutes := num(m[2])*7*24*60 + num(m[3])*24*60 + num(m[4])*60 + num(m[5]) + num(m[6])/60
	if m[1] != "-" && minutes != 0 {
		return 0, false
	}
	return minutes, true
}
