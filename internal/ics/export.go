package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"schedcal/internal/datetime"
	appLog "schedcal/internal/log"
	"schedcal/internal/model"
	"schedcal/internal/notify"
	"schedcal/internal/recurrence"
)

const prodID = "schedcal"

// Export renders events as a VCALENDAR. Times are written in UTC; repeat
// rules become RRULE and a positive NotificationTime becomes a DISPLAY alarm.
// Events whose date or times cannot be parsed in loc are skipped.
func Export(events []model.Event, loc *time.Location, stamp time.Time) string {
	if loc == nil {
		loc = time.Local
	}

	cal := ical.NewCalendarFor(prodID)
	cal.SetMethod(ical.MethodPublish)

	skipped := 0
	for _, ev := range events {
		r := datetime.EventRangeIn(ev, loc)
		if !r.Start.Valid() || !r.End.Valid() {
			skipped++
			continue
		}

		id := ev.ID
		if id == "" {
			id = uuid.New().String()
		}
		ve := cal.AddEvent(id + "@" + prodID)
		ve.SetDtStampTime(stamp)
		ve.SetStartAt(r.Start.Time())
		ve.SetEndAt(r.End.Time())
		ve.SetSummary(ev.Title)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if ev.Category != "" {
			ve.AddCategory(ev.Category)
		}
		if rule := recurrence.RRule(ev, loc); rule != "" {
			ve.AddRrule(rule)
		}
		if ev.NotificationTime > 0 {
			a := ve.AddAlarm()
			a.SetAction(ical.ActionDisplay)
			a.SetTrigger(fmt.Sprintf("-PT%dM", ev.NotificationTime))
			a.SetProperty(ical.ComponentPropertyDescription, notify.Message(ev))
		}
	}

	if skipped > 0 {
		appLog.Warn("ics export skipped events", "skipped", skipped)
	}
	return cal.Serialize()
}
