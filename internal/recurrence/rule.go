package recurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"schedcal/internal/datetime"
	"schedcal/internal/model"
)

// FromRRule maps an RRULE value back to a Repeat. Only FREQ, INTERVAL and
// UNTIL are representable; sub-daily frequencies are rejected. COUNT is
// converted to an end date by walking the rule from dtstart.
func FromRRule(value string, dtstart time.Time, loc *time.Location) (model.Repeat, error) {
	if loc == nil {
		loc = time.Local
	}
	opt, err := rrule.StrToROptionInLocation(value, loc)
	if err != nil {
		return model.Repeat{}, fmt.Errorf("recurrence: parse rrule %q: %w", value, err)
	}

	var rt model.RepeatType
	for k, f := range frequencies {
		if f == opt.Freq {
			rt = k
			break
		}
	}
	if rt == "" {
		return model.Repeat{}, fmt.Errorf("recurrence: unsupported frequency %s", opt.Freq)
	}

	rep := model.Repeat{Type: rt, Interval: opt.Interval}
	if rep.Interval < 1 {
		rep.Interval = 1
	}

	switch {
	case !opt.Until.IsZero():
		rep.EndDate = opt.Until.In(loc).Format(datetime.DateLayout)
	case opt.Count > 0 && !dtstart.IsZero():
		opt.Dtstart = dtstart
		r, err := rrule.NewRRule(*opt)
		if err != nil {
			return model.Repeat{}, fmt.Errorf("recurrence: build rrule: %w", err)
		}
		if all := r.All(); len(all) > 0 {
			rep.EndDate = all[len(all)-1].In(loc).Format(datetime.DateLayout)
		}
	}
	return rep, nil
}
