package calendar

import (
	"fmt"
	"math"
	"time"
)

const oneDay = 24 * time.Hour

// ThursdayOfWeek returns the Thursday of the Sunday-first week containing
// date: date + (4 - weekday) days. The week is owned by the month (and
// year) its Thursday falls in.
func ThursdayOfWeek(date time.Time) time.Time {
	return date.AddDate(0, 0, int(time.Thursday)-int(date.Weekday()))
}

// FirstThursdayOfMonth returns the first Thursday on or after the 1st.
func FirstThursdayOfMonth(year int, month time.Month) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	offset := (int(time.Thursday) - int(first.Weekday()) + 7) % 7
	return time.Date(year, month, 1+offset, 0, 0, 0, 0, time.Local)
}

// CalculateWeekNumber counts whole weeks from firstThursday to
// targetThursday, 1-based. Targets before the anchor clamp to 1.
// Only the calendar dates matter, so DST shifts and time of day are ignored.
func CalculateWeekNumber(targetThursday, firstThursday time.Time) int {
	diff := civilDay(targetThursday).Sub(civilDay(firstThursday))
	n := int(math.Floor(float64(diff)/float64(7*oneDay))) + 1
	if n < 1 {
		return 1
	}
	return n
}

// FormatWeek renders "2025년 7월 2주", labeled by the month of the week's
// Thursday.
func FormatWeek(date time.Time) string {
	th := ThursdayOfWeek(date)
	first := FirstThursdayOfMonth(th.Year(), th.Month())
	return fmt.Sprintf("%d년 %d월 %d주", th.Year(), int(th.Month()), CalculateWeekNumber(th, first))
}

func civilDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
