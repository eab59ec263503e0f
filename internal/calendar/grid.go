// Package calendar builds the month and week views: the Sunday-first day
// grid, the seven dates of a week, Korean month/week labels and the
// ISO-style week-of-month number pinned to each week's Thursday.
//
// Everything here is pure; inputs are never modified and results are freshly
// allocated on each call.
package calendar

import (
	"fmt"
	"time"

	"schedcal/internal/model"
)

// Week is one row of a month grid, Sunday first. 0 marks a blank cell.
type Week [7]int

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// WeeksAtMonth lays out the month containing date. Day d goes to column
// (weekday of the 1st + d - 1) % 7; a row is closed on Saturday or after the
// last day, so the result has the minimum 4 to 6 rows.
func WeeksAtMonth(date time.Time) []Week {
	year, month := date.Year(), date.Month()
	firstWeekday := int(time.Date(year, month, 1, 0, 0, 0, 0, date.Location()).Weekday())
	n := DaysInMonth(year, month)

	weeks := make([]Week, 0, 6)
	var cur Week
	for d := 1; d <= n; d++ {
		idx := (firstWeekday + d - 1) % 7
		cur[idx] = d
		if idx == 6 || d == n {
			weeks = append(weeks, cur)
			cur = Week{}
		}
	}
	return weeks
}

// WeekDates returns Sunday..Saturday of the week containing date. The time of
// day is preserved; month and year boundaries roll over normally.
func WeekDates(date time.Time) [7]time.Time {
	var out [7]time.Time
	wd := int(date.Weekday())
	for i := range out {
		out[i] = date.AddDate(0, 0, i-wd)
	}
	return out
}

// MonthCells is WeeksAtMonth with each day resolved to its date string and
// holiday name (looked up in holidays by "YYYY-MM-DD").
func MonthCells(date time.Time, holidays map[string]string) [][]model.DayCell {
	weeks := WeeksAtMonth(date)
	out := make([][]model.DayCell, len(weeks))
	for i, w := range weeks {
		row := make([]model.DayCell, 7)
		for j, d := range w {
			if d == 0 {
				continue
			}
			ds := FormatDate(date, d)
			row[j] = model.DayCell{Day: d, DateString: ds, Holiday: holidays[ds]}
		}
		out[i] = row
	}
	return out
}

// FormatMonth renders "2025년 7월".
func FormatMonth(date time.Time) string {
	return fmt.Sprintf("%d년 %d월", date.Year(), int(date.Month()))
}

// FormatDate renders base's year and month with the given day as
// "YYYY-MM-DD". day 0 means base's own day. The day is not range-checked.
func FormatDate(base time.Time, day int) string {
	if day == 0 {
		day = base.Day()
	}
	return fmt.Sprintf("%04d-%02d-%02d", base.Year(), int(base.Month()), day)
}
