package model

// RepeatType is the recurrence frequency of an event.
type RepeatType string

const (
	RepeatNone    RepeatType = "none"
	RepeatDaily   RepeatType = "daily"
	RepeatWeekly  RepeatType = "weekly"
	RepeatMonthly RepeatType = "monthly"
	RepeatYearly  RepeatType = "yearly"
)

// Valid reports whether t is one of the known repeat types.
func (t RepeatType) Valid() bool {
	switch t {
	case RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly:
		return true
	}
	return false
}

// Repeat describes how an event recurs. An empty Type is treated as none.
type Repeat struct {
	Type     RepeatType `json:"type" yaml:"type" validate:"omitempty,repeattype"`
	Interval int        `json:"interval" yaml:"interval" validate:"omitempty,min=1"`
	// EndDate is optional, same "YYYY-MM-DD" form as Event.Date.
	EndDate string `json:"endDate,omitempty" yaml:"end_date,omitempty" validate:"omitempty,caldate"`
}

// Recurring reports whether the repeat rule produces more than one occurrence.
func (r Repeat) Recurring() bool {
	return r.Type != "" && r.Type != RepeatNone
}

// Event is the unit every calendar operation works on.
//
// Date is "YYYY-MM-DD", StartTime/EndTime are 24-hour "HH:MM". ID is empty for
// drafts that have not been stored yet. Title, Description, Location and
// Category are carried along untouched by the date arithmetic.
type Event struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title" validate:"required"`
	Date        string `json:"date" validate:"required,caldate"`
	StartTime   string `json:"startTime" validate:"required,clock"`
	EndTime     string `json:"endTime" validate:"required,clock"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	Repeat      Repeat `json:"repeat"`
	// NotificationTime is the lead time in minutes; 0 disables notifications.
	NotificationTime int `json:"notificationTime" validate:"min=0"`
}

// DayCell is one slot of a month grid. Day 0 / empty strings mean "none":
// a blank cell outside the month, or a day without a holiday.
type DayCell struct {
	Day        int    `json:"day,omitempty"`
	DateString string `json:"dateString,omitempty"`
	Holiday    string `json:"holiday,omitempty"`
}

// Blank reports whether the cell lies outside the month.
func (c DayCell) Blank() bool {
	return c.Day == 0
}
