package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepeatTypeValid(t *testing.T) {
	for _, rt := range []RepeatType{RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly} {
		assert.True(t, rt.Valid(), rt)
	}
	assert.False(t, RepeatType("hourly").Valid())
	assert.False(t, RepeatType("").Valid())
}

func TestRepeatRecurring(t *testing.T) {
	assert.False(t, Repeat{}.Recurring())
	assert.False(t, Repeat{Type: RepeatNone, Interval: 1}.Recurring())
	assert.True(t, Repeat{Type: RepeatWeekly, Interval: 2}.Recurring())
}

func TestDayCellBlank(t *testing.T) {
	assert.True(t, DayCell{}.Blank())
	assert.False(t, DayCell{Day: 1, DateString: "2025-07-01"}.Blank())
}
