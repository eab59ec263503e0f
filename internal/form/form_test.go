package form

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedcal/internal/model"
)

func validEvent() model.Event {
	return model.Event{
		Title:            "팀 회의",
		Date:             "2025-07-01",
		StartTime:        "09:00",
		EndTime:          "10:00",
		Repeat:           model.Repeat{Type: model.RepeatNone, Interval: 1},
		NotificationTime: 10,
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidEvent))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	return verr.Fields
}

func TestValidateOK(t *testing.T) {
	assert.NoError(t, Validate(validEvent()))

	ev := validEvent()
	ev.Repeat = model.Repeat{}
	assert.NoError(t, Validate(ev), "empty repeat is treated as none")

	ev = validEvent()
	ev.Repeat = model.Repeat{Type: model.RepeatWeekly, Interval: 2, EndDate: "2025-12-31"}
	assert.NoError(t, Validate(ev))
}

func TestValidateFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Event)
		want   map[string]string
	}{
		{
			name:   "missing title",
			mutate: func(ev *model.Event) { ev.Title = "" },
			want:   map[string]string{"title": MsgRequired},
		},
		{
			name:   "bad date",
			mutate: func(ev *model.Event) { ev.Date = "2025-02-30" },
			want:   map[string]string{"date": MsgDate},
		},
		{
			name:   "bad clock",
			mutate: func(ev *model.Event) { ev.StartTime = "9:00" },
			want:   map[string]string{"startTime": MsgClock},
		},
		{
			name:   "end before start",
			mutate: func(ev *model.Event) { ev.StartTime, ev.EndTime = "11:00", "10:00" },
			want:   map[string]string{"startTime": MsgStartTime, "endTime": MsgEndTime},
		},
		{
			name:   "zero length",
			mutate: func(ev *model.Event) { ev.EndTime = "09:00" },
			want:   map[string]string{"startTime": MsgStartTime, "endTime": MsgEndTime},
		},
		{
			name:   "unknown repeat type",
			mutate: func(ev *model.Event) { ev.Repeat.Type = "hourly" },
			want:   map[string]string{"repeat.type": MsgRepeatType},
		},
		{
			name:   "repeat ends before event",
			mutate: func(ev *model.Event) { ev.Repeat = model.Repeat{Type: model.RepeatDaily, Interval: 1, EndDate: "2025-06-30"} },
			want:   map[string]string{"repeat.endDate": MsgRepeatEnd},
		},
		{
			name:   "negative notification",
			mutate: func(ev *model.Event) { ev.NotificationTime = -1 },
			want:   map[string]string{"notificationTime": MsgMin},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := validEvent()
			tt.mutate(&ev)
			assert.Equal(t, tt.want, fieldsOf(t, Validate(ev)))
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"title": MsgRequired, "date": MsgDate}}
	assert.Equal(t, "invalid event: date: "+MsgDate+"; title: "+MsgRequired, err.Error())
}

func TestTimeErrors(t *testing.T) {
	s, e := TimeErrors("09:00", "10:00")
	assert.Empty(t, s)
	assert.Empty(t, e)

	s, e = TimeErrors("10:00", "09:00")
	assert.Equal(t, MsgStartTime, s)
	assert.Equal(t, MsgEndTime, e)

	s, e = TimeErrors("", "09:00")
	assert.Empty(t, s)
	assert.Empty(t, e)
}
