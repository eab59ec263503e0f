package datetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedcal/internal/model"
)

func TestParseDateTimeIn(t *testing.T) {
	loc := time.UTC

	got := ParseDateTimeIn("2025-07-01", "09:10", loc)
	require.True(t, got.Valid())
	assert.Equal(t, time.Date(2025, 7, 1, 9, 10, 0, 0, loc), got.Time())

	tests := []struct {
		name  string
		date  string
		clock string
	}{
		{"slash date", "2025/07/01", "09:10"},
		{"short year", "25-07-01", "09:10"},
		{"single digit hour", "2025-07-01", "9:10"},
		{"seconds", "2025-07-01", "09:10:00"},
		{"empty", "", ""},
		{"impossible day", "2025-02-30", "09:10"},
		{"impossible hour", "2025-07-01", "24:10"},
		{"trailing text", "2025-07-01x", "09:10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, ParseDateTimeIn(tt.date, tt.clock, loc).Valid())
		})
	}
}

func TestParseDateTimeUsesLocal(t *testing.T) {
	got := ParseDateTime("2025-07-01", "09:10")
	require.True(t, got.Valid())
	assert.Equal(t, time.Local, got.Time().Location())
}

func TestInvalidInstantComparisons(t *testing.T) {
	valid := At(time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC))
	bad := Invalid()

	for _, pair := range [][2]Instant{{valid, bad}, {bad, valid}, {bad, bad}} {
		a, b := pair[0], pair[1]
		assert.False(t, a.Before(b))
		assert.False(t, a.After(b))
		assert.False(t, a.Equal(b))
		assert.False(t, a.BeforeOrEqual(b))
	}
	assert.False(t, bad.Add(time.Hour).Valid())
	assert.Equal(t, "Invalid Date", bad.String())
}

func TestInstantOrdering(t *testing.T) {
	a := At(time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC))
	b := a.Add(time.Minute)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, a.BeforeOrEqual(a))
	assert.True(t, a.Equal(a))
	assert.False(t, b.BeforeOrEqual(a))
}

func TestEventRangeIn(t *testing.T) {
	ev := model.Event{Date: "2025-07-01", StartTime: "09:00", EndTime: "10:30"}
	r := EventRangeIn(ev, time.UTC)

	require.True(t, r.Start.Valid())
	require.True(t, r.End.Valid())
	assert.Equal(t, 90*time.Minute, r.End.Time().Sub(r.Start.Time()))

	broken := EventRangeIn(model.Event{Date: "2025-07-01", StartTime: "nine", EndTime: "10:30"}, time.UTC)
	assert.False(t, broken.Start.Valid())
	assert.True(t, broken.End.Valid())
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2024-02-29", time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d)

	_, ok = ParseDate("2023-02-29", time.UTC)
	assert.False(t, ok)
}
