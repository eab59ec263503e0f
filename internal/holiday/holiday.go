package holiday

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// builtin holds Korean public holidays keyed by year, then "YYYY-MM-DD".
// It is read-only; Table copies out of it.
var builtin = map[int]map[string]string{
	2024: {
		"2024-01-01": "신정",
		"2024-02-09": "설날",
		"2024-02-10": "설날",
		"2024-02-11": "설날",
		"2024-02-12": "대체공휴일",
		"2024-03-01": "삼일절",
		"2024-04-10": "국회의원선거일",
		"2024-05-05": "어린이날",
		"2024-05-06": "대체공휴일",
		"2024-05-15": "부처님오신날",
		"2024-06-06": "현충일",
		"2024-08-15": "광복절",
		"2024-09-16": "추석",
		"2024-09-17": "추석",
		"2024-09-18": "추석",
		"2024-10-01": "국군의날",
		"2024-10-03": "개천절",
		"2024-10-09": "한글날",
		"2024-12-25": "크리스마스",
	},
	2025: {
		"2025-01-01": "신정",
		"2025-01-27": "임시공휴일",
		"2025-01-28": "설날",
		"2025-01-29": "설날",
		"2025-01-30": "설날",
		"2025-03-01": "삼일절",
		"2025-03-03": "대체공휴일",
		"2025-05-05": "어린이날",
		"2025-05-06": "대체공휴일",
		"2025-06-03": "대통령선거일",
		"2025-06-06": "현충일",
		"2025-08-15": "광복절",
		"2025-10-03": "개천절",
		"2025-10-05": "추석",
		"2025-10-06": "추석",
		"2025-10-07": "추석",
		"2025-10-08": "대체공휴일",
		"2025-10-09": "한글날",
		"2025-12-25": "크리스마스",
	},
	2026: {
		"2026-01-01": "신정",
		"2026-02-16": "설날",
		"2026-02-17": "설날",
		"2026-02-18": "설날",
		"2026-03-01": "삼일절",
		"2026-03-02": "대체공휴일",
		"2026-05-05": "어린이날",
		"2026-05-24": "부처님오신날",
		"2026-05-25": "대체공휴일",
		"2026-06-03": "지방선거일",
		"2026-06-06": "현충일",
		"2026-08-15": "광복절",
		"2026-08-17": "대체공휴일",
		"2026-09-24": "추석",
		"2026-09-25": "추석",
		"2026-09-26": "추석",
		"2026-10-03": "개천절",
		"2026-10-05": "대체공휴일",
		"2026-10-09": "한글날",
		"2026-12-25": "크리스마스",
	},
}

// FetchHolidays returns the built-in holidays in date's year and month.
// There is no network I/O; a year without data gives an empty map.
func FetchHolidays(date time.Time) map[string]string {
	return forMonth(builtin, date)
}

// Table is the built-in data plus extra entries, typically from config.
// A Table is immutable after New and safe for concurrent use.
type Table struct {
	byYear map[int]map[string]string
}

// Builtin returns a Table holding only the built-in data.
func Builtin() *Table {
	byYear := make(map[int]map[string]string, len(builtin))
	for y, days := range builtin {
		cp := make(map[string]string, len(days))
		for k, v := range days {
			cp[k] = v
		}
		byYear[y] = cp
	}
	return &Table{byYear: byYear}
}

// New copies the built-in data and layers extra on top ("YYYY-MM-DD" → name).
// Extra keys that are not well-formed dates are rejected.
func New(extra map[string]string) (*Table, error) {
	t := Builtin()
	for k, v := range extra {
		if _, err := time.Parse("2006-01-02", k); err != nil {
			return nil, fmt.Errorf("holiday: invalid date %q: %w", k, err)
		}
		y, _ := strconv.Atoi(k[:4])
		if t.byYear[y] == nil {
			t.byYear[y] = make(map[string]string)
		}
		t.byYear[y][k] = v
	}
	return t, nil
}

// ForMonth is FetchHolidays over this table.
func (t *Table) ForMonth(date time.Time) map[string]string {
	return forMonth(t.byYear, date)
}

// Name returns the holiday on dateString ("YYYY-MM-DD"), or "".
func (t *Table) Name(dateString string) string {
	if len(dateString) < 4 {
		return ""
	}
	y, err := strconv.Atoi(dateString[:4])
	if err != nil {
		return ""
	}
	return t.byYear[y][dateString]
}

func forMonth(byYear map[int]map[string]string, date time.Time) map[string]string {
	prefix := fmt.Sprintf("%04d-%02d", date.Year(), int(date.Month()))
	out := make(map[string]string)
	for k, v := range byYear[date.Year()] {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
		}
	}
	return out
}
