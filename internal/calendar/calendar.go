// Package calendar computes the week and month grids the planner is drawn
// on. All functions work on calendar fields in the location of the input
// time, so a wall-clock day always maps to the same key regardless of DST.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the canonical planner key format.
const DateLayout = "2006-01-02"

// GridCells is the fixed size of a month grid: six weeks of seven days.
const GridCells = 42

// MaxWeeks bounds how many week rows a planner view may show at once.
const MaxWeeks = 6

// ErrInvalidDate is returned when a date key cannot be parsed.
var ErrInvalidDate = errors.New("invalid date")

// midnight returns local midnight of t's calendar day.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns the Monday of the week containing t, at local midnight.
func StartOfWeek(t time.Time) time.Time {
	// Sunday=0 becomes 6, Monday=1 becomes 0.
	offset := (int(t.Weekday()) + 6) % 7
	return AddDays(midnight(t), -offset)
}

// StartOfMonth returns local midnight of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// AddDays shifts t by n calendar days. The result keeps the wall-clock time
// of t; n may be negative.
func AddDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	return time.Date(y, m, d+n, hh, mm, ss, t.Nanosecond(), t.Location())
}

// WeekDays returns the seven days starting at StartOfWeek(t).
func WeekDays(t time.Time) []time.Time {
	start := StartOfWeek(t)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = AddDays(start, i)
	}
	return days
}

// Weeks returns n consecutive week rows starting at the week containing t.
// n is clamped to [1, MaxWeeks].
func Weeks(t time.Time, n int) [][]time.Time {
	if n < 1 {
		n = 1
	}
	if n > MaxWeeks {
		n = MaxWeeks
	}
	start := StartOfWeek(t)
	rows := make([][]time.Time, n)
	for i := range rows {
		rows[i] = WeekDays(AddDays(start, 7*i))
	}
	return rows
}

// MonthGrid returns the 42 days of the 6x7 grid for t's month. The grid
// starts on the Monday on or before the first of the month; cells outside
// the month are included and left for the caller to dim.
func MonthGrid(t time.Time) []time.Time {
	start := StartOfWeek(StartOfMonth(t))
	cells := make([]time.Time, GridCells)
	for i := range cells {
		cells[i] = AddDays(start, i)
	}
	return cells
}

// SameMonth reports whether a and b fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	ay, am, _ := a.Date()
	by, bm, _ := b.Date()
	return ay == by && am == bm
}

// DateKey formats t's local calendar date as YYYY-MM-DD.
func DateKey(t time.Time) string {
	y, m, d := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// ParseDateKey parses a YYYY-MM-DD key as local midnight in loc.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, key)
	}
	return t, nil
}
