// Package dates centralizes calendar-day arithmetic. Every day key in the
// application is produced here, from the wall clock of an explicit location,
// never by truncating a UTC timestamp.
package dates

import (
	"fmt"
	"time"
)

// KeyLayout is the format of a day key.
const KeyLayout = "2006-01-02"

// Key returns the YYYY-MM-DD identifier of t's wall-clock day in t's own location.
func Key(t time.Time) string {
	y, m, d := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// KeyIn converts t to loc before taking its day key.
func KeyIn(t time.Time, loc *time.Location) string {
	return Key(t.In(orLocal(loc)))
}

// ParseKey returns local midnight of the day named by key.
func ParseKey(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(KeyLayout, key, orLocal(loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day key %q: %w", key, err)
	}
	return t, nil
}

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddDays moves t by n calendar days and normalizes to midnight.
// Works on the date fields so DST transitions never skip or repeat a day.
func AddDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, t.Location())
}

// MondayOf returns local midnight of the Monday of t's week. Sunday belongs
// to the week that started six days earlier.
func MondayOf(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return AddDays(t, -(weekday - 1))
}

// SundayOf returns local midnight of the Sunday that starts t's
// Sunday-aligned week.
func SundayOf(t time.Time) time.Time {
	return AddDays(t, -int(t.Weekday()))
}

// SaturdayOf returns local midnight of the Saturday that ends t's
// Sunday-aligned week.
func SaturdayOf(t time.Time) time.Time {
	return AddDays(t, int(time.Saturday-t.Weekday()))
}

// DaysBetween returns b's calendar day minus a's, ignoring time of day.
// Both values are compared on their own wall clocks.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	// UTC has no DST, so whole days divide evenly.
	a0 := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	b0 := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(b0.Sub(a0).Hours() / 24)
}

// KeyDaysBetween is DaysBetween over two day keys.
func KeyDaysBetween(a, b string) (int, error) {
	at, err := ParseKey(a, time.UTC)
	if err != nil {
		return 0, err
	}
	bt, err := ParseKey(b, time.UTC)
	if err != nil {
		return 0, err
	}
	return DaysBetween(at, bt), nil
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Today returns midnight of the current day in loc.
func Today(loc *time.Location) time.Time {
	return StartOfDay(time.Now().In(orLocal(loc)))
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
