// Package schedule computes bookable time slots for a single-location
// business: one shared set of opening hours, a fixed daily lunch closure, and
// per-professional busy calendars. All functions are pure; callers fetch the
// day's snapshot and hand it in.
package schedule

import (
	"fmt"
	"time"
)

const (
	// SlotIntervalMinutes is the granularity at which candidate start times
	// are evaluated.
	SlotIntervalMinutes = 10
	// ServiceGapMinutes is the buffer between consecutive package steps.
	ServiceGapMinutes = 10

	dateKeyLayout = "2006-01-02"
	clockLayout   = "15:04"
)

// Location is the business wall clock. The store speaks UTC instants; every
// date key and "HH:MM" crossing the API is interpreted here. No DST.
var Location = time.FixedZone("UTC-03", -3*60*60)

// At builds the instant for a local date key ("2006-01-02") and clock time
// ("HH:MM").
func At(dateKey, clock string) (time.Time, error) {
	t, err := time.ParseInLocation(dateKeyLayout+" "+clockLayout, dateKey+" "+clock, Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse local time %q %q: %w", dateKey, clock, err)
	}
	return t, nil
}

// Day parses a date key into local midnight.
func Day(dateKey string) (time.Time, error) {
	t, err := time.ParseInLocation(dateKeyLayout, dateKey, Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", dateKey, err)
	}
	return t, nil
}

// DayKey formats an instant as its local date key.
func DayKey(t time.Time) string {
	return t.In(Location).Format(dateKeyLayout)
}

// ClockOf formats an instant as local "HH:MM".
func ClockOf(t time.Time) string {
	return t.In(Location).Format(clockLayout)
}

// DayBounds returns the local [00:00, 24:00) window of a date key, for
// overlap queries against the store.
func DayBounds(dateKey string) (time.Time, time.Time, error) {
	start, err := Day(dateKey)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.Add(24 * time.Hour), nil
}

// LunchInterval is the fixed daily closure, applied to every professional
// regardless of configuration.
func LunchInterval(dateKey string) (Interval, error) {
	start, err := At(dateKey, "12:00")
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: start, End: start.Add(time.Hour)}, nil
}

func minutesOf(clock string) (int, bool) {
	t, err := time.Parse(clockLayout, clock)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
