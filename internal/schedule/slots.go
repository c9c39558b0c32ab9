package schedule

import "time"

// Slots enumerates bookable start times for a single service on one day,
// ascending local "HH:MM". Candidates run every SlotIntervalMinutes from the
// open; the last one must still fit the full duration before close - no
// partial slots. A candidate is dropped when [t, t+duration) intersects lunch
// or any busy interval. Recomputed in full on every call; no state.
func Slots(dateKey string, hours Hours, durationMinutes int, busy []Interval) []string {
	if durationMinutes <= 0 {
		return nil
	}

	open, err := At(dateKey, hours.Open)
	if err != nil {
		return nil
	}
	closeAt, err := At(dateKey, hours.Close)
	if err != nil {
		return nil
	}
	lunch, err := LunchInterval(dateKey)
	if err != nil {
		return nil
	}

	blocked := make([]Interval, 0, len(busy)+1)
	blocked = append(blocked, busy...)
	blocked = append(blocked, lunch)

	duration := time.Duration(durationMinutes) * time.Minute
	step := SlotIntervalMinutes * time.Minute

	var slots []string
	for t := open; !t.Add(duration).After(closeAt); t = t.Add(step) {
		if overlapsAny(t, t.Add(duration), blocked) {
			continue
		}
		slots = append(slots, ClockOf(t))
	}
	return slots
}
