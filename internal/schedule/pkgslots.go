package schedule

import (
	"time"

	"github.com/gfranca/atelieagenda/internal/model"
)

// PackageSlots enumerates start times at which the whole ordered package fits,
// ascending local "HH:MM". All steps share one business-hours window; each
// step is validated against the lunch closure and its own professional's busy
// intervals, so a slot is offered only when every participating professional
// is free for their step in back-to-back sequence with the fixed gap.
func PackageSlots(dateKey string, hours Hours, items []model.PackageItem, busy *BusyIndex) []string {
	total := TotalPackageMinutes(items)
	if total <= 0 {
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

	totalSpan := time.Duration(total) * time.Minute
	step := SlotIntervalMinutes * time.Minute
	gap := ServiceGapMinutes * time.Minute

	busyByItem := make([][]Interval, len(items))
	for i, item := range items {
		busyByItem[i] = busy.ForProfessional(item.ProfessionalID)
	}

	var slots []string
	for t := open; !t.Add(totalSpan).After(closeAt); t = t.Add(step) {
		cursor := t
		valid := true

		for i, item := range items {
			stepEnd := cursor.Add(time.Duration(item.DurationMinutes) * time.Minute)
			if (Interval{Start: cursor, End: stepEnd}).Overlaps(lunch) {
				valid = false
				break
			}
			if overlapsAny(cursor, stepEnd, busyByItem[i]) {
				valid = false
				break
			}
			cursor = stepEnd.Add(gap)
		}

		if valid {
			slots = append(slots, ClockOf(t))
		}
	}
	return slots
}

// TotalPackageMinutes is the wall-clock footprint of a package: the sum of
// step durations plus one gap between each consecutive pair.
func TotalPackageMinutes(items []model.PackageItem) int {
	if len(items) == 0 {
		return 0
	}
	total := 0
	for _, item := range items {
		total += item.DurationMinutes
	}
	return total + ServiceGapMinutes*(len(items)-1)
}
