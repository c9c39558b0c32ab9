package schedule

import (
	"time"

	"github.com/gfranca/atelieagenda/internal/model"
)

// Schedule is the materialized timeline of a package: ordered steps plus the
// overall span. StartsAt/EndsAt are nil when there are no steps.
type Schedule struct {
	Steps    []model.PackageStep
	StartsAt *time.Time
	EndsAt   *time.Time
}

// BuildSchedule lays the items out back-to-back from startTime, each step
// separated by the fixed gap. Deterministic: same inputs, same steps. It
// performs no conflict checking - callers validate the start time against
// PackageSlots first, and invoke this again at commit time to regenerate the
// exact steps from the chosen slot rather than trusting client-sent times.
func BuildSchedule(dateKey, startTime string, items []model.PackageItem) (Schedule, error) {
	cursor, err := At(dateKey, startTime)
	if err != nil {
		return Schedule{}, err
	}
	gap := ServiceGapMinutes * time.Minute

	steps := make([]model.PackageStep, 0, len(items))
	for i, item := range items {
		startsAt := cursor
		endsAt := cursor.Add(time.Duration(item.DurationMinutes) * time.Minute)
		steps = append(steps, model.PackageStep{
			PackageItem: item,
			StartsAt:    startsAt,
			EndsAt:      endsAt,
			OrderIndex:  i,
		})
		cursor = endsAt.Add(gap)
	}

	sched := Schedule{Steps: steps}
	if len(steps) > 0 {
		sched.StartsAt = &steps[0].StartsAt
		sched.EndsAt = &steps[len(steps)-1].EndsAt
	}
	return sched, nil
}
