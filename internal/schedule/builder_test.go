package schedule

import (
	"testing"

	"github.com/gfranca/atelieagenda/internal/model"
)

func TestBuildScheduleLaysStepsBackToBack(t *testing.T) {
	sched, err := BuildSchedule("2024-05-07", "09:00", twoStepPackage())
	if err != nil {
		t.Fatalf("BuildSchedule: %v", err)
	}
	if len(sched.Steps) != 2 {
		t.Fatalf("steps = %d", len(sched.Steps))
	}

	first, second := sched.Steps[0], sched.Steps[1]
	if ClockOf(first.StartsAt) != "09:00" || ClockOf(first.EndsAt) != "09:30" {
		t.Errorf("first step %s-%s", ClockOf(first.StartsAt), ClockOf(first.EndsAt))
	}
	if ClockOf(second.StartsAt) != "09:40" || ClockOf(second.EndsAt) != "10:25" {
		t.Errorf("second step %s-%s", ClockOf(second.StartsAt), ClockOf(second.EndsAt))
	}
	if first.OrderIndex != 0 || second.OrderIndex != 1 {
		t.Errorf("order = %d, %d", first.OrderIndex, second.OrderIndex)
	}
	if sched.StartsAt == nil || sched.EndsAt == nil {
		t.Fatal("overall span missing")
	}
	if ClockOf(*sched.StartsAt) != "09:00" || ClockOf(*sched.EndsAt) != "10:25" {
		t.Errorf("span %s-%s", ClockOf(*sched.StartsAt), ClockOf(*sched.EndsAt))
	}
}

func TestBuildScheduleIsDeterministic(t *testing.T) {
	a, err := BuildSchedule("2024-05-07", "14:30", twoStepPackage())
	if err != nil {
		t.Fatal(err)
	}
	b, err := BuildSchedule("2024-05-07", "14:30", twoStepPackage())
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Steps {
		if !a.Steps[i].StartsAt.Equal(b.Steps[i].StartsAt) || !a.Steps[i].EndsAt.Equal(b.Steps[i].EndsAt) {
			t.Errorf("step %d differs between runs", i)
		}
	}
}

func TestBuildScheduleEmptyItems(t *testing.T) {
	sched, err := BuildSchedule("2024-05-07", "09:00", nil)
	if err != nil {
		t.Fatalf("BuildSchedule: %v", err)
	}
	if len(sched.Steps) != 0 || sched.StartsAt != nil || sched.EndsAt != nil {
		t.Errorf("expected empty schedule, got %+v", sched)
	}
}

func TestBuildScheduleBadStart(t *testing.T) {
	if _, err := BuildSchedule("2024-05-07", "nine", []model.PackageItem{{DurationMinutes: 30}}); err == nil {
		t.Error("expected error for bad start time")
	}
}
