package schedule

import (
	"testing"

	"github.com/gfranca/atelieagenda/internal/model"
)

func twoStepPackage() []model.PackageItem {
	return []model.PackageItem{
		{ServiceID: "cut", ProfessionalID: "p1", DurationMinutes: 30},
		{ServiceID: "color", ProfessionalID: "p2", DurationMinutes: 45},
	}
}

func TestTotalPackageMinutes(t *testing.T) {
	if got := TotalPackageMinutes(nil); got != 0 {
		t.Errorf("empty = %d", got)
	}
	if got := TotalPackageMinutes([]model.PackageItem{{DurationMinutes: 30}}); got != 30 {
		t.Errorf("single = %d", got)
	}
	// 30 + 10 gap + 45.
	if got := TotalPackageMinutes(twoStepPackage()); got != 85 {
		t.Errorf("two steps = %d", got)
	}
}

func TestPackageSlotsWholePackageMustFit(t *testing.T) {
	slots := PackageSlots("2024-05-07", fullDay, twoStepPackage(), NewBusyIndex())
	if len(slots) == 0 {
		t.Fatal("expected slots")
	}
	if slots[0] != "08:00" {
		t.Errorf("first slot = %s", slots[0])
	}
	// 85 minutes of package: the last start finishing by 20:00 is 18:30.
	if last := slots[len(slots)-1]; last != "18:30" {
		t.Errorf("last slot = %s, want 18:30", last)
	}
	if contains(slots, "18:40") {
		t.Error("18:40 would end past close")
	}
}

func TestPackageSlotsLunchBlocksEveryStep(t *testing.T) {
	slots := PackageSlots("2024-05-07", fullDay, twoStepPackage(), NewBusyIndex())

	// At 11:00 the second step (11:40-12:25) crosses into lunch.
	if contains(slots, "11:00") {
		t.Error("11:00 puts the second step into lunch")
	}
	// At 10:20 the second step ends 11:45, clear of lunch.
	if !contains(slots, "10:20") {
		t.Error("10:20 should fit before lunch")
	}
	// 13:00 restarts cleanly after lunch.
	if !contains(slots, "13:00") {
		t.Error("13:00 should be offered")
	}
}

func TestPackageSlotsChecksEachProfessional(t *testing.T) {
	busy := NewBusyIndex()
	busy.Add("p2", interval(t, "2024-05-07", "09:00", "10:00"))

	slots := PackageSlots("2024-05-07", fullDay, twoStepPackage(), busy)
	// p2's step starts 40 minutes in; any package start before 09:20 lands it
	// inside her appointment.
	for _, absent := range []string{"08:00", "08:30", "09:10"} {
		if contains(slots, absent) {
			t.Errorf("start %s conflicts with p2's appointment", absent)
		}
	}
	if !contains(slots, "09:20") {
		t.Error("09:20 should be offered: p2's step runs 10:00-10:45")
	}
}

func TestPackageSlotsBusinessWideBlockHitsAllSteps(t *testing.T) {
	busy := NewBusyIndex()
	busy.AddGeneral(interval(t, "2024-05-07", "08:00", "09:00"))

	slots := PackageSlots("2024-05-07", fullDay, twoStepPackage(), busy)
	if contains(slots, "08:00") || contains(slots, "08:50") {
		t.Error("starts inside the closure should be excluded")
	}
	if !contains(slots, "09:00") {
		t.Error("09:00 should be the first available start")
	}
}

func TestPackageSlotsEmptyItems(t *testing.T) {
	if slots := PackageSlots("2024-05-07", fullDay, nil, NewBusyIndex()); slots != nil {
		t.Errorf("expected nil, got %v", slots)
	}
}

// Growing a step can only remove start times, never add them.
func TestPackageSlotsMonotonicInDuration(t *testing.T) {
	busy := NewBusyIndex()
	busy.Add("p1", interval(t, "2024-05-07", "10:00", "11:00"))
	busy.Add("p2", interval(t, "2024-05-07", "15:00", "16:00"))

	short := twoStepPackage()
	long := twoStepPackage()
	long[1].DurationMinutes += 30

	shortSlots := PackageSlots("2024-05-07", fullDay, short, busy)
	longSlots := PackageSlots("2024-05-07", fullDay, long, busy)

	shortSet := map[string]bool{}
	for _, s := range shortSlots {
		shortSet[s] = true
	}
	for _, s := range longSlots {
		if !shortSet[s] {
			t.Errorf("slot %s appears only with the longer duration", s)
		}
	}
}

// Every offered package slot must build into a schedule whose steps pass the
// same overlap checks the enumerator applied.
func TestPackageSlotsConsistentWithBuildSchedule(t *testing.T) {
	busy := NewBusyIndex()
	busy.Add("p1", interval(t, "2024-05-07", "14:00", "15:00"))
	busy.Add("p2", interval(t, "2024-05-07", "16:00", "17:00"))

	items := twoStepPackage()
	slots := PackageSlots("2024-05-07", fullDay, items, busy)
	lunch, err := LunchInterval("2024-05-07")
	if err != nil {
		t.Fatal(err)
	}

	for _, slot := range slots {
		sched, err := BuildSchedule("2024-05-07", slot, items)
		if err != nil {
			t.Fatalf("BuildSchedule(%s): %v", slot, err)
		}
		for _, step := range sched.Steps {
			iv := Interval{Start: step.StartsAt, End: step.EndsAt}
			if iv.Overlaps(lunch) {
				t.Errorf("slot %s: step %d overlaps lunch", slot, step.OrderIndex)
			}
			if overlapsAny(step.StartsAt, step.EndsAt, busy.ForProfessional(step.ProfessionalID)) {
				t.Errorf("slot %s: step %d overlaps a busy interval", slot, step.OrderIndex)
			}
		}
	}
}
