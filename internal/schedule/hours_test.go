package schedule

import (
	"testing"
	"time"

	"github.com/gfranca/atelieagenda/internal/model"
)

func day(t *testing.T, key string) time.Time {
	t.Helper()
	d, err := Day(key)
	if err != nil {
		t.Fatalf("Day(%s): %v", key, err)
	}
	return d
}

func TestResolveHoursDefaults(t *testing.T) {
	// 2024-05-07 Tue ... 2024-05-12 Sun.
	tests := []struct {
		date string
		open bool
	}{
		{"2024-05-07", true},  // Tuesday
		{"2024-05-11", true},  // Saturday
		{"2024-05-12", false}, // Sunday
		{"2024-05-13", false}, // Monday
	}
	for _, tc := range tests {
		hours, open := ResolveHours(day(t, tc.date), nil)
		if open != tc.open {
			t.Errorf("%s: open = %v, want %v", tc.date, open, tc.open)
			continue
		}
		if open && (hours.Open != "08:00" || hours.Close != "20:00") {
			t.Errorf("%s: hours = %+v", tc.date, hours)
		}
	}
}

func TestResolveHoursConfiguredRule(t *testing.T) {
	rules := []model.BusinessHoursRule{
		{Weekday: int(time.Tuesday), Open: "09:00", Close: "18:00"},
	}
	hours, open := ResolveHours(day(t, "2024-05-07"), rules)
	if !open {
		t.Fatal("expected open")
	}
	if hours.Open != "09:00" || hours.Close != "18:00" {
		t.Errorf("hours = %+v", hours)
	}
}

func TestResolveHoursClosedFlagWins(t *testing.T) {
	// A closed flag closes the day even when times are present; there is no
	// fallback to the default window.
	rules := []model.BusinessHoursRule{
		{Weekday: int(time.Tuesday), Open: "09:00", Close: "18:00", Closed: true},
	}
	if _, open := ResolveHours(day(t, "2024-05-07"), rules); open {
		t.Error("closed rule should close the day")
	}
}

func TestResolveHoursUnparseableTimesFallBack(t *testing.T) {
	rules := []model.BusinessHoursRule{
		{Weekday: int(time.Tuesday), Open: "whenever", Close: "18:00"},
	}
	hours, open := ResolveHours(day(t, "2024-05-07"), rules)
	if !open {
		t.Fatal("expected fallback to default window")
	}
	if hours.Open != "08:00" || hours.Close != "20:00" {
		t.Errorf("hours = %+v", hours)
	}

	// The same garbage on a default-closed weekday stays closed.
	rules[0].Weekday = int(time.Sunday)
	if _, open := ResolveHours(day(t, "2024-05-12"), rules); open {
		t.Error("Sunday fallback should be closed")
	}
}

func TestResolveHoursInvertedWindowCloses(t *testing.T) {
	rules := []model.BusinessHoursRule{
		{Weekday: int(time.Tuesday), Open: "18:00", Close: "09:00"},
	}
	if _, open := ResolveHours(day(t, "2024-05-07"), rules); open {
		t.Error("inverted window should close the day")
	}
	rules[0].Close = "18:00"
	if _, open := ResolveHours(day(t, "2024-05-07"), rules); open {
		t.Error("zero-width window should close the day")
	}
}

func TestResolveHoursFirstMatchWins(t *testing.T) {
	rules := []model.BusinessHoursRule{
		{Weekday: int(time.Tuesday), Open: "09:00", Close: "18:00"},
		{Weekday: int(time.Tuesday), Open: "10:00", Close: "16:00"},
	}
	hours, open := ResolveHours(day(t, "2024-05-07"), rules)
	if !open || hours.Open != "09:00" {
		t.Errorf("hours = %+v open=%v, want first rule", hours, open)
	}
}
