package booking

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gfranca/atelieagenda/internal/model"
	"github.com/gfranca/atelieagenda/internal/schedule"
	"github.com/gfranca/atelieagenda/internal/storage"
)

// 2026-01-06 is a Tuesday, open 08:00-20:00 under the default hours.
const testDate = "2026-01-06"

type fakeHours struct {
	rules []model.BusinessHoursRule
}

func (f *fakeHours) ListRules(ctx context.Context) ([]model.BusinessHoursRule, error) {
	return f.rules, nil
}

type fakeCatalog struct {
	durations map[string]int
	pairs     map[string]struct{}
}

func (f *fakeCatalog) ServiceDurations(ctx context.Context, serviceIDs []string) (map[string]int, error) {
	out := make(map[string]int)
	for _, id := range serviceIDs {
		if d, ok := f.durations[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

func (f *fakeCatalog) OfferedPairs(ctx context.Context, serviceIDs, professionalIDs []string) (map[string]struct{}, error) {
	return f.pairs, nil
}

type fakeBusy struct {
	confirmed   []storage.ProfessionalInterval
	steps       []storage.ProfessionalInterval
	appts       []model.Appointment
	stepsByAppt map[string][]model.PackageStep
}

func (f *fakeBusy) ConfirmedIntervals(ctx context.Context, ids []string, from, to time.Time) ([]storage.ProfessionalInterval, error) {
	return f.confirmed, nil
}

func (f *fakeBusy) StepIntervals(ctx context.Context, ids []string, from, to time.Time) ([]storage.ProfessionalInterval, error) {
	return f.steps, nil
}

func (f *fakeBusy) ListDay(ctx context.Context, from, to time.Time) ([]model.Appointment, error) {
	return f.appts, nil
}

func (f *fakeBusy) ListSteps(ctx context.Context, appointmentID string) ([]model.PackageStep, error) {
	return f.stepsByAppt[appointmentID], nil
}

type fakeBlocks struct {
	blocks []model.Block
}

func (f *fakeBlocks) Overlapping(ctx context.Context, from, to time.Time) ([]model.Block, error) {
	return f.blocks, nil
}

type fakeWriter struct {
	created      *model.Appointment
	createdSteps []model.PackageStep
	createErr    error
	cancelled    map[string]model.Appointment
}

func (f *fakeWriter) CreateBooking(ctx context.Context, appt *model.Appointment, steps []model.PackageStep) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = appt
	f.createdSteps = steps
	return "appt-1", nil
}

func (f *fakeWriter) CancelBooking(ctx context.Context, id string) (model.Appointment, error) {
	appt, ok := f.cancelled[id]
	if !ok {
		return model.Appointment{}, pgx.ErrNoRows
	}
	appt.Status = model.StatusCancelled
	return appt, nil
}

type fixture struct {
	hours   *fakeHours
	catalog *fakeCatalog
	busy    *fakeBusy
	blocks  *fakeBlocks
	writer  *fakeWriter
	svc     *Service
}

func newFixture() *fixture {
	f := &fixture{
		hours: &fakeHours{},
		catalog: &fakeCatalog{
			durations: map[string]int{"svc-cut": 30, "svc-color": 45},
			pairs: map[string]struct{}{
				"svc-cut|pro-ana":   {},
				"svc-color|pro-bia": {},
				"svc-color|pro-ana": {},
			},
		},
		busy:   &fakeBusy{},
		blocks: &fakeBlocks{},
		writer: &fakeWriter{cancelled: map[string]model.Appointment{}},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewService(f.hours, f.catalog, f.busy, f.blocks, f.writer, logger)
	return f
}

func at(t *testing.T, clock string) time.Time {
	t.Helper()
	ts, err := schedule.At(testDate, clock)
	if err != nil {
		t.Fatalf("at %s: %v", clock, err)
	}
	return ts
}

func hasSlot(slots []string, want string) bool {
	for _, s := range slots {
		if s == want {
			return true
		}
	}
	return false
}

func TestAvailableSlotsSkipsBusyAndLunch(t *testing.T) {
	f := newFixture()
	f.busy.confirmed = []storage.ProfessionalInterval{
		{ProfessionalID: "pro-ana", StartsAt: at(t, "10:00"), EndsAt: at(t, "11:00")},
	}

	slots, err := f.svc.AvailableSlots(context.Background(), "pro-ana", "svc-cut", testDate)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("expected slots on an open day")
	}
	for _, want := range []string{"08:00", "11:00", "13:00", "19:30"} {
		if !hasSlot(slots, want) {
			t.Errorf("missing slot %s", want)
		}
	}
	// 09:40 would run into the 10:00 appointment, 11:40 into lunch, and a
	// 19:40 start would not finish by close.
	for _, absent := range []string{"09:40", "10:00", "11:40", "19:40"} {
		if hasSlot(slots, absent) {
			t.Errorf("slot %s should be excluded", absent)
		}
	}
}

func TestAvailableSlotsBusinessWideBlock(t *testing.T) {
	f := newFixture()
	f.blocks.blocks = []model.Block{
		{ProfessionalID: "", StartsAt: at(t, "14:00"), EndsAt: at(t, "15:00")},
	}

	slots, err := f.svc.AvailableSlots(context.Background(), "pro-ana", "svc-cut", testDate)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if hasSlot(slots, "14:00") || hasSlot(slots, "14:30") {
		t.Error("business-wide block should remove 14:00-15:00 starts")
	}
	if !hasSlot(slots, "15:00") {
		t.Error("slot 15:00 should be free again after the block")
	}
}

func TestAvailableSlotsUnknownServiceIsEmpty(t *testing.T) {
	f := newFixture()
	slots, err := f.svc.AvailableSlots(context.Background(), "pro-ana", "svc-missing", testDate)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots, got %v", slots)
	}
}

func TestAvailableSlotsClosedDay(t *testing.T) {
	f := newFixture()
	f.hours.rules = []model.BusinessHoursRule{
		{Weekday: int(time.Tuesday), Closed: true},
	}
	slots, err := f.svc.AvailableSlots(context.Background(), "pro-ana", "svc-cut", testDate)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots on closed day, got %v", slots)
	}
}

func TestAvailableSlotsBadDate(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.AvailableSlots(context.Background(), "pro-ana", "svc-cut", "06/01/2026"); !errors.Is(err, ErrBadDate) {
		t.Fatalf("expected ErrBadDate, got %v", err)
	}
}

func TestPackageSlotsMismatchedSelections(t *testing.T) {
	f := newFixture()
	_, err := f.svc.PackageSlots(context.Background(), testDate, []string{"svc-cut", "svc-color"}, []string{"pro-ana"})
	if !errors.Is(err, ErrItemMismatch) {
		t.Fatalf("expected ErrItemMismatch, got %v", err)
	}
}

func TestPackageSlotsUnknownDurationIsEmpty(t *testing.T) {
	f := newFixture()
	slots, err := f.svc.PackageSlots(context.Background(), testDate, []string{"svc-missing"}, []string{"pro-ana"})
	if err != nil {
		t.Fatalf("PackageSlots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots, got %v", slots)
	}
}

func TestPackageSlotsClosedDay(t *testing.T) {
	f := newFixture()
	f.hours.rules = []model.BusinessHoursRule{
		{Weekday: int(time.Tuesday), Closed: true},
	}
	slots, err := f.svc.PackageSlots(context.Background(), testDate,
		[]string{"svc-cut", "svc-color"}, []string{"pro-ana", "pro-bia"})
	if err != nil {
		t.Fatalf("PackageSlots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no package slots on closed day, got %v", slots)
	}

	// A default-closed weekday behaves the same: 2026-01-04 is a Sunday.
	slots, err = f.svc.PackageSlots(context.Background(), "2026-01-04",
		[]string{"svc-cut", "svc-color"}, []string{"pro-ana", "pro-bia"})
	if err != nil {
		t.Fatalf("PackageSlots: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no package slots on Sunday, got %v", slots)
	}
}

func TestPackageSlotsRespectsEachProfessionalsAgenda(t *testing.T) {
	f := newFixture()
	// pro-bia is busy 09:00-10:00. The color step starts 40 minutes after the
	// package start (30 min cut + 10 min gap), so any start before 09:20 puts
	// the color step inside her busy window.
	f.busy.confirmed = []storage.ProfessionalInterval{
		{ProfessionalID: "pro-bia", StartsAt: at(t, "09:00"), EndsAt: at(t, "10:00")},
	}

	slots, err := f.svc.PackageSlots(context.Background(), testDate,
		[]string{"svc-cut", "svc-color"}, []string{"pro-ana", "pro-bia"})
	if err != nil {
		t.Fatalf("PackageSlots: %v", err)
	}
	for _, absent := range []string{"08:00", "08:40", "09:10"} {
		if hasSlot(slots, absent) {
			t.Errorf("start %s places the color step inside pro-bia's appointment", absent)
		}
	}
	if !hasSlot(slots, "09:20") {
		t.Error("09:20 start should fit: color step runs 10:00-10:45")
	}
}

func TestBookHappyPath(t *testing.T) {
	f := newFixture()
	res, err := f.svc.Book(context.Background(), BookingRequest{
		ServiceIDs:      []string{"svc-cut", "svc-color"},
		ProfessionalIDs: []string{"pro-ana", "pro-bia"},
		ClientName:      "Maria",
		ClientPhone:     "+55 11 99999-0000",
		DateKey:         testDate,
		StartTime:       "09:00",
	})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if res.ID != "appt-1" {
		t.Errorf("id = %q", res.ID)
	}
	if got := schedule.ClockOf(res.StartsAt); got != "09:00" {
		t.Errorf("starts at %s, want 09:00", got)
	}
	// 30 min cut, 10 min gap, 45 min color: overall 09:00-10:25.
	if got := schedule.ClockOf(res.EndsAt); got != "10:25" {
		t.Errorf("ends at %s, want 10:25", got)
	}
	if len(f.writer.createdSteps) != 2 {
		t.Fatalf("steps persisted = %d, want 2", len(f.writer.createdSteps))
	}
	second := f.writer.createdSteps[1]
	if got := schedule.ClockOf(second.StartsAt); got != "09:40" {
		t.Errorf("second step starts %s, want 09:40", got)
	}
	if second.OrderIndex != 1 {
		t.Errorf("second step order = %d", second.OrderIndex)
	}
	if f.writer.created.Status != model.StatusConfirmed {
		t.Errorf("status = %q", f.writer.created.Status)
	}
}

func TestBookMissingFields(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Book(context.Background(), BookingRequest{
		ServiceIDs:      []string{"svc-cut"},
		ProfessionalIDs: []string{"pro-ana"},
		ClientName:      "  ",
		ClientPhone:     "+55 11 99999-0000",
		DateKey:         testDate,
		StartTime:       "09:00",
	})
	if !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}

func TestBookPairNotOffered(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Book(context.Background(), BookingRequest{
		ServiceIDs:      []string{"svc-cut"},
		ProfessionalIDs: []string{"pro-bia"},
		ClientName:      "Maria",
		ClientPhone:     "+55 11 99999-0000",
		DateKey:         testDate,
		StartTime:       "09:00",
	})
	if !errors.Is(err, ErrNotOffered) {
		t.Fatalf("expected ErrNotOffered, got %v", err)
	}
}

func TestBookSlotNoLongerAvailable(t *testing.T) {
	f := newFixture()
	f.busy.confirmed = []storage.ProfessionalInterval{
		{ProfessionalID: "pro-ana", StartsAt: at(t, "09:00"), EndsAt: at(t, "09:30")},
	}
	_, err := f.svc.Book(context.Background(), BookingRequest{
		ServiceIDs:      []string{"svc-cut"},
		ProfessionalIDs: []string{"pro-ana"},
		ClientName:      "Maria",
		ClientPhone:     "+55 11 99999-0000",
		DateKey:         testDate,
		StartTime:       "09:00",
	})
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
	if f.writer.created != nil {
		t.Error("nothing should be written when the slot is taken")
	}
}

func TestBookConcurrentConflictSurfacesAsSlotTaken(t *testing.T) {
	f := newFixture()
	f.writer.createErr = &pgconn.PgError{Code: "23P01"}
	_, err := f.svc.Book(context.Background(), BookingRequest{
		ServiceIDs:      []string{"svc-cut"},
		ProfessionalIDs: []string{"pro-ana"},
		ClientName:      "Maria",
		ClientPhone:     "+55 11 99999-0000",
		DateKey:         testDate,
		StartTime:       "09:00",
	})
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken on constraint violation, got %v", err)
	}
}

func TestCancelNotFound(t *testing.T) {
	f := newFixture()
	if _, err := f.svc.Cancel(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCancel(t *testing.T) {
	f := newFixture()
	f.writer.cancelled["appt-9"] = model.Appointment{ID: "appt-9", Status: model.StatusConfirmed}
	appt, err := f.svc.Cancel(context.Background(), "appt-9")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if appt.Status != model.StatusCancelled {
		t.Errorf("status = %q", appt.Status)
	}
}

func TestDayAgenda(t *testing.T) {
	f := newFixture()
	f.busy.appts = []model.Appointment{{ID: "a1"}, {ID: "a2"}}
	f.busy.stepsByAppt = map[string][]model.PackageStep{
		"a1": {{OrderIndex: 0}, {OrderIndex: 1}},
	}
	entries, err := f.svc.DayAgenda(context.Background(), testDate)
	if err != nil {
		t.Fatalf("DayAgenda: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d", len(entries))
	}
	if len(entries[0].Steps) != 2 || len(entries[1].Steps) != 0 {
		t.Errorf("step counts = %d, %d", len(entries[0].Steps), len(entries[1].Steps))
	}
}
