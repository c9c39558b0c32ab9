package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gfranca/atelieagenda/internal/model"
	"github.com/gfranca/atelieagenda/internal/schedule"
	"github.com/gfranca/atelieagenda/internal/storage"
)

// Validation failures a caller can act on. Handlers map these to 4xx.
var (
	ErrMissingFields   = errors.New("missing required booking fields")
	ErrItemMismatch    = errors.New("services and professionals must pair up one to one")
	ErrNotOffered      = errors.New("professional does not offer this service")
	ErrDurationUnknown = errors.New("service has no configured duration")
	ErrSlotTaken       = errors.New("requested time is no longer available")
	ErrNotFound        = errors.New("appointment not found")
	ErrBadDate         = errors.New("date must be YYYY-MM-DD")
)

type HoursStore interface {
	ListRules(ctx context.Context) ([]model.BusinessHoursRule, error)
}

type CatalogStore interface {
	ServiceDurations(ctx context.Context, serviceIDs []string) (map[string]int, error)
	OfferedPairs(ctx context.Context, serviceIDs, professionalIDs []string) (map[string]struct{}, error)
}

type BusyStore interface {
	ConfirmedIntervals(ctx context.Context, professionalIDs []string, from, to time.Time) ([]storage.ProfessionalInterval, error)
	StepIntervals(ctx context.Context, professionalIDs []string, from, to time.Time) ([]storage.ProfessionalInterval, error)
	ListDay(ctx context.Context, from, to time.Time) ([]model.Appointment, error)
	ListSteps(ctx context.Context, appointmentID string) ([]model.PackageStep, error)
}

type BlockStore interface {
	Overlapping(ctx context.Context, from, to time.Time) ([]model.Block, error)
}

// Writer is the transactional write side: appointment, steps and the outbox
// event commit atomically.
type Writer interface {
	CreateBooking(ctx context.Context, appt *model.Appointment, steps []model.PackageStep) (string, error)
	CancelBooking(ctx context.Context, id string) (model.Appointment, error)
}

type Service struct {
	hours   HoursStore
	catalog CatalogStore
	busy    BusyStore
	blocks  BlockStore
	writer  Writer
	logger  *slog.Logger
}

func NewService(hours HoursStore, catalog CatalogStore, busy BusyStore, blocks BlockStore, writer Writer, logger *slog.Logger) *Service {
	return &Service{
		hours:   hours,
		catalog: catalog,
		busy:    busy,
		blocks:  blocks,
		writer:  writer,
		logger:  logger,
	}
}

// AvailableSlots lists bookable start times for a single service on one day.
// Unknown services, unconfigured durations and closed days all come back as
// an empty list rather than an error: to the booking page those are the same
// answer.
func (s *Service) AvailableSlots(ctx context.Context, professionalID, serviceID, dateKey string) ([]string, error) {
	if professionalID == "" || serviceID == "" || dateKey == "" {
		return nil, nil
	}
	if _, err := schedule.Day(dateKey); err != nil {
		return nil, ErrBadDate
	}

	durations, err := s.catalog.ServiceDurations(ctx, []string{serviceID})
	if err != nil {
		return nil, err
	}
	duration := durations[serviceID]
	if duration <= 0 {
		return nil, nil
	}

	hours, open, err := s.resolveHours(ctx, dateKey)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, nil
	}

	busy, err := s.busyIndex(ctx, dateKey, []string{professionalID})
	if err != nil {
		return nil, err
	}
	return schedule.Slots(dateKey, hours, duration, busy.ForProfessional(professionalID)), nil
}

// PackageSlots lists start times at which every step of the package fits
// back to back, each step against its own professional's agenda.
func (s *Service) PackageSlots(ctx context.Context, dateKey string, serviceIDs, professionalIDs []string) ([]string, error) {
	if dateKey == "" || len(serviceIDs) == 0 {
		return nil, nil
	}
	if _, err := schedule.Day(dateKey); err != nil {
		return nil, ErrBadDate
	}
	if len(serviceIDs) != len(professionalIDs) {
		return nil, ErrItemMismatch
	}

	items, err := s.resolveItems(ctx, serviceIDs, professionalIDs)
	if err != nil {
		if errors.Is(err, ErrDurationUnknown) {
			return nil, nil
		}
		return nil, err
	}
	return s.packageSlotsForItems(ctx, dateKey, items)
}

func (s *Service) packageSlotsForItems(ctx context.Context, dateKey string, items []model.PackageItem) ([]string, error) {
	if schedule.TotalPackageMinutes(items) <= 0 {
		return nil, nil
	}

	hours, open, err := s.resolveHours(ctx, dateKey)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, nil
	}

	professionalIDs := make([]string, 0, len(items))
	for _, item := range items {
		professionalIDs = append(professionalIDs, item.ProfessionalID)
	}
	busy, err := s.busyIndex(ctx, dateKey, professionalIDs)
	if err != nil {
		return nil, err
	}
	return schedule.PackageSlots(dateKey, hours, items, busy), nil
}

type BookingRequest struct {
	ServiceIDs      []string
	ProfessionalIDs []string
	ClientName      string
	ClientPhone     string
	ClientEmail     string
	DateKey         string
	StartTime       string
}

type BookingResult struct {
	ID       string
	StartsAt time.Time
	EndsAt   time.Time
	Steps    []model.PackageStep
}

// Book validates the request, re-derives availability and commits the
// appointment. The availability recheck runs against live data right before
// the insert; a concurrent booking that slips between the check and the
// commit is caught by the storage conflict and surfaced as ErrSlotTaken.
func (s *Service) Book(ctx context.Context, req BookingRequest) (BookingResult, error) {
	req = normalizeRequest(req)
	if len(req.ServiceIDs) == 0 || len(req.ProfessionalIDs) == 0 ||
		req.ClientName == "" || req.ClientPhone == "" || req.DateKey == "" || req.StartTime == "" {
		return BookingResult{}, ErrMissingFields
	}
	if len(req.ServiceIDs) != len(req.ProfessionalIDs) {
		return BookingResult{}, ErrItemMismatch
	}
	if _, err := schedule.Day(req.DateKey); err != nil {
		return BookingResult{}, ErrBadDate
	}

	pairs, err := s.catalog.OfferedPairs(ctx, req.ServiceIDs, req.ProfessionalIDs)
	if err != nil {
		return BookingResult{}, err
	}
	for i := range req.ServiceIDs {
		key := req.ServiceIDs[i] + "|" + req.ProfessionalIDs[i]
		if _, ok := pairs[key]; !ok {
			return BookingResult{}, fmt.Errorf("%w: service %s with professional %s",
				ErrNotOffered, req.ServiceIDs[i], req.ProfessionalIDs[i])
		}
	}

	items, err := s.resolveItems(ctx, req.ServiceIDs, req.ProfessionalIDs)
	if err != nil {
		return BookingResult{}, err
	}

	slots, err := s.packageSlotsForItems(ctx, req.DateKey, items)
	if err != nil {
		return BookingResult{}, err
	}
	if !containsSlot(slots, req.StartTime) {
		return BookingResult{}, ErrSlotTaken
	}

	sched, err := schedule.BuildSchedule(req.DateKey, req.StartTime, items)
	if err != nil {
		return BookingResult{}, ErrBadDate
	}
	if sched.StartsAt == nil || sched.EndsAt == nil {
		return BookingResult{}, ErrSlotTaken
	}

	appt := &model.Appointment{
		ServiceID:      req.ServiceIDs[0],
		ProfessionalID: req.ProfessionalIDs[0],
		ClientName:     req.ClientName,
		ClientPhone:    req.ClientPhone,
		ClientEmail:    req.ClientEmail,
		StartsAt:       *sched.StartsAt,
		EndsAt:         *sched.EndsAt,
		Status:         model.StatusConfirmed,
	}
	id, err := s.writer.CreateBooking(ctx, appt, sched.Steps)
	if err != nil {
		if storage.IsConflict(err) {
			s.logger.Warn("booking lost race for slot",
				"date", req.DateKey, "time", req.StartTime)
			return BookingResult{}, ErrSlotTaken
		}
		return BookingResult{}, err
	}

	s.logger.Info("appointment booked",
		"appointment_id", id,
		"date", req.DateKey,
		"time", req.StartTime,
		"steps", len(sched.Steps))
	return BookingResult{
		ID:       id,
		StartsAt: *sched.StartsAt,
		EndsAt:   *sched.EndsAt,
		Steps:    sched.Steps,
	}, nil
}

// Cancel marks an appointment cancelled, freeing its time for rebooking.
// Cancelling twice succeeds and changes nothing.
func (s *Service) Cancel(ctx context.Context, id string) (model.Appointment, error) {
	if id == "" {
		return model.Appointment{}, ErrNotFound
	}
	appt, err := s.writer.CancelBooking(ctx, id)
	if err != nil {
		if storage.IsNotFound(err) {
			return model.Appointment{}, ErrNotFound
		}
		return model.Appointment{}, err
	}
	s.logger.Info("appointment cancelled", "appointment_id", appt.ID)
	return appt, nil
}

// AgendaEntry is an appointment with its persisted package steps.
type AgendaEntry struct {
	Appointment model.Appointment
	Steps       []model.PackageStep
}

func (s *Service) DayAgenda(ctx context.Context, dateKey string) ([]AgendaEntry, error) {
	from, to, err := schedule.DayBounds(dateKey)
	if err != nil {
		return nil, ErrBadDate
	}
	appts, err := s.busy.ListDay(ctx, from, to)
	if err != nil {
		return nil, err
	}
	entries := make([]AgendaEntry, 0, len(appts))
	for _, appt := range appts {
		steps, err := s.busy.ListSteps(ctx, appt.ID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, AgendaEntry{Appointment: appt, Steps: steps})
	}
	return entries, nil
}

func (s *Service) resolveHours(ctx context.Context, dateKey string) (schedule.Hours, bool, error) {
	rules, err := s.hours.ListRules(ctx)
	if err != nil {
		return schedule.Hours{}, false, err
	}
	day, err := schedule.Day(dateKey)
	if err != nil {
		return schedule.Hours{}, false, ErrBadDate
	}
	hours, open := schedule.ResolveHours(day, rules)
	return hours, open, nil
}

// busyIndex assembles every busy span for the day: confirmed appointment
// spans, persisted package steps and manual blocks, fetched concurrently.
func (s *Service) busyIndex(ctx context.Context, dateKey string, professionalIDs []string) (*schedule.BusyIndex, error) {
	from, to, err := schedule.DayBounds(dateKey)
	if err != nil {
		return nil, ErrBadDate
	}
	ids := dedupe(professionalIDs)

	var (
		confirmed []storage.ProfessionalInterval
		steps     []storage.ProfessionalInterval
		blocks    []model.Block
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		confirmed, err = s.busy.ConfirmedIntervals(gctx, ids, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		steps, err = s.busy.StepIntervals(gctx, ids, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		blocks, err = s.blocks.Overlapping(gctx, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	idx := schedule.NewBusyIndex()
	for _, iv := range confirmed {
		idx.Add(iv.ProfessionalID, schedule.Interval{Start: iv.StartsAt, End: iv.EndsAt})
	}
	for _, iv := range steps {
		idx.Add(iv.ProfessionalID, schedule.Interval{Start: iv.StartsAt, End: iv.EndsAt})
	}
	for _, b := range blocks {
		idx.Add(b.ProfessionalID, schedule.Interval{Start: b.StartsAt, End: b.EndsAt})
	}
	return idx, nil
}

// resolveItems pairs up service and professional selections and fills in each
// service's configured duration.
func (s *Service) resolveItems(ctx context.Context, serviceIDs, professionalIDs []string) ([]model.PackageItem, error) {
	durations, err := s.catalog.ServiceDurations(ctx, serviceIDs)
	if err != nil {
		return nil, err
	}
	items := make([]model.PackageItem, 0, len(serviceIDs))
	for i := range serviceIDs {
		d := durations[serviceIDs[i]]
		if d <= 0 {
			return nil, fmt.Errorf("%w: service %s", ErrDurationUnknown, serviceIDs[i])
		}
		items = append(items, model.PackageItem{
			ServiceID:       serviceIDs[i],
			ProfessionalID:  professionalIDs[i],
			DurationMinutes: d,
		})
	}
	return items, nil
}

func normalizeRequest(req BookingRequest) BookingRequest {
	req.ServiceIDs = trimAll(req.ServiceIDs)
	req.ProfessionalIDs = trimAll(req.ProfessionalIDs)
	req.ClientName = strings.TrimSpace(req.ClientName)
	req.ClientPhone = strings.TrimSpace(req.ClientPhone)
	req.ClientEmail = strings.TrimSpace(req.ClientEmail)
	req.DateKey = strings.TrimSpace(req.DateKey)
	req.StartTime = strings.TrimSpace(req.StartTime)
	return req
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func containsSlot(slots []string, want string) bool {
	for _, s := range slots {
		if s == want {
			return true
		}
	}
	return false
}
