package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gfranca/atelieagenda/internal/db"
	"github.com/gfranca/atelieagenda/internal/model"
	"github.com/gfranca/atelieagenda/internal/outbox"
)

const (
	EventAppointmentConfirmed = "booking.appointment.confirmed.v1"
	EventAppointmentCancelled = "booking.appointment.cancelled.v1"
)

// BookingWriter owns the write-side transactions: appointment + steps + the
// outbox event commit together or not at all.
type BookingWriter struct {
	pool   *db.Pool
	appts  *AppointmentRepository
	events *outbox.Repository
}

func NewBookingWriter(pool *db.Pool, appts *AppointmentRepository, events *outbox.Repository) *BookingWriter {
	return &BookingWriter{pool: pool, appts: appts, events: events}
}

func (w *BookingWriter) CreateBooking(ctx context.Context, appt *model.Appointment, steps []model.PackageStep) (string, error) {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	id, err := w.appts.Create(ctx, tx, appt, steps)
	if err != nil {
		return "", err
	}

	stepPayloads := make([]map[string]any, 0, len(steps))
	for _, step := range steps {
		stepPayloads = append(stepPayloads, map[string]any{
			"service_id":      step.ServiceID,
			"professional_id": step.ProfessionalID,
			"starts_at":       step.StartsAt.UTC().Format(time.RFC3339),
			"ends_at":         step.EndsAt.UTC().Format(time.RFC3339),
			"order_index":     step.OrderIndex,
		})
	}
	payload, err := json.Marshal(map[string]any{
		"appointment_id": id,
		"client_name":    appt.ClientName,
		"client_phone":   appt.ClientPhone,
		"client_email":   appt.ClientEmail,
		"starts_at":      appt.StartsAt.UTC().Format(time.RFC3339),
		"ends_at":        appt.EndsAt.UTC().Format(time.RFC3339),
		"steps":          stepPayloads,
	})
	if err != nil {
		return "", err
	}
	if err := w.events.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   id,
		EventType:     EventAppointmentConfirmed,
		Payload:       payload,
	}); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

// CancelBooking flips a confirmed appointment to cancelled. Cancelling an
// already-cancelled appointment is a no-op, not an error.
func (w *BookingWriter) CancelBooking(ctx context.Context, id string) (model.Appointment, error) {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return model.Appointment{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := w.appts.GetForUpdate(ctx, tx, id)
	if err != nil {
		return model.Appointment{}, err
	}
	if appt.Status == model.StatusCancelled {
		return appt, nil
	}

	if err := w.appts.Cancel(ctx, tx, appt.ID); err != nil {
		return model.Appointment{}, err
	}

	payload, err := json.Marshal(map[string]any{
		"appointment_id": appt.ID,
		"client_name":    appt.ClientName,
		"client_phone":   appt.ClientPhone,
		"starts_at":      appt.StartsAt.UTC().Format(time.RFC3339),
		"ends_at":        appt.EndsAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return model.Appointment{}, err
	}
	if err := w.events.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     EventAppointmentCancelled,
		Payload:       payload,
	}); err != nil {
		return model.Appointment{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Appointment{}, err
	}
	appt.Status = model.StatusCancelled
	return appt, nil
}
