package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gfranca/atelieagenda/internal/db"
	"github.com/gfranca/atelieagenda/internal/model"
)

type AppointmentRepository struct {
	pool *db.Pool
}

func NewAppointmentRepository(pool *db.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

func (r *AppointmentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// ProfessionalInterval is a busy span attributed to one professional.
type ProfessionalInterval struct {
	ProfessionalID string
	StartsAt       time.Time
	EndsAt         time.Time
}

// ConfirmedIntervals returns the overall spans of confirmed appointments
// overlapping [from, to) for the given professionals. Cancelled appointments
// never block.
func (r *AppointmentRepository) ConfirmedIntervals(ctx context.Context, professionalIDs []string, from, to time.Time) ([]ProfessionalInterval, error) {
	if len(professionalIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT professional_id::text, starts_at, ends_at
		FROM appointments
		WHERE status = 'confirmed'
			AND professional_id = ANY($1)
			AND starts_at < $3
			AND ends_at > $2
	`, professionalIDs, from, to)
	if err != nil {
		return nil, err
	}
	return scanProfessionalIntervals(rows)
}

// StepIntervals returns persisted package step spans overlapping [from, to).
// Steps carry per-professional times tighter than the parent appointment's
// overall span, so both sources feed the busy index.
func (r *AppointmentRepository) StepIntervals(ctx context.Context, professionalIDs []string, from, to time.Time) ([]ProfessionalInterval, error) {
	if len(professionalIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT s.professional_id::text, s.starts_at, s.ends_at
		FROM appointment_services s
		JOIN appointments a ON a.id = s.appointment_id
		WHERE a.status = 'confirmed'
			AND s.professional_id = ANY($1)
			AND s.starts_at < $3
			AND s.ends_at > $2
	`, professionalIDs, from, to)
	if err != nil {
		return nil, err
	}
	return scanProfessionalIntervals(rows)
}

func scanProfessionalIntervals(rows pgx.Rows) ([]ProfessionalInterval, error) {
	defer rows.Close()
	var out []ProfessionalInterval
	for rows.Next() {
		var iv ProfessionalInterval
		if err := rows.Scan(&iv.ProfessionalID, &iv.StartsAt, &iv.EndsAt); err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// Create inserts the parent appointment and its ordered steps in the given
// transaction. The schema's exclusion constraints on confirmed
// (professional, time range) rows reject overlapping inserts; callers detect
// the race with IsConflict.
func (r *AppointmentRepository) Create(ctx context.Context, tx pgx.Tx, appt *model.Appointment, steps []model.PackageStep) (string, error) {
	id := uuid.NewString()
	_, err := tx.Exec(ctx, `
		INSERT INTO appointments
			(id, service_id, professional_id, client_name, client_phone, client_email, starts_at, ends_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, id, appt.ServiceID, appt.ProfessionalID, appt.ClientName, appt.ClientPhone, appt.ClientEmail,
		appt.StartsAt, appt.EndsAt, model.StatusConfirmed)
	if err != nil {
		return "", err
	}

	for _, step := range steps {
		_, err := tx.Exec(ctx, `
			INSERT INTO appointment_services
				(id, appointment_id, service_id, professional_id, starts_at, ends_at, order_index, duration_minutes_snapshot)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, uuid.NewString(), id, step.ServiceID, step.ProfessionalID,
			step.StartsAt, step.EndsAt, step.OrderIndex, step.DurationMinutes)
		if err != nil {
			return "", err
		}
	}
	return id, nil
}

func (r *AppointmentRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (model.Appointment, error) {
	var appt model.Appointment
	err := tx.QueryRow(ctx, `
		SELECT id::text, service_id::text, professional_id::text, client_name, client_phone,
			COALESCE(client_email, ''), starts_at, ends_at, status, created_at
		FROM appointments
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(
		&appt.ID,
		&appt.ServiceID,
		&appt.ProfessionalID,
		&appt.ClientName,
		&appt.ClientPhone,
		&appt.ClientEmail,
		&appt.StartsAt,
		&appt.EndsAt,
		&appt.Status,
		&appt.CreatedAt,
	)
	if err != nil {
		return model.Appointment{}, err
	}
	return appt, nil
}

func (r *AppointmentRepository) Cancel(ctx context.Context, tx pgx.Tx, id string) error {
	_, err := tx.Exec(ctx, `
		UPDATE appointments
		SET status = 'cancelled'
		WHERE id = $1
	`, id)
	return err
}

// ListDay returns confirmed and cancelled appointments whose span overlaps
// [from, to), newest-first bookings sorted by start.
func (r *AppointmentRepository) ListDay(ctx context.Context, from, to time.Time) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, service_id::text, professional_id::text, client_name, client_phone,
			COALESCE(client_email, ''), starts_at, ends_at, status, created_at
		FROM appointments
		WHERE starts_at < $2 AND ends_at > $1
		ORDER BY starts_at ASC
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		var appt model.Appointment
		if err := rows.Scan(
			&appt.ID,
			&appt.ServiceID,
			&appt.ProfessionalID,
			&appt.ClientName,
			&appt.ClientPhone,
			&appt.ClientEmail,
			&appt.StartsAt,
			&appt.EndsAt,
			&appt.Status,
			&appt.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// ListSteps returns the ordered steps of one appointment.
func (r *AppointmentRepository) ListSteps(ctx context.Context, appointmentID string) ([]model.PackageStep, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT service_id::text, professional_id::text, duration_minutes_snapshot, starts_at, ends_at, order_index
		FROM appointment_services
		WHERE appointment_id = $1
		ORDER BY order_index ASC
	`, appointmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PackageStep
	for rows.Next() {
		var step model.PackageStep
		if err := rows.Scan(
			&step.ServiceID,
			&step.ProfessionalID,
			&step.DurationMinutes,
			&step.StartsAt,
			&step.EndsAt,
			&step.OrderIndex,
		); err != nil {
			return nil, err
		}
		out = append(out, step)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// IsConflict reports an exclusion-constraint violation (overlapping confirmed
// range for the same professional). The availability check and the insert are
// separate statements, so two concurrent bookings can both pass validation;
// the constraint is what turns that race into a clean conflict outcome.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
