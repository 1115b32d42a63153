package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pinewood/booking-api/internal/model"
	"github.com/pinewood/booking-api/internal/repository"
)

const (
	pqUniqueViolation    = "23505"
	pqExclusionViolation = "23P01"
)

type appointmentRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

// isWriteConflict detects the appointments_no_overlap exclusion constraint
// (and any unique violation) firing at commit time.
func isWriteConflict(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqExclusionViolation || pqErr.Code == pqUniqueViolation
	}
	return false
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, doctor_id, appointment_type_id, start_time, end_time,
			status, patient_name, patient_email, patient_phone, notes,
			booking_token, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.DoctorID,
		appointment.AppointmentTypeID,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Status,
		appointment.PatientName,
		appointment.PatientEmail,
		appointment.PatientPhone,
		appointment.Notes,
		appointment.BookingToken,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		if isWriteConflict(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

const appointmentColumns = `
	id, doctor_id, appointment_type_id, start_time, end_time,
	status, patient_name, patient_email, patient_phone, notes,
	booking_token, cancelled_at, cancelled_by, cancel_reason,
	reminder_sent_at, created_at, updated_at
`

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) GetByToken(ctx context.Context, token uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE booking_token = $1`

	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get appointment by token: %w", err)
	}
	return &appointment, nil
}

// UpdateStatus persists status transitions and cancellation metadata. The
// interval never changes here; reschedules go through Reschedule so the
// overlap constraint is re-evaluated.
func (r *appointmentRepository) UpdateStatus(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET status = $1, cancelled_at = $2, cancelled_by = $3,
		    cancel_reason = $4, updated_at = $5
		WHERE id = $6
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appointment.Status,
		appointment.CancelledAt,
		appointment.CancelledBy,
		appointment.CancelReason,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Reschedule atomically moves an active appointment to a new interval. If
// the new interval collides with another active appointment's buffered
// range the exclusion constraint rejects the update; the row's own old
// interval never counts against it because the update replaces it in the
// same statement.
func (r *appointmentRepository) Reschedule(ctx context.Context, id uuid.UUID, start, end time.Time) (*model.Appointment, error) {
	query := `
		UPDATE appointments
		SET start_time = $1, end_time = $2, reminder_sent_at = NULL, updated_at = $3
		WHERE id = $4 AND status IN ('pending', 'confirmed')
		RETURNING ` + appointmentColumns

	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, start, end, time.Now(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		if isWriteConflict(err) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("failed to reschedule appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE 1=1`
	var args []interface{}

	if filters.DoctorID != uuid.Nil {
		args = append(args, filters.DoctorID)
		query += fmt.Sprintf(" AND doctor_id = $%d", len(args))
	}
	if filters.Status != "" {
		args = append(args, filters.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if !filters.StartDate.IsZero() {
		args = append(args, filters.StartDate)
		query += fmt.Sprintf(" AND start_time >= $%d", len(args))
	}
	if !filters.EndDate.IsZero() {
		args = append(args, filters.EndDate)
		query += fmt.Sprintf(" AND start_time < $%d", len(args))
	}

	query += " ORDER BY start_time ASC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// ListActive returns pending and confirmed appointments overlapping the
// given range for one doctor. excludeID removes the appointment being
// rescheduled from its own conflict check.
func (r *appointmentRepository) ListActive(ctx context.Context, doctorID uuid.UUID, from, to time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE doctor_id = $1
		AND status IN ('pending', 'confirmed')
		AND start_time < $3
		AND end_time > $2
	`
	args := []interface{}{doctorID, from, to}

	if excludeID != nil {
		query += " AND id != $4"
		args = append(args, *excludeID)
	}

	query += " ORDER BY start_time ASC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list active appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListDueReminders(ctx context.Context, startsBefore time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE status = 'confirmed'
		AND reminder_sent_at IS NULL
		AND start_time > NOW()
		AND start_time <= $1
		ORDER BY start_time ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, startsBefore); err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) MarkReminderSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE appointments SET reminder_sent_at = $1, updated_at = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, at, id); err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	return nil
}
