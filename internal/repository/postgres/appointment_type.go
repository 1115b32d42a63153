package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/pinewood/booking-api/internal/model"
	"github.com/pinewood/booking-api/internal/repository"
)

type appointmentTypeRepository struct {
	db *sqlx.DB
}

func NewAppointmentTypeRepository(db *sqlx.DB) repository.AppointmentTypeRepository {
	return &appointmentTypeRepository{db: db}
}

func (r *appointmentTypeRepository) Create(ctx context.Context, t *model.AppointmentType) error {
	query := `
		INSERT INTO appointment_types (
			id, name, description, duration_minutes, is_active,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.Name, t.Description, t.DurationMinutes, t.IsActive,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment type: %w", err)
	}
	return nil
}

func (r *appointmentTypeRepository) Get(ctx context.Context, id uuid.UUID) (*model.AppointmentType, error) {
	query := `
		SELECT id, name, description, duration_minutes, is_active,
		       created_at, updated_at
		FROM appointment_types
		WHERE id = $1
	`
	var t model.AppointmentType
	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get appointment type: %w", err)
	}
	return &t, nil
}

func (r *appointmentTypeRepository) List(ctx context.Context, activeOnly bool) ([]*model.AppointmentType, error) {
	query := `
		SELECT id, name, description, duration_minutes, is_active,
		       created_at, updated_at
		FROM appointment_types
	`
	if activeOnly {
		query += " WHERE is_active"
	}
	query += " ORDER BY name"

	var types []*model.AppointmentType
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, fmt.Errorf("failed to list appointment types: %w", err)
	}
	return types, nil
}

// Deactivate retires a type without deleting it; historical appointments
// keep their reference.
func (r *appointmentTypeRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE appointment_types SET is_active = FALSE, updated_at = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate appointment type: %w", err)
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
