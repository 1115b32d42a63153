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

type availabilityRuleRepository struct {
	db *sqlx.DB
}

func NewAvailabilityRuleRepository(db *sqlx.DB) repository.AvailabilityRuleRepository {
	return &availabilityRuleRepository{db: db}
}

const ruleColumns = `
	id, doctor_id, kind, day_of_week, date, start_time, end_time,
	is_blocked, block_reason, created_at, updated_at
`

func (r *availabilityRuleRepository) Create(ctx context.Context, rule *model.AvailabilityRule) error {
	query := `
		INSERT INTO availability_rules (
			id, doctor_id, kind, day_of_week, date, start_time, end_time,
			is_blocked, block_reason, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		rule.ID,
		rule.DoctorID,
		rule.Kind,
		rule.DayOfWeek,
		rule.Date,
		rule.StartTime,
		rule.EndTime,
		rule.IsBlocked,
		rule.BlockReason,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create availability rule: %w", err)
	}
	return nil
}

func (r *availabilityRuleRepository) Get(ctx context.Context, id uuid.UUID) (*model.AvailabilityRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM availability_rules WHERE id = $1`

	var rule model.AvailabilityRule
	if err := r.db.GetContext(ctx, &rule, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get availability rule: %w", err)
	}
	return &rule, nil
}

func (r *availabilityRuleRepository) Update(ctx context.Context, rule *model.AvailabilityRule) error {
	query := `
		UPDATE availability_rules
		SET start_time = $1, end_time = $2, is_blocked = $3,
		    block_reason = $4, updated_at = $5
		WHERE id = $6
	`
	rule.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		rule.StartTime,
		rule.EndTime,
		rule.IsBlocked,
		rule.BlockReason,
		rule.UpdatedAt,
		rule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update availability rule: %w", err)
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

func (r *availabilityRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM availability_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete availability rule: %w", err)
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

func (r *availabilityRuleRepository) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.AvailabilityRule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM availability_rules
		WHERE doctor_id = $1
		ORDER BY kind, day_of_week, date, start_time
	`
	var rules []*model.AvailabilityRule
	if err := r.db.SelectContext(ctx, &rules, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list availability rules: %w", err)
	}
	return rules, nil
}
