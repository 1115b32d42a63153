package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pinewood/booking-api/internal/model"
)

// Sentinel errors shared by all store implementations. ErrConflict is
// returned when the storage-level uniqueness guarantee rejects a write; it
// is the authoritative double-booking guard, the in-process pre-check is
// only a UX optimization.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("appointment time conflict")
)

type (
	// AppointmentRepository handles appointment persistence. Create and
	// Reschedule are atomic: concurrent writes for overlapping
	// buffer-inclusive intervals of one doctor cannot both succeed.
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		GetByToken(ctx context.Context, token uuid.UUID) (*model.Appointment, error)
		UpdateStatus(ctx context.Context, appointment *model.Appointment) error
		Reschedule(ctx context.Context, id uuid.UUID, start, end time.Time) (*model.Appointment, error)
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		ListActive(ctx context.Context, doctorID uuid.UUID, from, to time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error)
		ListDueReminders(ctx context.Context, startsBefore time.Time) ([]*model.Appointment, error)
		MarkReminderSent(ctx context.Context, id uuid.UUID, at time.Time) error
	}

	// AvailabilityRuleRepository stores the admin-managed schedule rules.
	AvailabilityRuleRepository interface {
		Create(ctx context.Context, rule *model.AvailabilityRule) error
		Get(ctx context.Context, id uuid.UUID) (*model.AvailabilityRule, error)
		Update(ctx context.Context, rule *model.AvailabilityRule) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.AvailabilityRule, error)
	}

	// AppointmentTypeRepository stores the bookable service catalog.
	AppointmentTypeRepository interface {
		Create(ctx context.Context, t *model.AppointmentType) error
		Get(ctx context.Context, id uuid.UUID) (*model.AppointmentType, error)
		List(ctx context.Context, activeOnly bool) ([]*model.AppointmentType, error)
		Deactivate(ctx context.Context, id uuid.UUID) error
	}
)
