package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pinewood/booking-api/internal/config"
	"github.com/pinewood/booking-api/internal/model"
	"github.com/pinewood/booking-api/internal/repository"
	"github.com/pinewood/booking-api/internal/schedule"
	"github.com/pinewood/booking-api/internal/service/notification"
	apperrors "github.com/pinewood/booking-api/pkg/errors"
	"github.com/pinewood/booking-api/pkg/lock"
	"github.com/pinewood/booking-api/pkg/logger"
)

const (
	ruleCacheTTL = 30 * time.Second
	typeCacheTTL = 5 * time.Minute
)

var bookingOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "booking_attempts_total",
	Help: "Booking attempts by operation and outcome",
}, []string{"operation", "outcome"})

// Service composes availability resolution, slot generation, conflict
// checking and the booking transaction. All scheduling math is pure and
// request scoped; the only shared mutable resource is the appointment
// store, whose overlap constraint is the authoritative race guard.
type Service struct {
	appointments repository.AppointmentRepository
	rules        repository.AvailabilityRuleRepository
	types        repository.AppointmentTypeRepository
	notifier     notification.Notifier
	locker       lock.Locker
	log          *logger.Logger
	policy       config.BookingConfig
	loc          *time.Location
	cache        *gocache.Cache

	now func() time.Time
}

func NewService(
	appointments repository.AppointmentRepository,
	rules repository.AvailabilityRuleRepository,
	types repository.AppointmentTypeRepository,
	notifier notification.Notifier,
	locker lock.Locker,
	log *logger.Logger,
	policy config.BookingConfig,
	c *gocache.Cache,
) *Service {
	loc, err := policy.Location()
	if err != nil {
		// Config validation rejects bad timezones at startup.
		loc = time.UTC
	}
	return &Service{
		appointments: appointments,
		rules:        rules,
		types:        types,
		notifier:     notifier,
		locker:       locker,
		log:          log,
		policy:       policy,
		loc:          loc,
		cache:        c,
		now:          time.Now,
	}
}

// doctorRules loads a doctor's availability rules, briefly cached to keep
// slot browsing cheap. Rule writes flush the key.
func (s *Service) doctorRules(ctx context.Context, doctorID uuid.UUID) ([]*model.AvailabilityRule, error) {
	key := "rules:" + doctorID.String()
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			return cached.([]*model.AvailabilityRule), nil
		}
	}
	rules, err := s.rules.ListForDoctor(ctx, doctorID)
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}
	if s.cache != nil {
		s.cache.Set(key, rules, ruleCacheTTL)
	}
	return rules, nil
}

func (s *Service) appointmentType(ctx context.Context, id uuid.UUID) (*model.AppointmentType, error) {
	key := "type:" + id.String()
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			return cached.(*model.AppointmentType), nil
		}
	}
	t, err := s.types.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.InvalidAppointmentType()
		}
		return nil, apperrors.StoreUnavailable(err)
	}
	if s.cache != nil {
		s.cache.Set(key, t, typeCacheTTL)
	}
	return t, nil
}

// GetOpenIntervals resolves the bookable ranges of one calendar day from
// the doctor's recurring and one-off rules. A day without rules is closed.
func (s *Service) GetOpenIntervals(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]schedule.Interval, error) {
	rules, err := s.doctorRules(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return schedule.OpenIntervals(s.dayOf(date), toScheduleRules(rules, s.loc)), nil
}

// GetActiveAppointments returns the reserved intervals of all pending and
// confirmed appointments in the range.
func (s *Service) GetActiveAppointments(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]schedule.Interval, error) {
	appointments, err := s.appointments.ListActive(ctx, doctorID, from, to, nil)
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}
	intervals := make([]schedule.Interval, 0, len(appointments))
	for _, a := range appointments {
		intervals = append(intervals, a.Interval())
	}
	return intervals, nil
}

// GetAvailableSlots computes the slot grid offered to patients for one day
// and appointment type: candidates from the open intervals, minus slots
// conflicting with existing appointments (buffer applied) and slots outside
// the booking window policy.
func (s *Service) GetAvailableSlots(ctx context.Context, doctorID, typeID uuid.UUID, date time.Time) ([]schedule.Slot, error) {
	apptType, err := s.appointmentType(ctx, typeID)
	if err != nil {
		return nil, err
	}
	if !apptType.IsActive {
		return nil, apperrors.InvalidAppointmentType()
	}

	open, err := s.GetOpenIntervals(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	day := s.dayOf(date)
	buffer := s.policy.Buffer()
	existing, err := s.GetActiveAppointments(ctx, doctorID, day.Add(-buffer), day.Add(24*time.Hour+buffer))
	if err != nil {
		return nil, err
	}

	duration := time.Duration(apptType.DurationMinutes) * time.Minute
	candidates := schedule.GenerateSlots(open, duration, buffer)

	now := s.now()
	offered := make([]schedule.Slot, 0, len(candidates))
	for _, slot := range candidates {
		if s.checkBookingWindow(now, slot.Interval.Start) != nil {
			continue
		}
		if schedule.BlockedByExisting(slot.Interval, existing, buffer) {
			continue
		}
		offered = append(offered, slot)
	}
	return offered, nil
}

// checkBookingWindow enforces minimum notice and the advance-booking
// horizon.
func (s *Service) checkBookingWindow(now, start time.Time) error {
	if start.Before(now.Add(s.policy.MinimumNotice())) {
		return apperrors.OutOfBookingWindow(fmt.Sprintf(
			"appointments must be booked at least %d hours in advance", s.policy.MinimumNoticeHours))
	}
	if start.After(now.Add(s.policy.MaxAdvance())) {
		return apperrors.OutOfBookingWindow(fmt.Sprintf(
			"appointments cannot be booked more than %d days in advance", s.policy.AdvanceBookingDays))
	}
	return nil
}

// validate runs the admissibility checks for a proposed interval in order:
// booking window, containment in open availability, then conflicts against
// the doctor's active appointments. It is a pre-check for fast feedback;
// the storage constraint re-decides at commit time.
func (s *Service) validate(ctx context.Context, doctorID uuid.UUID, candidate schedule.Interval, excludeID *uuid.UUID) error {
	if err := s.checkBookingWindow(s.now(), candidate.Start); err != nil {
		return err
	}

	open, err := s.GetOpenIntervals(ctx, doctorID, candidate.Start.In(s.loc))
	if err != nil {
		return err
	}
	if !schedule.WithinOpen(candidate, open) {
		return apperrors.OutsideAvailability()
	}

	buffer := s.policy.Buffer()
	existing, err := s.appointments.ListActive(ctx, doctorID,
		candidate.Start.Add(-buffer), candidate.End.Add(buffer), excludeID)
	if err != nil {
		return apperrors.StoreUnavailable(err)
	}
	intervals := make([]schedule.Interval, 0, len(existing))
	for _, a := range existing {
		intervals = append(intervals, a.Interval())
	}
	if schedule.BlockedByExisting(candidate, intervals, buffer) {
		return apperrors.SlotUnavailable()
	}
	return nil
}

// BookAppointment validates and atomically reserves the proposed interval,
// then dispatches a best-effort confirmation email. Exactly one of two
// concurrent attempts on overlapping intervals can commit; the loser gets
// the same rejection as a pre-check conflict.
func (s *Service) BookAppointment(ctx context.Context, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	apptType, err := s.appointmentType(ctx, req.AppointmentTypeID)
	if err != nil {
		bookingOutcomes.WithLabelValues("book", "invalid_type").Inc()
		return nil, err
	}
	if !apptType.IsActive {
		bookingOutcomes.WithLabelValues("book", "invalid_type").Inc()
		return nil, apperrors.InvalidAppointmentType()
	}

	candidate := schedule.Interval{
		Start: req.StartTime,
		End:   req.StartTime.Add(time.Duration(apptType.DurationMinutes) * time.Minute),
	}

	var created *model.Appointment
	err = s.locker.WithLock(ctx, req.DoctorID, func(lockCtx context.Context) error {
		if err := s.validate(lockCtx, req.DoctorID, candidate, nil); err != nil {
			return err
		}

		now := s.now()
		appt := &model.Appointment{
			Base: model.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			DoctorID:          req.DoctorID,
			AppointmentTypeID: req.AppointmentTypeID,
			StartTime:         candidate.Start,
			EndTime:           candidate.End,
			Status:            model.AppointmentStatusPending,
			PatientName:       req.PatientName,
			PatientEmail:      req.PatientEmail,
			PatientPhone:      req.PatientPhone,
			Notes:             req.Notes,
			BookingToken:      uuid.New(),
		}

		if err := s.appointments.Create(lockCtx, appt); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return apperrors.SlotUnavailable()
			}
			return apperrors.StoreUnavailable(err)
		}
		created = appt
		return nil
	})
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			err = apperrors.SlotUnavailable()
		}
		bookingOutcomes.WithLabelValues("book", outcomeLabel(err)).Inc()
		return nil, err
	}

	bookingOutcomes.WithLabelValues("book", "committed").Inc()
	s.log.Info("appointment booked",
		"appointment_id", created.ID,
		"doctor_id", created.DoctorID,
		"start_time", created.StartTime)
	s.notifyAsync(func(ctx context.Context) error {
		return s.notifier.AppointmentBooked(ctx, created)
	})
	return created, nil
}

// ConfirmAppointment moves a pending appointment to confirmed. Confirming
// twice is a no-op; cancelled appointments are terminal.
func (s *Service) ConfirmAppointment(ctx context.Context, token uuid.UUID) (*model.Appointment, error) {
	appt, err := s.GetAppointmentByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if appt.Status == model.AppointmentStatusCancelled {
		return nil, apperrors.AlreadyCancelled()
	}
	if appt.Status == model.AppointmentStatusConfirmed {
		return appt, nil
	}

	appt.Status = model.AppointmentStatusConfirmed
	if err := s.appointments.UpdateStatus(ctx, appt); err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}

	s.notifyAsync(func(ctx context.Context) error {
		return s.notifier.AppointmentConfirmed(ctx, appt)
	})
	return appt, nil
}

// CancelAppointment cancels an active appointment and records who did it.
// Cancelling an already cancelled appointment fails with AlreadyCancelled
// and leaves the original cancellation metadata untouched.
func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID, actor model.CancelActor, reason string) (*model.Appointment, error) {
	appt, err := s.appointments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, apperrors.StoreUnavailable(err)
	}
	return s.cancel(ctx, appt, actor, reason)
}

// CancelAppointmentByToken is the guest cancellation path; the booking
// token is the only credential.
func (s *Service) CancelAppointmentByToken(ctx context.Context, token uuid.UUID, reason string) (*model.Appointment, error) {
	appt, err := s.GetAppointmentByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.cancel(ctx, appt, model.CancelActorPatient, reason)
}

func (s *Service) cancel(ctx context.Context, appt *model.Appointment, actor model.CancelActor, reason string) (*model.Appointment, error) {
	if appt.Status == model.AppointmentStatusCancelled {
		bookingOutcomes.WithLabelValues("cancel", "already_cancelled").Inc()
		return nil, apperrors.AlreadyCancelled()
	}

	now := s.now()
	appt.Status = model.AppointmentStatusCancelled
	appt.CancelledAt = &now
	appt.CancelledBy = &actor
	if reason != "" {
		appt.CancelReason = &reason
	}

	if err := s.appointments.UpdateStatus(ctx, appt); err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}

	bookingOutcomes.WithLabelValues("cancel", "committed").Inc()
	s.notifyAsync(func(ctx context.Context) error {
		return s.notifier.AppointmentCancelled(ctx, appt)
	})
	return appt, nil
}

// RescheduleAppointment moves an active appointment to a new start,
// re-running full validation with the appointment excluded from its own
// conflict check, then updates the interval atomically. The duration stays
// that of the original appointment type.
func (s *Service) RescheduleAppointment(ctx context.Context, id uuid.UUID, newStart time.Time) (*model.Appointment, error) {
	appt, err := s.appointments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, apperrors.StoreUnavailable(err)
	}
	if appt.Status == model.AppointmentStatusCancelled {
		return nil, apperrors.AlreadyCancelled()
	}

	candidate := schedule.Interval{
		Start: newStart,
		End:   newStart.Add(appt.EndTime.Sub(appt.StartTime)),
	}
	oldStart := appt.StartTime

	var updated *model.Appointment
	err = s.locker.WithLock(ctx, appt.DoctorID, func(lockCtx context.Context) error {
		if err := s.validate(lockCtx, appt.DoctorID, candidate, &appt.ID); err != nil {
			return err
		}

		moved, err := s.appointments.Reschedule(lockCtx, appt.ID, candidate.Start, candidate.End)
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrConflict):
				return apperrors.SlotUnavailable()
			case errors.Is(err, repository.ErrNotFound):
				// Row flipped to cancelled between read and update.
				return apperrors.AlreadyCancelled()
			default:
				return apperrors.StoreUnavailable(err)
			}
		}
		updated = moved
		return nil
	})
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			err = apperrors.SlotUnavailable()
		}
		bookingOutcomes.WithLabelValues("reschedule", outcomeLabel(err)).Inc()
		return nil, err
	}

	bookingOutcomes.WithLabelValues("reschedule", "committed").Inc()
	s.log.Info("appointment rescheduled",
		"appointment_id", updated.ID,
		"old_start", oldStart,
		"new_start", updated.StartTime)
	s.notifyAsync(func(ctx context.Context) error {
		return s.notifier.AppointmentRescheduled(ctx, updated, oldStart)
	})
	return updated, nil
}

// GetAppointmentByToken resolves an appointment through its guest booking
// token.
func (s *Service) GetAppointmentByToken(ctx context.Context, token uuid.UUID) (*model.Appointment, error) {
	appt, err := s.appointments.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, apperrors.StoreUnavailable(err)
	}
	return appt, nil
}

// ListAppointments is the admin listing over optional filters.
func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.appointments.List(ctx, filters)
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}
	return appointments, nil
}

// notifyAsync dispatches a notification without blocking or failing the
// committed transaction. Errors are already logged by the notifier.
func (s *Service) notifyAsync(fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = fn(ctx)
	}()
}

// dayOf anchors the civil calendar day of t at midnight in the practice
// timezone. The wall-clock date is taken as-is, never shifted through an
// instant conversion: a date-only request parameter parsed at UTC midnight
// must resolve the same calendar day regardless of the practice timezone.
// Callers holding an instant convert it into the practice timezone first.
func (s *Service) dayOf(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, s.loc)
}

func toScheduleRules(rules []*model.AvailabilityRule, loc *time.Location) []schedule.Rule {
	out := make([]schedule.Rule, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.ToScheduleRule(loc))
	}
	return out
}

func outcomeLabel(err error) string {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrOutOfBookingWindow:
		return "out_of_window"
	case apperrors.ErrOutsideAvailability:
		return "outside_availability"
	case apperrors.ErrSlotUnavailable:
		return "slot_unavailable"
	case apperrors.ErrAlreadyCancelled:
		return "already_cancelled"
	case apperrors.ErrStoreUnavailable:
		return "store_unavailable"
	default:
		return "error"
	}
}
