package availability

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/pinewood/booking-api/internal/config"
	"github.com/pinewood/booking-api/internal/model"
	"github.com/pinewood/booking-api/internal/repository"
	"github.com/pinewood/booking-api/internal/schedule"
	apperrors "github.com/pinewood/booking-api/pkg/errors"
)

// Service manages the admin-maintained availability rules and the calendar
// grid the admin UI renders. Rules are read-only to the booking flow.
type Service struct {
	rules        repository.AvailabilityRuleRepository
	appointments repository.AppointmentRepository
	policy       config.BookingConfig
	loc          *time.Location
	cache        *gocache.Cache
}

func NewService(
	rules repository.AvailabilityRuleRepository,
	appointments repository.AppointmentRepository,
	policy config.BookingConfig,
	c *gocache.Cache,
) *Service {
	loc, err := policy.Location()
	if err != nil {
		loc = time.UTC
	}
	return &Service{
		rules:        rules,
		appointments: appointments,
		policy:       policy,
		loc:          loc,
		cache:        c,
	}
}

// invalidate drops the cached rule set for a doctor after any write so the
// booking flow sees the change immediately.
func (s *Service) invalidate(doctorID uuid.UUID) {
	if s.cache != nil {
		s.cache.Delete("rules:" + doctorID.String())
	}
}

func (s *Service) CreateRule(ctx context.Context, req *model.CreateAvailabilityRuleRequest) (*model.AvailabilityRule, error) {
	now := time.Now()
	rule := &model.AvailabilityRule{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		DoctorID:    req.DoctorID,
		Kind:        req.Kind,
		DayOfWeek:   req.DayOfWeek,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		IsBlocked:   req.IsBlocked,
		BlockReason: req.BlockReason,
	}
	if req.Date != nil {
		date, err := time.ParseInLocation("2006-01-02", *req.Date, s.loc)
		if err != nil {
			return nil, apperrors.BadRequest("invalid date, expected YYYY-MM-DD", err)
		}
		rule.Date = &date
	}
	if err := rule.Validate(); err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}

	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}
	s.invalidate(rule.DoctorID)
	return rule, nil
}

func (s *Service) UpdateRule(ctx context.Context, id uuid.UUID, req *model.UpdateAvailabilityRuleRequest) (*model.AvailabilityRule, error) {
	rule, err := s.rules.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("availability rule", err)
		}
		return nil, apperrors.StoreUnavailable(err)
	}

	if req.StartTime != nil {
		rule.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		rule.EndTime = *req.EndTime
	}
	if req.IsBlocked != nil {
		rule.IsBlocked = *req.IsBlocked
	}
	if req.BlockReason != nil {
		rule.BlockReason = req.BlockReason
	}
	if err := rule.Validate(); err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}

	if err := s.rules.Update(ctx, rule); err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}
	s.invalidate(rule.DoctorID)
	return rule, nil
}

func (s *Service) DeleteRule(ctx context.Context, id uuid.UUID) error {
	rule, err := s.rules.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("availability rule", err)
		}
		return apperrors.StoreUnavailable(err)
	}
	if err := s.rules.Delete(ctx, id); err != nil {
		return apperrors.StoreUnavailable(err)
	}
	s.invalidate(rule.DoctorID)
	return nil
}

func (s *Service) ListRules(ctx context.Context, doctorID uuid.UUID) ([]*model.AvailabilityRule, error) {
	rules, err := s.rules.ListForDoctor(ctx, doctorID)
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}
	return rules, nil
}

// GridState classifies a display slot on the admin calendar.
type GridState string

const (
	GridStateOpen    GridState = "open"
	GridStateBooked  GridState = "booked"
	GridStateBlocked GridState = "blocked"
	GridStateClosed  GridState = "closed"
)

// GridSlot is one cell of the admin day view.
type GridSlot struct {
	Interval schedule.Interval `json:"interval"`
	State    GridState         `json:"state"`
	Reason   string            `json:"reason,omitempty"`
}

// DayGrid renders one doctor day over the configured display window. The
// grid is presentation only: slots shown outside the resolved availability
// are closed or blocked, which is not the same thing as bookable time.
func (s *Service) DayGrid(ctx context.Context, doctorID uuid.UUID, date time.Time, slotMinutes int) ([]GridSlot, error) {
	if slotMinutes <= 0 {
		slotMinutes = 30
	}

	rules, err := s.rules.ListForDoctor(ctx, doctorID)
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}

	// The request carries a civil date; anchor its wall-clock day in the
	// practice timezone instead of shifting the parsed instant, which
	// would land on the previous local day west of UTC.
	year, month, dom := date.Date()
	day := time.Date(year, month, dom, 0, 0, 0, 0, s.loc)

	scheduleRules := make([]schedule.Rule, 0, len(rules))
	for _, r := range rules {
		scheduleRules = append(scheduleRules, r.ToScheduleRule(s.loc))
	}
	open := schedule.OpenIntervals(day, scheduleRules)
	blocked := schedule.BlockedIntervals(day, scheduleRules)

	appointments, err := s.appointments.ListActive(ctx, doctorID, day, day.Add(24*time.Hour), nil)
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}
	booked := make([]schedule.Interval, 0, len(appointments))
	for _, a := range appointments {
		booked = append(booked, a.Interval())
	}

	window, err := s.policy.DisplayWindow()
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	display := window.On(day)
	grid := schedule.GenerateSlots([]schedule.Interval{display},
		time.Duration(slotMinutes)*time.Minute, 0)

	slots := make([]GridSlot, 0, len(grid))
	for _, g := range grid {
		slot := GridSlot{Interval: g.Interval, State: GridStateClosed}
		switch {
		case schedule.BlockedByWindow(g.Interval, booked):
			slot.State = GridStateBooked
		case schedule.BlockedByWindow(g.Interval, blocked):
			slot.State = GridStateBlocked
			slot.Reason = blockReasonFor(rules, day, g.Interval)
		case schedule.WithinOpen(g.Interval, open):
			slot.State = GridStateOpen
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

func blockReasonFor(rules []*model.AvailabilityRule, day time.Time, iv schedule.Interval) string {
	for _, r := range rules {
		if !r.IsBlocked || r.BlockReason == nil {
			continue
		}
		sr := r.ToScheduleRule(day.Location())
		if sr.AppliesTo(day) && sr.Window.On(day).Overlaps(iv) {
			return *r.BlockReason
		}
	}
	return ""
}
