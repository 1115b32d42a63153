package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinewood/booking-api/internal/config"
	"github.com/pinewood/booking-api/internal/model"
	"github.com/pinewood/booking-api/internal/repository"
	apperrors "github.com/pinewood/booking-api/pkg/errors"
)

var testDay = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // a Monday

func gridAt(h, m int) time.Time {
	return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC)
}

type stubRuleRepo struct {
	rules  map[uuid.UUID]*model.AvailabilityRule
	getErr error
}

func newStubRuleRepo() *stubRuleRepo {
	return &stubRuleRepo{rules: make(map[uuid.UUID]*model.AvailabilityRule)}
}

func (r *stubRuleRepo) Create(_ context.Context, rule *model.AvailabilityRule) error {
	r.rules[rule.ID] = rule
	return nil
}

func (r *stubRuleRepo) Get(_ context.Context, id uuid.UUID) (*model.AvailabilityRule, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	rule, ok := r.rules[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *rule
	return &cp, nil
}

func (r *stubRuleRepo) Update(_ context.Context, rule *model.AvailabilityRule) error {
	if _, ok := r.rules[rule.ID]; !ok {
		return repository.ErrNotFound
	}
	r.rules[rule.ID] = rule
	return nil
}

func (r *stubRuleRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.rules[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rules, id)
	return nil
}

func (r *stubRuleRepo) ListForDoctor(_ context.Context, doctorID uuid.UUID) ([]*model.AvailabilityRule, error) {
	var out []*model.AvailabilityRule
	for _, rule := range r.rules {
		if rule.DoctorID == doctorID {
			out = append(out, rule)
		}
	}
	return out, nil
}

// stubAppointmentRepo only serves ListActive; the availability service never
// writes appointments.
type stubAppointmentRepo struct {
	active []*model.Appointment
}

func (r *stubAppointmentRepo) Create(_ context.Context, _ *model.Appointment) error { return nil }
func (r *stubAppointmentRepo) Get(_ context.Context, _ uuid.UUID) (*model.Appointment, error) {
	return nil, repository.ErrNotFound
}
func (r *stubAppointmentRepo) GetByToken(_ context.Context, _ uuid.UUID) (*model.Appointment, error) {
	return nil, repository.ErrNotFound
}
func (r *stubAppointmentRepo) UpdateStatus(_ context.Context, _ *model.Appointment) error { return nil }
func (r *stubAppointmentRepo) Reschedule(_ context.Context, _ uuid.UUID, _, _ time.Time) (*model.Appointment, error) {
	return nil, repository.ErrNotFound
}
func (r *stubAppointmentRepo) List(_ context.Context, _ *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}
func (r *stubAppointmentRepo) ListActive(_ context.Context, doctorID uuid.UUID, from, to time.Time, _ *uuid.UUID) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range r.active {
		if a.DoctorID == doctorID && a.StartTime.Before(to) && a.EndTime.After(from) {
			out = append(out, a)
		}
	}
	return out, nil
}
func (r *stubAppointmentRepo) ListDueReminders(_ context.Context, _ time.Time) ([]*model.Appointment, error) {
	return nil, nil
}
func (r *stubAppointmentRepo) MarkReminderSent(_ context.Context, _ uuid.UUID, _ time.Time) error {
	return nil
}

func testPolicy() config.BookingConfig {
	return config.BookingConfig{
		BufferMinutes:      15,
		MinimumNoticeHours: 24,
		AdvanceBookingDays: 90,
		Timezone:           "UTC",
		DisplayWindowStart: "07:00",
		DisplayWindowEnd:   "21:00",
	}
}

func TestCreateRule(t *testing.T) {
	t.Run("creates a recurring rule and flushes the rule cache", func(t *testing.T) {
		repo := newStubRuleRepo()
		cache := gocache.New(time.Minute, time.Minute)
		svc := NewService(repo, &stubAppointmentRepo{}, testPolicy(), cache)

		doctorID := uuid.New()
		cache.Set("rules:"+doctorID.String(), []*model.AvailabilityRule{}, time.Minute)

		monday := 1
		rule, err := svc.CreateRule(context.Background(), &model.CreateAvailabilityRuleRequest{
			DoctorID:  doctorID,
			Kind:      model.RuleKindRecurring,
			DayOfWeek: &monday,
			StartTime: "09:00",
			EndTime:   "17:00",
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, rule.ID)

		_, cached := cache.Get("rules:" + doctorID.String())
		assert.False(t, cached, "stale rule cache must be flushed on write")
	})

	t.Run("parses specific dates in the practice timezone", func(t *testing.T) {
		repo := newStubRuleRepo()
		svc := NewService(repo, &stubAppointmentRepo{}, testPolicy(), nil)

		date := "2026-12-24"
		rule, err := svc.CreateRule(context.Background(), &model.CreateAvailabilityRuleRequest{
			DoctorID:  uuid.New(),
			Kind:      model.RuleKindSpecificDate,
			Date:      &date,
			StartTime: "09:00",
			EndTime:   "12:00",
			IsBlocked: true,
		})
		require.NoError(t, err)
		require.NotNil(t, rule.Date)
		assert.Equal(t, time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC), *rule.Date)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		svc := NewService(newStubRuleRepo(), &stubAppointmentRepo{}, testPolicy(), nil)
		monday := 1
		badDate := "24.12.2026"

		cases := []*model.CreateAvailabilityRuleRequest{
			{DoctorID: uuid.New(), Kind: model.RuleKindRecurring, StartTime: "09:00", EndTime: "17:00"},                      // missing weekday
			{DoctorID: uuid.New(), Kind: model.RuleKindSpecificDate, StartTime: "09:00", EndTime: "17:00"},                   // missing date
			{DoctorID: uuid.New(), Kind: model.RuleKindSpecificDate, Date: &badDate, StartTime: "09:00", EndTime: "17:00"},   // bad date format
			{DoctorID: uuid.New(), Kind: model.RuleKindRecurring, DayOfWeek: &monday, StartTime: "17:00", EndTime: "09:00"},  // inverted window
			{DoctorID: uuid.New(), Kind: model.RuleKindRecurring, DayOfWeek: &monday, StartTime: "nine", EndTime: "17:00"},   // unparseable time
		}
		for _, req := range cases {
			_, err := svc.CreateRule(context.Background(), req)
			assert.Equal(t, apperrors.ErrBadRequest, apperrors.CodeOf(err))
		}
	})
}

func TestUpdateRule(t *testing.T) {
	repo := newStubRuleRepo()
	svc := NewService(repo, &stubAppointmentRepo{}, testPolicy(), nil)

	monday := 1
	rule, err := svc.CreateRule(context.Background(), &model.CreateAvailabilityRuleRequest{
		DoctorID:  uuid.New(),
		Kind:      model.RuleKindRecurring,
		DayOfWeek: &monday,
		StartTime: "09:00",
		EndTime:   "17:00",
	})
	require.NoError(t, err)

	newEnd := "15:00"
	updated, err := svc.UpdateRule(context.Background(), rule.ID, &model.UpdateAvailabilityRuleRequest{EndTime: &newEnd})
	require.NoError(t, err)
	assert.Equal(t, "15:00", updated.EndTime)
	assert.Equal(t, "09:00", updated.StartTime)

	badEnd := "08:00"
	_, err = svc.UpdateRule(context.Background(), rule.ID, &model.UpdateAvailabilityRuleRequest{EndTime: &badEnd})
	assert.Equal(t, apperrors.ErrBadRequest, apperrors.CodeOf(err))

	_, err = svc.UpdateRule(context.Background(), uuid.New(), &model.UpdateAvailabilityRuleRequest{EndTime: &newEnd})
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
}

func TestDayGrid(t *testing.T) {
	doctorID := uuid.New()
	monday := 1
	lunch := "team meeting"

	repo := newStubRuleRepo()
	repo.rules[uuid.New()] = &model.AvailabilityRule{
		Base: model.Base{ID: uuid.New()}, DoctorID: doctorID,
		Kind: model.RuleKindRecurring, DayOfWeek: &monday,
		StartTime: "10:00", EndTime: "13:00",
	}
	blockID := uuid.New()
	repo.rules[blockID] = &model.AvailabilityRule{
		Base: model.Base{ID: blockID}, DoctorID: doctorID,
		Kind: model.RuleKindRecurring, DayOfWeek: &monday,
		StartTime: "11:00", EndTime: "11:30",
		IsBlocked: true, BlockReason: &lunch,
	}

	appts := &stubAppointmentRepo{active: []*model.Appointment{{
		Base:     model.Base{ID: uuid.New()},
		DoctorID: doctorID,
		Status:   model.AppointmentStatusConfirmed,
		StartTime: gridAt(10, 0), EndTime: gridAt(10, 30),
	}}}

	svc := NewService(repo, appts, testPolicy(), nil)

	grid, err := svc.DayGrid(context.Background(), doctorID, testDay, 30)
	require.NoError(t, err)

	// 07:00 to 21:00 in half-hour cells.
	require.Len(t, grid, 28)

	byStart := make(map[time.Time]GridSlot, len(grid))
	for _, cell := range grid {
		byStart[cell.Interval.Start] = cell
	}

	assert.Equal(t, GridStateClosed, byStart[gridAt(7, 0)].State)
	assert.Equal(t, GridStateClosed, byStart[gridAt(9, 30)].State)
	assert.Equal(t, GridStateBooked, byStart[gridAt(10, 0)].State)
	assert.Equal(t, GridStateOpen, byStart[gridAt(10, 30)].State)

	blockedCell := byStart[gridAt(11, 0)]
	assert.Equal(t, GridStateBlocked, blockedCell.State)
	assert.Equal(t, lunch, blockedCell.Reason)

	assert.Equal(t, GridStateOpen, byStart[gridAt(12, 30)].State)
	assert.Equal(t, GridStateClosed, byStart[gridAt(13, 0)].State)
	assert.Equal(t, GridStateClosed, byStart[gridAt(20, 30)].State)
}

func TestDayGridPracticeTimezone(t *testing.T) {
	// A date-only query parameter arrives parsed at UTC midnight; the grid
	// must still render the requested calendar day when the practice sits
	// west of UTC.
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	doctorID := uuid.New()
	monday := 1
	repo := newStubRuleRepo()
	ruleID := uuid.New()
	repo.rules[ruleID] = &model.AvailabilityRule{
		Base: model.Base{ID: ruleID}, DoctorID: doctorID,
		Kind: model.RuleKindRecurring, DayOfWeek: &monday,
		StartTime: "10:00", EndTime: "13:00",
	}

	policy := testPolicy()
	policy.Timezone = "America/New_York"
	svc := NewService(repo, &stubAppointmentRepo{}, policy, nil)

	grid, err := svc.DayGrid(context.Background(), doctorID, testDay, 30)
	require.NoError(t, err)
	require.Len(t, grid, 28)

	assert.True(t, grid[0].Interval.Start.Equal(time.Date(2026, 3, 2, 7, 0, 0, 0, ny)))

	// 10:00 local is the seventh half-hour cell of the display window.
	tenLocal := grid[6]
	assert.True(t, tenLocal.Interval.Start.Equal(time.Date(2026, 3, 2, 10, 0, 0, 0, ny)))
	assert.Equal(t, GridStateOpen, tenLocal.State)

	var open int
	for _, cell := range grid {
		if cell.State == GridStateOpen {
			open++
		}
	}
	assert.Equal(t, 6, open, "10:00 to 13:00 local in half-hour cells")
}

func TestDayGridBookedWinsOverBlocked(t *testing.T) {
	doctorID := uuid.New()
	monday := 1

	repo := newStubRuleRepo()
	blockID := uuid.New()
	repo.rules[blockID] = &model.AvailabilityRule{
		Base: model.Base{ID: blockID}, DoctorID: doctorID,
		Kind: model.RuleKindRecurring, DayOfWeek: &monday,
		StartTime: "10:00", EndTime: "11:00", IsBlocked: true,
	}
	appts := &stubAppointmentRepo{active: []*model.Appointment{{
		Base:     model.Base{ID: uuid.New()},
		DoctorID: doctorID,
		Status:   model.AppointmentStatusPending,
		StartTime: gridAt(10, 0), EndTime: gridAt(10, 30),
	}}}

	svc := NewService(repo, appts, testPolicy(), nil)
	grid, err := svc.DayGrid(context.Background(), doctorID, testDay, 30)
	require.NoError(t, err)

	byStart := make(map[time.Time]GridSlot, len(grid))
	for _, cell := range grid {
		byStart[cell.Interval.Start] = cell
	}
	assert.Equal(t, GridStateBooked, byStart[gridAt(10, 0)].State)
	assert.Equal(t, GridStateBlocked, byStart[gridAt(10, 30)].State)
}
