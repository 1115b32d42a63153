package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinewood/booking-api/internal/schedule"
)

func intPtr(v int) *int { return &v }

func TestAvailabilityRuleValidate(t *testing.T) {
	valid := AvailabilityRule{
		Kind:      RuleKindRecurring,
		DayOfWeek: intPtr(3),
		StartTime: "09:00",
		EndTime:   "17:00",
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name string
		rule AvailabilityRule
	}{
		{"recurring without weekday", AvailabilityRule{Kind: RuleKindRecurring, StartTime: "09:00", EndTime: "17:00"}},
		{"weekday out of range", AvailabilityRule{Kind: RuleKindRecurring, DayOfWeek: intPtr(8), StartTime: "09:00", EndTime: "17:00"}},
		{"specific date without date", AvailabilityRule{Kind: RuleKindSpecificDate, StartTime: "09:00", EndTime: "17:00"}},
		{"unknown kind", AvailabilityRule{Kind: "weekly", DayOfWeek: intPtr(1), StartTime: "09:00", EndTime: "17:00"}},
		{"inverted window", AvailabilityRule{Kind: RuleKindRecurring, DayOfWeek: intPtr(1), StartTime: "17:00", EndTime: "09:00"}},
		{"empty window", AvailabilityRule{Kind: RuleKindRecurring, DayOfWeek: intPtr(1), StartTime: "09:00", EndTime: "09:00"}},
		{"garbage time", AvailabilityRule{Kind: RuleKindRecurring, DayOfWeek: intPtr(1), StartTime: "morning", EndTime: "17:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.rule.Validate())
		})
	}
}

func TestToScheduleRule(t *testing.T) {
	t.Run("recurring", func(t *testing.T) {
		rule := AvailabilityRule{
			Kind:      RuleKindRecurring,
			DayOfWeek: intPtr(5),
			StartTime: "08:30",
			EndTime:   "12:00",
			IsBlocked: true,
		}
		sr := rule.ToScheduleRule(time.UTC)

		assert.Equal(t, 5, sr.Weekday)
		assert.True(t, sr.Date.IsZero())
		assert.True(t, sr.Blocked)
		assert.Equal(t, "08:30", sr.Window.Start.String())
		assert.Equal(t, "12:00", sr.Window.End.String())
	})

	t.Run("specific date is anchored in the given location", func(t *testing.T) {
		loc, err := time.LoadLocation("Europe/Berlin")
		require.NoError(t, err)

		date := time.Date(2026, 12, 24, 15, 4, 5, 0, time.UTC)
		rule := AvailabilityRule{
			Kind:      RuleKindSpecificDate,
			Date:      &date,
			StartTime: "09:00",
			EndTime:   "12:00",
		}
		sr := rule.ToScheduleRule(loc)

		assert.Equal(t, time.Date(2026, 12, 24, 0, 0, 0, 0, loc), sr.Date)
		assert.Equal(t, 0, sr.Weekday)
	})
}

func TestAppointmentIsActive(t *testing.T) {
	appt := Appointment{Status: AppointmentStatusPending}
	assert.True(t, appt.IsActive())

	appt.Status = AppointmentStatusConfirmed
	assert.True(t, appt.IsActive())

	appt.Status = AppointmentStatusCancelled
	assert.False(t, appt.IsActive())
}

func TestAppointmentInterval(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	appt := Appointment{StartTime: start, EndTime: start.Add(30 * time.Minute)}

	assert.Equal(t, schedule.Interval{Start: start, End: start.Add(30 * time.Minute)}, appt.Interval())
}
