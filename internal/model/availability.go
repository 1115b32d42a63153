package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pinewood/booking-api/internal/schedule"
)

type RuleKind string

const (
	RuleKindRecurring    RuleKind = "recurring"
	RuleKindSpecificDate RuleKind = "specific_date"
)

// AvailabilityRule grants (or, when blocked, removes) a window of
// bookable time for a doctor. Recurring rules carry a day of week
// (1=Monday .. 7=Sunday), specific-date rules carry an exact calendar
// date. Both kinds may apply to the same day; blocked windows always win
// over open ones.
type AvailabilityRule struct {
	Base
	DoctorID    uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	Kind        RuleKind   `db:"kind" json:"kind"`
	DayOfWeek   *int       `db:"day_of_week" json:"day_of_week,omitempty"`
	Date        *time.Time `db:"date" json:"date,omitempty"`
	StartTime   string     `db:"start_time" json:"start_time"` // "HH:MM"
	EndTime     string     `db:"end_time" json:"end_time"`     // "HH:MM"
	IsBlocked   bool       `db:"is_blocked" json:"is_blocked"`
	BlockReason *string    `db:"block_reason" json:"block_reason,omitempty"`
}

// Validate checks rule shape: kind-specific fields and a non-empty
// wall-clock window.
func (r *AvailabilityRule) Validate() error {
	switch r.Kind {
	case RuleKindRecurring:
		if r.DayOfWeek == nil || *r.DayOfWeek < 1 || *r.DayOfWeek > 7 {
			return fmt.Errorf("recurring rule requires day_of_week between 1 and 7")
		}
	case RuleKindSpecificDate:
		if r.Date == nil {
			return fmt.Errorf("specific_date rule requires a date")
		}
	default:
		return fmt.Errorf("unknown rule kind %q", r.Kind)
	}

	start, err := schedule.ParseTimeOfDay(r.StartTime)
	if err != nil {
		return err
	}
	end, err := schedule.ParseTimeOfDay(r.EndTime)
	if err != nil {
		return err
	}
	if start >= end {
		return fmt.Errorf("rule window start %s must be before end %s", r.StartTime, r.EndTime)
	}
	return nil
}

// ToScheduleRule maps the persisted rule onto the scheduling core's
// representation. Callers should Validate first; malformed windows map to
// an empty window which the resolver drops.
func (r *AvailabilityRule) ToScheduleRule(loc *time.Location) schedule.Rule {
	start, _ := schedule.ParseTimeOfDay(r.StartTime)
	end, _ := schedule.ParseTimeOfDay(r.EndTime)

	sr := schedule.Rule{
		Window:  schedule.Window{Start: start, End: end},
		Blocked: r.IsBlocked,
	}
	if r.Kind == RuleKindSpecificDate && r.Date != nil {
		d := *r.Date
		sr.Date = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	} else if r.DayOfWeek != nil {
		sr.Weekday = *r.DayOfWeek
	}
	return sr
}

type CreateAvailabilityRuleRequest struct {
	DoctorID    uuid.UUID `json:"doctor_id" binding:"required"`
	Kind        RuleKind  `json:"kind" binding:"required,oneof=recurring specific_date"`
	DayOfWeek   *int      `json:"day_of_week" binding:"omitempty,min=1,max=7"`
	Date        *string   `json:"date"` // "2006-01-02"
	StartTime   string    `json:"start_time" binding:"required"`
	EndTime     string    `json:"end_time" binding:"required"`
	IsBlocked   bool      `json:"is_blocked"`
	BlockReason *string   `json:"block_reason" binding:"omitempty,max=500"`
}

type UpdateAvailabilityRuleRequest struct {
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	IsBlocked   *bool   `json:"is_blocked"`
	BlockReason *string `json:"block_reason" binding:"omitempty,max=500"`
}
