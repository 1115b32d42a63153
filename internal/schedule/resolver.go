package schedule

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time expressed as minutes from midnight.
type TimeOfDay int

// ParseTimeOfDay parses an "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// At anchors the wall-clock time on the given calendar day, in that day's
// location.
func (t TimeOfDay) At(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), int(t)/60, int(t)%60, 0, 0, day.Location())
}

// Window is a wall-clock time-of-day range with no date component.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

// On converts the window to an absolute interval on the given day.
func (w Window) On(day time.Time) Interval {
	return Interval{Start: w.Start.At(day), End: w.End.At(day)}
}

// ISOWeekday returns the day of week with Monday=1 .. Sunday=7. This is the
// convention used by persisted availability rules; never use Go's
// Sunday-zero weekday on the wire.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// Rule is a single availability rule, either a weekly recurring window
// (Weekday set, Date zero) or a one-off date window (Date set). Blocked
// rules remove availability instead of granting it.
type Rule struct {
	Weekday int       // 1=Monday .. 7=Sunday, ignored when Date is set
	Date    time.Time // zero for recurring rules
	Window  Window
	Blocked bool
}

// AppliesTo reports whether the rule is in effect on the given calendar day.
func (r Rule) AppliesTo(day time.Time) bool {
	if !r.Date.IsZero() {
		y1, m1, d1 := r.Date.Date()
		y2, m2, d2 := day.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	}
	return r.Weekday == ISOWeekday(day)
}

// OpenIntervals resolves the effective bookable ranges for one calendar day.
// Open rule windows are unioned, then every blocked window is subtracted;
// a block overlapping an open window can truncate it, split it, or erase it.
// A day with no applicable rules is closed: there is no implicit default
// schedule here, bootstrap schedules are a seeding concern.
func OpenIntervals(day time.Time, rules []Rule) []Interval {
	var open, blocked []Interval
	for _, r := range rules {
		if !r.AppliesTo(day) {
			continue
		}
		iv := r.Window.On(day)
		if r.Blocked {
			blocked = append(blocked, iv)
		} else {
			open = append(open, iv)
		}
	}
	return Subtract(Merge(open), blocked)
}

// BlockedIntervals returns the absolute blocked windows applicable to the
// day. The booking flow never needs these (they are already subtracted from
// OpenIntervals); the admin grid renders them explicitly.
func BlockedIntervals(day time.Time, rules []Rule) []Interval {
	var blocked []Interval
	for _, r := range rules {
		if r.Blocked && r.AppliesTo(day) {
			blocked = append(blocked, r.Window.On(day))
		}
	}
	return Merge(blocked)
}
