package schedule

import "time"

// Slot is a candidate bookable interval of exactly one appointment type's
// duration. Slots are generated independent of existing bookings; conflict
// filtering happens per slot afterwards.
type Slot struct {
	Interval Interval `json:"interval"`
}

// GenerateSlots lays out the bookable grid over the given open intervals.
// Within one open interval consecutive slots are separated by exactly
// buffer, and no slot extends past the interval's end. Intervals are
// independent of each other: a gap that was never open (a lunch break)
// implies no buffer across it.
func GenerateSlots(open []Interval, duration, buffer time.Duration) []Slot {
	if duration <= 0 {
		return nil
	}
	var slots []Slot
	for _, iv := range open {
		for cursor := iv.Start; !cursor.Add(duration).After(iv.End); cursor = cursor.Add(duration + buffer) {
			slots = append(slots, Slot{Interval: Interval{Start: cursor, End: cursor.Add(duration)}})
		}
	}
	return slots
}
