package schedule

import (
	"sort"
	"time"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether two half-open intervals intersect. Touching
// endpoints do not count, so back-to-back intervals never overlap.
// This is the single overlap predicate used everywhere in the scheduling
// core; do not reimplement it at call sites.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

// Contains reports whether other lies entirely within i.
func (i Interval) Contains(other Interval) bool {
	return !other.Start.Before(i.Start) && !other.End.After(i.End)
}

// Pad widens the interval by d on both sides.
func (i Interval) Pad(d time.Duration) Interval {
	return Interval{Start: i.Start.Add(-d), End: i.End.Add(d)}
}

// Duration returns the interval length.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// IsValid reports whether the interval is non-empty.
func (i Interval) IsValid() bool {
	return i.Start.Before(i.End)
}

// Merge unions a set of intervals into an ordered, non-overlapping,
// non-adjacent list. Empty or inverted inputs are dropped.
func Merge(intervals []Interval) []Interval {
	valid := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		if iv.IsValid() {
			valid = append(valid, iv)
		}
	}
	if len(valid) == 0 {
		return nil
	}

	sort.Slice(valid, func(a, b int) bool {
		return valid[a].Start.Before(valid[b].Start)
	})

	merged := []Interval{valid[0]}
	for _, iv := range valid[1:] {
		last := &merged[len(merged)-1]
		// Adjacent intervals coalesce too, so the result never contains
		// two ranges with a zero gap between them.
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// Subtract removes every interval in blocked from every interval in open.
// A blocked range may truncate an open range on either side, split it in
// two, or remove it entirely. The result stays ordered and non-overlapping
// provided open is (as produced by Merge).
func Subtract(open, blocked []Interval) []Interval {
	result := open
	for _, b := range blocked {
		if !b.IsValid() {
			continue
		}
		var next []Interval
		for _, o := range result {
			if !o.Overlaps(b) {
				next = append(next, o)
				continue
			}
			if o.Start.Before(b.Start) {
				next = append(next, Interval{Start: o.Start, End: b.Start})
			}
			if o.End.After(b.End) {
				next = append(next, Interval{Start: b.End, End: o.End})
			}
		}
		result = next
	}
	return result
}
