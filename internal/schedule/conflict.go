package schedule

import "time"

// BlockedByExisting reports whether the candidate collides with any existing
// active appointment once the mandatory gap is applied. Each existing
// interval is padded by buffer on both sides and tested for raw overlap
// against the unpadded candidate, so any two appointments for the same
// doctor end up at least buffer apart.
func BlockedByExisting(candidate Interval, existing []Interval, buffer time.Duration) bool {
	for _, e := range existing {
		if e.Pad(buffer).Overlaps(candidate) {
			return true
		}
	}
	return false
}

// BlockedByWindow reports whether the candidate touches any admin-blocked
// window. Blocked time is a hard wall: no buffer padding applies.
func BlockedByWindow(candidate Interval, blocked []Interval) bool {
	for _, b := range blocked {
		if b.Overlaps(candidate) {
			return true
		}
	}
	return false
}

// WithinOpen reports whether the candidate is fully contained in one of the
// resolved open intervals. Open intervals are merged and non-adjacent, so
// containment can only hold against a single interval.
func WithinOpen(candidate Interval, open []Interval) bool {
	for _, o := range open {
		if o.Contains(candidate) {
			return true
		}
	}
	return false
}
