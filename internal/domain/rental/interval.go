package rental

import (
	"errors"
	"time"
)

var ErrEndBeforeStart = errors.New("return date cannot be before the rental date")

// Interval is a rental's date range. End is nil for open rentals (no return
// date agreed yet); for every comparison the effective end defaults to the
// start, making an open rental a single-day range.
type Interval struct {
	Start time.Time
	End   *time.Time
}

func NewInterval(start time.Time, end *time.Time) (Interval, error) {
	if end != nil && end.Before(start) {
		return Interval{}, ErrEndBeforeStart
	}
	return Interval{Start: start, End: end}, nil
}

func (iv Interval) EffectiveEnd() time.Time {
	if iv.End != nil {
		return *iv.End
	}
	return iv.Start
}

// Overlaps reports whether two closed intervals intersect. Both bounds are
// inclusive: a rental ending on day N collides with one starting on day N.
func (iv Interval) Overlaps(other Interval) bool {
	return !iv.Start.After(other.EffectiveEnd()) && !other.Start.After(iv.EffectiveEnd())
}

// OverlapsAny reports whether the candidate intersects at least one of the
// existing intervals.
func (iv Interval) OverlapsAny(existing []Interval) bool {
	for _, other := range existing {
		if iv.Overlaps(other) {
			return true
		}
	}
	return false
}
