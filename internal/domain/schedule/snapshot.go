package schedule

import (
	"strings"
	"time"
)

// Snapshot is the scheduling-relevant projection of an entity at one point
// in time. Every entity kind that owns a calendar event (machine, rental,
// installation order, phone callback) reduces to this shape before
// classification, so one classifier serves all of them.
type Snapshot struct {
	// Label identifies the entity in event titles (machine name, client name).
	Label string
	// DueAt is when the mirrored event should occur: the next maintenance
	// date for a machine, the start date for a rental or installation.
	// Nil means no event should exist.
	DueAt *time.Time
	// EndAt is the optional event end; nil defaults to DueAt (single-day).
	EndAt *time.Time
	// ExternalEventID is the opaque reference to the mirrored calendar
	// event, nil when none is known.
	ExternalEventID *string
	// CycleKey fingerprints the recurrence configuration. Entities without
	// a maintenance cycle leave it empty.
	CycleKey string
	// LastServicedAt is the start of the current maintenance cycle, nil for
	// entities without cycles.
	LastServicedAt *time.Time
	// Guests are the notification addresses attached to the event.
	Guests []string
}

func (s Snapshot) EffectiveEnd() time.Time {
	if s.EndAt != nil {
		return *s.EndAt
	}
	if s.DueAt != nil {
		return *s.DueAt
	}
	return time.Time{}
}

// NormalizeGuests drops blank entries and duplicates while preserving the
// first occurrence order.
func NormalizeGuests(guests []string) []string {
	seen := make(map[string]struct{}, len(guests))
	out := make([]string, 0, len(guests))
	for _, g := range guests {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}

// AddedGuests returns the addresses present in next but not in prev.
// Removals are never reported: departed guests are not notified.
func AddedGuests(prev, next []string) []string {
	existing := make(map[string]struct{}, len(prev))
	for _, g := range prev {
		existing[g] = struct{}{}
	}
	var added []string
	for _, g := range next {
		if _, ok := existing[g]; !ok {
			added = append(added, g)
		}
	}
	return added
}
