package schedule

import "time"

// Classify decides which calendar action keeps the external event consistent
// with the entity after a database operation. prev is nil only for OpCreate.
//
// The update rules are order sensitive:
//  1. label, dates and guest list unchanged -> nothing to do
//  2. same label and cycle config, but the service date advanced strictly
//     forward -> a fresh cycle started; a brand new event is created instead
//     of moving the old one, because the old event may already have been
//     acted upon
//  3. a due date exists -> update in place when there is both a previous due
//     date and a stored event reference, otherwise create
//  4. no due date anymore -> delete when one used to exist
//
// Classify is pure: it never touches storage or the calendar.
func Classify(op OperationKind, prev, next *Snapshot) Action {
	switch op {
	case OpCreate:
		if next.DueAt != nil {
			return ActionCreate
		}
		return ActionNone

	case OpDelete:
		if prev.ExternalEventID != nil {
			return ActionDelete
		}
		return ActionNone

	case OpUpdate:
		if prev.Label == next.Label &&
			sameInstant(prev.DueAt, next.DueAt) &&
			sameInstant(prev.EndAt, next.EndAt) &&
			sameGuests(prev.Guests, next.Guests) {
			return ActionNone
		}

		if prev.Label == next.Label &&
			prev.CycleKey == next.CycleKey &&
			serviceAdvanced(prev.LastServicedAt, next.LastServicedAt) {
			return ActionCreate
		}

		if next.DueAt != nil {
			if prev.DueAt != nil && prev.ExternalEventID != nil {
				return ActionUpdate
			}
			return ActionCreate
		}

		if prev.DueAt != nil {
			return ActionDelete
		}

		// Legacy fallback: no due date on either side still reports an
		// update. With no stored reference the executor has nothing to
		// touch, so this is a no-op in practice. Kept as-is pending a
		// product decision on whether it should be ActionNone.
		return ActionUpdate
	}

	return ActionNone
}

func sameGuests(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// serviceAdvanced reports whether the cycle start moved strictly forward,
// meaning a new service was just recorded.
func serviceAdvanced(prev, next *time.Time) bool {
	if prev == nil || next == nil {
		return false
	}
	return next.After(*prev)
}
