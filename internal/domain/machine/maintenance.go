package machine

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	ErrInvalidCycleType     = errors.New("invalid maintenance cycle type")
	ErrIntervalDaysRequired = errors.New("interval days required for calendar-day cycles")
	ErrRentalCountRequired  = errors.New("rental count required for rental-count cycles")
	ErrNonPositiveInterval  = errors.New("maintenance interval must be positive")
)

// MaintenanceConfig describes a machine's recurrence. IntervalDays is only
// meaningful for CycleByCalendarDays, IntervalRentals only for
// CycleByRentalCount. LastServicedAt is nil for machines never serviced.
type MaintenanceConfig struct {
	Type            CycleType
	IntervalDays    int
	IntervalRentals int
	LastServicedAt  *time.Time
}

func (c MaintenanceConfig) Validate() error {
	if !c.Type.IsValid() {
		return ErrInvalidCycleType
	}
	switch c.Type {
	case CycleByCalendarDays:
		if c.IntervalDays == 0 {
			return ErrIntervalDaysRequired
		}
		if c.IntervalDays < 0 {
			return ErrNonPositiveInterval
		}
	case CycleByRentalCount:
		if c.IntervalRentals == 0 {
			return ErrRentalCountRequired
		}
		if c.IntervalRentals < 0 {
			return ErrNonPositiveInterval
		}
	}
	return nil
}

// Key fingerprints the recurrence so two configs compare equal exactly when
// type and the relevant interval are unchanged.
func (c MaintenanceConfig) Key() string {
	switch c.Type {
	case CycleByCalendarDays:
		return fmt.Sprintf("%s/%dd", c.Type, c.IntervalDays)
	case CycleByRentalCount:
		return fmt.Sprintf("%s/%dr", c.Type, c.IntervalRentals)
	default:
		return string(c.Type)
	}
}

// NextDue computes when maintenance is next due. It is the only source of
// truth for the due date: the value is always derived from the config and
// the rental history, never stored and mutated independently.
//
// For calendar-day cycles the due date is lastServicedAt + intervalDays,
// nil when the machine was never serviced. For rental-count cycles the due
// date is the start of the rental that tips the count over the threshold
// (maintenance became due the moment that rental happened), nil while the
// threshold has not been reached.
func (c MaintenanceConfig) NextDue(rentalStartsSinceService []time.Time) *time.Time {
	switch c.Type {
	case CycleByCalendarDays:
		if c.LastServicedAt == nil {
			return nil
		}
		due := c.LastServicedAt.AddDate(0, 0, c.IntervalDays)
		return &due

	case CycleByRentalCount:
		if c.IntervalRentals <= 0 || len(rentalStartsSinceService) < c.IntervalRentals {
			return nil
		}
		starts := make([]time.Time, len(rentalStartsSinceService))
		copy(starts, rentalStartsSinceService)
		sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
		due := starts[c.IntervalRentals-1]
		return &due
	}
	return nil
}
