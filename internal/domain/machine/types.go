package machine

// CycleType selects how a machine's maintenance recurrence is measured.
type CycleType string

const (
	// CycleByCalendarDays schedules the next maintenance a fixed number of
	// days after the last service.
	CycleByCalendarDays CycleType = "BY_CALENDAR_DAYS"
	// CycleByRentalCount makes maintenance due once enough rentals happened
	// since the last service.
	CycleByRentalCount CycleType = "BY_RENTAL_COUNT"
)

func (t CycleType) IsValid() bool {
	switch t {
	case CycleByCalendarDays, CycleByRentalCount:
		return true
	default:
		return false
	}
}
