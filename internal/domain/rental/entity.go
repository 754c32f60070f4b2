package rental

import (
	"errors"
	"fmt"
	"time"

	"atelier-backend/internal/domain/schedule"

	"github.com/google/uuid"
)

var ErrEmptyClientName = errors.New("client name is required")

// Rental is a booking of one machine by one client. Open rentals have no
// return date and are unpriced until closed.
type Rental struct {
	id              uuid.UUID
	machineID       uuid.UUID
	clientFirstName string
	clientLastName  string
	clientPhone     string
	interval        Interval
	withShipping    bool
	depositToPay    bool
	paid            bool
	guests          []string
	externalEventID *string
	createdAt       time.Time
	updatedAt       time.Time
}

func NewRental(
	machineID uuid.UUID,
	clientFirstName, clientLastName, clientPhone string,
	interval Interval,
	withShipping, depositToPay bool,
	guests []string,
) (*Rental, error) {
	if clientFirstName == "" && clientLastName == "" {
		return nil, ErrEmptyClientName
	}

	return &Rental{
		id:              uuid.New(),
		machineID:       machineID,
		clientFirstName: clientFirstName,
		clientLastName:  clientLastName,
		clientPhone:     clientPhone,
		interval:        interval,
		withShipping:    withShipping,
		depositToPay:    depositToPay,
		guests:          schedule.NormalizeGuests(guests),
	}, nil
}

func Reconstruct(
	id, machineID uuid.UUID,
	clientFirstName, clientLastName, clientPhone string,
	interval Interval,
	withShipping, depositToPay, paid bool,
	guests []string,
	externalEventID *string,
	createdAt, updatedAt time.Time,
) *Rental {
	return &Rental{
		id:              id,
		machineID:       machineID,
		clientFirstName: clientFirstName,
		clientLastName:  clientLastName,
		clientPhone:     clientPhone,
		interval:        interval,
		withShipping:    withShipping,
		depositToPay:    depositToPay,
		paid:            paid,
		guests:          guests,
		externalEventID: externalEventID,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

func (r *Rental) ID() uuid.UUID            { return r.id }
func (r *Rental) MachineID() uuid.UUID     { return r.machineID }
func (r *Rental) ClientFirstName() string  { return r.clientFirstName }
func (r *Rental) ClientLastName() string   { return r.clientLastName }
func (r *Rental) ClientPhone() string      { return r.clientPhone }
func (r *Rental) Interval() Interval       { return r.interval }
func (r *Rental) WithShipping() bool       { return r.withShipping }
func (r *Rental) DepositToPay() bool       { return r.depositToPay }
func (r *Rental) Paid() bool               { return r.paid }
func (r *Rental) Guests() []string         { return r.guests }
func (r *Rental) ExternalEventID() *string { return r.externalEventID }
func (r *Rental) CreatedAt() time.Time     { return r.createdAt }
func (r *Rental) UpdatedAt() time.Time     { return r.updatedAt }

func (r *Rental) ClientFullName() string {
	return fmt.Sprintf("%s %s", r.clientFirstName, r.clientLastName)
}

// IsOpen reports whether the rental has no return date yet.
func (r *Rental) IsOpen() bool {
	return r.interval.End == nil
}

// Snapshot projects the rental onto the generic scheduling shape. A rental
// always has a start date, so its event exists for its whole lifetime. The
// label covers every field that shows up in the event text, so that any
// change to it is classified as an update.
func (r *Rental) Snapshot() schedule.Snapshot {
	start := r.interval.Start
	label := fmt.Sprintf("%s|%s|ship=%t|deposit=%t|paid=%t",
		r.ClientFullName(), r.clientPhone, r.withShipping, r.depositToPay, r.paid)
	return schedule.Snapshot{
		Label:           label,
		DueAt:           &start,
		EndAt:           r.interval.End,
		ExternalEventID: r.externalEventID,
		Guests:          r.guests,
	}
}
