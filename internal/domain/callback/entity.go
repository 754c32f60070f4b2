// Package callback models phone-callback reminders: a client to call back,
// mirrored onto the callback calendar as a short appointment.
package callback

import (
	"errors"
	"fmt"
	"time"

	"atelier-backend/internal/domain/schedule"

	"github.com/google/uuid"
)

// Window is the default duration blocked on the calendar for one callback.
const Window = 30 * time.Minute

var ErrMissingFields = errors.New("phone number, client name, reason, description and responsible person are required")

type Reason string

const (
	ReasonWarranty Reason = "warranty"
	ReasonDelivery Reason = "delivery"
	ReasonRental   Reason = "rental"
	ReasonOther    Reason = "other"
)

// Text returns the human-readable reason used in event titles.
func (r Reason) Text() string {
	switch r {
	case ReasonWarranty:
		return "Garantie"
	case ReasonDelivery:
		return "Livraison"
	case ReasonRental:
		return "Location"
	default:
		return "Autre"
	}
}

// Callback is a phone-callback reminder. ScheduledAt is fixed at creation
// time; the event blocks a Window-long slot starting there.
type Callback struct {
	ID                uuid.UUID
	PhoneNumber       string
	ClientName        string
	Reason            Reason
	Description       string
	ResponsiblePerson string
	Completed         bool
	ScheduledAt       time.Time
	ExternalEventID   *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (c *Callback) Validate() error {
	if c.PhoneNumber == "" || c.ClientName == "" || c.Reason == "" ||
		c.Description == "" || c.ResponsiblePerson == "" {
		return ErrMissingFields
	}
	return nil
}

// Snapshot projects the callback onto the generic scheduling shape.
func (c *Callback) Snapshot() schedule.Snapshot {
	start := c.ScheduledAt
	end := start.Add(Window)
	label := fmt.Sprintf("%s|%s|%s|%s|%s|done=%t",
		c.ClientName, c.PhoneNumber, c.Reason, c.Description, c.ResponsiblePerson, c.Completed)
	return schedule.Snapshot{
		Label:           label,
		DueAt:           &start,
		EndAt:           &end,
		ExternalEventID: c.ExternalEventID,
	}
}
