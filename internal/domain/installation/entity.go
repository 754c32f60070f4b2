// Package installation models purchase-order installation appointments:
// a sold robot that must be installed at the client's address on a
// scheduled date.
package installation

import (
	"errors"
	"fmt"
	"time"

	"atelier-backend/internal/domain/schedule"

	"github.com/google/uuid"
)

var (
	ErrEmptyClientName = errors.New("client name is required")
	ErrEmptyRobotName  = errors.New("robot name is required")
)

// Order is a purchase order carrying an optional installation appointment.
// The calendar event exists exactly while InstallationDate is set.
type Order struct {
	ID               uuid.UUID
	ClientFirstName  string
	ClientLastName   string
	ClientAddress    string
	ClientPhone      string
	RobotName        string
	InstallationDate *time.Time
	ExternalEventID  *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (o *Order) Validate() error {
	if o.ClientFirstName == "" && o.ClientLastName == "" {
		return ErrEmptyClientName
	}
	if o.RobotName == "" {
		return ErrEmptyRobotName
	}
	return nil
}

func (o *Order) ClientFullName() string {
	return fmt.Sprintf("%s %s", o.ClientFirstName, o.ClientLastName)
}

// Snapshot projects the order onto the generic scheduling shape. The label
// covers every field rendered into the event text.
func (o *Order) Snapshot() schedule.Snapshot {
	label := fmt.Sprintf("%s|%s|%s|%s",
		o.ClientFullName(), o.ClientAddress, o.ClientPhone, o.RobotName)
	return schedule.Snapshot{
		Label:           label,
		DueAt:           o.InstallationDate,
		ExternalEventID: o.ExternalEventID,
	}
}
