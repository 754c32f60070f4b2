package sync

import (
	"context"
	"time"

	"atelier-backend/internal/pkg/errs"
)

var (
	// ErrExternalService marks any failed calendar call, timeouts included.
	ErrExternalService = errs.New("calendar service call failed")
	// ErrEventNotFound marks the remote 404 sub-case: the referenced event
	// no longer exists on the calendar.
	ErrEventNotFound = errs.New("calendar event no longer exists")
)

// EventDetails is the calendar-facing rendering of an entity: what the
// event should look like, independent of which provider mirrors it.
type EventDetails struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	// AllDay renders the event as a date-only (full day) entry.
	AllDay    bool
	Attendees []string
}

// CalendarService is the external calendar collaborator. Implementations
// must mark remote-missing-event failures with ErrEventNotFound and any
// other failure with ErrExternalService.
type CalendarService interface {
	CreateEvent(ctx context.Context, calendarID string, ev EventDetails) (string, error)
	UpdateEvent(ctx context.Context, calendarID, eventID string, ev EventDetails) error
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}
