package sync

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"atelier-backend/internal/domain/schedule"
	"atelier-backend/internal/pkg/errs"
)

// Executor performs one classified calendar action and reports what the
// stored external reference must become. It is the single place where the
// side-effect ordering rules live:
//
//   - create: the new event id is returned only after the remote insert
//     succeeded, so the caller never stores an id for an event that was not
//     created;
//   - update: on success nothing about the reference changes; a remote 404
//     is healed by recreating the event under a fresh id;
//   - delete: the reference is cleared only once the remote delete
//     succeeded (or the event was already gone); on failure the stored id
//     stays untouched so the delete can be retried.
type Executor struct {
	svc     CalendarService
	timeout time.Duration
	log     *slog.Logger
}

func NewExecutor(svc CalendarService, timeout time.Duration, log *slog.Logger) *Executor {
	return &Executor{svc: svc, timeout: timeout, log: log}
}

// Outcome describes the reference state after an applied action.
type Outcome struct {
	// EventID is the reference to store: a fresh id after create, nil after
	// delete, the previous id otherwise.
	EventID *string
	// RefChanged reports whether the stored reference must be rewritten.
	RefChanged bool
}

// Apply executes action against calendarID. currentEventID is the stored
// reference, nil when none exists.
func (e *Executor) Apply(ctx context.Context, action schedule.Action, calendarID string, currentEventID *string, details EventDetails) (Outcome, error) {
	switch action {
	case schedule.ActionNone:
		return Outcome{EventID: currentEventID}, nil

	case schedule.ActionCreate:
		return e.create(ctx, calendarID, details)

	case schedule.ActionUpdate:
		return e.update(ctx, calendarID, currentEventID, details)

	case schedule.ActionDelete:
		return e.delete(ctx, calendarID, currentEventID)
	}

	return Outcome{}, errs.New("unknown calendar action: " + action.String())
}

func (e *Executor) create(ctx context.Context, calendarID string, details EventDetails) (Outcome, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	id, err := e.svc.CreateEvent(ctx, calendarID, details)
	if err != nil {
		return Outcome{}, errs.Mark(err, ErrExternalService)
	}
	e.log.Info("calendar event created", "calendar_id", calendarID, "event_id", id)
	return Outcome{EventID: &id, RefChanged: true}, nil
}

func (e *Executor) update(ctx context.Context, calendarID string, currentEventID *string, details EventDetails) (Outcome, error) {
	// The classifier's legacy fallback can report an update with no stored
	// reference; there is nothing to touch then.
	if currentEventID == nil {
		e.log.Debug("update requested without a stored event reference, skipping", "calendar_id", calendarID)
		return Outcome{}, nil
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	err := e.svc.UpdateEvent(ctx, calendarID, *currentEventID, details)
	if err == nil {
		return Outcome{EventID: currentEventID}, nil
	}
	if errors.Is(err, ErrEventNotFound) {
		// The mirrored event disappeared remotely; recreate it rather than
		// leaving the entity pointing at nothing.
		e.log.Warn("event vanished remotely, recreating", "calendar_id", calendarID, "event_id", *currentEventID)
		return e.create(ctx, calendarID, details)
	}
	return Outcome{EventID: currentEventID}, errs.Mark(err, ErrExternalService)
}

func (e *Executor) delete(ctx context.Context, calendarID string, currentEventID *string) (Outcome, error) {
	if currentEventID == nil {
		return Outcome{}, nil
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	err := e.svc.DeleteEvent(ctx, calendarID, *currentEventID)
	if err == nil {
		e.log.Info("calendar event deleted", "calendar_id", calendarID, "event_id", *currentEventID)
		return Outcome{EventID: nil, RefChanged: true}, nil
	}
	if errors.Is(err, ErrEventNotFound) {
		e.log.Warn("event already gone remotely, clearing reference", "calendar_id", calendarID, "event_id", *currentEventID)
		return Outcome{EventID: nil, RefChanged: true}, nil
	}
	// Keep the stored id: the event still exists remotely and the delete
	// must be retryable.
	return Outcome{EventID: currentEventID}, errs.Mark(err, ErrExternalService)
}

func (e *Executor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.timeout)
}
