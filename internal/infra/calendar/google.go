package calendar

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"atelier-backend/internal/pkg/errs"
	"atelier-backend/internal/usecase/sync"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

// GoogleCalendar adapts the calendar/v3 API to the sync port. All-day
// events are rendered as date-only entries in the configured time zone;
// Google's end date is exclusive, so single and multi day events both get
// one day added.
type GoogleCalendar struct {
	provider *Provider
	loc      *time.Location
	log      *slog.Logger
}

func NewGoogleCalendar(provider *Provider, loc *time.Location, log *slog.Logger) sync.CalendarService {
	if loc == nil {
		loc = time.UTC
	}
	return &GoogleCalendar{provider: provider, loc: loc, log: log}
}

func (g *GoogleCalendar) CreateEvent(ctx context.Context, calendarID string, ev sync.EventDetails) (string, error) {
	svc, err := g.provider.Service()
	if err != nil {
		return "", errs.Mark(err, sync.ErrExternalService)
	}

	created, err := svc.Events.Insert(calendarID, g.toEvent(ev)).Context(ctx).Do()
	if err != nil {
		return "", g.mapErr(err, "insert")
	}
	return created.Id, nil
}

func (g *GoogleCalendar) UpdateEvent(ctx context.Context, calendarID, eventID string, ev sync.EventDetails) error {
	svc, err := g.provider.Service()
	if err != nil {
		return errs.Mark(err, sync.ErrExternalService)
	}

	_, err = svc.Events.Update(calendarID, eventID, g.toEvent(ev)).Context(ctx).Do()
	if err != nil {
		return g.mapErr(err, "update")
	}
	return nil
}

func (g *GoogleCalendar) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	svc, err := g.provider.Service()
	if err != nil {
		return errs.Mark(err, sync.ErrExternalService)
	}

	if err := svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return g.mapErr(err, "delete")
	}
	return nil
}

func (g *GoogleCalendar) toEvent(ev sync.EventDetails) *gcal.Event {
	event := &gcal.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
	}

	if ev.AllDay {
		start := ev.Start.In(g.loc)
		end := ev.End.In(g.loc)
		event.Start = &gcal.EventDateTime{Date: start.Format("2006-01-02")}
		// Exclusive end: the event covers through the end day itself.
		event.End = &gcal.EventDateTime{Date: end.AddDate(0, 0, 1).Format("2006-01-02")}
	} else {
		event.Start = &gcal.EventDateTime{
			DateTime: ev.Start.Format(time.RFC3339),
			TimeZone: g.loc.String(),
		}
		event.End = &gcal.EventDateTime{
			DateTime: ev.End.Format(time.RFC3339),
			TimeZone: g.loc.String(),
		}
	}

	for _, email := range ev.Attendees {
		event.Attendees = append(event.Attendees, &gcal.EventAttendee{Email: email})
	}
	return event
}

// mapErr marks remote-missing events distinctly from any other failure.
// 410 Gone shows up when an event was deleted from the calendar UI.
func (g *GoogleCalendar) mapErr(err error, op string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == 404 || apiErr.Code == 410) {
		return errs.Mark(err, sync.ErrEventNotFound)
	}
	g.log.Error("calendar call failed", "op", op, "error", err)
	return errs.Mark(err, sync.ErrExternalService)
}
