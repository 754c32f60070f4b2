package commands

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"time"

	"atelier-backend/internal/domain/schedule"
	"atelier-backend/internal/infra"
	"atelier-backend/internal/pkg/errs"
	"atelier-backend/internal/usecase/shared"
	"atelier-backend/internal/usecase/sync"
)

// refWriter persists the external event reference outside the mutating
// transaction.
type refWriter func(ctx context.Context, eventID *string) error

// applySync runs the post-commit half of the dual-write: classify and
// execute the calendar action, then persist the resulting reference.
// Any failure here is marked ErrSyncIncomplete because the database
// mutation is already committed and must not be retried.
func applySync(
	ctx context.Context,
	rec *sync.Reconciler,
	op schedule.OperationKind,
	prev, next *schedule.Snapshot,
	plan sync.EventPlan,
	store refWriter,
) error {
	res, err := rec.Reconcile(ctx, op, prev, next, plan)
	if err != nil {
		return errs.Mark(err, ErrSyncIncomplete)
	}
	if res.RefChanged && store != nil {
		if err := store(ctx, res.EventID); err != nil {
			return errs.Mark(err, ErrSyncIncomplete)
		}
	}
	return nil
}

// clearRemoteEvent removes the mirrored calendar event ahead of a row
// delete. On success the stored reference is cleared; on failure nothing is
// written and the caller must abort, leaving the row and its reference in
// place so the delete can be retried. The reference is never dropped while
// the remote event may still exist.
func clearRemoteEvent(
	ctx context.Context,
	rec *sync.Reconciler,
	prev *schedule.Snapshot,
	calendarID string,
	store refWriter,
) error {
	next := schedule.Snapshot{Label: prev.Label}
	plan := sync.EventPlan{CalendarID: calendarID}
	res, err := rec.Reconcile(ctx, schedule.OpDelete, prev, &next, plan)
	if err != nil {
		return err
	}
	if res.RefChanged && store != nil {
		return store(ctx, res.EventID)
	}
	return nil
}

// notifyGuestAdditions mails the guests newly present on the event. Guests
// already invited and guests removed get nothing. Delivery failures are
// logged and swallowed; they never fail the business operation.
func notifyGuestAdditions(
	ctx context.Context,
	notifier shared.Notifier,
	log *slog.Logger,
	prevGuests, nextGuests []string,
	summary string,
	start *time.Time,
) {
	added := schedule.AddedGuests(prevGuests, nextGuests)
	if len(added) == 0 || notifier == nil {
		return
	}

	body := fmt.Sprintf("<p>Vous avez été ajouté à l'événement <strong>%s</strong>", html.EscapeString(summary))
	if start != nil {
		body += " prévu le " + frenchDate(*start)
	}
	body += ".</p>"

	if err := notifier.Notify(ctx, added, "Invitation: "+summary, body); err != nil {
		log.Warn("guest notification failed", "summary", summary, "recipients", len(added), "error", err)
	}
}

// shippingFeeCents reads the flat shipping fee from settings. A missing or
// malformed setting means no fee.
func shippingFeeCents(ctx context.Context, settings shared.SettingsRepository) int64 {
	raw, err := settings.Get(ctx, shared.SettingShippingPriceCents)
	if err != nil {
		return 0
	}
	fee, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || fee < 0 {
		return 0
	}
	return fee
}

// mapNotFound converts the repository's not-found kind into the given
// usecase sentinel, passing other failures through.
func mapNotFound(err error, sentinel error) error {
	if infra.IsKind(err, infra.KindNotFound) {
		return errs.Mark(err, sentinel)
	}
	return err
}
