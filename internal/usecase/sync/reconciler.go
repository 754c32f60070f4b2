package sync

import (
	"context"
	"log/slog"

	"atelier-backend/internal/domain/schedule"
)

// EventPlan tells the reconciler where the mirrored event lives and what it
// should contain. Each entity kind supplies its own plan (calendar bucket,
// summary, description), which is all that differs between them.
type EventPlan struct {
	CalendarID string
	Details    EventDetails
}

// Result reports the classified action and the external reference the
// entity must store afterwards.
type Result struct {
	Action     schedule.Action
	EventID    *string
	RefChanged bool
}

// Reconciler derives and applies the minimal calendar action for one entity
// state transition. It owns classification and execution; persisting the
// returned reference is the caller's job.
type Reconciler struct {
	exec *Executor
	log  *slog.Logger
}

func NewReconciler(exec *Executor, log *slog.Logger) *Reconciler {
	return &Reconciler{exec: exec, log: log}
}

func (r *Reconciler) Reconcile(ctx context.Context, op schedule.OperationKind, prev, next *schedule.Snapshot, plan EventPlan) (Result, error) {
	action := schedule.Classify(op, prev, next)

	currentRef := currentReference(op, prev, next)
	if action == schedule.ActionNone {
		r.log.Debug("no calendar action needed", "operation", string(op), "calendar_id", plan.CalendarID)
		return Result{Action: action, EventID: currentRef}, nil
	}

	outcome, err := r.exec.Apply(ctx, action, plan.CalendarID, currentRef, plan.Details)
	if err != nil {
		return Result{Action: action, EventID: outcome.EventID}, err
	}
	return Result{Action: action, EventID: outcome.EventID, RefChanged: outcome.RefChanged}, nil
}

func currentReference(op schedule.OperationKind, prev, next *schedule.Snapshot) *string {
	if op == schedule.OpCreate {
		return nil
	}
	if prev != nil && prev.ExternalEventID != nil {
		return prev.ExternalEventID
	}
	if next != nil {
		return next.ExternalEventID
	}
	return nil
}
