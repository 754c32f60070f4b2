package commands

import (
	"context"
	"log/slog"

	"atelier-backend/internal/domain/callback"
	"atelier-backend/internal/domain/schedule"
	"atelier-backend/internal/pkg/clock"
	"atelier-backend/internal/pkg/config"
	"atelier-backend/internal/pkg/errs"
	"atelier-backend/internal/pkg/patch"
	"atelier-backend/internal/usecase/shared"
	"atelier-backend/internal/usecase/sync"

	"github.com/google/uuid"
)

type CreateCallbackInput struct {
	PhoneNumber       string
	ClientName        string
	Reason            callback.Reason
	Description       string
	ResponsiblePerson string
}

type UpdateCallbackInput struct {
	PhoneNumber       *string
	ClientName        *string
	Reason            *callback.Reason
	Description       *string
	ResponsiblePerson *string
	Completed         *bool
}

type CallbackCommands interface {
	Create(ctx context.Context, in CreateCallbackInput) (*callback.Callback, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateCallbackInput) (*callback.Callback, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type callbackCommandsImpl struct {
	uow        shared.UnitOfWork
	reconciler *sync.Reconciler
	clock      clock.Clock
	calendarID string
	log        *slog.Logger
}

func NewCallbackCommands(
	uow shared.UnitOfWork,
	reconciler *sync.Reconciler,
	clk clock.Clock,
	cfg config.CalendarConfig,
	log *slog.Logger,
) CallbackCommands {
	return &callbackCommandsImpl{
		uow:        uow,
		reconciler: reconciler,
		clock:      clk,
		calendarID: cfg.CallbackID,
		log:        log,
	}
}

// Create registers the callback and blocks a slot on the callback calendar
// starting now. The slot is fixed at creation time and never moves.
func (c *callbackCommandsImpl) Create(ctx context.Context, in CreateCallbackInput) (*callback.Callback, error) {
	cb := &callback.Callback{
		ID:                uuid.New(),
		PhoneNumber:       in.PhoneNumber,
		ClientName:        in.ClientName,
		Reason:            in.Reason,
		Description:       in.Description,
		ResponsiblePerson: in.ResponsiblePerson,
		ScheduledAt:       c.clock.Now(),
	}
	if err := cb.Validate(); err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Callbacks().Create(ctx, cb)
	})
	if err != nil {
		return nil, err
	}

	next := cb.Snapshot()
	plan := callbackEventPlan(c.calendarID, cb)
	syncErr := applySync(ctx, c.reconciler, schedule.OpCreate, nil, &next, plan, c.storeRef(cb.ID))
	return cb, syncErr
}

func (c *callbackCommandsImpl) Update(ctx context.Context, id uuid.UUID, in UpdateCallbackInput) (*callback.Callback, error) {
	var (
		prev, next schedule.Snapshot
		updated    *callback.Callback
	)

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		cur, err := tx.Callbacks().FindByID(ctx, id)
		if err != nil {
			return mapNotFound(err, ErrCallbackNotFound)
		}
		prev = cur.Snapshot()

		mod := *cur
		mod.PhoneNumber = patch.Coalesce(in.PhoneNumber, cur.PhoneNumber)
		mod.ClientName = patch.Coalesce(in.ClientName, cur.ClientName)
		mod.Reason = patch.Coalesce(in.Reason, cur.Reason)
		mod.Description = patch.Coalesce(in.Description, cur.Description)
		mod.ResponsiblePerson = patch.Coalesce(in.ResponsiblePerson, cur.ResponsiblePerson)
		mod.Completed = patch.Coalesce(in.Completed, cur.Completed)
		if err := mod.Validate(); err != nil {
			return errs.Mark(err, ErrDomainValidation)
		}

		updated = &mod
		next = updated.Snapshot()
		return tx.Callbacks().Update(ctx, updated)
	})
	if err != nil {
		return nil, err
	}

	plan := callbackEventPlan(c.calendarID, updated)
	syncErr := applySync(ctx, c.reconciler, schedule.OpUpdate, &prev, &next, plan, c.storeRef(id))
	return updated, syncErr
}

func (c *callbackCommandsImpl) Delete(ctx context.Context, id uuid.UUID) error {
	cur, err := c.uow.Repos().Callbacks().FindByID(ctx, id)
	if err != nil {
		return mapNotFound(err, ErrCallbackNotFound)
	}

	// Remote event first: a failed calendar delete must leave the row and
	// its stored reference untouched so the delete can be retried.
	prev := cur.Snapshot()
	if err := clearRemoteEvent(ctx, c.reconciler, &prev, c.calendarID, c.storeRef(id)); err != nil {
		return err
	}

	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Callbacks().Delete(ctx, id); err != nil {
			return mapNotFound(err, ErrCallbackNotFound)
		}
		return nil
	})
}

func (c *callbackCommandsImpl) storeRef(id uuid.UUID) refWriter {
	return func(ctx context.Context, eventID *string) error {
		return c.uow.Repos().Callbacks().SetExternalEvent(ctx, id, eventID)
	}
}
