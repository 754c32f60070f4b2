package commands

import (
	"context"
	"log/slog"
	"time"

	"atelier-backend/internal/domain/installation"
	"atelier-backend/internal/domain/schedule"
	"atelier-backend/internal/pkg/config"
	"atelier-backend/internal/pkg/errs"
	"atelier-backend/internal/pkg/patch"
	"atelier-backend/internal/usecase/shared"
	"atelier-backend/internal/usecase/sync"

	"github.com/google/uuid"
)

type CreateOrderInput struct {
	ClientFirstName  string
	ClientLastName   string
	ClientAddress    string
	ClientPhone      string
	RobotName        string
	InstallationDate *time.Time
}

// UpdateOrderInput patches an installation order. Setting the installation
// date schedules the appointment, clearing it cancels the event.
type UpdateOrderInput struct {
	ClientFirstName  *string
	ClientLastName   *string
	ClientAddress    *string
	ClientPhone      *string
	RobotName        *string
	InstallationDate patch.Field[time.Time]
}

type InstallationCommands interface {
	Create(ctx context.Context, in CreateOrderInput) (*installation.Order, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateOrderInput) (*installation.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type installationCommandsImpl struct {
	uow        shared.UnitOfWork
	reconciler *sync.Reconciler
	calendarID string
	log        *slog.Logger
}

func NewInstallationCommands(
	uow shared.UnitOfWork,
	reconciler *sync.Reconciler,
	cfg config.CalendarConfig,
	log *slog.Logger,
) InstallationCommands {
	return &installationCommandsImpl{
		uow:        uow,
		reconciler: reconciler,
		calendarID: cfg.InstallationID,
		log:        log,
	}
}

func (c *installationCommandsImpl) Create(ctx context.Context, in CreateOrderInput) (*installation.Order, error) {
	o := &installation.Order{
		ID:               uuid.New(),
		ClientFirstName:  in.ClientFirstName,
		ClientLastName:   in.ClientLastName,
		ClientAddress:    in.ClientAddress,
		ClientPhone:      in.ClientPhone,
		RobotName:        in.RobotName,
		InstallationDate: in.InstallationDate,
	}
	if err := o.Validate(); err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Orders().Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	next := o.Snapshot()
	syncErr := applySync(ctx, c.reconciler, schedule.OpCreate, nil, &next, c.plan(o, next), c.storeRef(o.ID))
	return o, syncErr
}

func (c *installationCommandsImpl) Update(ctx context.Context, id uuid.UUID, in UpdateOrderInput) (*installation.Order, error) {
	var (
		prev, next schedule.Snapshot
		updated    *installation.Order
	)

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		cur, err := tx.Orders().FindByID(ctx, id)
		if err != nil {
			return mapNotFound(err, ErrOrderNotFound)
		}
		prev = cur.Snapshot()

		mod := *cur
		mod.ClientFirstName = patch.Coalesce(in.ClientFirstName, cur.ClientFirstName)
		mod.ClientLastName = patch.Coalesce(in.ClientLastName, cur.ClientLastName)
		mod.ClientAddress = patch.Coalesce(in.ClientAddress, cur.ClientAddress)
		mod.ClientPhone = patch.Coalesce(in.ClientPhone, cur.ClientPhone)
		mod.RobotName = patch.Coalesce(in.RobotName, cur.RobotName)
		mod.InstallationDate = in.InstallationDate.Apply(cur.InstallationDate)
		if err := mod.Validate(); err != nil {
			return errs.Mark(err, ErrDomainValidation)
		}

		updated = &mod
		next = updated.Snapshot()
		return tx.Orders().Update(ctx, updated)
	})
	if err != nil {
		return nil, err
	}

	syncErr := applySync(ctx, c.reconciler, schedule.OpUpdate, &prev, &next, c.plan(updated, next), c.storeRef(id))
	return updated, syncErr
}

func (c *installationCommandsImpl) Delete(ctx context.Context, id uuid.UUID) error {
	cur, err := c.uow.Repos().Orders().FindByID(ctx, id)
	if err != nil {
		return mapNotFound(err, ErrOrderNotFound)
	}

	// Remote event first: a failed calendar delete must leave the row and
	// its stored reference untouched so the delete can be retried.
	prev := cur.Snapshot()
	if err := clearRemoteEvent(ctx, c.reconciler, &prev, c.calendarID, c.storeRef(id)); err != nil {
		return err
	}

	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Orders().Delete(ctx, id); err != nil {
			return mapNotFound(err, ErrOrderNotFound)
		}
		return nil
	})
}

func (c *installationCommandsImpl) plan(o *installation.Order, next schedule.Snapshot) sync.EventPlan {
	var date time.Time
	if next.DueAt != nil {
		date = *next.DueAt
	}
	return installationEventPlan(c.calendarID, o, date)
}

func (c *installationCommandsImpl) storeRef(id uuid.UUID) refWriter {
	return func(ctx context.Context, eventID *string) error {
		return c.uow.Repos().Orders().SetExternalEvent(ctx, id, eventID)
	}
}
