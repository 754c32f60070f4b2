package commands

import (
	"context"
	"log/slog"
	"time"

	"atelier-backend/internal/domain/machine"
	"atelier-backend/internal/domain/schedule"
	"atelier-backend/internal/pkg/config"
	"atelier-backend/internal/pkg/errs"
	"atelier-backend/internal/pkg/patch"
	"atelier-backend/internal/usecase/shared"
	"atelier-backend/internal/usecase/sync"

	"github.com/google/uuid"
)

type CreateMachineInput struct {
	Name             string
	PricePerDayCents int64
	DepositCents     int64
	Maintenance      machine.MaintenanceConfig
	Parts            []string
	Guests           []string
}

// UpdateMachineInput patches a machine. Nil pointer fields keep the current
// value; LastServicedAt distinguishes keep, set and clear because recording
// a service and forgetting one are both legitimate edits. ServiceNotes only
// matters when LastServicedAt sets a date: it lands in the service log.
type UpdateMachineInput struct {
	Name             *string
	PricePerDayCents *int64
	DepositCents     *int64
	CycleType        *machine.CycleType
	IntervalDays     *int
	IntervalRentals  *int
	LastServicedAt   patch.Field[time.Time]
	ServiceNotes     string
	Parts            *[]string
	Guests           *[]string
}

type MachineCommands interface {
	Create(ctx context.Context, in CreateMachineInput) (*machine.Machine, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateMachineInput) (*machine.Machine, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type machineCommandsImpl struct {
	uow        shared.UnitOfWork
	reconciler *sync.Reconciler
	notifier   shared.Notifier
	calendarID string
	log        *slog.Logger
}

func NewMachineCommands(
	uow shared.UnitOfWork,
	reconciler *sync.Reconciler,
	notifier shared.Notifier,
	cfg config.CalendarConfig,
	log *slog.Logger,
) MachineCommands {
	return &machineCommandsImpl{
		uow:        uow,
		reconciler: reconciler,
		notifier:   notifier,
		calendarID: cfg.MaintenanceID,
		log:        log,
	}
}

func (c *machineCommandsImpl) Create(ctx context.Context, in CreateMachineInput) (*machine.Machine, error) {
	m, err := machine.NewMachine(in.Name, in.PricePerDayCents, in.DepositCents, in.Maintenance, in.Parts, in.Guests)
	if err != nil {
		return nil, errs.Mark(err, ErrDomainValidation)
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Machines().Create(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	// A brand-new machine has no rental history yet.
	next := m.Snapshot(nil)
	plan := c.plan(m, next)

	syncErr := applySync(ctx, c.reconciler, schedule.OpCreate, nil, &next, plan, c.storeRef(m.ID()))
	if next.DueAt != nil {
		notifyGuestAdditions(ctx, c.notifier, c.log, nil, m.Guests(), plan.Details.Summary, next.DueAt)
	}
	return m, syncErr
}

func (c *machineCommandsImpl) Update(ctx context.Context, id uuid.UUID, in UpdateMachineInput) (*machine.Machine, error) {
	var (
		prev, next schedule.Snapshot
		updated    *machine.Machine
	)

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		cur, err := tx.Machines().FindByID(ctx, id)
		if err != nil {
			return mapNotFound(err, ErrMachineNotFound)
		}

		curCfg := cur.Maintenance()
		starts, err := tx.Machines().RentalStartsSince(ctx, id, curCfg.LastServicedAt)
		if err != nil {
			return err
		}
		prev = cur.Snapshot(starts)

		cfg := machine.MaintenanceConfig{
			Type:            patch.Coalesce(in.CycleType, curCfg.Type),
			IntervalDays:    patch.Coalesce(in.IntervalDays, curCfg.IntervalDays),
			IntervalRentals: patch.Coalesce(in.IntervalRentals, curCfg.IntervalRentals),
			LastServicedAt:  in.LastServicedAt.Apply(curCfg.LastServicedAt),
		}

		name := patch.Coalesce(in.Name, cur.Name())
		price := patch.Coalesce(in.PricePerDayCents, cur.PricePerDayCents())
		deposit := patch.Coalesce(in.DepositCents, cur.DepositCents())
		parts := cur.Parts()
		if in.Parts != nil {
			parts = machine.NormalizeParts(*in.Parts)
		}
		guests := cur.Guests()
		if in.Guests != nil {
			guests = schedule.NormalizeGuests(*in.Guests)
		}

		if err := validateMachine(name, price, deposit, cfg); err != nil {
			return errs.Mark(err, ErrDomainValidation)
		}

		updated = machine.Reconstruct(
			cur.ID(), name, price, deposit, cfg, parts, guests,
			cur.ExternalEventID(), cur.CreatedAt(), cur.UpdatedAt(),
		)

		// Recording a service appends to the append-only service log.
		if in.LastServicedAt.IsSet() && cfg.LastServicedAt != nil {
			rec := machine.NewMaintenanceRecord(id, *cfg.LastServicedAt, in.ServiceNotes)
			if err := tx.Machines().AddMaintenanceRecord(ctx, rec); err != nil {
				return err
			}
		}

		// A changed service date moves the rental-count window, so the
		// history feeding the due date must be re-read.
		if in.LastServicedAt.IsSet() {
			starts, err = tx.Machines().RentalStartsSince(ctx, id, cfg.LastServicedAt)
			if err != nil {
				return err
			}
		}
		next = updated.Snapshot(starts)

		return tx.Machines().Update(ctx, updated)
	})
	if err != nil {
		return nil, err
	}

	plan := c.plan(updated, next)
	syncErr := applySync(ctx, c.reconciler, schedule.OpUpdate, &prev, &next, plan, c.storeRef(id))
	if next.DueAt != nil {
		notifyGuestAdditions(ctx, c.notifier, c.log, prev.Guests, next.Guests, plan.Details.Summary, next.DueAt)
	}
	return updated, syncErr
}

func (c *machineCommandsImpl) Delete(ctx context.Context, id uuid.UUID) error {
	cur, err := c.uow.Repos().Machines().FindByID(ctx, id)
	if err != nil {
		return mapNotFound(err, ErrMachineNotFound)
	}

	// The remote event goes first. Deleting the row first would destroy the
	// only stored copy of the event reference, so a failed calendar call
	// would orphan the remote event with no way to retry.
	prev := cur.Snapshot(nil)
	if err := clearRemoteEvent(ctx, c.reconciler, &prev, c.calendarID, c.storeRef(id)); err != nil {
		return err
	}

	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Machines().Delete(ctx, id); err != nil {
			return mapNotFound(err, ErrMachineNotFound)
		}
		return nil
	})
}

func (c *machineCommandsImpl) plan(m *machine.Machine, next schedule.Snapshot) sync.EventPlan {
	var due time.Time
	if next.DueAt != nil {
		due = *next.DueAt
	}
	return maintenanceEventPlan(c.calendarID, m, due)
}

func (c *machineCommandsImpl) storeRef(id uuid.UUID) refWriter {
	return func(ctx context.Context, eventID *string) error {
		return c.uow.Repos().Machines().SetExternalEvent(ctx, id, eventID)
	}
}

func validateMachine(name string, priceCents, depositCents int64, cfg machine.MaintenanceConfig) error {
	if name == "" {
		return machine.ErrEmptyName
	}
	if priceCents < 0 {
		return machine.ErrNegativePrice
	}
	if depositCents < 0 {
		return machine.ErrNegativeDeposit
	}
	return cfg.Validate()
}
