package commands

import (
	"context"
	"log/slog"
	"time"

	"atelier-backend/internal/domain/rental"
	"atelier-backend/internal/domain/schedule"
	"atelier-backend/internal/pkg/config"
	"atelier-backend/internal/pkg/errs"
	"atelier-backend/internal/pkg/patch"
	"atelier-backend/internal/usecase/shared"
	"atelier-backend/internal/usecase/sync"

	"github.com/google/uuid"
)

type CreateRentalInput struct {
	MachineID       uuid.UUID
	ClientFirstName string
	ClientLastName  string
	ClientPhone     string
	StartDate       time.Time
	EndDate         *time.Time
	WithShipping    bool
	DepositToPay    bool
	Guests          []string
}

// UpdateRentalInput patches a rental. Setting EndDate closes the rental and
// prices it; clearing it reopens the rental.
type UpdateRentalInput struct {
	ClientFirstName *string
	ClientLastName  *string
	ClientPhone     *string
	StartDate       *time.Time
	EndDate         patch.Field[time.Time]
	WithShipping    *bool
	DepositToPay    *bool
	Paid            *bool
	Guests          *[]string
}

type RentalCommands interface {
	Create(ctx context.Context, in CreateRentalInput) (*rental.Rental, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateRentalInput) (*rental.Rental, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type rentalCommandsImpl struct {
	uow        shared.UnitOfWork
	reconciler *sync.Reconciler
	notifier   shared.Notifier
	pricing    *rental.PriceCalculator
	calendarID string
	log        *slog.Logger
}

func NewRentalCommands(
	uow shared.UnitOfWork,
	reconciler *sync.Reconciler,
	notifier shared.Notifier,
	pricing *rental.PriceCalculator,
	cfg config.CalendarConfig,
	log *slog.Logger,
) RentalCommands {
	return &rentalCommandsImpl{
		uow:        uow,
		reconciler: reconciler,
		notifier:   notifier,
		pricing:    pricing,
		calendarID: cfg.RentalID,
		log:        log,
	}
}

func (c *rentalCommandsImpl) Create(ctx context.Context, in CreateRentalInput) (*rental.Rental, error) {
	var (
		r           *rental.Rental
		machineName string
		priceCents  int64
	)

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		m, err := tx.Machines().FindByID(ctx, in.MachineID)
		if err != nil {
			return mapNotFound(err, ErrMachineNotFound)
		}
		machineName = m.Name()

		iv, err := rental.NewInterval(in.StartDate, in.EndDate)
		if err != nil {
			return errs.Mark(err, ErrDomainValidation)
		}

		// The advisory lock serializes the overlap check against concurrent
		// bookings of the same machine; without it two transactions can both
		// pass the check and both insert.
		if err := tx.Rentals().AcquireMachineLock(ctx, in.MachineID); err != nil {
			return err
		}
		existing, err := tx.Rentals().Intervals(ctx, in.MachineID, nil)
		if err != nil {
			return err
		}
		if iv.OverlapsAny(existing) {
			return ErrRentalOverlap
		}

		r, err = rental.NewRental(
			in.MachineID, in.ClientFirstName, in.ClientLastName, in.ClientPhone,
			iv, in.WithShipping, in.DepositToPay, in.Guests,
		)
		if err != nil {
			return errs.Mark(err, ErrDomainValidation)
		}

		priceCents = c.price(ctx, tx, m.PricePerDayCents(), r)
		return tx.Rentals().Create(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	next := r.Snapshot()
	plan := rentalEventPlan(c.calendarID, machineName, r, priceCents)

	syncErr := applySync(ctx, c.reconciler, schedule.OpCreate, nil, &next, plan, c.storeRef(r.ID()))
	notifyGuestAdditions(ctx, c.notifier, c.log, nil, r.Guests(), plan.Details.Summary, next.DueAt)
	return r, syncErr
}

func (c *rentalCommandsImpl) Update(ctx context.Context, id uuid.UUID, in UpdateRentalInput) (*rental.Rental, error) {
	var (
		prev, next  schedule.Snapshot
		updated     *rental.Rental
		machineName string
		priceCents  int64
	)

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		cur, err := tx.Rentals().FindByID(ctx, id)
		if err != nil {
			return mapNotFound(err, ErrRentalNotFound)
		}
		prev = cur.Snapshot()

		m, err := tx.Machines().FindByID(ctx, cur.MachineID())
		if err != nil {
			return mapNotFound(err, ErrMachineNotFound)
		}
		machineName = m.Name()

		iv, err := rental.NewInterval(
			patch.Coalesce(in.StartDate, cur.Interval().Start),
			in.EndDate.Apply(cur.Interval().End),
		)
		if err != nil {
			return errs.Mark(err, ErrDomainValidation)
		}

		// Date changes re-run the overlap guard against everything but
		// this rental itself.
		if in.StartDate != nil || in.EndDate.IsSet() {
			if err := tx.Rentals().AcquireMachineLock(ctx, cur.MachineID()); err != nil {
				return err
			}
			selfID := cur.ID()
			existing, err := tx.Rentals().Intervals(ctx, cur.MachineID(), &selfID)
			if err != nil {
				return err
			}
			if iv.OverlapsAny(existing) {
				return ErrRentalOverlap
			}
		}

		firstName := patch.Coalesce(in.ClientFirstName, cur.ClientFirstName())
		lastName := patch.Coalesce(in.ClientLastName, cur.ClientLastName())
		if firstName == "" && lastName == "" {
			return errs.Mark(rental.ErrEmptyClientName, ErrDomainValidation)
		}
		guests := cur.Guests()
		if in.Guests != nil {
			guests = schedule.NormalizeGuests(*in.Guests)
		}

		updated = rental.Reconstruct(
			cur.ID(), cur.MachineID(),
			firstName, lastName,
			patch.Coalesce(in.ClientPhone, cur.ClientPhone()),
			iv,
			patch.Coalesce(in.WithShipping, cur.WithShipping()),
			patch.Coalesce(in.DepositToPay, cur.DepositToPay()),
			patch.Coalesce(in.Paid, cur.Paid()),
			guests, cur.ExternalEventID(), cur.CreatedAt(), cur.UpdatedAt(),
		)
		next = updated.Snapshot()

		priceCents = c.price(ctx, tx, m.PricePerDayCents(), updated)
		return tx.Rentals().Update(ctx, updated)
	})
	if err != nil {
		return nil, err
	}

	plan := rentalEventPlan(c.calendarID, machineName, updated, priceCents)
	syncErr := applySync(ctx, c.reconciler, schedule.OpUpdate, &prev, &next, plan, c.storeRef(id))
	notifyGuestAdditions(ctx, c.notifier, c.log, prev.Guests, next.Guests, plan.Details.Summary, next.DueAt)
	return updated, syncErr
}

func (c *rentalCommandsImpl) Delete(ctx context.Context, id uuid.UUID) error {
	cur, err := c.uow.Repos().Rentals().FindByID(ctx, id)
	if err != nil {
		return mapNotFound(err, ErrRentalNotFound)
	}

	// Remote event first: a failed calendar delete must leave the row and
	// its stored reference untouched so the delete can be retried.
	prev := cur.Snapshot()
	if err := clearRemoteEvent(ctx, c.reconciler, &prev, c.calendarID, c.storeRef(id)); err != nil {
		return err
	}

	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Rentals().Delete(ctx, id); err != nil {
			return mapNotFound(err, ErrRentalNotFound)
		}
		return nil
	})
}

// price computes the rental amount for the event text. Open rentals are
// unpriced; the shipping fee comes from settings at computation time.
func (c *rentalCommandsImpl) price(ctx context.Context, tx shared.Tx, dailyRateCents int64, r *rental.Rental) int64 {
	if r.IsOpen() {
		return 0
	}
	fee := shippingFeeCents(ctx, tx.Settings())
	iv := r.Interval()
	return c.pricing.PriceCents(iv.Start, iv.End, dailyRateCents, r.WithShipping(), fee)
}

func (c *rentalCommandsImpl) storeRef(id uuid.UUID) refWriter {
	return func(ctx context.Context, eventID *string) error {
		return c.uow.Repos().Rentals().SetExternalEvent(ctx, id, eventID)
	}
}
