package queries

import (
	"context"
	"strconv"
	"time"

	"atelier-backend/internal/domain/rental"
	"atelier-backend/internal/infra"
	"atelier-backend/internal/pkg/errs"
	"atelier-backend/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrRentalNotFound = errs.New("rental not found")

// RentalView is the read-side shape of a rental. PriceCents is derived at
// read time from the dates, the machine's daily rate and the shipping fee;
// open rentals are unpriced and read 0.
type RentalView struct {
	ID              uuid.UUID
	MachineID       uuid.UUID
	MachineName     string
	ClientFirstName string
	ClientLastName  string
	ClientPhone     string
	StartDate       time.Time
	EndDate         *time.Time
	WithShipping    bool
	DepositToPay    bool
	Paid            bool
	PriceCents      int64
	Guests          []string
	ExternalEventID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type RentalQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*RentalView, error)
	ListByMachine(ctx context.Context, machineID uuid.UUID) ([]RentalView, error)
}

type rentalQueriesImpl struct {
	uow     shared.UnitOfWork
	pricing *rental.PriceCalculator
}

func NewRentalQueries(uow shared.UnitOfWork, pricing *rental.PriceCalculator) RentalQueries {
	return &rentalQueriesImpl{uow: uow, pricing: pricing}
}

func (q *rentalQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*RentalView, error) {
	repos := q.uow.Repos()
	r, err := repos.Rentals().FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrRentalNotFound)
		}
		return nil, err
	}

	m, err := repos.Machines().FindByID(ctx, r.MachineID())
	if err != nil {
		return nil, err
	}
	fee := q.shippingFee(ctx, repos)
	v := q.view(r, m.Name(), m.PricePerDayCents(), fee)
	return &v, nil
}

func (q *rentalQueriesImpl) ListByMachine(ctx context.Context, machineID uuid.UUID) ([]RentalView, error) {
	repos := q.uow.Repos()
	m, err := repos.Machines().FindByID(ctx, machineID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrMachineNotFound)
		}
		return nil, err
	}

	rentals, err := repos.Rentals().ListByMachine(ctx, machineID)
	if err != nil {
		return nil, err
	}

	fee := q.shippingFee(ctx, repos)
	views := make([]RentalView, 0, len(rentals))
	for _, r := range rentals {
		views = append(views, q.view(r, m.Name(), m.PricePerDayCents(), fee))
	}
	return views, nil
}

func (q *rentalQueriesImpl) shippingFee(ctx context.Context, repos shared.Tx) int64 {
	raw, err := repos.Settings().Get(ctx, shared.SettingShippingPriceCents)
	if err != nil {
		return 0
	}
	fee, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || fee < 0 {
		return 0
	}
	return fee
}

func (q *rentalQueriesImpl) view(r *rental.Rental, machineName string, dailyRateCents, shippingFeeCents int64) RentalView {
	iv := r.Interval()
	return RentalView{
		ID:              r.ID(),
		MachineID:       r.MachineID(),
		MachineName:     machineName,
		ClientFirstName: r.ClientFirstName(),
		ClientLastName:  r.ClientLastName(),
		ClientPhone:     r.ClientPhone(),
		StartDate:       iv.Start,
		EndDate:         iv.End,
		WithShipping:    r.WithShipping(),
		DepositToPay:    r.DepositToPay(),
		Paid:            r.Paid(),
		PriceCents:      q.pricing.PriceCents(iv.Start, iv.End, dailyRateCents, r.WithShipping(), shippingFeeCents),
		Guests:          r.Guests(),
		ExternalEventID: r.ExternalEventID(),
		CreatedAt:       r.CreatedAt(),
		UpdatedAt:       r.UpdatedAt(),
	}
}
