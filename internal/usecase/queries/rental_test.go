//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"atelier-backend/internal/domain/machine"
	"atelier-backend/internal/domain/rental"
	"atelier-backend/internal/usecase/queries"
	"atelier-backend/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addPricedRental(u *stubUoW, machineID uuid.UUID, start time.Time, end *time.Time, withShipping bool) uuid.UUID {
	id := uuid.New()
	u.tx.rentals.rentals[id] = rental.Reconstruct(
		id, machineID, "Jean", "Dupont", "0601020304",
		rental.Interval{Start: start, End: end},
		withShipping, false, false, nil, nil, time.Time{}, time.Time{},
	)
	return id
}

func TestRentalQueriesGetByID(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 6, d, 0, 0, 0, 0, time.UTC)
	}
	pricing := rental.NewPriceCalculator(time.UTC)

	t.Run("closed rental is priced with the machine rate and shipping fee", func(t *testing.T) {
		u := newStubUoW()
		machineID := addMachine(u, "Automower 450X", machine.MaintenanceConfig{
			Type: machine.CycleByCalendarDays, IntervalDays: 30,
		}, nil)
		u.tx.settings.values[shared.SettingShippingPriceCents] = "500"
		id := addPricedRental(u, machineID, day(1), tp(day(3)), true)
		q := queries.NewRentalQueries(u, pricing)

		v, err := q.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "Automower 450X", v.MachineName)
		assert.Equal(t, int64(3500), v.PriceCents)
	})

	t.Run("open rental reads an unpriced zero", func(t *testing.T) {
		u := newStubUoW()
		machineID := addMachine(u, "Automower 450X", machine.MaintenanceConfig{
			Type: machine.CycleByCalendarDays, IntervalDays: 30,
		}, nil)
		id := addPricedRental(u, machineID, day(1), nil, false)
		q := queries.NewRentalQueries(u, pricing)

		v, err := q.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Zero(t, v.PriceCents)
		assert.Nil(t, v.EndDate)
	})

	t.Run("missing shipping setting means no fee", func(t *testing.T) {
		u := newStubUoW()
		machineID := addMachine(u, "Automower 450X", machine.MaintenanceConfig{
			Type: machine.CycleByCalendarDays, IntervalDays: 30,
		}, nil)
		id := addPricedRental(u, machineID, day(1), tp(day(3)), true)
		q := queries.NewRentalQueries(u, pricing)

		v, err := q.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, int64(3000), v.PriceCents)
	})

	t.Run("unknown rental", func(t *testing.T) {
		u := newStubUoW()
		q := queries.NewRentalQueries(u, pricing)

		_, err := q.GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, queries.ErrRentalNotFound)
	})
}

func TestRentalQueriesListByMachine(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 6, d, 0, 0, 0, 0, time.UTC)
	}
	pricing := rental.NewPriceCalculator(time.UTC)

	t.Run("returns only the machine's rentals", func(t *testing.T) {
		u := newStubUoW()
		machineID := addMachine(u, "Automower 450X", machine.MaintenanceConfig{
			Type: machine.CycleByCalendarDays, IntervalDays: 30,
		}, nil)
		otherID := addMachine(u, "Automower 310", machine.MaintenanceConfig{
			Type: machine.CycleByCalendarDays, IntervalDays: 30,
		}, nil)
		addPricedRental(u, machineID, day(1), tp(day(3)), false)
		addPricedRental(u, machineID, day(10), nil, false)
		addPricedRental(u, otherID, day(1), tp(day(2)), false)
		q := queries.NewRentalQueries(u, pricing)

		views, err := q.ListByMachine(context.Background(), machineID)
		require.NoError(t, err)
		assert.Len(t, views, 2)
		for _, v := range views {
			assert.Equal(t, machineID, v.MachineID)
			assert.Equal(t, "Automower 450X", v.MachineName)
		}
	})

	t.Run("unknown machine", func(t *testing.T) {
		u := newStubUoW()
		q := queries.NewRentalQueries(u, pricing)

		_, err := q.ListByMachine(context.Background(), uuid.New())
		assert.ErrorIs(t, err, queries.ErrMachineNotFound)
	})
}
