//go:build integration

package integration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"atelier-backend/internal/domain/machine"
	"atelier-backend/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createMachine(t *testing.T, s *stack) uuid.UUID {
	t.Helper()
	m, err := s.machines.Create(context.Background(), commands.CreateMachineInput{
		Name:             "Automower 450X",
		PricePerDayCents: 4500,
		Maintenance: machine.MaintenanceConfig{
			Type:         machine.CycleByCalendarDays,
			IntervalDays: 30,
		},
	})
	require.NoError(t, err)
	return m.ID()
}

func bookingInput(machineID uuid.UUID, startDay, endDay int) commands.CreateRentalInput {
	start := time.Date(2026, 7, startDay, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, endDay, 0, 0, 0, 0, time.UTC)
	return commands.CreateRentalInput{
		MachineID:       machineID,
		ClientFirstName: "Jean",
		ClientLastName:  "Dupont",
		StartDate:       start,
		EndDate:         &end,
	}
}

func TestSequentialOverlappingBookings(t *testing.T) {
	s := newStack(t)
	machineID := createMachine(t, s)
	ctx := context.Background()

	r, err := s.rentals.Create(ctx, bookingInput(machineID, 1, 5))
	require.NoError(t, err)

	// The calendar reference was persisted post-commit.
	stored, err := s.uow.Repos().Rentals().FindByID(ctx, r.ID())
	require.NoError(t, err)
	assert.NotNil(t, stored.ExternalEventID)

	_, err = s.rentals.Create(ctx, bookingInput(machineID, 5, 8))
	assert.ErrorIs(t, err, commands.ErrRentalOverlap, "shared boundary day must collide")

	_, err = s.rentals.Create(ctx, bookingInput(machineID, 6, 8))
	assert.NoError(t, err, "adjacent non-overlapping dates must pass")
}

// TestConcurrentOverlappingBookings races two transactions over the same
// dates. The per-machine advisory lock serializes the overlap check, so
// exactly one booking wins every round.
func TestConcurrentOverlappingBookings(t *testing.T) {
	s := newStack(t)
	machineID := createMachine(t, s)
	ctx := context.Background()

	for round := range 5 {
		startDay := 1 + round*4
		in := bookingInput(machineID, startDay, startDay+2)

		var wg sync.WaitGroup
		results := make([]error, 2)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, results[i] = s.rentals.Create(ctx, in)
			}()
		}
		wg.Wait()

		var won, rejected int
		for _, err := range results {
			switch {
			case err == nil:
				won++
			case errors.Is(err, commands.ErrRentalOverlap):
				rejected++
			default:
				t.Fatalf("unexpected booking error: %v", err)
			}
		}
		assert.Equal(t, 1, won, "round %d: exactly one booking must win", round)
		assert.Equal(t, 1, rejected, "round %d: the loser must see the overlap", round)
	}

	rentals, err := s.uow.Repos().Rentals().ListByMachine(ctx, machineID)
	require.NoError(t, err)
	assert.Len(t, rentals, 5)
}
