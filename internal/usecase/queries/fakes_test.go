//go:build unit

package queries_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"atelier-backend/internal/domain/machine"
	"atelier-backend/internal/domain/rental"
	"atelier-backend/internal/infra"
	"atelier-backend/internal/usecase/shared"

	"github.com/google/uuid"
)

// Read-side stubs. Embedding the repository interface leaves the methods the
// queries never call unimplemented; calling one panics, which is exactly the
// signal wanted in a test.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func notFoundErr(what string) error {
	return infra.WrapRepoErr(discardLogger(), infra.KindNotFound, what+" not found", nil)
}

type stubMachineRepo struct {
	shared.MachineRepository
	machines map[uuid.UUID]*machine.Machine
	starts   map[uuid.UUID][]time.Time
	history  map[uuid.UUID][]machine.MaintenanceRecord
	guests   []string
}

func (r *stubMachineRepo) FindByID(_ context.Context, id uuid.UUID) (*machine.Machine, error) {
	m, ok := r.machines[id]
	if !ok {
		return nil, notFoundErr("machine")
	}
	return m, nil
}

func (r *stubMachineRepo) List(context.Context) ([]*machine.Machine, error) {
	out := make([]*machine.Machine, 0, len(r.machines))
	for _, m := range r.machines {
		out = append(out, m)
	}
	return out, nil
}

func (r *stubMachineRepo) RentalStartsSince(_ context.Context, id uuid.UUID, since *time.Time) ([]time.Time, error) {
	var out []time.Time
	for _, s := range r.starts[id] {
		if since == nil || s.After(*since) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *stubMachineRepo) GuestEmails(context.Context) ([]string, error) {
	return r.guests, nil
}

func (r *stubMachineRepo) MaintenanceHistory(_ context.Context, machineID uuid.UUID) ([]machine.MaintenanceRecord, error) {
	return r.history[machineID], nil
}

type stubRentalRepo struct {
	shared.RentalRepository
	rentals map[uuid.UUID]*rental.Rental
	guests  []string
}

func (r *stubRentalRepo) FindByID(_ context.Context, id uuid.UUID) (*rental.Rental, error) {
	rt, ok := r.rentals[id]
	if !ok {
		return nil, notFoundErr("rental")
	}
	return rt, nil
}

func (r *stubRentalRepo) ListByMachine(_ context.Context, machineID uuid.UUID) ([]*rental.Rental, error) {
	var out []*rental.Rental
	for _, rt := range r.rentals {
		if rt.MachineID() == machineID {
			out = append(out, rt)
		}
	}
	return out, nil
}

func (r *stubRentalRepo) Intervals(_ context.Context, machineID uuid.UUID, excludeID *uuid.UUID) ([]rental.Interval, error) {
	var out []rental.Interval
	for id, rt := range r.rentals {
		if rt.MachineID() != machineID {
			continue
		}
		if excludeID != nil && id == *excludeID {
			continue
		}
		out = append(out, rt.Interval())
	}
	return out, nil
}

func (r *stubRentalRepo) GuestEmails(context.Context) ([]string, error) {
	return r.guests, nil
}

type stubSettingsRepo struct {
	shared.SettingsRepository
	values map[string]string
}

func (r *stubSettingsRepo) Get(_ context.Context, key string) (string, error) {
	v, ok := r.values[key]
	if !ok {
		return "", notFoundErr("setting")
	}
	return v, nil
}

type stubTx struct {
	machines *stubMachineRepo
	rentals  *stubRentalRepo
	settings *stubSettingsRepo
}

func (t *stubTx) Machines() shared.MachineRepository   { return t.machines }
func (t *stubTx) Rentals() shared.RentalRepository     { return t.rentals }
func (t *stubTx) Orders() shared.OrderRepository       { return nil }
func (t *stubTx) Callbacks() shared.CallbackRepository { return nil }
func (t *stubTx) Settings() shared.SettingsRepository  { return t.settings }

type stubUoW struct {
	tx *stubTx
}

func (u *stubUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, u.tx)
}

func (u *stubUoW) Repos() shared.Tx {
	return u.tx
}

func newStubUoW() *stubUoW {
	return &stubUoW{tx: &stubTx{
		machines: &stubMachineRepo{
			machines: map[uuid.UUID]*machine.Machine{},
			starts:   map[uuid.UUID][]time.Time{},
			history:  map[uuid.UUID][]machine.MaintenanceRecord{},
		},
		rentals:  &stubRentalRepo{rentals: map[uuid.UUID]*rental.Rental{}},
		settings: &stubSettingsRepo{values: map[string]string{}},
	}}
}

func tp(t time.Time) *time.Time { return &t }
