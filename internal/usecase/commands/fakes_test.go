//go:build unit

package commands_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"atelier-backend/internal/domain/callback"
	"atelier-backend/internal/domain/installation"
	"atelier-backend/internal/domain/machine"
	"atelier-backend/internal/domain/rental"
	"atelier-backend/internal/infra"
	"atelier-backend/internal/pkg/config"
	"atelier-backend/internal/usecase/shared"
	"atelier-backend/internal/usecase/sync"

	"github.com/google/uuid"
)

// In-memory collaborators. Every repository and the calendar append to one
// shared call log so tests can assert the side-effect ordering: the database
// write commits first, the calendar call happens after, and the external
// reference is stored last.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type callLog struct {
	entries []string
}

func (l *callLog) add(entry string) {
	l.entries = append(l.entries, entry)
}

func notFoundErr(what string) error {
	return infra.WrapRepoErr(discardLogger(), infra.KindNotFound, what+" not found", nil)
}

type fakeCalendar struct {
	log    *callLog
	nextID string

	createErr error
	updateErr error
	deleteErr error

	created []sync.EventDetails
	updated map[string]sync.EventDetails
	deleted []string
}

func (c *fakeCalendar) CreateEvent(_ context.Context, _ string, ev sync.EventDetails) (string, error) {
	c.log.add("calendar.create")
	if c.createErr != nil {
		return "", c.createErr
	}
	c.created = append(c.created, ev)
	return c.nextID, nil
}

func (c *fakeCalendar) UpdateEvent(_ context.Context, _ string, eventID string, ev sync.EventDetails) error {
	c.log.add("calendar.update")
	if c.updateErr != nil {
		return c.updateErr
	}
	if c.updated == nil {
		c.updated = make(map[string]sync.EventDetails)
	}
	c.updated[eventID] = ev
	return nil
}

func (c *fakeCalendar) DeleteEvent(_ context.Context, _ string, eventID string) error {
	c.log.add("calendar.delete")
	if c.deleteErr != nil {
		return c.deleteErr
	}
	c.deleted = append(c.deleted, eventID)
	return nil
}

type fakeNotifier struct {
	to       [][]string
	subjects []string
}

func (n *fakeNotifier) Notify(_ context.Context, to []string, subject, _ string) error {
	n.to = append(n.to, to)
	n.subjects = append(n.subjects, subject)
	return nil
}

type fakeMachineRepo struct {
	log          *callLog
	machines     map[uuid.UUID]*machine.Machine
	rentalStarts []time.Time
	refs         map[uuid.UUID]*string
	history      []machine.MaintenanceRecord
}

func (r *fakeMachineRepo) FindByID(_ context.Context, id uuid.UUID) (*machine.Machine, error) {
	m, ok := r.machines[id]
	if !ok {
		return nil, notFoundErr("machine")
	}
	return m, nil
}

func (r *fakeMachineRepo) List(context.Context) ([]*machine.Machine, error) {
	out := make([]*machine.Machine, 0, len(r.machines))
	for _, m := range r.machines {
		out = append(out, m)
	}
	return out, nil
}

func (r *fakeMachineRepo) Create(_ context.Context, m *machine.Machine) error {
	r.log.add("machines.create")
	r.machines[m.ID()] = m
	return nil
}

func (r *fakeMachineRepo) Update(_ context.Context, m *machine.Machine) error {
	r.log.add("machines.update")
	if _, ok := r.machines[m.ID()]; !ok {
		return notFoundErr("machine")
	}
	r.machines[m.ID()] = m
	return nil
}

func (r *fakeMachineRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.log.add("machines.delete")
	if _, ok := r.machines[id]; !ok {
		return notFoundErr("machine")
	}
	delete(r.machines, id)
	return nil
}

func (r *fakeMachineRepo) SetExternalEvent(_ context.Context, id uuid.UUID, eventID *string) error {
	r.log.add("machines.set_ref")
	r.refs[id] = eventID
	return nil
}

func (r *fakeMachineRepo) RentalStartsSince(_ context.Context, _ uuid.UUID, since *time.Time) ([]time.Time, error) {
	var out []time.Time
	for _, s := range r.rentalStarts {
		if since == nil || s.After(*since) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeMachineRepo) GuestEmails(context.Context) ([]string, error) {
	return nil, nil
}

func (r *fakeMachineRepo) AddMaintenanceRecord(_ context.Context, rec *machine.MaintenanceRecord) error {
	r.log.add("machines.add_record")
	r.history = append(r.history, *rec)
	return nil
}

func (r *fakeMachineRepo) MaintenanceHistory(_ context.Context, machineID uuid.UUID) ([]machine.MaintenanceRecord, error) {
	var out []machine.MaintenanceRecord
	for _, rec := range r.history {
		if rec.MachineID == machineID {
			out = append(out, rec)
		}
	}
	return out, nil
}

type fakeRentalRepo struct {
	log     *callLog
	rentals map[uuid.UUID]*rental.Rental
	locks   int
	refs    map[uuid.UUID]*string
}

func (r *fakeRentalRepo) FindByID(_ context.Context, id uuid.UUID) (*rental.Rental, error) {
	rt, ok := r.rentals[id]
	if !ok {
		return nil, notFoundErr("rental")
	}
	return rt, nil
}

func (r *fakeRentalRepo) ListByMachine(_ context.Context, machineID uuid.UUID) ([]*rental.Rental, error) {
	var out []*rental.Rental
	for _, rt := range r.rentals {
		if rt.MachineID() == machineID {
			out = append(out, rt)
		}
	}
	return out, nil
}

func (r *fakeRentalRepo) Create(_ context.Context, rt *rental.Rental) error {
	r.log.add("rentals.create")
	r.rentals[rt.ID()] = rt
	return nil
}

func (r *fakeRentalRepo) Update(_ context.Context, rt *rental.Rental) error {
	r.log.add("rentals.update")
	if _, ok := r.rentals[rt.ID()]; !ok {
		return notFoundErr("rental")
	}
	r.rentals[rt.ID()] = rt
	return nil
}

func (r *fakeRentalRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.log.add("rentals.delete")
	if _, ok := r.rentals[id]; !ok {
		return notFoundErr("rental")
	}
	delete(r.rentals, id)
	return nil
}

func (r *fakeRentalRepo) SetExternalEvent(_ context.Context, id uuid.UUID, eventID *string) error {
	r.log.add("rentals.set_ref")
	r.refs[id] = eventID
	return nil
}

func (r *fakeRentalRepo) AcquireMachineLock(_ context.Context, _ uuid.UUID) error {
	r.log.add("rentals.lock")
	r.locks++
	return nil
}

func (r *fakeRentalRepo) Intervals(_ context.Context, machineID uuid.UUID, excludeID *uuid.UUID) ([]rental.Interval, error) {
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

func (r *fakeRentalRepo) GuestEmails(context.Context) ([]string, error) {
	return nil, nil
}

type fakeOrderRepo struct {
	log    *callLog
	orders map[uuid.UUID]*installation.Order
	refs   map[uuid.UUID]*string
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*installation.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, notFoundErr("order")
	}
	return o, nil
}

func (r *fakeOrderRepo) Create(_ context.Context, o *installation.Order) error {
	r.log.add("orders.create")
	r.orders[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) Update(_ context.Context, o *installation.Order) error {
	r.log.add("orders.update")
	if _, ok := r.orders[o.ID]; !ok {
		return notFoundErr("order")
	}
	r.orders[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.log.add("orders.delete")
	if _, ok := r.orders[id]; !ok {
		return notFoundErr("order")
	}
	delete(r.orders, id)
	return nil
}

func (r *fakeOrderRepo) SetExternalEvent(_ context.Context, id uuid.UUID, eventID *string) error {
	r.log.add("orders.set_ref")
	r.refs[id] = eventID
	return nil
}

type fakeCallbackRepo struct {
	log       *callLog
	callbacks map[uuid.UUID]*callback.Callback
	refs      map[uuid.UUID]*string
}

func (r *fakeCallbackRepo) FindByID(_ context.Context, id uuid.UUID) (*callback.Callback, error) {
	c, ok := r.callbacks[id]
	if !ok {
		return nil, notFoundErr("callback")
	}
	return c, nil
}

func (r *fakeCallbackRepo) Create(_ context.Context, c *callback.Callback) error {
	r.log.add("callbacks.create")
	r.callbacks[c.ID] = c
	return nil
}

func (r *fakeCallbackRepo) Update(_ context.Context, c *callback.Callback) error {
	r.log.add("callbacks.update")
	if _, ok := r.callbacks[c.ID]; !ok {
		return notFoundErr("callback")
	}
	r.callbacks[c.ID] = c
	return nil
}

func (r *fakeCallbackRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.log.add("callbacks.delete")
	if _, ok := r.callbacks[id]; !ok {
		return notFoundErr("callback")
	}
	delete(r.callbacks, id)
	return nil
}

func (r *fakeCallbackRepo) SetExternalEvent(_ context.Context, id uuid.UUID, eventID *string) error {
	r.log.add("callbacks.set_ref")
	r.refs[id] = eventID
	return nil
}

type fakeSettingsRepo struct {
	values map[string]string
}

func (r *fakeSettingsRepo) Get(_ context.Context, key string) (string, error) {
	v, ok := r.values[key]
	if !ok {
		return "", notFoundErr("setting")
	}
	return v, nil
}

func (r *fakeSettingsRepo) Set(_ context.Context, key, value string) error {
	r.values[key] = value
	return nil
}

func (r *fakeSettingsRepo) Delete(_ context.Context, key string) error {
	delete(r.values, key)
	return nil
}

func (r *fakeSettingsRepo) List(context.Context) (map[string]string, error) {
	return r.values, nil
}

type fakeTx struct {
	machines  *fakeMachineRepo
	rentals   *fakeRentalRepo
	orders    *fakeOrderRepo
	callbacks *fakeCallbackRepo
	settings  *fakeSettingsRepo
}

func (t *fakeTx) Machines() shared.MachineRepository   { return t.machines }
func (t *fakeTx) Rentals() shared.RentalRepository     { return t.rentals }
func (t *fakeTx) Orders() shared.OrderRepository       { return t.orders }
func (t *fakeTx) Callbacks() shared.CallbackRepository { return t.callbacks }
func (t *fakeTx) Settings() shared.SettingsRepository  { return t.settings }

type fakeUoW struct {
	tx *fakeTx
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, u.tx)
}

func (u *fakeUoW) Repos() shared.Tx {
	return u.tx
}

// fixture wires the command layer against the in-memory collaborators with a
// real reconciler and executor in the middle.
type fixture struct {
	log      *callLog
	cal      *fakeCalendar
	tx       *fakeTx
	uow      *fakeUoW
	notifier *fakeNotifier
	cfg      config.CalendarConfig
	rec      *sync.Reconciler
}

func newFixture() *fixture {
	log := &callLog{}
	cal := &fakeCalendar{log: log, nextID: "ev-1"}
	tx := &fakeTx{
		machines:  &fakeMachineRepo{log: log, machines: map[uuid.UUID]*machine.Machine{}, refs: map[uuid.UUID]*string{}},
		rentals:   &fakeRentalRepo{log: log, rentals: map[uuid.UUID]*rental.Rental{}, refs: map[uuid.UUID]*string{}},
		orders:    &fakeOrderRepo{log: log, orders: map[uuid.UUID]*installation.Order{}, refs: map[uuid.UUID]*string{}},
		callbacks: &fakeCallbackRepo{log: log, callbacks: map[uuid.UUID]*callback.Callback{}, refs: map[uuid.UUID]*string{}},
		settings:  &fakeSettingsRepo{values: map[string]string{}},
	}

	slogger := discardLogger()
	exec := sync.NewExecutor(cal, time.Second, slogger)

	return &fixture{
		log:      log,
		cal:      cal,
		tx:       tx,
		uow:      &fakeUoW{tx: tx},
		notifier: &fakeNotifier{},
		cfg:      config.NewTestConfig().Calendar,
		rec:      sync.NewReconciler(exec, slogger),
	}
}

func sp(s string) *string       { return &s }
func tp(t time.Time) *time.Time { return &t }
func bp(b bool) *bool           { return &b }
func ip(v int) *int             { return &v }
