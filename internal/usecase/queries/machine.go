package queries

import (
	"context"
	"sort"
	"time"

	"atelier-backend/internal/domain/machine"
	"atelier-backend/internal/infra"
	"atelier-backend/internal/pkg/errs"
	"atelier-backend/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrMachineNotFound = errs.New("machine not found")

// MachineView is the read-side shape of a machine. NextMaintenanceAt is
// derived on every read from the config and the rental history; it is never
// a stored column.
type MachineView struct {
	ID                      uuid.UUID
	Name                    string
	PricePerDayCents        int64
	DepositCents            int64
	Maintenance             machine.MaintenanceConfig
	NextMaintenanceAt       *time.Time
	RentalCountSinceService int
	Parts                   []string
	Guests                  []string
	ExternalEventID         *string
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

type MachineQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*MachineView, error)
	List(ctx context.Context) ([]MachineView, error)
	// ReservedDays expands the machine's rental intervals into the
	// individual calendar days that cannot be booked.
	ReservedDays(ctx context.Context, machineID uuid.UUID) ([]time.Time, error)
	// DueForMaintenance splits machines with a due date into late (due
	// strictly before now) and upcoming (due within the horizon).
	DueForMaintenance(ctx context.Context, now time.Time, horizon time.Duration) (late, upcoming []MachineView, err error)
	// MaintenanceHistory lists the machine's service log, most recent first.
	MaintenanceHistory(ctx context.Context, machineID uuid.UUID) ([]machine.MaintenanceRecord, error)
	// KnownGuestEmails returns the distinct guest addresses seen across
	// machines and rentals, sorted.
	KnownGuestEmails(ctx context.Context) ([]string, error)
}

type machineQueriesImpl struct {
	uow shared.UnitOfWork
	loc *time.Location
}

func NewMachineQueries(uow shared.UnitOfWork, loc *time.Location) MachineQueries {
	if loc == nil {
		loc = time.UTC
	}
	return &machineQueriesImpl{uow: uow, loc: loc}
}

func (q *machineQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*MachineView, error) {
	repos := q.uow.Repos()
	m, err := repos.Machines().FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrMachineNotFound)
		}
		return nil, err
	}
	v, err := q.view(ctx, repos, m)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (q *machineQueriesImpl) List(ctx context.Context) ([]MachineView, error) {
	repos := q.uow.Repos()
	machines, err := repos.Machines().List(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]MachineView, 0, len(machines))
	for _, m := range machines {
		v, err := q.view(ctx, repos, m)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func (q *machineQueriesImpl) ReservedDays(ctx context.Context, machineID uuid.UUID) ([]time.Time, error) {
	repos := q.uow.Repos()
	if _, err := repos.Machines().FindByID(ctx, machineID); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrMachineNotFound)
		}
		return nil, err
	}

	intervals, err := repos.Rentals().Intervals(ctx, machineID, nil)
	if err != nil {
		return nil, err
	}

	seen := make(map[time.Time]struct{})
	var days []time.Time
	for _, iv := range intervals {
		day := q.midnight(iv.Start)
		end := q.midnight(iv.EffectiveEnd())
		for !day.After(end) {
			if _, ok := seen[day]; !ok {
				seen[day] = struct{}{}
				days = append(days, day)
			}
			day = day.AddDate(0, 0, 1)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}

func (q *machineQueriesImpl) DueForMaintenance(ctx context.Context, now time.Time, horizon time.Duration) (late, upcoming []MachineView, err error) {
	views, err := q.List(ctx)
	if err != nil {
		return nil, nil, err
	}

	limit := now.Add(horizon)
	for _, v := range views {
		if v.NextMaintenanceAt == nil {
			continue
		}
		due := *v.NextMaintenanceAt
		switch {
		case due.Before(now):
			late = append(late, v)
		case !due.After(limit):
			upcoming = append(upcoming, v)
		}
	}
	return late, upcoming, nil
}

func (q *machineQueriesImpl) MaintenanceHistory(ctx context.Context, machineID uuid.UUID) ([]machine.MaintenanceRecord, error) {
	repos := q.uow.Repos()
	if _, err := repos.Machines().FindByID(ctx, machineID); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, ErrMachineNotFound)
		}
		return nil, err
	}
	return repos.Machines().MaintenanceHistory(ctx, machineID)
}

func (q *machineQueriesImpl) KnownGuestEmails(ctx context.Context) ([]string, error) {
	repos := q.uow.Repos()
	fromMachines, err := repos.Machines().GuestEmails(ctx)
	if err != nil {
		return nil, err
	}
	fromRentals, err := repos.Rentals().GuestEmails(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(fromMachines)+len(fromRentals))
	var emails []string
	for _, e := range append(fromMachines, fromRentals...) {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		emails = append(emails, e)
	}
	sort.Strings(emails)
	return emails, nil
}

func (q *machineQueriesImpl) view(ctx context.Context, repos shared.Tx, m *machine.Machine) (MachineView, error) {
	cfg := m.Maintenance()
	starts, err := repos.Machines().RentalStartsSince(ctx, m.ID(), cfg.LastServicedAt)
	if err != nil {
		return MachineView{}, err
	}
	return MachineView{
		ID:                      m.ID(),
		Name:                    m.Name(),
		PricePerDayCents:        m.PricePerDayCents(),
		DepositCents:            m.DepositCents(),
		Maintenance:             cfg,
		NextMaintenanceAt:       cfg.NextDue(starts),
		RentalCountSinceService: len(starts),
		Parts:                   m.Parts(),
		Guests:                  m.Guests(),
		ExternalEventID:         m.ExternalEventID(),
		CreatedAt:               m.CreatedAt(),
		UpdatedAt:               m.UpdatedAt(),
	}, nil
}

func (q *machineQueriesImpl) midnight(t time.Time) time.Time {
	lt := t.In(q.loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, q.loc)
}
