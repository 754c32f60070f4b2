package repository

import (
	"context"
	"log/slog"
	"time"

	"atelier-backend/internal/domain/machine"
	"atelier-backend/internal/pkg/pgconv"
	"atelier-backend/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const machineColumns = `id, name, price_per_day_cents, deposit_cents,
	maintenance_type, maintenance_interval_days, maintenance_interval_rentals,
	last_serviced_at, parts, guests, external_event_id, created_at, updated_at`

type MachineRepository struct {
	db  DBTX
	log *slog.Logger
}

func NewMachineRepository(db DBTX, log *slog.Logger) shared.MachineRepository {
	return &MachineRepository{db: db, log: log}
}

func (r *MachineRepository) FindByID(ctx context.Context, id uuid.UUID) (*machine.Machine, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+machineColumns+` FROM machines WHERE id = $1`,
		pgconv.PgUUID(id))
	m, err := scanMachine(row)
	if err != nil {
		return nil, wrapErr(r.log, "failed to find machine", err)
	}
	return m, nil
}

func (r *MachineRepository) List(ctx context.Context) ([]*machine.Machine, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+machineColumns+` FROM machines ORDER BY name, id`)
	if err != nil {
		return nil, wrapErr(r.log, "failed to list machines", err)
	}
	defer rows.Close()

	var machines []*machine.Machine
	for rows.Next() {
		m, err := scanMachine(rows)
		if err != nil {
			return nil, wrapErr(r.log, "failed to scan machine", err)
		}
		machines = append(machines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(r.log, "failed to list machines", err)
	}
	return machines, nil
}

func (r *MachineRepository) Create(ctx context.Context, m *machine.Machine) error {
	cfg := m.Maintenance()
	_, err := r.db.Exec(ctx,
		`INSERT INTO machines (id, name, price_per_day_cents, deposit_cents,
			maintenance_type, maintenance_interval_days, maintenance_interval_rentals,
			last_serviced_at, parts, guests, external_event_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		pgconv.PgUUID(m.ID()), m.Name(), m.PricePerDayCents(), m.DepositCents(),
		string(cfg.Type), int32(cfg.IntervalDays), int32(cfg.IntervalRentals),
		pgconv.PgTimestamptzPtr(cfg.LastServicedAt), m.Parts(), m.Guests(),
		pgconv.PgText(m.ExternalEventID()))
	if err != nil {
		return wrapErr(r.log, "failed to create machine", err)
	}
	return nil
}

func (r *MachineRepository) Update(ctx context.Context, m *machine.Machine) error {
	cfg := m.Maintenance()
	tag, err := r.db.Exec(ctx,
		`UPDATE machines SET name = $2, price_per_day_cents = $3, deposit_cents = $4,
			maintenance_type = $5, maintenance_interval_days = $6,
			maintenance_interval_rentals = $7, last_serviced_at = $8, parts = $9,
			guests = $10, updated_at = now()
		 WHERE id = $1`,
		pgconv.PgUUID(m.ID()), m.Name(), m.PricePerDayCents(), m.DepositCents(),
		string(cfg.Type), int32(cfg.IntervalDays), int32(cfg.IntervalRentals),
		pgconv.PgTimestamptzPtr(cfg.LastServicedAt), m.Parts(), m.Guests())
	if err != nil {
		return wrapErr(r.log, "failed to update machine", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(r.log, "machine to update does not exist")
	}
	return nil
}

func (r *MachineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM machines WHERE id = $1`, pgconv.PgUUID(id))
	if err != nil {
		return wrapErr(r.log, "failed to delete machine", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(r.log, "machine to delete does not exist")
	}
	return nil
}

func (r *MachineRepository) SetExternalEvent(ctx context.Context, id uuid.UUID, eventID *string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE machines SET external_event_id = $2, updated_at = now() WHERE id = $1`,
		pgconv.PgUUID(id), pgconv.PgText(eventID))
	if err != nil {
		return wrapErr(r.log, "failed to store machine event reference", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(r.log, "machine for event reference does not exist")
	}
	return nil
}

func (r *MachineRepository) RentalStartsSince(ctx context.Context, machineID uuid.UUID, since *time.Time) ([]time.Time, error) {
	rows, err := r.db.Query(ctx,
		`SELECT start_date FROM rentals
		 WHERE machine_id = $1 AND ($2::timestamptz IS NULL OR start_date > $2)
		 ORDER BY start_date`,
		pgconv.PgUUID(machineID), pgconv.PgTimestamptzPtr(since))
	if err != nil {
		return nil, wrapErr(r.log, "failed to load rental history", err)
	}
	defer rows.Close()

	var starts []time.Time
	for rows.Next() {
		var start pgtype.Timestamptz
		if err := rows.Scan(&start); err != nil {
			return nil, wrapErr(r.log, "failed to scan rental start", err)
		}
		starts = append(starts, start.Time)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(r.log, "failed to load rental history", err)
	}
	return starts, nil
}

func (r *MachineRepository) AddMaintenanceRecord(ctx context.Context, rec *machine.MaintenanceRecord) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO machine_maintenance_records (id, machine_id, performed_at, notes)
		 VALUES ($1, $2, $3, $4)`,
		pgconv.PgUUID(rec.ID), pgconv.PgUUID(rec.MachineID),
		pgconv.PgTimestamptz(rec.PerformedAt), rec.Notes)
	if err != nil {
		return wrapErr(r.log, "failed to add maintenance record", err)
	}
	return nil
}

func (r *MachineRepository) MaintenanceHistory(ctx context.Context, machineID uuid.UUID) ([]machine.MaintenanceRecord, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, machine_id, performed_at, notes, created_at
		 FROM machine_maintenance_records
		 WHERE machine_id = $1
		 ORDER BY performed_at DESC, created_at DESC`,
		pgconv.PgUUID(machineID))
	if err != nil {
		return nil, wrapErr(r.log, "failed to load maintenance history", err)
	}
	defer rows.Close()

	var records []machine.MaintenanceRecord
	for rows.Next() {
		var (
			id, mid                pgtype.UUID
			performedAt, createdAt pgtype.Timestamptz
			notes                  string
		)
		if err := rows.Scan(&id, &mid, &performedAt, &notes, &createdAt); err != nil {
			return nil, wrapErr(r.log, "failed to scan maintenance record", err)
		}
		records = append(records, machine.MaintenanceRecord{
			ID:          uuid.UUID(id.Bytes),
			MachineID:   uuid.UUID(mid.Bytes),
			PerformedAt: performedAt.Time,
			Notes:       notes,
			CreatedAt:   createdAt.Time,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(r.log, "failed to load maintenance history", err)
	}
	return records, nil
}

func (r *MachineRepository) GuestEmails(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT unnest(guests) FROM machines`)
	if err != nil {
		return nil, wrapErr(r.log, "failed to load machine guests", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, wrapErr(r.log, "failed to scan guest email", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(r.log, "failed to load machine guests", err)
	}
	return emails, nil
}

func scanMachine(row pgx.Row) (*machine.Machine, error) {
	var (
		id                            pgtype.UUID
		name                          string
		priceCents, depositCents      int64
		cycleType                     string
		intervalDays, intervalRentals int32
		lastServicedAt                pgtype.Timestamptz
		parts, guests                 []string
		eventID                       pgtype.Text
		createdAt, updatedAt          pgtype.Timestamptz
	)
	err := row.Scan(&id, &name, &priceCents, &depositCents,
		&cycleType, &intervalDays, &intervalRentals,
		&lastServicedAt, &parts, &guests, &eventID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	cfg := machine.MaintenanceConfig{
		Type:            machine.CycleType(cycleType),
		IntervalDays:    int(intervalDays),
		IntervalRentals: int(intervalRentals),
		LastServicedAt:  pgconv.TimePtrFromPgtype(lastServicedAt),
	}
	return machine.Reconstruct(
		uuid.UUID(id.Bytes), name, priceCents, depositCents, cfg, parts, guests,
		pgconv.StringPtrFromPgtype(eventID),
		pgconv.TimeFromPgtype(createdAt), pgconv.TimeFromPgtype(updatedAt),
	), nil
}
