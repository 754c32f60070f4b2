package repository

import (
	"context"
	"log/slog"

	"atelier-backend/internal/domain/rental"
	"atelier-backend/internal/pkg/pgconv"
	"atelier-backend/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const rentalColumns = `id, machine_id, client_first_name, client_last_name,
	client_phone, start_date, end_date, with_shipping, deposit_to_pay, paid,
	guests, external_event_id, created_at, updated_at`

type RentalRepository struct {
	db  DBTX
	log *slog.Logger
}

func NewRentalRepository(db DBTX, log *slog.Logger) shared.RentalRepository {
	return &RentalRepository{db: db, log: log}
}

func (r *RentalRepository) FindByID(ctx context.Context, id uuid.UUID) (*rental.Rental, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+rentalColumns+` FROM rentals WHERE id = $1`,
		pgconv.PgUUID(id))
	rent, err := scanRental(row)
	if err != nil {
		return nil, wrapErr(r.log, "failed to find rental", err)
	}
	return rent, nil
}

func (r *RentalRepository) ListByMachine(ctx context.Context, machineID uuid.UUID) ([]*rental.Rental, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+rentalColumns+` FROM rentals WHERE machine_id = $1 ORDER BY start_date`,
		pgconv.PgUUID(machineID))
	if err != nil {
		return nil, wrapErr(r.log, "failed to list rentals", err)
	}
	defer rows.Close()

	var rentals []*rental.Rental
	for rows.Next() {
		rent, err := scanRental(rows)
		if err != nil {
			return nil, wrapErr(r.log, "failed to scan rental", err)
		}
		rentals = append(rentals, rent)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(r.log, "failed to list rentals", err)
	}
	return rentals, nil
}

func (r *RentalRepository) Create(ctx context.Context, rent *rental.Rental) error {
	iv := rent.Interval()
	_, err := r.db.Exec(ctx,
		`INSERT INTO rentals (id, machine_id, client_first_name, client_last_name,
			client_phone, start_date, end_date, with_shipping, deposit_to_pay, paid,
			guests, external_event_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		pgconv.PgUUID(rent.ID()), pgconv.PgUUID(rent.MachineID()),
		rent.ClientFirstName(), rent.ClientLastName(), rent.ClientPhone(),
		pgconv.PgTimestamptz(iv.Start), pgconv.PgTimestamptzPtr(iv.End),
		rent.WithShipping(), rent.DepositToPay(), rent.Paid(),
		rent.Guests(), pgconv.PgText(rent.ExternalEventID()))
	if err != nil {
		return wrapErr(r.log, "failed to create rental", err)
	}
	return nil
}

func (r *RentalRepository) Update(ctx context.Context, rent *rental.Rental) error {
	iv := rent.Interval()
	tag, err := r.db.Exec(ctx,
		`UPDATE rentals SET client_first_name = $2, client_last_name = $3,
			client_phone = $4, start_date = $5, end_date = $6, with_shipping = $7,
			deposit_to_pay = $8, paid = $9, guests = $10, updated_at = now()
		 WHERE id = $1`,
		pgconv.PgUUID(rent.ID()),
		rent.ClientFirstName(), rent.ClientLastName(), rent.ClientPhone(),
		pgconv.PgTimestamptz(iv.Start), pgconv.PgTimestamptzPtr(iv.End),
		rent.WithShipping(), rent.DepositToPay(), rent.Paid(), rent.Guests())
	if err != nil {
		return wrapErr(r.log, "failed to update rental", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(r.log, "rental to update does not exist")
	}
	return nil
}

func (r *RentalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM rentals WHERE id = $1`, pgconv.PgUUID(id))
	if err != nil {
		return wrapErr(r.log, "failed to delete rental", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(r.log, "rental to delete does not exist")
	}
	return nil
}

func (r *RentalRepository) SetExternalEvent(ctx context.Context, id uuid.UUID, eventID *string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE rentals SET external_event_id = $2, updated_at = now() WHERE id = $1`,
		pgconv.PgUUID(id), pgconv.PgText(eventID))
	if err != nil {
		return wrapErr(r.log, "failed to store rental event reference", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(r.log, "rental for event reference does not exist")
	}
	return nil
}

// AcquireMachineLock blocks until this transaction holds the advisory lock
// for the machine. Postgres releases it automatically at commit or rollback,
// which is why the lock is only meaningful inside a transaction.
func (r *RentalRepository) AcquireMachineLock(ctx context.Context, machineID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`,
		pgconv.PgUUID(machineID))
	if err != nil {
		return wrapErr(r.log, "failed to acquire machine lock", err)
	}
	return nil
}

func (r *RentalRepository) Intervals(ctx context.Context, machineID uuid.UUID, excludeID *uuid.UUID) ([]rental.Interval, error) {
	rows, err := r.db.Query(ctx,
		`SELECT start_date, end_date FROM rentals
		 WHERE machine_id = $1 AND ($2::uuid IS NULL OR id <> $2)`,
		pgconv.PgUUID(machineID), pgconv.PgUUIDPtr(excludeID))
	if err != nil {
		return nil, wrapErr(r.log, "failed to load rental intervals", err)
	}
	defer rows.Close()

	var intervals []rental.Interval
	for rows.Next() {
		var start, end pgtype.Timestamptz
		if err := rows.Scan(&start, &end); err != nil {
			return nil, wrapErr(r.log, "failed to scan rental interval", err)
		}
		intervals = append(intervals, rental.Interval{
			Start: start.Time,
			End:   pgconv.TimePtrFromPgtype(end),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(r.log, "failed to load rental intervals", err)
	}
	return intervals, nil
}

func (r *RentalRepository) GuestEmails(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT unnest(guests) FROM rentals`)
	if err != nil {
		return nil, wrapErr(r.log, "failed to load rental guests", err)
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
		return nil, wrapErr(r.log, "failed to load rental guests", err)
	}
	return emails, nil
}

func scanRental(row pgx.Row) (*rental.Rental, error) {
	var (
		id, machineID                    pgtype.UUID
		firstName, lastName, phone       string
		start, end                       pgtype.Timestamptz
		withShipping, depositToPay, paid bool
		guests                           []string
		eventID                          pgtype.Text
		createdAt, updatedAt             pgtype.Timestamptz
	)
	err := row.Scan(&id, &machineID, &firstName, &lastName, &phone,
		&start, &end, &withShipping, &depositToPay, &paid,
		&guests, &eventID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	return rental.Reconstruct(
		uuid.UUID(id.Bytes), uuid.UUID(machineID.Bytes),
		firstName, lastName, phone,
		rental.Interval{Start: start.Time, End: pgconv.TimePtrFromPgtype(end)},
		withShipping, depositToPay, paid,
		guests, pgconv.StringPtrFromPgtype(eventID),
		pgconv.TimeFromPgtype(createdAt), pgconv.TimeFromPgtype(updatedAt),
	), nil
}
