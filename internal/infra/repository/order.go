package repository

import (
	"context"
	"log/slog"

	"atelier-backend/internal/domain/installation"
	"atelier-backend/internal/pkg/pgconv"
	"atelier-backend/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type OrderRepository struct {
	db  DBTX
	log *slog.Logger
}

func NewOrderRepository(db DBTX, log *slog.Logger) shared.OrderRepository {
	return &OrderRepository{db: db, log: log}
}

func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*installation.Order, error) {
	var (
		o                installation.Order
		oid              pgtype.UUID
		installationDate pgtype.Timestamptz
		eventID          pgtype.Text
		createdAt        pgtype.Timestamptz
		updatedAt        pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, client_first_name, client_last_name, client_address,
			client_phone, robot_name, installation_date, external_event_id,
			created_at, updated_at
		 FROM installation_orders WHERE id = $1`,
		pgconv.PgUUID(id)).
		Scan(&oid, &o.ClientFirstName, &o.ClientLastName, &o.ClientAddress,
			&o.ClientPhone, &o.RobotName, &installationDate, &eventID,
			&createdAt, &updatedAt)
	if err != nil {
		return nil, wrapErr(r.log, "failed to find installation order", err)
	}

	o.ID = uuid.UUID(oid.Bytes)
	o.InstallationDate = pgconv.TimePtrFromPgtype(installationDate)
	o.ExternalEventID = pgconv.StringPtrFromPgtype(eventID)
	o.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	o.UpdatedAt = pgconv.TimeFromPgtype(updatedAt)
	return &o, nil
}

func (r *OrderRepository) Create(ctx context.Context, o *installation.Order) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO installation_orders (id, client_first_name, client_last_name,
			client_address, client_phone, robot_name, installation_date,
			external_event_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		pgconv.PgUUID(o.ID), o.ClientFirstName, o.ClientLastName,
		o.ClientAddress, o.ClientPhone, o.RobotName,
		pgconv.PgTimestamptzPtr(o.InstallationDate), pgconv.PgText(o.ExternalEventID))
	if err != nil {
		return wrapErr(r.log, "failed to create installation order", err)
	}
	return nil
}

func (r *OrderRepository) Update(ctx context.Context, o *installation.Order) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE installation_orders SET client_first_name = $2, client_last_name = $3,
			client_address = $4, client_phone = $5, robot_name = $6,
			installation_date = $7, updated_at = now()
		 WHERE id = $1`,
		pgconv.PgUUID(o.ID), o.ClientFirstName, o.ClientLastName,
		o.ClientAddress, o.ClientPhone, o.RobotName,
		pgconv.PgTimestamptzPtr(o.InstallationDate))
	if err != nil {
		return wrapErr(r.log, "failed to update installation order", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(r.log, "installation order to update does not exist")
	}
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM installation_orders WHERE id = $1`, pgconv.PgUUID(id))
	if err != nil {
		return wrapErr(r.log, "failed to delete installation order", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(r.log, "installation order to delete does not exist")
	}
	return nil
}

func (r *OrderRepository) SetExternalEvent(ctx context.Context, id uuid.UUID, eventID *string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE installation_orders SET external_event_id = $2, updated_at = now() WHERE id = $1`,
		pgconv.PgUUID(id), pgconv.PgText(eventID))
	if err != nil {
		return wrapErr(r.log, "failed to store order event reference", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(r.log, "installation order for event reference does not exist")
	}
	return nil
}
