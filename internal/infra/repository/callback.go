package repository

import (
	"context"
	"log/slog"

	"atelier-backend/internal/domain/callback"
	"atelier-backend/internal/pkg/pgconv"
	"atelier-backend/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type CallbackRepository struct {
	db  DBTX
	log *slog.Logger
}

func NewCallbackRepository(db DBTX, log *slog.Logger) shared.CallbackRepository {
	return &CallbackRepository{db: db, log: log}
}

func (r *CallbackRepository) FindByID(ctx context.Context, id uuid.UUID) (*callback.Callback, error) {
	var (
		c           callback.Callback
		cid         pgtype.UUID
		reason      string
		scheduledAt pgtype.Timestamptz
		eventID     pgtype.Text
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, phone_number, client_name, reason, description,
			responsible_person, completed, scheduled_at, external_event_id,
			created_at, updated_at
		 FROM phone_callbacks WHERE id = $1`,
		pgconv.PgUUID(id)).
		Scan(&cid, &c.PhoneNumber, &c.ClientName, &reason, &c.Description,
			&c.ResponsiblePerson, &c.Completed, &scheduledAt, &eventID,
			&createdAt, &updatedAt)
	if err != nil {
		return nil, wrapErr(r.log, "failed to find phone callback", err)
	}

	c.ID = uuid.UUID(cid.Bytes)
	c.Reason = callback.Reason(reason)
	c.ScheduledAt = pgconv.TimeFromPgtype(scheduledAt)
	c.ExternalEventID = pgconv.StringPtrFromPgtype(eventID)
	c.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	c.UpdatedAt = pgconv.TimeFromPgtype(updatedAt)
	return &c, nil
}

func (r *CallbackRepository) Create(ctx context.Context, c *callback.Callback) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO phone_callbacks (id, phone_number, client_name, reason,
			description, responsible_person, completed, scheduled_at,
			external_event_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		pgconv.PgUUID(c.ID), c.PhoneNumber, c.ClientName, string(c.Reason),
		c.Description, c.ResponsiblePerson, c.Completed,
		pgconv.PgTimestamptz(c.ScheduledAt), pgconv.PgText(c.ExternalEventID))
	if err != nil {
		return wrapErr(r.log, "failed to create phone callback", err)
	}
	return nil
}

func (r *CallbackRepository) Update(ctx context.Context, c *callback.Callback) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE phone_callbacks SET phone_number = $2, client_name = $3,
			reason = $4, description = $5, responsible_person = $6,
			completed = $7, updated_at = now()
		 WHERE id = $1`,
		pgconv.PgUUID(c.ID), c.PhoneNumber, c.ClientName, string(c.Reason),
		c.Description, c.ResponsiblePerson, c.Completed)
	if err != nil {
		return wrapErr(r.log, "failed to update phone callback", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(r.log, "phone callback to update does not exist")
	}
	return nil
}

func (r *CallbackRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM phone_callbacks WHERE id = $1`, pgconv.PgUUID(id))
	if err != nil {
		return wrapErr(r.log, "failed to delete phone callback", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(r.log, "phone callback to delete does not exist")
	}
	return nil
}

func (r *CallbackRepository) SetExternalEvent(ctx context.Context, id uuid.UUID, eventID *string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE phone_callbacks SET external_event_id = $2, updated_at = now() WHERE id = $1`,
		pgconv.PgUUID(id), pgconv.PgText(eventID))
	if err != nil {
		return wrapErr(r.log, "failed to store callback event reference", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(r.log, "phone callback for event reference does not exist")
	}
	return nil
}
