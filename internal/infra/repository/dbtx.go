// Package repository implements the persistence ports over pgx. Every
// repository works against DBTX so the same code runs inside a transaction
// or straight on the pool.
package repository

import (
	"context"
	"errors"
	"log/slog"

	"atelier-backend/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	pgErrCodeUniqueViolation     = "23505"
	pgErrCodeForeignKeyViolation = "23503"
)

func wrapErr(log *slog.Logger, msg string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return infra.WrapRepoErr(log, infra.KindNotFound, msg, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrCodeUniqueViolation:
			return infra.WrapRepoErr(log, infra.KindDuplicateKey, msg, err)
		case pgErrCodeForeignKeyViolation:
			return infra.WrapRepoErr(log, infra.KindForeignKeyViolated, msg, err)
		}
	}
	return infra.WrapRepoErr(log, infra.KindDBFailure, msg, err)
}

func notFound(log *slog.Logger, msg string) error {
	return infra.WrapRepoErr(log, infra.KindNotFound, msg, nil)
}
