package repository

import (
	"context"
	"log/slog"

	"atelier-backend/internal/usecase/shared"
)

type SettingsRepository struct {
	db  DBTX
	log *slog.Logger
}

func NewSettingsRepository(db DBTX, log *slog.Logger) shared.SettingsRepository {
	return &SettingsRepository{db: db, log: log}
}

func (r *SettingsRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if err != nil {
		return "", wrapErr(r.log, "failed to read setting", err)
	}
	return value, nil
}

func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO settings (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	if err != nil {
		return wrapErr(r.log, "failed to write setting", err)
	}
	return nil
}

func (r *SettingsRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM settings WHERE key = $1`, key)
	if err != nil {
		return wrapErr(r.log, "failed to delete setting", err)
	}
	return nil
}

func (r *SettingsRepository) List(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.Query(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, wrapErr(r.log, "failed to list settings", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, wrapErr(r.log, "failed to scan setting", err)
		}
		settings[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(r.log, "failed to list settings", err)
	}
	return settings, nil
}
