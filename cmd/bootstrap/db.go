package bootstrap

import (
	"context"
	"log/slog"

	"atelier-backend/internal/infra/db"
	"atelier-backend/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
	),
)

func NewDB(lc fx.Lifecycle, cfg config.DBConfig, log *slog.Logger) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg, log); err != nil {
		return nil, err
	}

	pool, cleanup, err := db.Connect(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return pool, nil
}
