package components

import (
	"context"
	"log/slog"

	"atelier-backend/internal/jobs"
	"atelier-backend/internal/pkg/config"

	"go.uber.org/fx"
)

var JobsModule = fx.Module("jobs",
	fx.Provide(
		jobs.NewRunner,
		jobs.NewMaintenanceReminder,
		jobs.NewTokenRefresh,
	),
	fx.Invoke(registerJobs),
)

func registerJobs(
	lc fx.Lifecycle,
	runner *jobs.Runner,
	reminder *jobs.MaintenanceReminder,
	refresh *jobs.TokenRefresh,
	cfg config.ReminderConfig,
	log *slog.Logger,
) error {
	if err := runner.Schedule(cfg.CronSpec, "maintenance_reminder", reminder.Run); err != nil {
		return err
	}
	if err := runner.Schedule(jobs.TokenRefreshSpec, "oauth_token_refresh", refresh.Run); err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			runner.Start()
			log.Info("job scheduler started", "reminder_cron", cfg.CronSpec)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return runner.Stop(ctx)
		},
	})
	return nil
}
