package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"atelier-backend/internal/infra/calendar"
	"atelier-backend/internal/pkg/config"
	"atelier-backend/internal/usecase/sync"

	"go.uber.org/fx"
)

var CalendarModule = fx.Module("calendar",
	fx.Provide(
		NewEventLocation,
		NewCalendarProvider,
		calendar.NewGoogleCalendar,
		NewSyncExecutor,
		sync.NewReconciler,
	),
)

func NewEventLocation(cfg config.CalendarConfig) (*time.Location, error) {
	return time.LoadLocation(cfg.EventTimeZone)
}

func NewCalendarProvider(lc fx.Lifecycle, cfg config.CalendarConfig, log *slog.Logger) *calendar.Provider {
	provider := calendar.NewProvider(cfg, log)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return provider.Initialize(ctx)
		},
	})
	return provider
}

func NewSyncExecutor(svc sync.CalendarService, cfg config.CalendarConfig, log *slog.Logger) *sync.Executor {
	return sync.NewExecutor(svc, cfg.CallTimeout, log)
}
