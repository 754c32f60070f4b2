package bootstrap

import (
	"atelier-backend/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		func(cfg config.Config) config.DBConfig { return cfg.DB },
		func(cfg config.Config) config.LogConfig { return cfg.Log },
		func(cfg config.Config) config.CalendarConfig { return cfg.Calendar },
		func(cfg config.Config) config.MailConfig { return cfg.Mail },
		func(cfg config.Config) config.ReminderConfig { return cfg.Reminder },
	),
)
