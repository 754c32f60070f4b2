package bootstrap

import (
	"atelier-backend/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	CalendarModule,
	MailerModule,
	components.PersistenceModule,
	components.UseCaseModule,
	components.JobsModule,
)
