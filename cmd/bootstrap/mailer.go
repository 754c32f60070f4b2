package bootstrap

import (
	"atelier-backend/internal/infra/mailer"

	"go.uber.org/fx"
)

var MailerModule = fx.Module("mailer",
	fx.Provide(
		mailer.NewSMTPMailer,
	),
)
