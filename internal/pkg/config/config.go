package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (DB connection, calendar
//   ids, mail credentials) and anything security sensitive
// - default: Values common across all environments (timezone, timeouts)
// -----------------------------------------------------------------------------

type Config struct {
	DB       DBConfig
	Log      LogConfig
	Calendar CalendarConfig
	Mail     MailConfig
	Reminder ReminderConfig
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Europe/Paris"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// CalendarConfig holds the Google Calendar OAuth material and the per-domain
// calendar buckets. Maintenance, rentals, installations and phone callbacks
// each live on their own calendar.
type CalendarConfig struct {
	CredentialsFile string        `envconfig:"GOOGLE_OAUTH_CLIENT_SECRET_FILE" required:"true"`
	TokenFile       string        `envconfig:"GOOGLE_OAUTH_TOKEN_FILE" required:"true"`
	MaintenanceID   string        `envconfig:"CALENDAR_MAINTENANCE_ID" required:"true"`
	RentalID        string        `envconfig:"CALENDAR_RENTAL_ID" required:"true"`
	InstallationID  string        `envconfig:"CALENDAR_INSTALLATION_ID" required:"true"`
	CallbackID      string        `envconfig:"CALENDAR_CALLBACK_ID" required:"true"`
	CallTimeout     time.Duration `envconfig:"CALENDAR_CALL_TIMEOUT" default:"10s"`
	EventTimeZone   string        `envconfig:"CALENDAR_EVENT_TIMEZONE" default:"Europe/Paris"`
}

type MailConfig struct {
	Host      string `envconfig:"SMTP_HOST" required:"true"`
	Port      int    `envconfig:"SMTP_PORT" default:"587"`
	Username  string `envconfig:"SMTP_USERNAME" required:"true"`
	Password  string `envconfig:"SMTP_PASSWORD" required:"true"`
	FromEmail string `envconfig:"SMTP_FROM_EMAIL" required:"true"`
	FromName  string `envconfig:"SMTP_FROM_NAME" default:"Atelier"`
	ReplyTo   string `envconfig:"SMTP_REPLY_TO" default:""`
}

type ReminderConfig struct {
	MaintenanceEmails []string `envconfig:"EMAILS_REMINDER_MAINTENANCE" required:"true"`
	FrontendURL       string   `envconfig:"FRONTEND_URL" required:"true"`
	CronSpec          string   `envconfig:"REMINDER_CRON" default:"0 8 * * *"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433",
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Europe/Paris",
		},
		Log: LogConfig{
			Level: "error",
		},
		Calendar: CalendarConfig{
			MaintenanceID:  "maintenance@test",
			RentalID:       "rental@test",
			InstallationID: "installation@test",
			CallbackID:     "callback@test",
			CallTimeout:    time.Second,
			EventTimeZone:  "Europe/Paris",
		},
		Reminder: ReminderConfig{
			MaintenanceEmails: []string{"atelier@test.local"},
			FrontendURL:       "http://localhost:3000",
			CronSpec:          "0 8 * * *",
		},
	}
}
