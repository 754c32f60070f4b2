//go:build unit

package jobs_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"atelier-backend/internal/jobs"
	"atelier-backend/internal/pkg/clock"
	"atelier-backend/internal/pkg/config"
	"atelier-backend/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubMachineQueries struct {
	queries.MachineQueries
	late     []queries.MachineView
	upcoming []queries.MachineView
	err      error
}

func (q *stubMachineQueries) DueForMaintenance(context.Context, time.Time, time.Duration) ([]queries.MachineView, []queries.MachineView, error) {
	return q.late, q.upcoming, q.err
}

type captureNotifier struct {
	to      []string
	subject string
	body    string
	calls   int
	err     error
}

func (n *captureNotifier) Notify(_ context.Context, to []string, subject, htmlBody string) error {
	n.calls++
	n.to = to
	n.subject = subject
	n.body = htmlBody
	return n.err
}

func view(name string, due time.Time, guests []string) queries.MachineView {
	return queries.MachineView{
		ID:                uuid.New(),
		Name:              name,
		NextMaintenanceAt: &due,
		Guests:            guests,
	}
}

func reminderCfg() config.ReminderConfig {
	return config.ReminderConfig{
		MaintenanceEmails: []string{"atelier@test.fr"},
		FrontendURL:       "http://localhost:3000",
	}
}

func TestMaintenanceReminderRun(t *testing.T) {
	now := time.Date(2026, 6, 15, 8, 0, 0, 0, time.UTC)

	t.Run("late and upcoming machines land in one mail", func(t *testing.T) {
		machines := &stubMachineQueries{
			late:     []queries.MachineView{view("Automower 450X", now.AddDate(0, 0, -3), []string{"guest@test.fr"})},
			upcoming: []queries.MachineView{view("Automower 310", now.AddDate(0, 0, 4), nil)},
		}
		notifier := &captureNotifier{}
		job := jobs.NewMaintenanceReminder(machines, notifier, reminderCfg(), clock.NewFixedClock(now), discardLogger())

		job.Run(context.Background())

		require.Equal(t, 1, notifier.calls)
		assert.Equal(t, "Rappel maintenance: 2 machine(s) à entretenir", notifier.subject)
		assert.Equal(t, []string{"atelier@test.fr", "guest@test.fr"}, notifier.to)
		assert.Contains(t, notifier.body, "en retard")
		assert.Contains(t, notifier.body, "Automower 450X")
		assert.Contains(t, notifier.body, "Automower 310")
		assert.Contains(t, notifier.body, "http://localhost:3000")
	})

	t.Run("nothing due sends nothing", func(t *testing.T) {
		notifier := &captureNotifier{}
		job := jobs.NewMaintenanceReminder(&stubMachineQueries{}, notifier, reminderCfg(), clock.NewFixedClock(now), discardLogger())

		job.Run(context.Background())
		assert.Zero(t, notifier.calls)
	})

	t.Run("guest addresses are deduplicated against the configured list", func(t *testing.T) {
		machines := &stubMachineQueries{
			late: []queries.MachineView{view("Automower 450X", now.AddDate(0, 0, -1), []string{"atelier@test.fr", "guest@test.fr"})},
		}
		notifier := &captureNotifier{}
		job := jobs.NewMaintenanceReminder(machines, notifier, reminderCfg(), clock.NewFixedClock(now), discardLogger())

		job.Run(context.Background())
		assert.Equal(t, []string{"atelier@test.fr", "guest@test.fr"}, notifier.to)
	})

	t.Run("query failure skips the mail", func(t *testing.T) {
		notifier := &captureNotifier{}
		job := jobs.NewMaintenanceReminder(
			&stubMachineQueries{err: errors.New("db down")},
			notifier, reminderCfg(), clock.NewFixedClock(now), discardLogger(),
		)

		job.Run(context.Background())
		assert.Zero(t, notifier.calls)
	})
}
