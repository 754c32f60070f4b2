package jobs

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"atelier-backend/internal/pkg/clock"
	"atelier-backend/internal/pkg/config"
	"atelier-backend/internal/usecase/queries"
	"atelier-backend/internal/usecase/shared"
)

// reminderHorizon is how far ahead upcoming maintenance is announced.
const reminderHorizon = 7 * 24 * time.Hour

// MaintenanceReminder mails the workshop every morning about machines whose
// maintenance is late or due within the week. Delivery failures are logged
// and swallowed; the next run covers the same machines again.
type MaintenanceReminder struct {
	machines queries.MachineQueries
	notifier shared.Notifier
	cfg      config.ReminderConfig
	clock    clock.Clock
	log      *slog.Logger
}

func NewMaintenanceReminder(
	machines queries.MachineQueries,
	notifier shared.Notifier,
	cfg config.ReminderConfig,
	clk clock.Clock,
	log *slog.Logger,
) *MaintenanceReminder {
	return &MaintenanceReminder{
		machines: machines,
		notifier: notifier,
		cfg:      cfg,
		clock:    clk,
		log:      log,
	}
}

func (j *MaintenanceReminder) Run(ctx context.Context) {
	now := j.clock.Now()
	late, upcoming, err := j.machines.DueForMaintenance(ctx, now, reminderHorizon)
	if err != nil {
		j.log.Error("failed to load machines due for maintenance", "error", err)
		return
	}
	if len(late) == 0 && len(upcoming) == 0 {
		return
	}

	recipients := j.recipients(late, upcoming)
	subject := fmt.Sprintf("Rappel maintenance: %d machine(s) à entretenir", len(late)+len(upcoming))
	if err := j.notifier.Notify(ctx, recipients, subject, j.body(late, upcoming)); err != nil {
		j.log.Error("failed to send maintenance reminder", "error", err)
		return
	}
	j.log.Info("maintenance reminder sent", "late", len(late), "upcoming", len(upcoming), "recipients", len(recipients))
}

// recipients is the configured reminder list plus every guest of the
// machines concerned, deduplicated.
func (j *MaintenanceReminder) recipients(groups ...[]queries.MachineView) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(email string) {
		if _, ok := seen[email]; ok {
			return
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}

	for _, email := range j.cfg.MaintenanceEmails {
		add(email)
	}
	for _, group := range groups {
		for _, m := range group {
			for _, g := range m.Guests {
				add(g)
			}
		}
	}
	return out
}

func (j *MaintenanceReminder) body(late, upcoming []queries.MachineView) string {
	var b strings.Builder
	b.WriteString("<p>Bonjour,</p>")

	if len(late) > 0 {
		b.WriteString("<p>Maintenance <strong>en retard</strong> :</p><ul>")
		j.writeItems(&b, late)
		b.WriteString("</ul>")
	}
	if len(upcoming) > 0 {
		b.WriteString("<p>Maintenance à prévoir dans les 7 jours :</p><ul>")
		j.writeItems(&b, upcoming)
		b.WriteString("</ul>")
	}

	fmt.Fprintf(&b, `<p><a href="%s">Ouvrir l'atelier</a></p>`, j.cfg.FrontendURL)
	return b.String()
}

func (j *MaintenanceReminder) writeItems(b *strings.Builder, machines []queries.MachineView) {
	for _, m := range machines {
		due := ""
		if m.NextMaintenanceAt != nil {
			due = m.NextMaintenanceAt.Format("02/01/2006")
		}
		fmt.Fprintf(b, "<li>%s : %s</li>", html.EscapeString(m.Name), due)
	}
}
