package commands

import (
	"fmt"
	"strings"
	"time"

	"atelier-backend/internal/domain/callback"
	"atelier-backend/internal/domain/installation"
	"atelier-backend/internal/domain/machine"
	"atelier-backend/internal/domain/rental"
	"atelier-backend/internal/usecase/sync"
)

// Event text is rendered in French, matching what the workshop staff read
// in their calendars. Everything rendered here must be covered by the
// entity's snapshot label so that text changes classify as updates.

func maintenanceEventPlan(calendarID string, m *machine.Machine, due time.Time) sync.EventPlan {
	cfg := m.Maintenance()

	var b strings.Builder
	b.WriteString("Entretien périodique (" + cycleText(cfg) + ")")
	if cfg.LastServicedAt != nil {
		b.WriteString("\nDernier entretien: " + frenchDate(*cfg.LastServicedAt))
	}

	return sync.EventPlan{
		CalendarID: calendarID,
		Details: sync.EventDetails{
			Summary:     "Maintenance " + m.Name(),
			Description: b.String(),
			Start:       due,
			End:         due,
			AllDay:      true,
			Attendees:   m.Guests(),
		},
	}
}

func rentalEventPlan(calendarID, machineName string, r *rental.Rental, priceCents int64) sync.EventPlan {
	iv := r.Interval()

	var b strings.Builder
	fmt.Fprintf(&b, "Client: %s", r.ClientFullName())
	if r.ClientPhone() != "" {
		fmt.Fprintf(&b, "\nTéléphone: %s", r.ClientPhone())
	}
	fmt.Fprintf(&b, "\nLivraison: %s", ouiNon(r.WithShipping()))
	fmt.Fprintf(&b, "\nCaution à verser: %s", ouiNon(r.DepositToPay()))
	fmt.Fprintf(&b, "\nPayé: %s", ouiNon(r.Paid()))
	if !r.IsOpen() {
		fmt.Fprintf(&b, "\nPrix: %s", euros(priceCents))
	}

	return sync.EventPlan{
		CalendarID: calendarID,
		Details: sync.EventDetails{
			Summary:     fmt.Sprintf("Location %s - %s", machineName, r.ClientFullName()),
			Description: b.String(),
			Start:       iv.Start,
			End:         iv.EffectiveEnd(),
			AllDay:      true,
			Attendees:   r.Guests(),
		},
	}
}

func installationEventPlan(calendarID string, o *installation.Order, date time.Time) sync.EventPlan {
	var b strings.Builder
	fmt.Fprintf(&b, "Robot: %s", o.RobotName)
	if o.ClientAddress != "" {
		fmt.Fprintf(&b, "\nAdresse: %s", o.ClientAddress)
	}
	if o.ClientPhone != "" {
		fmt.Fprintf(&b, "\nTéléphone: %s", o.ClientPhone)
	}

	return sync.EventPlan{
		CalendarID: calendarID,
		Details: sync.EventDetails{
			Summary:     "Installation robot - " + o.ClientFullName(),
			Description: b.String(),
			Location:    o.ClientAddress,
			Start:       date,
			End:         date,
			AllDay:      true,
		},
	}
}

func callbackEventPlan(calendarID string, c *callback.Callback) sync.EventPlan {
	status := "À faire"
	if c.Completed {
		status = "Terminé"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Téléphone: %s", c.PhoneNumber)
	fmt.Fprintf(&b, "\nMotif: %s", c.Reason.Text())
	fmt.Fprintf(&b, "\nDescription: %s", c.Description)
	fmt.Fprintf(&b, "\nResponsable: %s", c.ResponsiblePerson)
	fmt.Fprintf(&b, "\nStatut: %s", status)

	return sync.EventPlan{
		CalendarID: calendarID,
		Details: sync.EventDetails{
			Summary:     fmt.Sprintf("Rappel: %s - %s", c.ClientName, c.Reason.Text()),
			Description: b.String(),
			Start:       c.ScheduledAt,
			End:         c.ScheduledAt.Add(callback.Window),
		},
	}
}

func cycleText(cfg machine.MaintenanceConfig) string {
	switch cfg.Type {
	case machine.CycleByCalendarDays:
		return fmt.Sprintf("tous les %d jours", cfg.IntervalDays)
	case machine.CycleByRentalCount:
		return fmt.Sprintf("toutes les %d locations", cfg.IntervalRentals)
	}
	return string(cfg.Type)
}

func frenchDate(t time.Time) string {
	return t.Format("02/01/2006")
}

func ouiNon(v bool) string {
	if v {
		return "Oui"
	}
	return "Non"
}

func euros(cents int64) string {
	return fmt.Sprintf("%.2f €", float64(cents)/100)
}
