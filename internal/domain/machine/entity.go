package machine

import (
	"errors"
	"strings"
	"time"

	"atelier-backend/internal/domain/schedule"

	"github.com/google/uuid"
)

var (
	ErrEmptyName       = errors.New("machine name is required")
	ErrNegativePrice   = errors.New("price cannot be negative")
	ErrNegativeDeposit = errors.New("deposit cannot be negative")
)

// Machine is a rentable, maintained asset. It owns at most one external
// calendar event, the one mirroring its next maintenance date.
type Machine struct {
	id               uuid.UUID
	name             string
	pricePerDayCents int64
	depositCents     int64
	maintenance      MaintenanceConfig
	parts            []string
	guests           []string
	externalEventID  *string
	createdAt        time.Time
	updatedAt        time.Time
}

func NewMachine(name string, pricePerDayCents, depositCents int64, cfg MaintenanceConfig, parts, guests []string) (*Machine, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if pricePerDayCents < 0 {
		return nil, ErrNegativePrice
	}
	if depositCents < 0 {
		return nil, ErrNegativeDeposit
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Machine{
		id:               uuid.New(),
		name:             name,
		pricePerDayCents: pricePerDayCents,
		depositCents:     depositCents,
		maintenance:      cfg,
		parts:            NormalizeParts(parts),
		guests:           schedule.NormalizeGuests(guests),
	}, nil
}

func Reconstruct(
	id uuid.UUID,
	name string,
	pricePerDayCents, depositCents int64,
	cfg MaintenanceConfig,
	parts, guests []string,
	externalEventID *string,
	createdAt, updatedAt time.Time,
) *Machine {
	return &Machine{
		id:               id,
		name:             name,
		pricePerDayCents: pricePerDayCents,
		depositCents:     depositCents,
		maintenance:      cfg,
		parts:            parts,
		guests:           guests,
		externalEventID:  externalEventID,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// NormalizeParts drops blank part names while keeping the entered order.
func NormalizeParts(parts []string) []string {
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (m *Machine) ID() uuid.UUID                  { return m.id }
func (m *Machine) Name() string                   { return m.name }
func (m *Machine) PricePerDayCents() int64        { return m.pricePerDayCents }
func (m *Machine) DepositCents() int64            { return m.depositCents }
func (m *Machine) Maintenance() MaintenanceConfig { return m.maintenance }
func (m *Machine) Parts() []string                { return m.parts }
func (m *Machine) Guests() []string               { return m.guests }
func (m *Machine) ExternalEventID() *string       { return m.externalEventID }
func (m *Machine) CreatedAt() time.Time           { return m.createdAt }
func (m *Machine) UpdatedAt() time.Time           { return m.updatedAt }

// Snapshot projects the machine onto the generic scheduling shape. The due
// date is recomputed from the config and rental history on every call;
// rentalStartsSinceService only matters for rental-count cycles.
func (m *Machine) Snapshot(rentalStartsSinceService []time.Time) schedule.Snapshot {
	return schedule.Snapshot{
		Label:           m.name,
		DueAt:           m.maintenance.NextDue(rentalStartsSinceService),
		ExternalEventID: m.externalEventID,
		CycleKey:        m.maintenance.Key(),
		LastServicedAt:  m.maintenance.LastServicedAt,
		Guests:          m.guests,
	}
}
