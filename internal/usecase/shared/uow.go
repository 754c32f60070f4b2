package shared

import (
	"context"
	"time"

	"atelier-backend/internal/domain/callback"
	"atelier-backend/internal/domain/installation"
	"atelier-backend/internal/domain/machine"
	"atelier-backend/internal/domain/rental"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within runs fn inside one transaction with retry on serialization
	// failures. Everything persisted through tx commits or rolls back as a
	// unit; calendar calls never happen inside it.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// Repos exposes pool-backed repositories for single-statement
	// operations, such as persisting an external event reference after the
	// enclosing transaction already committed.
	Repos() Tx
}

type Tx interface {
	Machines() MachineRepository
	Rentals() RentalRepository
	Orders() OrderRepository
	Callbacks() CallbackRepository
	Settings() SettingsRepository
}

type MachineRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*machine.Machine, error)
	List(ctx context.Context) ([]*machine.Machine, error)
	Create(ctx context.Context, m *machine.Machine) error
	Update(ctx context.Context, m *machine.Machine) error
	Delete(ctx context.Context, id uuid.UUID) error
	// SetExternalEvent rewrites only the external calendar reference.
	SetExternalEvent(ctx context.Context, id uuid.UUID, eventID *string) error
	// RentalStartsSince returns the start dates of the machine's rentals
	// after since (all of them when since is nil), for rental-count cycles.
	RentalStartsSince(ctx context.Context, machineID uuid.UUID, since *time.Time) ([]time.Time, error)
	// GuestEmails returns every distinct guest address across machines.
	GuestEmails(ctx context.Context) ([]string, error)
	// AddMaintenanceRecord appends one line to the machine's service log.
	AddMaintenanceRecord(ctx context.Context, rec *machine.MaintenanceRecord) error
	// MaintenanceHistory lists the service log, most recent first.
	MaintenanceHistory(ctx context.Context, machineID uuid.UUID) ([]machine.MaintenanceRecord, error)
}

type RentalRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*rental.Rental, error)
	ListByMachine(ctx context.Context, machineID uuid.UUID) ([]*rental.Rental, error)
	Create(ctx context.Context, r *rental.Rental) error
	Update(ctx context.Context, r *rental.Rental) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetExternalEvent(ctx context.Context, id uuid.UUID, eventID *string) error
	// AcquireMachineLock takes the per-machine advisory lock that
	// serializes overlap checking against concurrent inserts. Only
	// meaningful inside a transaction; the lock is released at commit or
	// rollback.
	AcquireMachineLock(ctx context.Context, machineID uuid.UUID) error
	// Intervals returns the date ranges of the machine's rentals,
	// excluding excludeID when non-nil.
	Intervals(ctx context.Context, machineID uuid.UUID, excludeID *uuid.UUID) ([]rental.Interval, error)
	// GuestEmails returns every distinct guest address across rentals.
	GuestEmails(ctx context.Context) ([]string, error)
}

type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*installation.Order, error)
	Create(ctx context.Context, o *installation.Order) error
	Update(ctx context.Context, o *installation.Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetExternalEvent(ctx context.Context, id uuid.UUID, eventID *string) error
}

type CallbackRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*callback.Callback, error)
	Create(ctx context.Context, c *callback.Callback) error
	Update(ctx context.Context, c *callback.Callback) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetExternalEvent(ctx context.Context, id uuid.UUID, eventID *string) error
}

// SettingShippingPriceCents is the settings key holding the flat shipping
// fee, in cents, applied to rentals delivered to the client.
const SettingShippingPriceCents = "shipping_price_cents"

type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string]string, error)
}

// Notifier delivers guest notifications. Failures are the caller's problem
// to log; they must never fail the business operation.
type Notifier interface {
	Notify(ctx context.Context, to []string, subject, htmlBody string) error
}
