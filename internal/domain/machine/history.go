package machine

import (
	"time"

	"github.com/google/uuid"
)

// MaintenanceRecord is one line of a machine's service log. Records are
// append-only: advancing LastServicedAt is what writes one.
type MaintenanceRecord struct {
	ID          uuid.UUID
	MachineID   uuid.UUID
	PerformedAt time.Time
	Notes       string
	CreatedAt   time.Time
}

func NewMaintenanceRecord(machineID uuid.UUID, performedAt time.Time, notes string) *MaintenanceRecord {
	return &MaintenanceRecord{
		ID:          uuid.New(),
		MachineID:   machineID,
		PerformedAt: performedAt,
		Notes:       notes,
	}
}
