package commands

import "atelier-backend/internal/pkg/errs"

var (
	ErrMachineNotFound  = errs.New("machine not found")
	ErrRentalNotFound   = errs.New("rental not found")
	ErrOrderNotFound    = errs.New("installation order not found")
	ErrCallbackNotFound = errs.New("phone callback not found")

	// ErrRentalOverlap means the requested dates intersect an existing
	// rental of the same machine.
	ErrRentalOverlap = errs.New("rental dates overlap an existing rental")

	ErrDomainValidation = errs.New("domain validation error")

	// ErrSyncIncomplete means the database change committed but the paired
	// calendar step failed afterwards. The entity state is authoritative;
	// only the calendar sync needs retrying, never the mutation itself.
	ErrSyncIncomplete = errs.New("change saved but calendar sync incomplete")
)
