package repository

import (
	"context"

	"settlement/internal/domain"
)

// TransferRepository defines the persistence operations for the money
// transfer ledger. Entries are append-only; only status may be updated.
type TransferRepository interface {
	// Create persists a new transfer. At most one transfer may exist per
	// payment; a second insert for the same payment returns ErrDuplicate.
	Create(ctx context.Context, transfer *domain.MoneyTransfer) error

	// GetByPaymentID retrieves the transfer recorded for a payment.
	// Returns nil if no transfer exists yet.
	GetByPaymentID(ctx context.Context, paymentID string) (*domain.MoneyTransfer, error)

	// UpdateStatus updates the status of a transfer.
	UpdateStatus(ctx context.Context, id string, status domain.TransferStatus) error
}
