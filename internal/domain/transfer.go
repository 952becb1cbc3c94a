package domain

import "time"

// TransferStatus represents the state of a money transfer.
type TransferStatus string

const (
	TransferStatusCompleted TransferStatus = "COMPLETED"
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusFailed    TransferStatus = "FAILED"
)

// TransferType identifies what kind of movement a transfer records.
type TransferType string

const (
	// TransferTypeDriverToAdmin is the commission transfer from a captain's
	// account to the company account at settlement time.
	TransferTypeDriverToAdmin TransferType = "driver-to-admin"
)

// MoneyTransfer is a double-entry ledger record of a balance movement
// between two accounts. Entries are append-only; only Status may change
// after creation. PaymentID links the transfer back to the settlement that
// produced it, which is how reconciliation detects missing transfers.
type MoneyTransfer struct {
	ID            string
	PaymentID     string
	FromAccountID string
	FromRole      AccountRole
	ToAccountID   string
	ToRole        AccountRole
	Amount        float64
	Type          TransferType
	Status        TransferStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
