package postgres

import (
	"context"
	"database/sql"
	"errors"

	"settlement/internal/domain"
	"settlement/internal/repository"
)

// TransferRepository is a PostgreSQL implementation of repository.TransferRepository.
type TransferRepository struct {
	q Querier
}

// NewTransferRepository creates a new PostgreSQL transfer repository.
func NewTransferRepository(db *sql.DB) *TransferRepository {
	return &TransferRepository{q: db}
}

// NewTransferRepositoryWithTx creates a transfer repository using a transaction.
func NewTransferRepositoryWithTx(tx *sql.Tx) *TransferRepository {
	return &TransferRepository{q: tx}
}

// Create persists a new transfer. The transfers table carries a UNIQUE
// index on payment_id so one settlement can never record the commission
// transfer twice.
func (r *TransferRepository) Create(ctx context.Context, transfer *domain.MoneyTransfer) error {
	query := `
		INSERT INTO money_transfers (id, payment_id, from_account_id, from_role, to_account_id, to_role, amount, type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.q.ExecContext(ctx, query,
		transfer.ID,
		transfer.PaymentID,
		transfer.FromAccountID,
		transfer.FromRole,
		transfer.ToAccountID,
		transfer.ToRole,
		transfer.Amount,
		transfer.Type,
		transfer.Status,
		transfer.CreatedAt,
		transfer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}

	return nil
}

// GetByPaymentID retrieves the transfer recorded for a payment.
// Returns nil if no transfer exists yet.
func (r *TransferRepository) GetByPaymentID(ctx context.Context, paymentID string) (*domain.MoneyTransfer, error) {
	query := `
		SELECT id, payment_id, from_account_id, from_role, to_account_id, to_role, amount, type, status, created_at, updated_at
		FROM money_transfers WHERE payment_id = $1
	`

	var transfer domain.MoneyTransfer
	err := r.q.QueryRowContext(ctx, query, paymentID).Scan(
		&transfer.ID,
		&transfer.PaymentID,
		&transfer.FromAccountID,
		&transfer.FromRole,
		&transfer.ToAccountID,
		&transfer.ToRole,
		&transfer.Amount,
		&transfer.Type,
		&transfer.Status,
		&transfer.CreatedAt,
		&transfer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &transfer, nil
}

// UpdateStatus updates the status of a transfer.
func (r *TransferRepository) UpdateStatus(ctx context.Context, id string, status domain.TransferStatus) error {
	query := `UPDATE money_transfers SET status = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
