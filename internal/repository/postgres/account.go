package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"settlement/internal/domain"
	"settlement/internal/repository"
)

// AccountRepository is a PostgreSQL implementation of repository.AccountRepository.
type AccountRepository struct {
	q Querier
}

// NewAccountRepository creates a new PostgreSQL account repository.
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{q: db}
}

// NewAccountRepositoryWithTx creates an account repository using a transaction.
func NewAccountRepositoryWithTx(tx *sql.Tx) *AccountRepository {
	return &AccountRepository{q: tx}
}

// FindOrCreateByOwner returns the owner's account, creating it lazily. The
// insert is an upsert on the unique owner_id index so two concurrent
// callers converge on the same row.
func (r *AccountRepository) FindOrCreateByOwner(ctx context.Context, ownerID string, role domain.AccountRole, currency string) (*domain.FinancialAccount, error) {
	query := `
		INSERT INTO accounts (id, owner_id, owner_role, vault, currency, created_at, updated_at)
		VALUES ($1, $2, $3, 0, $4, NOW(), NOW())
		ON CONFLICT (owner_id) DO UPDATE SET updated_at = NOW()
		RETURNING id, owner_id, owner_role, vault, currency, created_at, updated_at
	`

	var account domain.FinancialAccount
	err := r.q.QueryRowContext(ctx, query, uuid.New().String(), ownerID, role, currency).Scan(
		&account.ID,
		&account.OwnerID,
		&account.OwnerRole,
		&account.Vault,
		&account.Currency,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &account, nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.FinancialAccount, error) {
	query := `
		SELECT id, owner_id, owner_role, vault, currency, created_at, updated_at
		FROM accounts WHERE id = $1
	`

	var account domain.FinancialAccount
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.OwnerID,
		&account.OwnerRole,
		&account.Vault,
		&account.Currency,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &account, nil
}

// Increment atomically adds amount to the account's vault. The arithmetic
// happens in the database, never in application memory, so concurrent
// settlements crediting the same account cannot lose an update.
func (r *AccountRepository) Increment(ctx context.Context, accountID string, amount float64) (float64, error) {
	query := `
		UPDATE accounts
		SET vault = vault + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING vault
	`

	var balance float64
	err := r.q.QueryRowContext(ctx, query, amount, accountID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, repository.ErrNotFound
		}
		return 0, err
	}

	return balance, nil
}

// AppendEntry appends one row to the account's transaction log. The table
// carries a UNIQUE index on (account_id, ride_id), which is what lets a
// settlement replay detect an already-applied credit.
func (r *AccountRepository) AppendEntry(ctx context.Context, entry *domain.AccountEntry) error {
	query := `
		INSERT INTO account_entries (id, account_id, ride_id, captain_id, amount, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		entry.ID,
		entry.AccountID,
		nullString(entry.RideID),
		nullString(entry.CaptainID),
		entry.Amount,
		entry.Description,
		entry.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}

	return nil
}

// ListEntries retrieves the account's transaction log, newest first.
func (r *AccountRepository) ListEntries(ctx context.Context, accountID string, limit int) ([]*domain.AccountEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT id, account_id, ride_id, captain_id, amount, description, created_at
		FROM account_entries
		WHERE account_id = $1
		ORDER BY created_at DESC LIMIT $2
	`

	rows, err := r.q.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.AccountEntry
	for rows.Next() {
		var entry domain.AccountEntry
		var rideID, captainID sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&rideID,
			&captainID,
			&entry.Amount,
			&entry.Description,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entry.RideID = rideID.String
		entry.CaptainID = captainID.String
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
