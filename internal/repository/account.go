package repository

import (
	"context"

	"settlement/internal/domain"
)

// AccountRepository defines the persistence operations for financial
// accounts. Balance changes go through Increment, which the store applies
// atomically so concurrent settlements crediting the same account cannot
// lose an update.
type AccountRepository interface {
	// FindOrCreateByOwner returns the owner's account, creating it with a
	// zero vault if it does not exist yet. The create is an upsert so two
	// concurrent callers converge on the same account.
	FindOrCreateByOwner(ctx context.Context, ownerID string, role domain.AccountRole, currency string) (*domain.FinancialAccount, error)

	// GetByID retrieves an account by ID.
	GetByID(ctx context.Context, id string) (*domain.FinancialAccount, error)

	// Increment atomically adds amount to the account's vault and returns
	// the new balance.
	Increment(ctx context.Context, accountID string, amount float64) (float64, error)

	// AppendEntry appends one row to the account's transaction log. At most
	// one entry may exist per (account, ride); a second append for the same
	// pair returns ErrDuplicate, which settlement replays treat as
	// already-applied.
	AppendEntry(ctx context.Context, entry *domain.AccountEntry) error

	// ListEntries retrieves the account's transaction log, newest first.
	ListEntries(ctx context.Context, accountID string, limit int) ([]*domain.AccountEntry, error)
}
