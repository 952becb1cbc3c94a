package repository

import (
	"context"

	"settlement/internal/domain"
)

// CustomerRepository defines the customer operations the settlement engine
// needs.
type CustomerRepository interface {
	// GetByID retrieves a customer by ID.
	GetByID(ctx context.Context, id string) (*domain.Customer, error)

	// IncrementStats atomically adds spend and ride count to the
	// customer's running totals.
	IncrementStats(ctx context.Context, id string, delta StatsDelta) error
}
