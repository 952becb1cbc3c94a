package repository

import (
	"context"

	"settlement/internal/domain"
)

// StatsDelta is an increment applied to a captain's or customer's
// aggregate counters.
type StatsDelta struct {
	Amount     float64
	RidesDelta int64
}

// CaptainRepository defines the captain operations the settlement engine
// needs.
type CaptainRepository interface {
	// GetByID retrieves a captain by ID.
	GetByID(ctx context.Context, id string) (*domain.Captain, error)

	// IncrementStats atomically adds earnings and ride count to the
	// captain's running totals and sets the last payment date.
	IncrementStats(ctx context.Context, id string, delta StatsDelta) error
}
