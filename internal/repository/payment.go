package repository

import (
	"context"
	"time"

	"settlement/internal/domain"
)

// PaymentFilter narrows payment listings.
type PaymentFilter struct {
	CaptainID  string
	CustomerID string
	Status     domain.PaymentStatus
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Create persists a new payment. The store enforces a uniqueness
	// constraint on RideID; a second payment for the same ride returns
	// ErrDuplicate. This is the exactly-once settlement guard and must be
	// enforced by the storage layer, not by a check-then-insert.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetByRideID retrieves the payment for a ride, if it was settled.
	GetByRideID(ctx context.Context, rideID string) (*domain.Payment, error)

	// List retrieves payments matching the filter, newest first, plus the
	// total match count for pagination.
	List(ctx context.Context, filter PaymentFilter) ([]*domain.Payment, int, error)

	// ListSettledBetween retrieves all payments collected in [from, to).
	ListSettledBetween(ctx context.Context, from, to time.Time) ([]*domain.Payment, error)

	// ListUnprocessedBefore retrieves payments whose side effects have not
	// completed and that were created before the cutoff.
	ListUnprocessedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Payment, error)

	// MarkProcessed records that all settlement side effects completed.
	MarkProcessed(ctx context.Context, id, processedBy string, at time.Time) error

	// SetDispute updates the dispute flags on a payment.
	SetDispute(ctx context.Context, id string, hasDispute bool, reason string, resolvedAt time.Time) error
}
