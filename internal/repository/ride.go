package repository

import (
	"context"

	"settlement/internal/domain"
)

// RideRepository defines the ride operations the settlement engine needs.
// Rides are owned by dispatch; only the payment fields are written here.
type RideRepository interface {
	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// UpdatePaymentFields mirrors the settlement onto the ride record and
	// moves it to the given status.
	UpdatePaymentFields(ctx context.Context, id string, status domain.RideStatus, paymentStatus domain.PaymentStatus, details domain.RidePaymentDetails) error
}
