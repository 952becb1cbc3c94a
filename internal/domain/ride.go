package domain

import "time"

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusRequested       RideStatus = "REQUESTED"
	RideStatusInTrip          RideStatus = "IN_TRIP"
	RideStatusCompleted       RideStatus = "COMPLETED"
	RideStatusAwaitingPayment RideStatus = "AWAITING_PAYMENT"
	RideStatusPaid            RideStatus = "PAID"
	RideStatusCancelled       RideStatus = "CANCELLED"
)

// RidePaymentDetails mirrors the settlement onto the ride record. The
// Payment row stays authoritative; this copy exists for ride-centric reads.
type RidePaymentDetails struct {
	ReceivedAmount   float64
	ExpectedAmount   float64
	Currency         string
	PaymentTimestamp time.Time
	PaymentID        string
	Reason           string
	AmountShortage   float64
}

// Ride is owned by the dispatch subsystem; the settlement engine only reads
// it and mutates its payment-related fields.
type Ride struct {
	ID             string
	CustomerID     string
	DriverID       string
	Status         RideStatus
	Fare           float64
	PaymentStatus  PaymentStatus
	PaymentDetails RidePaymentDetails
	CreatedAt      time.Time
}

// Settleable reports whether the ride is in a state that accepts payment.
func (r *Ride) Settleable() bool {
	return r.Status == RideStatusCompleted || r.Status == RideStatusAwaitingPayment
}
