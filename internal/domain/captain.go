package domain

import "time"

// Captain represents a driver in the system, with the aggregate earnings
// counters the settlement engine maintains.
type Captain struct {
	ID              string
	Name            string
	Phone           string
	TotalEarnings   float64
	TotalRides      int64
	LastPaymentDate time.Time
}
