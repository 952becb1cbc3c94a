package domain

import "time"

// Customer represents a rider, with the aggregate spend counters the
// settlement engine maintains.
type Customer struct {
	ID         string
	Name       string
	Phone      string
	TotalSpent float64
	TotalRides int64
	CreatedAt  time.Time
}
