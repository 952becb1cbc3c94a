package domain

import "time"

// PaymentStatus indicates whether the captain collected the full fare.
type PaymentStatus string

const (
	PaymentStatusFull    PaymentStatus = "FULL"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
)

// PaymentMethod represents how the customer paid the captain.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodCard   PaymentMethod = "CARD"
	PaymentMethodWallet PaymentMethod = "WALLET"
	PaymentMethodOther  PaymentMethod = "OTHER"
)

// Payment is the settlement record for one ride. RideID is unique across
// all payments; that uniqueness is what makes settlement exactly-once.
// Amounts are held to 2 decimals and are immutable after creation, except
// the processing and dispute flags.
type Payment struct {
	ID         string
	RideID     string
	CaptainID  string
	CustomerID string

	ReceivedAmount float64
	ExpectedAmount float64
	Currency       string
	Status         PaymentStatus
	Reason         string // required when Status is PARTIAL
	Method         PaymentMethod

	CommissionRate    float64
	CompanyCommission float64
	CaptainEarnings   float64
	ProcessingFee     float64

	IsProcessed bool
	ProcessedAt time.Time
	ProcessedBy string

	HasDispute        bool
	DisputeReason     string
	DisputeResolvedAt time.Time

	// CollectedAt is the business time the captain collected the money;
	// CreatedAt/UpdatedAt are record time.
	CollectedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Shortage returns how much of the expected fare went uncollected.
func (p *Payment) Shortage() float64 {
	if p.ReceivedAmount >= p.ExpectedAmount {
		return 0
	}
	return p.ExpectedAmount - p.ReceivedAmount
}

// SettlementBreakdown is the money split returned to the caller after a
// successful settlement.
type SettlementBreakdown struct {
	CaptainEarnings   float64
	CompanyCommission float64
	ProcessingFee     float64
}
