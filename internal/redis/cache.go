package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"settlement/internal/domain"
)

// PaymentCacheStore caches settled payment summaries in Redis for fast
// recent-payment lookups. The cache is strictly best-effort: the settlement
// flow treats every failure here as a skip.
type PaymentCacheStore struct {
	client *redis.Client
}

// NewPaymentCacheStore creates a new PaymentCacheStore.
func NewPaymentCacheStore(client *redis.Client) *PaymentCacheStore {
	return &PaymentCacheStore{client: client}
}

// DefaultPaymentTTL bounds how long a settled payment summary stays cached.
const DefaultPaymentTTL = 10 * time.Minute

const paymentCachePrefix = "cache:payment:ride:"

// CachedPayment is the summary stored for a settled payment.
type CachedPayment struct {
	PaymentID         string    `json:"payment_id"`
	RideID            string    `json:"ride_id"`
	CaptainID         string    `json:"captain_id"`
	ReceivedAmount    float64   `json:"received_amount"`
	CaptainEarnings   float64   `json:"captain_earnings"`
	CompanyCommission float64   `json:"company_commission"`
	Status            string    `json:"status"`
	CollectedAt       time.Time `json:"collected_at"`
}

// SetSettled stores a settled payment summary keyed by ride ID.
func (s *PaymentCacheStore) SetSettled(ctx context.Context, payment *domain.Payment, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultPaymentTTL
	}

	cached := CachedPayment{
		PaymentID:         payment.ID,
		RideID:            payment.RideID,
		CaptainID:         payment.CaptainID,
		ReceivedAmount:    payment.ReceivedAmount,
		CaptainEarnings:   payment.CaptainEarnings,
		CompanyCommission: payment.CompanyCommission,
		Status:            string(payment.Status),
		CollectedAt:       payment.CollectedAt,
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, paymentCachePrefix+payment.RideID, data, ttl).Err()
}

// GetSettled retrieves a settled payment summary by ride ID.
// Returns nil on cache miss.
func (s *PaymentCacheStore) GetSettled(ctx context.Context, rideID string) (*CachedPayment, error) {
	data, err := s.client.Get(ctx, paymentCachePrefix+rideID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var cached CachedPayment
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	return &cached, nil
}

// Invalidate removes a cached payment summary.
func (s *PaymentCacheStore) Invalidate(ctx context.Context, rideID string) error {
	return s.client.Del(ctx, paymentCachePrefix+rideID).Err()
}
