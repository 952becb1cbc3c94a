package redis

import (
	"context"
	"time"

	"settlement/internal/domain"
)

// PaymentCache defines the interface for caching settled payments. A nil
// cache, or one backed by an unreachable Redis, must degrade to log-and-skip
// in callers.
type PaymentCache interface {
	SetSettled(ctx context.Context, payment *domain.Payment, ttl time.Duration) error
	GetSettled(ctx context.Context, rideID string) (*CachedPayment, error)
	Invalidate(ctx context.Context, rideID string) error
}

// Ensure concrete types implement interfaces.
var _ PaymentCache = (*PaymentCacheStore)(nil)
