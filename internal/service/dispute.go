package service

import (
	"context"
	"time"

	"settlement/internal/domain"
	"settlement/internal/repository"
)

// DisputeService flags settled payments for manual reconciliation. Opening
// or resolving a dispute never touches account balances: refunds and
// reversals are out of scope, the flag exists for the back office.
type DisputeService struct {
	payments repository.PaymentRepository
}

// NewDisputeService creates a new DisputeService.
func NewDisputeService(payments repository.PaymentRepository) *DisputeService {
	return &DisputeService{payments: payments}
}

// OpenDispute marks a settled payment as disputed.
func (s *DisputeService) OpenDispute(ctx context.Context, paymentID, reason string) (*domain.Payment, error) {
	if reason == "" {
		return nil, ErrMissingDisputeReason
	}

	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if payment.HasDispute {
		return nil, ErrAlreadyDisputed
	}

	if err := s.payments.SetDispute(ctx, paymentID, true, reason, time.Time{}); err != nil {
		return nil, err
	}

	payment.HasDispute = true
	payment.DisputeReason = reason
	payment.DisputeResolvedAt = time.Time{}
	return payment, nil
}

// ResolveDispute closes an open dispute and stamps the resolution time.
// The dispute reason is kept for audit.
func (s *DisputeService) ResolveDispute(ctx context.Context, paymentID string) (*domain.Payment, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if !payment.HasDispute {
		return nil, ErrNoOpenDispute
	}

	now := time.Now()
	if err := s.payments.SetDispute(ctx, paymentID, false, payment.DisputeReason, now); err != nil {
		return nil, err
	}

	payment.HasDispute = false
	payment.DisputeResolvedAt = now
	return payment, nil
}
