package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"settlement/internal/domain"
	"settlement/internal/repository"
	"settlement/internal/service"
)

// ──────────────────────────────────────────────
// 4. DISPUTES
// ──────────────────────────────────────────────

func settledPayment(id, rideID string) *domain.Payment {
	return &domain.Payment{
		ID:             id,
		RideID:         rideID,
		CaptainID:      "captain-1",
		CustomerID:     "customer-1",
		ReceivedAmount: 3000,
		ExpectedAmount: 3000,
		Status:         domain.PaymentStatusFull,
		IsProcessed:    true,
		CollectedAt:    time.Now(),
	}
}

func TestDispute_OpenAndResolve(t *testing.T) {
	t.Parallel()

	payments := NewMockPaymentRepository()
	payments.AddPayment(settledPayment("pay-1", "ride-1"))
	disputes := service.NewDisputeService(payments)

	payment, err := disputes.OpenDispute(context.Background(), "pay-1", "customer claims overcharge")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !payment.HasDispute {
		t.Error("expected dispute flag set")
	}
	if payment.DisputeReason != "customer claims overcharge" {
		t.Errorf("unexpected reason: %q", payment.DisputeReason)
	}

	resolved, err := disputes.ResolveDispute(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.HasDispute {
		t.Error("expected dispute cleared")
	}
	if resolved.DisputeResolvedAt.IsZero() {
		t.Error("expected resolution time stamped")
	}
	// The reason survives resolution for audit.
	if resolved.DisputeReason != "customer claims overcharge" {
		t.Errorf("dispute reason lost on resolve: %q", resolved.DisputeReason)
	}
}

func TestDispute_RequiresReason(t *testing.T) {
	t.Parallel()

	payments := NewMockPaymentRepository()
	payments.AddPayment(settledPayment("pay-1", "ride-1"))
	disputes := service.NewDisputeService(payments)

	_, err := disputes.OpenDispute(context.Background(), "pay-1", "")
	if !errors.Is(err, service.ErrMissingDisputeReason) {
		t.Errorf("expected ErrMissingDisputeReason, got %v", err)
	}
}

func TestDispute_DoubleOpenRejected(t *testing.T) {
	t.Parallel()

	payments := NewMockPaymentRepository()
	payments.AddPayment(settledPayment("pay-1", "ride-1"))
	disputes := service.NewDisputeService(payments)

	if _, err := disputes.OpenDispute(context.Background(), "pay-1", "first"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := disputes.OpenDispute(context.Background(), "pay-1", "second")
	if !errors.Is(err, service.ErrAlreadyDisputed) {
		t.Errorf("expected ErrAlreadyDisputed, got %v", err)
	}
}

func TestDispute_ResolveWithoutOpen(t *testing.T) {
	t.Parallel()

	payments := NewMockPaymentRepository()
	payments.AddPayment(settledPayment("pay-1", "ride-1"))
	disputes := service.NewDisputeService(payments)

	_, err := disputes.ResolveDispute(context.Background(), "pay-1")
	if !errors.Is(err, service.ErrNoOpenDispute) {
		t.Errorf("expected ErrNoOpenDispute, got %v", err)
	}
}

func TestDispute_UnknownPayment(t *testing.T) {
	t.Parallel()

	disputes := service.NewDisputeService(NewMockPaymentRepository())

	_, err := disputes.OpenDispute(context.Background(), "no-such-payment", "reason")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDispute_NeverTouchesBalances(t *testing.T) {
	t.Parallel()

	f := newSettlementFixture()
	f.addPayableRide("ride-1", "captain-1", "customer-1", 3000)

	result, err := f.service.Settle(context.Background(), fullSettleRequest("ride-1", "captain-1", 3000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	incrementsBefore := f.accounts.IncrementCallCount
	vaultBefore := f.accounts.VaultOf("captain-1")

	disputes := service.NewDisputeService(f.payments)
	if _, err := disputes.OpenDispute(context.Background(), result.Payment.ID, "shortage claimed"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := disputes.ResolveDispute(context.Background(), result.Payment.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.accounts.IncrementCallCount != incrementsBefore {
		t.Error("dispute lifecycle changed a balance")
	}
	if v := f.accounts.VaultOf("captain-1"); v != vaultBefore {
		t.Errorf("captain vault changed from %v to %v", vaultBefore, v)
	}
}
