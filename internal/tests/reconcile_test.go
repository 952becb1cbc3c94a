package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"settlement/internal/service"
)

// ──────────────────────────────────────────────
// 6. RECONCILIATION
// ──────────────────────────────────────────────

func TestReconcile_RepairsPartialSettlement(t *testing.T) {
	t.Parallel()

	f := newSettlementFixture()
	f.addPayableRide("ride-1", "captain-1", "customer-1", 3000)

	// The transfer ledger is down during the settlement. The payment
	// persists but stays unprocessed.
	f.transfers.CreateError = errors.New("ledger unavailable")
	if _, err := f.service.Settle(context.Background(), fullSettleRequest("ride-1", "captain-1", 3000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payment := f.payments.GetPaymentByRide("ride-1")
	if payment.IsProcessed {
		t.Fatal("expected unprocessed payment after outage")
	}
	if v := f.accounts.VaultOf(adminOwner); v != 0 {
		t.Fatalf("commission credited despite outage: %v", v)
	}

	// The ledger comes back; a sweep completes the settlement.
	f.transfers.CreateError = nil
	reconciler := service.NewReconcilerService(f.payments, f.service, time.Nanosecond)

	report, err := reconciler.Sweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Scanned != 1 || report.Repaired != 1 || report.Failed != 0 {
		t.Errorf("unexpected report: %+v", report)
	}

	payment = f.payments.GetPaymentByRide("ride-1")
	if !payment.IsProcessed {
		t.Error("expected payment processed after sweep")
	}
	if v := f.accounts.VaultOf(adminOwner); !almostEqual(v, 450) {
		t.Errorf("expected commission 450 after sweep, got %v", v)
	}
	if f.transfers.CountTransfers() != 1 {
		t.Errorf("expected 1 transfer, got %d", f.transfers.CountTransfers())
	}
}

func TestReconcile_ReplayDoesNotDoubleCredit(t *testing.T) {
	t.Parallel()

	f := newSettlementFixture()
	f.addPayableRide("ride-1", "captain-1", "customer-1", 3000)

	// Captain credit succeeded inline; only the transfer failed.
	f.transfers.CreateError = errors.New("ledger unavailable")
	if _, err := f.service.Settle(context.Background(), fullSettleRequest("ride-1", "captain-1", 3000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v := f.accounts.VaultOf("captain-1"); !almostEqual(v, 2550) {
		t.Fatalf("expected inline captain credit, got %v", v)
	}

	f.transfers.CreateError = nil
	reconciler := service.NewReconcilerService(f.payments, f.service, time.Nanosecond)
	if _, err := reconciler.Sweep(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The replay runs every step again, but the account log guard keeps
	// the captain's balance at one credit.
	if v := f.accounts.VaultOf("captain-1"); !almostEqual(v, 2550) {
		t.Errorf("captain credited twice: %v", v)
	}
	captain := f.captains.GetCaptain("captain-1")
	if captain.TotalRides != 1 {
		t.Errorf("captain ride count bumped twice: %d", captain.TotalRides)
	}
	if f.accounts.CountEntriesFor("captain-1") != 1 {
		t.Errorf("expected 1 log entry, got %d", f.accounts.CountEntriesFor("captain-1"))
	}
}

func TestReconcile_SecondSweepFindsNothing(t *testing.T) {
	t.Parallel()

	f := newSettlementFixture()
	f.addPayableRide("ride-1", "captain-1", "customer-1", 3000)

	f.accounts.FindOrCreateError = errors.New("accounts db down")
	if _, err := f.service.Settle(context.Background(), fullSettleRequest("ride-1", "captain-1", 3000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.accounts.FindOrCreateError = nil

	reconciler := service.NewReconcilerService(f.payments, f.service, time.Nanosecond)
	if _, err := reconciler.Sweep(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report, err := reconciler.Sweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Scanned != 0 {
		t.Errorf("expected nothing to scan after repair, got %d", report.Scanned)
	}
}

func TestReconcile_PersistentFailureCounted(t *testing.T) {
	t.Parallel()

	f := newSettlementFixture()
	f.addPayableRide("ride-1", "captain-1", "customer-1", 3000)

	f.transfers.CreateError = errors.New("ledger unavailable")
	if _, err := f.service.Settle(context.Background(), fullSettleRequest("ride-1", "captain-1", 3000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Still down at sweep time: the payment stays queued for the next pass.
	reconciler := service.NewReconcilerService(f.payments, f.service, time.Nanosecond)
	report, err := reconciler.Sweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Scanned != 1 || report.Failed != 1 || report.Repaired != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
	if f.payments.GetPaymentByRide("ride-1").IsProcessed {
		t.Error("payment marked processed despite failed replay")
	}
}

func TestReconcile_GraceKeepsFreshPaymentsOut(t *testing.T) {
	t.Parallel()

	f := newSettlementFixture()
	f.addPayableRide("ride-1", "captain-1", "customer-1", 3000)

	f.transfers.CreateError = errors.New("ledger unavailable")
	if _, err := f.service.Settle(context.Background(), fullSettleRequest("ride-1", "captain-1", 3000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A generous grace period keeps the just-created payment out of the
	// sweep so the reconciler cannot race an in-flight settlement.
	reconciler := service.NewReconcilerService(f.payments, f.service, time.Hour)
	report, err := reconciler.Sweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Scanned != 0 {
		t.Errorf("fresh payment swept inside grace period: %+v", report)
	}
}

func TestReconcile_RunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	f := newSettlementFixture()
	reconciler := service.NewReconcilerService(f.payments, f.service, time.Nanosecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reconciler.Run(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on context cancel")
	}
}
