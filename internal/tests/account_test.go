package tests

import (
	"context"
	"errors"
	"testing"

	"settlement/internal/domain"
	"settlement/internal/service"
)

// ──────────────────────────────────────────────
// 8. ACCOUNT SUMMARIES
// ──────────────────────────────────────────────

func TestAccount_CompanyTotalsMatchSettlements(t *testing.T) {
	t.Parallel()

	f := newSettlementFixture()
	f.addPayableRide("ride-1", "captain-1", "customer-1", 1000)
	f.addPayableRide("ride-2", "captain-2", "customer-2", 2000)

	if _, err := f.service.Settle(context.Background(), fullSettleRequest("ride-1", "captain-1", 1000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.service.Settle(context.Background(), fullSettleRequest("ride-2", "captain-2", 2000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	accounts := service.NewAccountService(f.accounts, f.settings, adminOwner)

	summary, err := accounts.CompanySummary(context.Background(), 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 15% of 1000 + 15% of 2000
	if !almostEqual(summary.Account.Vault, 450) {
		t.Errorf("expected company vault 450, got %v", summary.Account.Vault)
	}
	if summary.Account.OwnerRole != domain.AccountRoleAdmin {
		t.Errorf("expected admin role, got %s", summary.Account.OwnerRole)
	}
	if len(summary.Entries) != 2 {
		t.Errorf("expected 2 commission entries, got %d", len(summary.Entries))
	}

	// The vault must be reconcilable from the entry log.
	var sum float64
	for _, e := range summary.Entries {
		sum += e.Amount
	}
	if !almostEqual(sum, summary.Account.Vault) {
		t.Errorf("entry sum %v does not reconcile with vault %v", sum, summary.Account.Vault)
	}
}

func TestAccount_CaptainSummary(t *testing.T) {
	t.Parallel()

	f := newSettlementFixture()
	f.addPayableRide("ride-1", "captain-1", "customer-1", 3000)

	if _, err := f.service.Settle(context.Background(), fullSettleRequest("ride-1", "captain-1", 3000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	accounts := service.NewAccountService(f.accounts, f.settings, adminOwner)

	summary, err := accounts.CaptainSummary(context.Background(), "captain-1", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(summary.Account.Vault, 2550) {
		t.Errorf("expected captain vault 2550, got %v", summary.Account.Vault)
	}
	if len(summary.Entries) != 1 || summary.Entries[0].RideID != "ride-1" {
		t.Errorf("unexpected entries: %+v", summary.Entries)
	}
}

func TestAccount_NewCaptainGetsZeroSummary(t *testing.T) {
	t.Parallel()

	f := newSettlementFixture()
	accounts := service.NewAccountService(f.accounts, f.settings, adminOwner)

	// No settlements yet: the account is created lazily with a zero vault.
	summary, err := accounts.CaptainSummary(context.Background(), "captain-9", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Account.Vault != 0 {
		t.Errorf("expected zero vault, got %v", summary.Account.Vault)
	}
	if len(summary.Entries) != 0 {
		t.Errorf("expected no entries, got %d", len(summary.Entries))
	}

	if _, err := accounts.CaptainSummary(context.Background(), "", 20); !errors.Is(err, service.ErrMissingCaptainID) {
		t.Errorf("expected ErrMissingCaptainID, got %v", err)
	}
}
