package tests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"settlement/internal/service"
)

// ──────────────────────────────────────────────
// 7. RUNTIME SETTINGS
// ──────────────────────────────────────────────

func intPtr(v int) *int {
	return &v
}

func TestSettings_UpdateChangesSubsequentSplits(t *testing.T) {
	t.Parallel()

	f := newSettlementFixture()
	f.addPayableRide("ride-1", "captain-1", "customer-1", 1000)
	f.addPayableRide("ride-2", "captain-1", "customer-1", 1000)

	result, err := f.service.Settle(context.Background(), fullSettleRequest("ride-1", "captain-1", 1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(result.Breakdown.CompanyCommission, 150) {
		t.Errorf("expected commission 150 at default rate, got %v", result.Breakdown.CompanyCommission)
	}

	if _, err := f.settings.Update(service.SettingsPatch{CommissionRate: floatPtr(0.2)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err = f.service.Settle(context.Background(), fullSettleRequest("ride-2", "captain-1", 1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(result.Breakdown.CompanyCommission, 200) {
		t.Errorf("expected commission 200 after rate change, got %v", result.Breakdown.CompanyCommission)
	}
	if !almostEqual(result.Payment.CommissionRate, 0.2) {
		t.Errorf("expected payment to record the rate it was settled at, got %v", result.Payment.CommissionRate)
	}
}

func TestSettings_InvalidPatchesRejected(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		patch   service.SettingsPatch
		wantErr error
	}{
		{"rate above 1", service.SettingsPatch{CommissionRate: floatPtr(1.5)}, service.ErrInvalidCommissionRate},
		{"negative rate", service.SettingsPatch{CommissionRate: floatPtr(-0.1)}, service.ErrInvalidCommissionRate},
		{"negative fixed fee", service.SettingsPatch{FixedFee: floatPtr(-1)}, service.ErrInvalidFee},
		{"negative percentage fee", service.SettingsPatch{PercentageFee: floatPtr(-0.01)}, service.ErrInvalidFee},
		{"max below min", service.SettingsPatch{MinPaymentAmount: floatPtr(100), MaxPaymentAmount: floatPtr(50)}, service.ErrInvalidBounds},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			store := service.NewSettingsStore(service.DefaultSettings())
			before := store.Current()

			if _, err := store.Update(c.patch); !errors.Is(err, c.wantErr) {
				t.Errorf("expected %v, got %v", c.wantErr, err)
			}

			// A rejected patch leaves the snapshot untouched.
			after := store.Current()
			if after.Version != before.Version || after.CommissionRate != before.CommissionRate {
				t.Error("rejected patch mutated settings")
			}
		})
	}
}

func TestSettings_PatchIsPartial(t *testing.T) {
	t.Parallel()

	store := service.NewSettingsStore(service.DefaultSettings())

	updated, err := store.Update(service.SettingsPatch{FixedFee: floatPtr(2.5)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.FixedFee != 2.5 {
		t.Errorf("expected fixed fee 2.5, got %v", updated.FixedFee)
	}
	// Everything not in the patch is retained.
	if updated.CommissionRate != 0.15 {
		t.Errorf("commission rate changed unexpectedly: %v", updated.CommissionRate)
	}
	if len(updated.SupportedCurrencies) != 2 {
		t.Errorf("currencies changed unexpectedly: %v", updated.SupportedCurrencies)
	}
}

func TestSettings_VersionBumpsOnEveryUpdate(t *testing.T) {
	t.Parallel()

	store := service.NewSettingsStore(service.DefaultSettings())
	v0 := store.Current().Version

	for i := 0; i < 3; i++ {
		if _, err := store.Update(service.SettingsPatch{FixedFee: floatPtr(float64(i))}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if v := store.Current().Version; v != v0+3 {
		t.Errorf("expected version %d, got %d", v0+3, v)
	}
}

func TestSettings_CacheTTLPatch(t *testing.T) {
	t.Parallel()

	store := service.NewSettingsStore(service.DefaultSettings())

	updated, err := store.Update(service.SettingsPatch{CacheTTLSeconds: intPtr(120)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.CacheTTL != 2*time.Minute {
		t.Errorf("expected 2m TTL, got %v", updated.CacheTTL)
	}
}

func TestSettings_ConcurrentReadersAndWriters(t *testing.T) {
	t.Parallel()

	store := service.NewSettingsStore(service.DefaultSettings())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func(rate float64) {
			defer wg.Done()
			_, _ = store.Update(service.SettingsPatch{CommissionRate: &rate})
		}(0.1 + float64(i)*0.05)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s := store.Current()
				// A reader must always see a complete snapshot.
				if s.CommissionRate < 0 || s.CommissionRate > 1 {
					t.Errorf("torn settings snapshot: %+v", s)
				}
			}
		}()
	}
	wg.Wait()
}
