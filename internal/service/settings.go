package service

import (
	"sync"
	"sync/atomic"
	"time"

	"settlement/internal/money"
)

// Settings holds the operator-tunable pricing parameters. A Settings value
// is an immutable snapshot: the settlement flow reads one snapshot per
// request and never sees a half-applied update.
type Settings struct {
	Version             int64
	CommissionRate      float64
	FixedFee            float64
	PercentageFee       float64
	MinPaymentAmount    float64
	MaxPaymentAmount    float64
	SupportedCurrencies []string
	CacheTTL            time.Duration
}

// DefaultSettings returns the out-of-the-box pricing parameters.
func DefaultSettings() Settings {
	return Settings{
		Version:             1,
		CommissionRate:      0.15,
		FixedFee:            0,
		PercentageFee:       0,
		MinPaymentAmount:    0,
		MaxPaymentAmount:    1_000_000,
		SupportedCurrencies: []string{"IQD", "USD"},
		CacheTTL:            10 * time.Minute,
	}
}

// SupportsCurrency reports whether the currency is in the supported set.
func (s Settings) SupportsCurrency(currency string) bool {
	for _, c := range s.SupportedCurrencies {
		if c == currency {
			return true
		}
	}
	return false
}

// SettingsPatch is a partial settings update. Nil fields are left unchanged.
type SettingsPatch struct {
	CommissionRate      *float64
	FixedFee            *float64
	PercentageFee       *float64
	MinPaymentAmount    *float64
	MaxPaymentAmount    *float64
	SupportedCurrencies []string
	CacheTTLSeconds     *int
}

// SettingsStore provides race-free access to runtime-tunable settings.
// Readers load an atomic snapshot pointer; writers serialize on a mutex,
// build a new snapshot with a bumped version, and swap the pointer.
type SettingsStore struct {
	mu      sync.Mutex
	current atomic.Pointer[Settings]
}

// NewSettingsStore creates a settings store with the given initial snapshot.
func NewSettingsStore(initial Settings) *SettingsStore {
	store := &SettingsStore{}
	if initial.Version == 0 {
		initial.Version = 1
	}
	store.current.Store(&initial)
	return store
}

// Current returns the current settings snapshot.
func (s *SettingsStore) Current() Settings {
	return *s.current.Load()
}

// Update applies a partial patch, validates the result, and publishes it as
// a new versioned snapshot.
func (s *SettingsStore) Update(patch SettingsPatch) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := *s.current.Load()

	if patch.CommissionRate != nil {
		next.CommissionRate = *patch.CommissionRate
	}
	if patch.FixedFee != nil {
		next.FixedFee = money.Round2(*patch.FixedFee)
	}
	if patch.PercentageFee != nil {
		next.PercentageFee = *patch.PercentageFee
	}
	if patch.MinPaymentAmount != nil {
		next.MinPaymentAmount = money.Round2(*patch.MinPaymentAmount)
	}
	if patch.MaxPaymentAmount != nil {
		next.MaxPaymentAmount = money.Round2(*patch.MaxPaymentAmount)
	}
	if patch.SupportedCurrencies != nil {
		next.SupportedCurrencies = append([]string(nil), patch.SupportedCurrencies...)
	}
	if patch.CacheTTLSeconds != nil {
		next.CacheTTL = time.Duration(*patch.CacheTTLSeconds) * time.Second
	}

	if next.CommissionRate < 0 || next.CommissionRate > 1 {
		return Settings{}, ErrInvalidCommissionRate
	}
	if next.FixedFee < 0 || next.PercentageFee < 0 {
		return Settings{}, ErrInvalidFee
	}
	if next.MinPaymentAmount < 0 || next.MaxPaymentAmount <= next.MinPaymentAmount {
		return Settings{}, ErrInvalidBounds
	}

	next.Version++
	s.current.Store(&next)
	return next, nil
}
