package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"settlement/internal/domain"
	"settlement/internal/redis"
	"settlement/internal/repository"
)

// SettlementService is the orchestrator that turns a captain's reported
// collection into a consistent set of balance changes. The Payment insert
// is the durability commit point: its unique ride_id index is the sole
// concurrency guard, and every step after it is retriable catch-up work
// that must never fail the settlement back to the caller.
type SettlementService struct {
	payments  repository.PaymentRepository
	rides     repository.RideRepository
	accounts  repository.AccountRepository
	transfers repository.TransferRepository
	captains  repository.CaptainRepository
	customers repository.CustomerRepository
	cache     redis.PaymentCache // optional; nil degrades to skip

	validator *PaymentValidator
	calc      *CommissionCalculator
	settings  *SettingsStore

	// adminOwnerID identifies the single company-owned settlement account.
	// Injected as configuration, never looked up by role at call time.
	adminOwnerID string
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(
	payments repository.PaymentRepository,
	rides repository.RideRepository,
	accounts repository.AccountRepository,
	transfers repository.TransferRepository,
	captains repository.CaptainRepository,
	customers repository.CustomerRepository,
	cache redis.PaymentCache,
	settings *SettingsStore,
	adminOwnerID string,
) *SettlementService {
	return &SettlementService{
		payments:     payments,
		rides:        rides,
		accounts:     accounts,
		transfers:    transfers,
		captains:     captains,
		customers:    customers,
		cache:        cache,
		validator:    NewPaymentValidator(),
		calc:         NewCommissionCalculator(),
		settings:     settings,
		adminOwnerID: adminOwnerID,
	}
}

// SettleResult contains the outcome of a successful settlement.
type SettleResult struct {
	Payment   *domain.Payment
	Ride      *domain.Ride
	Breakdown domain.SettlementBreakdown
}

// Settle records what the captain collected for a ride and distributes it
// between captain earnings and company commission.
//
// Once the payment row is in, the settlement has happened: ride mirror,
// balance updates, commission transfer and caching are best-effort, logged
// on failure, and left for the reconciler via IsProcessed=false.
func (s *SettlementService) Settle(ctx context.Context, req SettleRequest) (*SettleResult, error) {
	settings := s.settings.Current()

	// Step 1: validation. No state change on rejection.
	if err := s.validator.Validate(&req, settings); err != nil {
		return nil, err
	}

	// Step 2: the ride must exist, belong to this captain, and be payable.
	ride, err := s.rides.GetByID(ctx, req.RideID)
	if err != nil {
		return nil, err
	}

	if ride.DriverID != req.CaptainID {
		return nil, ErrNotYourRide
	}

	if !ride.Settleable() {
		return nil, ErrRideNotPayable
	}

	// Steps 3-4: compute the split and persist the payment. The unique
	// ride_id index closes the race between concurrent attempts; a
	// duplicate insert surfaces as ErrAlreadySettled no matter how the
	// attempts interleave.
	received := *req.ReceivedAmount
	fee := s.calc.ProcessingFee(received, settings)
	commission, earnings := s.calc.Compute(received, settings.CommissionRate, fee)

	currency := req.Currency
	if currency == "" && len(settings.SupportedCurrencies) > 0 {
		currency = settings.SupportedCurrencies[0]
	}

	method := req.Method
	if method == "" {
		method = domain.PaymentMethodCash
	}

	now := time.Now()
	payment := &domain.Payment{
		ID:                uuid.New().String(),
		RideID:            req.RideID,
		CaptainID:         req.CaptainID,
		CustomerID:        ride.CustomerID,
		ReceivedAmount:    received,
		ExpectedAmount:    req.ExpectedAmount,
		Currency:          currency,
		Status:            req.Status,
		Reason:            req.Reason,
		Method:            method,
		CommissionRate:    settings.CommissionRate,
		CompanyCommission: commission,
		CaptainEarnings:   earnings,
		ProcessingFee:     fee,
		IsProcessed:       false,
		ProcessedBy:       req.ProcessedBy,
		CollectedAt:       req.CollectedAt,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadySettled
		}
		// The payment did not persist; settlement did not happen and the
		// caller may safely retry.
		return nil, fmt.Errorf("persist payment: %w", err)
	}

	// Steps 5-9: side effects. Failures are logged, never returned.
	if s.applySideEffects(ctx, payment, ride) {
		s.markProcessed(ctx, payment)
	}

	return &SettleResult{
		Payment: payment,
		Ride:    ride,
		Breakdown: domain.SettlementBreakdown{
			CaptainEarnings:   earnings,
			CompanyCommission: commission,
			ProcessingFee:     fee,
		},
	}, nil
}

// GetByRideID retrieves the settled payment for a ride. Callers that timed
// out mid-settlement re-query here instead of retrying the settle call.
func (s *SettlementService) GetByRideID(ctx context.Context, rideID string) (*domain.Payment, error) {
	if rideID == "" {
		return nil, ErrMissingRideID
	}

	if s.cache != nil {
		if cached, err := s.cache.GetSettled(ctx, rideID); err == nil && cached != nil {
			return s.payments.GetByID(ctx, cached.PaymentID)
		}
	}

	return s.payments.GetByRideID(ctx, rideID)
}

// CatchUp re-runs the settlement side effects for a durable payment. Each
// step is idempotent, so replaying a partially settled payment applies only
// what is missing. Used by the reconciler.
func (s *SettlementService) CatchUp(ctx context.Context, payment *domain.Payment) error {
	ride, err := s.rides.GetByID(ctx, payment.RideID)
	if err != nil {
		return fmt.Errorf("fetch ride %s: %w", payment.RideID, err)
	}

	if !s.applySideEffects(ctx, payment, ride) {
		return fmt.Errorf("side effects incomplete for ride %s", payment.RideID)
	}

	return s.markProcessed(ctx, payment)
}

// applySideEffects runs steps 5-9 for a durable payment and reports whether
// all of them succeeded. Every step is independently idempotent: the
// account log and the transfer ledger carry uniqueness guards, so a replay
// applies only the steps that are still missing.
func (s *SettlementService) applySideEffects(ctx context.Context, payment *domain.Payment, ride *domain.Ride) bool {
	ok := true

	// Step 5: mirror the settlement onto the ride. The payment row stays
	// authoritative if this fails.
	if err := s.mirrorRide(ctx, payment, ride); err != nil {
		s.logSideEffect("ride mirror", payment, err)
		ok = false
	}

	// Step 6: credit the captain.
	if err := s.creditCaptain(ctx, payment); err != nil {
		s.logSideEffect("captain credit", payment, err)
		ok = false
	}

	// Step 7: customer aggregate spend.
	if err := s.recordCustomerSpend(ctx, payment); err != nil {
		s.logSideEffect("customer stats", payment, err)
		ok = false
	}

	// Step 8: commission transfer to the company account.
	if err := s.transferCommission(ctx, payment); err != nil {
		s.logSideEffect("commission transfer", payment, err)
		ok = false
	}

	// Step 9: cache population. Silently best-effort.
	if s.cache != nil {
		if err := s.cache.SetSettled(ctx, payment, s.settings.Current().CacheTTL); err != nil {
			log.Printf("payment cache skip: ride=%s: %v", payment.RideID, err)
		}
	}

	return ok
}

// mirrorRide copies the payment fields onto the ride record.
func (s *SettlementService) mirrorRide(ctx context.Context, payment *domain.Payment, ride *domain.Ride) error {
	details := domain.RidePaymentDetails{
		ReceivedAmount:   payment.ReceivedAmount,
		ExpectedAmount:   payment.ExpectedAmount,
		Currency:         payment.Currency,
		PaymentTimestamp: payment.CollectedAt,
		PaymentID:        payment.ID,
		Reason:           payment.Reason,
		AmountShortage:   payment.Shortage(),
	}

	if err := s.rides.UpdatePaymentFields(ctx, ride.ID, domain.RideStatusPaid, payment.Status, details); err != nil {
		return err
	}

	ride.Status = domain.RideStatusPaid
	ride.PaymentStatus = payment.Status
	ride.PaymentDetails = details
	return nil
}

// creditCaptain increments the captain's account by the earnings and bumps
// the captain's ride counters. The account log entry is unique per
// (account, ride); if it already exists the credit was already applied.
func (s *SettlementService) creditCaptain(ctx context.Context, payment *domain.Payment) error {
	account, err := s.accounts.FindOrCreateByOwner(ctx, payment.CaptainID, domain.AccountRoleCaptain, payment.Currency)
	if err != nil {
		return err
	}

	entry := &domain.AccountEntry{
		ID:          uuid.New().String(),
		AccountID:   account.ID,
		RideID:      payment.RideID,
		CaptainID:   payment.CaptainID,
		Amount:      payment.CaptainEarnings,
		Description: "ride earnings",
		CreatedAt:   time.Now(),
	}

	if err := s.accounts.AppendEntry(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil // already credited
		}
		return err
	}

	if _, err := s.accounts.Increment(ctx, account.ID, payment.CaptainEarnings); err != nil {
		return err
	}

	return s.captains.IncrementStats(ctx, payment.CaptainID, repository.StatsDelta{
		Amount:     payment.CaptainEarnings,
		RidesDelta: 1,
	})
}

// recordCustomerSpend logs the spend on the customer's account and bumps
// the customer's aggregate counters, with the same replay guard as the
// captain credit.
func (s *SettlementService) recordCustomerSpend(ctx context.Context, payment *domain.Payment) error {
	if payment.CustomerID == "" {
		return nil
	}

	account, err := s.accounts.FindOrCreateByOwner(ctx, payment.CustomerID, domain.AccountRoleCustomer, payment.Currency)
	if err != nil {
		return err
	}

	entry := &domain.AccountEntry{
		ID:          uuid.New().String(),
		AccountID:   account.ID,
		RideID:      payment.RideID,
		CaptainID:   payment.CaptainID,
		Amount:      payment.ReceivedAmount,
		Description: "ride spend",
		CreatedAt:   time.Now(),
	}

	if err := s.accounts.AppendEntry(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil
		}
		return err
	}

	return s.customers.IncrementStats(ctx, payment.CustomerID, repository.StatsDelta{
		Amount:     payment.ReceivedAmount,
		RidesDelta: 1,
	})
}

// transferCommission moves the company commission from the captain's
// account to the company account and records the ledger entry. The
// transfer ledger is unique per payment, so at most one commission transfer
// can ever exist for a settlement.
func (s *SettlementService) transferCommission(ctx context.Context, payment *domain.Payment) error {
	// Replay short-circuit. The unique index on payment_id is the hard
	// guard; this lookup just avoids a pointless insert attempt.
	if existing, err := s.transfers.GetByPaymentID(ctx, payment.ID); err == nil && existing != nil {
		return nil
	}

	captainAccount, err := s.accounts.FindOrCreateByOwner(ctx, payment.CaptainID, domain.AccountRoleCaptain, payment.Currency)
	if err != nil {
		return err
	}

	adminAccount, err := s.accounts.FindOrCreateByOwner(ctx, s.adminOwnerID, domain.AccountRoleAdmin, payment.Currency)
	if err != nil {
		return err
	}

	now := time.Now()
	transfer := &domain.MoneyTransfer{
		ID:            uuid.New().String(),
		PaymentID:     payment.ID,
		FromAccountID: captainAccount.ID,
		FromRole:      domain.AccountRoleCaptain,
		ToAccountID:   adminAccount.ID,
		ToRole:        domain.AccountRoleAdmin,
		Amount:        payment.CompanyCommission,
		Type:          domain.TransferTypeDriverToAdmin,
		Status:        domain.TransferStatusCompleted,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.transfers.Create(ctx, transfer); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil // commission already transferred
		}
		return err
	}

	if _, err := s.accounts.Increment(ctx, adminAccount.ID, payment.CompanyCommission); err != nil {
		return err
	}

	return s.accounts.AppendEntry(ctx, &domain.AccountEntry{
		ID:          uuid.New().String(),
		AccountID:   adminAccount.ID,
		RideID:      payment.RideID,
		CaptainID:   payment.CaptainID,
		Amount:      payment.CompanyCommission,
		Description: "ride commission",
		CreatedAt:   now,
	})
}

// markProcessed records that every side effect completed.
func (s *SettlementService) markProcessed(ctx context.Context, payment *domain.Payment) error {
	now := time.Now()
	if err := s.payments.MarkProcessed(ctx, payment.ID, payment.ProcessedBy, now); err != nil {
		s.logSideEffect("mark processed", payment, err)
		return err
	}

	payment.IsProcessed = true
	payment.ProcessedAt = now
	payment.UpdatedAt = now
	return nil
}

// logSideEffect logs a non-fatal settlement step failure with enough
// context for an offline reconciliation sweep.
func (s *SettlementService) logSideEffect(step string, payment *domain.Payment, err error) {
	log.Printf("settlement side effect failed: step=%s ride=%s captain=%s amount=%.2f: %v",
		step, payment.RideID, payment.CaptainID, payment.ReceivedAmount, err)
}
