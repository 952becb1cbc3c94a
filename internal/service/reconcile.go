package service

import (
	"context"
	"log"
	"time"

	"settlement/internal/repository"
)

// ReconcilerService repairs settlements whose side effects did not all
// complete. Unprocessed payment rows are the work queue: anything durable
// but not marked processed gets its balance updates replayed until they
// stick. Replays are safe because every side-effect step is idempotent.
type ReconcilerService struct {
	payments   repository.PaymentRepository
	settlement *SettlementService

	// grace keeps freshly created payments out of the sweep so the
	// reconciler does not race the inline settlement flow.
	grace time.Duration
}

// NewReconcilerService creates a new ReconcilerService.
func NewReconcilerService(payments repository.PaymentRepository, settlement *SettlementService, grace time.Duration) *ReconcilerService {
	if grace <= 0 {
		grace = time.Minute
	}
	return &ReconcilerService{
		payments:   payments,
		settlement: settlement,
		grace:      grace,
	}
}

// SweepReport summarizes one reconciliation pass.
type SweepReport struct {
	Scanned  int
	Repaired int
	Failed   int
}

// Sweep replays side effects for every unprocessed payment older than the
// grace period. Individual failures are logged and counted; the sweep
// continues.
func (s *ReconcilerService) Sweep(ctx context.Context) (*SweepReport, error) {
	cutoff := time.Now().Add(-s.grace)
	pending, err := s.payments.ListUnprocessedBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}

	report := &SweepReport{Scanned: len(pending)}
	for _, payment := range pending {
		if err := s.settlement.CatchUp(ctx, payment); err != nil {
			log.Printf("reconcile failed: ride=%s payment=%s: %v", payment.RideID, payment.ID, err)
			report.Failed++
			continue
		}
		report.Repaired++
	}

	return report, nil
}

// Run sweeps on the given interval until the context is cancelled.
func (s *ReconcilerService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := s.Sweep(ctx)
			if err != nil {
				log.Printf("reconcile sweep error: %v", err)
				continue
			}
			if report.Scanned > 0 {
				log.Printf("reconcile sweep: scanned=%d repaired=%d failed=%d",
					report.Scanned, report.Repaired, report.Failed)
			}
		}
	}
}
