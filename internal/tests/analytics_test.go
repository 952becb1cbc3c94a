package tests

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"settlement/internal/domain"
	"settlement/internal/service"
)

// ──────────────────────────────────────────────
// 5. ANALYTICS AND HISTORY
// ──────────────────────────────────────────────

func seedPayment(payments *MockPaymentRepository, id, rideID, captainID string, received float64, status domain.PaymentStatus, collectedAt time.Time) {
	payments.AddPayment(&domain.Payment{
		ID:                id,
		RideID:            rideID,
		CaptainID:         captainID,
		CustomerID:        "customer-1",
		ReceivedAmount:    received,
		ExpectedAmount:    received,
		CompanyCommission: received * 0.15,
		CaptainEarnings:   received * 0.85,
		Status:            status,
		IsProcessed:       true,
		CollectedAt:       collectedAt,
		CreatedAt:         collectedAt,
	})
}

func TestHistory_FiltersAndStats(t *testing.T) {
	t.Parallel()

	payments := NewMockPaymentRepository()
	now := time.Now()
	seedPayment(payments, "pay-1", "ride-1", "captain-1", 1000, domain.PaymentStatusFull, now.Add(-3*time.Hour))
	seedPayment(payments, "pay-2", "ride-2", "captain-1", 2000, domain.PaymentStatusFull, now.Add(-2*time.Hour))
	seedPayment(payments, "pay-3", "ride-3", "captain-1", 500, domain.PaymentStatusPartial, now.Add(-1*time.Hour))
	seedPayment(payments, "pay-4", "ride-4", "captain-2", 9999, domain.PaymentStatusFull, now)

	analytics := service.NewAnalyticsService(payments)

	result, err := analytics.CaptainHistory(context.Background(), service.HistoryRequest{CaptainID: "captain-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Total != 3 {
		t.Errorf("expected 3 payments, got %d", result.Total)
	}
	// Newest first
	if result.Payments[0].ID != "pay-3" {
		t.Errorf("expected newest payment first, got %s", result.Payments[0].ID)
	}

	if result.Stats.Count != 3 {
		t.Errorf("expected stats over 3 payments, got %d", result.Stats.Count)
	}
	if !almostEqual(result.Stats.TotalCollected, 3500) {
		t.Errorf("expected total 3500, got %v", result.Stats.TotalCollected)
	}
	if result.Stats.FullCount != 2 || result.Stats.PartialCount != 1 {
		t.Errorf("expected 2 full / 1 partial, got %d/%d", result.Stats.FullCount, result.Stats.PartialCount)
	}
	if !almostEqual(result.Stats.AverageAmount, 1166.67) {
		t.Errorf("expected average 1166.67, got %v", result.Stats.AverageAmount)
	}
}

func TestHistory_StatusFilter(t *testing.T) {
	t.Parallel()

	payments := NewMockPaymentRepository()
	now := time.Now()
	seedPayment(payments, "pay-1", "ride-1", "captain-1", 1000, domain.PaymentStatusFull, now.Add(-2*time.Hour))
	seedPayment(payments, "pay-2", "ride-2", "captain-1", 500, domain.PaymentStatusPartial, now.Add(-1*time.Hour))

	analytics := service.NewAnalyticsService(payments)

	result, err := analytics.CaptainHistory(context.Background(), service.HistoryRequest{
		CaptainID: "captain-1",
		Status:    domain.PaymentStatusPartial,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 1 || result.Payments[0].ID != "pay-2" {
		t.Errorf("status filter failed: total=%d", result.Total)
	}
}

func TestHistory_Pagination(t *testing.T) {
	t.Parallel()

	payments := NewMockPaymentRepository()
	now := time.Now()
	for i := 0; i < 30; i++ {
		id := fmt.Sprintf("pay-%02d", i)
		seedPayment(payments, id, fmt.Sprintf("ride-%02d", i), "captain-1",
			100, domain.PaymentStatusFull, now.Add(-time.Duration(i)*time.Minute))
	}

	analytics := service.NewAnalyticsService(payments)

	// Default limit is 20.
	result, err := analytics.CaptainHistory(context.Background(), service.HistoryRequest{CaptainID: "captain-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Payments) != 20 {
		t.Errorf("expected default page of 20, got %d", len(result.Payments))
	}
	if result.Total != 30 {
		t.Errorf("expected total 30, got %d", result.Total)
	}

	// Second page
	result, err = analytics.CaptainHistory(context.Background(), service.HistoryRequest{
		CaptainID: "captain-1",
		Limit:     20,
		Offset:    20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Payments) != 10 {
		t.Errorf("expected 10 on second page, got %d", len(result.Payments))
	}

	// Oversized limit is capped back to the default.
	result, err = analytics.CaptainHistory(context.Background(), service.HistoryRequest{
		CaptainID: "captain-1",
		Limit:     5000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Limit != 20 {
		t.Errorf("expected limit capped to 20, got %d", result.Limit)
	}
}

func TestHistory_RequiresCaptainID(t *testing.T) {
	t.Parallel()

	analytics := service.NewAnalyticsService(NewMockPaymentRepository())
	_, err := analytics.CaptainHistory(context.Background(), service.HistoryRequest{})
	if !errors.Is(err, service.ErrMissingCaptainID) {
		t.Errorf("expected ErrMissingCaptainID, got %v", err)
	}
}

func TestAggregate_DayBuckets(t *testing.T) {
	t.Parallel()

	payments := NewMockPaymentRepository()
	day1 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 11, 14, 30, 0, 0, time.UTC)
	seedPayment(payments, "pay-1", "ride-1", "captain-1", 1000, domain.PaymentStatusFull, day1)
	seedPayment(payments, "pay-2", "ride-2", "captain-1", 2000, domain.PaymentStatusFull, day1.Add(2*time.Hour))
	seedPayment(payments, "pay-3", "ride-3", "captain-2", 500, domain.PaymentStatusPartial, day2)

	analytics := service.NewAnalyticsService(payments)

	result, err := analytics.Aggregate(context.Background(), service.AnalyticsRequest{
		From:        day1.Add(-time.Hour),
		To:          day2.Add(time.Hour),
		Granularity: service.GranularityDay,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Series) != 2 {
		t.Fatalf("expected 2 day buckets, got %d", len(result.Series))
	}
	first := result.Series[0]
	if !first.Period.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected bucket start: %v", first.Period)
	}
	if first.Count != 2 || !almostEqual(first.TotalCollected, 3000) {
		t.Errorf("day 1 bucket wrong: count=%d total=%v", first.Count, first.TotalCollected)
	}

	if result.Overall.Count != 3 {
		t.Errorf("expected overall count 3, got %d", result.Overall.Count)
	}
	if result.Overall.PartialCount != 1 {
		t.Errorf("expected 1 partial overall, got %d", result.Overall.PartialCount)
	}
}

func TestAggregate_WeekBucketsStartMonday(t *testing.T) {
	t.Parallel()

	payments := NewMockPaymentRepository()
	// 2025-03-12 is a Wednesday; its ISO week starts Monday 2025-03-10.
	// 2025-03-16 is the Sunday of the same week.
	wed := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	sun := time.Date(2025, 3, 16, 23, 0, 0, 0, time.UTC)
	nextMon := time.Date(2025, 3, 17, 1, 0, 0, 0, time.UTC)
	seedPayment(payments, "pay-1", "ride-1", "captain-1", 1000, domain.PaymentStatusFull, wed)
	seedPayment(payments, "pay-2", "ride-2", "captain-1", 1000, domain.PaymentStatusFull, sun)
	seedPayment(payments, "pay-3", "ride-3", "captain-1", 1000, domain.PaymentStatusFull, nextMon)

	analytics := service.NewAnalyticsService(payments)

	result, err := analytics.Aggregate(context.Background(), service.AnalyticsRequest{
		From:        wed.AddDate(0, 0, -7),
		To:          nextMon.AddDate(0, 0, 1),
		Granularity: service.GranularityWeek,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Series) != 2 {
		t.Fatalf("expected 2 week buckets, got %d", len(result.Series))
	}
	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	if !result.Series[0].Period.Equal(monday) {
		t.Errorf("expected week start %v, got %v", monday, result.Series[0].Period)
	}
	if result.Series[0].Count != 2 {
		t.Errorf("expected Wednesday and Sunday in one week, got %d", result.Series[0].Count)
	}
}

func TestAggregate_MonthBuckets(t *testing.T) {
	t.Parallel()

	payments := NewMockPaymentRepository()
	seedPayment(payments, "pay-1", "ride-1", "captain-1", 1000, domain.PaymentStatusFull,
		time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC))
	seedPayment(payments, "pay-2", "ride-2", "captain-1", 2000, domain.PaymentStatusFull,
		time.Date(2025, 2, 25, 0, 0, 0, 0, time.UTC))
	seedPayment(payments, "pay-3", "ride-3", "captain-1", 3000, domain.PaymentStatusFull,
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

	analytics := service.NewAnalyticsService(payments)

	result, err := analytics.Aggregate(context.Background(), service.AnalyticsRequest{
		From:        time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		To:          time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		Granularity: service.GranularityMonth,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Series) != 2 {
		t.Fatalf("expected 2 month buckets, got %d", len(result.Series))
	}
	if !almostEqual(result.Series[0].TotalCollected, 3000) {
		t.Errorf("expected February total 3000, got %v", result.Series[0].TotalCollected)
	}
	if !almostEqual(result.Series[1].TotalCollected, 3000) {
		t.Errorf("expected March total 3000, got %v", result.Series[1].TotalCollected)
	}
}

func TestAggregate_EmptyWindow(t *testing.T) {
	t.Parallel()

	analytics := service.NewAnalyticsService(NewMockPaymentRepository())

	result, err := analytics.Aggregate(context.Background(), service.AnalyticsRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Series) != 0 {
		t.Errorf("expected empty series, got %d buckets", len(result.Series))
	}
	if result.Overall.Count != 0 || result.Overall.AverageAmount != 0 {
		t.Errorf("expected zero stats, got %+v", result.Overall)
	}
}
