package service

import (
	"context"
	"time"

	"settlement/internal/domain"
	"settlement/internal/money"
	"settlement/internal/repository"
)

// Granularity selects the bucket size for payment time series.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// AnalyticsService computes read-only rollups over settled payments. It
// never mutates state.
type AnalyticsService struct {
	payments repository.PaymentRepository
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(payments repository.PaymentRepository) *AnalyticsService {
	return &AnalyticsService{payments: payments}
}

// PaymentStats are aggregate figures over a set of payments.
type PaymentStats struct {
	Count           int
	TotalCollected  float64
	TotalEarnings   float64
	TotalCommission float64
	TotalFees       float64
	AverageAmount   float64
	FullCount       int
	PartialCount    int
	DisputedCount   int
}

// HistoryRequest filters a captain's payment history.
type HistoryRequest struct {
	CaptainID string
	Status    domain.PaymentStatus
	From      time.Time
	To        time.Time
	Limit     int
	Offset    int
}

// HistoryResult is a page of a captain's payment history with stats over
// the page.
type HistoryResult struct {
	Payments []*domain.Payment
	Total    int
	Limit    int
	Offset   int
	Stats    PaymentStats
}

// CaptainHistory returns a page of the captain's settled payments, newest
// first, with aggregate stats.
func (s *AnalyticsService) CaptainHistory(ctx context.Context, req HistoryRequest) (*HistoryResult, error) {
	if req.CaptainID == "" {
		return nil, ErrMissingCaptainID
	}

	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	payments, total, err := s.payments.List(ctx, repository.PaymentFilter{
		CaptainID: req.CaptainID,
		Status:    req.Status,
		From:      req.From,
		To:        req.To,
		Limit:     limit,
		Offset:    req.Offset,
	})
	if err != nil {
		return nil, err
	}

	return &HistoryResult{
		Payments: payments,
		Total:    total,
		Limit:    limit,
		Offset:   req.Offset,
		Stats:    aggregate(payments),
	}, nil
}

// SeriesBucket is one point of a payment time series.
type SeriesBucket struct {
	Period          time.Time
	Count           int
	TotalCollected  float64
	TotalCommission float64
	TotalEarnings   float64
	FullCount       int
	PartialCount    int
}

// AnalyticsRequest selects the window and bucket size for a rollup.
type AnalyticsRequest struct {
	From        time.Time
	To          time.Time
	Granularity Granularity
}

// AnalyticsResult is a grouped time series plus overall stats for the
// window.
type AnalyticsResult struct {
	Series  []SeriesBucket
	Overall PaymentStats
}

// Aggregate rolls settled payments in [from, to) into time buckets.
func (s *AnalyticsService) Aggregate(ctx context.Context, req AnalyticsRequest) (*AnalyticsResult, error) {
	from, to := req.From, req.To
	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() {
		from = to.AddDate(0, -1, 0)
	}

	granularity := req.Granularity
	if granularity == "" {
		granularity = GranularityDay
	}

	payments, err := s.payments.ListSettledBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	buckets := make(map[time.Time]*SeriesBucket)
	var order []time.Time
	for _, p := range payments {
		period := bucketStart(p.CollectedAt, granularity)
		bucket, ok := buckets[period]
		if !ok {
			bucket = &SeriesBucket{Period: period}
			buckets[period] = bucket
			order = append(order, period)
		}
		bucket.Count++
		bucket.TotalCollected = money.Add(bucket.TotalCollected, p.ReceivedAmount)
		bucket.TotalCommission = money.Add(bucket.TotalCommission, p.CompanyCommission)
		bucket.TotalEarnings = money.Add(bucket.TotalEarnings, p.CaptainEarnings)
		if p.Status == domain.PaymentStatusFull {
			bucket.FullCount++
		} else {
			bucket.PartialCount++
		}
	}

	series := make([]SeriesBucket, 0, len(order))
	for _, period := range order {
		series = append(series, *buckets[period])
	}

	return &AnalyticsResult{
		Series:  series,
		Overall: aggregate(payments),
	}, nil
}

// bucketStart truncates a timestamp to the start of its bucket in UTC.
func bucketStart(t time.Time, g Granularity) time.Time {
	t = t.UTC()
	switch g {
	case GranularityWeek:
		// Start of the ISO week (Monday).
		weekday := int(t.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		day := t.AddDate(0, 0, 1-weekday)
		return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	case GranularityMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

func aggregate(payments []*domain.Payment) PaymentStats {
	var stats PaymentStats
	for _, p := range payments {
		stats.Count++
		stats.TotalCollected = money.Add(stats.TotalCollected, p.ReceivedAmount)
		stats.TotalEarnings = money.Add(stats.TotalEarnings, p.CaptainEarnings)
		stats.TotalCommission = money.Add(stats.TotalCommission, p.CompanyCommission)
		stats.TotalFees = money.Add(stats.TotalFees, p.ProcessingFee)
		if p.Status == domain.PaymentStatusFull {
			stats.FullCount++
		} else {
			stats.PartialCount++
		}
		if p.HasDispute {
			stats.DisputedCount++
		}
	}
	if stats.Count > 0 {
		stats.AverageAmount = money.Round2(stats.TotalCollected / float64(stats.Count))
	}
	return stats
}
