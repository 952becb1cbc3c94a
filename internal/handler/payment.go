package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"settlement/internal/domain"
	"settlement/internal/service"
)

// PaymentHandler handles HTTP requests for payment settlement.
type PaymentHandler struct {
	settlementService *service.SettlementService
	disputeService    *service.DisputeService
	analyticsService  *service.AnalyticsService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(
	settlementService *service.SettlementService,
	disputeService *service.DisputeService,
	analyticsService *service.AnalyticsService,
) *PaymentHandler {
	return &PaymentHandler{
		settlementService: settlementService,
		disputeService:    disputeService,
		analyticsService:  analyticsService,
	}
}

// SettleRequest is the HTTP request body for settling a ride payment.
// ReceivedAmount is a pointer so an explicit zero survives binding.
type SettleRequest struct {
	RideID         string   `json:"ride_id"`
	CaptainID      string   `json:"captain_id"`
	ReceivedAmount *float64 `json:"received_amount"`
	ExpectedAmount float64  `json:"expected_amount"`
	Currency       string   `json:"currency"`
	PaymentStatus  string   `json:"payment_status"`
	Reason         string   `json:"reason"`
	PaymentMethod  string   `json:"payment_method"`
	Timestamp      int64    `json:"timestamp"`
	ProcessedBy    string   `json:"processed_by"`
}

// PaymentResponse is the HTTP representation of a settled payment.
type PaymentResponse struct {
	ID                string  `json:"id"`
	RideID            string  `json:"ride_id"`
	CaptainID         string  `json:"captain_id"`
	CustomerID        string  `json:"customer_id"`
	ReceivedAmount    float64 `json:"received_amount"`
	ExpectedAmount    float64 `json:"expected_amount"`
	Currency          string  `json:"currency"`
	PaymentStatus     string  `json:"payment_status"`
	Reason            string  `json:"reason,omitempty"`
	PaymentMethod     string  `json:"payment_method"`
	CommissionRate    float64 `json:"commission_rate"`
	CompanyCommission float64 `json:"company_commission"`
	CaptainEarnings   float64 `json:"captain_earnings"`
	ProcessingFee     float64 `json:"processing_fee"`
	IsProcessed       bool    `json:"is_processed"`
	HasDispute        bool    `json:"has_dispute"`
	DisputeReason     string  `json:"dispute_reason,omitempty"`
	CollectedAt       string  `json:"collected_at"`
}

// SettleResponse is the HTTP response for a successful settlement.
type SettleResponse struct {
	Payment  PaymentResponse `json:"payment"`
	Earnings struct {
		CaptainEarnings   float64 `json:"captain_earnings"`
		CompanyCommission float64 `json:"company_commission"`
		ProcessingFee     float64 `json:"processing_fee"`
	} `json:"earnings"`
	Ride struct {
		ID             string  `json:"id"`
		Status         string  `json:"status"`
		AmountShortage float64 `json:"amount_shortage"`
	} `json:"ride"`
}

// Settle handles POST /v1/payments/settle
func (h *PaymentHandler) Settle(c *gin.Context) {
	var req SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	var collectedAt time.Time
	if req.Timestamp > 0 {
		collectedAt = time.UnixMilli(req.Timestamp)
	}

	result, err := h.settlementService.Settle(c.Request.Context(), service.SettleRequest{
		RideID:         req.RideID,
		CaptainID:      req.CaptainID,
		ReceivedAmount: req.ReceivedAmount,
		ExpectedAmount: req.ExpectedAmount,
		Currency:       req.Currency,
		Status:         domain.PaymentStatus(req.PaymentStatus),
		Reason:         req.Reason,
		Method:         domain.PaymentMethod(req.PaymentMethod),
		CollectedAt:    collectedAt,
		ProcessedBy:    req.ProcessedBy,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := SettleResponse{Payment: toPaymentResponse(result.Payment)}
	resp.Earnings.CaptainEarnings = result.Breakdown.CaptainEarnings
	resp.Earnings.CompanyCommission = result.Breakdown.CompanyCommission
	resp.Earnings.ProcessingFee = result.Breakdown.ProcessingFee
	resp.Ride.ID = result.Ride.ID
	resp.Ride.Status = string(result.Ride.Status)
	resp.Ride.AmountShortage = result.Ride.PaymentDetails.AmountShortage

	respondJSON(c, http.StatusCreated, resp)
}

// GetByRide handles GET /v1/payments/ride/:rideId
//
// This is the re-query path for callers that timed out waiting on a settle
// call: retrying the settle is rejected by the uniqueness guard, so they
// look the payment up by ride instead.
func (h *PaymentHandler) GetByRide(c *gin.Context) {
	payment, err := h.settlementService.GetByRideID(c.Request.Context(), c.Param("rideId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// CaptainHistory handles GET /v1/captains/:id/payments
func (h *PaymentHandler) CaptainHistory(c *gin.Context) {
	req := service.HistoryRequest{
		CaptainID: c.Param("id"),
		Status:    domain.PaymentStatus(c.Query("status")),
		Limit:     intQuery(c, "limit"),
		Offset:    intQuery(c, "offset"),
	}
	req.From, req.To = timeRangeQuery(c)

	result, err := h.analyticsService.CaptainHistory(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	payments := make([]PaymentResponse, 0, len(result.Payments))
	for _, p := range result.Payments {
		payments = append(payments, toPaymentResponse(p))
	}

	respondJSON(c, http.StatusOK, gin.H{
		"payments": payments,
		"pagination": gin.H{
			"total":  result.Total,
			"limit":  result.Limit,
			"offset": result.Offset,
		},
		"stats": result.Stats,
	})
}

// Analytics handles GET /v1/payments/analytics
func (h *PaymentHandler) Analytics(c *gin.Context) {
	req := service.AnalyticsRequest{
		Granularity: service.Granularity(c.Query("group_by")),
	}
	req.From, req.To = timeRangeQuery(c)

	result, err := h.analyticsService.Aggregate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"series":        result.Series,
		"overall_stats": result.Overall,
	})
}

// DisputeRequest is the HTTP request body for opening a dispute.
type DisputeRequest struct {
	Reason string `json:"reason"`
}

// OpenDispute handles POST /v1/payments/:id/dispute
func (h *PaymentHandler) OpenDispute(c *gin.Context) {
	var req DisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	payment, err := h.disputeService.OpenDispute(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// ResolveDispute handles POST /v1/payments/:id/dispute/resolve
func (h *PaymentHandler) ResolveDispute(c *gin.Context) {
	payment, err := h.disputeService.ResolveDispute(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

func toPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                p.ID,
		RideID:            p.RideID,
		CaptainID:         p.CaptainID,
		CustomerID:        p.CustomerID,
		ReceivedAmount:    p.ReceivedAmount,
		ExpectedAmount:    p.ExpectedAmount,
		Currency:          p.Currency,
		PaymentStatus:     string(p.Status),
		Reason:            p.Reason,
		PaymentMethod:     string(p.Method),
		CommissionRate:    p.CommissionRate,
		CompanyCommission: p.CompanyCommission,
		CaptainEarnings:   p.CaptainEarnings,
		ProcessingFee:     p.ProcessingFee,
		IsProcessed:       p.IsProcessed,
		HasDispute:        p.HasDispute,
		DisputeReason:     p.DisputeReason,
		CollectedAt:       p.CollectedAt.UTC().Format(time.RFC3339),
	}
}
