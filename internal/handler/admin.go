package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"settlement/internal/service"
)

// AdminHandler handles operator endpoints: runtime settings and the
// reconciliation sweep.
type AdminHandler struct {
	settings   *service.SettingsStore
	reconciler *service.ReconcilerService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(settings *service.SettingsStore, reconciler *service.ReconcilerService) *AdminHandler {
	return &AdminHandler{settings: settings, reconciler: reconciler}
}

// SettingsResponse is the HTTP representation of the current settings.
type SettingsResponse struct {
	Version             int64    `json:"version"`
	CommissionRate      float64  `json:"commission_rate"`
	FixedFee            float64  `json:"fixed_fee"`
	PercentageFee       float64  `json:"percentage_fee"`
	MinPaymentAmount    float64  `json:"min_payment_amount"`
	MaxPaymentAmount    float64  `json:"max_payment_amount"`
	SupportedCurrencies []string `json:"supported_currencies"`
	CacheTTLSeconds     int      `json:"cache_ttl_seconds"`
}

// GetSettings handles GET /v1/settings
func (h *AdminHandler) GetSettings(c *gin.Context) {
	respondJSON(c, http.StatusOK, toSettingsResponse(h.settings.Current()))
}

// UpdateSettingsRequest is the HTTP request body for a partial settings
// update. Nil fields are left unchanged.
type UpdateSettingsRequest struct {
	CommissionRate      *float64 `json:"commission_rate"`
	FixedFee            *float64 `json:"fixed_fee"`
	PercentageFee       *float64 `json:"percentage_fee"`
	MinPaymentAmount    *float64 `json:"min_payment_amount"`
	MaxPaymentAmount    *float64 `json:"max_payment_amount"`
	SupportedCurrencies []string `json:"supported_currencies"`
	CacheTTLSeconds     *int     `json:"cache_ttl_seconds"`
}

// UpdateSettings handles PATCH /v1/settings
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	updated, err := h.settings.Update(service.SettingsPatch{
		CommissionRate:      req.CommissionRate,
		FixedFee:            req.FixedFee,
		PercentageFee:       req.PercentageFee,
		MinPaymentAmount:    req.MinPaymentAmount,
		MaxPaymentAmount:    req.MaxPaymentAmount,
		SupportedCurrencies: req.SupportedCurrencies,
		CacheTTLSeconds:     req.CacheTTLSeconds,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toSettingsResponse(updated))
}

// Reconcile handles POST /v1/reconcile
func (h *AdminHandler) Reconcile(c *gin.Context) {
	report, err := h.reconciler.Sweep(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"scanned":  report.Scanned,
		"repaired": report.Repaired,
		"failed":   report.Failed,
	})
}

func toSettingsResponse(s service.Settings) SettingsResponse {
	return SettingsResponse{
		Version:             s.Version,
		CommissionRate:      s.CommissionRate,
		FixedFee:            s.FixedFee,
		PercentageFee:       s.PercentageFee,
		MinPaymentAmount:    s.MinPaymentAmount,
		MaxPaymentAmount:    s.MaxPaymentAmount,
		SupportedCurrencies: s.SupportedCurrencies,
		CacheTTLSeconds:     int(s.CacheTTL.Seconds()),
	}
}
