package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"settlement/internal/domain"
	"settlement/internal/service"
)

// AccountHandler handles HTTP requests for account balances.
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// AccountEntryResponse is one row of an account's transaction log.
type AccountEntryResponse struct {
	ID          string  `json:"id"`
	RideID      string  `json:"ride_id,omitempty"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"created_at"`
}

// AccountSummaryResponse is an account balance with recent entries.
type AccountSummaryResponse struct {
	OwnerID  string                 `json:"owner_id"`
	Role     string                 `json:"role"`
	Balance  float64                `json:"balance"`
	Currency string                 `json:"currency"`
	Entries  []AccountEntryResponse `json:"entries"`
}

// CaptainAccount handles GET /v1/captains/:id/account
func (h *AccountHandler) CaptainAccount(c *gin.Context) {
	summary, err := h.accountService.CaptainSummary(c.Request.Context(), c.Param("id"), intQuery(c, "limit"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toAccountSummaryResponse(summary))
}

// CompanyAccount handles GET /v1/company/account
//
// The company's running commission total is the admin account's vault; the
// entries show which settlements contributed.
func (h *AccountHandler) CompanyAccount(c *gin.Context) {
	summary, err := h.accountService.CompanySummary(c.Request.Context(), intQuery(c, "limit"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toAccountSummaryResponse(summary))
}

func toAccountSummaryResponse(s *service.AccountSummary) AccountSummaryResponse {
	entries := make([]AccountEntryResponse, 0, len(s.Entries))
	for _, e := range s.Entries {
		entries = append(entries, toAccountEntryResponse(e))
	}

	return AccountSummaryResponse{
		OwnerID:  s.Account.OwnerID,
		Role:     string(s.Account.OwnerRole),
		Balance:  s.Account.Vault,
		Currency: s.Account.Currency,
		Entries:  entries,
	}
}

func toAccountEntryResponse(e *domain.AccountEntry) AccountEntryResponse {
	return AccountEntryResponse{
		ID:          e.ID,
		RideID:      e.RideID,
		Amount:      e.Amount,
		Description: e.Description,
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
	}
}
