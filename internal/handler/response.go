package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"settlement/internal/repository"
	"settlement/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrMissingRideID),
		errors.Is(err, service.ErrMissingCaptainID),
		errors.Is(err, service.ErrMissingReceivedAmount),
		errors.Is(err, service.ErrMissingExpectedAmount),
		errors.Is(err, service.ErrMissingPaymentStatus),
		errors.Is(err, service.ErrMissingTimestamp),
		errors.Is(err, service.ErrAmountOutOfRange),
		errors.Is(err, service.ErrInvalidExpectedAmount),
		errors.Is(err, service.ErrUnsupportedCurrency),
		errors.Is(err, service.ErrInvalidPaymentStatus),
		errors.Is(err, service.ErrMissingPartialReason),
		errors.Is(err, service.ErrReasonTooLong),
		errors.Is(err, service.ErrPartialNotBelowExpected),
		errors.Is(err, service.ErrFullBelowExpected),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrMissingDisputeReason),
		errors.Is(err, service.ErrInvalidCommissionRate),
		errors.Is(err, service.ErrInvalidFee),
		errors.Is(err, service.ErrInvalidBounds):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrAlreadySettled),
		errors.Is(err, service.ErrRideNotPayable),
		errors.Is(err, service.ErrAlreadyDisputed),
		errors.Is(err, service.ErrNoOpenDispute):
		return http.StatusConflict

	// Forbidden/Business rule errors
	case errors.Is(err, service.ErrNotYourRide):
		return http.StatusForbidden

	// Default to internal server error. Settlement persistence failures
	// land here; the payment did not write and the caller may retry.
	default:
		return http.StatusInternalServerError
	}
}
