package service

import (
	"time"

	"settlement/internal/domain"
	"settlement/internal/money"
)

// maxReasonLength bounds the partial payment reason.
const maxReasonLength = 500

// SettleRequest contains the parameters for settling a ride's payment.
// ReceivedAmount is a pointer because zero is a legal collected amount and
// must be distinguishable from an absent one.
type SettleRequest struct {
	RideID         string
	CaptainID      string
	ReceivedAmount *float64
	ExpectedAmount float64
	Currency       string
	Status         domain.PaymentStatus
	Reason         string
	Method         domain.PaymentMethod
	CollectedAt    time.Time
	ProcessedBy    string
}

// PaymentValidator enforces the structural and business rules on an
// incoming settlement request. It is a pure check: no state is touched.
type PaymentValidator struct{}

// NewPaymentValidator creates a new PaymentValidator.
func NewPaymentValidator() *PaymentValidator {
	return &PaymentValidator{}
}

// Validate runs the rules in order against the given settings snapshot and
// returns the first failure. Monetary amounts are normalized to 2 decimals
// in place, so everything downstream sees rounded values.
func (v *PaymentValidator) Validate(req *SettleRequest, settings Settings) error {
	// Rule 1: required fields. Zero is a legal received amount.
	if req.RideID == "" {
		return ErrMissingRideID
	}
	if req.CaptainID == "" {
		return ErrMissingCaptainID
	}
	if req.ExpectedAmount == 0 {
		return ErrMissingExpectedAmount
	}
	if req.Status == "" {
		return ErrMissingPaymentStatus
	}
	if req.CollectedAt.IsZero() {
		return ErrMissingTimestamp
	}
	if req.ReceivedAmount == nil {
		return ErrMissingReceivedAmount
	}

	// Rounding happens here, once, at the boundary.
	received := money.Round2(*req.ReceivedAmount)
	*req.ReceivedAmount = received
	req.ExpectedAmount = money.Round2(req.ExpectedAmount)

	// Rule 2: received amount within configured bounds.
	if received < settings.MinPaymentAmount || received > settings.MaxPaymentAmount {
		return ErrAmountOutOfRange
	}

	// Rule 3: expected amount must be positive.
	if req.ExpectedAmount <= 0 {
		return ErrInvalidExpectedAmount
	}

	// Rule 4: currency, if given, must be supported.
	if req.Currency != "" && !settings.SupportsCurrency(req.Currency) {
		return ErrUnsupportedCurrency
	}

	// Rule 5: status must be full or partial.
	if req.Status != domain.PaymentStatusFull && req.Status != domain.PaymentStatusPartial {
		return ErrInvalidPaymentStatus
	}

	// Rule 6: partial payments need a reason and must be below expected.
	if req.Status == domain.PaymentStatusPartial {
		if req.Reason == "" {
			return ErrMissingPartialReason
		}
		if len(req.Reason) > maxReasonLength {
			return ErrReasonTooLong
		}
		if received >= req.ExpectedAmount {
			return ErrPartialNotBelowExpected
		}
	}

	// Rule 7: full payments must cover the expected amount.
	if req.Status == domain.PaymentStatusFull && received < req.ExpectedAmount {
		return ErrFullBelowExpected
	}

	if req.Method != "" && !validMethod(req.Method) {
		return ErrInvalidPaymentMethod
	}

	return nil
}

func validMethod(m domain.PaymentMethod) bool {
	switch m {
	case domain.PaymentMethodCash, domain.PaymentMethodCard, domain.PaymentMethodWallet, domain.PaymentMethodOther:
		return true
	}
	return false
}
