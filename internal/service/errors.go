package service

import "errors"

// Validation errors. One stable error per rule so callers can give precise
// user feedback. Validation runs the rules in order; the first failure wins.
var (
	// ErrMissingRideID is returned when ride ID is empty.
	ErrMissingRideID = errors.New("ride id is required")

	// ErrMissingCaptainID is returned when captain ID is empty.
	ErrMissingCaptainID = errors.New("captain id is required")

	// ErrMissingReceivedAmount is returned when the received amount is
	// absent. Zero is a legal value; absent is not.
	ErrMissingReceivedAmount = errors.New("received amount is required")

	// ErrMissingExpectedAmount is returned when the expected amount is absent.
	ErrMissingExpectedAmount = errors.New("expected amount is required")

	// ErrMissingPaymentStatus is returned when the payment status is absent.
	ErrMissingPaymentStatus = errors.New("payment status is required")

	// ErrMissingTimestamp is returned when the collection timestamp is absent.
	ErrMissingTimestamp = errors.New("payment timestamp is required")

	// ErrAmountOutOfRange is returned when the received amount falls outside
	// the configured min/max bounds.
	ErrAmountOutOfRange = errors.New("received amount out of allowed range")

	// ErrInvalidExpectedAmount is returned when the expected amount is not
	// positive.
	ErrInvalidExpectedAmount = errors.New("expected amount must be positive")

	// ErrUnsupportedCurrency is returned when the currency is not in the
	// supported set.
	ErrUnsupportedCurrency = errors.New("unsupported currency")

	// ErrInvalidPaymentStatus is returned when the payment status is neither
	// full nor partial.
	ErrInvalidPaymentStatus = errors.New("payment status must be FULL or PARTIAL")

	// ErrMissingPartialReason is returned when a partial payment carries no
	// reason.
	ErrMissingPartialReason = errors.New("partial payment requires a reason")

	// ErrReasonTooLong is returned when a partial payment reason exceeds the
	// maximum length.
	ErrReasonTooLong = errors.New("partial payment reason too long")

	// ErrPartialNotBelowExpected is returned when a partial payment's
	// received amount is not below the expected amount.
	ErrPartialNotBelowExpected = errors.New("partial payment must be below expected amount")

	// ErrFullBelowExpected is returned when a full payment's received amount
	// is below the expected amount.
	ErrFullBelowExpected = errors.New("full payment cannot be below expected amount")

	// ErrInvalidPaymentMethod is returned when the payment method is invalid.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)

// Settlement state errors.
var (
	// ErrNotYourRide is returned when the ride does not belong to the
	// requesting captain.
	ErrNotYourRide = errors.New("ride does not belong to this captain")

	// ErrRideNotPayable is returned when the ride is not in a settleable
	// state.
	ErrRideNotPayable = errors.New("ride not ready for payment")

	// ErrAlreadySettled is returned when a payment already exists for the
	// ride. Every duplicate settlement attempt receives this error
	// deterministically.
	ErrAlreadySettled = errors.New("ride already settled")
)

// Dispute errors.
var (
	// ErrMissingDisputeReason is returned when a dispute is opened without a
	// reason.
	ErrMissingDisputeReason = errors.New("dispute reason is required")

	// ErrAlreadyDisputed is returned when opening a dispute on a payment that
	// already has one open.
	ErrAlreadyDisputed = errors.New("payment already has an open dispute")

	// ErrNoOpenDispute is returned when resolving a dispute on a payment that
	// has none open.
	ErrNoOpenDispute = errors.New("payment has no open dispute")
)

// Settings errors.
var (
	// ErrInvalidCommissionRate is returned when the commission rate is
	// outside [0, 1].
	ErrInvalidCommissionRate = errors.New("commission rate must be between 0 and 1")

	// ErrInvalidFee is returned when a fee component is negative.
	ErrInvalidFee = errors.New("fees cannot be negative")

	// ErrInvalidBounds is returned when min/max payment bounds are not a
	// valid range.
	ErrInvalidBounds = errors.New("invalid payment amount bounds")
)
