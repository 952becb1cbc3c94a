package postgres

import (
	"context"
	"database/sql"
	"errors"

	"settlement/internal/domain"
	"settlement/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `
		SELECT id, customer_id, driver_id, status, fare, payment_status,
		       pd_received_amount, pd_expected_amount, pd_currency, pd_payment_timestamp,
		       pd_payment_id, pd_reason, pd_amount_shortage, created_at
		FROM rides WHERE id = $1
	`

	var ride domain.Ride
	var paymentStatus, pdCurrency, pdPaymentID, pdReason sql.NullString
	var pdReceived, pdExpected, pdShortage sql.NullFloat64
	var pdTimestamp sql.NullTime

	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&ride.ID,
		&ride.CustomerID,
		&ride.DriverID,
		&ride.Status,
		&ride.Fare,
		&paymentStatus,
		&pdReceived,
		&pdExpected,
		&pdCurrency,
		&pdTimestamp,
		&pdPaymentID,
		&pdReason,
		&pdShortage,
		&ride.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if paymentStatus.Valid {
		ride.PaymentStatus = domain.PaymentStatus(paymentStatus.String)
	}
	ride.PaymentDetails = domain.RidePaymentDetails{
		ReceivedAmount: pdReceived.Float64,
		ExpectedAmount: pdExpected.Float64,
		Currency:       pdCurrency.String,
		PaymentID:      pdPaymentID.String,
		Reason:         pdReason.String,
		AmountShortage: pdShortage.Float64,
	}
	if pdTimestamp.Valid {
		ride.PaymentDetails.PaymentTimestamp = pdTimestamp.Time
	}

	return &ride, nil
}

// UpdatePaymentFields mirrors the settlement onto the ride record.
func (r *RideRepository) UpdatePaymentFields(ctx context.Context, id string, status domain.RideStatus, paymentStatus domain.PaymentStatus, details domain.RidePaymentDetails) error {
	query := `
		UPDATE rides
		SET status = $1, payment_status = $2,
		    pd_received_amount = $3, pd_expected_amount = $4, pd_currency = $5,
		    pd_payment_timestamp = $6, pd_payment_id = $7, pd_reason = $8, pd_amount_shortage = $9
		WHERE id = $10
	`

	result, err := r.q.ExecContext(ctx, query,
		status,
		paymentStatus,
		details.ReceivedAmount,
		details.ExpectedAmount,
		details.Currency,
		nullTime(details.PaymentTimestamp),
		details.PaymentID,
		nullString(details.Reason),
		details.AmountShortage,
		id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}
