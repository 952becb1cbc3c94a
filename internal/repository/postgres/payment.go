package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"settlement/internal/domain"
	"settlement/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
// The payments table carries a UNIQUE index on ride_id; Create translates a
// violation of that index into repository.ErrDuplicate.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

const paymentColumns = `id, ride_id, captain_id, customer_id, received_amount, expected_amount,
	currency, status, reason, method, commission_rate, company_commission,
	captain_earnings, processing_fee, is_processed, processed_at, processed_by,
	has_dispute, dispute_reason, dispute_resolved_at, collected_at, created_at, updated_at`

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`

	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.RideID,
		payment.CaptainID,
		payment.CustomerID,
		payment.ReceivedAmount,
		payment.ExpectedAmount,
		payment.Currency,
		payment.Status,
		nullString(payment.Reason),
		payment.Method,
		payment.CommissionRate,
		payment.CompanyCommission,
		payment.CaptainEarnings,
		payment.ProcessingFee,
		payment.IsProcessed,
		nullTime(payment.ProcessedAt),
		nullString(payment.ProcessedBy),
		payment.HasDispute,
		nullString(payment.DisputeReason),
		nullTime(payment.DisputeResolvedAt),
		payment.CollectedAt,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return err
	}

	return nil
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByRideID retrieves the payment for a ride.
func (r *PaymentRepository) GetByRideID(ctx context.Context, rideID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE ride_id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, rideID))
}

// List retrieves payments matching the filter, newest first, plus the total
// match count for pagination.
func (r *PaymentRepository) List(ctx context.Context, filter repository.PaymentFilter) ([]*domain.Payment, int, error) {
	where, args := buildPaymentFilter(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM payments` + where
	if err := r.q.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	query := fmt.Sprintf(`SELECT `+paymentColumns+` FROM payments%s ORDER BY collected_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)
	args = append(args, limit, filter.Offset)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	payments, err := r.scanAll(rows)
	if err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

// ListSettledBetween retrieves all payments collected in [from, to).
func (r *PaymentRepository) ListSettledBetween(ctx context.Context, from, to time.Time) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + ` FROM payments
		WHERE collected_at >= $1 AND collected_at < $2
		ORDER BY collected_at ASC
	`

	rows, err := r.q.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// ListUnprocessedBefore retrieves payments whose side effects have not
// completed and that were created before the cutoff.
func (r *PaymentRepository) ListUnprocessedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + ` FROM payments
		WHERE is_processed = FALSE AND created_at < $1
		ORDER BY created_at ASC
	`

	rows, err := r.q.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// MarkProcessed records that all settlement side effects completed.
func (r *PaymentRepository) MarkProcessed(ctx context.Context, id, processedBy string, at time.Time) error {
	query := `
		UPDATE payments
		SET is_processed = TRUE, processed_at = $1, processed_by = $2, updated_at = $1
		WHERE id = $3
	`

	return r.exec(ctx, query, at, nullString(processedBy), id)
}

// SetDispute updates the dispute flags on a payment.
func (r *PaymentRepository) SetDispute(ctx context.Context, id string, hasDispute bool, reason string, resolvedAt time.Time) error {
	query := `
		UPDATE payments
		SET has_dispute = $1, dispute_reason = $2, dispute_resolved_at = $3, updated_at = NOW()
		WHERE id = $4
	`

	return r.exec(ctx, query, hasDispute, nullString(reason), nullTime(resolvedAt), id)
}

func (r *PaymentRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.q.ExecContext(ctx, query, args...)
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

func (r *PaymentRepository) scanOne(row *sql.Row) (*domain.Payment, error) {
	payment, err := scanPayment(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return payment, nil
}

func (r *PaymentRepository) scanAll(rows *sql.Rows) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	for rows.Next() {
		payment, err := scanPayment(rows.Scan)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

// scanPayment scans one payments row through any Scan-shaped function.
func scanPayment(scan func(dest ...any) error) (*domain.Payment, error) {
	var payment domain.Payment
	var reason, processedBy, disputeReason sql.NullString
	var processedAt, disputeResolvedAt sql.NullTime

	err := scan(
		&payment.ID,
		&payment.RideID,
		&payment.CaptainID,
		&payment.CustomerID,
		&payment.ReceivedAmount,
		&payment.ExpectedAmount,
		&payment.Currency,
		&payment.Status,
		&reason,
		&payment.Method,
		&payment.CommissionRate,
		&payment.CompanyCommission,
		&payment.CaptainEarnings,
		&payment.ProcessingFee,
		&payment.IsProcessed,
		&processedAt,
		&processedBy,
		&payment.HasDispute,
		&disputeReason,
		&disputeResolvedAt,
		&payment.CollectedAt,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if reason.Valid {
		payment.Reason = reason.String
	}
	if processedAt.Valid {
		payment.ProcessedAt = processedAt.Time
	}
	if processedBy.Valid {
		payment.ProcessedBy = processedBy.String
	}
	if disputeReason.Valid {
		payment.DisputeReason = disputeReason.String
	}
	if disputeResolvedAt.Valid {
		payment.DisputeResolvedAt = disputeResolvedAt.Time
	}

	return &payment, nil
}

// buildPaymentFilter builds a WHERE clause and args from the filter.
func buildPaymentFilter(filter repository.PaymentFilter) (string, []any) {
	var clauses []string
	var args []any

	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.CaptainID != "" {
		add("captain_id = $%d", filter.CaptainID)
	}
	if filter.CustomerID != "" {
		add("customer_id = $%d", filter.CustomerID)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if !filter.From.IsZero() {
		add("collected_at >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		add("collected_at < $%d", filter.To)
	}

	if len(clauses) == 0 {
		return "", nil
	}

	where := " WHERE " + clauses[0]
	for _, c := range clauses[1:] {
		where += " AND " + c
	}
	return where, args
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
