package postgres

import (
	"context"
	"database/sql"
	"errors"

	"settlement/internal/domain"
	"settlement/internal/repository"
)

// CaptainRepository is a PostgreSQL implementation of repository.CaptainRepository.
type CaptainRepository struct {
	q Querier
}

// NewCaptainRepository creates a new PostgreSQL captain repository.
func NewCaptainRepository(db *sql.DB) *CaptainRepository {
	return &CaptainRepository{q: db}
}

// GetByID retrieves a captain by ID.
func (r *CaptainRepository) GetByID(ctx context.Context, id string) (*domain.Captain, error) {
	query := `
		SELECT id, name, phone, total_earnings, total_rides, last_payment_date
		FROM captains WHERE id = $1
	`

	var captain domain.Captain
	var lastPayment sql.NullTime
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&captain.ID,
		&captain.Name,
		&captain.Phone,
		&captain.TotalEarnings,
		&captain.TotalRides,
		&lastPayment,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if lastPayment.Valid {
		captain.LastPaymentDate = lastPayment.Time
	}

	return &captain, nil
}

// IncrementStats atomically adds earnings and ride count to the captain's
// running totals and stamps the last payment date.
func (r *CaptainRepository) IncrementStats(ctx context.Context, id string, delta repository.StatsDelta) error {
	query := `
		UPDATE captains
		SET total_earnings = total_earnings + $1,
		    total_rides = total_rides + $2,
		    last_payment_date = NOW()
		WHERE id = $3
	`

	result, err := r.q.ExecContext(ctx, query, delta.Amount, delta.RidesDelta, id)
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
