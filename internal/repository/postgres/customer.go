package postgres

import (
	"context"
	"database/sql"
	"errors"

	"settlement/internal/domain"
	"settlement/internal/repository"
)

// CustomerRepository is a PostgreSQL implementation of repository.CustomerRepository.
type CustomerRepository struct {
	q Querier
}

// NewCustomerRepository creates a new PostgreSQL customer repository.
func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{q: db}
}

// GetByID retrieves a customer by ID.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	query := `
		SELECT id, name, phone, total_spent, total_rides, created_at
		FROM customers WHERE id = $1
	`

	var customer domain.Customer
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&customer.ID,
		&customer.Name,
		&customer.Phone,
		&customer.TotalSpent,
		&customer.TotalRides,
		&customer.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &customer, nil
}

// IncrementStats atomically adds spend and ride count to the customer's
// running totals.
func (r *CustomerRepository) IncrementStats(ctx context.Context, id string, delta repository.StatsDelta) error {
	query := `
		UPDATE customers
		SET total_spent = total_spent + $1,
		    total_rides = total_rides + $2
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
