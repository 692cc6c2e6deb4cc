package repository

import (
	"context"
	"database/sql"

	"github.com/segyhp/rental-engine/internal/domain"

	"github.com/jmoiron/sqlx"
)

type carRepository struct {
	db sqlx.ExtContext
}

func NewCarRepository(db sqlx.ExtContext) CarRepository {
	return &carRepository{db: db}
}

func (r *carRepository) GetByID(ctx context.Context, id string) (*domain.Car, error) {
	query := `SELECT id, plate, model, daily_rate, status, updated_at FROM cars WHERE id = $1`

	var car domain.Car
	if err := sqlx.GetContext(ctx, r.db, &car, query, id); err != nil {
		return nil, err
	}

	return &car, nil
}

func (r *carRepository) UpdateStatus(ctx context.Context, id string, status domain.CarStatus) error {
	query := `UPDATE cars SET status = $2, updated_at = NOW() WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

type customerRepository struct {
	db sqlx.ExtContext
}

func NewCustomerRepository(db sqlx.ExtContext) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	query := `SELECT id, name, email, phone FROM customers WHERE id = $1`

	var customer domain.Customer
	if err := sqlx.GetContext(ctx, r.db, &customer, query, id); err != nil {
		return nil, err
	}

	return &customer, nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
