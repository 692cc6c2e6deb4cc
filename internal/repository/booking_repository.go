package repository

import (
	"context"
	"time"

	"github.com/segyhp/rental-engine/internal/domain"

	"github.com/jmoiron/sqlx"
)

const bookingColumns = `id, customer_id, driver_id, guarantor_id, car_id, daily_rate, start_date, end_date,
		total_amount, amount_paid, payment_method, payment_status, payment_reference, payment_details,
		refund_amount, refund_reason, penalty_amount, penalty_payment_method, receipt_number, actual_return_at,
		status, self_drive, has_driver, insurance_coverage, pickup_location, dropoff_location,
		created_at, updated_at, cancelled_at, completed_at`

type bookingRepository struct {
	db sqlx.ExtContext
}

// NewBookingRepository accepts either *sqlx.DB or *sqlx.Tx.
func NewBookingRepository(db sqlx.ExtContext) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES (:id, :customer_id, :driver_id, :guarantor_id, :car_id, :daily_rate, :start_date, :end_date,
		        :total_amount, :amount_paid, :payment_method, :payment_status, :payment_reference, :payment_details,
		        :refund_amount, :refund_reason, :penalty_amount, :penalty_payment_method, :receipt_number, :actual_return_at,
		        :status, :self_drive, :has_driver, :insurance_coverage, :pickup_location, :dropoff_location,
		        :created_at, :updated_at, :cancelled_at, :completed_at)
	`

	_, err := sqlx.NamedExecContext(ctx, r.db, query, booking)
	return err
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var booking domain.Booking
	if err := sqlx.GetContext(ctx, r.db, &booking, query, id); err != nil {
		return nil, err
	}

	return &booking, nil
}

func (r *bookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	query := `
		UPDATE bookings
		SET status = :status,
		    amount_paid = :amount_paid,
		    payment_status = :payment_status,
		    payment_reference = :payment_reference,
		    refund_amount = :refund_amount,
		    refund_reason = :refund_reason,
		    penalty_amount = :penalty_amount,
		    penalty_payment_method = :penalty_payment_method,
		    receipt_number = :receipt_number,
		    actual_return_at = :actual_return_at,
		    cancelled_at = :cancelled_at,
		    completed_at = :completed_at,
		    updated_at = :updated_at
		WHERE id = :id
	`

	res, err := sqlx.NamedExecContext(ctx, r.db, query, booking)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (r *bookingRepository) HasOverlap(ctx context.Context, carID string, start, end time.Time, excludeID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE car_id = $1
			  AND status IN ('pending', 'confirmed')
			  AND start_date < $3
			  AND end_date > $2
			  AND id <> $4
		)
	`

	var exists bool
	err := sqlx.GetContext(ctx, r.db, &exists, query, carID, start, end, excludeID)
	return exists, err
}

func (r *bookingRepository) HasOtherActive(ctx context.Context, carID, excludeID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE car_id = $1
			  AND status IN ('pending', 'confirmed')
			  AND id <> $2
		)
	`

	var exists bool
	err := sqlx.GetContext(ctx, r.db, &exists, query, carID, excludeID)
	return exists, err
}

func (r *bookingRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = 'confirmed' AND end_date < $1
		ORDER BY end_date
	`

	var bookings []*domain.Booking
	if err := sqlx.SelectContext(ctx, r.db, &bookings, query, asOf); err != nil {
		return nil, err
	}

	return bookings, nil
}
