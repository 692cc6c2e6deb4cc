package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/segyhp/rental-engine/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func bookingRow(mock sqlmock.Sqlmock, id string) *sqlmock.Rows {
	start := time.Date(2026, 11, 1, 10, 0, 0, 0, time.UTC)
	end := time.Date(2026, 11, 4, 10, 0, 0, 0, time.UTC)
	return mock.NewRows([]string{
		"id", "customer_id", "driver_id", "guarantor_id", "car_id", "daily_rate", "start_date", "end_date",
		"total_amount", "amount_paid", "payment_method", "payment_status", "payment_reference", "payment_details",
		"refund_amount", "refund_reason", "penalty_amount", "penalty_payment_method", "receipt_number", "actual_return_at",
		"status", "self_drive", "has_driver", "insurance_coverage", "pickup_location", "dropoff_location",
		"created_at", "updated_at", "cancelled_at", "completed_at",
	}).AddRow(
		id, "cust-1", "", "", "car-1", "120.00", start, end,
		"540.00", "540.00", "mobile_money", "paid", "cs_test_1", []byte(`{"mobile_money":{"phone_number":"0241234567"}}`),
		"0", "", "0", "", "", nil,
		"confirmed", false, true, true, "Accra", "Kumasi",
		start, start, nil, nil,
	)
}

func TestBookingRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = $1")).
		WithArgs("bk-1").
		WillReturnRows(bookingRow(mock, "bk-1"))

	booking, err := repo.GetByID(context.Background(), "bk-1")
	require.NoError(t, err)

	assert.Equal(t, "bk-1", booking.ID)
	assert.Equal(t, domain.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, domain.PaymentMethodMobileMoney, booking.PaymentMethod)
	assert.True(t, booking.TotalAmount.Equal(decimal.NewFromInt(540)))
	require.NotNil(t, booking.PaymentDetails.MobileMoney)
	assert.Equal(t, "0241234567", booking.PaymentDetails.MobileMoney.PhoneNumber)
	assert.Nil(t, booking.ActualReturnAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	booking, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, booking)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestBookingRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	booking := &domain.Booking{
		ID:            "bk-2",
		CustomerID:    "cust-1",
		CarID:         "car-1",
		DailyRate:     decimal.NewFromInt(120),
		TotalAmount:   decimal.NewFromInt(360),
		PaymentMethod: domain.PaymentMethodCash,
		PaymentStatus: domain.PaymentStatusPaid,
		Status:        domain.BookingStatusPending,
	}

	require.NoError(t, repo.Create(context.Background(), booking))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_Update_NoRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &domain.Booking{ID: "gone"})
	assert.ErrorIs(t, err, ErrNoRowsAffected)
}

func TestBookingRepository_HasOverlap(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	start := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 3)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("car-1", start, end, "").
		WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(true))

	overlap, err := repo.HasOverlap(context.Background(), "car-1", start, end, "")
	require.NoError(t, err)
	assert.True(t, overlap)
}

func TestBookingRepository_ListOverdue(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBookingRepository(db)

	asOf := time.Date(2026, 11, 5, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = 'confirmed' AND end_date < $1")).
		WithArgs(asOf).
		WillReturnRows(bookingRow(mock, "bk-late"))

	bookings, err := repo.ListOverdue(context.Background(), asOf)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "bk-late", bookings[0].ID)
}

func TestCarRepository_UpdateStatus(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "one row", affected: 1},
		{name: "missing car", affected: 0, wantErr: ErrNoRowsAffected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewCarRepository(db)

			mock.ExpectExec(regexp.QuoteMeta("UPDATE cars SET status = $2")).
				WithArgs("car-1", domain.CarStatusRented).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := repo.UpdateStatus(context.Background(), "car-1", domain.CarStatusRented)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCustomerRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCustomerRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM customers WHERE id = $1")).
		WithArgs("cust-1").
		WillReturnRows(mock.NewRows([]string{"id", "name", "email", "phone"}).
			AddRow("cust-1", "Ama Mensah", "ama@example.com", "+233241234567"))

	customer, err := repo.GetByID(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Equal(t, "Ama Mensah", customer.Name)
}

func TestTransactor_CommitsOnSuccess(t *testing.T) {
	db, mock := newMockDB(t)
	tx := NewTransactor(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE cars")).
		WithArgs("car-1", domain.CarStatusRented).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := tx.WithinTx(context.Background(), func(store Store) error {
		return store.Cars().UpdateStatus(context.Background(), "car-1", domain.CarStatusRented)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	tx := NewTransactor(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE cars")).
		WithArgs("car-1", domain.CarStatusRented).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := tx.WithinTx(context.Background(), func(store Store) error {
		if err := store.Bookings().Update(context.Background(), &domain.Booking{ID: "bk-1"}); err != nil {
			return err
		}
		return store.Cars().UpdateStatus(context.Background(), "car-1", domain.CarStatusRented)
	})
	assert.ErrorIs(t, err, ErrNoRowsAffected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS cars")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS bookings")
}
