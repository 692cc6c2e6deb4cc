package repository

import (
	"context"
	"errors"
	"time"

	"github.com/segyhp/rental-engine/internal/domain"
)

// ErrNoRowsAffected is returned when an update matched nothing.
var ErrNoRowsAffected = errors.New("no rows affected")

// BookingRepository defines the interface for booking data operations
type BookingRepository interface {
	// Create persists a new booking
	Create(ctx context.Context, booking *domain.Booking) error

	// GetByID retrieves a booking by its id
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// Update writes status, payment, refund and return fields of a booking
	Update(ctx context.Context, booking *domain.Booking) error

	// HasOverlap reports whether an active booking for the car overlaps [start, end)
	HasOverlap(ctx context.Context, carID string, start, end time.Time, excludeID string) (bool, error)

	// HasOtherActive reports whether any other active booking still holds the car
	HasOtherActive(ctx context.Context, carID, excludeID string) (bool, error)

	// ListOverdue returns confirmed bookings whose end date is before asOf
	ListOverdue(ctx context.Context, asOf time.Time) ([]*domain.Booking, error)
}

// CarRepository defines the interface for fleet data operations
type CarRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Car, error)

	// UpdateStatus returns ErrNoRowsAffected when the car does not exist
	UpdateStatus(ctx context.Context, id string, status domain.CarStatus) error
}

type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
}

// Store groups the repositories that must change together.
type Store interface {
	Bookings() BookingRepository
	Cars() CarRepository
}

// Transactor runs fn against a Store bound to a single database transaction.
// The transaction commits only if fn returns nil.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(store Store) error) error
}
