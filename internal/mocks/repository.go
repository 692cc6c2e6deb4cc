package mocks

import (
	"context"
	"time"

	"github.com/segyhp/rental-engine/internal/domain"
	"github.com/segyhp/rental-engine/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) HasOverlap(ctx context.Context, carID string, start, end time.Time, excludeID string) (bool, error) {
	args := m.Called(ctx, carID, start, end, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) HasOtherActive(ctx context.Context, carID, excludeID string) (bool, error) {
	args := m.Called(ctx, carID, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]*domain.Booking, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

type MockCarRepository struct {
	mock.Mock
}

func (m *MockCarRepository) GetByID(ctx context.Context, id string) (*domain.Car, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Car), args.Error(1)
}

func (m *MockCarRepository) UpdateStatus(ctx context.Context, id string, status domain.CarStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

// MockStore hands out the same repository mocks inside and outside a transaction.
type MockStore struct {
	BookingRepo *MockBookingRepository
	CarRepo     *MockCarRepository
}

func (s *MockStore) Bookings() repository.BookingRepository { return s.BookingRepo }
func (s *MockStore) Cars() repository.CarRepository         { return s.CarRepo }

// MockTransactor runs fn directly against Store. RolledBack records whether fn failed.
type MockTransactor struct {
	Store      *MockStore
	Calls      int
	RolledBack bool
}

func (t *MockTransactor) WithinTx(ctx context.Context, fn func(store repository.Store) error) error {
	t.Calls++
	if err := fn(t.Store); err != nil {
		t.RolledBack = true
		return err
	}
	return nil
}

// NewMockStore creates a store backed by fresh repository mocks
func NewMockStore() *MockStore {
	return &MockStore{
		BookingRepo: &MockBookingRepository{},
		CarRepo:     &MockCarRepository{},
	}
}
