package mocks

import (
	"context"
	"time"

	"github.com/segyhp/rental-engine/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) CreateBooking(ctx context.Context, draft domain.BookingDraft) (*domain.Booking, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) ConfirmBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) CancelBooking(ctx context.Context, bookingID string, request domain.CancelBookingRequest) (*domain.Booking, *domain.RefundDecision, error) {
	args := m.Called(ctx, bookingID, request)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Booking), args.Get(1).(*domain.RefundDecision), args.Error(2)
}

func (m *MockBookingService) MarkReturned(ctx context.Context, bookingID string, request domain.ReturnBookingRequest) (*domain.Booking, *domain.PenaltyCalculation, error) {
	args := m.Called(ctx, bookingID, request)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Booking), args.Get(1).(*domain.PenaltyCalculation), args.Error(2)
}

func (m *MockBookingService) MarkNoShow(ctx context.Context, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingService) Quote(ctx context.Context, request domain.QuoteRequest) (*domain.PriceBreakdown, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PriceBreakdown), args.Error(1)
}

func (m *MockBookingService) RefundQuote(ctx context.Context, bookingID string, at time.Time) (*domain.RefundDecision, error) {
	args := m.Called(ctx, bookingID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefundDecision), args.Error(1)
}

func (m *MockBookingService) PenaltyQuote(ctx context.Context, bookingID string, returnedAt time.Time) (*domain.PenaltyCalculation, error) {
	args := m.Called(ctx, bookingID, returnedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PenaltyCalculation), args.Error(1)
}

func (m *MockBookingService) CheckAvailability(ctx context.Context, carID string, start, end time.Time) (bool, error) {
	args := m.Called(ctx, carID, start, end)
	return args.Bool(0), args.Error(1)
}
