package mocks

import (
	"context"

	"github.com/segyhp/rental-engine/internal/domain"
	"github.com/segyhp/rental-engine/internal/gateway"

	"github.com/stretchr/testify/mock"
)

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) Charge(ctx context.Context, req gateway.ChargeRequest) (gateway.ChargeResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(gateway.ChargeResult), args.Error(1)
}

type MockOutcomeBus struct {
	mock.Mock
}

func (m *MockOutcomeBus) Await(ctx context.Context, reference string) (gateway.Outcome, error) {
	args := m.Called(ctx, reference)
	return args.Get(0).(gateway.Outcome), args.Error(1)
}

func (m *MockOutcomeBus) Publish(ctx context.Context, eventID string, outcome gateway.Outcome) (bool, error) {
	args := m.Called(ctx, eventID, outcome)
	return args.Bool(0), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendConfirmation(ctx context.Context, booking *domain.Booking) {
	m.Called(ctx, booking)
}

func (m *MockNotifier) SendReceiptEmail(ctx context.Context, bookingID string) {
	m.Called(ctx, bookingID)
}

func (m *MockNotifier) SendReceiptSMS(ctx context.Context, bookingID string) {
	m.Called(ctx, bookingID)
}

func (m *MockNotifier) SendOverdueReminder(ctx context.Context, booking *domain.Booking, penalty domain.PenaltyCalculation) {
	m.Called(ctx, booking, penalty)
}

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(ctx context.Context, toName, toEmail, subject, plainText, html string) error {
	args := m.Called(ctx, toName, toEmail, subject, plainText, html)
	return args.Error(0)
}

type MockSMSSender struct {
	mock.Mock
}

func (m *MockSMSSender) SendSMS(ctx context.Context, to, body string) error {
	args := m.Called(ctx, to, body)
	return args.Error(0)
}
