package notify

import (
	"context"
	"sync"
	"time"

	"github.com/segyhp/rental-engine/internal/domain"
	"github.com/segyhp/rental-engine/internal/logger"
	"github.com/segyhp/rental-engine/internal/repository"
)

// Notifier delivers customer messages in the background. Failures are logged, never returned.
type Notifier interface {
	SendConfirmation(ctx context.Context, booking *domain.Booking)
	SendReceiptEmail(ctx context.Context, bookingID string)
	SendReceiptSMS(ctx context.Context, bookingID string)
	SendOverdueReminder(ctx context.Context, booking *domain.Booking, penalty domain.PenaltyCalculation)
}

type EmailSender interface {
	SendEmail(ctx context.Context, toName, toEmail, subject, plainText, html string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

const sendTimeout = 30 * time.Second

type Service struct {
	bookings  repository.BookingRepository
	customers repository.CustomerRepository
	email     EmailSender
	sms       SMSSender
	loc       *time.Location
	currency  string

	wg sync.WaitGroup
}

func NewService(
	bookings repository.BookingRepository,
	customers repository.CustomerRepository,
	email EmailSender,
	sms SMSSender,
	loc *time.Location,
	currency string,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		bookings:  bookings,
		customers: customers,
		email:     email,
		sms:       sms,
		loc:       loc,
		currency:  currency,
	}
}

// Wait blocks until every queued message has been attempted.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) SendConfirmation(ctx context.Context, booking *domain.Booking) {
	snapshot := *booking
	s.dispatch(ctx, "confirmation", snapshot.ID, func(ctx context.Context) error {
		customer, err := s.customers.GetByID(ctx, snapshot.CustomerID)
		if err != nil {
			return err
		}
		msg := confirmationMessage(&snapshot, customer, s.loc, s.currency)
		if err := s.sendEmail(ctx, customer, msg); err != nil {
			return err
		}
		return s.sendSMS(ctx, customer, msg.sms)
	})
}

func (s *Service) SendReceiptEmail(ctx context.Context, bookingID string) {
	s.dispatch(ctx, "receipt_email", bookingID, func(ctx context.Context) error {
		booking, customer, err := s.load(ctx, bookingID)
		if err != nil {
			return err
		}
		return s.sendEmail(ctx, customer, receiptMessage(booking, customer, s.loc, s.currency))
	})
}

func (s *Service) SendReceiptSMS(ctx context.Context, bookingID string) {
	s.dispatch(ctx, "receipt_sms", bookingID, func(ctx context.Context) error {
		booking, customer, err := s.load(ctx, bookingID)
		if err != nil {
			return err
		}
		return s.sendSMS(ctx, customer, receiptMessage(booking, customer, s.loc, s.currency).sms)
	})
}

func (s *Service) SendOverdueReminder(ctx context.Context, booking *domain.Booking, penalty domain.PenaltyCalculation) {
	snapshot := *booking
	s.dispatch(ctx, "overdue_reminder", snapshot.ID, func(ctx context.Context) error {
		customer, err := s.customers.GetByID(ctx, snapshot.CustomerID)
		if err != nil {
			return err
		}
		return s.sendSMS(ctx, customer, overdueSMS(&snapshot, penalty, s.loc, s.currency))
	})
}

func (s *Service) dispatch(ctx context.Context, kind, bookingID string, send func(ctx context.Context) error) {
	// Delivery outlives the request that triggered it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		if err := send(ctx); err != nil {
			logger.Error("Failed to send notification", "kind", kind, "booking_id", bookingID, "error", err)
			return
		}
		logger.Debug("Notification sent", "kind", kind, "booking_id", bookingID)
	}()
}

func (s *Service) load(ctx context.Context, bookingID string) (*domain.Booking, *domain.Customer, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	customer, err := s.customers.GetByID(ctx, booking.CustomerID)
	if err != nil {
		return nil, nil, err
	}
	return booking, customer, nil
}

func (s *Service) sendEmail(ctx context.Context, customer *domain.Customer, msg message) error {
	if s.email == nil || customer.Email == "" {
		return nil
	}
	return s.email.SendEmail(ctx, customer.Name, customer.Email, msg.subject, msg.plain, msg.html)
}

func (s *Service) sendSMS(ctx context.Context, customer *domain.Customer, body string) error {
	if s.sms == nil || customer.Phone == "" {
		return nil
	}
	return s.sms.SendSMS(ctx, customer.Phone, body)
}
