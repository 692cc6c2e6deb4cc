package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segyhp/rental-engine/internal/domain"
	"github.com/segyhp/rental-engine/internal/gateway"
	"github.com/segyhp/rental-engine/internal/logger"
	customError "github.com/segyhp/rental-engine/pkg/errors"
	"github.com/segyhp/rental-engine/pkg/utils"
)

// Settler applies the payment-method specific settlement rules to a new booking.
type Settler struct {
	gateway  gateway.PaymentGateway
	currency string
}

func NewSettler(gw gateway.PaymentGateway, currency string) *Settler {
	return &Settler{gateway: gw, currency: currency}
}

// Settle fills in the payment fields of booking. For mobile money it blocks
// until the gateway reports an outcome; any failure leaves booking untouched.
func (s *Settler) Settle(ctx context.Context, booking *domain.Booking) error {
	switch booking.PaymentMethod {
	case domain.PaymentMethodCash, domain.PaymentMethodPayInSlip:
		// Collected in person or verified by staff later.
		booking.PaymentStatus = domain.PaymentStatusPending
		booking.AmountPaid = utils.RoundMoney(booking.AmountPaid)
		return nil

	case domain.PaymentMethodMobileMoney:
		return s.settleMobileMoney(ctx, booking)

	default:
		return customError.WrapValidation([]string{fmt.Sprintf("unsupported payment method %q", booking.PaymentMethod)})
	}
}

func (s *Settler) settleMobileMoney(ctx context.Context, booking *domain.Booking) error {
	if s.gateway == nil {
		return customError.WrapSettlementFailure(booking.ID, errors.New("no payment gateway configured"))
	}

	var phone string
	if booking.PaymentDetails.MobileMoney != nil {
		phone = booking.PaymentDetails.MobileMoney.PhoneNumber
	}

	req := gateway.ChargeRequest{
		Reference:   booking.ID,
		Amount:      utils.RoundMoney(booking.TotalAmount),
		Currency:    s.currency,
		PhoneNumber: phone,
		Description: fmt.Sprintf("Car rental %s", booking.ID),
		Metadata: map[string]string{
			"car_id":      booking.CarID,
			"customer_id": booking.CustomerID,
			"start_date":  booking.StartDate.Format(time.RFC3339),
			"end_date":    booking.EndDate.Format(time.RFC3339),
		},
	}

	logger.Info("Awaiting mobile money payment", "booking_id", booking.ID, "amount", req.Amount.StringFixed(2), "currency", s.currency)

	result, err := s.gateway.Charge(ctx, req)
	if err != nil {
		logger.Warn("Mobile money payment did not settle", "booking_id", booking.ID, "error", err)
		return customError.WrapSettlementFailure(booking.ID, err)
	}

	booking.PaymentStatus = domain.PaymentStatusPaid
	booking.AmountPaid = utils.RoundMoney(booking.TotalAmount)
	booking.PaymentReference = result.GatewayRef

	return nil
}
