package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrCancelled is returned when the customer or the gateway cancels the transaction.
	ErrCancelled = errors.New("payment cancelled")
	ErrDeclined  = errors.New("payment declined")
)

type ChargeRequest struct {
	// Reference is the booking id; it travels with the transaction and comes back in webhooks.
	Reference     string
	Amount        decimal.Decimal
	Currency      string
	PhoneNumber   string
	CustomerEmail string
	Description   string
	Metadata      map[string]string
}

type ChargeResult struct {
	Reference  string
	GatewayRef string
	SettledAt  time.Time
}

// PaymentGateway opens a transaction and blocks until it either settles or is cancelled.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}

// PaymentLinkSender hands the customer the link they must complete to pay.
type PaymentLinkSender interface {
	SendPaymentLink(ctx context.Context, phone, url string) error
}
