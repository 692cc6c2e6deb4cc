package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segyhp/rental-engine/internal/logger"
	"github.com/segyhp/rental-engine/pkg/utils"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// SessionCreator matches session.New so tests can stand in for Stripe.
type SessionCreator func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)

type StripeConfig struct {
	SecretKey    string
	SuccessURL   string
	CancelURL    string
	AwaitTimeout time.Duration
}

type StripeGateway struct {
	cfg      StripeConfig
	sessions SessionCreator
	bus      OutcomeBus
	links    PaymentLinkSender
	now      func() time.Time
}

func NewStripeGateway(cfg StripeConfig, bus OutcomeBus, links PaymentLinkSender) *StripeGateway {
	stripe.Key = cfg.SecretKey
	return &StripeGateway{
		cfg:      cfg,
		sessions: session.New,
		bus:      bus,
		links:    links,
		now:      time.Now,
	}
}

// WithSessionCreator replaces the Stripe API call.
func (g *StripeGateway) WithSessionCreator(fn SessionCreator) *StripeGateway {
	g.sessions = fn
	return g
}

func (g *StripeGateway) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	if g.cfg.AwaitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.AwaitTimeout)
		defer cancel()
	}

	params := &stripe.CheckoutSessionParams{
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(req.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
					UnitAmount: stripe.Int64(utils.ToMinorUnits(req.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(req.Reference),
		SuccessURL:        stripe.String(g.cfg.SuccessURL),
		CancelURL:         stripe.String(g.cfg.CancelURL),
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.Context = ctx
	params.AddMetadata("booking_id", req.Reference)
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	logger.ExternalServiceCall("stripe", "create_checkout_session", "reference", req.Reference)
	sess, err := g.sessions(params)
	logger.ExternalServiceResult("stripe", "create_checkout_session", err, "reference", req.Reference)
	if err != nil {
		return ChargeResult{}, fmt.Errorf("create checkout session: %w", err)
	}

	if g.links != nil && req.PhoneNumber != "" && sess.URL != "" {
		if err := g.links.SendPaymentLink(ctx, req.PhoneNumber, sess.URL); err != nil {
			logger.Warn("Failed to send payment link", "reference", req.Reference, "error", err)
		}
	}

	outcome, err := g.bus.Await(ctx, req.Reference)
	if err != nil {
		return ChargeResult{}, err
	}
	if !outcome.Succeeded {
		if outcome.Reason == "expired" {
			return ChargeResult{}, fmt.Errorf("%w: checkout session %s expired", ErrCancelled, sess.ID)
		}
		return ChargeResult{}, fmt.Errorf("%w: %s", ErrDeclined, outcome.Reason)
	}

	gatewayRef := outcome.GatewayRef
	if gatewayRef == "" {
		gatewayRef = sess.ID
	}
	settledAt := outcome.At
	if settledAt.IsZero() {
		settledAt = g.now()
	}

	return ChargeResult{
		Reference:  req.Reference,
		GatewayRef: gatewayRef,
		SettledAt:  settledAt,
	}, nil
}

// ParseWebhook verifies a Stripe webhook and maps checkout events onto an Outcome.
// ok is false for event types that do not settle a transaction.
func ParseWebhook(payload []byte, signature, secret string) (eventID string, outcome Outcome, ok bool, err error) {
	event, err := webhook.ConstructEvent(payload, signature, secret)
	if err != nil {
		return "", Outcome{}, false, fmt.Errorf("verify webhook signature: %w", err)
	}

	var succeeded bool
	var reason string
	switch event.Type {
	case "checkout.session.completed":
		// Asynchronous methods complete with payment_status "unpaid" and settle later.
		succeeded = true
	case "checkout.session.async_payment_succeeded":
		succeeded = true
	case "checkout.session.async_payment_failed":
		reason = "async payment failed"
	case "checkout.session.expired":
		reason = "expired"
	default:
		return event.ID, Outcome{}, false, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return "", Outcome{}, false, fmt.Errorf("decode checkout session: %w", err)
	}
	if event.Type == "checkout.session.completed" && sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
		return event.ID, Outcome{}, false, nil
	}

	reference := sess.ClientReferenceID
	if reference == "" {
		reference = sess.Metadata["booking_id"]
	}
	if reference == "" {
		return "", Outcome{}, false, fmt.Errorf("checkout session %s carries no booking reference", sess.ID)
	}

	gatewayRef := sess.ID
	if sess.PaymentIntent != nil && sess.PaymentIntent.ID != "" {
		gatewayRef = sess.PaymentIntent.ID
	}

	return event.ID, Outcome{
		Reference:  reference,
		GatewayRef: gatewayRef,
		Succeeded:  succeeded,
		Reason:     reason,
		At:         time.Unix(event.Created, 0).UTC(),
	}, true, nil
}
