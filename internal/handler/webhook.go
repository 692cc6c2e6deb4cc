package handler

import (
	"io"
	"net/http"

	"github.com/segyhp/rental-engine/internal/gateway"
	"github.com/segyhp/rental-engine/internal/logger"
	customError "github.com/segyhp/rental-engine/pkg/errors"
	"github.com/segyhp/rental-engine/pkg/response"
)

const maxWebhookBytes = int64(65536)

type WebhookHandler struct {
	bus    gateway.OutcomeBus
	secret string
}

func NewWebhookHandler(bus gateway.OutcomeBus, secret string) *WebhookHandler {
	return &WebhookHandler{
		bus:    bus,
		secret: secret,
	}
}

// Stripe handles POST /webhooks/stripe. Verified checkout outcomes are handed
// to whichever process is awaiting that booking's payment.
func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		response.Error(w, http.StatusServiceUnavailable, "Error reading body", err)
		return
	}

	eventID, outcome, ok, err := gateway.ParseWebhook(payload, r.Header.Get("Stripe-Signature"), h.secret)
	if err != nil {
		logger.Warn("Rejected stripe webhook", "error", err)
		response.BadRequest(w, "Invalid webhook", err)
		return
	}
	if !ok {
		logger.Debug("Ignoring stripe webhook", "event_id", eventID)
		w.WriteHeader(http.StatusOK)
		return
	}

	fresh, err := h.bus.Publish(r.Context(), eventID, outcome)
	if err != nil {
		response.FromError(w, customError.WrapCacheError(err))
		return
	}
	if !fresh {
		logger.Info("Duplicate stripe webhook", "event_id", eventID, "booking_id", outcome.Reference)
	} else {
		logger.Info("Payment outcome received",
			"event_id", eventID, "booking_id", outcome.Reference, "succeeded", outcome.Succeeded, "reason", outcome.Reason)
	}

	w.WriteHeader(http.StatusOK)
}
