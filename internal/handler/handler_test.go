package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/segyhp/rental-engine/internal/domain"
	"github.com/segyhp/rental-engine/internal/gateway"
	"github.com/segyhp/rental-engine/internal/mocks"
	"github.com/segyhp/rental-engine/internal/validation"
	customError "github.com/segyhp/rental-engine/pkg/errors"
	"github.com/segyhp/rental-engine/pkg/response"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const webhookSecret = "whsec_test"

func newTestRouter(svc *mocks.MockBookingService, bus *mocks.MockOutcomeBus) *mux.Router {
	health := &HealthHandler{
		checks: map[string]Check{
			"database": func(ctx context.Context) error { return nil },
		},
		timeout: time.Second,
	}
	return NewRouter(
		NewBookingHandler(svc, validation.New()),
		NewWebhookHandler(bus, webhookSecret),
		health,
	)
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) response.ErrorResponse {
	t.Helper()
	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateBooking(t *testing.T) {
	svc := &mocks.MockBookingService{}
	router := newTestRouter(svc, &mocks.MockOutcomeBus{})

	svc.On("CreateBooking", mock.Anything, mock.MatchedBy(func(d domain.BookingDraft) bool {
		return d.CarID == "car-1" && d.PaymentMethod == domain.PaymentMethodCash
	})).Return(&domain.Booking{ID: "bk-1", Status: domain.BookingStatusConfirmed}, nil)

	rec := serve(router, http.MethodPost, "/api/v1/bookings",
		`{"car_id":"car-1","customer_id":"cust-1","driver_id":"drv-1","start_date":"2026-10-26T10:00:00Z","end_date":"2026-10-29T10:00:00Z","payment_method":"cash"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"bk-1"`)
	svc.AssertExpectations(t)
}

func TestCreateBooking_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", customError.WrapValidation([]string{"car is required"}), http.StatusBadRequest},
		{"settlement", customError.WrapSettlementFailure("bk-1", gateway.ErrCancelled), http.StatusPaymentRequired},
		{"unavailable", customError.WrapCarUnavailable("car-1"), http.StatusConflict},
		{"inconsistency", customError.WrapInconsistency("car-1", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mocks.MockBookingService{}
			svc.On("CreateBooking", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := serve(newTestRouter(svc, &mocks.MockOutcomeBus{}), http.MethodPost, "/api/v1/bookings", `{}`)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestCreateBooking_MalformedBody(t *testing.T) {
	svc := &mocks.MockBookingService{}

	rec := serve(newTestRouter(svc, &mocks.MockOutcomeBus{}), http.MethodPost, "/api/v1/bookings", `{"car_id":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestCancelBooking(t *testing.T) {
	svc := &mocks.MockBookingService{}
	router := newTestRouter(svc, &mocks.MockOutcomeBus{})

	svc.On("CancelBooking", mock.Anything, "bk-1", mock.MatchedBy(func(r domain.CancelBookingRequest) bool {
		return r.Reason == "customer request" && r.RefundAmount != nil && r.RefundAmount.Equal(decimal.NewFromInt(100))
	})).Return(
		&domain.Booking{ID: "bk-1", Status: domain.BookingStatusCancelled},
		&domain.RefundDecision{RefundAmount: decimal.NewFromInt(100), RefundPercentage: 18},
		nil,
	)

	rec := serve(router, http.MethodPost, "/api/v1/bookings/bk-1/cancel", `{"reason":"customer request","refund_amount":"100"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"refund_percentage":18`)
}

func TestCancelBooking_MissingReason(t *testing.T) {
	svc := &mocks.MockBookingService{}

	rec := serve(newTestRouter(svc, &mocks.MockOutcomeBus{}), http.MethodPost, "/api/v1/bookings/bk-1/cancel", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"reason is required"}, decodeError(t, rec).Errors)
	svc.AssertNotCalled(t, "CancelBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelBooking_Terminal(t *testing.T) {
	svc := &mocks.MockBookingService{}
	svc.On("CancelBooking", mock.Anything, "bk-1", mock.Anything).
		Return(nil, nil, customError.WrapIllegalTransition("bk-1", "completed", "cancelled"))

	rec := serve(newTestRouter(svc, &mocks.MockOutcomeBus{}), http.MethodPost, "/api/v1/bookings/bk-1/cancel", `{"reason":"oops"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, customError.ErrCodeIllegalTransition, decodeError(t, rec).Code)
}

func TestReturnBooking(t *testing.T) {
	svc := &mocks.MockBookingService{}
	returnedAt := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	svc.On("MarkReturned", mock.Anything, "bk-1", domain.ReturnBookingRequest{
		ReturnedAt:           returnedAt,
		PenaltyPaid:          true,
		PenaltyPaymentMethod: domain.PaymentMethodCash,
	}).Return(
		&domain.Booking{ID: "bk-1", Status: domain.BookingStatusCompleted},
		&domain.PenaltyCalculation{IsLate: true, LateDays: 2},
		nil,
	)

	rec := serve(newTestRouter(svc, &mocks.MockOutcomeBus{}), http.MethodPost, "/api/v1/bookings/bk-1/return",
		`{"returned_at":"2026-10-15T12:00:00Z","penalty_paid":true,"penalty_payment_method":"cash"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"late_days":2`)
}

func TestReturnBooking_RejectsSlipForPenalty(t *testing.T) {
	svc := &mocks.MockBookingService{}

	rec := serve(newTestRouter(svc, &mocks.MockOutcomeBus{}), http.MethodPost, "/api/v1/bookings/bk-1/return",
		`{"returned_at":"2026-10-15T12:00:00Z","penalty_paid":true,"penalty_payment_method":"pay_in_slip"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "MarkReturned", mock.Anything, mock.Anything, mock.Anything)
}

func TestSimpleTransitions(t *testing.T) {
	svc := &mocks.MockBookingService{}
	router := newTestRouter(svc, &mocks.MockOutcomeBus{})

	svc.On("ConfirmBooking", mock.Anything, "bk-1").Return(&domain.Booking{ID: "bk-1", Status: domain.BookingStatusConfirmed}, nil)
	svc.On("MarkNoShow", mock.Anything, "bk-2").Return(&domain.Booking{ID: "bk-2", Status: domain.BookingStatusNoShow}, nil)
	svc.On("GetBooking", mock.Anything, "missing").Return(nil, customError.WrapBookingNotFound("missing"))

	assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/api/v1/bookings/bk-1/confirm", "").Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/api/v1/bookings/bk-2/no-show", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/api/v1/bookings/missing", "").Code)
}

func TestQuotes(t *testing.T) {
	svc := &mocks.MockBookingService{}
	router := newTestRouter(svc, &mocks.MockOutcomeBus{})

	at := time.Date(2026, 10, 20, 8, 0, 0, 0, time.UTC)
	svc.On("Quote", mock.Anything, mock.MatchedBy(func(r domain.QuoteRequest) bool { return r.CarID == "car-1" })).
		Return(&domain.PriceBreakdown{Days: 3, Total: decimal.NewFromInt(540)}, nil)
	svc.On("RefundQuote", mock.Anything, "bk-1", at).
		Return(&domain.RefundDecision{RefundPercentage: 50}, nil)
	svc.On("PenaltyQuote", mock.Anything, "bk-1", time.Time{}).
		Return(&domain.PenaltyCalculation{}, nil)

	rec := serve(router, http.MethodPost, "/api/v1/quotes",
		`{"car_id":"car-1","start_date":"2026-10-26T10:00:00Z","end_date":"2026-10-29T10:00:00Z"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, http.MethodGet, "/api/v1/bookings/bk-1/refund-quote?at=2026-10-20T08:00:00Z", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, http.MethodGet, "/api/v1/bookings/bk-1/penalty-quote", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, http.MethodGet, "/api/v1/bookings/bk-1/penalty-quote?returned_at=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckAvailability(t *testing.T) {
	svc := &mocks.MockBookingService{}
	router := newTestRouter(svc, &mocks.MockOutcomeBus{})

	start := time.Date(2026, 10, 26, 10, 0, 0, 0, time.UTC)
	end := time.Date(2026, 10, 29, 10, 0, 0, 0, time.UTC)
	svc.On("CheckAvailability", mock.Anything, "car-1", start, end).Return(true, nil)

	rec := serve(router, http.MethodGet, "/api/v1/cars/car-1/availability?start=2026-10-26T10:00:00Z&end=2026-10-29T10:00:00Z", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"available":true`)

	rec = serve(router, http.MethodGet, "/api/v1/cars/car-1/availability?start=soon", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, decodeError(t, rec).Errors, 2)
}

func signedWebhook(t *testing.T, eventID, eventType, session string) *http.Request {
	t.Helper()
	payload := []byte(fmt.Sprintf(`{"id":%q,"object":"event","api_version":%q,"created":1792000000,"type":%q,"data":{"object":%s}}`,
		eventID, stripe.APIVersion, eventType, session))
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: webhookSecret})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(string(payload)))
	req.Header.Set("Stripe-Signature", signed.Header)
	return req
}

func TestStripeWebhook(t *testing.T) {
	bus := &mocks.MockOutcomeBus{}
	router := newTestRouter(&mocks.MockBookingService{}, bus)

	bus.On("Publish", mock.Anything, "evt_1", mock.MatchedBy(func(o gateway.Outcome) bool {
		return o.Reference == "bk-1" && o.Succeeded && o.GatewayRef == "pi_1"
	})).Return(true, nil).Once()
	bus.On("Publish", mock.Anything, "evt_1", mock.Anything).Return(false, nil).Once()

	session := `{"id":"cs_1","object":"checkout.session","client_reference_id":"bk-1","payment_status":"paid","payment_intent":"pi_1"}`

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, signedWebhook(t, "evt_1", "checkout.session.completed", session))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	bus.AssertExpectations(t)
}

func TestStripeWebhook_Rejections(t *testing.T) {
	bus := &mocks.MockOutcomeBus{}
	router := newTestRouter(&mocks.MockBookingService{}, bus)

	req := signedWebhook(t, "evt_2", "checkout.session.completed", `{"id":"cs_1","client_reference_id":"bk-1","payment_status":"paid"}`)
	req.Header.Set("Stripe-Signature", "t=1,v1=forged")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, signedWebhook(t, "evt_3", "invoice.paid", `{"id":"in_1","object":"invoice"}`))
	assert.Equal(t, http.StatusOK, rec.Code)

	bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestStripeWebhook_PublishFails(t *testing.T) {
	bus := &mocks.MockOutcomeBus{}
	bus.On("Publish", mock.Anything, "evt_4", mock.Anything).Return(false, errors.New("redis down"))
	router := newTestRouter(&mocks.MockBookingService{}, bus)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, signedWebhook(t, "evt_4", "checkout.session.expired", `{"id":"cs_4","object":"checkout.session","client_reference_id":"bk-4"}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := serve(newTestRouter(&mocks.MockBookingService{}, &mocks.MockOutcomeBus{}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReady(t *testing.T) {
	h := &HealthHandler{
		checks: map[string]Check{
			"database": func(ctx context.Context) error { return nil },
			"redis":    func(ctx context.Context) error { return errors.New("connection refused") },
		},
		timeout: time.Second,
	}

	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}
