package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/segyhp/rental-engine/internal/domain"
	"github.com/segyhp/rental-engine/internal/validation"
	customError "github.com/segyhp/rental-engine/pkg/errors"
	"github.com/segyhp/rental-engine/pkg/response"

	"github.com/gorilla/mux"
)

// BookingService is the booking lifecycle as seen by the HTTP layer.
type BookingService interface {
	CreateBooking(ctx context.Context, draft domain.BookingDraft) (*domain.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error)
	ConfirmBooking(ctx context.Context, bookingID string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, bookingID string, request domain.CancelBookingRequest) (*domain.Booking, *domain.RefundDecision, error)
	MarkReturned(ctx context.Context, bookingID string, request domain.ReturnBookingRequest) (*domain.Booking, *domain.PenaltyCalculation, error)
	MarkNoShow(ctx context.Context, bookingID string) (*domain.Booking, error)
	Quote(ctx context.Context, request domain.QuoteRequest) (*domain.PriceBreakdown, error)
	RefundQuote(ctx context.Context, bookingID string, at time.Time) (*domain.RefundDecision, error)
	PenaltyQuote(ctx context.Context, bookingID string, returnedAt time.Time) (*domain.PenaltyCalculation, error)
	CheckAvailability(ctx context.Context, carID string, start, end time.Time) (bool, error)
}

type BookingHandler struct {
	service   BookingService
	validator *validation.Validator
}

func NewBookingHandler(service BookingService, validator *validation.Validator) *BookingHandler {
	return &BookingHandler{
		service:   service,
		validator: validator,
	}
}

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var draft domain.BookingDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), draft)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, booking)
}

// GetBooking handles GET /api/v1/bookings/{bookingId}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.service.GetBooking(r.Context(), mux.Vars(r)["bookingId"])
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, booking)
}

// ConfirmBooking handles POST /api/v1/bookings/{bookingId}/confirm
func (h *BookingHandler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.service.ConfirmBooking(r.Context(), mux.Vars(r)["bookingId"])
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, booking)
}

// CancelBooking handles POST /api/v1/bookings/{bookingId}/cancel
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	var request domain.CancelBookingRequest
	if !h.decode(w, r, &request) {
		return
	}

	booking, refund, err := h.service.CancelBooking(r.Context(), mux.Vars(r)["bookingId"], request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, domain.CancelBookingResponse{Booking: booking, Refund: refund})
}

// ReturnBooking handles POST /api/v1/bookings/{bookingId}/return
func (h *BookingHandler) ReturnBooking(w http.ResponseWriter, r *http.Request) {
	var request domain.ReturnBookingRequest
	if !h.decode(w, r, &request) {
		return
	}

	booking, penalty, err := h.service.MarkReturned(r.Context(), mux.Vars(r)["bookingId"], request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, domain.ReturnBookingResponse{Booking: booking, Penalty: penalty})
}

// MarkNoShow handles POST /api/v1/bookings/{bookingId}/no-show
func (h *BookingHandler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	booking, err := h.service.MarkNoShow(r.Context(), mux.Vars(r)["bookingId"])
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, booking)
}

// Quote handles POST /api/v1/quotes
func (h *BookingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var request domain.QuoteRequest
	if !h.decode(w, r, &request) {
		return
	}

	breakdown, err := h.service.Quote(r.Context(), request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, breakdown)
}

// RefundQuote handles GET /api/v1/bookings/{bookingId}/refund-quote?at=
func (h *BookingHandler) RefundQuote(w http.ResponseWriter, r *http.Request) {
	at, ok := optionalTime(w, r, "at")
	if !ok {
		return
	}

	decision, err := h.service.RefundQuote(r.Context(), mux.Vars(r)["bookingId"], at)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, decision)
}

// PenaltyQuote handles GET /api/v1/bookings/{bookingId}/penalty-quote?returned_at=
func (h *BookingHandler) PenaltyQuote(w http.ResponseWriter, r *http.Request) {
	returnedAt, ok := optionalTime(w, r, "returned_at")
	if !ok {
		return
	}

	penalty, err := h.service.PenaltyQuote(r.Context(), mux.Vars(r)["bookingId"], returnedAt)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, penalty)
}

// CheckAvailability handles GET /api/v1/cars/{carId}/availability?start=&end=
func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	carID := mux.Vars(r)["carId"]

	var violations []string
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		violations = append(violations, "start must be an RFC3339 timestamp")
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		violations = append(violations, "end must be an RFC3339 timestamp")
	}
	if len(violations) > 0 {
		response.ValidationFailed(w, violations)
		return
	}

	available, err := h.service.CheckAvailability(r.Context(), carID, start, end)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, domain.AvailabilityResponse{CarID: carID, Available: available})
}

// decode reads a JSON body into dst and runs its struct tags.
func (h *BookingHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return false
	}

	if violations := h.validator.Struct(dst); len(violations) > 0 {
		response.FromError(w, customError.WrapValidation(violations))
		return false
	}
	return true
}

func optionalTime(w http.ResponseWriter, r *http.Request, param string) (time.Time, bool) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return time.Time{}, true
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		response.ValidationFailed(w, []string{param + " must be an RFC3339 timestamp"})
		return time.Time{}, false
	}
	return t, true
}
