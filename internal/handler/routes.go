package handler

import (
	"net/http"

	"github.com/gorilla/mux"
)

func NewRouter(bookings *BookingHandler, webhooks *WebhookHandler, health *HealthHandler) *mux.Router {
	router := mux.NewRouter()

	// Health check
	router.HandleFunc("/health", health.Health).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", health.Ready).Methods(http.MethodGet)

	router.HandleFunc("/webhooks/stripe", webhooks.Stripe).Methods(http.MethodPost)

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/quotes", bookings.Quote).Methods(http.MethodPost)
	api.HandleFunc("/cars/{carId}/availability", bookings.CheckAvailability).Methods(http.MethodGet)

	api.HandleFunc("/bookings", bookings.CreateBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{bookingId}", bookings.GetBooking).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}/confirm", bookings.ConfirmBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{bookingId}/refund-quote", bookings.RefundQuote).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}/cancel", bookings.CancelBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{bookingId}/penalty-quote", bookings.PenaltyQuote).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}/return", bookings.ReturnBooking).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{bookingId}/no-show", bookings.MarkNoShow).Methods(http.MethodPost)

	return router
}
