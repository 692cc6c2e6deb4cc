package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/segyhp/rental-engine/internal/logger"
	customError "github.com/segyhp/rental-engine/pkg/errors"
)

type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type ErrorResponse struct {
	Success   bool      `json:"success"`
	Code      string    `json:"code,omitempty"`
	Error     string    `json:"error"`
	Message   string    `json:"message,omitempty"`
	Errors    []string  `json:"errors,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	response := Response{
		Success:   statusCode >= 200 && statusCode < 300,
		Data:      data,
		Timestamp: time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("Error encoding JSON response", "error", err)
	}
}

// Success sends a successful JSON response
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Created sends a created JSON response
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// Error sends an error JSON response
func Error(w http.ResponseWriter, statusCode int, message string, err error) {
	write(w, statusCode, ErrorResponse{Message: message}, err)
}

// BadRequest sends a 400 bad request response
func BadRequest(w http.ResponseWriter, message string, err error) {
	Error(w, http.StatusBadRequest, message, err)
}

// NotFound sends a 404 not found response
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message, nil)
}

// InternalServerError sends a 500 internal server error response
func InternalServerError(w http.ResponseWriter, message string, err error) {
	Error(w, http.StatusInternalServerError, message, err)
}

// ValidationFailed sends a 400 listing every violated rule
func ValidationFailed(w http.ResponseWriter, violations []string) {
	write(w, http.StatusBadRequest, ErrorResponse{
		Code:    customError.ErrCodeValidation,
		Message: "validation failed",
		Errors:  violations,
	}, customError.ErrValidation)
}

// FromError maps business errors onto HTTP status codes. Anything that is
// not a BusinessError is reported as a 500 without leaking its text.
func FromError(w http.ResponseWriter, err error) {
	var businessErr *customError.BusinessError
	if !errors.As(err, &businessErr) {
		logger.Error("Unhandled error", "error", err)
		InternalServerError(w, "internal server error", nil)
		return
	}

	status := StatusFor(businessErr.Code)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "code", businessErr.Code, "error", err)
	}

	body := ErrorResponse{
		Code:    businessErr.Code,
		Message: businessErr.Message,
		Errors:  customError.Violations(err),
	}

	var cause error
	if status < http.StatusInternalServerError {
		cause = businessErr.Err
	}
	write(w, status, body, cause)
}

// StatusFor returns the HTTP status used for an error code.
func StatusFor(code string) int {
	switch code {
	case customError.ErrCodeValidation, customError.ErrCodeInvalidRefundAmount:
		return http.StatusBadRequest
	case customError.ErrCodeBookingNotFound, customError.ErrCodeCarNotFound:
		return http.StatusNotFound
	case customError.ErrCodeIllegalTransition, customError.ErrCodeCarUnavailable:
		return http.StatusConflict
	case customError.ErrCodeSettlementFailure:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

func write(w http.ResponseWriter, statusCode int, body ErrorResponse, err error) {
	body.Success = false
	body.Timestamp = time.Now()
	if err != nil {
		body.Error = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if encodeErr := json.NewEncoder(w).Encode(body); encodeErr != nil {
		logger.Error("Error encoding error response", "error", encodeErr)
	}
}
