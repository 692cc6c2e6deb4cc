package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingDraft is the complete booking request as assembled by staff.
// It is validated as a whole before anything is priced or persisted.
type BookingDraft struct {
	CarID       string `json:"car_id" validate:"required,notblank" label:"car"`
	CustomerID  string `json:"customer_id" validate:"required,notblank" label:"customer"`
	DriverID    string `json:"driver_id,omitempty"`
	GuarantorID string `json:"guarantor_id,omitempty"`

	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	SelfDrive         bool           `json:"self_drive"`
	HasDriver         bool           `json:"has_driver"`
	InsuranceCoverage bool           `json:"insurance_coverage"`
	License           *DriverLicense `json:"license,omitempty" validate:"-"`

	PaymentMethod  PaymentMethod  `json:"payment_method"`
	PaymentDetails PaymentDetails `json:"payment_details" validate:"-"`

	PickupLocation  string `json:"pickup_location"`
	DropoffLocation string `json:"dropoff_location"`
}

// DriverLicense is required for self-drive bookings.
type DriverLicense struct {
	Number     string    `json:"number" validate:"required,notblank" label:"driver license number"`
	Class      string    `json:"class" validate:"required,notblank" label:"driver license class"`
	IssueDate  time.Time `json:"issue_date"`
	ExpiryDate time.Time `json:"expiry_date"`
}

// DTOs for requests

type QuoteRequest struct {
	CarID             string    `json:"car_id" validate:"required,notblank"`
	StartDate         time.Time `json:"start_date" validate:"required"`
	EndDate           time.Time `json:"end_date" validate:"required"`
	HasDriver         bool      `json:"has_driver"`
	InsuranceCoverage bool      `json:"insurance_coverage"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"required,notblank"`
	// RefundAmount overrides the policy refund when set.
	RefundAmount *decimal.Decimal `json:"refund_amount,omitempty"`
}

type ReturnBookingRequest struct {
	ReturnedAt           time.Time     `json:"returned_at" validate:"required"`
	PenaltyPaid          bool          `json:"penalty_paid"`
	PenaltyPaymentMethod PaymentMethod `json:"penalty_payment_method" validate:"omitempty,oneof=cash mobile_money"`
	ReceiptNumber        string        `json:"receipt_number,omitempty"`
}

type AvailabilityResponse struct {
	CarID     string `json:"car_id"`
	Available bool   `json:"available"`
}

type CancelBookingResponse struct {
	Booking *Booking        `json:"booking"`
	Refund  *RefundDecision `json:"refund"`
}

type ReturnBookingResponse struct {
	Booking *Booking            `json:"booking"`
	Penalty *PenaltyCalculation `json:"penalty"`
}
