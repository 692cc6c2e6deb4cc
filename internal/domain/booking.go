package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash        PaymentMethod = "cash"
	PaymentMethodMobileMoney PaymentMethod = "mobile_money"
	PaymentMethodPayInSlip   PaymentMethod = "pay_in_slip"
)

// IsValid reports whether m is one of the supported payment methods.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodMobileMoney, PaymentMethodPayInSlip:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Booking represents a car rental booking
type Booking struct {
	ID          string `json:"id" db:"id"`
	CustomerID  string `json:"customer_id" db:"customer_id"`
	DriverID    string `json:"driver_id,omitempty" db:"driver_id"`
	GuarantorID string `json:"guarantor_id,omitempty" db:"guarantor_id"`

	CarID     string          `json:"car_id" db:"car_id"`
	DailyRate decimal.Decimal `json:"daily_rate" db:"daily_rate"`

	StartDate time.Time `json:"start_date" db:"start_date"`
	EndDate   time.Time `json:"end_date" db:"end_date"`

	TotalAmount      decimal.Decimal `json:"total_amount" db:"total_amount"`
	AmountPaid       decimal.Decimal `json:"amount_paid" db:"amount_paid"`
	PaymentMethod    PaymentMethod   `json:"payment_method" db:"payment_method"`
	PaymentStatus    PaymentStatus   `json:"payment_status" db:"payment_status"`
	PaymentReference string          `json:"payment_reference,omitempty" db:"payment_reference"`
	PaymentDetails   PaymentDetails  `json:"payment_details" db:"payment_details"`
	RefundAmount     decimal.Decimal `json:"refund_amount" db:"refund_amount"`
	RefundReason     string          `json:"refund_reason,omitempty" db:"refund_reason"`

	// Populated once a return is confirmed.
	PenaltyAmount        decimal.Decimal `json:"penalty_amount" db:"penalty_amount"`
	PenaltyPaymentMethod string          `json:"penalty_payment_method,omitempty" db:"penalty_payment_method"`
	ReceiptNumber        string          `json:"receipt_number,omitempty" db:"receipt_number"`
	ActualReturnAt       *time.Time      `json:"actual_return_at,omitempty" db:"actual_return_at"`

	Status            BookingStatus `json:"status" db:"status"`
	SelfDrive         bool          `json:"self_drive" db:"self_drive"`
	HasDriver         bool          `json:"has_driver" db:"has_driver"`
	InsuranceCoverage bool          `json:"insurance_coverage" db:"insurance_coverage"`
	PickupLocation    string        `json:"pickup_location" db:"pickup_location"`
	DropoffLocation   string        `json:"dropoff_location" db:"dropoff_location"`

	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// PayInSlipDetails is the bank deposit slip a customer presents for manual verification.
type PayInSlipDetails struct {
	BankName        string `json:"bank_name" validate:"required,notblank" label:"bank name"`
	Branch          string `json:"branch" validate:"required,notblank" label:"bank branch"`
	PayeeName       string `json:"payee_name" validate:"required,notblank" label:"payee name"`
	ReferenceNumber string `json:"reference_number" validate:"required,notblank" label:"reference number"`
	SlipNumber      string `json:"slip_number" validate:"required,notblank" label:"slip number"`
}

type MobileMoneyDetails struct {
	PhoneNumber string `json:"phone_number"`
	Network     string `json:"network,omitempty"`
}

// PaymentDetails holds at most one of the method-specific sub-records.
// Cash bookings carry neither.
type PaymentDetails struct {
	PayInSlip   *PayInSlipDetails   `json:"pay_in_slip,omitempty"`
	MobileMoney *MobileMoneyDetails `json:"mobile_money,omitempty"`
}

// ForMethod keeps only the sub-record that belongs to method.
func (d PaymentDetails) ForMethod(method PaymentMethod) PaymentDetails {
	switch method {
	case PaymentMethodPayInSlip:
		return PaymentDetails{PayInSlip: d.PayInSlip}
	case PaymentMethodMobileMoney:
		return PaymentDetails{MobileMoney: d.MobileMoney}
	default:
		return PaymentDetails{}
	}
}

func (d PaymentDetails) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (d *PaymentDetails) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = PaymentDetails{}
		return nil
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("cannot scan %T into PaymentDetails", src)
	}
}

// IsActive reports whether the booking still holds its car.
func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}
