package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CarStatus string

const (
	CarStatusAvailable   CarStatus = "available"
	CarStatusRented      CarStatus = "rented"
	CarStatusMaintenance CarStatus = "maintenance"
	CarStatusRetired     CarStatus = "retired"
)

// Car is a fleet vehicle. Bookings snapshot its daily rate at creation.
type Car struct {
	ID        string          `json:"id" db:"id"`
	Plate     string          `json:"plate" db:"plate"`
	Model     string          `json:"model" db:"model"`
	DailyRate decimal.Decimal `json:"daily_rate" db:"daily_rate"`
	Status    CarStatus       `json:"status" db:"status"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// Customer is read only to address notifications.
type Customer struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
	Phone string `json:"phone" db:"phone"`
}
