// Package calculator holds the pure financial rules of a booking: rental
// pricing, cancellation refunds and late-return penalties. Every function
// takes its clock readings as parameters so results can be re-derived later.
package calculator

import (
	"github.com/shopspring/decimal"
)

// Policy carries the business constants behind the calculations.
type Policy struct {
	DriverSurchargePerDay decimal.Decimal
	InsuranceRate         decimal.Decimal
	LateFeeRate           decimal.Decimal
	ReturnCutoffHour      int
}

func DefaultPolicy() Policy {
	return Policy{
		DriverSurchargePerDay: decimal.NewFromInt(50),
		InsuranceRate:         decimal.RequireFromString("0.15"),
		LateFeeRate:           decimal.RequireFromString("0.10"),
		ReturnCutoffHour:      9,
	}
}

type Calculator struct {
	policy Policy
}

func New(policy Policy) *Calculator {
	return &Calculator{policy: policy}
}

func (c *Calculator) Policy() Policy {
	return c.policy
}
