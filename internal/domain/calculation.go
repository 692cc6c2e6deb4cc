package domain

import "github.com/shopspring/decimal"

// PriceBreakdown itemises a rental total.
type PriceBreakdown struct {
	Days            int             `json:"days"`
	DailyRate       decimal.Decimal `json:"daily_rate"`
	Base            decimal.Decimal `json:"base"`
	DriverSurcharge decimal.Decimal `json:"driver_surcharge"`
	Insurance       decimal.Decimal `json:"insurance"`
	Total           decimal.Decimal `json:"total"`
}

// PenaltyCalculation is derived whenever a return is processed and only
// persisted on the booking once the return is confirmed.
type PenaltyCalculation struct {
	IsLate        bool            `json:"is_late"`
	LateDays      int             `json:"late_days"`
	PenaltyAmount decimal.Decimal `json:"penalty_amount"`
	LateFee       decimal.Decimal `json:"late_fee"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Explanation   string          `json:"explanation"`
}

type RefundDecision struct {
	RefundAmount     decimal.Decimal `json:"refund_amount"`
	RefundPercentage int             `json:"refund_percentage"`
	Reason           string          `json:"reason"`
}
