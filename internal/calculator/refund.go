package calculator

import (
	"fmt"
	"time"

	"github.com/segyhp/rental-engine/internal/domain"
	"github.com/segyhp/rental-engine/pkg/utils"

	"github.com/shopspring/decimal"
)

type refundTier struct {
	moreThanDays int
	percent      int
}

// Tiers are checked top-down with strict comparisons: exactly 7 days
// lands in the 50% tier, exactly 3 in the 25% tier.
var refundTiers = []refundTier{
	{moreThanDays: 7, percent: 90},
	{moreThanDays: 3, percent: 50},
	{moreThanDays: 1, percent: 25},
}

// RefundPercentage returns the policy percentage for a lead time in days.
func RefundPercentage(daysUntilStart int) int {
	for _, tier := range refundTiers {
		if daysUntilStart > tier.moreThanDays {
			return tier.percent
		}
	}
	return 0
}

// ComputeRefund returns the refund owed when a booking is cancelled at cancellationDate.
func ComputeRefund(totalAmount decimal.Decimal, cancellationDate, startDate time.Time) decimal.Decimal {
	return DecideRefund(totalAmount, cancellationDate, startDate).RefundAmount
}

func DecideRefund(totalAmount decimal.Decimal, cancellationDate, startDate time.Time) domain.RefundDecision {
	daysUntilStart := utils.CeilDays(cancellationDate, startDate)
	percent := RefundPercentage(daysUntilStart)

	amount := utils.RoundMoney(totalAmount.Mul(decimal.NewFromInt(int64(percent))).Div(decimal.NewFromInt(100)))

	var reason string
	switch percent {
	case 90:
		reason = fmt.Sprintf("cancelled %d days before pickup: more than 7 days, 90%% refund", daysUntilStart)
	case 50:
		reason = fmt.Sprintf("cancelled %d days before pickup: 4 to 7 days, 50%% refund", daysUntilStart)
	case 25:
		reason = fmt.Sprintf("cancelled %d days before pickup: 2 to 3 days, 25%% refund", daysUntilStart)
	default:
		reason = "cancelled within 24 hours of pickup: no refund"
	}

	return domain.RefundDecision{
		RefundAmount:     amount,
		RefundPercentage: percent,
		Reason:           reason,
	}
}
