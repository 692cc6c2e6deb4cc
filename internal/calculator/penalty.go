package calculator

import (
	"fmt"
	"time"

	"github.com/segyhp/rental-engine/internal/domain"
	"github.com/segyhp/rental-engine/pkg/utils"

	"github.com/shopspring/decimal"
)

// ReturnCutoff is the latest on-time return instant for a booking ending on
// expectedEndDate. Both the calendar date and the cutoff hour are read in loc,
// so an end date loaded back as a UTC instant still lands on its local day.
func (c *Calculator) ReturnCutoff(expectedEndDate time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := expectedEndDate.In(loc).Date()
	return time.Date(y, m, d, c.policy.ReturnCutoffHour, 0, 0, 0, loc)
}

// ComputePenalty prices a return. There is no grace period: one minute past
// the cutoff is a full day.
func (c *Calculator) ComputePenalty(expectedEndDate, actualReturn time.Time, dailyRate decimal.Decimal, loc *time.Location) domain.PenaltyCalculation {
	cutoff := c.ReturnCutoff(expectedEndDate, loc)

	if !actualReturn.After(cutoff) {
		return domain.PenaltyCalculation{
			IsLate:        false,
			LateDays:      0,
			PenaltyAmount: decimal.Zero,
			LateFee:       decimal.Zero,
			TotalAmount:   decimal.Zero,
			Explanation:   fmt.Sprintf("returned by %s: no penalty applies", cutoff.Format("02 Jan 2006 15:04 MST")),
		}
	}

	diffHours := utils.CeilDuration(actualReturn.Sub(cutoff), time.Hour)
	lateDays := utils.CeilDuration(time.Duration(diffHours)*time.Hour, 24*time.Hour)
	if lateDays < 1 {
		lateDays = 1
	}

	penalty := utils.RoundMoney(dailyRate.Mul(decimal.NewFromInt(int64(lateDays))))
	lateFee := utils.RoundMoney(penalty.Mul(c.policy.LateFeeRate))
	total := penalty.Add(lateFee)

	return domain.PenaltyCalculation{
		IsLate:        true,
		LateDays:      lateDays,
		PenaltyAmount: penalty,
		LateFee:       lateFee,
		TotalAmount:   total,
		Explanation: fmt.Sprintf(
			"returned %d hour(s) after the %s cutoff: %d day(s) x %s = %s, plus %s%% late fee %s, total %s",
			diffHours, cutoff.Format("02 Jan 2006 15:04 MST"), lateDays, dailyRate.StringFixed(2),
			penalty.StringFixed(2), c.policy.LateFeeRate.Mul(decimal.NewFromInt(100)).String(),
			lateFee.StringFixed(2), total.StringFixed(2),
		),
	}
}
