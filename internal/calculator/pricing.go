package calculator

import (
	"time"

	"github.com/segyhp/rental-engine/internal/domain"
	"github.com/segyhp/rental-engine/pkg/utils"

	"github.com/shopspring/decimal"
)

// RentalDays is the charged duration: started days between start and end,
// never less than one.
func RentalDays(startDate, endDate time.Time) int {
	days := utils.CeilDays(startDate, endDate)
	if days < 1 {
		return 1
	}
	return days
}

// ComputeTotal calculates the rental total
// Formula: ((rate * days) + driver surcharge * days) * (1 + insurance rate)
func (c *Calculator) ComputeTotal(dailyRate decimal.Decimal, startDate, endDate time.Time, hasDriver, insuranceCoverage bool) decimal.Decimal {
	return c.Breakdown(dailyRate, startDate, endDate, hasDriver, insuranceCoverage).Total
}

func (c *Calculator) Breakdown(dailyRate decimal.Decimal, startDate, endDate time.Time, hasDriver, insuranceCoverage bool) domain.PriceBreakdown {
	days := RentalDays(startDate, endDate)
	numDays := decimal.NewFromInt(int64(days))

	breakdown := domain.PriceBreakdown{
		Days:            days,
		DailyRate:       dailyRate,
		Base:            dailyRate.Mul(numDays),
		DriverSurcharge: decimal.Zero,
		Insurance:       decimal.Zero,
	}

	running := breakdown.Base
	if hasDriver {
		breakdown.DriverSurcharge = c.policy.DriverSurchargePerDay.Mul(numDays)
		running = running.Add(breakdown.DriverSurcharge)
	}

	// Insurance applies to the running total, driver surcharge included.
	if insuranceCoverage {
		breakdown.Insurance = utils.RoundMoney(running.Mul(c.policy.InsuranceRate))
		running = running.Add(running.Mul(c.policy.InsuranceRate))
	}

	breakdown.Total = utils.RoundMoney(running)
	return breakdown
}
