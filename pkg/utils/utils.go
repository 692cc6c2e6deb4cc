package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// CeilDuration returns ceil(d / unit). Negative durations round toward zero,
// which is the ceiling for them as well.
func CeilDuration(d, unit time.Duration) int {
	n := d / unit
	if d%unit > 0 {
		n++
	}
	return int(n)
}

// CeilDays returns the number of started days between from and to.
func CeilDays(from, to time.Time) int {
	return CeilDuration(to.Sub(from), day)
}

// CalendarDate truncates t to midnight in its own location.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsBeforeDate compares calendar dates only, ignoring time of day.
func IsBeforeDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}

// RoundMoney rounds to 2 decimal places
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// ToMinorUnits converts a base currency amount (cedis) into minor units (pesewas).
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
