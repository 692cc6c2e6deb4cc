package calculator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputePenalty(t *testing.T) {
	calc := New(DefaultPolicy())
	loc := time.UTC
	endDate := time.Date(2026, 11, 5, 0, 0, 0, 0, loc)
	cutoff := time.Date(2026, 11, 5, 9, 0, 0, 0, loc)
	rate := decimal.NewFromInt(180)

	tests := []struct {
		name        string
		returnedAt  time.Time
		isLate      bool
		lateDays    int
		penalty     decimal.Decimal
		lateFee     decimal.Decimal
		totalAmount decimal.Decimal
	}{
		{
			name:        "before cutoff",
			returnedAt:  cutoff.Add(-3 * time.Hour),
			totalAmount: decimal.Zero,
			penalty:     decimal.Zero,
			lateFee:     decimal.Zero,
		},
		{
			name:        "exactly at cutoff",
			returnedAt:  cutoff,
			totalAmount: decimal.Zero,
			penalty:     decimal.Zero,
			lateFee:     decimal.Zero,
		},
		{
			name:        "one minute late",
			returnedAt:  cutoff.Add(time.Minute),
			isLate:      true,
			lateDays:    1,
			penalty:     decimal.NewFromInt(180),
			lateFee:     decimal.NewFromInt(18),
			totalAmount: decimal.NewFromInt(198),
		},
		{
			name:        "24 hours late",
			returnedAt:  cutoff.Add(24 * time.Hour),
			isLate:      true,
			lateDays:    1,
			penalty:     decimal.NewFromInt(180),
			lateFee:     decimal.NewFromInt(18),
			totalAmount: decimal.NewFromInt(198),
		},
		{
			name:        "25 hours late",
			returnedAt:  cutoff.Add(25 * time.Hour),
			isLate:      true,
			lateDays:    2,
			penalty:     decimal.NewFromInt(360),
			lateFee:     decimal.NewFromInt(36),
			totalAmount: decimal.NewFromInt(396),
		},
		{
			name:        "24 hours and one second late",
			returnedAt:  cutoff.Add(24*time.Hour + time.Second),
			isLate:      true,
			lateDays:    2,
			penalty:     decimal.NewFromInt(360),
			lateFee:     decimal.NewFromInt(36),
			totalAmount: decimal.NewFromInt(396),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := calc.ComputePenalty(endDate, tt.returnedAt, rate, loc)
			assert.Equal(t, tt.isLate, p.IsLate)
			assert.Equal(t, tt.lateDays, p.LateDays)
			assert.True(t, p.PenaltyAmount.Equal(tt.penalty), "penalty %v", p.PenaltyAmount)
			assert.True(t, p.LateFee.Equal(tt.lateFee), "late fee %v", p.LateFee)
			assert.True(t, p.TotalAmount.Equal(tt.totalAmount), "total %v", p.TotalAmount)
			assert.NotEmpty(t, p.Explanation)
		})
	}
}

func TestComputePenalty_OnTimeExplanation(t *testing.T) {
	calc := New(DefaultPolicy())
	endDate := time.Date(2026, 11, 5, 0, 0, 0, 0, time.UTC)

	p := calc.ComputePenalty(endDate, endDate.Add(8*time.Hour), decimal.NewFromInt(100), time.UTC)
	assert.Contains(t, p.Explanation, "no penalty")
}

func TestComputePenalty_LateFeeOnFractionalRate(t *testing.T) {
	calc := New(DefaultPolicy())
	endDate := time.Date(2026, 11, 5, 0, 0, 0, 0, time.UTC)

	p := calc.ComputePenalty(endDate, endDate.Add(9*time.Hour+time.Minute), decimal.RequireFromString("99.99"), time.UTC)
	assert.True(t, p.PenaltyAmount.Equal(decimal.RequireFromString("99.99")))
	assert.True(t, p.LateFee.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, p.TotalAmount.Equal(decimal.RequireFromString("109.99")))
}

func TestComputePenalty_CutoffInLocation(t *testing.T) {
	calc := New(DefaultPolicy())
	accra := time.FixedZone("GMT", 0)
	lagos := time.FixedZone("WAT", 3600)
	endDate := time.Date(2026, 11, 5, 0, 0, 0, 0, time.UTC)

	// 09:30 WAT is 08:30 GMT: on time in Accra, late in Lagos.
	returned := time.Date(2026, 11, 5, 9, 30, 0, 0, lagos)
	assert.False(t, calc.ComputePenalty(endDate, returned, decimal.NewFromInt(100), accra).IsLate)
	assert.True(t, calc.ComputePenalty(endDate, returned, decimal.NewFromInt(100), lagos).IsLate)
}

func TestComputePenalty_EndDateStoredAsUTC(t *testing.T) {
	calc := New(DefaultPolicy())
	lagos := time.FixedZone("WAT", 3600)

	// Local midnight on 5 Nov as Postgres hands it back: 23:00 UTC on 4 Nov.
	endDate := time.Date(2026, 11, 5, 0, 0, 0, 0, lagos).UTC()

	assert.Equal(t, time.Date(2026, 11, 5, 9, 0, 0, 0, lagos), calc.ReturnCutoff(endDate, lagos))

	onTime := calc.ComputePenalty(endDate, time.Date(2026, 11, 5, 8, 0, 0, 0, lagos), decimal.NewFromInt(100), lagos)
	assert.False(t, onTime.IsLate)
	assert.True(t, onTime.TotalAmount.IsZero())

	late := calc.ComputePenalty(endDate, time.Date(2026, 11, 5, 10, 0, 0, 0, lagos), decimal.NewFromInt(100), lagos)
	assert.True(t, late.IsLate)
	assert.Equal(t, 1, late.LateDays)
	assert.True(t, late.TotalAmount.Equal(decimal.NewFromInt(110)))
}

func TestComputePenalty_Deterministic(t *testing.T) {
	calc := New(DefaultPolicy())
	endDate := time.Date(2026, 11, 5, 0, 0, 0, 0, time.UTC)
	returned := endDate.Add(60 * time.Hour)

	a := calc.ComputePenalty(endDate, returned, decimal.NewFromInt(120), time.UTC)
	b := calc.ComputePenalty(endDate, returned, decimal.NewFromInt(120), time.UTC)
	assert.Equal(t, a, b)
}
