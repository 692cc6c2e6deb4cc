package scheduler

import (
	"context"
	"time"

	"github.com/segyhp/rental-engine/internal/calculator"
	"github.com/segyhp/rental-engine/internal/domain"
	"github.com/segyhp/rental-engine/internal/logger"
	"github.com/segyhp/rental-engine/internal/notify"
)

type OverdueLister interface {
	ListOverdue(ctx context.Context) ([]*domain.Booking, error)
}

// OverdueSweep reminds customers whose rentals are past due. It previews the
// accrued penalty but never changes a booking; returns are recorded by staff.
type OverdueSweep struct {
	bookings OverdueLister
	calc     *calculator.Calculator
	notifier notify.Notifier
	loc      *time.Location
	now      func() time.Time
	timeout  time.Duration
}

func NewOverdueSweep(bookings OverdueLister, calc *calculator.Calculator, notifier notify.Notifier, loc *time.Location) *OverdueSweep {
	if loc == nil {
		loc = time.UTC
	}
	return &OverdueSweep{
		bookings: bookings,
		calc:     calc,
		notifier: notifier,
		loc:      loc,
		now:      time.Now,
		timeout:  5 * time.Minute,
	}
}

// Run performs one sweep and returns how many reminders were queued.
func (j *OverdueSweep) Run(ctx context.Context) (int, error) {
	bookings, err := j.bookings.ListOverdue(ctx)
	if err != nil {
		return 0, err
	}

	now := j.now()
	reminded := 0
	for _, booking := range bookings {
		penalty := j.calc.ComputePenalty(booking.EndDate, now, booking.DailyRate, j.loc)
		if !penalty.IsLate {
			continue
		}

		logger.Info("Overdue rental",
			"booking_id", booking.ID, "car_id", booking.CarID, "late_days", penalty.LateDays,
			"accrued_penalty", penalty.TotalAmount.StringFixed(2))

		j.notifier.SendOverdueReminder(ctx, booking, penalty)
		reminded++
	}

	return reminded, nil
}

// RunJob adapts Run to a cron callback.
func (j *OverdueSweep) RunJob() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	logger.Info("Running overdue rental sweep...")
	count, err := j.Run(ctx)
	if err != nil {
		logger.Error("Overdue rental sweep failed", "error", err)
		return
	}
	logger.Info("Overdue rental sweep finished", "reminders", count)
}
