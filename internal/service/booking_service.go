package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segyhp/rental-engine/internal/calculator"
	"github.com/segyhp/rental-engine/internal/domain"
	"github.com/segyhp/rental-engine/internal/logger"
	"github.com/segyhp/rental-engine/internal/notify"
	"github.com/segyhp/rental-engine/internal/repository"
	"github.com/segyhp/rental-engine/internal/validation"
	customError "github.com/segyhp/rental-engine/pkg/errors"
	"github.com/segyhp/rental-engine/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingService struct {
	store      repository.Store
	transactor repository.Transactor
	calc       *calculator.Calculator
	validator  *validation.Validator
	settler    *Settler
	notifier   notify.Notifier
	loc        *time.Location
	now        func() time.Time
}

func NewBookingService(
	store repository.Store,
	transactor repository.Transactor,
	calc *calculator.Calculator,
	validator *validation.Validator,
	settler *Settler,
	notifier notify.Notifier,
	loc *time.Location,
) *BookingService {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingService{
		store:      store,
		transactor: transactor,
		calc:       calc,
		validator:  validator,
		settler:    settler,
		notifier:   notifier,
		loc:        loc,
		now:        time.Now,
	}
}

// WithClock replaces the wall clock used for stamps and policy decisions.
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// CreateBooking validates and prices a draft, settles payment and persists
// the booking together with the car status change.
func (s *BookingService) CreateBooking(ctx context.Context, draft domain.BookingDraft) (*domain.Booking, error) {
	now := s.now()

	// 1. Validate the whole draft up front
	result := s.validator.Validate(draft, now.In(s.loc))
	if !result.Valid {
		return nil, customError.WrapValidation(result.Errors)
	}

	// 2. Point-in-time availability check
	car, err := s.getCar(ctx, draft.CarID)
	if err != nil {
		return nil, err
	}
	available, err := s.isAvailable(ctx, car, draft.StartDate, draft.EndDate)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, customError.WrapCarUnavailable(car.ID)
	}

	// 3. Price at the car's current rate
	total := s.calc.ComputeTotal(car.DailyRate, draft.StartDate, draft.EndDate, draft.HasDriver, draft.InsuranceCoverage)

	booking := &domain.Booking{
		ID:                uuid.NewString(),
		CustomerID:        draft.CustomerID,
		DriverID:          draft.DriverID,
		GuarantorID:       draft.GuarantorID,
		CarID:             car.ID,
		DailyRate:         car.DailyRate,
		StartDate:         draft.StartDate,
		EndDate:           draft.EndDate,
		TotalAmount:       total,
		AmountPaid:        decimal.Zero,
		PaymentMethod:     draft.PaymentMethod,
		PaymentDetails:    draft.PaymentDetails.ForMethod(draft.PaymentMethod),
		Status:            domain.BookingStatusConfirmed,
		SelfDrive:         draft.SelfDrive,
		HasDriver:         draft.HasDriver,
		InsuranceCoverage: draft.InsuranceCoverage,
		PickupLocation:    draft.PickupLocation,
		DropoffLocation:   draft.DropoffLocation,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	// 4. Settle; mobile money blocks here until the gateway answers
	if err := s.settler.Settle(ctx, booking); err != nil {
		return nil, err
	}

	// 5. Booking and car flip commit together
	err = s.withinTx(ctx, func(store repository.Store) error {
		if err := store.Bookings().Create(ctx, booking); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return setCarStatus(ctx, store, booking.CarID, domain.CarStatusRented)
	})
	if err != nil {
		if booking.PaymentStatus == domain.PaymentStatusPaid {
			logger.Error("Booking not persisted after payment settled",
				"booking_id", booking.ID, "payment_reference", booking.PaymentReference, "error", err)
		}
		return nil, err
	}

	logger.Info("Booking created",
		"booking_id", booking.ID, "car_id", booking.CarID, "total", booking.TotalAmount.StringFixed(2),
		"payment_method", booking.PaymentMethod, "payment_status", booking.PaymentStatus)

	s.notifier.SendConfirmation(ctx, booking)

	return booking, nil
}

// ConfirmBooking moves a pending booking to confirmed and marks its car rented.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(booking, domain.BookingStatusConfirmed); err != nil {
		return nil, err
	}

	updated := *booking
	updated.Status = domain.BookingStatusConfirmed
	updated.UpdatedAt = s.now()

	err = s.withinTx(ctx, func(store repository.Store) error {
		if err := store.Bookings().Update(ctx, &updated); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return setCarStatus(ctx, store, updated.CarID, domain.CarStatusRented)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Booking confirmed", "booking_id", updated.ID)
	s.notifier.SendConfirmation(ctx, &updated)

	return &updated, nil
}

// CancelBooking cancels a pending or confirmed booking. The refund follows the
// lead-time policy unless staff supply an amount no greater than what was paid.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string, request domain.CancelBookingRequest) (*domain.Booking, *domain.RefundDecision, error) {
	reason := strings.TrimSpace(request.Reason)
	if reason == "" {
		return nil, nil, customError.WrapValidation([]string{"cancellation reason is required"})
	}

	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if err := checkTransition(booking, domain.BookingStatusCancelled); err != nil {
		return nil, nil, err
	}

	now := s.now()
	decision := calculator.DecideRefund(booking.TotalAmount, now, booking.StartDate)

	if request.RefundAmount != nil {
		override := *request.RefundAmount
		if override.IsNegative() || override.GreaterThan(booking.AmountPaid) {
			return nil, nil, customError.WrapInvalidRefundAmount(override.StringFixed(2), booking.AmountPaid.StringFixed(2))
		}
		decision = overrideDecision(booking.TotalAmount, override)
	}

	updated := *booking
	updated.Status = domain.BookingStatusCancelled
	updated.RefundAmount = decision.RefundAmount
	updated.RefundReason = reason
	updated.CancelledAt = &now
	updated.UpdatedAt = now
	// Nothing collected means nothing to hand back, whatever the policy says.
	if decision.RefundAmount.IsPositive() && booking.AmountPaid.IsPositive() {
		updated.PaymentStatus = domain.PaymentStatusRefunded
	}

	err = s.withinTx(ctx, func(store repository.Store) error {
		if err := store.Bookings().Update(ctx, &updated); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return releaseCar(ctx, store, &updated)
	})
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Booking cancelled",
		"booking_id", updated.ID, "refund", decision.RefundAmount.StringFixed(2), "refund_percentage", decision.RefundPercentage)

	return &updated, &decision, nil
}

// MarkReturned completes a confirmed booking. A late return with a penalty
// is refused until staff confirm the penalty was paid and how.
func (s *BookingService) MarkReturned(ctx context.Context, bookingID string, request domain.ReturnBookingRequest) (*domain.Booking, *domain.PenaltyCalculation, error) {
	if request.ReturnedAt.IsZero() {
		return nil, nil, customError.WrapValidation([]string{"return time is required"})
	}

	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if err := checkTransition(booking, domain.BookingStatusCompleted); err != nil {
		return nil, nil, err
	}

	penalty := s.calc.ComputePenalty(booking.EndDate, request.ReturnedAt, booking.DailyRate, s.loc)

	var penaltyMethod string
	if penalty.IsLate && penalty.TotalAmount.IsPositive() {
		if !request.PenaltyPaid || !isPenaltyMethod(request.PenaltyPaymentMethod) {
			return nil, nil, customError.WrapUnpaidPenalty(booking.ID, penalty.TotalAmount.StringFixed(2))
		}
		penaltyMethod = string(request.PenaltyPaymentMethod)
	}

	receipt := strings.TrimSpace(request.ReceiptNumber)
	if receipt == "" {
		receipt = NewReceiptNumber()
	}

	now := s.now()
	returnedAt := request.ReturnedAt

	updated := *booking
	updated.Status = domain.BookingStatusCompleted
	updated.ActualReturnAt = &returnedAt
	updated.PenaltyAmount = penalty.TotalAmount
	updated.PenaltyPaymentMethod = penaltyMethod
	updated.AmountPaid = utils.RoundMoney(booking.AmountPaid.Add(penalty.TotalAmount))
	updated.ReceiptNumber = receipt
	updated.CompletedAt = &now
	updated.UpdatedAt = now

	err = s.withinTx(ctx, func(store repository.Store) error {
		if err := store.Bookings().Update(ctx, &updated); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return setCarStatus(ctx, store, updated.CarID, domain.CarStatusAvailable)
	})
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Booking returned",
		"booking_id", updated.ID, "late", penalty.IsLate, "late_days", penalty.LateDays,
		"penalty", penalty.TotalAmount.StringFixed(2), "receipt_number", receipt)

	s.notifier.SendReceiptEmail(ctx, updated.ID)
	s.notifier.SendReceiptSMS(ctx, updated.ID)

	return &updated, &penalty, nil
}

// MarkNoShow records that the customer never collected a confirmed booking.
func (s *BookingService) MarkNoShow(ctx context.Context, bookingID string) (*domain.Booking, error) {
	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(booking, domain.BookingStatusNoShow); err != nil {
		return nil, err
	}

	updated := *booking
	updated.Status = domain.BookingStatusNoShow
	updated.UpdatedAt = s.now()

	err = s.withinTx(ctx, func(store repository.Store) error {
		if err := store.Bookings().Update(ctx, &updated); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return releaseCar(ctx, store, &updated)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Booking marked no-show", "booking_id", updated.ID)

	return &updated, nil
}

// Quote prices a prospective rental without creating anything.
func (s *BookingService) Quote(ctx context.Context, request domain.QuoteRequest) (*domain.PriceBreakdown, error) {
	if !request.EndDate.After(request.StartDate) {
		return nil, customError.WrapValidation([]string{"end date must be after start date"})
	}

	car, err := s.getCar(ctx, request.CarID)
	if err != nil {
		return nil, err
	}

	breakdown := s.calc.Breakdown(car.DailyRate, request.StartDate, request.EndDate, request.HasDriver, request.InsuranceCoverage)
	return &breakdown, nil
}

// RefundQuote previews the policy refund if the booking were cancelled at the given time.
func (s *BookingService) RefundQuote(ctx context.Context, bookingID string, at time.Time) (*domain.RefundDecision, error) {
	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(booking, domain.BookingStatusCancelled); err != nil {
		return nil, err
	}
	if at.IsZero() {
		at = s.now()
	}

	decision := calculator.DecideRefund(booking.TotalAmount, at, booking.StartDate)
	return &decision, nil
}

// PenaltyQuote previews the late-return charge for a return at returnedAt.
func (s *BookingService) PenaltyQuote(ctx context.Context, bookingID string, returnedAt time.Time) (*domain.PenaltyCalculation, error) {
	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if returnedAt.IsZero() {
		returnedAt = s.now()
	}

	penalty := s.calc.ComputePenalty(booking.EndDate, returnedAt, booking.DailyRate, s.loc)
	return &penalty, nil
}

// CheckAvailability answers whether the car can be booked for the range right now.
// The answer is not a reservation.
func (s *BookingService) CheckAvailability(ctx context.Context, carID string, start, end time.Time) (bool, error) {
	if !end.After(start) {
		return false, customError.WrapValidation([]string{"end date must be after start date"})
	}

	car, err := s.getCar(ctx, carID)
	if err != nil {
		return false, err
	}

	return s.isAvailable(ctx, car, start, end)
}

// ListOverdue returns confirmed bookings that should already have been returned.
func (s *BookingService) ListOverdue(ctx context.Context) ([]*domain.Booking, error) {
	bookings, err := s.store.Bookings().ListOverdue(ctx, s.now())
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return bookings, nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	booking, err := s.store.Bookings().GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapBookingNotFound(bookingID)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return booking, nil
}

func (s *BookingService) getCar(ctx context.Context, carID string) (*domain.Car, error) {
	car, err := s.store.Cars().GetByID(ctx, carID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapCarNotFound(carID)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return car, nil
}

func (s *BookingService) isAvailable(ctx context.Context, car *domain.Car, start, end time.Time) (bool, error) {
	if car.Status == domain.CarStatusMaintenance || car.Status == domain.CarStatusRetired {
		return false, nil
	}

	overlap, err := s.store.Bookings().HasOverlap(ctx, car.ID, start, end, "")
	if err != nil {
		return false, customError.WrapDatabaseError(err)
	}
	return !overlap, nil
}

// withinTx runs fn in a transaction and maps infrastructure failures to DATABASE_ERROR.
func (s *BookingService) withinTx(ctx context.Context, fn func(store repository.Store) error) error {
	err := s.transactor.WithinTx(ctx, fn)
	if err == nil {
		return nil
	}

	var businessErr *customError.BusinessError
	if errors.As(err, &businessErr) {
		return err
	}
	return customError.WrapDatabaseError(err)
}

func checkTransition(booking *domain.Booking, target domain.BookingStatus) error {
	if !booking.Status.CanTransitionTo(target) {
		return customError.WrapIllegalTransition(booking.ID, string(booking.Status), string(target))
	}
	return nil
}

// setCarStatus must touch exactly one car row or the whole transaction fails.
func setCarStatus(ctx context.Context, store repository.Store, carID string, status domain.CarStatus) error {
	if err := store.Cars().UpdateStatus(ctx, carID, status); err != nil {
		return customError.WrapInconsistency(carID, err)
	}
	return nil
}

// releaseCar makes a rented car available again unless another active booking
// still holds it. Cars in maintenance or retired keep their status.
func releaseCar(ctx context.Context, store repository.Store, booking *domain.Booking) error {
	car, err := store.Cars().GetByID(ctx, booking.CarID)
	if err != nil {
		return customError.WrapInconsistency(booking.CarID, err)
	}
	if car.Status != domain.CarStatusRented {
		return nil
	}

	held, err := store.Bookings().HasOtherActive(ctx, booking.CarID, booking.ID)
	if err != nil {
		return customError.WrapInconsistency(booking.CarID, err)
	}
	if held {
		return nil
	}
	return setCarStatus(ctx, store, booking.CarID, domain.CarStatusAvailable)
}

func overrideDecision(total, amount decimal.Decimal) domain.RefundDecision {
	amount = utils.RoundMoney(amount)

	percent := 0
	if total.IsPositive() {
		percent = int(amount.Mul(decimal.NewFromInt(100)).Div(total).IntPart())
	}

	return domain.RefundDecision{
		RefundAmount:     amount,
		RefundPercentage: percent,
		Reason:           fmt.Sprintf("refund of %s set by staff", amount.StringFixed(2)),
	}
}

func isPenaltyMethod(method domain.PaymentMethod) bool {
	return method == domain.PaymentMethodCash || method == domain.PaymentMethodMobileMoney
}

// NewReceiptNumber issues a short human-readable receipt id.
func NewReceiptNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "RCT-" + strings.ToUpper(id[:8])
}
