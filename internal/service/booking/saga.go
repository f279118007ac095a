package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Domenick1991/bookingsaga/internal/clients"
	"github.com/Domenick1991/bookingsaga/internal/domain"
	"github.com/Domenick1991/bookingsaga/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type BookingUseCase interface {
	Reserve(ctx context.Context, input ReserveInput) (*domain.Booking, error)
	Cancel(ctx context.Context, bookingID string) (*domain.Booking, error)
	GetStatus(ctx context.Context, bookingID string) (domain.BookingStatus, error)
}

type SeatLock interface {
	Acquire(ctx context.Context, flightID int64, seatNumber string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, flightID int64, seatNumber string, token string) (bool, error)
	Extend(ctx context.Context, flightID int64, seatNumber string, token string, ttl time.Duration) (bool, error)
}

type Orchestrator interface {
	Charge(ctx context.Context, booking *domain.Booking) <-chan domain.PaymentOutcome
}

type Notifier interface {
	Notify(event domain.NotificationEvent)
}

type Directory interface {
	GetUser(ctx context.Context, userID int64) (*clients.UserInfo, error)
	GetFlightSeat(ctx context.Context, flightID int64, seatNumber string) (*clients.SeatInfo, error)
}

// BookingSaga owns the reservation workflow: acquire the seat lock, write
// the ledger entry, hand the charge to the payment orchestrator, settle on
// the outcome (or force a failure at the deadline) and compensate by
// releasing the lock whenever the booking goes terminal. It is the single
// writer of booking state; the lock store is the only cross-replica
// synchronization point.
type BookingSaga struct {
	bookings     repository.BookingRepository
	lock         SeatLock
	orchestrator Orchestrator
	notifier     Notifier
	directory    Directory

	lockTTL         time.Duration
	paymentDeadline time.Duration
	releaseRetries  int

	log      *logrus.Logger
	settling sync.WaitGroup
}

type ReserveInput struct {
	UserID     int64  `json:"user_id"`
	FlightID   int64  `json:"flight_id"`
	SeatNumber string `json:"seat_number"`
}

func NewBookingSaga(
	bookings repository.BookingRepository,
	lock SeatLock,
	orchestrator Orchestrator,
	notifier Notifier,
	directory Directory,
	lockTTL, paymentDeadline time.Duration,
	releaseRetries int,
	log *logrus.Logger,
) *BookingSaga {
	if releaseRetries < 1 {
		releaseRetries = 1
	}
	return &BookingSaga{
		bookings:        bookings,
		lock:            lock,
		orchestrator:    orchestrator,
		notifier:        notifier,
		directory:       directory,
		lockTTL:         lockTTL,
		paymentDeadline: paymentDeadline,
		releaseRetries:  releaseRetries,
		log:             log,
	}
}

// Reserve runs the synchronous half of the saga and returns an
// AWAITING_PAYMENT booking without waiting for settlement. The caller
// observes the terminal state by polling GetStatus.
func (s *BookingSaga) Reserve(ctx context.Context, input ReserveInput) (*domain.Booking, error) {
	if input.UserID <= 0 || input.FlightID <= 0 || input.SeatNumber == "" {
		return nil, fmt.Errorf("%w: user, flight and seat are required", domain.ErrValidation)
	}

	user, err := s.directory.GetUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	seat, err := s.directory.GetFlightSeat(ctx, input.FlightID, input.SeatNumber)
	if err != nil {
		return nil, err
	}

	token, ok, err := s.lock.Acquire(ctx, input.FlightID, input.SeatNumber, s.lockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrSeatUnavailable
	}

	booking := &domain.Booking{
		ID:           uuid.NewString(),
		UserID:       input.UserID,
		FlightID:     input.FlightID,
		SeatNumber:   input.SeatNumber,
		AmountCents:  seat.PriceCents,
		LockToken:    token,
		Email:        user.Email,
		PaymentDueAt: time.Now().Add(s.paymentDeadline),
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		s.releaseLock(ctx, booking)
		return nil, fmt.Errorf("create booking: %w", err)
	}

	updated, applied, err := s.bookings.Transition(ctx, booking.ID,
		[]domain.BookingStatus{domain.BookingStatusPending}, domain.BookingStatusAwaitingPayment)
	if err != nil || !applied {
		s.releaseLock(ctx, booking)
		if err == nil {
			err = fmt.Errorf("booking %s left PENDING unexpectedly", booking.ID)
		}
		return nil, err
	}

	s.notifier.Notify(notificationFor(updated, domain.NotificationBookingCreated))
	s.log.WithFields(logrus.Fields{
		"booking_id": updated.ID,
		"flight_id":  updated.FlightID,
		"seat":       updated.SeatNumber,
	}).Info("booking awaiting payment")

	s.settling.Add(1)
	go s.settle(updated)

	return updated, nil
}

// settle waits for the orchestrator's outcome, bounded by the payment
// deadline. Settlement is detached from the request context: a caller that
// goes away cannot leave the booking non-terminal (the seat would stay held
// until the lock TTL).
func (s *BookingSaga) settle(booking *domain.Booking) {
	defer s.settling.Done()
	ctx := context.Background()

	// The deadline is normally well inside the lock TTL. When configured
	// otherwise, stretch the hold so the lock cannot expire under a
	// settlement that is still within its deadline.
	if s.paymentDeadline >= s.lockTTL {
		if _, err := s.lock.Extend(ctx, booking.FlightID, booking.SeatNumber, booking.LockToken, s.paymentDeadline+s.lockTTL); err != nil {
			s.log.WithFields(logrus.Fields{"booking_id": booking.ID}).WithError(err).Warn("failed to extend seat lock")
		}
	}

	chargeCtx, cancel := context.WithTimeout(ctx, s.paymentDeadline)
	defer cancel()

	timer := time.NewTimer(s.paymentDeadline)
	defer timer.Stop()

	select {
	case outcome, ok := <-s.orchestrator.Charge(chargeCtx, booking):
		if !ok {
			outcome = domain.PaymentOutcome{BookingID: booking.ID, Status: domain.PaymentStatusErrored}
		}
		s.HandlePaymentOutcome(ctx, outcome)
	case <-timer.C:
		s.log.WithFields(logrus.Fields{"booking_id": booking.ID}).Warn("payment deadline exceeded, failing booking")
		s.HandlePaymentOutcome(ctx, domain.PaymentOutcome{
			BookingID: booking.ID,
			Status:    domain.PaymentStatusErrored,
		})
	}
}

// HandlePaymentOutcome applies one terminal payment result to the ledger.
// The guarded transition makes it idempotent: a duplicate outcome for an
// already-settled booking is logged and produces no second release or
// notification.
func (s *BookingSaga) HandlePaymentOutcome(ctx context.Context, outcome domain.PaymentOutcome) {
	to := domain.BookingStatusFailed
	kind := domain.NotificationPaymentFailed
	if outcome.Status == domain.PaymentStatusSucceeded {
		to = domain.BookingStatusConfirmed
		kind = domain.NotificationBookingConfirmed
	}

	updated, applied, err := s.bookings.Transition(ctx, outcome.BookingID,
		[]domain.BookingStatus{domain.BookingStatusAwaitingPayment}, to)
	if err != nil {
		s.log.WithFields(logrus.Fields{"booking_id": outcome.BookingID}).
			WithError(err).Error("failed to settle booking")
		return
	}
	if !applied {
		fields := logrus.Fields{
			"booking_id": outcome.BookingID,
			"status":     updated.Status,
		}
		if updated.Status.IsTerminal() {
			s.log.WithFields(fields).Info("ignoring payment outcome for settled booking")
		} else {
			s.log.WithFields(fields).Warn("payment outcome for a booking that never reached settlement")
		}
		return
	}

	s.releaseLock(ctx, updated)
	s.notifier.Notify(notificationFor(updated, kind))
	s.log.WithFields(logrus.Fields{
		"booking_id": updated.ID,
		"status":     updated.Status,
		"attempt_id": outcome.AttemptID,
	}).Info("booking settled")
}

// Cancel is accepted only while the booking is PENDING or AWAITING_PAYMENT.
// Cancelling a settled booking is rejected, not silently ignored.
func (s *BookingSaga) Cancel(ctx context.Context, bookingID string) (*domain.Booking, error) {
	updated, applied, err := s.bookings.Transition(ctx, bookingID,
		domain.CancellableStatuses(), domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, fmt.Errorf("%w: booking %s is %s", domain.ErrNotCancellable, bookingID, updated.Status)
	}

	s.releaseLock(ctx, updated)
	s.notifier.Notify(notificationFor(updated, domain.NotificationBookingCancelled))
	s.log.WithFields(logrus.Fields{"booking_id": updated.ID}).Info("booking cancelled")
	return updated, nil
}

func (s *BookingSaga) GetStatus(ctx context.Context, bookingID string) (domain.BookingStatus, error) {
	booking, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return "", err
	}
	return booking.Status, nil
}

// ExpireOverduePayments fails every booking whose payment deadline passed
// without an outcome and frees its seat. It is the crash backstop for the
// in-process settlement timeout, and the only settlement path for rows
// stranded in PENDING by a crash. Both paths funnel through guarded
// transitions, so they cannot double-fire.
func (s *BookingSaga) ExpireOverduePayments(ctx context.Context) ([]domain.Booking, error) {
	expired, err := s.bookings.ExpireOverdueBefore(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	for i := range expired {
		b := &expired[i]
		s.releaseLock(ctx, b)
		s.notifier.Notify(notificationFor(b, domain.NotificationPaymentFailed))
		s.log.WithFields(logrus.Fields{"booking_id": b.ID}).Warn("booking expired without payment outcome")
	}
	return expired, nil
}

// Shutdown waits for in-flight settlements, bounded by ctx.
func (s *BookingSaga) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.settling.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// releaseLock compensates a terminal transition. Release is best-effort
// with bounded retries; the lock TTL reclaims the seat if the store stays
// unreachable.
func (s *BookingSaga) releaseLock(ctx context.Context, booking *domain.Booking) {
	for i := 0; i < s.releaseRetries; i++ {
		_, err := s.lock.Release(ctx, booking.FlightID, booking.SeatNumber, booking.LockToken)
		if err == nil {
			return
		}
		s.log.WithFields(logrus.Fields{
			"booking_id": booking.ID,
			"attempt":    i + 1,
		}).WithError(err).Warn("failed to release seat lock")
		if i < s.releaseRetries-1 {
			time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
		}
	}
	s.log.WithFields(logrus.Fields{"booking_id": booking.ID}).
		Error("giving up on seat lock release, TTL will reclaim it")
}

func notificationFor(b *domain.Booking, kind domain.NotificationKind) domain.NotificationEvent {
	return domain.NotificationEvent{
		Kind:       kind,
		UserID:     b.UserID,
		BookingID:  b.ID,
		Email:      b.Email,
		FlightID:   b.FlightID,
		SeatNumber: b.SeatNumber,
		Status:     string(b.Status),
	}
}

var _ BookingUseCase = (*BookingSaga)(nil)
