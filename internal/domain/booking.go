package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending         BookingStatus = "PENDING"
	BookingStatusAwaitingPayment BookingStatus = "AWAITING_PAYMENT"
	BookingStatusConfirmed       BookingStatus = "CONFIRMED"
	BookingStatusFailed          BookingStatus = "FAILED"
	BookingStatusCancelled       BookingStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is permitted from s.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusConfirmed, BookingStatusFailed, BookingStatusCancelled:
		return true
	}
	return false
}

// CancellableStatuses are the states from which an explicit cancel is
// accepted. Cancel from anywhere else is an error, not a no-op.
func CancellableStatuses() []BookingStatus {
	return []BookingStatus{BookingStatusPending, BookingStatusAwaitingPayment}
}

// CanTransition encodes the booking state machine:
//
//	PENDING          -> AWAITING_PAYMENT | FAILED | CANCELLED
//	AWAITING_PAYMENT -> CONFIRMED | FAILED | CANCELLED
//
// PENDING reaches FAILED only through the expiry sweep, for rows stranded
// by a crash before the payment window opened.
func CanTransition(from, to BookingStatus) bool {
	switch from {
	case BookingStatusPending:
		return to == BookingStatusAwaitingPayment || to == BookingStatusFailed || to == BookingStatusCancelled
	case BookingStatusAwaitingPayment:
		return to == BookingStatusConfirmed || to == BookingStatusFailed || to == BookingStatusCancelled
	}
	return false
}

// Booking is the ledger record of one reservation attempt. It is mutated
// only through guarded ledger transitions issued by the saga; the lock token
// that secured the seat is retained so the lock can be released safely after
// expiry and re-acquisition by another holder.
type Booking struct {
	ID               string
	UserID           int64
	FlightID         int64
	SeatNumber       string
	Status           BookingStatus
	AmountCents      int64
	LockToken        string
	Email            string
	PaymentDueAt     time.Time
	CreatedAt        time.Time
	LastTransitionAt time.Time
}
