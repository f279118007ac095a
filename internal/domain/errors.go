package domain

import "errors"

var (
	// ErrSeatUnavailable means another valid holder owns the seat lock.
	// The caller should pick a different seat, not retry this one.
	ErrSeatUnavailable = errors.New("seat is unavailable")

	// ErrValidation covers bad user/flight/seat references. Not retried.
	ErrValidation = errors.New("validation error")

	// ErrLockStoreUnavailable means the lock store could not be reached.
	// Acquisition fails closed: no booking proceeds without a confirmed lock.
	ErrLockStoreUnavailable = errors.New("lock store unavailable")

	ErrBookingNotFound = errors.New("booking not found")

	// ErrNotCancellable is returned for a cancel against a booking that is
	// already in a terminal state.
	ErrNotCancellable = errors.New("booking is not cancellable")
)
