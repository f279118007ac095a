package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	testCases := []struct {
		name    string
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{"pending to awaiting payment", BookingStatusPending, BookingStatusAwaitingPayment, true},
		{"pending to cancelled", BookingStatusPending, BookingStatusCancelled, true},
		{"pending expired to failed", BookingStatusPending, BookingStatusFailed, true},
		{"pending straight to confirmed", BookingStatusPending, BookingStatusConfirmed, false},
		{"awaiting payment to confirmed", BookingStatusAwaitingPayment, BookingStatusConfirmed, true},
		{"awaiting payment to failed", BookingStatusAwaitingPayment, BookingStatusFailed, true},
		{"awaiting payment to cancelled", BookingStatusAwaitingPayment, BookingStatusCancelled, true},
		{"confirmed is terminal", BookingStatusConfirmed, BookingStatusCancelled, false},
		{"failed is terminal", BookingStatusFailed, BookingStatusAwaitingPayment, false},
		{"cancelled is terminal", BookingStatusCancelled, BookingStatusConfirmed, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, BookingStatusPending.IsTerminal())
	assert.False(t, BookingStatusAwaitingPayment.IsTerminal())
	assert.True(t, BookingStatusConfirmed.IsTerminal())
	assert.True(t, BookingStatusFailed.IsTerminal())
	assert.True(t, BookingStatusCancelled.IsTerminal())
}

func TestCancellableStatuses(t *testing.T) {
	for _, s := range CancellableStatuses() {
		assert.False(t, s.IsTerminal())
	}
}
