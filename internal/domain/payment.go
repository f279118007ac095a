package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusSubmitted PaymentStatus = "SUBMITTED"
	PaymentStatusSucceeded PaymentStatus = "SUCCEEDED"
	PaymentStatusDeclined  PaymentStatus = "DECLINED"
	PaymentStatusErrored   PaymentStatus = "ERRORED"
)

// PaymentAttempt is an append-only audit record of one charge against a
// booking. Only the orchestrator writes attempts; the ledger transitions
// bookings on the outcome, never the other way round.
type PaymentAttempt struct {
	ID          string
	BookingID   string
	AmountCents int64
	Status      PaymentStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PaymentOutcome is the single terminal result the orchestrator delivers
// per Charge call: SUCCEEDED, DECLINED or ERRORED.
type PaymentOutcome struct {
	BookingID string
	AttemptID string
	Status    PaymentStatus
}
