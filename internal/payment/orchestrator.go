package payment

import (
	"context"
	"time"

	"github.com/Domenick1991/bookingsaga/internal/domain"
	"github.com/Domenick1991/bookingsaga/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Orchestrator drives asynchronous settlement for one booking at a time.
// Every Charge call delivers exactly one terminal PaymentOutcome on the
// returned channel: SUCCEEDED, DECLINED, or ERRORED once transient gateway
// failures exhaust the retry budget. DECLINED is a definitive provider
// answer and is never retried. The orchestrator records attempts for audit
// and touches nothing else; booking state belongs to the saga.
type Orchestrator struct {
	gateway     Gateway
	attempts    repository.PaymentAttemptRepository
	maxAttempts int
	backoff     time.Duration
	log         *logrus.Logger
}

func NewOrchestrator(gateway Gateway, attempts repository.PaymentAttemptRepository, maxAttempts int, backoff time.Duration, log *logrus.Logger) *Orchestrator {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Orchestrator{
		gateway:     gateway,
		attempts:    attempts,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		log:         log,
	}
}

func (o *Orchestrator) Charge(ctx context.Context, booking *domain.Booking) <-chan domain.PaymentOutcome {
	out := make(chan domain.PaymentOutcome, 1)
	go o.run(ctx, booking, out)
	return out
}

func (o *Orchestrator) run(ctx context.Context, booking *domain.Booking, out chan<- domain.PaymentOutcome) {
	defer close(out)

	var lastAttemptID string
	for i := 0; i < o.maxAttempts; i++ {
		attempt := &domain.PaymentAttempt{
			ID:          uuid.NewString(),
			BookingID:   booking.ID,
			AmountCents: booking.AmountCents,
		}
		if err := o.attempts.Append(ctx, attempt); err != nil {
			// Audit failure does not block settlement; the charge still runs.
			o.log.WithFields(logrus.Fields{"booking_id": booking.ID, "attempt_id": attempt.ID}).
				WithError(err).Error("failed to record payment attempt")
		}
		lastAttemptID = attempt.ID

		status, err := o.gateway.Charge(ctx, booking, attempt.ID)
		if err != nil {
			status = domain.PaymentStatusErrored
			o.log.WithFields(logrus.Fields{"booking_id": booking.ID, "attempt_id": attempt.ID, "attempt": i + 1}).
				WithError(err).Warn("payment gateway error")
		}
		if updErr := o.attempts.UpdateStatus(ctx, attempt.ID, status); updErr != nil {
			o.log.WithFields(logrus.Fields{"attempt_id": attempt.ID}).
				WithError(updErr).Error("failed to finalize payment attempt record")
		}

		if status != domain.PaymentStatusErrored {
			out <- domain.PaymentOutcome{BookingID: booking.ID, AttemptID: attempt.ID, Status: status}
			return
		}

		if i == o.maxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			out <- domain.PaymentOutcome{BookingID: booking.ID, AttemptID: attempt.ID, Status: domain.PaymentStatusErrored}
			return
		case <-time.After(time.Duration(i+1) * o.backoff):
		}
	}

	out <- domain.PaymentOutcome{BookingID: booking.ID, AttemptID: lastAttemptID, Status: domain.PaymentStatusErrored}
}
