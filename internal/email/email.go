package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/bookingsaga/internal/domain"
	"github.com/sirupsen/logrus"
)

type Sender struct {
	log *logrus.Logger
}

func NewSender(log *logrus.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event domain.NotificationEvent) error {
	subject, body := render(event)
	// Stand-in for the SMTP integration; delivery target comes from the
	// event itself so the worker needs no user-service round trip.
	fmt.Printf("email to %s: %s\n%s\n", event.Email, subject, body)
	s.log.WithFields(logrus.Fields{
		"booking_id": event.BookingID,
		"kind":       event.Kind,
		"email":      event.Email,
	}).Info("notification email sent")
	return nil
}

func render(event domain.NotificationEvent) (subject, body string) {
	switch event.Kind {
	case domain.NotificationBookingCreated:
		subject = "Your booking is being processed"
		body = fmt.Sprintf("We are holding seat %s on flight %d for you while your payment settles. Booking reference: %s.",
			event.SeatNumber, event.FlightID, event.BookingID)
	case domain.NotificationBookingConfirmed:
		subject = "Booking confirmed"
		body = fmt.Sprintf("Seat %s on flight %d is yours. Booking reference: %s.",
			event.SeatNumber, event.FlightID, event.BookingID)
	case domain.NotificationPaymentFailed:
		subject = "Booking could not be completed"
		body = fmt.Sprintf("Payment for seat %s on flight %d did not go through and the seat has been released. Booking reference: %s.",
			event.SeatNumber, event.FlightID, event.BookingID)
	case domain.NotificationBookingCancelled:
		subject = "Booking cancelled"
		body = fmt.Sprintf("Your booking %s for seat %s on flight %d has been cancelled.",
			event.BookingID, event.SeatNumber, event.FlightID)
	default:
		subject = "Booking update"
		body = fmt.Sprintf("Booking %s is now %s.", event.BookingID, event.Status)
	}
	return subject, body
}
