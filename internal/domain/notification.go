package domain

type NotificationKind string

const (
	NotificationBookingCreated   NotificationKind = "booking_created"
	NotificationBookingConfirmed NotificationKind = "booking_confirmed"
	NotificationPaymentFailed    NotificationKind = "payment_failed"
	NotificationBookingCancelled NotificationKind = "booking_cancelled"
)

// NotificationEvent is a fire-and-forget status-change message. Delivery is
// at-least-once best effort and never feeds back into booking state.
type NotificationEvent struct {
	Kind       NotificationKind `json:"kind"`
	UserID     int64            `json:"user_id"`
	BookingID  string           `json:"booking_id"`
	Email      string           `json:"email"`
	FlightID   int64            `json:"flight_id"`
	SeatNumber string           `json:"seat_number"`
	Status     string           `json:"status"`
}
