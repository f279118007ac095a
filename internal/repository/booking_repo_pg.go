package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/bookingsaga/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	Get(ctx context.Context, id string) (*domain.Booking, error)
	// Transition applies "status := to" only while the current status is one
	// of from, in a single statement. applied=false with a nil error means
	// the guard missed: the booking exists but is past the expected state.
	Transition(ctx context.Context, id string, from []domain.BookingStatus, to domain.BookingStatus) (booking *domain.Booking, applied bool, err error)
	// ExpireOverdueBefore fails every PENDING or AWAITING_PAYMENT booking
	// whose payment deadline passed before the given instant and returns the
	// failed rows. PENDING rows are included because a crash between
	// creating the row and opening the payment window leaves them with no
	// settlement path except this sweep.
	ExpireOverdueBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

const bookingColumns = `id, user_id, flight_id, seat_number, status, amount_cents, lock_token, email, payment_due_at, created_at, last_transition_at`

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	booking.Status = domain.BookingStatusPending
	return r.db.QueryRow(ctx, `INSERT INTO bookings (id, user_id, flight_id, seat_number, status, amount_cents, lock_token, email, payment_due_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, last_transition_at`,
		booking.ID, booking.UserID, booking.FlightID, booking.SeatNumber, booking.Status,
		booking.AmountCents, booking.LockToken, booking.Email, booking.PaymentDueAt).
		Scan(&booking.CreatedAt, &booking.LastTransitionAt)
}

func (r *PGBookingRepository) Get(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) Transition(ctx context.Context, id string, from []domain.BookingStatus, to domain.BookingStatus) (*domain.Booking, bool, error) {
	// The SQL guard arbitrates concurrent writers; the state machine decides
	// which source states may reach `to` at all.
	statuses := make([]string, 0, len(from))
	for _, s := range from {
		if !domain.CanTransition(s, to) {
			continue
		}
		statuses = append(statuses, string(s))
	}

	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$3, last_transition_at=now()
		WHERE id=$1 AND status = ANY($2)
		RETURNING `+bookingColumns, id, statuses, to)
	b, err := scanBooking(row)
	if err == nil {
		return b, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	// Guard missed or unknown id; re-read to tell the two apart.
	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return current, false, nil
}

func (r *PGBookingRepository) ExpireOverdueBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	overdue := []string{string(domain.BookingStatusPending), string(domain.BookingStatusAwaitingPayment)}
	rows, err := r.db.Query(ctx, `UPDATE bookings SET status=$1, last_transition_at=now()
		WHERE status = ANY($2) AND payment_due_at <= $3
		RETURNING `+bookingColumns,
		domain.BookingStatusFailed, overdue, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expired []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		expired = append(expired, *b)
	}
	return expired, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.UserID, &b.FlightID, &b.SeatNumber, &b.Status, &b.AmountCents,
		&b.LockToken, &b.Email, &b.PaymentDueAt, &b.CreatedAt, &b.LastTransitionAt); err != nil {
		return nil, err
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
