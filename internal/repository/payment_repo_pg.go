package repository

import (
	"context"

	"github.com/Domenick1991/bookingsaga/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentAttemptRepository is append-only: attempts are inserted when
// submitted and their status is finalized once; nothing here ever touches
// booking rows.
type PaymentAttemptRepository interface {
	Append(ctx context.Context, attempt *domain.PaymentAttempt) error
	UpdateStatus(ctx context.Context, attemptID string, status domain.PaymentStatus) error
	ListByBooking(ctx context.Context, bookingID string) ([]domain.PaymentAttempt, error)
}

type PGPaymentAttemptRepository struct {
	db *pgxpool.Pool
}

func NewPaymentAttemptRepository(db *pgxpool.Pool) PaymentAttemptRepository {
	return &PGPaymentAttemptRepository{db: db}
}

func (r *PGPaymentAttemptRepository) Append(ctx context.Context, attempt *domain.PaymentAttempt) error {
	attempt.Status = domain.PaymentStatusSubmitted
	return r.db.QueryRow(ctx, `INSERT INTO payment_attempts (id, booking_id, amount_cents, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		attempt.ID, attempt.BookingID, attempt.AmountCents, attempt.Status).
		Scan(&attempt.CreatedAt, &attempt.UpdatedAt)
}

func (r *PGPaymentAttemptRepository) UpdateStatus(ctx context.Context, attemptID string, status domain.PaymentStatus) error {
	_, err := r.db.Exec(ctx, `UPDATE payment_attempts SET status=$1, updated_at=now() WHERE id=$2`, status, attemptID)
	return err
}

func (r *PGPaymentAttemptRepository) ListByBooking(ctx context.Context, bookingID string) ([]domain.PaymentAttempt, error) {
	rows, err := r.db.Query(ctx, `SELECT id, booking_id, amount_cents, status, created_at, updated_at
		FROM payment_attempts WHERE booking_id=$1 ORDER BY created_at`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []domain.PaymentAttempt
	for rows.Next() {
		var a domain.PaymentAttempt
		if err := rows.Scan(&a.ID, &a.BookingID, &a.AmountCents, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

var _ PaymentAttemptRepository = (*PGPaymentAttemptRepository)(nil)
