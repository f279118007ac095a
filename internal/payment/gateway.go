package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/bookingsaga/config"
	"github.com/Domenick1991/bookingsaga/internal/domain"
)

// Gateway is the payment provider boundary. Charge returns SUCCEEDED or
// DECLINED when the provider gave a definitive answer; any error is a
// transient gateway failure the orchestrator may retry.
type Gateway interface {
	Charge(ctx context.Context, booking *domain.Booking, attemptID string) (domain.PaymentStatus, error)
}

type HTTPGateway struct {
	baseURL string
	http    *http.Client
}

type chargeRequest struct {
	AttemptID   string `json:"attempt_id"`
	BookingID   string `json:"booking_id"`
	UserID      int64  `json:"user_id"`
	AmountCents int64  `json:"amount_cents"`
}

type chargeResponse struct {
	Status string `json:"status"`
}

func NewHTTPGateway(cfg config.ServicesConfig) *HTTPGateway {
	return &HTTPGateway{
		baseURL: cfg.PaymentServiceURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *HTTPGateway) Charge(ctx context.Context, booking *domain.Booking, attemptID string) (domain.PaymentStatus, error) {
	body, err := json.Marshal(chargeRequest{
		AttemptID:   attemptID,
		BookingID:   booking.ID,
		UserID:      booking.UserID,
		AmountCents: booking.AmountCents,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("payment gateway: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var result chargeResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return "", fmt.Errorf("payment gateway: decode response: %w", err)
		}
		if result.Status == "succeeded" {
			return domain.PaymentStatusSucceeded, nil
		}
		return domain.PaymentStatusDeclined, nil
	case resp.StatusCode == http.StatusPaymentRequired:
		return domain.PaymentStatusDeclined, nil
	default:
		return "", fmt.Errorf("payment gateway: unexpected status %d", resp.StatusCode)
	}
}

var _ Gateway = (*HTTPGateway)(nil)
