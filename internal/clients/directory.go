package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/bookingsaga/config"
	"github.com/Domenick1991/bookingsaga/internal/domain"
)

// Directory resolves the references a reservation arrives with against the
// user and flight services. Both services are plain request/response
// collaborators; a missing reference is a validation failure, an unreachable
// service is not.
type Directory struct {
	userBaseURL   string
	flightBaseURL string
	http          *http.Client
}

type UserInfo struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type SeatInfo struct {
	FlightID   int64  `json:"flight_id"`
	SeatNumber string `json:"seat_number"`
	PriceCents int64  `json:"price_cents"`
}

func NewDirectory(cfg config.ServicesConfig) *Directory {
	return &Directory{
		userBaseURL:   cfg.UserServiceURL,
		flightBaseURL: cfg.FlightServiceURL,
		http:          &http.Client{Timeout: 5 * time.Second},
	}
}

func (d *Directory) GetUser(ctx context.Context, userID int64) (*UserInfo, error) {
	var user UserInfo
	url := fmt.Sprintf("%s/users/%d", d.userBaseURL, userID)
	if err := d.get(ctx, url, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *Directory) GetFlightSeat(ctx context.Context, flightID int64, seatNumber string) (*SeatInfo, error) {
	var seat SeatInfo
	url := fmt.Sprintf("%s/flights/%d/seats/%s", d.flightBaseURL, flightID, seatNumber)
	if err := d.get(ctx, url, &seat); err != nil {
		return nil, err
	}
	return &seat, nil
}

func (d *Directory) get(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := d.http.Do(req)
	if err != nil {
		return fmt.Errorf("directory request %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return json.NewDecoder(resp.Body).Decode(out)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrValidation, url)
	default:
		return fmt.Errorf("directory request %s: unexpected status %d", url, resp.StatusCode)
	}
}
