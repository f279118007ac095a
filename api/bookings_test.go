package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/bookingsaga/internal/domain"
	"github.com/Domenick1991/bookingsaga/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) Reserve(ctx context.Context, input booking.ReserveInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) Cancel(ctx context.Context, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetStatus(ctx context.Context, bookingID string) (domain.BookingStatus, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).(domain.BookingStatus), args.Error(1)
}

func TestBookingHandler_reserve(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	input := booking.ReserveInput{UserID: 1, FlightID: 123, SeatNumber: "12A"}
	body, _ := json.Marshal(input)
	c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	b := &domain.Booking{
		ID:           "bk-1",
		UserID:       1,
		FlightID:     123,
		SeatNumber:   "12A",
		Status:       domain.BookingStatusAwaitingPayment,
		AmountCents:  19900,
		PaymentDueAt: time.Now().Add(90 * time.Second),
	}

	mockService.On("Reserve", c.Request.Context(), input).Return(b, nil)

	handler.reserve(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response bookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "bk-1", response.BookingID)
	assert.Equal(t, string(domain.BookingStatusAwaitingPayment), response.Status)
	assert.Equal(t, int64(19900), response.AmountCents)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_reserve_errors(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"seat unavailable", domain.ErrSeatUnavailable, http.StatusConflict},
		{"validation", fmt.Errorf("%w: no such flight", domain.ErrValidation), http.StatusBadRequest},
		{"lock store down", fmt.Errorf("%w: dial tcp", domain.ErrLockStoreUnavailable), http.StatusServiceUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := &MockBookingUseCase{}
			handler := NewBookingHandler(mockService)

			gin.SetMode(gin.TestMode)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			input := booking.ReserveInput{UserID: 1, FlightID: 123, SeatNumber: "12A"}
			body, _ := json.Marshal(input)
			c.Request = httptest.NewRequest("POST", "/bookings", bytes.NewReader(body))
			c.Request.Header.Set("Content-Type", "application/json")

			mockService.On("Reserve", c.Request.Context(), input).Return(nil, tc.err)

			handler.reserve(c)

			assert.Equal(t, tc.wantCode, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestBookingHandler_cancel(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "bk-1"}}
	c.Request = httptest.NewRequest("DELETE", "/bookings/bk-1", nil)

	b := &domain.Booking{
		ID:         "bk-1",
		UserID:     1,
		FlightID:   123,
		SeatNumber: "12A",
		Status:     domain.BookingStatusCancelled,
	}

	mockService.On("Cancel", c.Request.Context(), "bk-1").Return(b, nil)

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response bookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, string(domain.BookingStatusCancelled), response.Status)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancel_terminalRejected(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "bk-1"}}
	c.Request = httptest.NewRequest("DELETE", "/bookings/bk-1", nil)

	mockService.On("Cancel", c.Request.Context(), "bk-1").
		Return(nil, fmt.Errorf("%w: booking bk-1 is CONFIRMED", domain.ErrNotCancellable))

	handler.cancel(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_status(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "bk-1"}}
	c.Request = httptest.NewRequest("GET", "/bookings/bk-1/status", nil)

	mockService.On("GetStatus", c.Request.Context(), "bk-1").Return(domain.BookingStatusConfirmed, nil)

	handler.status(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response statusResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "bk-1", response.BookingID)
	assert.Equal(t, string(domain.BookingStatusConfirmed), response.Status)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_status_notFound(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	c.Request = httptest.NewRequest("GET", "/bookings/missing/status", nil)

	mockService.On("GetStatus", c.Request.Context(), "missing").
		Return(domain.BookingStatus(""), domain.ErrBookingNotFound)

	handler.status(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockService.AssertExpectations(t)
}
