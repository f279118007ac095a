package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/Domenick1991/bookingsaga/internal/domain"
	"github.com/Domenick1991/bookingsaga/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type reserveRequest struct {
	UserID     int64  `json:"user_id"`
	FlightID   int64  `json:"flight_id"`
	SeatNumber string `json:"seat_number"`
}

type bookingResponse struct {
	BookingID    string `json:"booking_id"`
	Status       string `json:"status"`
	FlightID     int64  `json:"flight_id"`
	SeatNumber   string `json:"seat_number"`
	AmountCents  int64  `json:"amount_cents"`
	PaymentDueAt string `json:"payment_due_at"`
}

type statusResponse struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.reserve)
	router.DELETE("/:id", h.cancel)
	router.GET("/:id/status", h.status)
}

func (h *BookingHandler) reserve(c *gin.Context) {
	var req reserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.service.Reserve(c.Request.Context(), booking.ReserveInput{
		UserID:     req.UserID,
		FlightID:   req.FlightID,
		SeatNumber: req.SeatNumber,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toResponse(b))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	b, err := h.service.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResponse(b))
}

func (h *BookingHandler) status(c *gin.Context) {
	id := c.Param("id")
	status, err := h.service.GetStatus(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, statusResponse{BookingID: id, Status: string(status)})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrSeatUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotCancellable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrLockStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func toResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		BookingID:    b.ID,
		Status:       string(b.Status),
		FlightID:     b.FlightID,
		SeatNumber:   b.SeatNumber,
		AmountCents:  b.AmountCents,
		PaymentDueAt: b.PaymentDueAt.Format(time.RFC3339),
	}
}
