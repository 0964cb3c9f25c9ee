package bookings

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cinely/internal/catalog"
	"cinely/internal/discounts"
	"cinely/internal/shared/middleware"
	"cinely/internal/shared/utils/response"
)

type Controller struct {
	service      Service
	holdDuration time.Duration
}

func NewController(service Service, holdDuration time.Duration) *Controller {
	return &Controller{service: service, holdDuration: holdDuration}
}

// CreateBooking handles POST /api/v1/bookings
func (c *Controller) CreateBooking(ctx *gin.Context) {
	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	input, err := req.ToInput(middleware.UserIDFromContext(ctx))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request", nil, err.Error())
		return
	}

	result, err := c.service.Create(ctx.Request.Context(), input)
	if err != nil && result == nil {
		c.respondCreateError(ctx, err)
		return
	}

	resp := CreateBookingResponse{
		Booking:    NewBookingResponse(result.Booking, c.holdDuration),
		TxnRef:     result.Order.TxnRef,
		PaymentURL: result.PaymentURL,
	}

	if err != nil {
		// Any gateway failure lands here. Seats are held and the booking
		// is live; only the checkout URL is missing. 202 tells the client
		// to retry the payment URL.
		response.RespondJSON(ctx, "success", http.StatusAccepted,
			"Booking created, payment gateway unavailable, retry payment URL", resp, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Booking created successfully", resp, nil)
}

func (c *Controller) respondCreateError(ctx *gin.Context, err error) {
	var seatsErr *SeatsUnavailableError
	if errors.As(err, &seatsErr) {
		response.RespondJSON(ctx, "error", http.StatusConflict, "Some seats are unavailable",
			gin.H{"blocked_seat_ids": seatsErr.Blocked}, err.Error())
		return
	}

	var discountErr *discounts.DiscountError
	if errors.As(err, &discountErr) {
		response.RespondJSON(ctx, "error", http.StatusUnprocessableEntity, "Discount code rejected",
			gin.H{"code": discountErr.Code, "reason": discountErr.Reason}, err.Error())
		return
	}

	switch {
	case errors.Is(err, ErrInvalidState):
		response.RespondJSON(ctx, "error", http.StatusConflict, "Showtime is not open for booking", nil, err.Error())
	case isNotFound(err):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Resource not found", nil, err.Error())
	default:
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to create booking", nil, err.Error())
	}
}

// GetBooking handles GET /api/v1/bookings/:id
func (c *Controller) GetBooking(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, err.Error())
		return
	}

	booking, err := c.service.GetBooking(ctx.Request.Context(), bookingID)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Booking not found", nil, err.Error())
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get booking", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking retrieved successfully",
		NewBookingResponse(booking, c.holdDuration), nil)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel
func (c *Controller) CancelBooking(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, err.Error())
		return
	}

	err = c.service.Cancel(ctx.Request.Context(), bookingID, middleware.UserIDFromContext(ctx))
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Booking not found", nil, err.Error())
		case errors.Is(err, ErrNotOwner):
			response.RespondJSON(ctx, "error", http.StatusForbidden, "Booking belongs to another user", nil, err.Error())
		case errors.Is(err, ErrInvalidState):
			response.RespondJSON(ctx, "error", http.StatusConflict, "Booking can no longer be cancelled", nil, err.Error())
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to cancel booking", nil, err.Error())
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking cancelled successfully", nil, nil)
}

// GetPaymentURL handles GET /api/v1/bookings/:id/payment-url
func (c *Controller) GetPaymentURL(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, err.Error())
		return
	}

	url, err := c.service.PaymentURL(ctx.Request.Context(), bookingID)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Booking not found", nil, err.Error())
		case errors.Is(err, ErrInvalidState):
			response.RespondJSON(ctx, "error", http.StatusConflict, "Booking is no longer payable", nil, err.Error())
		case errors.Is(err, ErrGatewayTimeout):
			response.RespondJSON(ctx, "error", http.StatusServiceUnavailable, "Payment gateway unavailable, retry shortly", nil, err.Error())
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get payment URL", nil, err.Error())
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payment URL created",
		gin.H{"payment_url": url}, nil)
}

// GetUserBookings handles GET /api/v1/users/bookings
func (c *Controller) GetUserBookings(ctx *gin.Context) {
	userID := middleware.UserIDFromContext(ctx)
	if userID == nil {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return
	}

	list, err := c.service.ListUserBookings(ctx.Request.Context(), *userID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list bookings", nil, err.Error())
		return
	}

	responses := make([]BookingResponse, 0, len(list))
	for i := range list {
		responses = append(responses, NewBookingResponse(&list[i], c.holdDuration))
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved successfully", responses, nil)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrBookingNotFound) || errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, catalog.ErrShowtimeNotFound)
}
