package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cinely/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// ListShowtimes handles GET /api/v1/showtimes
func (c *Controller) ListShowtimes(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	showtimes, err := c.service.ListUpcomingShowtimes(ctx.Request.Context(), limit, offset)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list showtimes", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Showtimes retrieved successfully", showtimes, nil)
}

// GetShowtime handles GET /api/v1/showtimes/:id
func (c *Controller) GetShowtime(ctx *gin.Context) {
	showtimeID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid showtime ID", nil, err.Error())
		return
	}

	showtime, err := c.service.GetShowtime(ctx.Request.Context(), showtimeID)
	if err != nil {
		if errors.Is(err, ErrShowtimeNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Showtime not found", nil, err.Error())
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get showtime", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Showtime retrieved successfully", showtime, nil)
}

// GetShowtimeSeats handles GET /api/v1/showtimes/:id/seats
func (c *Controller) GetShowtimeSeats(ctx *gin.Context) {
	showtimeID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid showtime ID", nil, err.Error())
		return
	}

	seats, err := c.service.ShowtimeSeats(ctx.Request.Context(), showtimeID)
	if err != nil {
		if errors.Is(err, ErrShowtimeNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Showtime not found", nil, err.Error())
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get seats", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Seats retrieved successfully", seats, nil)
}
