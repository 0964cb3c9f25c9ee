package bookings

import (
	"github.com/gin-gonic/gin"

	"cinely/internal/shared/config"
	"cinely/internal/shared/middleware"
)

// SetupBookingRoutes configures all booking-related routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.OptionalJWTAuth(cfg))
	{
		bookings.POST("", controller.CreateBooking)                // POST /api/v1/bookings
		bookings.GET("/:id", controller.GetBooking)                // GET /api/v1/bookings/:id
		bookings.POST("/:id/cancel", controller.CancelBooking)     // POST /api/v1/bookings/:id/cancel
		bookings.GET("/:id/payment-url", controller.GetPaymentURL) // GET /api/v1/bookings/:id/payment-url
	}

	users := rg.Group("/users")
	users.Use(middleware.JWTAuth(cfg))
	{
		users.GET("/bookings", controller.GetUserBookings) // GET /api/v1/users/bookings
	}
}
