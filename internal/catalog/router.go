package catalog

import (
	"github.com/gin-gonic/gin"
)

// SetupCatalogRoutes configures public browse routes
func SetupCatalogRoutes(rg *gin.RouterGroup, controller *Controller) {
	showtimes := rg.Group("/showtimes")
	{
		showtimes.GET("", controller.ListShowtimes)              // GET /api/v1/showtimes
		showtimes.GET("/:id", controller.GetShowtime)            // GET /api/v1/showtimes/:id
		showtimes.GET("/:id/seats", controller.GetShowtimeSeats) // GET /api/v1/showtimes/:id/seats
	}
}
