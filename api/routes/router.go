// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cinely/internal/bookings"
	"cinely/internal/catalog"
	"cinely/internal/discounts"
	"cinely/internal/notifications"
	"cinely/internal/payments"
	"cinely/internal/seats"
	"cinely/internal/shared/config"
	"cinely/internal/shared/database"
	"cinely/internal/shared/txn"
	"cinely/internal/tickets"
	"cinely/pkg/cache"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	producer notifications.Producer

	// Shared across route groups once built
	bookingService bookings.Service
	seatService    seats.Service
	catalogRepo    catalog.Repository
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, producer notifications.Producer) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		producer: producer,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	r.buildServices()

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupCatalogRoutes(api)
		r.setupBookingRoutes(api)
		r.setupPaymentRoutes(api)
	}
}

// BookingService exposes the lifecycle service, used by main to run the
// expiration sweeper against the same instance the routes use.
func (r *Router) BookingService() bookings.Service {
	return r.bookingService
}

// buildServices wires repositories and services in dependency order
func (r *Router) buildServices() {
	gormDB := r.db.GetPostgreSQL()
	transactor := txn.NewTransactor(gormDB)

	var cacheService cache.Service
	if r.db.GetRedisClient() != nil {
		cacheService = cache.NewService(r.db.GetRedisClient())
	}

	r.catalogRepo = catalog.NewRepository(gormDB)
	r.seatService = seats.NewService(seats.NewRepository(gormDB), cacheService, r.config.Redis.SeatSnapshotTTL)

	discountService := discounts.NewService(discounts.NewRepository(gormDB))
	ticketService := tickets.NewService(tickets.NewRepository(gormDB))
	gateway := payments.NewGatewayClient(r.config.Payment)

	r.bookingService = bookings.NewService(
		bookings.NewRepository(gormDB),
		r.seatService,
		discountService,
		ticketService,
		r.catalogRepo,
		gateway,
		transactor,
		r.config.Booking.HoldDuration,
		r.config.Booking.SweepBatchSize,
	)
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "cinely-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "cinely-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}

// setupCatalogRoutes configures public showtime browse routes
func (r *Router) setupCatalogRoutes(rg *gin.RouterGroup) {
	catalogService := catalog.NewService(r.catalogRepo, r.seatService)
	catalogController := catalog.NewController(catalogService)

	catalog.SetupCatalogRoutes(rg, catalogController)
}

// setupBookingRoutes configures booking lifecycle routes
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	bookingController := bookings.NewController(r.bookingService, r.config.Booking.HoldDuration)

	bookings.SetupBookingRoutes(rg, bookingController, r.config)
}

// setupPaymentRoutes configures payment callback routes
func (r *Router) setupPaymentRoutes(rg *gin.RouterGroup) {
	gormDB := r.db.GetPostgreSQL()
	transactor := txn.NewTransactor(gormDB)
	ticketService := tickets.NewService(tickets.NewRepository(gormDB))

	paymentService := payments.NewService(r.bookingService, ticketService, r.producer, transactor)
	paymentController := payments.NewController(paymentService)

	payments.SetupPaymentRoutes(rg, paymentController)
}
