// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"cinebook/internal/bookings"
	"cinebook/internal/layouts"
	"cinebook/internal/notifications"
	"cinebook/internal/realtime"
	"cinebook/internal/shared/config"
	"cinebook/internal/shared/database"
	"cinebook/internal/shows"
	"cinebook/internal/theaters"
	"cinebook/internal/users"
	"cinebook/pkg/cache"
	"cinebook/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	cache     cache.Service
	publisher realtime.Publisher
	notifier  notifications.Service
	scheduler *shows.ExpirationScheduler
	log       *logger.Logger

	// services shared across feature wiring
	layoutService  layouts.Service
	theaterService theaters.Service
	showService    shows.Service
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	db *database.DB,
	cacheService cache.Service,
	publisher realtime.Publisher,
	notifier notifications.Service,
	scheduler *shows.ExpirationScheduler,
	log *logger.Logger,
) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		cache:     cacheService,
		publisher: publisher,
		notifier:  notifier,
		scheduler: scheduler,
		log:       log,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Layouts first: theaters and shows take its service.
		r.setupLayoutRoutes(api)
		r.setupTheaterRoutes(api)
		r.setupShowRoutes(api)
		r.setupBookingRoutes(api)
	}
}

func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "cinebook-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "cinebook-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}

func (r *Router) setupLayoutRoutes(rg *gin.RouterGroup) {
	layoutRepo := layouts.NewRepository(r.db.GetPostgreSQL())
	r.layoutService = layouts.NewService(layoutRepo)
	layoutController := layouts.NewController(r.layoutService)

	layouts.SetupLayoutRoutes(rg, layoutController)
}

func (r *Router) setupTheaterRoutes(rg *gin.RouterGroup) {
	theaterRepo := theaters.NewRepository(r.db.GetPostgreSQL())
	r.theaterService = theaters.NewService(theaterRepo, r.layoutService)
	theaterController := theaters.NewController(r.theaterService)

	theaters.SetupTheaterRoutes(rg, theaterController)
}

func (r *Router) setupShowRoutes(rg *gin.RouterGroup) {
	showRepo := shows.NewRepository(r.db.GetPostgreSQL())
	r.showService = shows.NewService(
		showRepo,
		r.theaterService,
		r.layoutService,
		r.scheduler,
		r.publisher,
		r.cache,
		r.config.Booking,
		r.log,
	)
	showController := shows.NewController(r.showService)

	shows.SetupShowRoutes(rg, showController)
}

func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	bookingRepo := bookings.NewRepository(r.db.GetPostgreSQL())
	userRepo := users.NewRepository(r.db.GetPostgreSQL())
	bookingService := bookings.NewService(
		bookingRepo,
		r.showService,
		userRepo,
		r.notifier,
		r.publisher,
		r.cache,
		r.log,
	)
	bookingController := bookings.NewController(bookingService)
	webhookHandler := bookings.NewWebhookHandler(bookingService, r.config.Stripe.WebhookSecret, r.log)

	bookings.SetupBookingRoutes(rg, bookingController, webhookHandler)
}
