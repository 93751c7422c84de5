package routes

import (
	"net/http"
	"time"

	"stagepass/internal/analytics"
	"stagepass/internal/bookings"
	"stagepass/internal/events"
	"stagepass/internal/notifications"
	"stagepass/internal/payments"
	"stagepass/internal/pricing"
	"stagepass/internal/shared/config"
	"stagepass/internal/shared/database"
	"stagepass/pkg/cache"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Router holds all route dependencies
type Router struct {
	config   *config.Config
	db       *database.DB
	hub      *notifications.Hub
	producer notifications.Producer
	email    notifications.EmailService

	eventService events.Service
}

// NewRouter creates a new router instance. producer and email may be nil
// when the corresponding transports are disabled.
func NewRouter(
	cfg *config.Config,
	db *database.DB,
	hub *notifications.Hub,
	producer notifications.Producer,
	email notifications.EmailService,
) *Router {
	return &Router{
		config:   cfg,
		db:       db,
		hub:      hub,
		producer: producer,
		email:    email,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	registerValidators()

	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Events first: bookings and analytics depend on the event service.
		r.setupEventRoutes(api)
		r.setupBookingRoutes(api)
		r.setupAnalyticsRoutes(api)
		r.setupStreamRoutes(api)
	}
}

// registerValidators adds the seat identifier format check ("A1".."Z99",
// no leading zeros) to the binding validator.
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("seatid", func(fl validator.FieldLevel) bool {
			_, _, ok := events.ParseSeatID(fl.Field().String())
			return ok
		})
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "stagepass-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "stagepass-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}

func (r *Router) setupEventRoutes(rg *gin.RouterGroup) {
	eventRepo := events.NewRepository(r.db.GetPostgreSQL())
	cacheService := cache.NewService(r.db.GetRedis())
	demandClient := pricing.NewDemandClient(r.config.Pricing)

	r.eventService = events.NewService(eventRepo, demandClient, cacheService, r.config)
	eventController := events.NewController(r.eventService)

	events.SetupEventRoutes(rg, eventController)
}

func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	bookingRepo := bookings.NewRepository(r.db.GetPostgreSQL())
	eventRepo := events.NewRepository(r.db.GetPostgreSQL())
	verifier := payments.NewVerifier(r.config.Payments)
	demandClient := pricing.NewDemandClient(r.config.Pricing)

	fanout := notifications.NewFanout(r.hub, r.producer, r.email, bookingRepo, r.eventService)

	bookingService := bookings.NewService(bookingRepo, eventRepo, verifier, demandClient, fanout, r.config)
	bookingController := bookings.NewController(bookingService)

	bookings.SetupBookingRoutes(rg, bookingController)
}

func (r *Router) setupAnalyticsRoutes(rg *gin.RouterGroup) {
	analyticsRepo := analytics.NewRepository(r.db.GetPostgreSQL())
	cacheService := cache.NewService(r.db.GetRedis())
	analyticsService := analytics.NewService(analyticsRepo, cacheService, r.config)
	analyticsController := analytics.NewController(analyticsService)

	analytics.SetupAnalyticsRoutes(rg, analyticsController)
}

func (r *Router) setupStreamRoutes(rg *gin.RouterGroup) {
	notifications.SetupStreamRoutes(rg, r.hub)
}
