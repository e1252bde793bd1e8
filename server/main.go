package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cinebook/api/routes"
	"cinebook/internal/bookings"
	"cinebook/internal/notifications"
	"cinebook/internal/realtime"
	"cinebook/internal/shared/config"
	"cinebook/internal/shared/database"
	"cinebook/internal/shows"
	"cinebook/pkg/cache"
	"cinebook/pkg/logger"
	"cinebook/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to connect:", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	var cacheService cache.Service
	if db.Redis != nil {
		cacheService = cache.NewService(db.Redis)
	}

	// Realtime publisher: Pusher when configured, otherwise a no-op.
	var publisher realtime.Publisher = realtime.NoopPublisher{}
	if cfg.Pusher.Enabled {
		publisher = realtime.NewPusherPublisher(cfg.Pusher, appLogger)
		appLogger.Info("Pusher realtime publisher initialized",
			slog.String("cluster", cfg.Pusher.Cluster),
		)
	} else {
		appLogger.Info("Realtime publisher disabled, seat updates will not fan out")
	}

	// Notification pipeline: Kafka producer + consumer-group fanout
	// worker when enabled, direct realtime delivery otherwise.
	var producer notifications.Producer
	if cfg.Kafka.Enabled {
		producerConfig := notifications.DefaultProducerConfig(cfg.Kafka.Brokers, cfg.Kafka.NotificationTopic)
		producer, err = notifications.NewKafkaProducer(producerConfig)
		if err != nil {
			appLogger.Error("Failed to initialize notification producer", slog.Any("error", err))
			appLogger.Info("Continuing with direct notification delivery")
			producer = nil
		} else {
			defer producer.Close()

			consumerConfig := notifications.DefaultConsumerConfig(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, cfg.Kafka.NotificationTopic)
			consumer, err := notifications.NewKafkaConsumer(consumerConfig, publisher, appLogger)
			if err != nil {
				appLogger.Error("Failed to initialize notification consumer", slog.Any("error", err))
			} else {
				consumerCtx, consumerCancel := context.WithCancel(context.Background())
				defer consumerCancel()
				if err := consumer.Start(consumerCtx); err != nil {
					appLogger.Error("Failed to start notification consumer", slog.Any("error", err))
				} else {
					defer consumer.Stop()
					appLogger.Info("Notification consumer started",
						slog.String("topic", cfg.Kafka.NotificationTopic),
						slog.String("group", cfg.Kafka.ConsumerGroup),
					)
				}
			}
		}
	}
	notifier := notifications.NewService(producer, publisher, appLogger)

	// Expiration scheduler: one-time jobs plus the periodic safety sweep.
	gocronScheduler, err := gocron.NewScheduler()
	if err != nil {
		appLogger.Error("Failed to initialize scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	showRepo := shows.NewRepository(db.GetPostgreSQL())
	bookingRepo := bookings.NewRepository(db.GetPostgreSQL())
	expiryScheduler := shows.NewExpirationScheduler(
		gocronScheduler,
		showRepo,
		db.Redis,
		cacheService,
		publisher,
		notifier,
		bookingRepo,
		cfg.Booking,
		appLogger,
	)
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	defer schedulerCancel()
	expiryScheduler.Start(schedulerCtx)
	defer func() {
		if err := expiryScheduler.Shutdown(); err != nil {
			appLogger.Error("Error stopping scheduler", slog.Any("error", err))
		}
	}()
	appLogger.Info("Expiration scheduler started",
		slog.Duration("hold_ttl", cfg.Booking.HoldTTL),
		slog.Duration("sweep_interval", cfg.Booking.SweepInterval),
	)

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled && db.Redis != nil {
		rateLimiter = ratelimit.NewRateLimiter(db.GetRedisClient(), &ratelimit.Config{
			Enabled:         cfg.RateLimit.Enabled,
			WindowDuration:  cfg.RateLimit.WindowDuration,
			DefaultRequests: cfg.RateLimit.DefaultRequests,
			PublicRequests:  cfg.RateLimit.PublicRequests,
			BookingRequests: cfg.RateLimit.BookingRequests,
			WebhookRequests: cfg.RateLimit.WebhookRequests,
			VendorRequests:  cfg.RateLimit.VendorRequests,
			AdminRequests:   cfg.RateLimit.AdminRequests,
			HealthRequests:  cfg.RateLimit.HealthRequests,
			WhitelistedIPs:  cfg.RateLimit.WhitelistedIPs,
		})
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("booking_requests", cfg.RateLimit.BookingRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	router := setupRouter(cfg, db, cacheService, publisher, notifier, expiryScheduler, rateLimiter)

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("🚀 Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("version", cfg.APIVersion),
			slog.Bool("redis_cache", db.Redis != nil),
			slog.Bool("kafka_notifications", cfg.Kafka.Enabled),
			slog.Bool("rate_limiting", rateLimiter != nil),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

func setupRouter(
	cfg *config.Config,
	db *database.DB,
	cacheService cache.Service,
	publisher realtime.Publisher,
	notifier notifications.Service,
	scheduler *shows.ExpirationScheduler,
	rateLimiter *ratelimit.RateLimiter,
) *gin.Engine {
	engine := gin.New()
	appLogger := logger.GetDefault()

	engine.Use(RequestLoggerMiddleware(appLogger), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
	}

	appRouter := routes.NewRouter(cfg, db, cacheService, publisher, notifier, scheduler, appLogger)
	appRouter.SetupRoutes(engine)

	return engine
}

func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		l.LogHTTPRequest(c, duration)
	}
}
