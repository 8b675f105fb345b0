package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"matchwell/backend/internal/auth"
	"matchwell/backend/internal/config"
	"matchwell/backend/internal/database"
	"matchwell/backend/internal/dispatch"
	"matchwell/backend/internal/handler"
	"matchwell/backend/internal/hub"
	"matchwell/backend/internal/interest"
	"matchwell/backend/internal/logging"
	"matchwell/backend/internal/mail"
	"matchwell/backend/internal/metrics"
	"matchwell/backend/internal/notify"
	"matchwell/backend/internal/ranking"
	"matchwell/backend/internal/repository"
	"matchwell/backend/internal/stats"

	// Swagger imports
	_ "matchwell/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Matchwell API
// @version         1.0
// @description     Interest lifecycle and ranked candidate feed for the Matchwell matchmaking service.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := config.LoadConfig(); err != nil {
		logging.Logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	cfg := config.AppConfig

	logging.Init("matchwell-backend", cfg.LogPretty)
	logging.SetLevel(cfg.LogLevel)

	if cfg.JWTSecret == "" {
		logging.Logger.Fatal().Msg("JWT_SECRET must be set")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logging.Logger.Fatal().Err(err).Msg("Database setup failed")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logging.Logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis not reachable, continuing")
		}
		defer rdb.Close()
	}

	// Side effects.
	streams := hub.NewHub()
	statsSink := stats.NewSink(db)
	sinks := []dispatch.Sink{m, statsSink}

	var notifications notify.Repository
	if rdb != nil {
		notifications = notify.NewRedisRepository(rdb, cfg.NotificationTTL)
	}
	sinks = append(sinks, notify.NewSink(notifications, streams))

	if brokers := cfg.Brokers(); len(brokers) > 0 {
		mailer, err := mail.NewPublisher(brokers, cfg.EmailTopic)
		if err != nil {
			logging.Logger.Warn().Err(err).Msg("Email publisher disabled")
		} else {
			defer mailer.Close()
			sinks = append(sinks, mailer)
		}
	}

	dispatcher := dispatch.New(dispatch.Config{
		Workers:   cfg.DispatchWorkers,
		QueueSize: cfg.DispatchQueueSize,
		Timeout:   cfg.DispatchTimeout,
	}, m, sinks...)

	// Core services.
	profiles := repository.NewProfileDirectory(db)
	accounts := repository.NewAccountRepository(db)
	engine := interest.NewEngine(repository.NewInterestStore(db), profiles, profiles, dispatcher)

	var ledger ranking.ReferralLedger = repository.NewReferralLedger(db)
	if rdb != nil {
		ledger = repository.NewCachedReferralLedger(ledger, rdb, cfg.ReferralCacheTTL)
	}
	feed := ranking.NewFeed(repository.NewCandidateSource(db), ledger, ranking.Policy{
		ReferralThreshold: cfg.BoostReferralThreshold,
		BoostWindow:       cfg.BoostWindow,
	})

	authHandler := handler.NewAuthHandler(accounts, cfg.JWTSecret, cfg.JWTTTL)
	interestHandler := handler.NewInterestHandler(engine, statsSink)
	feedHandler := handler.NewFeedHandler(feed)
	notificationHandler := handler.NewNotificationHandler(notifications, streams)
	adminHandler := handler.NewAdminHandler(profiles)

	router := gin.New()
	router.Use(gin.Recovery(), logging.Middleware(), m.Middleware())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes
		authRoutes := apiV1.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
		}

		protected := apiV1.Group("")
		protected.Use(auth.AuthMiddleware(cfg.JWTSecret))

		interestRoutes := protected.Group("/interests")
		{
			interestRoutes.POST("", interestHandler.Express)
			interestRoutes.GET("/received", interestHandler.ListReceived)
			interestRoutes.GET("/sent", interestHandler.ListSent)
			interestRoutes.GET("/stats", interestHandler.Stats)
			interestRoutes.GET("/check/:profileId", interestHandler.CheckMutual)
			interestRoutes.POST("/:id/respond", interestHandler.Respond)
		}

		protected.GET("/feed", feedHandler.GetFeed)

		notificationRoutes := protected.Group("/notifications")
		{
			notificationRoutes.GET("", notificationHandler.List)
			notificationRoutes.GET("/stream", notificationHandler.Stream)
		}

		// Admin routes (protected by auth and admin check)
		adminRoutes := protected.Group("/admin")
		adminRoutes.Use(auth.AdminMiddleware(accounts))
		{
			adminRoutes.PUT("/profiles/:id/approval", adminHandler.SetApproval)
		}
	}

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: router,
	}

	go func() {
		logging.Logger.Info().Str("addr", cfg.ServerAddr).Msg("Server is running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Logger.Info().Msg("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Open notification streams would otherwise hold Shutdown until the deadline.
	streams.Close()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Error().Err(err).Msg("Server shutdown failed")
	}
	if err := dispatcher.Close(ctx); err != nil {
		logging.Logger.Error().Err(err).Msg("Side effects not fully drained")
	}
}
