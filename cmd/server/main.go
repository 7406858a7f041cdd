package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rentworks/equipment-rental-backend/internal/config"
	"github.com/rentworks/equipment-rental-backend/internal/database"
	"github.com/rentworks/equipment-rental-backend/internal/gateway"
	"github.com/rentworks/equipment-rental-backend/internal/handlers"
	"github.com/rentworks/equipment-rental-backend/internal/middleware"
	"github.com/rentworks/equipment-rental-backend/internal/notifications"
	"github.com/rentworks/equipment-rental-backend/internal/services"
	"github.com/rentworks/equipment-rental-backend/pkg/contractlink"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if level, err := logrus.ParseLevel(cfg.Server.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewConnection(cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// Repositories
	bookingRepo := database.NewBookingRepository(db)
	paymentRepo := database.NewPaymentRepository(db)
	holdRepo := database.NewHoldRepository(db)
	payoutRepo := database.NewPayoutRepository(db)
	evidenceRepo := database.NewEvidenceRepository(db)
	notificationRepo := database.NewNotificationRepository(db)

	// Collaborators
	stripeGateway := gateway.NewStripeGateway(cfg.Stripe)
	signer := contractlink.NewSigner(cfg.ContractLink.Secret, cfg.ContractLink.BaseURL, cfg.ContractLink.TTL)
	notifier := notifications.NewStoreNotifier(notificationRepo, cfg.Notifications.AdminRoles, logger)

	// Services
	stateService := services.NewBookingStateService(bookingRepo, paymentRepo, logger)
	paymentService := services.NewPaymentService(paymentRepo, stateService, notifier, logger)
	holdService := services.NewHoldService(holdRepo, stateService, notifier, logger)
	disputeService := services.NewDisputeService(paymentRepo, evidenceRepo, stripeGateway, signer, notifier, logger)
	payoutService := services.NewPayoutService(payoutRepo, notifier, logger)

	reconciliation := services.NewReconciliationService(
		bookingRepo, stateService, logger,
		cfg.Reconciliation.Interval, cfg.Reconciliation.BatchSize,
	)
	if cfg.Reconciliation.Enabled {
		reconciliation.Start()
		defer reconciliation.Stop()
	}

	// Handlers
	webhookHandler := handlers.NewWebhookHandler(
		stripeGateway, paymentService, holdService, disputeService, payoutService, logger,
	)
	healthHandler := handlers.NewHealthHandler(db)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowedOrigins,
		AllowMethods: cfg.CORS.AllowedMethods,
		AllowHeaders: cfg.CORS.AllowedHeaders,
	}))

	router.GET("/health", healthHandler.Check)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/webhooks/stripe", webhookHandler.HandleStripeWebhook)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	// Wait for interrupt, then drain in-flight webhook deliveries
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Forced shutdown")
	}
}
