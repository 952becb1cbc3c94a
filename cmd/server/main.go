package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"settlement/internal/app"
	"settlement/internal/config"
	"settlement/internal/handler"
	internalRedis "settlement/internal/redis"
	"settlement/internal/repository/postgres"
	"settlement/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation. Redis is optional:
	// the payment cache and idempotency replay degrade gracefully without it.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Printf("redis unavailable, cache disabled: %v", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Println("Connected to Redis")
	}

	// Wire dependencies.
	server, reconciler := wireServer(db, redisClient, nrApp, cfg)

	// Run the reconciliation sweep in the background.
	reconcileCtx, reconcileCancel := context.WithCancel(context.Background())
	defer reconcileCancel()
	go reconciler.Run(reconcileCtx, cfg.Settlement.ReconcileInterval)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server plus the
// background reconciler.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *service.ReconcilerService) {
	// Initialize repositories.
	paymentRepo := postgres.NewPaymentRepository(db)
	rideRepo := postgres.NewRideRepository(db)
	accountRepo := postgres.NewAccountRepository(db)
	transferRepo := postgres.NewTransferRepository(db)
	captainRepo := postgres.NewCaptainRepository(db)
	customerRepo := postgres.NewCustomerRepository(db)

	// Initialize the optional payment cache.
	var cache internalRedis.PaymentCache
	if redisClient != nil {
		cache = internalRedis.NewPaymentCacheStore(redisClient)
	}

	// Initialize services.
	settingsStore := service.NewSettingsStore(service.Settings{
		CommissionRate:      cfg.Settlement.CommissionRate,
		FixedFee:            cfg.Settlement.FixedFee,
		PercentageFee:       cfg.Settlement.PercentageFee,
		MinPaymentAmount:    cfg.Settlement.MinPaymentAmount,
		MaxPaymentAmount:    cfg.Settlement.MaxPaymentAmount,
		SupportedCurrencies: cfg.Settlement.SupportedCurrencies,
		CacheTTL:            cfg.Settlement.CacheTTL,
	})
	settlementService := service.NewSettlementService(
		paymentRepo, rideRepo, accountRepo, transferRepo, captainRepo, customerRepo,
		cache, settingsStore, cfg.Settlement.AdminOwnerID,
	)
	disputeService := service.NewDisputeService(paymentRepo)
	analyticsService := service.NewAnalyticsService(paymentRepo)
	accountService := service.NewAccountService(accountRepo, settingsStore, cfg.Settlement.AdminOwnerID)
	reconciler := service.NewReconcilerService(paymentRepo, settlementService, cfg.Settlement.ReconcileGrace)

	// Initialize handlers.
	paymentHandler := handler.NewPaymentHandler(settlementService, disputeService, analyticsService)
	accountHandler := handler.NewAccountHandler(accountService)
	adminHandler := handler.NewAdminHandler(settingsStore, reconciler)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		PaymentHandler: paymentHandler,
		AccountHandler: accountHandler,
		AdminHandler:   adminHandler,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, reconciler
}
