package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/loiredigital/site/internal"
	"github.com/loiredigital/site/internal/billing"
	"github.com/loiredigital/site/internal/email"
	"github.com/loiredigital/site/internal/handler"
	"github.com/loiredigital/site/internal/jobs"
	"github.com/loiredigital/site/internal/metrics"
	"github.com/loiredigital/site/internal/middleware"
	"github.com/loiredigital/site/internal/repository"
	"github.com/loiredigital/site/internal/service"
	"github.com/loiredigital/site/internal/storage"
	"github.com/loiredigital/site/internal/worker"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	// Initialize repository
	repo := repository.New(db)

	// Initialize storage for archived quote emails
	var store storage.Storage
	switch cfg.StorageProvider {
	case storage.ProviderR2:
		store, err = storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		}, logger)
	default:
		store, err = storage.NewLocalStorage(storage.LocalConfig{
			BasePath: cfg.LocalStoragePath,
			BaseURL:  cfg.LocalStorageURL,
		}, logger)
	}
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}
	logger.Info("Storage ready", "provider", cfg.StorageProvider)

	// Initialize email service
	emailSvc, err := email.NewSMTPEmailService(email.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
	}, cfg.AdminEmail, logger)
	if err != nil {
		return fmt.Errorf("email service initialization failed: %w", err)
	}

	// Initialize Stripe. Without a secret key the checkout endpoints answer
	// with a clean "unavailable" error instead of failing at startup.
	var billingSvc billing.Service
	if cfg.StripeSecretKey != "" {
		billingSvc = billing.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
		logger.Info("Stripe checkout enabled")
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, checkout disabled")
	}

	// Initialize services
	intakeService := service.NewIntakeService(repo, nil, logger)

	// Initialize background worker
	var w *worker.Worker
	if cfg.WorkerEnabled {
		w, err = worker.New(repo, worker.Config{
			Concurrency:       cfg.WorkerConcurrency,
			PollInterval:      cfg.WorkerPollInterval,
			JobTimeout:        cfg.WorkerJobTimeout,
			ShutdownTimeout:   30 * time.Second,
			StaleJobThreshold: 10 * time.Minute,
		}, logger)
		if err != nil {
			return fmt.Errorf("worker initialization failed: %w", err)
		}
		w.Register(jobs.NewSendQuoteEmailHandler(repo, emailSvc, store, logger))
		w.Register(jobs.NewNotifyLeadHandler(repo, emailSvc, logger))
		w.Start(ctx)
	} else {
		logger.Warn("Background worker disabled, queued jobs will not run")
	}

	// Initialize middleware
	isSecure := cfg.Env != "development"
	securityMw := middleware.NewSecurityHeadersMiddleware(isSecure)
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	metricsAuthMw := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)

	limiter := middleware.NewRateLimiter(logger)
	sweeperDone := make(chan struct{})
	limiter.StartSweeper(sweeperDone, cfg.RateLimitSweepInterval)
	contactLimit := middleware.NewRateLimitMiddleware(limiter, cfg.ContactRateLimit, cfg.ContactRateWindow, "contact", logger)
	quoteEmailLimit := middleware.NewRateLimitMiddleware(limiter, cfg.QuoteEmailRateLimit, cfg.QuoteEmailRateWindow, "quote_email", logger)

	// Initialize handlers
	quoteHandler := handler.NewQuoteHandler(intakeService, logger)
	draftHandler := handler.NewDraftHandler(isSecure, logger)
	pricingHandler := handler.NewPricingHandler(nil, logger)
	checkoutHandler := handler.NewCheckoutHandler(repo, billingSvc, cfg.DepositPercent, cfg.BaseURL, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus metrics (basic auth when configured)
	mux.Handle("GET /metrics", metricsAuthMw.Handler(promhttp.Handler()))

	// Archived quote files, only meaningful with local storage
	if cfg.StorageProvider == storage.ProviderLocal {
		filesFS := http.FileServer(http.Dir(cfg.LocalStoragePath))
		mux.Handle("GET /files/", http.StripPrefix("/files/", filesFS))
	}

	// Pricing catalog
	mux.HandleFunc("GET /api/pricing", pricingHandler.Catalog)

	// Quote intake
	mux.Handle("POST /api/devis", contactLimit.Limit(http.HandlerFunc(quoteHandler.SubmitDevis)))
	mux.Handle("POST /api/send-quote", quoteEmailLimit.Limit(http.HandlerFunc(quoteHandler.SendQuote)))

	// Quote draft (cookie backed)
	mux.HandleFunc("GET /api/quote-draft", draftHandler.Load)
	mux.HandleFunc("PUT /api/quote-draft", draftHandler.Save)
	mux.HandleFunc("DELETE /api/quote-draft", draftHandler.Clear)

	// Stripe checkout
	mux.HandleFunc("POST /api/checkout", checkoutHandler.CreateSession)
	mux.HandleFunc("POST /api/stripe-webhook", checkoutHandler.Webhook)

	// Base middleware stack for every route
	base := middleware.Stack(
		securityMw.Handler,
		loggingMw.Handler,
		metrics.Middleware,
	)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: base(mux),
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	// Stop the worker after the server so in-flight requests can still
	// enqueue, then the sweeper.
	if w != nil {
		w.Stop()
	}
	close(sweeperDone)

	logger.Info("Graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
