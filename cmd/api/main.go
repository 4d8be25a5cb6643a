package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prepline/internal/config"
	"prepline/internal/database"
	"prepline/internal/handler"
	"prepline/internal/hub"
	"prepline/internal/repository"
	"prepline/internal/router"
	"prepline/internal/service"
	"prepline/internal/timer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting prepline API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Optional AMQP mirror for external consumers of dashboard events.
	var mirror hub.Mirror
	if cfg.Rabbit.URL != "" {
		amqpMirror, err := hub.NewAMQPMirror(cfg.Rabbit.URL, cfg.Rabbit.Exchange, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to connect notification mirror, continuing without it")
		} else {
			mirror = amqpMirror
			defer amqpMirror.Close()
		}
	} else {
		logger.Info().Msg("notification mirror disabled (no RABBITMQ_URL)")
	}

	notifications := hub.New(mirror, logger)
	defer notifications.CloseAll()

	timers := timer.NewRegistry(cfg.Timer.ReadyDelay, cfg.Timer.PollInterval, logger)
	defer timers.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	statsRepo := repository.NewStatsRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)

	// Initialize services
	statsService := service.NewStatsService(statsRepo, notifications, logger)
	defer statsService.Wait()

	productService := service.NewProductService(productRepo, statsService, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, timers, notifications, statsService, logger)
	authService := service.NewAuthService(userRepo, cfg.Auth.SessionTTL, logger)

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService, logger)
	productHandler := handler.NewProductHandler(productService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	dashboardHandler := handler.NewDashboardHandler(orderService, notifications, logger)
	statsHandler := handler.NewStatsHandler(statsService, orderService, logger)

	// Initialize router
	mux := router.New(
		authHandler,
		productHandler,
		orderHandler,
		dashboardHandler,
		statsHandler,
		authService,
		logger,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
