package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	httpAdapter "github.com/tickety/marketplace-backend/internal/adapters/primary/http"
	mw "github.com/tickety/marketplace-backend/internal/adapters/primary/http/middleware"
	"github.com/tickety/marketplace-backend/internal/adapters/primary/websocket"
	"github.com/tickety/marketplace-backend/internal/adapters/secondary/email"
	"github.com/tickety/marketplace-backend/internal/adapters/secondary/postgres"
	"github.com/tickety/marketplace-backend/internal/auth"
	"github.com/tickety/marketplace-backend/internal/config"
	"github.com/tickety/marketplace-backend/internal/core/domain"
	apperrors "github.com/tickety/marketplace-backend/internal/core/errors"
	"github.com/tickety/marketplace-backend/internal/core/ports"
	"github.com/tickety/marketplace-backend/internal/core/services"
	"github.com/tickety/marketplace-backend/internal/infrastructure/logging"
	"github.com/tickety/marketplace-backend/internal/infrastructure/metrics"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	// 3. Initialize Database Pool
	ctx := context.Background()
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		logger.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}

	// Apply database configuration
	poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.Database.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database connection established")

	// 4. Initialize Security & Real-time Components
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
	hub := websocket.NewHub(logger)
	go hub.Run()

	// 5. Initialize Rate Limiters
	var generalRateLimiter, authRateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		generalRateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		})

		authRateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.AuthRPS,
			BurstSize:         cfg.RateLimit.AuthBurst,
			CleanupInterval:   time.Minute,
			TTL:               5 * time.Minute,
		})
	}

	// 6. Dependency Injection (Wiring the Hexagon)

	// Error Handler
	errorHandler := httpAdapter.NewErrorHandler(logger)

	// Marketplace identity from config. Validate() already checked both
	// UUIDs parse.
	custodyID := uuid.MustParse(cfg.Marketplace.CustodyAccountID)
	entrance := domain.EntranceDomain{
		Name:         cfg.Marketplace.SystemName,
		Version:      cfg.Marketplace.SystemVersion,
		NetworkID:    cfg.Marketplace.NetworkID,
		DeploymentID: uuid.MustParse(cfg.Marketplace.DeploymentID),
	}

	// Repositories (Secondary Adapters)
	accountRepo := postgres.NewAccountRepository(pool)
	walletRepo := postgres.NewWalletRepository(pool)
	eventRepo := postgres.NewEventRepository(pool)
	ticketRepo := postgres.NewTicketRepository(pool)
	registryRepo := postgres.NewRegistryRepository(pool)
	listingRepo := postgres.NewListingRepository(pool)
	txManager := postgres.NewTransactionManager(pool)

	// The custody account must exist before the marketplace can take
	// tickets into escrow.
	if err := ensureCustodyAccount(ctx, accountRepo, custodyID); err != nil {
		logger.Error("failed to bootstrap custody account", "error", err)
		os.Exit(1)
	}

	// Notifier (Secondary Adapter)
	notifier := email.NewMockSMTPNotifierWithLogger(accountRepo, logger)

	// Services (Core)
	authService := services.NewAuthService(accountRepo)
	walletService := services.NewWalletService(walletRepo, txManager)
	registryService := services.NewRegistryService(registryRepo, custodyID)
	settlement := postgres.NewLedgerSettlement(walletRepo)
	marketplaceService := services.NewMarketplaceService(services.MarketplaceServiceDeps{
		EventRepo:   eventRepo,
		TicketRepo:  ticketRepo,
		ListingRepo: listingRepo,
		AccountRepo: accountRepo,
		Registry:    registryService,
		Settlement:  settlement,
		TxManager:   txManager,
		Notifier:    notifier,
		Broadcaster: hub,
		Entrance:    entrance,
		CustodyID:   custodyID,
	})

	// Handlers (Primary Adapters)
	authHandler := httpAdapter.NewAuthHandler(authService, tokenManager, errorHandler, logger)
	meHandler := httpAdapter.NewMeHandler(authService, marketplaceService, errorHandler, logger)
	walletHandler := httpAdapter.NewWalletHandler(walletService, errorHandler, logger)
	eventHandler := httpAdapter.NewEventHandler(marketplaceService, errorHandler, logger)
	ticketHandler := httpAdapter.NewTicketHandler(marketplaceService, errorHandler, logger)
	registryHandler := httpAdapter.NewRegistryHandler(registryService, errorHandler, logger)
	wsHandler := httpAdapter.NewWebSocketHandler(hub, tokenManager, cfg, logger)
	healthHandler := httpAdapter.NewHealthHandler(pool, hub, cfg.App.Version)

	// 7. Setup Router
	r := chi.NewRouter()

	// Global middleware
	corsOrigins := cfg.WebSocket.AllowedOrigins
	if cfg.IsDevelopment() && len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(mw.RecoveryLogger(logger))
	r.Use(metrics.Middleware)

	// Apply general rate limiting if enabled
	if generalRateLimiter != nil {
		r.Use(generalRateLimiter.Middleware)
	}

	// Health check endpoints (outside /api/v1 for standard probe paths)
	r.Get("/health", healthHandler.HandleHealth)
	r.Get("/health/live", healthHandler.HandleLiveness)
	r.Get("/health/ready", healthHandler.HandleReadiness)

	// Prometheus scrape endpoint
	r.Get("/metrics", metrics.Handler().ServeHTTP)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes with stricter rate limiting
		r.Group(func(r chi.Router) {
			if authRateLimiter != nil {
				r.Use(authRateLimiter.Middleware)
			}
			r.Route("/auth", authHandler.RegisterRoutes)
		})

		// Public browse routes
		r.Get("/events", eventHandler.HandleListEvents)
		r.Get("/events/{eventID}", eventHandler.HandleGetEvent)
		r.Get("/events/{eventID}/tickets", eventHandler.HandleEventTickets)
		r.Get("/listings", ticketHandler.HandleListListings)

		// WebSocket route (Authentication is handled inside the handler)
		r.Get("/ws", wsHandler.ServeHTTP)

		// Protected REST routes
		r.Group(func(r chi.Router) {
			r.Use(mw.JWTMiddleware(tokenManager))
			r.Route("/me", meHandler.RegisterRoutes)
			r.Route("/wallet", walletHandler.RegisterRoutes)
			r.Route("/registry", registryHandler.RegisterRoutes)

			r.Post("/events", eventHandler.HandleCreateEvent)
			r.Post("/events/{eventID}/market", eventHandler.HandleOpenMarket)
			r.Delete("/events/{eventID}/market", eventHandler.HandleCancelMarket)
			r.Post("/events/{eventID}/purchase", eventHandler.HandleBuyTicket)

			r.Route("/tickets", ticketHandler.RegisterRoutes)
		})
	})

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", "signal", sig.String())

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	// Wait for in-flight notifications and broadcasts
	marketplaceService.Shutdown()

	logger.Info("server shutdown complete")
}

// ensureCustodyAccount creates the marketplace custody account if it
// does not already exist.
func ensureCustodyAccount(ctx context.Context, accountRepo ports.AccountRepository, custodyID uuid.UUID) error {
	if _, err := accountRepo.GetByID(ctx, custodyID); err == nil {
		return nil
	} else if !errors.Is(err, apperrors.ErrAccountNotFound) {
		return err
	}

	account := &domain.Account{
		ID:        custodyID,
		FullName:  "Marketplace Custody",
		Email:     "custody@" + custodyID.String() + ".internal",
		CreatedAt: time.Now().UTC(),
	}
	if _, err := accountRepo.Create(ctx, account); err != nil && !errors.Is(err, apperrors.ErrAccountExists) {
		return err
	}
	return nil
}
