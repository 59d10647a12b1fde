package http

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	mw "github.com/tickety/marketplace-backend/internal/adapters/primary/http/middleware"
	"github.com/tickety/marketplace-backend/internal/adapters/secondary/email"
	"github.com/tickety/marketplace-backend/internal/adapters/secondary/postgres"
	"github.com/tickety/marketplace-backend/internal/auth"
	"github.com/tickety/marketplace-backend/internal/core/domain"
	"github.com/tickety/marketplace-backend/internal/core/ports"
	"github.com/tickety/marketplace-backend/internal/core/services"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	pgContainer, err := pgcontainer.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		pgcontainer.WithDatabase("marketplace-test"),
		pgcontainer.WithUsername("user"),
		pgcontainer.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("could not get connection string: %v", err)
	}

	migrationsPath, err := filepath.Abs("../../../../migrations")
	if err != nil {
		log.Fatalf("could not find migrations directory: %v", err)
	}

	migrationURL := "file://" + migrationsPath
	mig, err := migrate.New(migrationURL, connStr)
	if err != nil {
		log.Fatalf("could not create migrate instance: %v", err)
	}
	if err := mig.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatalf("could not run migrations: %v", err)
	}

	testPool, err = pgxpool.New(ctx, connStr)
	if err != nil {
		log.Fatalf("could not create connection pool: %v", err)
	}

	code := m.Run()

	testPool.Close()
	if err := pgContainer.Terminate(ctx); err != nil {
		log.Fatalf("could not terminate postgres container: %v", err)
	}

	os.Exit(code)
}

// testStack bundles the wired application pieces a handler test needs.
type testStack struct {
	router             *chi.Mux
	tokenManager       *auth.TokenManager
	authService        ports.AuthService
	walletService      ports.WalletService
	marketplaceService ports.MarketplaceService
	custodyID          uuid.UUID
}

// newTestStack wires the full application against the shared test pool,
// mirroring the wiring in cmd/api.
func newTestStack(t *testing.T) *testStack {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	accountRepo := postgres.NewAccountRepository(testPool)
	walletRepo := postgres.NewWalletRepository(testPool)
	eventRepo := postgres.NewEventRepository(testPool)
	ticketRepo := postgres.NewTicketRepository(testPool)
	registryRepo := postgres.NewRegistryRepository(testPool)
	listingRepo := postgres.NewListingRepository(testPool)
	txManager := postgres.NewTransactionManager(testPool)

	custodyID := uuid.MustParse("00000000-0000-0000-0000-00000000c0de")
	custody := &domain.Account{
		ID:        custodyID,
		FullName:  "Marketplace Custody",
		Email:     "custody@test.internal",
		CreatedAt: time.Now().UTC(),
	}
	// Ignore the conflict when an earlier test already created it.
	_, _ = accountRepo.Create(ctx, custody)

	authService := services.NewAuthService(accountRepo)
	walletService := services.NewWalletService(walletRepo, txManager)
	registryService := services.NewRegistryService(registryRepo, custodyID)
	settlement := postgres.NewLedgerSettlement(walletRepo)
	notifier := email.NewMockSMTPNotifierWithLogger(accountRepo, logger)
	marketplaceService := services.NewMarketplaceService(services.MarketplaceServiceDeps{
		EventRepo:   eventRepo,
		TicketRepo:  ticketRepo,
		ListingRepo: listingRepo,
		AccountRepo: accountRepo,
		Registry:    registryService,
		Settlement:  settlement,
		TxManager:   txManager,
		Notifier:    notifier,
		Broadcaster: noopBroadcaster{},
		Entrance: domain.EntranceDomain{
			Name:         "Tickety",
			Version:      "1",
			NetworkID:    "test",
			DeploymentID: uuid.MustParse("4f1c2b7a-9c41-4a7e-b306-1f7a90a2e001"),
		},
		CustodyID: custodyID,
	})
	t.Cleanup(marketplaceService.Shutdown)

	tokenManager := auth.NewTokenManager("test-secret", time.Hour)
	errorHandler := NewErrorHandler(logger)

	authHandler := NewAuthHandler(authService, tokenManager, errorHandler, logger)
	meHandler := NewMeHandler(authService, marketplaceService, errorHandler, logger)
	walletHandler := NewWalletHandler(walletService, errorHandler, logger)
	eventHandler := NewEventHandler(marketplaceService, errorHandler, logger)
	ticketHandler := NewTicketHandler(marketplaceService, errorHandler, logger)
	registryHandler := NewRegistryHandler(registryService, errorHandler, logger)

	router := chi.NewRouter()
	router.Route("/auth", authHandler.RegisterRoutes)
	router.Get("/events", eventHandler.HandleListEvents)
	router.Get("/events/{eventID}", eventHandler.HandleGetEvent)
	router.Get("/events/{eventID}/tickets", eventHandler.HandleEventTickets)
	router.Get("/listings", ticketHandler.HandleListListings)
	router.Group(func(r chi.Router) {
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

	return &testStack{
		router:             router,
		tokenManager:       tokenManager,
		authService:        authService,
		walletService:      walletService,
		marketplaceService: marketplaceService,
		custodyID:          custodyID,
	}
}

// noopBroadcaster discards activity broadcasts in tests.
type noopBroadcaster struct{}

func (noopBroadcaster) Broadcast(domain.Activity) error { return nil }
