package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tickety/marketplace-backend/internal/core/domain"
)

// AccountRepository defines the port for account persistence.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	SetEntranceKey(ctx context.Context, id uuid.UUID, key []byte) error
}

// WalletRepository defines the port for the append-only funds ledger.
// Balance is derived, never stored.
type WalletRepository interface {
	Balance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
	Append(ctx context.Context, entry *domain.LedgerEntry) error
}

// EventRepository defines the port for event persistence.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) (*domain.Event, error)
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
	Update(ctx context.Context, event *domain.Event) error
	List(ctx context.Context, limit, offset int) ([]*domain.Event, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*domain.Event, error)
}

// TicketRepository defines the port for ticket persistence. Ticket ids
// are contiguous across all events; CreateBatch allocates the next run.
type TicketRepository interface {
	CreateBatch(ctx context.Context, eventID int64, quantity int32) ([]*domain.Ticket, error)
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	Update(ctx context.Context, ticket *domain.Ticket) error
	NextUnsold(ctx context.Context, eventID int64) (*domain.Ticket, error)
	ListByEvent(ctx context.Context, eventID int64) ([]*domain.Ticket, error)
}

// RegistryRepository defines the port for the ownership ledger backing
// the ticket registry.
type RegistryRepository interface {
	InsertOwner(ctx context.Context, ticketID int64, ownerID uuid.UUID) error
	GetOwner(ctx context.Context, ticketID int64) (uuid.UUID, error)
	UpdateOwner(ctx context.Context, ticketID int64, ownerID uuid.UUID) error
	SetApproval(ctx context.Context, ownerID, operatorID uuid.UUID, approved bool) error
	IsApproved(ctx context.Context, ownerID, operatorID uuid.UUID) (bool, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]int64, error)
}

// ListingRepository defines the port for resale listing persistence.
// At most one active listing may exist per ticket; Create must fail on
// a second concurrent attempt.
type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) (*domain.Listing, error)
	GetActiveByTicket(ctx context.Context, ticketID int64) (*domain.Listing, error)
	Update(ctx context.Context, listing *domain.Listing) error
	ListActive(ctx context.Context, limit, offset int) ([]*domain.Listing, error)
}

// TransactionManager defines the port for running atomic operations.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
