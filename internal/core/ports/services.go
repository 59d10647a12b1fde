package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tickety/marketplace-backend/internal/core/domain"
)

// AuthService defines the port for authentication business logic.
type AuthService interface {
	Register(ctx context.Context, fullName, email, password string) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (*domain.Account, error)
	GetAccount(ctx context.Context, accountID uuid.UUID) (*domain.Account, error)
	RegisterEntranceKey(ctx context.Context, accountID uuid.UUID, key []byte) error
}

// WalletService defines the port for account funds.
type WalletService interface {
	Deposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)
	Balance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
}

// RegistryService defines the port for the ticket ownership registry.
// It enforces mint authorization and transfer permission; marketplace
// business rules live above it.
type RegistryService interface {
	Mint(ctx context.Context, caller uuid.UUID, ticketID int64, recipient uuid.UUID) error
	Transfer(ctx context.Context, caller uuid.UUID, ticketID int64, from, to uuid.UUID) error
	SetApprovalForAll(ctx context.Context, owner, operator uuid.UUID, approved bool) error
	OwnerOf(ctx context.Context, ticketID int64) (uuid.UUID, error)
	TicketsOf(ctx context.Context, ownerID uuid.UUID) ([]int64, error)
}

// Settlement defines the port for moving funds between accounts once an
// exchange of ownership has been finalized. Implementations must not be
// trusted to behave; services call Forward only after all state writes
// for the operation are complete.
type Settlement interface {
	Forward(ctx context.Context, from, to uuid.UUID, amount decimal.Decimal, memo string) error
}

// CreateEventParams defines the required input for creating a new event.
type CreateEventParams struct {
	CreatorID   uuid.UUID
	Quantity    int32
	SaleStart   int64
	SaleEnd     int64
	Name        string
	Description string
	Image       string
	Banner      string
	Location    string
}

// ListMarketParams defines the input for opening a primary ticket market.
type ListMarketParams struct {
	EventID int64
	ActorID uuid.UUID
	Price   decimal.Decimal
}

// CancelMarketParams defines the input for withdrawing a primary market.
type CancelMarketParams struct {
	EventID int64
	ActorID uuid.UUID
}

// BuyEventTicketParams defines the input for a primary purchase.
type BuyEventTicketParams struct {
	EventID int64
	BuyerID uuid.UUID
	Payment decimal.Decimal
}

// ResellTicketParams defines the input for listing an owned ticket.
type ResellTicketParams struct {
	TicketID int64
	SellerID uuid.UUID
	Price    decimal.Decimal
}

// BuyTicketParams defines the input for a resale purchase.
type BuyTicketParams struct {
	TicketID int64
	BuyerID  uuid.UUID
	Payment  decimal.Decimal
}

// CancelListingParams defines the input for cancelling a resale listing.
type CancelListingParams struct {
	TicketID int64
	ActorID  uuid.UUID
}

// UseTicketParams defines the input for redeeming a ticket at the gate.
// Signature is an entrance pass produced by the ticket owner's key.
type UseTicketParams struct {
	TicketID  int64
	ActorID   uuid.UUID
	Signature []byte
}

// ListEventsParams defines the input for browsing events.
type ListEventsParams struct {
	Limit  int
	Offset int
}

// NotificationParams defines the input for sending a notification.
type NotificationParams struct {
	RecipientID uuid.UUID
	Subject     string
	Message     string
	TicketID    int64
}

// MarketplaceService defines the core business operations of the
// ticket marketplace.
type MarketplaceService interface {
	CreateEvent(ctx context.Context, params CreateEventParams) (*domain.Event, error)
	CreateTicketMarket(ctx context.Context, params ListMarketParams) (*domain.Event, error)
	CancelTicketMarket(ctx context.Context, params CancelMarketParams) (*domain.Event, error)
	BuyEventTicket(ctx context.Context, params BuyEventTicketParams) (*domain.Ticket, error)
	ResellTicket(ctx context.Context, params ResellTicketParams) (*domain.Listing, error)
	BuyTicket(ctx context.Context, params BuyTicketParams) (*domain.Ticket, error)
	CancelTicketListing(ctx context.Context, params CancelListingParams) error
	UseTicket(ctx context.Context, params UseTicketParams) (*domain.Ticket, error)

	GetEvent(ctx context.Context, eventID int64) (*domain.Event, error)
	ListEvents(ctx context.Context, params ListEventsParams) ([]*domain.Event, error)
	GetEventTickets(ctx context.Context, eventID int64) ([]*domain.Ticket, error)
	GetMyEvents(ctx context.Context, creatorID uuid.UUID) ([]*domain.Event, error)
	GetMyTickets(ctx context.Context, ownerID uuid.UUID) ([]*domain.Ticket, error)
	GetListing(ctx context.Context, ticketID int64) (*domain.Listing, error)
	ListActiveListings(ctx context.Context, limit, offset int) ([]*domain.Listing, error)
	Shutdown()
}

// Notifier defines the port for sending asynchronous notifications.
type Notifier interface {
	Notify(ctx context.Context, params NotificationParams)
}

// ActivityBroadcaster defines the port for pushing real-time
// marketplace activity to connected clients.
type ActivityBroadcaster interface {
	Broadcast(activity domain.Activity) error
}
