package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tickety/marketplace-backend/internal/core/domain"
	apperrors "github.com/tickety/marketplace-backend/internal/core/errors"
	"github.com/tickety/marketplace-backend/internal/core/ports"
)

// MarketplaceService implements the business logic of the ticket
// marketplace: primary markets, resale listings and redemption. Every
// mutating operation runs in a single transaction, and funds are
// forwarded only after all ownership and status writes have been made,
// so a settlement implementation that calls back into the service
// observes finalized state.
type MarketplaceService struct {
	eventRepo   ports.EventRepository
	ticketRepo  ports.TicketRepository
	listingRepo ports.ListingRepository
	accountRepo ports.AccountRepository
	registry    ports.RegistryService
	settlement  ports.Settlement
	txManager   ports.TransactionManager
	notifier    ports.Notifier
	broadcaster ports.ActivityBroadcaster
	entrance    domain.EntranceDomain
	custodyID   uuid.UUID
	wg          sync.WaitGroup
}

var _ ports.MarketplaceService = (*MarketplaceService)(nil)

// MarketplaceServiceDeps bundles the ports the marketplace service
// depends on.
type MarketplaceServiceDeps struct {
	EventRepo   ports.EventRepository
	TicketRepo  ports.TicketRepository
	ListingRepo ports.ListingRepository
	AccountRepo ports.AccountRepository
	Registry    ports.RegistryService
	Settlement  ports.Settlement
	TxManager   ports.TransactionManager
	Notifier    ports.Notifier
	Broadcaster ports.ActivityBroadcaster
	Entrance    domain.EntranceDomain
	CustodyID   uuid.UUID
}

// NewMarketplaceService creates a new marketplace service
func NewMarketplaceService(deps MarketplaceServiceDeps) ports.MarketplaceService {
	return &MarketplaceService{
		eventRepo:   deps.EventRepo,
		ticketRepo:  deps.TicketRepo,
		listingRepo: deps.ListingRepo,
		accountRepo: deps.AccountRepo,
		registry:    deps.Registry,
		settlement:  deps.Settlement,
		txManager:   deps.TxManager,
		notifier:    deps.Notifier,
		broadcaster: deps.Broadcaster,
		entrance:    deps.Entrance,
		custodyID:   deps.CustodyID,
	}
}

// CreateEvent registers a new event and mints its tickets into
// marketplace custody. The market stays closed until the creator lists
// it via CreateTicketMarket.
func (s *MarketplaceService) CreateEvent(ctx context.Context, params ports.CreateEventParams) (*domain.Event, error) {
	eventParams := domain.EventParams{
		CreatorID:   params.CreatorID,
		Quantity:    params.Quantity,
		SaleStart:   time.Unix(params.SaleStart, 0).UTC(),
		SaleEnd:     time.Unix(params.SaleEnd, 0).UTC(),
		Name:        params.Name,
		Description: params.Description,
		Image:       params.Image,
		Banner:      params.Banner,
		Location:    params.Location,
	}

	event, err := domain.NewEvent(eventParams)
	if err != nil {
		return nil, err
	}

	var created *domain.Event
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		created, err = s.eventRepo.Create(ctx, event)
		if err != nil {
			return err
		}

		tickets, err := s.ticketRepo.CreateBatch(ctx, created.ID, created.Quantity)
		if err != nil {
			return err
		}
		for _, ticket := range tickets {
			if err := s.registry.Mint(ctx, s.custodyID, ticket.ID, s.custodyID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(domain.Activity{
		Type:    domain.ActivityEventCreated,
		Payload: created,
		EventID: created.ID,
	})

	return created, nil
}

// CreateTicketMarket opens the primary sale for an event at the given
// price. Only the event's creator may list it, and only once.
func (s *MarketplaceService) CreateTicketMarket(ctx context.Context, params ports.ListMarketParams) (*domain.Event, error) {
	var event *domain.Event
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		event, err = s.eventRepo.GetByID(ctx, params.EventID)
		if err != nil {
			return err
		}
		if !event.IsCreatedBy(params.ActorID) {
			return apperrors.ErrNotEventCreator
		}
		if err := event.List(params.Price); err != nil {
			return err
		}
		return s.eventRepo.Update(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(domain.Activity{
		Type:    domain.ActivityMarketListed,
		Payload: event,
		EventID: event.ID,
	})

	return event, nil
}

// CancelTicketMarket withdraws a listed market before any ticket has
// been sold.
func (s *MarketplaceService) CancelTicketMarket(ctx context.Context, params ports.CancelMarketParams) (*domain.Event, error) {
	var event *domain.Event
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		event, err = s.eventRepo.GetByID(ctx, params.EventID)
		if err != nil {
			return err
		}
		if !event.IsCreatedBy(params.ActorID) {
			return apperrors.ErrNotEventCreator
		}
		if err := event.Cancel(); err != nil {
			return err
		}
		if err := s.eventRepo.Update(ctx, event); err != nil {
			return err
		}

		// No ticket has been sold at this point, so every ticket is
		// still in custody and goes back to the creator.
		tickets, err := s.ticketRepo.ListByEvent(ctx, event.ID)
		if err != nil {
			return err
		}
		for _, ticket := range tickets {
			if err := s.registry.Transfer(ctx, s.custodyID, ticket.ID, s.custodyID, event.CreatorID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(domain.Activity{
		Type:    domain.ActivityMarketCancelled,
		Payload: event,
		EventID: event.ID,
	})

	return event, nil
}

// BuyEventTicket sells the next unsold primary ticket of an event to
// the buyer. The ticket is transferred and all sale counters are
// written before any funds move.
func (s *MarketplaceService) BuyEventTicket(ctx context.Context, params ports.BuyEventTicketParams) (*domain.Ticket, error) {
	// Close the market first if its sale window has ended. This runs in
	// its own transaction so the status flip survives a failed purchase.
	if err := s.refreshEventStatus(ctx, params.EventID); err != nil {
		return nil, err
	}

	var (
		ticket *domain.Ticket
		event  *domain.Event
	)
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		event, err = s.eventRepo.GetByID(ctx, params.EventID)
		if err != nil {
			return err
		}
		if !event.SaleOpen(time.Now().UTC()) {
			return apperrors.ErrEventNotListed
		}
		if event.SoldOut() {
			return apperrors.ErrNoTicketsAvailable
		}
		if event.IsCreatedBy(params.BuyerID) {
			return apperrors.ErrCreatorCannotBeBuyer
		}
		if params.Payment.LessThan(event.Price) {
			return apperrors.ErrInsufficientPayment
		}

		ticket, err = s.ticketRepo.NextUnsold(ctx, params.EventID)
		if err != nil {
			return err
		}

		ticket.MarkSold()
		if err := s.ticketRepo.Update(ctx, ticket); err != nil {
			return err
		}
		event.RecordSale()
		if err := s.eventRepo.Update(ctx, event); err != nil {
			return err
		}
		if err := s.registry.Transfer(ctx, s.custodyID, ticket.ID, s.custodyID, params.BuyerID); err != nil {
			return err
		}

		// Funds move last, after all state writes.
		memo := fmt.Sprintf("primary sale, ticket #%d", ticket.ID)
		return s.settlement.Forward(ctx, params.BuyerID, event.CreatorID, params.Payment, memo)
	})
	if err != nil {
		return nil, err
	}

	s.notify(event.CreatorID, ticket.ID,
		fmt.Sprintf("Ticket sold for %s", event.Name),
		fmt.Sprintf("Ticket #%d of '%s' was sold for %s.", ticket.ID, event.Name, params.Payment.String()))

	s.broadcast(domain.Activity{
		Type:    domain.ActivityTicketSold,
		Payload: ticket,
		EventID: event.ID,
	})

	return ticket, nil
}

// ResellTicket puts a bought ticket up for resale. The ticket moves
// into marketplace custody for the lifetime of the listing, which
// requires the seller to have approved the marketplace as an operator.
func (s *MarketplaceService) ResellTicket(ctx context.Context, params ports.ResellTicketParams) (*domain.Listing, error) {
	var listing *domain.Listing
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		ticket, err := s.ticketRepo.GetByID(ctx, params.TicketID)
		if err != nil {
			return err
		}
		if ticket.Used {
			return apperrors.ErrTicketAlreadyUsed
		}

		owner, err := s.registry.OwnerOf(ctx, params.TicketID)
		if err != nil {
			return err
		}
		if owner != params.SellerID {
			return apperrors.ErrNotOwnerOfTicket
		}

		listing, err = domain.NewListing(params.TicketID, params.SellerID, params.Price)
		if err != nil {
			return err
		}
		listing, err = s.listingRepo.Create(ctx, listing)
		if err != nil {
			return err
		}

		// Escrow: fails with ErrNotOwnerOrApproved unless the seller
		// approved the marketplace via SetApprovalForAll.
		return s.registry.Transfer(ctx, s.custodyID, params.TicketID, params.SellerID, s.custodyID)
	})
	if err != nil {
		return nil, err
	}

	ticket, terr := s.ticketRepo.GetByID(ctx, params.TicketID)
	eventID := int64(0)
	if terr == nil {
		eventID = ticket.EventID
	}
	s.broadcast(domain.Activity{
		Type:    domain.ActivityTicketListed,
		Payload: listing,
		EventID: eventID,
	})

	return listing, nil
}

// BuyTicket purchases a resale listing. The listing is deactivated and
// the ticket leaves custody before the seller is paid.
func (s *MarketplaceService) BuyTicket(ctx context.Context, params ports.BuyTicketParams) (*domain.Ticket, error) {
	var (
		ticket  *domain.Ticket
		listing *domain.Listing
	)
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		listing, err = s.listingRepo.GetActiveByTicket(ctx, params.TicketID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.ErrListingNotActive
			}
			return err
		}
		if listing.IsSoldBy(params.BuyerID) {
			return apperrors.ErrSellerCannotBeBuyer
		}
		if params.Payment.LessThan(listing.Price) {
			return apperrors.ErrInsufficientPayment
		}

		ticket, err = s.ticketRepo.GetByID(ctx, params.TicketID)
		if err != nil {
			return err
		}

		// The event's creator is barred from the resale market for
		// their own tickets, same as on the primary market.
		event, err := s.eventRepo.GetByID(ctx, ticket.EventID)
		if err != nil {
			return err
		}
		if event.IsCreatedBy(params.BuyerID) {
			return apperrors.ErrCreatorCannotBeBuyer
		}

		if err := listing.Deactivate(); err != nil {
			return err
		}
		if err := s.listingRepo.Update(ctx, listing); err != nil {
			return err
		}

		if err := s.registry.Transfer(ctx, s.custodyID, params.TicketID, s.custodyID, params.BuyerID); err != nil {
			return err
		}

		memo := fmt.Sprintf("resale, ticket #%d", params.TicketID)
		return s.settlement.Forward(ctx, params.BuyerID, listing.SellerID, params.Payment, memo)
	})
	if err != nil {
		return nil, err
	}

	s.notify(listing.SellerID, ticket.ID,
		fmt.Sprintf("Your ticket #%d was sold", ticket.ID),
		fmt.Sprintf("Your listing for ticket #%d sold for %s.", ticket.ID, params.Payment.String()))

	s.broadcast(domain.Activity{
		Type:    domain.ActivityTicketSold,
		Payload: ticket,
		EventID: ticket.EventID,
	})

	return ticket, nil
}

// CancelTicketListing withdraws an active resale listing and returns
// the ticket from custody to its seller.
func (s *MarketplaceService) CancelTicketListing(ctx context.Context, params ports.CancelListingParams) error {
	var (
		listing *domain.Listing
		eventID int64
	)
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		listing, err = s.listingRepo.GetActiveByTicket(ctx, params.TicketID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.ErrNotListedTicket
			}
			return err
		}
		if !listing.IsSoldBy(params.ActorID) {
			return apperrors.ErrOnlySellerCanCancel
		}

		if err := listing.Deactivate(); err != nil {
			return err
		}
		if err := s.listingRepo.Update(ctx, listing); err != nil {
			return err
		}

		ticket, err := s.ticketRepo.GetByID(ctx, params.TicketID)
		if err != nil {
			return err
		}
		eventID = ticket.EventID

		return s.registry.Transfer(ctx, s.custodyID, params.TicketID, s.custodyID, params.ActorID)
	})
	if err != nil {
		return err
	}

	s.broadcast(domain.Activity{
		Type:    domain.ActivityListingCancelled,
		Payload: listing,
		EventID: eventID,
	})

	return nil
}

// UseTicket redeems a ticket at the gate. The owner may redeem their
// own ticket directly; anyone else must present an entrance pass
// signed by the owner's registered key. Redemption is one-way.
func (s *MarketplaceService) UseTicket(ctx context.Context, params ports.UseTicketParams) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		ticket, err = s.ticketRepo.GetByID(ctx, params.TicketID)
		if err != nil {
			return err
		}
		if !ticket.Sold {
			return apperrors.ErrTicketNotBoughtYet
		}

		owner, err := s.registry.OwnerOf(ctx, params.TicketID)
		if err != nil {
			return err
		}

		if params.ActorID != owner {
			account, err := s.accountRepo.GetByID(ctx, owner)
			if err != nil {
				return err
			}
			if !domain.VerifyEntrancePass(account.EntranceKey, s.entrance, params.TicketID, params.Signature) {
				return apperrors.ErrNotAllowedToUseTicket
			}
		}

		if err := ticket.Redeem(); err != nil {
			return err
		}
		return s.ticketRepo.Update(ctx, ticket)
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(domain.Activity{
		Type:    domain.ActivityTicketUsed,
		Payload: ticket,
		EventID: ticket.EventID,
	})

	return ticket, nil
}

// GetEvent returns a single event.
func (s *MarketplaceService) GetEvent(ctx context.Context, eventID int64) (*domain.Event, error) {
	return s.eventRepo.GetByID(ctx, eventID)
}

// ListEvents returns a page of events, newest first.
func (s *MarketplaceService) ListEvents(ctx context.Context, params ports.ListEventsParams) ([]*domain.Event, error) {
	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.eventRepo.List(ctx, limit, params.Offset)
}

// GetEventTickets returns every ticket of an event.
func (s *MarketplaceService) GetEventTickets(ctx context.Context, eventID int64) ([]*domain.Ticket, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.ticketRepo.ListByEvent(ctx, eventID)
}

// GetMyEvents returns the events created by the account, newest first.
func (s *MarketplaceService) GetMyEvents(ctx context.Context, creatorID uuid.UUID) ([]*domain.Event, error) {
	return s.eventRepo.ListByCreator(ctx, creatorID)
}

// GetMyTickets returns the tickets currently owned by the account.
func (s *MarketplaceService) GetMyTickets(ctx context.Context, ownerID uuid.UUID) ([]*domain.Ticket, error) {
	ids, err := s.registry.TicketsOf(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	tickets := make([]*domain.Ticket, 0, len(ids))
	for _, id := range ids {
		ticket, err := s.ticketRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, nil
}

// GetListing returns the active resale listing for a ticket.
func (s *MarketplaceService) GetListing(ctx context.Context, ticketID int64) (*domain.Listing, error) {
	listing, err := s.listingRepo.GetActiveByTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotListedTicket
		}
		return nil, err
	}
	return listing, nil
}

// ListActiveListings returns a page of active resale listings.
func (s *MarketplaceService) ListActiveListings(ctx context.Context, limit, offset int) ([]*domain.Listing, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.listingRepo.ListActive(ctx, limit, offset)
}

// refreshEventStatus closes a listed event whose sale window has ended.
func (s *MarketplaceService) refreshEventStatus(ctx context.Context, eventID int64) error {
	return s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByID(ctx, eventID)
		if err != nil {
			return err
		}
		if event.Status != domain.EventListed || time.Now().UTC().Before(event.SaleEnd) {
			return nil
		}
		if err := event.Close(); err != nil {
			return err
		}
		return s.eventRepo.Update(ctx, event)
	})
}

// notify sends an email notification in the background
func (s *MarketplaceService) notify(recipientID uuid.UUID, ticketID int64, subject, message string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// Use background context since the HTTP request may be done
		ctx := context.Background()

		s.notifier.Notify(ctx, ports.NotificationParams{
			RecipientID: recipientID,
			Subject:     subject,
			Message:     message,
			TicketID:    ticketID,
		})
	}()
}

// broadcast sends a real-time activity in the background
func (s *MarketplaceService) broadcast(activity domain.Activity) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_ = s.broadcaster.Broadcast(activity)
	}()
}

func (s *MarketplaceService) Shutdown() {
	s.wg.Wait()
}
