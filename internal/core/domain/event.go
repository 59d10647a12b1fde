package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/tickety/marketplace-backend/internal/core/errors"
)

// Event metadata limits
const (
	MaxEventNameLength        = 255
	MaxEventDescriptionLength = 4000
	MaxEventQuantity          = 10000
)

// EventStatus represents the lifecycle state of an event's ticket market.
type EventStatus string

const (
	EventCreated   EventStatus = "CREATED"
	EventListed    EventStatus = "LISTED"
	EventActive    EventStatus = "ACTIVE"
	EventCancelled EventStatus = "CANCELLED"
)

// Event is a sellable batch of uniquely numbered tickets with shared metadata.
// Quantity and Price are immutable once the event is listed.
type Event struct {
	ID          int64
	CreatorID   uuid.UUID
	Quantity    int32
	TicketsSold int32
	Price       decimal.Decimal
	SaleStart   time.Time
	SaleEnd     time.Time
	Name        string
	Description string
	Image       string
	Banner      string
	Location    string
	Status      EventStatus
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// EventParams holds the caller-supplied attributes for a new event.
type EventParams struct {
	CreatorID   uuid.UUID
	Quantity    int32
	SaleStart   time.Time
	SaleEnd     time.Time
	Name        string
	Description string
	Image       string
	Banner      string
	Location    string
}

// NewEvent is a factory function to create a valid new event.
func NewEvent(params EventParams) (*Event, error) {
	if params.Quantity <= 0 {
		return nil, apperrors.ErrQuantityRequired
	}
	if params.Quantity > MaxEventQuantity {
		return nil, apperrors.ErrQuantityTooLarge
	}
	if params.Name == "" {
		return nil, apperrors.ErrNameRequired
	}
	if !params.SaleEnd.After(params.SaleStart) {
		return nil, apperrors.ErrInvalidSaleWindow
	}

	return &Event{
		CreatorID:   params.CreatorID,
		Quantity:    params.Quantity,
		Price:       decimal.Zero,
		SaleStart:   params.SaleStart,
		SaleEnd:     params.SaleEnd,
		Name:        params.Name,
		Description: params.Description,
		Image:       params.Image,
		Banner:      params.Banner,
		Location:    params.Location,
		Status:      EventCreated,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// List opens the primary ticket market at the given price.
// Only a freshly created event can be listed.
func (e *Event) List(price decimal.Decimal) error {
	if e.Status != EventCreated {
		return apperrors.ErrEventAlreadyListed
	}
	if !price.IsPositive() {
		return apperrors.ErrInvalidPrice
	}
	e.Price = price
	e.Status = EventListed
	e.touch()
	return nil
}

// Cancel withdraws a listed market. It is refused once any ticket has
// been sold, so cancellation never strands a buyer's ticket.
func (e *Event) Cancel() error {
	if e.Status != EventListed {
		return apperrors.ErrEventNotListed
	}
	if e.TicketsSold > 0 {
		return apperrors.ErrEventAlreadySold
	}
	e.Status = EventCancelled
	e.touch()
	return nil
}

// Close moves a listed event whose sale window has ended to ACTIVE.
func (e *Event) Close() error {
	if e.Status != EventListed {
		return apperrors.ErrEventNotListed
	}
	e.Status = EventActive
	e.touch()
	return nil
}

// SaleOpen reports whether primary tickets may be sold at the given instant.
func (e *Event) SaleOpen(now time.Time) bool {
	return e.Status == EventListed && now.Before(e.SaleEnd)
}

// SoldOut reports whether every primary ticket has been sold.
func (e *Event) SoldOut() bool {
	return e.TicketsSold >= e.Quantity
}

// RecordSale counts one primary ticket as sold.
func (e *Event) RecordSale() {
	e.TicketsSold++
	e.touch()
}

// IsCreatedBy reports whether the given account created the event.
func (e *Event) IsCreatedBy(accountID uuid.UUID) bool {
	return e.CreatorID == accountID
}

func (e *Event) touch() {
	now := time.Now().UTC()
	e.UpdatedAt = &now
}
