package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/tickety/marketplace-backend/internal/core/errors"
)

// Listing is a resale offer for a single ticket at a fixed price. A
// ticket has at most one active listing; a listing is deactivated
// exactly once, by purchase or cancellation.
type Listing struct {
	ID            int64
	TicketID      int64
	SellerID      uuid.UUID
	Price         decimal.Decimal
	Active        bool
	CreatedAt     time.Time
	DeactivatedAt *time.Time
}

// NewListing creates a valid resale listing.
func NewListing(ticketID int64, sellerID uuid.UUID, price decimal.Decimal) (*Listing, error) {
	if !price.IsPositive() {
		return nil, apperrors.ErrInvalidPrice
	}
	return &Listing{
		TicketID:  ticketID,
		SellerID:  sellerID,
		Price:     price,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Deactivate retires the listing. It is an error to deactivate twice.
func (l *Listing) Deactivate() error {
	if !l.Active {
		return apperrors.ErrListingNotActive
	}
	l.Active = false
	now := time.Now().UTC()
	l.DeactivatedAt = &now
	return nil
}

// IsSoldBy reports whether the given account is the listing's seller.
func (l *Listing) IsSoldBy(accountID uuid.UUID) bool {
	return l.SellerID == accountID
}
