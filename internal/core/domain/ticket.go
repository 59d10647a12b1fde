package domain

import (
	"time"

	apperrors "github.com/tickety/marketplace-backend/internal/core/errors"
)

// Ticket is a uniquely numbered admission right belonging to an event.
// Ownership is delegated to the registry; the ticket itself only tracks
// whether it has left primary custody (Sold) and whether it has been
// redeemed (Used). The used flag is terminal.
type Ticket struct {
	ID        int64
	EventID   int64
	Sold      bool
	Used      bool
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// MarkSold records that the ticket left marketplace custody via a
// primary sale. Resales do not touch this flag.
func (t *Ticket) MarkSold() {
	t.Sold = true
	t.touch()
}

// Redeem sets the one-way used flag.
func (t *Ticket) Redeem() error {
	if !t.Sold {
		return apperrors.ErrTicketNotBoughtYet
	}
	if t.Used {
		return apperrors.ErrTicketAlreadyUsed
	}
	t.Used = true
	t.touch()
	return nil
}

func (t *Ticket) touch() {
	now := time.Now().UTC()
	t.UpdatedAt = &now
}
