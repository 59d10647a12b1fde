package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	apperrors "github.com/tickety/marketplace-backend/internal/core/errors"
	"github.com/tickety/marketplace-backend/internal/core/ports"
)

// RegistryService implements the ticket ownership registry. The
// marketplace custody account is the only caller allowed to mint;
// transfers require the caller to be the owner, approved for the
// owner's tickets, or the owner itself moving its own ticket.
type RegistryService struct {
	registryRepo ports.RegistryRepository
	minterID     uuid.UUID
}

var _ ports.RegistryService = (*RegistryService)(nil)

// NewRegistryService creates a new registry service. minterID is the
// single account permitted to mint tickets.
func NewRegistryService(registryRepo ports.RegistryRepository, minterID uuid.UUID) ports.RegistryService {
	return &RegistryService{
		registryRepo: registryRepo,
		minterID:     minterID,
	}
}

// Mint records first ownership of a ticket. Only the configured minter
// may call it, and a ticket can be minted exactly once.
func (s *RegistryService) Mint(ctx context.Context, caller uuid.UUID, ticketID int64, recipient uuid.UUID) error {
	if caller != s.minterID {
		return apperrors.ErrNotAuthorizedToMint
	}

	_, err := s.registryRepo.GetOwner(ctx, ticketID)
	if err == nil {
		return apperrors.ErrAlreadyMinted
	}
	if !errors.Is(err, apperrors.ErrUnknownTicket) {
		return err
	}

	return s.registryRepo.InsertOwner(ctx, ticketID, recipient)
}

// Transfer moves a ticket from one owner to another. The caller must
// be the current owner or an operator the owner has approved.
func (s *RegistryService) Transfer(ctx context.Context, caller uuid.UUID, ticketID int64, from, to uuid.UUID) error {
	owner, err := s.registryRepo.GetOwner(ctx, ticketID)
	if err != nil {
		return err
	}
	if owner != from {
		return apperrors.ErrNotOwnerOfTicket
	}

	if caller != owner {
		approved, err := s.registryRepo.IsApproved(ctx, owner, caller)
		if err != nil {
			return err
		}
		if !approved {
			return apperrors.ErrNotOwnerOrApproved
		}
	}

	return s.registryRepo.UpdateOwner(ctx, ticketID, to)
}

// SetApprovalForAll grants or revokes an operator's right to move any
// of the owner's tickets.
func (s *RegistryService) SetApprovalForAll(ctx context.Context, owner, operator uuid.UUID, approved bool) error {
	return s.registryRepo.SetApproval(ctx, owner, operator, approved)
}

// OwnerOf returns the current owner of a ticket.
func (s *RegistryService) OwnerOf(ctx context.Context, ticketID int64) (uuid.UUID, error) {
	return s.registryRepo.GetOwner(ctx, ticketID)
}

// TicketsOf returns the ids of every ticket the account currently owns.
func (s *RegistryService) TicketsOf(ctx context.Context, ownerID uuid.UUID) ([]int64, error) {
	return s.registryRepo.ListByOwner(ctx, ownerID)
}
