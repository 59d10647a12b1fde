package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tickety/marketplace-backend/internal/core/errors"
)

func TestRegistryRepository_OwnershipLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewRegistryRepository(testPool)
	ticketRepo := NewTicketRepository(testPool)

	owner := createTestAccount(t, ctx)
	nextOwner := createTestAccount(t, ctx)
	event := createTestEvent(t, ctx, 1)
	tickets, err := ticketRepo.CreateBatch(ctx, event.ID, 1)
	require.NoError(t, err)
	ticketID := tickets[0].ID

	require.NoError(t, repo.InsertOwner(ctx, ticketID, owner.ID))

	got, err := repo.GetOwner(ctx, ticketID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got)

	// Minting the same ticket twice hits the primary key.
	assert.ErrorIs(t, repo.InsertOwner(ctx, ticketID, nextOwner.ID), apperrors.ErrAlreadyMinted)

	require.NoError(t, repo.UpdateOwner(ctx, ticketID, nextOwner.ID))
	got, err = repo.GetOwner(ctx, ticketID)
	require.NoError(t, err)
	assert.Equal(t, nextOwner.ID, got)

	ids, err := repo.ListByOwner(ctx, nextOwner.ID)
	require.NoError(t, err)
	assert.Contains(t, ids, ticketID)

	ids, err = repo.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.NotContains(t, ids, ticketID)
}

func TestRegistryRepository_UnknownTicket(t *testing.T) {
	ctx := context.Background()
	repo := NewRegistryRepository(testPool)

	_, err := repo.GetOwner(ctx, 999999)
	assert.ErrorIs(t, err, apperrors.ErrUnknownTicket)

	owner := createTestAccount(t, ctx)
	assert.ErrorIs(t, repo.UpdateOwner(ctx, 999999, owner.ID), apperrors.ErrUnknownTicket)
}

func TestRegistryRepository_Approvals(t *testing.T) {
	ctx := context.Background()
	repo := NewRegistryRepository(testPool)

	owner := createTestAccount(t, ctx)
	operator := createTestAccount(t, ctx)

	approved, err := repo.IsApproved(ctx, owner.ID, operator.ID)
	require.NoError(t, err)
	assert.False(t, approved, "no approval row means not approved")

	require.NoError(t, repo.SetApproval(ctx, owner.ID, operator.ID, true))
	approved, err = repo.IsApproved(ctx, owner.ID, operator.ID)
	require.NoError(t, err)
	assert.True(t, approved)

	// Revocation flips the same row.
	require.NoError(t, repo.SetApproval(ctx, owner.ID, operator.ID, false))
	approved, err = repo.IsApproved(ctx, owner.ID, operator.ID)
	require.NoError(t, err)
	assert.False(t, approved)
}
