package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickety/marketplace-backend/internal/core/domain"
	apperrors "github.com/tickety/marketplace-backend/internal/core/errors"
)

func TestTicket_Redeem(t *testing.T) {
	tests := []struct {
		name      string
		sold      bool
		used      bool
		expectErr error
	}{
		{"sold and unused redeems", true, false, nil},
		{"unsold ticket is rejected", false, false, apperrors.ErrTicketNotBoughtYet},
		{"used ticket is rejected", true, true, apperrors.ErrTicketAlreadyUsed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := &domain.Ticket{ID: 7, EventID: 1, Sold: tt.sold, Used: tt.used}

			err := ticket.Redeem()

			if tt.expectErr != nil {
				require.ErrorIs(t, err, tt.expectErr)
				assert.Equal(t, tt.used, ticket.Used)
			} else {
				require.NoError(t, err)
				assert.True(t, ticket.Used)
				assert.NotNil(t, ticket.UpdatedAt)
			}
		})
	}
}

func TestTicket_RedeemIsOneWay(t *testing.T) {
	ticket := &domain.Ticket{ID: 7, EventID: 1, Sold: true}

	require.NoError(t, ticket.Redeem())
	assert.ErrorIs(t, ticket.Redeem(), apperrors.ErrTicketAlreadyUsed)
}

func TestTicket_MarkSold(t *testing.T) {
	ticket := &domain.Ticket{ID: 3, EventID: 1}

	ticket.MarkSold()
	assert.True(t, ticket.Sold)
	assert.NotNil(t, ticket.UpdatedAt)
}

func TestNewListing(t *testing.T) {
	sellerID := uuid.New()

	t.Run("valid listing", func(t *testing.T) {
		listing, err := domain.NewListing(5, sellerID, decimal.NewFromInt(30))
		require.NoError(t, err)
		assert.True(t, listing.Active)
		assert.EqualValues(t, 5, listing.TicketID)
		assert.Equal(t, sellerID, listing.SellerID)
	})

	t.Run("non-positive price is rejected", func(t *testing.T) {
		_, err := domain.NewListing(5, sellerID, decimal.Zero)
		assert.ErrorIs(t, err, apperrors.ErrInvalidPrice)

		_, err = domain.NewListing(5, sellerID, decimal.NewFromInt(-10))
		assert.ErrorIs(t, err, apperrors.ErrInvalidPrice)
	})
}

func TestListing_Deactivate(t *testing.T) {
	listing, err := domain.NewListing(5, uuid.New(), decimal.NewFromInt(30))
	require.NoError(t, err)

	require.NoError(t, listing.Deactivate())
	assert.False(t, listing.Active)
	assert.NotNil(t, listing.DeactivatedAt)

	assert.ErrorIs(t, listing.Deactivate(), apperrors.ErrListingNotActive)
}

func TestListing_IsSoldBy(t *testing.T) {
	sellerID := uuid.New()

	listing, err := domain.NewListing(5, sellerID, decimal.NewFromInt(30))
	require.NoError(t, err)

	assert.True(t, listing.IsSoldBy(sellerID))
	assert.False(t, listing.IsSoldBy(uuid.New()))
}
