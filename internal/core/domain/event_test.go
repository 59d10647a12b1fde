package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickety/marketplace-backend/internal/core/domain"
	apperrors "github.com/tickety/marketplace-backend/internal/core/errors"
)

func validEventParams(creatorID uuid.UUID) domain.EventParams {
	now := time.Now().UTC()
	return domain.EventParams{
		CreatorID:   creatorID,
		Quantity:    100,
		SaleStart:   now,
		SaleEnd:     now.Add(48 * time.Hour),
		Name:        "Summer Fest",
		Description: "Open air festival",
		Location:    "Riverside Park",
	}
}

func TestNewEvent(t *testing.T) {
	creatorID := uuid.New()
	now := time.Now().UTC()

	tests := []struct {
		name      string
		mutate    func(*domain.EventParams)
		expectErr error
	}{
		{
			name:   "valid event",
			mutate: func(p *domain.EventParams) {},
		},
		{
			name:      "zero quantity",
			mutate:    func(p *domain.EventParams) { p.Quantity = 0 },
			expectErr: apperrors.ErrQuantityRequired,
		},
		{
			name:      "negative quantity",
			mutate:    func(p *domain.EventParams) { p.Quantity = -5 },
			expectErr: apperrors.ErrQuantityRequired,
		},
		{
			name:      "quantity above maximum",
			mutate:    func(p *domain.EventParams) { p.Quantity = domain.MaxEventQuantity + 1 },
			expectErr: apperrors.ErrQuantityTooLarge,
		},
		{
			name:      "missing name",
			mutate:    func(p *domain.EventParams) { p.Name = "" },
			expectErr: apperrors.ErrNameRequired,
		},
		{
			name:      "sale end before sale start",
			mutate:    func(p *domain.EventParams) { p.SaleEnd = now.Add(-time.Hour) },
			expectErr: apperrors.ErrInvalidSaleWindow,
		},
		{
			name:      "sale end equals sale start",
			mutate:    func(p *domain.EventParams) { p.SaleEnd = p.SaleStart },
			expectErr: apperrors.ErrInvalidSaleWindow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validEventParams(creatorID)
			tt.mutate(&params)

			event, err := domain.NewEvent(params)

			if tt.expectErr != nil {
				require.ErrorIs(t, err, tt.expectErr)
				assert.Nil(t, event)
			} else {
				require.NoError(t, err)
				require.NotNil(t, event)
				assert.Equal(t, creatorID, event.CreatorID)
				assert.Equal(t, domain.EventCreated, event.Status)
				assert.True(t, event.Price.IsZero())
				assert.EqualValues(t, 0, event.TicketsSold)
			}
		})
	}
}

func TestEvent_List(t *testing.T) {
	creatorID := uuid.New()
	price := decimal.NewFromInt(50)

	t.Run("lists a created event", func(t *testing.T) {
		event, err := domain.NewEvent(validEventParams(creatorID))
		require.NoError(t, err)

		require.NoError(t, event.List(price))
		assert.Equal(t, domain.EventListed, event.Status)
		assert.True(t, event.Price.Equal(price))
		assert.NotNil(t, event.UpdatedAt)
	})

	t.Run("rejects a second listing", func(t *testing.T) {
		event, err := domain.NewEvent(validEventParams(creatorID))
		require.NoError(t, err)
		require.NoError(t, event.List(price))

		assert.ErrorIs(t, event.List(price), apperrors.ErrEventAlreadyListed)
	})

	t.Run("rejects a cancelled event", func(t *testing.T) {
		event, err := domain.NewEvent(validEventParams(creatorID))
		require.NoError(t, err)
		require.NoError(t, event.List(price))
		require.NoError(t, event.Cancel())

		assert.ErrorIs(t, event.List(price), apperrors.ErrEventAlreadyListed)
	})

	t.Run("rejects non-positive price", func(t *testing.T) {
		event, err := domain.NewEvent(validEventParams(creatorID))
		require.NoError(t, err)

		assert.ErrorIs(t, event.List(decimal.Zero), apperrors.ErrInvalidPrice)
		assert.ErrorIs(t, event.List(decimal.NewFromInt(-1)), apperrors.ErrInvalidPrice)
		assert.Equal(t, domain.EventCreated, event.Status)
	})
}

func TestEvent_Cancel(t *testing.T) {
	creatorID := uuid.New()
	price := decimal.NewFromInt(50)

	t.Run("cancels a listed event with no sales", func(t *testing.T) {
		event, err := domain.NewEvent(validEventParams(creatorID))
		require.NoError(t, err)
		require.NoError(t, event.List(price))

		require.NoError(t, event.Cancel())
		assert.Equal(t, domain.EventCancelled, event.Status)
	})

	t.Run("rejects an unlisted event", func(t *testing.T) {
		event, err := domain.NewEvent(validEventParams(creatorID))
		require.NoError(t, err)

		assert.ErrorIs(t, event.Cancel(), apperrors.ErrEventNotListed)
	})

	t.Run("rejects once a ticket has been sold", func(t *testing.T) {
		event, err := domain.NewEvent(validEventParams(creatorID))
		require.NoError(t, err)
		require.NoError(t, event.List(price))
		event.RecordSale()

		assert.ErrorIs(t, event.Cancel(), apperrors.ErrEventAlreadySold)
		assert.Equal(t, domain.EventListed, event.Status)
	})
}

func TestEvent_Close(t *testing.T) {
	creatorID := uuid.New()

	event, err := domain.NewEvent(validEventParams(creatorID))
	require.NoError(t, err)

	assert.ErrorIs(t, event.Close(), apperrors.ErrEventNotListed)

	require.NoError(t, event.List(decimal.NewFromInt(10)))
	require.NoError(t, event.Close())
	assert.Equal(t, domain.EventActive, event.Status)
}

func TestEvent_SaleOpen(t *testing.T) {
	creatorID := uuid.New()
	params := validEventParams(creatorID)

	event, err := domain.NewEvent(params)
	require.NoError(t, err)

	now := time.Now().UTC()
	assert.False(t, event.SaleOpen(now), "unlisted event is never open")

	require.NoError(t, event.List(decimal.NewFromInt(10)))
	assert.True(t, event.SaleOpen(now))
	assert.False(t, event.SaleOpen(params.SaleEnd.Add(time.Second)))
}

func TestEvent_SoldOut(t *testing.T) {
	creatorID := uuid.New()
	params := validEventParams(creatorID)
	params.Quantity = 2

	event, err := domain.NewEvent(params)
	require.NoError(t, err)

	assert.False(t, event.SoldOut())
	event.RecordSale()
	assert.False(t, event.SoldOut())
	event.RecordSale()
	assert.True(t, event.SoldOut())
}

func TestEvent_IsCreatedBy(t *testing.T) {
	creatorID := uuid.New()

	event, err := domain.NewEvent(validEventParams(creatorID))
	require.NoError(t, err)

	assert.True(t, event.IsCreatedBy(creatorID))
	assert.False(t, event.IsCreatedBy(uuid.New()))
}

func TestNewEvent_LongName(t *testing.T) {
	params := validEventParams(uuid.New())
	params.Name = strings.Repeat("a", 80)

	event, err := domain.NewEvent(params)
	require.NoError(t, err)
	assert.Equal(t, params.Name, event.Name)
}
