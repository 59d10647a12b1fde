package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tickety/marketplace-backend/internal/core/errors"
	"github.com/tickety/marketplace-backend/internal/core/mocks"
	"github.com/tickety/marketplace-backend/internal/core/services"
)

func TestWalletService_Deposit(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()

	t.Run("credits the account", func(t *testing.T) {
		mockRepo := mocks.NewMockWalletRepository()
		mockTx := mocks.NewMockTransactionManager()
		svc := services.NewWalletService(mockRepo, mockTx)

		mockTx.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
		mockRepo.On("Append", ctx, mock.AnythingOfType("*domain.LedgerEntry")).Return(nil)
		mockRepo.On("Balance", ctx, accountID).Return(decimal.NewFromInt(100), nil)

		balance, err := svc.Deposit(ctx, accountID, decimal.NewFromInt(100))

		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.NewFromInt(100)))
		mockRepo.AssertExpectations(t)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		mockRepo := mocks.NewMockWalletRepository()
		mockTx := mocks.NewMockTransactionManager()
		svc := services.NewWalletService(mockRepo, mockTx)

		_, err := svc.Deposit(ctx, accountID, decimal.Zero)
		assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)

		_, err = svc.Deposit(ctx, accountID, decimal.NewFromInt(-5))
		assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)

		mockRepo.AssertNotCalled(t, "Append")
	})
}

func TestWalletService_Balance(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()

	mockRepo := mocks.NewMockWalletRepository()
	mockTx := mocks.NewMockTransactionManager()
	svc := services.NewWalletService(mockRepo, mockTx)

	mockRepo.On("Balance", ctx, accountID).Return(decimal.NewFromInt(42), nil)

	balance, err := svc.Balance(ctx, accountID)

	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(42)))
}
