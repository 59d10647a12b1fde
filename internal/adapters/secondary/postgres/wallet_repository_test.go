package postgres

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickety/marketplace-backend/internal/core/domain"
	apperrors "github.com/tickety/marketplace-backend/internal/core/errors"
)

func TestWalletRepository_BalanceIsSumOfEntries(t *testing.T) {
	ctx := context.Background()
	repo := NewWalletRepository(testPool)

	account := createTestAccount(t, ctx)

	balance, err := repo.Balance(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero(), "fresh account starts at zero")

	deposit, err := domain.NewDeposit(account.ID, decimal.NewFromInt(100), "deposit")
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, deposit))
	assert.NotZero(t, deposit.ID)

	debit := &domain.LedgerEntry{AccountID: account.ID, Amount: decimal.NewFromInt(-30), Memo: "payment"}
	require.NoError(t, repo.Append(ctx, debit))

	balance, err = repo.Balance(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(70)))
}

func TestLedgerSettlement_Forward(t *testing.T) {
	ctx := context.Background()
	repo := NewWalletRepository(testPool)
	settlement := NewLedgerSettlement(repo)

	payer := createTestAccount(t, ctx)
	payee := createTestAccount(t, ctx)

	deposit, err := domain.NewDeposit(payer.ID, decimal.NewFromInt(50), "deposit")
	require.NoError(t, err)
	require.NoError(t, repo.Append(ctx, deposit))

	require.NoError(t, settlement.Forward(ctx, payer.ID, payee.ID, decimal.NewFromInt(20), "test payment"))

	payerBalance, err := repo.Balance(ctx, payer.ID)
	require.NoError(t, err)
	assert.True(t, payerBalance.Equal(decimal.NewFromInt(30)))

	payeeBalance, err := repo.Balance(ctx, payee.ID)
	require.NoError(t, err)
	assert.True(t, payeeBalance.Equal(decimal.NewFromInt(20)))
}

func TestLedgerSettlement_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	repo := NewWalletRepository(testPool)
	settlement := NewLedgerSettlement(repo)

	payer := createTestAccount(t, ctx)
	payee := createTestAccount(t, ctx)

	err := settlement.Forward(ctx, payer.ID, payee.ID, decimal.NewFromInt(10), "test payment")
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)

	balance, err := repo.Balance(ctx, payer.ID)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestLedgerSettlement_RejectsNonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	settlement := NewLedgerSettlement(NewWalletRepository(testPool))

	payer := createTestAccount(t, ctx)
	payee := createTestAccount(t, ctx)

	assert.ErrorIs(t, settlement.Forward(ctx, payer.ID, payee.ID, decimal.Zero, "x"), apperrors.ErrInvalidAmount)
}
