package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickety/marketplace-backend/internal/core/domain"
	apperrors "github.com/tickety/marketplace-backend/internal/core/errors"
)

// Helper to create an account for repository tests
func createTestAccount(t *testing.T, ctx context.Context) *domain.Account {
	t.Helper()
	repo := NewAccountRepository(testPool)

	account, err := domain.NewAccount(domain.AccountRegistrationParams{
		FullName: "Test Account",
		Email:    uuid.NewString() + "@example.com", // Ensure unique email
		Password: "Sup3rSecret",
	})
	require.NoError(t, err)

	created, err := repo.Create(ctx, account)
	require.NoError(t, err)
	return created
}

func TestAccountRepository_CreateGet(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(testPool)

	account := createTestAccount(t, ctx)

	byEmail, err := repo.GetByEmail(ctx, account.Email)
	require.NoError(t, err)
	assert.Equal(t, account.ID, byEmail.ID)
	assert.Equal(t, account.FullName, byEmail.FullName)

	byID, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.Email, byID.Email)
}

func TestAccountRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(testPool)

	account := createTestAccount(t, ctx)

	dup, err := domain.NewAccount(domain.AccountRegistrationParams{
		FullName: "Copy Cat",
		Email:    account.Email,
		Password: "Sup3rSecret",
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, dup)
	assert.ErrorIs(t, err, apperrors.ErrAccountExists)
}

func TestAccountRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(testPool)

	_, err := repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
}

func TestAccountRepository_SetEntranceKey(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(testPool)

	account := createTestAccount(t, ctx)

	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}

	require.NoError(t, repo.SetEntranceKey(ctx, account.ID, key))

	got, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, key, got.EntranceKey)

	assert.ErrorIs(t, repo.SetEntranceKey(ctx, uuid.New(), key), apperrors.ErrAccountNotFound)
}
