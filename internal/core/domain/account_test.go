package domain_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickety/marketplace-backend/internal/core/domain"
	apperrors "github.com/tickety/marketplace-backend/internal/core/errors"
)

func TestNewAccount(t *testing.T) {
	tests := []struct {
		name        string
		params      domain.AccountRegistrationParams
		expectError bool
		errorField  string
	}{
		{
			name: "valid account",
			params: domain.AccountRegistrationParams{
				FullName: "Ada Lovelace",
				Email:    "ada@example.com",
				Password: "Sup3rSecret",
			},
			expectError: false,
		},
		{
			name: "missing full name",
			params: domain.AccountRegistrationParams{
				Email:    "ada@example.com",
				Password: "Sup3rSecret",
			},
			expectError: true,
			errorField:  "fullName",
		},
		{
			name: "invalid email",
			params: domain.AccountRegistrationParams{
				FullName: "Ada Lovelace",
				Email:    "not-an-email",
				Password: "Sup3rSecret",
			},
			expectError: true,
			errorField:  "email",
		},
		{
			name: "weak password",
			params: domain.AccountRegistrationParams{
				FullName: "Ada Lovelace",
				Email:    "ada@example.com",
				Password: "short",
			},
			expectError: true,
			errorField:  "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, err := domain.NewAccount(tt.params)

			if tt.expectError {
				require.Error(t, err)

				var validationErr *apperrors.ValidationErrors
				if assert.ErrorAs(t, err, &validationErr) {
					assert.Contains(t, validationErr.Errors, tt.errorField)
				}
				assert.Nil(t, account)
			} else {
				require.NoError(t, err)
				require.NotNil(t, account)
				assert.Equal(t, tt.params.FullName, account.FullName)
				assert.Equal(t, tt.params.Email, account.Email)
				assert.NotEqual(t, tt.params.Password, account.PasswordHash)
				assert.True(t, account.CheckPassword(tt.params.Password))
				assert.False(t, account.CheckPassword("wrong"))
			}
		})
	}
}

func TestAccount_SetEntranceKey(t *testing.T) {
	account, err := domain.NewAccount(domain.AccountRegistrationParams{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "Sup3rSecret",
	})
	require.NoError(t, err)

	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	require.NoError(t, account.SetEntranceKey(pub))
	assert.Equal(t, []byte(pub), account.EntranceKey)

	assert.ErrorIs(t, account.SetEntranceKey([]byte{1, 2, 3}), apperrors.ErrInvalidEntranceKey)
}
