package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/tickety/marketplace-backend/internal/core/domain"
	apperrors "github.com/tickety/marketplace-backend/internal/core/errors"
	"github.com/tickety/marketplace-backend/internal/core/ports"
)

// AuthService implements authentication business logic
type AuthService struct {
	accountRepo ports.AccountRepository
}

var _ ports.AuthService = (*AuthService)(nil)

// NewAuthService creates a new authentication service
func NewAuthService(accountRepo ports.AccountRepository) ports.AuthService {
	return &AuthService{
		accountRepo: accountRepo,
	}
}

// Register creates a new account with validated credentials
func (s *AuthService) Register(ctx context.Context, fullName, email, password string) (*domain.Account, error) {
	params := domain.AccountRegistrationParams{
		FullName: fullName,
		Email:    email,
		Password: password,
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	// Check if account already exists
	_, err := s.accountRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, apperrors.ErrAccountExists
	}
	if !errors.Is(err, apperrors.ErrAccountNotFound) {
		return nil, err // An actual DB error occurred
	}

	account, err := domain.NewAccount(params)
	if err != nil {
		return nil, err
	}

	return s.accountRepo.Create(ctx, account)
}

// Login authenticates an account with email and password
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Account, error) {
	if email == "" {
		return nil, apperrors.ErrEmailRequired
	}
	if password == "" {
		return nil, apperrors.ErrPasswordRequired
	}

	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			// Don't reveal whether email exists
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !account.CheckPassword(password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return account, nil
}

// GetAccount returns the account for the given id.
func (s *AuthService) GetAccount(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	return s.accountRepo.GetByID(ctx, accountID)
}

// RegisterEntranceKey stores the public key whose signatures authorize
// entrance-pass redemption for the account's tickets.
func (s *AuthService) RegisterEntranceKey(ctx context.Context, accountID uuid.UUID, key []byte) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if err := account.SetEntranceKey(key); err != nil {
		return err
	}
	return s.accountRepo.SetEntranceKey(ctx, accountID, key)
}
