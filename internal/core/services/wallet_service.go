package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tickety/marketplace-backend/internal/core/domain"
	"github.com/tickety/marketplace-backend/internal/core/ports"
)

// WalletService implements account funds management on top of the
// append-only ledger.
type WalletService struct {
	walletRepo ports.WalletRepository
	txManager  ports.TransactionManager
}

var _ ports.WalletService = (*WalletService)(nil)

// NewWalletService creates a new wallet service
func NewWalletService(walletRepo ports.WalletRepository, txManager ports.TransactionManager) ports.WalletService {
	return &WalletService{
		walletRepo: walletRepo,
		txManager:  txManager,
	}
}

// Deposit credits the account and returns the resulting balance.
func (s *WalletService) Deposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	entry, err := domain.NewDeposit(accountID, amount, "deposit")
	if err != nil {
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.walletRepo.Append(ctx, entry); err != nil {
			return err
		}
		balance, err = s.walletRepo.Balance(ctx, accountID)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// Balance returns the account's current balance.
func (s *WalletService) Balance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	return s.walletRepo.Balance(ctx, accountID)
}
