package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tickety/marketplace-backend/internal/core/domain"
	apperrors "github.com/tickety/marketplace-backend/internal/core/errors"
	"github.com/tickety/marketplace-backend/internal/core/ports"
)

// WalletRepository persists the append-only funds ledger. An account's
// balance is the sum of its entries.
type WalletRepository struct {
	pool *pgxpool.Pool
}

var _ ports.WalletRepository = (*WalletRepository)(nil)

func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

func (r *WalletRepository) Balance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	q := GetDBTX(ctx, r.pool)

	var balanceStr string
	err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)::text
		FROM wallet_entries
		WHERE account_id = $1`,
		pgtype.UUID{Bytes: accountID, Valid: true},
	).Scan(&balanceStr)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(balanceStr)
}

func (r *WalletRepository) Append(ctx context.Context, entry *domain.LedgerEntry) error {
	q := GetDBTX(ctx, r.pool)

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	return q.QueryRow(ctx, `
		INSERT INTO wallet_entries (account_id, amount, memo, created_at)
		VALUES ($1, $2::numeric, $3, $4)
		RETURNING id`,
		pgtype.UUID{Bytes: entry.AccountID, Valid: true},
		entry.Amount.String(),
		entry.Memo,
		entry.CreatedAt,
	).Scan(&entry.ID)
}

// LedgerSettlement moves funds between accounts by appending a matched
// pair of ledger entries. Forward fails when the payer's balance does
// not cover the amount, which is what makes an under-funded purchase
// roll back.
type LedgerSettlement struct {
	walletRepo ports.WalletRepository
}

var _ ports.Settlement = (*LedgerSettlement)(nil)

func NewLedgerSettlement(walletRepo ports.WalletRepository) *LedgerSettlement {
	return &LedgerSettlement{walletRepo: walletRepo}
}

func (s *LedgerSettlement) Forward(ctx context.Context, from, to uuid.UUID, amount decimal.Decimal, memo string) error {
	if !amount.IsPositive() {
		return apperrors.ErrInvalidAmount
	}

	balance, err := s.walletRepo.Balance(ctx, from)
	if err != nil {
		return err
	}
	if balance.LessThan(amount) {
		return apperrors.ErrInsufficientFunds
	}

	debit := &domain.LedgerEntry{AccountID: from, Amount: amount.Neg(), Memo: memo}
	if err := s.walletRepo.Append(ctx, debit); err != nil {
		return err
	}
	credit := &domain.LedgerEntry{AccountID: to, Amount: amount, Memo: memo}
	return s.walletRepo.Append(ctx, credit)
}
