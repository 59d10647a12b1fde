package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/tickety/marketplace-backend/internal/core/errors"
)

// LedgerEntry is one immutable movement of funds on an account. A
// deposit is a positive entry; a payment is recorded as a matched pair
// of entries, negative on the payer and positive on the payee.
type LedgerEntry struct {
	ID        int64
	AccountID uuid.UUID
	Amount    decimal.Decimal
	Memo      string
	CreatedAt time.Time
}

// NewDeposit creates a credit entry for an account.
func NewDeposit(accountID uuid.UUID, amount decimal.Decimal, memo string) (*LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}
	return &LedgerEntry{
		AccountID: accountID,
		Amount:    amount,
		Memo:      memo,
		CreatedAt: time.Now().UTC(),
	}, nil
}
