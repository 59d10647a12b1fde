package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tickety/marketplace-backend/internal/core/domain"
	apperrors "github.com/tickety/marketplace-backend/internal/core/errors"
	"github.com/tickety/marketplace-backend/internal/core/ports"
)

type AccountRepository struct {
	pool *pgxpool.Pool
}

var _ ports.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository(pool *pgxpool.Pool) ports.AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id, full_name, email, password_hash, entrance_key, created_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		id        pgtype.UUID
		account   domain.Account
		createdAt pgtype.Timestamptz
	)
	err := row.Scan(&id, &account.FullName, &account.Email, &account.PasswordHash, &account.EntranceKey, &createdAt)
	if err != nil {
		return nil, err
	}
	account.ID = id.Bytes
	account.CreatedAt = createdAt.Time
	return &account, nil
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	q := GetDBTX(ctx, r.pool)

	row := q.QueryRow(ctx, `
		INSERT INTO accounts (id, full_name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+accountColumns,
		pgtype.UUID{Bytes: account.ID, Valid: true},
		account.FullName,
		account.Email,
		account.PasswordHash,
		account.CreatedAt,
	)

	created, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.ErrAccountExists
		}
		return nil, err
	}
	return created, nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	q := GetDBTX(ctx, r.pool)

	row := q.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	q := GetDBTX(ctx, r.pool)

	row := q.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`,
		pgtype.UUID{Bytes: id, Valid: true})
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func (r *AccountRepository) SetEntranceKey(ctx context.Context, id uuid.UUID, key []byte) error {
	q := GetDBTX(ctx, r.pool)

	tag, err := q.Exec(ctx, `UPDATE accounts SET entrance_key = $2 WHERE id = $1`,
		pgtype.UUID{Bytes: id, Valid: true}, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAccountNotFound
	}
	return nil
}
