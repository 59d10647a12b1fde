package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/tickety/marketplace-backend/internal/core/errors"
	"github.com/tickety/marketplace-backend/internal/core/ports"
)

// RegistryRepository persists the ownership ledger: one row per minted
// ticket plus the operator approval table.
type RegistryRepository struct {
	pool *pgxpool.Pool
}

var _ ports.RegistryRepository = (*RegistryRepository)(nil)

func NewRegistryRepository(pool *pgxpool.Pool) ports.RegistryRepository {
	return &RegistryRepository{pool: pool}
}

func (r *RegistryRepository) InsertOwner(ctx context.Context, ticketID int64, ownerID uuid.UUID) error {
	q := GetDBTX(ctx, r.pool)

	_, err := q.Exec(ctx, `
		INSERT INTO ticket_owners (ticket_id, owner_id, updated_at)
		VALUES ($1, $2, $3)`,
		ticketID, pgtype.UUID{Bytes: ownerID, Valid: true}, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrAlreadyMinted
		}
		return err
	}
	return nil
}

func (r *RegistryRepository) GetOwner(ctx context.Context, ticketID int64) (uuid.UUID, error) {
	q := GetDBTX(ctx, r.pool)

	var ownerID pgtype.UUID
	err := q.QueryRow(ctx, `
		SELECT owner_id FROM ticket_owners WHERE ticket_id = $1 FOR UPDATE`, ticketID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, apperrors.ErrUnknownTicket
		}
		return uuid.Nil, err
	}
	return ownerID.Bytes, nil
}

func (r *RegistryRepository) UpdateOwner(ctx context.Context, ticketID int64, ownerID uuid.UUID) error {
	q := GetDBTX(ctx, r.pool)

	tag, err := q.Exec(ctx, `
		UPDATE ticket_owners SET owner_id = $2, updated_at = $3 WHERE ticket_id = $1`,
		ticketID, pgtype.UUID{Bytes: ownerID, Valid: true}, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUnknownTicket
	}
	return nil
}

func (r *RegistryRepository) SetApproval(ctx context.Context, ownerID, operatorID uuid.UUID, approved bool) error {
	q := GetDBTX(ctx, r.pool)

	_, err := q.Exec(ctx, `
		INSERT INTO operator_approvals (owner_id, operator_id, approved, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (owner_id, operator_id)
		DO UPDATE SET approved = EXCLUDED.approved, updated_at = EXCLUDED.updated_at`,
		pgtype.UUID{Bytes: ownerID, Valid: true},
		pgtype.UUID{Bytes: operatorID, Valid: true},
		approved,
		time.Now().UTC())
	return err
}

func (r *RegistryRepository) IsApproved(ctx context.Context, ownerID, operatorID uuid.UUID) (bool, error) {
	q := GetDBTX(ctx, r.pool)

	var approved bool
	err := q.QueryRow(ctx, `
		SELECT approved FROM operator_approvals WHERE owner_id = $1 AND operator_id = $2`,
		pgtype.UUID{Bytes: ownerID, Valid: true},
		pgtype.UUID{Bytes: operatorID, Valid: true}).Scan(&approved)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return approved, nil
}

func (r *RegistryRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]int64, error) {
	q := GetDBTX(ctx, r.pool)

	rows, err := q.Query(ctx, `
		SELECT ticket_id FROM ticket_owners WHERE owner_id = $1 ORDER BY ticket_id`,
		pgtype.UUID{Bytes: ownerID, Valid: true})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
