package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tickety/marketplace-backend/internal/core/domain"
	apperrors "github.com/tickety/marketplace-backend/internal/core/errors"
	"github.com/tickety/marketplace-backend/internal/core/ports"
)

type ListingRepository struct {
	pool *pgxpool.Pool
}

var _ ports.ListingRepository = (*ListingRepository)(nil)

func NewListingRepository(pool *pgxpool.Pool) ports.ListingRepository {
	return &ListingRepository{pool: pool}
}

const listingColumns = `id, ticket_id, seller_id, price::text, active, created_at, deactivated_at`

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var (
		listing       domain.Listing
		sellerID      pgtype.UUID
		priceStr      string
		createdAt     pgtype.Timestamptz
		deactivatedAt pgtype.Timestamptz
	)
	err := row.Scan(&listing.ID, &listing.TicketID, &sellerID, &priceStr, &listing.Active, &createdAt, &deactivatedAt)
	if err != nil {
		return nil, err
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return nil, err
	}

	listing.SellerID = sellerID.Bytes
	listing.Price = price
	listing.CreatedAt = createdAt.Time
	if deactivatedAt.Valid {
		listing.DeactivatedAt = &deactivatedAt.Time
	}
	return &listing, nil
}

// Create inserts a listing. A partial unique index on active listings
// turns a concurrent double-list into a conflict error.
func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	q := GetDBTX(ctx, r.pool)

	row := q.QueryRow(ctx, `
		INSERT INTO listings (ticket_id, seller_id, price, active, created_at)
		VALUES ($1, $2, $3::numeric, $4, $5)
		RETURNING `+listingColumns,
		listing.TicketID,
		pgtype.UUID{Bytes: listing.SellerID, Valid: true},
		listing.Price.String(),
		listing.Active,
		listing.CreatedAt,
	)

	created, err := scanListing(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.ErrConflict
		}
		return nil, err
	}
	return created, nil
}

func (r *ListingRepository) GetActiveByTicket(ctx context.Context, ticketID int64) (*domain.Listing, error) {
	q := GetDBTX(ctx, r.pool)

	row := q.QueryRow(ctx, `
		SELECT `+listingColumns+` FROM listings WHERE ticket_id = $1 AND active FOR UPDATE`, ticketID)
	listing, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return listing, nil
}

func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	q := GetDBTX(ctx, r.pool)

	tag, err := q.Exec(ctx, `
		UPDATE listings SET active = $2, deactivated_at = $3 WHERE id = $1`,
		listing.ID, listing.Active, listing.DeactivatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *ListingRepository) ListActive(ctx context.Context, limit, offset int) ([]*domain.Listing, error) {
	q := GetDBTX(ctx, r.pool)

	rows, err := q.Query(ctx, `
		SELECT `+listingColumns+`
		FROM listings
		WHERE active
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := make([]*domain.Listing, 0)
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, listing)
	}
	return listings, rows.Err()
}
