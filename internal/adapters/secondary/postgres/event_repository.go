package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tickety/marketplace-backend/internal/core/domain"
	apperrors "github.com/tickety/marketplace-backend/internal/core/errors"
	"github.com/tickety/marketplace-backend/internal/core/ports"
)

type EventRepository struct {
	pool *pgxpool.Pool
}

var _ ports.EventRepository = (*EventRepository)(nil)

func NewEventRepository(pool *pgxpool.Pool) ports.EventRepository {
	return &EventRepository{pool: pool}
}

const eventColumns = `id, creator_id, quantity, tickets_sold, price::text, sale_start, sale_end,
	name, description, image, banner, location, status, created_at, updated_at`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var (
		event     domain.Event
		creatorID pgtype.UUID
		priceStr  string
		status    string
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := row.Scan(
		&event.ID, &creatorID, &event.Quantity, &event.TicketsSold, &priceStr,
		&event.SaleStart, &event.SaleEnd, &event.Name, &event.Description,
		&event.Image, &event.Banner, &event.Location, &status, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return nil, err
	}

	event.CreatorID = creatorID.Bytes
	event.Price = price
	event.Status = domain.EventStatus(status)
	event.CreatedAt = createdAt.Time
	if updatedAt.Valid {
		event.UpdatedAt = &updatedAt.Time
	}
	return &event, nil
}

func (r *EventRepository) Create(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	q := GetDBTX(ctx, r.pool)

	row := q.QueryRow(ctx, `
		INSERT INTO events (creator_id, quantity, tickets_sold, price, sale_start, sale_end,
			name, description, image, banner, location, status, created_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+eventColumns,
		pgtype.UUID{Bytes: event.CreatorID, Valid: true},
		event.Quantity,
		event.TicketsSold,
		event.Price.String(),
		event.SaleStart,
		event.SaleEnd,
		event.Name,
		event.Description,
		event.Image,
		event.Banner,
		event.Location,
		string(event.Status),
		event.CreatedAt,
	)
	return scanEvent(row)
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	q := GetDBTX(ctx, r.pool)

	row := q.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (r *EventRepository) Update(ctx context.Context, event *domain.Event) error {
	q := GetDBTX(ctx, r.pool)

	tag, err := q.Exec(ctx, `
		UPDATE events
		SET tickets_sold = $2, price = $3::numeric, status = $4, updated_at = $5
		WHERE id = $1`,
		event.ID,
		event.TicketsSold,
		event.Price.String(),
		string(event.Status),
		event.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}
	return nil
}

func (r *EventRepository) List(ctx context.Context, limit, offset int) ([]*domain.Event, error) {
	q := GetDBTX(ctx, r.pool)

	rows, err := q.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEvents(rows)
}

func (r *EventRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*domain.Event, error) {
	q := GetDBTX(ctx, r.pool)

	rows, err := q.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE creator_id = $1
		ORDER BY created_at DESC, id DESC`,
		pgtype.UUID{Bytes: creatorID, Valid: true})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEvents(rows)
}

func collectEvents(rows pgx.Rows) ([]*domain.Event, error) {
	events := make([]*domain.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
