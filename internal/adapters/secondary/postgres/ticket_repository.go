package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tickety/marketplace-backend/internal/core/domain"
	apperrors "github.com/tickety/marketplace-backend/internal/core/errors"
	"github.com/tickety/marketplace-backend/internal/core/ports"
)

type TicketRepository struct {
	pool *pgxpool.Pool
}

var _ ports.TicketRepository = (*TicketRepository)(nil)

func NewTicketRepository(pool *pgxpool.Pool) ports.TicketRepository {
	return &TicketRepository{pool: pool}
}

const ticketColumns = `id, event_id, sold, used, created_at, updated_at`

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket    domain.Ticket
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := row.Scan(&ticket.ID, &ticket.EventID, &ticket.Sold, &ticket.Used, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	ticket.CreatedAt = createdAt.Time
	if updatedAt.Valid {
		ticket.UpdatedAt = &updatedAt.Time
	}
	return &ticket, nil
}

// CreateBatch allocates quantity tickets for the event. Ids come from
// one global sequence, so tickets are unique across all events.
func (r *TicketRepository) CreateBatch(ctx context.Context, eventID int64, quantity int32) ([]*domain.Ticket, error) {
	q := GetDBTX(ctx, r.pool)

	rows, err := q.Query(ctx, `
		INSERT INTO tickets (event_id, created_at)
		SELECT $1, $2 FROM generate_series(1, $3)
		RETURNING `+ticketColumns,
		eventID, time.Now().UTC(), quantity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTickets(rows)
}

func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	q := GetDBTX(ctx, r.pool)

	row := q.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1 FOR UPDATE`, id)
	ticket, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUnknownTicket
		}
		return nil, err
	}
	return ticket, nil
}

func (r *TicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	q := GetDBTX(ctx, r.pool)

	tag, err := q.Exec(ctx, `
		UPDATE tickets SET sold = $2, used = $3, updated_at = $4 WHERE id = $1`,
		ticket.ID, ticket.Sold, ticket.Used, ticket.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUnknownTicket
	}
	return nil
}

// NextUnsold returns the lowest-numbered unsold ticket of an event,
// locked for the duration of the enclosing transaction. SKIP LOCKED
// keeps concurrent buyers from contending for the same row.
func (r *TicketRepository) NextUnsold(ctx context.Context, eventID int64) (*domain.Ticket, error) {
	q := GetDBTX(ctx, r.pool)

	row := q.QueryRow(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE event_id = $1 AND NOT sold
		ORDER BY id
		LIMIT 1
		FOR UPDATE SKIP LOCKED`, eventID)
	ticket, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNoTicketsAvailable
		}
		return nil, err
	}
	return ticket, nil
}

func (r *TicketRepository) ListByEvent(ctx context.Context, eventID int64) ([]*domain.Ticket, error) {
	q := GetDBTX(ctx, r.pool)

	rows, err := q.Query(ctx, `
		SELECT `+ticketColumns+` FROM tickets WHERE event_id = $1 ORDER BY id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTickets(rows)
}

func collectTickets(rows pgx.Rows) ([]*domain.Ticket, error) {
	tickets := make([]*domain.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}
