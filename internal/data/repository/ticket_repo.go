package repository

import (
	"context"
	"errors"
	"fmt"

	"ticket-sales/internal/data/entity"
	"ticket-sales/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const ticketColumns = `ticket_id, event_location_id, code, is_used, used_at,
		       is_active, deleted, created_at, updated_at`

const insertTicketSQL = `
		INSERT INTO tbl_tickets (event_location_id, code, is_active)
		VALUES ($1, $2, $3)
		RETURNING ` + ticketColumns

type TicketRepository interface {
	Create(ctx context.Context, ticket *entity.Ticket) error
	BulkCreate(ctx context.Context, tickets []*entity.Ticket) error

	FindByID(ctx context.Context, id int64) (*entity.Ticket, error)
	FindByIDUnscoped(ctx context.Context, id int64) (*entity.Ticket, error)
	FindByCode(ctx context.Context, code string) (*entity.Ticket, error)
	FindActiveByCode(ctx context.Context, code string) (*entity.Ticket, error)
	FindMany(ctx context.Context, filter entity.TicketFilter, limit, offset int) ([]*entity.Ticket, error)
	Count(ctx context.Context, filter entity.TicketFilter) (int64, error)

	Update(ctx context.Context, id int64, patch entity.TicketPatch) (*entity.Ticket, error)
	MarkUsed(ctx context.Context, id int64) (*entity.Ticket, error)
	SetActive(ctx context.Context, id int64, active bool) (*entity.Ticket, error)
	SetDeleted(ctx context.Context, id int64, deleted bool) (*entity.Ticket, error)
}

type ticketRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewTicketRepository(db database.PgxIface, log *zap.Logger) TicketRepository {
	return &ticketRepository{
		db:  db,
		log: log.With(zap.String("repository", "ticket")),
	}
}

func scanTicket(row pgx.Row, t *entity.Ticket) error {
	return row.Scan(
		&t.ID,
		&t.EventLocationID,
		&t.Code,
		&t.IsUsed,
		&t.UsedAt,
		&t.IsActive,
		&t.Deleted,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
}

func (r *ticketRepository) Create(ctx context.Context, ticket *entity.Ticket) error {
	row := r.db.QueryRow(ctx, insertTicketSQL, ticket.EventLocationID, ticket.Code, ticket.IsActive)
	if err := scanTicket(row, ticket); err != nil {
		r.log.Error("Failed to create ticket",
			zap.Error(err),
			zap.String("code", ticket.Code),
			zap.Int64("event_location_id", ticket.EventLocationID),
		)
		return fmt.Errorf("failed to create ticket: %w", translateError(err))
	}

	return nil
}

// BulkCreate inserts every ticket inside one transaction. Either all rows are
// stored or none are.
func (r *ticketRepository) BulkCreate(ctx context.Context, tickets []*entity.Ticket) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin bulk ticket transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, t := range tickets {
		batch.Queue(insertTicketSQL, t.EventLocationID, t.Code, t.IsActive)
	}

	results := tx.SendBatch(ctx, batch)
	for i, t := range tickets {
		if err := scanTicket(results.QueryRow(), t); err != nil {
			results.Close()
			r.log.Error("Failed to insert ticket in batch",
				zap.Error(err),
				zap.Int("index", i),
				zap.String("code", t.Code),
			)
			return fmt.Errorf("failed to bulk create tickets: %w", translateError(err))
		}
	}
	if err := results.Close(); err != nil {
		r.log.Error("Failed to close ticket batch", zap.Error(err))
		return fmt.Errorf("failed to bulk create tickets: %w", translateError(err))
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit bulk ticket transaction", zap.Error(err))
		return fmt.Errorf("failed to commit tickets: %w", translateError(err))
	}

	r.log.Debug("Tickets bulk created", zap.Int("count", len(tickets)))
	return nil
}

func (r *ticketRepository) findOne(ctx context.Context, where string, args ...any) (*entity.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tbl_tickets WHERE ` + where

	var ticket entity.Ticket
	err := scanTicket(r.db.QueryRow(ctx, query, args...), &ticket)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find ticket",
			zap.Error(err),
			zap.String("where", where),
			zap.Any("args", args),
		)
		return nil, fmt.Errorf("failed to find ticket: %w", err)
	}

	return &ticket, nil
}

func (r *ticketRepository) FindByID(ctx context.Context, id int64) (*entity.Ticket, error) {
	return r.findOne(ctx, "ticket_id = $1 AND deleted = FALSE", id)
}

// FindByIDUnscoped also returns soft deleted tickets.
func (r *ticketRepository) FindByIDUnscoped(ctx context.Context, id int64) (*entity.Ticket, error) {
	return r.findOne(ctx, "ticket_id = $1", id)
}

func (r *ticketRepository) FindByCode(ctx context.Context, code string) (*entity.Ticket, error) {
	return r.findOne(ctx, "code = $1 AND deleted = FALSE", code)
}

func (r *ticketRepository) FindActiveByCode(ctx context.Context, code string) (*entity.Ticket, error) {
	return r.findOne(ctx, "code = $1 AND deleted = FALSE AND is_active = TRUE", code)
}

func applyTicketFilter(b *sqlBuilder, filter entity.TicketFilter) {
	b.WriteString(" WHERE deleted = FALSE")
	if filter.EventLocationID != nil {
		b.WriteString(" AND event_location_id = " + b.arg(*filter.EventLocationID))
	}
	if filter.IsUsed != nil {
		b.WriteString(" AND is_used = " + b.arg(*filter.IsUsed))
	}
	if filter.IsActive != nil {
		b.WriteString(" AND is_active = " + b.arg(*filter.IsActive))
	}
}

func (r *ticketRepository) FindMany(ctx context.Context, filter entity.TicketFilter, limit, offset int) ([]*entity.Ticket, error) {
	b := &sqlBuilder{}
	b.WriteString(`SELECT ` + ticketColumns + ` FROM tbl_tickets`)
	applyTicketFilter(b, filter)
	b.page("created_at DESC, ticket_id DESC", limit, offset)

	rows, err := r.db.Query(ctx, b.String(), b.args...)
	if err != nil {
		r.log.Error("Failed to find tickets",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("failed to find tickets: %w", err)
	}
	defer rows.Close()

	tickets := make([]*entity.Ticket, 0)
	for rows.Next() {
		var ticket entity.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			r.log.Error("Failed to scan ticket row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, &ticket)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	r.log.Debug("Tickets found",
		zap.Int("count", len(tickets)),
		zap.Int("limit", limit),
		zap.Int("offset", offset),
	)

	return tickets, nil
}

func (r *ticketRepository) Count(ctx context.Context, filter entity.TicketFilter) (int64, error) {
	b := &sqlBuilder{}
	b.WriteString(`SELECT COUNT(*) FROM tbl_tickets`)
	applyTicketFilter(b, filter)

	var total int64
	if err := r.db.QueryRow(ctx, b.String(), b.args...).Scan(&total); err != nil {
		r.log.Error("Failed to count tickets", zap.Error(err))
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}

	return total, nil
}

// Update applies the present patch fields to a non-deleted ticket.
func (r *ticketRepository) Update(ctx context.Context, id int64, patch entity.TicketPatch) (*entity.Ticket, error) {
	b := &sqlBuilder{}
	b.WriteString(`UPDATE tbl_tickets SET updated_at = NOW()`)
	if patch.EventLocationID != nil {
		b.WriteString(", event_location_id = " + b.arg(*patch.EventLocationID))
	}
	if patch.Code != nil {
		b.WriteString(", code = " + b.arg(*patch.Code))
	}
	if patch.IsActive != nil {
		b.WriteString(", is_active = " + b.arg(*patch.IsActive))
	}
	b.WriteString(" WHERE ticket_id = " + b.arg(id) + " AND deleted = FALSE RETURNING " + ticketColumns)

	return r.returning(ctx, "update ticket", id, b.String(), b.args...)
}

// MarkUsed flips is_used only when the ticket is still unused, active and not
// deleted. A nil ticket means no row matched.
func (r *ticketRepository) MarkUsed(ctx context.Context, id int64) (*entity.Ticket, error) {
	query := `
		UPDATE tbl_tickets
		SET is_used = TRUE, used_at = NOW(), updated_at = NOW()
		WHERE ticket_id = $1 AND deleted = FALSE AND is_used = FALSE AND is_active = TRUE
		RETURNING ` + ticketColumns

	ticket, err := r.returning(ctx, "mark ticket used", id, query, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return ticket, err
}

func (r *ticketRepository) SetActive(ctx context.Context, id int64, active bool) (*entity.Ticket, error) {
	query := `
		UPDATE tbl_tickets SET is_active = $2, updated_at = NOW()
		WHERE ticket_id = $1 AND deleted = FALSE
		RETURNING ` + ticketColumns

	return r.returning(ctx, "set ticket active", id, query, id, active)
}

// SetDeleted toggles the soft delete flag regardless of its current value.
func (r *ticketRepository) SetDeleted(ctx context.Context, id int64, deleted bool) (*entity.Ticket, error) {
	query := `
		UPDATE tbl_tickets SET deleted = $2, updated_at = NOW()
		WHERE ticket_id = $1
		RETURNING ` + ticketColumns

	ticket, err := r.returning(ctx, "set ticket deleted", id, query, id, deleted)
	if err == nil {
		r.log.Info("Ticket deleted flag changed",
			zap.Int64("ticket_id", id),
			zap.Bool("deleted", deleted),
		)
	}
	return ticket, err
}

func (r *ticketRepository) returning(ctx context.Context, operation string, id int64, query string, args ...any) (*entity.Ticket, error) {
	var ticket entity.Ticket
	err := scanTicket(r.db.QueryRow(ctx, query, args...), &ticket)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.log.Error("Failed to "+operation,
			zap.Error(err),
			zap.Int64("ticket_id", id),
		)
		return nil, fmt.Errorf("failed to %s: %w", operation, translateError(err))
	}

	return &ticket, nil
}
