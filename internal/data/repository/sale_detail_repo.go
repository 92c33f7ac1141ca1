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

const saleDetailColumns = `sale_detail_id, sale_id, ticket_id, amount,
		       is_active, deleted, created_at, updated_at`

type SaleDetailRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.SaleDetail, error)
	FindByIDUnscoped(ctx context.Context, id int64) (*entity.SaleDetail, error)
	FindBySaleID(ctx context.Context, saleID int64) ([]*entity.SaleDetail, error)
	FindBySaleIDs(ctx context.Context, saleIDs []int64) ([]*entity.SaleDetail, error)
	Update(ctx context.Context, id int64, patch entity.SaleDetailPatch) (*entity.SaleDetail, error)
	SetDeleted(ctx context.Context, id int64, deleted bool) (*entity.SaleDetail, error)
}

type saleDetailRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSaleDetailRepository(db database.PgxIface, log *zap.Logger) SaleDetailRepository {
	return &saleDetailRepository{
		db:  db,
		log: log.With(zap.String("repository", "sale_detail")),
	}
}

func scanSaleDetail(row pgx.Row, d *entity.SaleDetail) error {
	return row.Scan(
		&d.ID,
		&d.SaleID,
		&d.TicketID,
		&d.Amount,
		&d.IsActive,
		&d.Deleted,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
}

// insertSaleDetail stores one detail through q, which may be a transaction.
func insertSaleDetail(ctx context.Context, q database.Querier, d *entity.SaleDetail) error {
	query := `
		INSERT INTO tbl_sale_details (sale_id, ticket_id, amount, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + saleDetailColumns

	return scanSaleDetail(q.QueryRow(ctx, query, d.SaleID, d.TicketID, d.Amount, d.IsActive), d)
}

func (r *saleDetailRepository) findOne(ctx context.Context, where string, id int64) (*entity.SaleDetail, error) {
	query := `SELECT ` + saleDetailColumns + ` FROM tbl_sale_details WHERE ` + where

	var detail entity.SaleDetail
	err := scanSaleDetail(r.db.QueryRow(ctx, query, id), &detail)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find sale detail",
			zap.Error(err),
			zap.Int64("sale_detail_id", id),
		)
		return nil, fmt.Errorf("failed to find sale detail: %w", err)
	}

	return &detail, nil
}

func (r *saleDetailRepository) FindByID(ctx context.Context, id int64) (*entity.SaleDetail, error) {
	return r.findOne(ctx, "sale_detail_id = $1 AND deleted = FALSE", id)
}

func (r *saleDetailRepository) FindByIDUnscoped(ctx context.Context, id int64) (*entity.SaleDetail, error) {
	return r.findOne(ctx, "sale_detail_id = $1", id)
}

func (r *saleDetailRepository) FindBySaleID(ctx context.Context, saleID int64) ([]*entity.SaleDetail, error) {
	return r.FindBySaleIDs(ctx, []int64{saleID})
}

// FindBySaleIDs returns the non-deleted details of every listed sale in
// insertion order.
func (r *saleDetailRepository) FindBySaleIDs(ctx context.Context, saleIDs []int64) ([]*entity.SaleDetail, error) {
	details := make([]*entity.SaleDetail, 0)
	if len(saleIDs) == 0 {
		return details, nil
	}

	query := `
		SELECT ` + saleDetailColumns + `
		FROM tbl_sale_details
		WHERE sale_id = ANY($1) AND deleted = FALSE
		ORDER BY sale_id, sale_detail_id`

	rows, err := r.db.Query(ctx, query, saleIDs)
	if err != nil {
		r.log.Error("Failed to find sale details",
			zap.Error(err),
			zap.Int64s("sale_ids", saleIDs),
		)
		return nil, fmt.Errorf("failed to find sale details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var detail entity.SaleDetail
		if err := scanSaleDetail(rows, &detail); err != nil {
			r.log.Error("Failed to scan sale detail row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan sale detail: %w", err)
		}
		details = append(details, &detail)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return details, nil
}

func (r *saleDetailRepository) Update(ctx context.Context, id int64, patch entity.SaleDetailPatch) (*entity.SaleDetail, error) {
	b := &sqlBuilder{}
	b.WriteString(`UPDATE tbl_sale_details SET updated_at = NOW()`)
	if patch.TicketID != nil {
		b.WriteString(", ticket_id = " + b.arg(*patch.TicketID))
	}
	if patch.Amount != nil {
		b.WriteString(", amount = " + b.arg(*patch.Amount))
	}
	if patch.IsActive != nil {
		b.WriteString(", is_active = " + b.arg(*patch.IsActive))
	}
	b.WriteString(" WHERE sale_detail_id = " + b.arg(id) + " AND deleted = FALSE RETURNING " + saleDetailColumns)

	return r.returning(ctx, "update sale detail", id, b.String(), b.args...)
}

func (r *saleDetailRepository) SetDeleted(ctx context.Context, id int64, deleted bool) (*entity.SaleDetail, error) {
	query := `
		UPDATE tbl_sale_details SET deleted = $2, updated_at = NOW()
		WHERE sale_detail_id = $1
		RETURNING ` + saleDetailColumns

	return r.returning(ctx, "set sale detail deleted", id, query, id, deleted)
}

func (r *saleDetailRepository) returning(ctx context.Context, operation string, id int64, query string, args ...any) (*entity.SaleDetail, error) {
	var detail entity.SaleDetail
	err := scanSaleDetail(r.db.QueryRow(ctx, query, args...), &detail)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.log.Error("Failed to "+operation,
			zap.Error(err),
			zap.Int64("sale_detail_id", id),
		)
		return nil, fmt.Errorf("failed to %s: %w", operation, translateError(err))
	}

	return &detail, nil
}
