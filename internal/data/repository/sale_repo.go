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

const saleColumns = `sale_id, user_id, partner_id, total_amount,
		       is_active, deleted, created_at, updated_at`

type SaleRepository interface {
	CreateWithDetails(ctx context.Context, sale *entity.Sale) error

	FindByID(ctx context.Context, id int64) (*entity.Sale, error)
	FindByIDUnscoped(ctx context.Context, id int64) (*entity.Sale, error)
	FindMany(ctx context.Context, filter entity.SaleFilter, limit, offset int) ([]*entity.Sale, error)
	Count(ctx context.Context, filter entity.SaleFilter) (int64, error)

	Update(ctx context.Context, id int64, patch entity.SalePatch) (*entity.Sale, error)
	SetActive(ctx context.Context, id int64, active bool) (*entity.Sale, error)
	SetDeleted(ctx context.Context, id int64, deleted bool) (*entity.Sale, error)

	Stats(ctx context.Context) (*entity.SaleStats, error)
}

type saleRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSaleRepository(db database.PgxIface, log *zap.Logger) SaleRepository {
	return &saleRepository{
		db:  db,
		log: log.With(zap.String("repository", "sale")),
	}
}

func scanSale(row pgx.Row, s *entity.Sale) error {
	return row.Scan(
		&s.ID,
		&s.UserID,
		&s.PartnerID,
		&s.TotalAmount,
		&s.IsActive,
		&s.Deleted,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
}

// CreateWithDetails stores the sale header and its details in one
// transaction, filling in the generated ids and timestamps.
func (r *saleRepository) CreateWithDetails(ctx context.Context, sale *entity.Sale) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin sale transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO tbl_sales (user_id, partner_id, total_amount, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + saleColumns

	if err := scanSale(tx.QueryRow(ctx, query, sale.UserID, sale.PartnerID, sale.TotalAmount, sale.IsActive), sale); err != nil {
		r.log.Error("Failed to create sale",
			zap.Error(err),
			zap.String("total_amount", sale.TotalAmount.String()),
		)
		return fmt.Errorf("failed to create sale: %w", translateError(err))
	}

	for i, detail := range sale.Details {
		detail.SaleID = sale.ID
		if err := insertSaleDetail(ctx, tx, detail); err != nil {
			r.log.Error("Failed to create sale detail",
				zap.Error(err),
				zap.Int64("sale_id", sale.ID),
				zap.Int("index", i),
			)
			return fmt.Errorf("failed to create sale detail %d: %w", i, translateError(err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit sale transaction", zap.Error(err))
		return fmt.Errorf("failed to commit sale: %w", translateError(err))
	}

	return nil
}

func (r *saleRepository) findOne(ctx context.Context, where string, id int64) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM tbl_sales WHERE ` + where

	var sale entity.Sale
	err := scanSale(r.db.QueryRow(ctx, query, id), &sale)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find sale",
			zap.Error(err),
			zap.Int64("sale_id", id),
		)
		return nil, fmt.Errorf("failed to find sale: %w", err)
	}

	return &sale, nil
}

func (r *saleRepository) FindByID(ctx context.Context, id int64) (*entity.Sale, error) {
	return r.findOne(ctx, "sale_id = $1 AND deleted = FALSE", id)
}

func (r *saleRepository) FindByIDUnscoped(ctx context.Context, id int64) (*entity.Sale, error) {
	return r.findOne(ctx, "sale_id = $1", id)
}

func applySaleFilter(b *sqlBuilder, filter entity.SaleFilter) {
	b.WriteString(" WHERE deleted = FALSE")
	if filter.UserID != nil {
		b.WriteString(" AND user_id = " + b.arg(*filter.UserID))
	}
	if filter.PartnerID != nil {
		b.WriteString(" AND partner_id = " + b.arg(*filter.PartnerID))
	}
	if filter.IsActive != nil {
		b.WriteString(" AND is_active = " + b.arg(*filter.IsActive))
	}
	if filter.CreatedFrom != nil {
		b.WriteString(" AND created_at >= " + b.arg(*filter.CreatedFrom))
	}
	if filter.CreatedTo != nil {
		b.WriteString(" AND created_at <= " + b.arg(*filter.CreatedTo))
	}
}

func (r *saleRepository) FindMany(ctx context.Context, filter entity.SaleFilter, limit, offset int) ([]*entity.Sale, error) {
	b := &sqlBuilder{}
	b.WriteString(`SELECT ` + saleColumns + ` FROM tbl_sales`)
	applySaleFilter(b, filter)
	b.page("created_at DESC, sale_id DESC", limit, offset)

	rows, err := r.db.Query(ctx, b.String(), b.args...)
	if err != nil {
		r.log.Error("Failed to find sales",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("failed to find sales: %w", err)
	}
	defer rows.Close()

	sales := make([]*entity.Sale, 0)
	for rows.Next() {
		var sale entity.Sale
		if err := scanSale(rows, &sale); err != nil {
			r.log.Error("Failed to scan sale row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sales = append(sales, &sale)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	r.log.Debug("Sales found",
		zap.Int("count", len(sales)),
		zap.Int("limit", limit),
		zap.Int("offset", offset),
	)

	return sales, nil
}

func (r *saleRepository) Count(ctx context.Context, filter entity.SaleFilter) (int64, error) {
	b := &sqlBuilder{}
	b.WriteString(`SELECT COUNT(*) FROM tbl_sales`)
	applySaleFilter(b, filter)

	var total int64
	if err := r.db.QueryRow(ctx, b.String(), b.args...).Scan(&total); err != nil {
		r.log.Error("Failed to count sales", zap.Error(err))
		return 0, fmt.Errorf("failed to count sales: %w", err)
	}

	return total, nil
}

func (r *saleRepository) Update(ctx context.Context, id int64, patch entity.SalePatch) (*entity.Sale, error) {
	b := &sqlBuilder{}
	b.WriteString(`UPDATE tbl_sales SET updated_at = NOW()`)
	if patch.UserID != nil {
		b.WriteString(", user_id = " + b.arg(*patch.UserID))
	}
	if patch.PartnerID != nil {
		b.WriteString(", partner_id = " + b.arg(*patch.PartnerID))
	}
	if patch.TotalAmount != nil {
		b.WriteString(", total_amount = " + b.arg(*patch.TotalAmount))
	}
	if patch.IsActive != nil {
		b.WriteString(", is_active = " + b.arg(*patch.IsActive))
	}
	b.WriteString(" WHERE sale_id = " + b.arg(id) + " AND deleted = FALSE RETURNING " + saleColumns)

	return r.returning(ctx, "update sale", id, b.String(), b.args...)
}

func (r *saleRepository) SetActive(ctx context.Context, id int64, active bool) (*entity.Sale, error) {
	query := `
		UPDATE tbl_sales SET is_active = $2, updated_at = NOW()
		WHERE sale_id = $1 AND deleted = FALSE
		RETURNING ` + saleColumns

	return r.returning(ctx, "set sale active", id, query, id, active)
}

// SetDeleted toggles the sale header only; details keep their own flag.
func (r *saleRepository) SetDeleted(ctx context.Context, id int64, deleted bool) (*entity.Sale, error) {
	query := `
		UPDATE tbl_sales SET deleted = $2, updated_at = NOW()
		WHERE sale_id = $1
		RETURNING ` + saleColumns

	return r.returning(ctx, "set sale deleted", id, query, id, deleted)
}

func (r *saleRepository) Stats(ctx context.Context) (*entity.SaleStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE is_active),
		       COALESCE(SUM(total_amount), 0),
		       COALESCE(ROUND(AVG(total_amount), 2), 0)
		FROM tbl_sales
		WHERE deleted = FALSE`

	var stats entity.SaleStats
	err := r.db.QueryRow(ctx, query).Scan(
		&stats.TotalSales,
		&stats.ActiveSales,
		&stats.TotalRevenue,
		&stats.AverageAmount,
	)
	if err != nil {
		r.log.Error("Failed to aggregate sales", zap.Error(err))
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}

	return &stats, nil
}

func (r *saleRepository) returning(ctx context.Context, operation string, id int64, query string, args ...any) (*entity.Sale, error) {
	var sale entity.Sale
	err := scanSale(r.db.QueryRow(ctx, query, args...), &sale)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.log.Error("Failed to "+operation,
			zap.Error(err),
			zap.Int64("sale_id", id),
		)
		return nil, fmt.Errorf("failed to %s: %w", operation, translateError(err))
	}

	return &sale, nil
}
