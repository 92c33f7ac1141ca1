package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Sale struct {
	ID          int64           `db:"sale_id"`
	UserID      *int64          `db:"user_id"`
	PartnerID   *int64          `db:"partner_id"`
	TotalAmount decimal.Decimal `db:"total_amount"`
	Base

	Details []*SaleDetail `db:"-"`
}

type SaleDetail struct {
	ID       int64           `db:"sale_detail_id"`
	SaleID   int64           `db:"sale_id"`
	TicketID *int64          `db:"ticket_id"`
	Amount   decimal.Decimal `db:"amount"`
	Base
}

// SaleFilter narrows sale listings; deleted rows are always excluded.
type SaleFilter struct {
	UserID      *int64
	PartnerID   *int64
	IsActive    *bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type SalePatch struct {
	UserID      *int64
	PartnerID   *int64
	TotalAmount *decimal.Decimal
	IsActive    *bool
}

func (p SalePatch) IsEmpty() bool {
	return p.UserID == nil && p.PartnerID == nil && p.TotalAmount == nil && p.IsActive == nil
}

type SaleDetailPatch struct {
	TicketID *int64
	Amount   *decimal.Decimal
	IsActive *bool
}

func (p SaleDetailPatch) IsEmpty() bool {
	return p.TicketID == nil && p.Amount == nil && p.IsActive == nil
}

type SaleStats struct {
	TotalSales    int64
	ActiveSales   int64
	TotalRevenue  decimal.Decimal
	AverageAmount decimal.Decimal
}
