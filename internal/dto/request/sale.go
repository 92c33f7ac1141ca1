package request

import (
	"time"

	"github.com/shopspring/decimal"
)

type SaleDetailRequest struct {
	TicketID *int64           `json:"ticket_id,omitempty" validate:"omitempty,gt=0"`
	Amount   *decimal.Decimal `json:"amount" validate:"required"`
}

type CreateSaleRequest struct {
	UserID      *int64              `json:"user_id,omitempty" validate:"omitempty,gt=0"`
	PartnerID   *int64              `json:"partner_id,omitempty" validate:"omitempty,gt=0"`
	TotalAmount *decimal.Decimal    `json:"total_amount" validate:"required"`
	Details     []SaleDetailRequest `json:"details" validate:"dive"`
}

type UpdateSaleRequest struct {
	UserID      *int64           `json:"user_id,omitempty" validate:"omitempty,gt=0"`
	PartnerID   *int64           `json:"partner_id,omitempty" validate:"omitempty,gt=0"`
	TotalAmount *decimal.Decimal `json:"total_amount,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

type UpdateSaleDetailRequest struct {
	TicketID *int64           `json:"ticket_id,omitempty" validate:"omitempty,gt=0"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	IsActive *bool            `json:"is_active,omitempty"`
}

type DateRangeRequest struct {
	Start time.Time
	End   time.Time
}
