package response

import (
	"time"

	"ticket-sales/internal/data/entity"

	"github.com/samber/lo"
)

type SaleDetailResponse struct {
	ID        int64     `json:"id"`
	SaleID    int64     `json:"sale_id"`
	TicketID  *int64    `json:"ticket_id"`
	Amount    string    `json:"amount"`
	IsActive  bool      `json:"is_active"`
	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SaleResponse struct {
	ID          int64                `json:"id"`
	UserID      *int64               `json:"user_id"`
	PartnerID   *int64               `json:"partner_id"`
	TotalAmount string               `json:"total_amount"`
	IsActive    bool                 `json:"is_active"`
	Deleted     bool                 `json:"deleted"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	Details     []SaleDetailResponse `json:"details"`
}

type SaleStatisticsResponse struct {
	TotalSales        int64  `json:"total_sales"`
	ActiveSales       int64  `json:"active_sales"`
	TotalRevenue      string `json:"total_revenue"`
	AverageSaleAmount string `json:"average_sale_amount"`
}

func SaleDetailToResponse(d *entity.SaleDetail) SaleDetailResponse {
	return SaleDetailResponse{
		ID:        d.ID,
		SaleID:    d.SaleID,
		TicketID:  d.TicketID,
		Amount:    d.Amount.StringFixed(2),
		IsActive:  d.IsActive,
		Deleted:   d.Deleted,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func SaleDetailsToResponse(details []*entity.SaleDetail) []SaleDetailResponse {
	return lo.Map(details, func(d *entity.SaleDetail, _ int) SaleDetailResponse {
		return SaleDetailToResponse(d)
	})
}

func SaleToResponse(s *entity.Sale) SaleResponse {
	return SaleResponse{
		ID:          s.ID,
		UserID:      s.UserID,
		PartnerID:   s.PartnerID,
		TotalAmount: s.TotalAmount.StringFixed(2),
		IsActive:    s.IsActive,
		Deleted:     s.Deleted,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		Details:     SaleDetailsToResponse(s.Details),
	}
}

func SalesToResponse(sales []*entity.Sale) []SaleResponse {
	return lo.Map(sales, func(s *entity.Sale, _ int) SaleResponse {
		return SaleToResponse(s)
	})
}

func SaleStatsToResponse(stats *entity.SaleStats) SaleStatisticsResponse {
	return SaleStatisticsResponse{
		TotalSales:        stats.TotalSales,
		ActiveSales:       stats.ActiveSales,
		TotalRevenue:      stats.TotalRevenue.StringFixed(2),
		AverageSaleAmount: stats.AverageAmount.StringFixed(2),
	}
}
