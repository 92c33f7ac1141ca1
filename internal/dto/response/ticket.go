package response

import (
	"time"

	"ticket-sales/internal/data/entity"

	"github.com/samber/lo"
)

type TicketResponse struct {
	ID              int64      `json:"id"`
	EventLocationID int64      `json:"event_location_id"`
	Code            string     `json:"code"`
	IsUsed          bool       `json:"is_used"`
	UsedAt          *time.Time `json:"used_at"`
	IsActive        bool       `json:"is_active"`
	Deleted         bool       `json:"deleted"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type TicketStatisticsResponse struct {
	Total     int64   `json:"total"`
	Used      int64   `json:"used"`
	Unused    int64   `json:"unused"`
	Active    int64   `json:"active"`
	UsageRate float64 `json:"usage_rate"`
}

func TicketToResponse(t *entity.Ticket) TicketResponse {
	return TicketResponse{
		ID:              t.ID,
		EventLocationID: t.EventLocationID,
		Code:            t.Code,
		IsUsed:          t.IsUsed,
		UsedAt:          t.UsedAt,
		IsActive:        t.IsActive,
		Deleted:         t.Deleted,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func TicketsToResponse(tickets []*entity.Ticket) []TicketResponse {
	return lo.Map(tickets, func(t *entity.Ticket, _ int) TicketResponse {
		return TicketToResponse(t)
	})
}
