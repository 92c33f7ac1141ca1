package adaptor

import (
	"ticket-sales/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Ticket *TicketHandler
	Sale   *SaleHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Ticket: NewTicketHandler(service.Ticket, log),
		Sale:   NewSaleHandler(service.Sale, log),
	}
}
