package repository

import (
	"ticket-sales/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Ticket     TicketRepository
	Sale       SaleRepository
	SaleDetail SaleDetailRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Ticket:     NewTicketRepository(db, log),
		Sale:       NewSaleRepository(db, log),
		SaleDetail: NewSaleDetailRepository(db, log),
	}
}
