package usecase

import (
	"ticket-sales/internal/data/cache"
	"ticket-sales/internal/data/repository"

	"go.uber.org/zap"
)

type Service struct {
	Ticket TicketService
	Sale   SaleService
}

func NewService(repo *repository.Repository, statsCache cache.StatsCache, log *zap.Logger) *Service {
	return &Service{
		Ticket: NewTicketService(repo, NewCodeGenerator(repo.Ticket, log), statsCache, log),
		Sale:   NewSaleService(repo, statsCache, log),
	}
}
