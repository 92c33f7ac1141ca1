package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ticket-sales/internal/data/cache"
	"ticket-sales/internal/data/entity"
	"ticket-sales/internal/data/repository"
	"ticket-sales/internal/dto/request"
	"ticket-sales/internal/dto/response"
	"ticket-sales/pkg/metrics"
	"ticket-sales/pkg/utils"

	"github.com/samber/lo"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	MinBatchQuantity = 1
	MaxBatchQuantity = 1000

	qrCodeSize = 256
)

type TicketService interface {
	CreateTicket(ctx context.Context, req *request.CreateTicketRequest) (*response.TicketResponse, error)
	GenerateTickets(ctx context.Context, req *request.GenerateTicketsRequest) ([]response.TicketResponse, error)
	UpdateTicket(ctx context.Context, id int64, req *request.UpdateTicketRequest) (*response.TicketResponse, error)

	UseTicketByCode(ctx context.Context, code string) (*response.TicketResponse, error)
	UseTicketByID(ctx context.Context, id int64) (*response.TicketResponse, error)

	GetTicketByID(ctx context.Context, id int64) (*response.TicketResponse, error)
	GetTicketByCode(ctx context.Context, code string) (*response.TicketResponse, error)
	GetTicketQRCode(ctx context.Context, code string) ([]byte, error)
	GetTicketsByEventLocation(ctx context.Context, eventLocationID int64) ([]response.TicketResponse, error)
	GetAllTickets(ctx context.Context) ([]response.TicketResponse, error)
	GetActiveTickets(ctx context.Context) ([]response.TicketResponse, error)
	GetUnusedTickets(ctx context.Context) ([]response.TicketResponse, error)
	GetUsedTickets(ctx context.Context) ([]response.TicketResponse, error)
	GetTicketsPaginated(ctx context.Context, req request.PaginatedRequest) (*response.PaginatedResponse[response.TicketResponse], error)
	GetTicketStatistics(ctx context.Context) (*response.TicketStatisticsResponse, error)

	ActivateTicket(ctx context.Context, id int64) (*response.TicketResponse, error)
	DeactivateTicket(ctx context.Context, id int64) (*response.TicketResponse, error)
	DeleteTicket(ctx context.Context, id int64) error
	RestoreTicket(ctx context.Context, id int64) (*response.TicketResponse, error)
}

type ticketService struct {
	repo  *repository.Repository
	codes CodeGenerator
	cache cache.StatsCache
	log   *zap.Logger
}

func NewTicketService(
	repo *repository.Repository,
	codes CodeGenerator,
	statsCache cache.StatsCache,
	log *zap.Logger,
) TicketService {
	return &ticketService{
		repo:  repo,
		codes: codes,
		cache: statsCache,
		log:   log.With(zap.String("service", "ticket")),
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *ticketService) CreateTicket(ctx context.Context, req *request.CreateTicketRequest) (*response.TicketResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create ticket validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	code, err := s.codes.Generate(ctx, nil)
	if err != nil {
		s.log.Error("Failed to generate ticket code", zap.Error(err))
		return nil, fmt.Errorf("generate code: %w", err)
	}

	ticket := &entity.Ticket{
		EventLocationID: req.EventLocationID,
		Code:            code,
		Base:            entity.Base{IsActive: true},
	}

	if err := s.repo.Ticket.Create(ctx, ticket); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			s.log.Warn("Ticket code taken between check and insert", zap.String("code", code))
			return nil, fmt.Errorf("code %q: %w", code, ErrDuplicateCode)
		}
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	metrics.TicketsIssued.Inc()
	invalidateStats(ctx, s.cache, s.log, cache.TicketStatsKey)

	s.log.Info("Ticket created",
		zap.Int64("ticket_id", ticket.ID),
		zap.String("code", ticket.Code),
		zap.Int64("event_location_id", ticket.EventLocationID),
	)

	resp := response.TicketToResponse(ticket)
	return &resp, nil
}

// GenerateTickets issues quantity tickets for one event location. Codes are
// drawn one at a time and stored in a single all-or-nothing insert.
func (s *ticketService) GenerateTickets(ctx context.Context, req *request.GenerateTicketsRequest) ([]response.TicketResponse, error) {
	if req.Quantity < MinBatchQuantity || req.Quantity > MaxBatchQuantity {
		s.log.Warn("Invalid batch quantity", zap.Int("quantity", req.Quantity))
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuantity, req.Quantity)
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Generate tickets validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	taken := make(map[string]struct{}, req.Quantity)
	tickets := make([]*entity.Ticket, 0, req.Quantity)
	for i := 0; i < req.Quantity; i++ {
		code, err := s.codes.Generate(ctx, taken)
		if err != nil {
			s.log.Error("Failed to generate batch code",
				zap.Error(err),
				zap.Int("index", i),
				zap.Int("quantity", req.Quantity),
			)
			return nil, fmt.Errorf("generate code %d of %d: %w", i+1, req.Quantity, err)
		}

		tickets = append(tickets, &entity.Ticket{
			EventLocationID: req.EventLocationID,
			Code:            code,
			Base:            entity.Base{IsActive: true},
		})
	}

	if err := s.repo.Ticket.BulkCreate(ctx, tickets); err != nil {
		s.log.Error("Batch ticket insert failed",
			zap.Error(err),
			zap.Int("quantity", req.Quantity),
		)
		return nil, fmt.Errorf("%w: %w", ErrBatchCreateFailed, err)
	}

	metrics.TicketsIssued.Add(float64(len(tickets)))
	invalidateStats(ctx, s.cache, s.log, cache.TicketStatsKey)

	s.log.Info("Tickets generated",
		zap.Int("quantity", len(tickets)),
		zap.Int64("event_location_id", req.EventLocationID),
	)

	return response.TicketsToResponse(tickets), nil
}

func (s *ticketService) UpdateTicket(ctx context.Context, id int64, req *request.UpdateTicketRequest) (*response.TicketResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update ticket validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	current, err := s.findTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := entity.TicketPatch{
		EventLocationID: req.EventLocationID,
		Code:            req.Code,
		IsActive:        req.IsActive,
	}
	if patch.IsEmpty() {
		resp := response.TicketToResponse(current)
		return &resp, nil
	}

	if req.Code != nil {
		holder, err := s.repo.Ticket.FindByCode(ctx, *req.Code)
		if err != nil {
			return nil, fmt.Errorf("check code: %w", err)
		}
		if holder != nil && holder.ID != id {
			s.log.Warn("Ticket code held by another ticket",
				zap.Int64("ticket_id", id),
				zap.Int64("holder_id", holder.ID),
				zap.String("code", *req.Code),
			)
			return nil, fmt.Errorf("code %q: %w", *req.Code, ErrDuplicateCode)
		}
	}

	ticket, err := s.repo.Ticket.Update(ctx, id, patch)
	if err != nil {
		return nil, s.translateMutationError(err, id, "update ticket")
	}

	invalidateStats(ctx, s.cache, s.log, cache.TicketStatsKey)
	s.log.Info("Ticket updated", zap.Int64("ticket_id", id))

	resp := response.TicketToResponse(ticket)
	return &resp, nil
}

func (s *ticketService) UseTicketByCode(ctx context.Context, code string) (*response.TicketResponse, error) {
	code = normalizeCode(code)

	ticket, err := s.repo.Ticket.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("find ticket by code: %w", err)
	}
	if ticket == nil {
		s.log.Warn("Use requested for unknown code", zap.String("code", code))
		return nil, fmt.Errorf("ticket with code %q %w", code, ErrNotFound)
	}

	return s.markUsed(ctx, ticket.ID)
}

func (s *ticketService) UseTicketByID(ctx context.Context, id int64) (*response.TicketResponse, error) {
	return s.markUsed(ctx, id)
}

// markUsed runs the conditional update and, when it matches nothing, re-reads
// the ticket to report why. A second pass covers a ticket whose flags changed
// between the update and the re-read.
func (s *ticketService) markUsed(ctx context.Context, id int64) (*response.TicketResponse, error) {
	for attempt := 0; attempt < 2; attempt++ {
		ticket, err := s.repo.Ticket.MarkUsed(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("mark ticket used: %w", err)
		}
		if ticket != nil {
			metrics.TicketsUsed.Inc()
			invalidateStats(ctx, s.cache, s.log, cache.TicketStatsKey)

			s.log.Info("Ticket used",
				zap.Int64("ticket_id", ticket.ID),
				zap.String("code", ticket.Code),
			)

			resp := response.TicketToResponse(ticket)
			return &resp, nil
		}

		current, err := s.findTicket(ctx, id)
		if err != nil {
			return nil, err
		}
		switch {
		case current.IsUsed:
			s.log.Warn("Ticket already used", zap.Int64("ticket_id", id))
			return nil, fmt.Errorf("ticket %d: %w", id, ErrAlreadyUsed)
		case !current.IsActive:
			s.log.Warn("Ticket inactive", zap.Int64("ticket_id", id))
			return nil, fmt.Errorf("ticket %d: %w", id, ErrInactive)
		}
	}

	return nil, fmt.Errorf("ticket %d: %w", id, ErrAlreadyUsed)
}

func (s *ticketService) findTicket(ctx context.Context, id int64) (*entity.Ticket, error) {
	ticket, err := s.repo.Ticket.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get ticket by id: %w", err)
	}
	if ticket == nil {
		return nil, fmt.Errorf("ticket %d %w", id, ErrNotFound)
	}
	return ticket, nil
}

func (s *ticketService) findTicketByCode(ctx context.Context, code string) (*entity.Ticket, error) {
	code = normalizeCode(code)

	ticket, err := s.repo.Ticket.FindByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get ticket by code: %w", err)
	}
	if ticket == nil {
		return nil, fmt.Errorf("ticket with code %q %w", code, ErrNotFound)
	}
	return ticket, nil
}

func (s *ticketService) GetTicketByID(ctx context.Context, id int64) (*response.TicketResponse, error) {
	ticket, err := s.findTicket(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := response.TicketToResponse(ticket)
	return &resp, nil
}

func (s *ticketService) GetTicketByCode(ctx context.Context, code string) (*response.TicketResponse, error) {
	ticket, err := s.findTicketByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	resp := response.TicketToResponse(ticket)
	return &resp, nil
}

// GetTicketQRCode renders the ticket code as a PNG for scanning at the gate.
func (s *ticketService) GetTicketQRCode(ctx context.Context, code string) ([]byte, error) {
	ticket, err := s.findTicketByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(ticket.Code, qrcode.Medium, qrCodeSize)
	if err != nil {
		s.log.Error("Failed to render QR code", zap.Error(err), zap.String("code", ticket.Code))
		return nil, fmt.Errorf("render qr code: %w", err)
	}
	return png, nil
}

func (s *ticketService) list(ctx context.Context, filter entity.TicketFilter) ([]response.TicketResponse, error) {
	tickets, err := s.repo.Ticket.FindMany(ctx, filter, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return response.TicketsToResponse(tickets), nil
}

func (s *ticketService) GetTicketsByEventLocation(ctx context.Context, eventLocationID int64) ([]response.TicketResponse, error) {
	return s.list(ctx, entity.TicketFilter{EventLocationID: &eventLocationID})
}

func (s *ticketService) GetAllTickets(ctx context.Context) ([]response.TicketResponse, error) {
	return s.list(ctx, entity.TicketFilter{})
}

func (s *ticketService) GetActiveTickets(ctx context.Context) ([]response.TicketResponse, error) {
	return s.list(ctx, entity.TicketFilter{IsActive: lo.ToPtr(true)})
}

// GetUnusedTickets lists tickets that can still be used: unused and active.
func (s *ticketService) GetUnusedTickets(ctx context.Context) ([]response.TicketResponse, error) {
	return s.list(ctx, entity.TicketFilter{IsUsed: lo.ToPtr(false), IsActive: lo.ToPtr(true)})
}

func (s *ticketService) GetUsedTickets(ctx context.Context) ([]response.TicketResponse, error) {
	return s.list(ctx, entity.TicketFilter{IsUsed: lo.ToPtr(true)})
}

func (s *ticketService) GetTicketsPaginated(ctx context.Context, req request.PaginatedRequest) (*response.PaginatedResponse[response.TicketResponse], error) {
	if err := validatePage(req); err != nil {
		s.log.Warn("Invalid ticket pagination", zap.Int("page", req.Page), zap.Int("size", req.Size))
		return nil, err
	}

	tickets, err := s.repo.Ticket.FindMany(ctx, entity.TicketFilter{}, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get tickets: %w", err)
	}

	total, err := s.repo.Ticket.Count(ctx, entity.TicketFilter{})
	if err != nil {
		return nil, fmt.Errorf("count tickets: %w", err)
	}

	s.log.Info("Tickets retrieved",
		zap.Int("count", len(tickets)),
		zap.Int64("total", total),
		zap.Int("page", req.Page),
		zap.Int("size", req.Limit()),
	)

	return response.NewPaginatedResponse(response.TicketsToResponse(tickets), req.Page, req.Limit(), total), nil
}

func (s *ticketService) GetTicketStatistics(ctx context.Context) (*response.TicketStatisticsResponse, error) {
	stats, err := cachedStats(ctx, s.cache, s.log, cache.TicketStatsKey, s.computeStatistics)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *ticketService) computeStatistics(ctx context.Context) (response.TicketStatisticsResponse, error) {
	var total, used, active int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		total, err = s.repo.Ticket.Count(gctx, entity.TicketFilter{})
		return err
	})
	g.Go(func() (err error) {
		used, err = s.repo.Ticket.Count(gctx, entity.TicketFilter{IsUsed: lo.ToPtr(true)})
		return err
	})
	g.Go(func() (err error) {
		active, err = s.repo.Ticket.Count(gctx, entity.TicketFilter{IsActive: lo.ToPtr(true)})
		return err
	})
	if err := g.Wait(); err != nil {
		return response.TicketStatisticsResponse{}, fmt.Errorf("ticket statistics: %w", err)
	}

	return response.TicketStatisticsResponse{
		Total:     total,
		Used:      used,
		Unused:    total - used,
		Active:    active,
		UsageRate: usageRate(used, total),
	}, nil
}

func (s *ticketService) ActivateTicket(ctx context.Context, id int64) (*response.TicketResponse, error) {
	return s.setActive(ctx, id, true)
}

func (s *ticketService) DeactivateTicket(ctx context.Context, id int64) (*response.TicketResponse, error) {
	return s.setActive(ctx, id, false)
}

func (s *ticketService) setActive(ctx context.Context, id int64, active bool) (*response.TicketResponse, error) {
	ticket, err := s.repo.Ticket.SetActive(ctx, id, active)
	if err != nil {
		return nil, s.translateMutationError(err, id, "set ticket active")
	}

	invalidateStats(ctx, s.cache, s.log, cache.TicketStatsKey)
	s.log.Info("Ticket active flag changed",
		zap.Int64("ticket_id", id),
		zap.Bool("is_active", active),
	)

	resp := response.TicketToResponse(ticket)
	return &resp, nil
}

func (s *ticketService) DeleteTicket(ctx context.Context, id int64) error {
	if _, err := s.findTicket(ctx, id); err != nil {
		return err
	}

	if _, err := s.repo.Ticket.SetDeleted(ctx, id, true); err != nil {
		return s.translateMutationError(err, id, "delete ticket")
	}

	invalidateStats(ctx, s.cache, s.log, cache.TicketStatsKey)
	return nil
}

// RestoreTicket clears the soft delete flag. Code uniqueness is not checked
// here; the live-code index rejects a restore that would duplicate a code.
func (s *ticketService) RestoreTicket(ctx context.Context, id int64) (*response.TicketResponse, error) {
	existing, err := s.repo.Ticket.FindByIDUnscoped(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("ticket %d %w", id, ErrNotFound)
	}

	ticket, err := s.repo.Ticket.SetDeleted(ctx, id, false)
	if err != nil {
		return nil, s.translateMutationError(err, id, "restore ticket")
	}

	invalidateStats(ctx, s.cache, s.log, cache.TicketStatsKey)
	s.log.Info("Ticket restored", zap.Int64("ticket_id", id))

	resp := response.TicketToResponse(ticket)
	return &resp, nil
}

func (s *ticketService) translateMutationError(err error, id int64, operation string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("ticket %d %w", id, ErrNotFound)
	case errors.Is(err, repository.ErrUniqueViolation):
		s.log.Warn(operation+" rejected by unique code index", zap.Int64("ticket_id", id))
		return fmt.Errorf("ticket %d: %w", id, ErrDuplicateCode)
	case errors.Is(err, repository.ErrConstraintViolation):
		return fmt.Errorf("ticket %d: %w: %w", id, ErrConstraintViolation, err)
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}
