package usecase

import (
	"context"
	"errors"
	"fmt"

	"ticket-sales/internal/data/cache"
	"ticket-sales/internal/data/entity"
	"ticket-sales/internal/data/repository"
	"ticket-sales/internal/dto/request"
	"ticket-sales/internal/dto/response"
	"ticket-sales/pkg/metrics"
	"ticket-sales/pkg/utils"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type SaleService interface {
	CreateSale(ctx context.Context, req *request.CreateSaleRequest) (*response.SaleResponse, error)
	UpdateSale(ctx context.Context, id int64, req *request.UpdateSaleRequest) (*response.SaleResponse, error)
	UpdateSaleDetail(ctx context.Context, id int64, req *request.UpdateSaleDetailRequest) (*response.SaleDetailResponse, error)

	GetSaleByID(ctx context.Context, id int64) (*response.SaleResponse, error)
	GetSaleDetailByID(ctx context.Context, id int64) (*response.SaleDetailResponse, error)
	GetSaleDetailsBySaleID(ctx context.Context, saleID int64) ([]response.SaleDetailResponse, error)
	GetAllSales(ctx context.Context) ([]response.SaleResponse, error)
	GetActiveSales(ctx context.Context) ([]response.SaleResponse, error)
	GetSalesByUser(ctx context.Context, userID int64) ([]response.SaleResponse, error)
	GetSalesByPartner(ctx context.Context, partnerID int64) ([]response.SaleResponse, error)
	GetSalesByDateRange(ctx context.Context, req request.DateRangeRequest) ([]response.SaleResponse, error)
	GetSalesPaginated(ctx context.Context, req request.PaginatedRequest) (*response.PaginatedResponse[response.SaleResponse], error)
	GetSaleStatistics(ctx context.Context) (*response.SaleStatisticsResponse, error)

	ActivateSale(ctx context.Context, id int64) (*response.SaleResponse, error)
	DeactivateSale(ctx context.Context, id int64) (*response.SaleResponse, error)
	DeleteSale(ctx context.Context, id int64) error
	RestoreSale(ctx context.Context, id int64) (*response.SaleResponse, error)
	DeleteSaleDetail(ctx context.Context, id int64) error
	RestoreSaleDetail(ctx context.Context, id int64) (*response.SaleDetailResponse, error)
}

type saleService struct {
	repo  *repository.Repository
	cache cache.StatsCache
	log   *zap.Logger
}

func NewSaleService(repo *repository.Repository, statsCache cache.StatsCache, log *zap.Logger) SaleService {
	return &saleService{
		repo:  repo,
		cache: statsCache,
		log:   log.With(zap.String("service", "sale")),
	}
}

// maxAmount is the largest value a NUMERIC(10,2) column holds.
var maxAmount = decimal.RequireFromString("99999999.99")

func checkAmount(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: %s must not be negative", ErrValidation, field)
	}
	if amount.Round(2).GreaterThan(maxAmount) {
		return fmt.Errorf("%w: %s must not exceed %s", ErrValidation, field, maxAmount.StringFixed(2))
	}
	return nil
}

// checkTicketRef verifies that a referenced ticket exists and is not deleted.
func (s *saleService) checkTicketRef(ctx context.Context, ticketID *int64) error {
	if ticketID == nil {
		return nil
	}

	ticket, err := s.repo.Ticket.FindByID(ctx, *ticketID)
	if err != nil {
		return fmt.Errorf("check ticket: %w", err)
	}
	if ticket == nil {
		return fmt.Errorf("ticket %d %w", *ticketID, ErrNotFound)
	}
	return nil
}

// CreateSale stores the sale and its details together and returns the sale
// as re-read from the store.
func (s *saleService) CreateSale(ctx context.Context, req *request.CreateSaleRequest) (*response.SaleResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create sale validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}
	if err := checkAmount("total_amount", *req.TotalAmount); err != nil {
		return nil, err
	}

	sale := &entity.Sale{
		UserID:      req.UserID,
		PartnerID:   req.PartnerID,
		TotalAmount: req.TotalAmount.Round(2),
		Base:        entity.Base{IsActive: true},
	}

	for i, d := range req.Details {
		if err := checkAmount(fmt.Sprintf("details[%d].amount", i), *d.Amount); err != nil {
			return nil, err
		}
		if err := s.checkTicketRef(ctx, d.TicketID); err != nil {
			return nil, err
		}
		sale.Details = append(sale.Details, &entity.SaleDetail{
			TicketID: d.TicketID,
			Amount:   d.Amount.Round(2),
			Base:     entity.Base{IsActive: true},
		})
	}

	if err := s.repo.Sale.CreateWithDetails(ctx, sale); err != nil {
		if errors.Is(err, repository.ErrConstraintViolation) {
			return nil, fmt.Errorf("create sale: %w: %w", ErrConstraintViolation, err)
		}
		return nil, fmt.Errorf("create sale: %w", err)
	}

	metrics.SalesCreated.Inc()
	invalidateStats(ctx, s.cache, s.log, cache.SaleStatsKey)

	s.log.Info("Sale created",
		zap.Int64("sale_id", sale.ID),
		zap.String("total_amount", sale.TotalAmount.StringFixed(2)),
		zap.Int("details", len(sale.Details)),
	)

	return s.GetSaleByID(ctx, sale.ID)
}

func (s *saleService) UpdateSale(ctx context.Context, id int64, req *request.UpdateSaleRequest) (*response.SaleResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update sale validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	patch := entity.SalePatch{
		UserID:    req.UserID,
		PartnerID: req.PartnerID,
		IsActive:  req.IsActive,
	}
	if req.TotalAmount != nil {
		if err := checkAmount("total_amount", *req.TotalAmount); err != nil {
			return nil, err
		}
		patch.TotalAmount = lo.ToPtr(req.TotalAmount.Round(2))
	}
	if patch.IsEmpty() {
		return s.GetSaleByID(ctx, id)
	}

	if _, err := s.repo.Sale.Update(ctx, id, patch); err != nil {
		return nil, s.translateMutationError(err, "sale", id)
	}

	invalidateStats(ctx, s.cache, s.log, cache.SaleStatsKey)
	s.log.Info("Sale updated", zap.Int64("sale_id", id))

	return s.GetSaleByID(ctx, id)
}

func (s *saleService) UpdateSaleDetail(ctx context.Context, id int64, req *request.UpdateSaleDetailRequest) (*response.SaleDetailResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update sale detail validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	patch := entity.SaleDetailPatch{
		TicketID: req.TicketID,
		IsActive: req.IsActive,
	}
	if req.Amount != nil {
		if err := checkAmount("amount", *req.Amount); err != nil {
			return nil, err
		}
		patch.Amount = lo.ToPtr(req.Amount.Round(2))
	}
	if patch.IsEmpty() {
		return s.GetSaleDetailByID(ctx, id)
	}
	if err := s.checkTicketRef(ctx, req.TicketID); err != nil {
		return nil, err
	}

	detail, err := s.repo.SaleDetail.Update(ctx, id, patch)
	if err != nil {
		return nil, s.translateMutationError(err, "sale detail", id)
	}

	s.log.Info("Sale detail updated", zap.Int64("sale_detail_id", id))

	resp := response.SaleDetailToResponse(detail)
	return &resp, nil
}

func (s *saleService) GetSaleByID(ctx context.Context, id int64) (*response.SaleResponse, error) {
	sale, err := s.findSale(ctx, id)
	if err != nil {
		return nil, err
	}

	details, err := s.repo.SaleDetail.FindBySaleID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get sale details: %w", err)
	}
	sale.Details = details

	resp := response.SaleToResponse(sale)
	return &resp, nil
}

func (s *saleService) findSale(ctx context.Context, id int64) (*entity.Sale, error) {
	sale, err := s.repo.Sale.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get sale by id: %w", err)
	}
	if sale == nil {
		return nil, fmt.Errorf("sale %d %w", id, ErrNotFound)
	}
	return sale, nil
}

func (s *saleService) GetSaleDetailByID(ctx context.Context, id int64) (*response.SaleDetailResponse, error) {
	detail, err := s.repo.SaleDetail.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get sale detail by id: %w", err)
	}
	if detail == nil {
		return nil, fmt.Errorf("sale detail %d %w", id, ErrNotFound)
	}

	resp := response.SaleDetailToResponse(detail)
	return &resp, nil
}

func (s *saleService) GetSaleDetailsBySaleID(ctx context.Context, saleID int64) ([]response.SaleDetailResponse, error) {
	if _, err := s.findSale(ctx, saleID); err != nil {
		return nil, err
	}

	details, err := s.repo.SaleDetail.FindBySaleID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("get sale details: %w", err)
	}
	return response.SaleDetailsToResponse(details), nil
}

// attachDetails loads the details of every sale with a single query.
func (s *saleService) attachDetails(ctx context.Context, sales []*entity.Sale) error {
	ids := lo.Map(sales, func(sale *entity.Sale, _ int) int64 { return sale.ID })

	details, err := s.repo.SaleDetail.FindBySaleIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("get sale details: %w", err)
	}

	bySale := lo.GroupBy(details, func(d *entity.SaleDetail) int64 { return d.SaleID })
	for _, sale := range sales {
		sale.Details = bySale[sale.ID]
	}
	return nil
}

func (s *saleService) list(ctx context.Context, filter entity.SaleFilter) ([]response.SaleResponse, error) {
	sales, err := s.repo.Sale.FindMany(ctx, filter, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	if err := s.attachDetails(ctx, sales); err != nil {
		return nil, err
	}
	return response.SalesToResponse(sales), nil
}

func (s *saleService) GetAllSales(ctx context.Context) ([]response.SaleResponse, error) {
	return s.list(ctx, entity.SaleFilter{})
}

func (s *saleService) GetActiveSales(ctx context.Context) ([]response.SaleResponse, error) {
	return s.list(ctx, entity.SaleFilter{IsActive: lo.ToPtr(true)})
}

func (s *saleService) GetSalesByUser(ctx context.Context, userID int64) ([]response.SaleResponse, error) {
	return s.list(ctx, entity.SaleFilter{UserID: &userID})
}

func (s *saleService) GetSalesByPartner(ctx context.Context, partnerID int64) ([]response.SaleResponse, error) {
	return s.list(ctx, entity.SaleFilter{PartnerID: &partnerID})
}

// GetSalesByDateRange lists sales created within [start, end].
func (s *saleService) GetSalesByDateRange(ctx context.Context, req request.DateRangeRequest) ([]response.SaleResponse, error) {
	if req.Start.After(req.End) {
		return nil, fmt.Errorf("%w: start must not be after end", ErrValidation)
	}
	return s.list(ctx, entity.SaleFilter{CreatedFrom: &req.Start, CreatedTo: &req.End})
}

func (s *saleService) GetSalesPaginated(ctx context.Context, req request.PaginatedRequest) (*response.PaginatedResponse[response.SaleResponse], error) {
	if err := validatePage(req); err != nil {
		s.log.Warn("Invalid sale pagination", zap.Int("page", req.Page), zap.Int("size", req.Size))
		return nil, err
	}

	sales, err := s.repo.Sale.FindMany(ctx, entity.SaleFilter{}, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get sales: %w", err)
	}
	if err := s.attachDetails(ctx, sales); err != nil {
		return nil, err
	}

	total, err := s.repo.Sale.Count(ctx, entity.SaleFilter{})
	if err != nil {
		return nil, fmt.Errorf("count sales: %w", err)
	}

	s.log.Info("Sales retrieved",
		zap.Int("count", len(sales)),
		zap.Int64("total", total),
		zap.Int("page", req.Page),
		zap.Int("size", req.Limit()),
	)

	return response.NewPaginatedResponse(response.SalesToResponse(sales), req.Page, req.Limit(), total), nil
}

func (s *saleService) GetSaleStatistics(ctx context.Context) (*response.SaleStatisticsResponse, error) {
	stats, err := cachedStats(ctx, s.cache, s.log, cache.SaleStatsKey, func(ctx context.Context) (response.SaleStatisticsResponse, error) {
		raw, err := s.repo.Sale.Stats(ctx)
		if err != nil {
			return response.SaleStatisticsResponse{}, fmt.Errorf("sale statistics: %w", err)
		}
		return response.SaleStatsToResponse(raw), nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *saleService) ActivateSale(ctx context.Context, id int64) (*response.SaleResponse, error) {
	return s.setActive(ctx, id, true)
}

func (s *saleService) DeactivateSale(ctx context.Context, id int64) (*response.SaleResponse, error) {
	return s.setActive(ctx, id, false)
}

func (s *saleService) setActive(ctx context.Context, id int64, active bool) (*response.SaleResponse, error) {
	if _, err := s.repo.Sale.SetActive(ctx, id, active); err != nil {
		return nil, s.translateMutationError(err, "sale", id)
	}

	invalidateStats(ctx, s.cache, s.log, cache.SaleStatsKey)
	s.log.Info("Sale active flag changed",
		zap.Int64("sale_id", id),
		zap.Bool("is_active", active),
	)

	return s.GetSaleByID(ctx, id)
}

// DeleteSale soft deletes the sale header. Its details keep their own
// deleted flag.
func (s *saleService) DeleteSale(ctx context.Context, id int64) error {
	if _, err := s.findSale(ctx, id); err != nil {
		return err
	}

	if _, err := s.repo.Sale.SetDeleted(ctx, id, true); err != nil {
		return s.translateMutationError(err, "sale", id)
	}

	invalidateStats(ctx, s.cache, s.log, cache.SaleStatsKey)
	s.log.Info("Sale deleted", zap.Int64("sale_id", id))
	return nil
}

func (s *saleService) RestoreSale(ctx context.Context, id int64) (*response.SaleResponse, error) {
	existing, err := s.repo.Sale.FindByIDUnscoped(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("sale %d %w", id, ErrNotFound)
	}

	if _, err := s.repo.Sale.SetDeleted(ctx, id, false); err != nil {
		return nil, s.translateMutationError(err, "sale", id)
	}

	invalidateStats(ctx, s.cache, s.log, cache.SaleStatsKey)
	s.log.Info("Sale restored", zap.Int64("sale_id", id))

	return s.GetSaleByID(ctx, id)
}

func (s *saleService) DeleteSaleDetail(ctx context.Context, id int64) error {
	detail, err := s.repo.SaleDetail.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get sale detail: %w", err)
	}
	if detail == nil {
		return fmt.Errorf("sale detail %d %w", id, ErrNotFound)
	}

	if _, err := s.repo.SaleDetail.SetDeleted(ctx, id, true); err != nil {
		return s.translateMutationError(err, "sale detail", id)
	}

	s.log.Info("Sale detail deleted", zap.Int64("sale_detail_id", id))
	return nil
}

func (s *saleService) RestoreSaleDetail(ctx context.Context, id int64) (*response.SaleDetailResponse, error) {
	existing, err := s.repo.SaleDetail.FindByIDUnscoped(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get sale detail: %w", err)
	}
	if existing == nil {
		return nil, fmt.Errorf("sale detail %d %w", id, ErrNotFound)
	}

	detail, err := s.repo.SaleDetail.SetDeleted(ctx, id, false)
	if err != nil {
		return nil, s.translateMutationError(err, "sale detail", id)
	}

	s.log.Info("Sale detail restored", zap.Int64("sale_detail_id", id))

	resp := response.SaleDetailToResponse(detail)
	return &resp, nil
}

func (s *saleService) translateMutationError(err error, kind string, id int64) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s %d %w", kind, id, ErrNotFound)
	case errors.Is(err, repository.ErrConstraintViolation):
		return fmt.Errorf("%s %d: %w: %w", kind, id, ErrConstraintViolation, err)
	default:
		return fmt.Errorf("update %s %d: %w", kind, id, err)
	}
}
