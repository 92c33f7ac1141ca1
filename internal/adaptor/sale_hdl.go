package adaptor

import (
	"context"
	"net/http"
	"time"

	"ticket-sales/internal/dto/request"
	"ticket-sales/internal/dto/response"
	"ticket-sales/internal/usecase"
	"ticket-sales/pkg/utils"

	"go.uber.org/zap"
)

type SaleHandler struct {
	service usecase.SaleService
	log     *zap.Logger
}

func NewSaleHandler(service usecase.SaleService, log *zap.Logger) *SaleHandler {
	return &SaleHandler{
		service: service,
		log:     log.With(zap.String("handler", "sale")),
	}
}

// CreateSale handles POST /api/sales
func (h *SaleHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSaleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sale, err := h.service.CreateSale(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create sale")
		return
	}

	utils.ResponseCreated(w, "Sale created successfully", sale)
}

// UpdateSale handles PUT /api/sales/{id}
func (h *SaleHandler) UpdateSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid sale id", nil)
		return
	}

	var req request.UpdateSaleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sale, err := h.service.UpdateSale(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "update sale")
		return
	}

	utils.ResponseSuccess(w, "Sale updated successfully", sale)
}

// UpdateSaleDetail handles PUT /api/sales/details/{id}
func (h *SaleHandler) UpdateSaleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid sale detail id", nil)
		return
	}

	var req request.UpdateSaleDetailRequest
	if !decodeBody(w, r, &req) {
		return
	}

	detail, err := h.service.UpdateSaleDetail(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "update sale detail")
		return
	}

	utils.ResponseSuccess(w, "Sale detail updated successfully", detail)
}

// GetSales handles GET /api/sales?page=0&size=10
func (h *SaleHandler) GetSales(w http.ResponseWriter, r *http.Request) {
	req, err := pageRequest(r)
	if err != nil {
		writeServiceError(w, h.log, err, "get sales")
		return
	}

	page, err := h.service.GetSalesPaginated(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.log, err, "get sales")
		return
	}

	utils.ResponseSuccess(w, "Sales retrieved successfully", page)
}

// GetSaleByID handles GET /api/sales/{id}
func (h *SaleHandler) GetSaleByID(w http.ResponseWriter, r *http.Request) {
	h.respondByID(w, r, "get sale by id", "Sale retrieved successfully", h.service.GetSaleByID)
}

func (h *SaleHandler) GetAllSales(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, "get all sales", h.service.GetAllSales)
}

func (h *SaleHandler) GetActiveSales(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, "get active sales", h.service.GetActiveSales)
}

// GetSalesByUser handles GET /api/sales/user/{userId}
func (h *SaleHandler) GetSalesByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid user id", nil)
		return
	}

	h.respondList(w, r, "get sales by user", func(ctx context.Context) ([]response.SaleResponse, error) {
		return h.service.GetSalesByUser(ctx, userID)
	})
}

// GetSalesByPartner handles GET /api/sales/partner/{partnerId}
func (h *SaleHandler) GetSalesByPartner(w http.ResponseWriter, r *http.Request) {
	partnerID, err := pathID(r, "partnerId")
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid partner id", nil)
		return
	}

	h.respondList(w, r, "get sales by partner", func(ctx context.Context) ([]response.SaleResponse, error) {
		return h.service.GetSalesByPartner(ctx, partnerID)
	})
}

// GetSalesByDateRange handles GET /api/sales/range?start=...&end=... with
// RFC3339 timestamps
func (h *SaleHandler) GetSalesByDateRange(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	start, err := time.Parse(time.RFC3339, query.Get("start"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid start, expected RFC3339", nil)
		return
	}
	end, err := time.Parse(time.RFC3339, query.Get("end"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid end, expected RFC3339", nil)
		return
	}

	h.respondList(w, r, "get sales by date range", func(ctx context.Context) ([]response.SaleResponse, error) {
		return h.service.GetSalesByDateRange(ctx, request.DateRangeRequest{Start: start, End: end})
	})
}

// GetSaleStatistics handles GET /api/sales/statistics
func (h *SaleHandler) GetSaleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetSaleStatistics(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "get sale statistics")
		return
	}

	utils.ResponseSuccess(w, "Sale statistics retrieved successfully", stats)
}

// GetSaleDetails handles GET /api/sales/{id}/details
func (h *SaleHandler) GetSaleDetails(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid sale id", nil)
		return
	}

	details, err := h.service.GetSaleDetailsBySaleID(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err, "get sale details")
		return
	}

	utils.ResponseSuccess(w, "Sale details retrieved successfully", details)
}

// GetSaleDetailByID handles GET /api/sales/details/{id}
func (h *SaleHandler) GetSaleDetailByID(w http.ResponseWriter, r *http.Request) {
	h.respondDetailByID(w, r, "get sale detail", "Sale detail retrieved successfully", h.service.GetSaleDetailByID)
}

// ActivateSale handles POST /api/sales/{id}/activate
func (h *SaleHandler) ActivateSale(w http.ResponseWriter, r *http.Request) {
	h.respondByID(w, r, "activate sale", "Sale activated successfully", h.service.ActivateSale)
}

// DeactivateSale handles POST /api/sales/{id}/deactivate
func (h *SaleHandler) DeactivateSale(w http.ResponseWriter, r *http.Request) {
	h.respondByID(w, r, "deactivate sale", "Sale deactivated successfully", h.service.DeactivateSale)
}

// RestoreSale handles POST /api/sales/{id}/restore
func (h *SaleHandler) RestoreSale(w http.ResponseWriter, r *http.Request) {
	h.respondByID(w, r, "restore sale", "Sale restored successfully", h.service.RestoreSale)
}

// DeleteSale handles DELETE /api/sales/{id}
func (h *SaleHandler) DeleteSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid sale id", nil)
		return
	}

	if err := h.service.DeleteSale(r.Context(), id); err != nil {
		writeServiceError(w, h.log, err, "delete sale")
		return
	}

	utils.ResponseSuccess(w, "Sale deleted successfully", nil)
}

// DeleteSaleDetail handles DELETE /api/sales/details/{id}
func (h *SaleHandler) DeleteSaleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid sale detail id", nil)
		return
	}

	if err := h.service.DeleteSaleDetail(r.Context(), id); err != nil {
		writeServiceError(w, h.log, err, "delete sale detail")
		return
	}

	utils.ResponseSuccess(w, "Sale detail deleted successfully", nil)
}

// RestoreSaleDetail handles POST /api/sales/details/{id}/restore
func (h *SaleHandler) RestoreSaleDetail(w http.ResponseWriter, r *http.Request) {
	h.respondDetailByID(w, r, "restore sale detail", "Sale detail restored successfully", h.service.RestoreSaleDetail)
}

func (h *SaleHandler) respondList(w http.ResponseWriter, r *http.Request, operation string, fetch func(ctx context.Context) ([]response.SaleResponse, error)) {
	sales, err := fetch(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, operation)
		return
	}

	utils.ResponseSuccess(w, "Sales retrieved successfully", sales)
}

func (h *SaleHandler) respondByID(w http.ResponseWriter, r *http.Request, operation, message string, apply func(ctx context.Context, id int64) (*response.SaleResponse, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid sale id", nil)
		return
	}

	sale, err := apply(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err, operation)
		return
	}

	utils.ResponseSuccess(w, message, sale)
}

func (h *SaleHandler) respondDetailByID(w http.ResponseWriter, r *http.Request, operation, message string, apply func(ctx context.Context, id int64) (*response.SaleDetailResponse, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid sale detail id", nil)
		return
	}

	detail, err := apply(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err, operation)
		return
	}

	utils.ResponseSuccess(w, message, detail)
}
