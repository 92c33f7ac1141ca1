package adaptor

import (
	"context"
	"net/http"

	"ticket-sales/internal/dto/request"
	"ticket-sales/internal/dto/response"
	"ticket-sales/internal/usecase"
	"ticket-sales/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TicketHandler struct {
	service usecase.TicketService
	log     *zap.Logger
}

func NewTicketHandler(service usecase.TicketService, log *zap.Logger) *TicketHandler {
	return &TicketHandler{
		service: service,
		log:     log.With(zap.String("handler", "ticket")),
	}
}

// CreateTicket handles POST /api/tickets
func (h *TicketHandler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	var req request.CreateTicketRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ticket, err := h.service.CreateTicket(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "create ticket")
		return
	}

	utils.ResponseCreated(w, "Ticket created successfully", ticket)
}

// GenerateTickets handles POST /api/tickets/generate
func (h *TicketHandler) GenerateTickets(w http.ResponseWriter, r *http.Request) {
	var req request.GenerateTicketsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tickets, err := h.service.GenerateTickets(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "generate tickets")
		return
	}

	utils.ResponseCreated(w, "Tickets generated successfully", tickets)
}

// UpdateTicket handles PUT /api/tickets/{id}
func (h *TicketHandler) UpdateTicket(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid ticket id", nil)
		return
	}

	var req request.UpdateTicketRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ticket, err := h.service.UpdateTicket(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, h.log, err, "update ticket")
		return
	}

	utils.ResponseSuccess(w, "Ticket updated successfully", ticket)
}

// UseTicketByCode handles POST /api/tickets/use
func (h *TicketHandler) UseTicketByCode(w http.ResponseWriter, r *http.Request) {
	var req request.UseTicketRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ticket, err := h.service.UseTicketByCode(r.Context(), req.Code)
	if err != nil {
		writeServiceError(w, h.log, err, "use ticket")
		return
	}

	utils.ResponseSuccess(w, "Ticket used successfully", ticket)
}

// UseTicketByID handles POST /api/tickets/{id}/use
func (h *TicketHandler) UseTicketByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid ticket id", nil)
		return
	}

	ticket, err := h.service.UseTicketByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err, "use ticket")
		return
	}

	utils.ResponseSuccess(w, "Ticket used successfully", ticket)
}

// GetTicketByID handles GET /api/tickets/{id}
func (h *TicketHandler) GetTicketByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid ticket id", nil)
		return
	}

	ticket, err := h.service.GetTicketByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err, "get ticket by id")
		return
	}

	utils.ResponseSuccess(w, "Ticket retrieved successfully", ticket)
}

// GetTicketByCode handles GET /api/tickets/code/{code}
func (h *TicketHandler) GetTicketByCode(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.service.GetTicketByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeServiceError(w, h.log, err, "get ticket by code")
		return
	}

	utils.ResponseSuccess(w, "Ticket retrieved successfully", ticket)
}

// GetTicketQRCode handles GET /api/tickets/code/{code}/qr
func (h *TicketHandler) GetTicketQRCode(w http.ResponseWriter, r *http.Request) {
	png, err := h.service.GetTicketQRCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeServiceError(w, h.log, err, "get ticket qr code")
		return
	}

	utils.ResponsePNG(w, png)
}

// GetTicketsByEventLocation handles GET /api/tickets/event-location/{id}
func (h *TicketHandler) GetTicketsByEventLocation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid event location id", nil)
		return
	}

	tickets, err := h.service.GetTicketsByEventLocation(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err, "get tickets by event location")
		return
	}

	utils.ResponseSuccess(w, "Tickets retrieved successfully", tickets)
}

// GetTickets handles GET /api/tickets?page=0&size=10
func (h *TicketHandler) GetTickets(w http.ResponseWriter, r *http.Request) {
	req, err := pageRequest(r)
	if err != nil {
		writeServiceError(w, h.log, err, "get tickets")
		return
	}

	page, err := h.service.GetTicketsPaginated(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.log, err, "get tickets")
		return
	}

	utils.ResponseSuccess(w, "Tickets retrieved successfully", page)
}

func (h *TicketHandler) GetAllTickets(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, "get all tickets", h.service.GetAllTickets)
}

func (h *TicketHandler) GetActiveTickets(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, "get active tickets", h.service.GetActiveTickets)
}

func (h *TicketHandler) GetUnusedTickets(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, "get unused tickets", h.service.GetUnusedTickets)
}

func (h *TicketHandler) GetUsedTickets(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, "get used tickets", h.service.GetUsedTickets)
}

// GetTicketStatistics handles GET /api/tickets/statistics
func (h *TicketHandler) GetTicketStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetTicketStatistics(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "get ticket statistics")
		return
	}

	utils.ResponseSuccess(w, "Ticket statistics retrieved successfully", stats)
}

// ActivateTicket handles POST /api/tickets/{id}/activate
func (h *TicketHandler) ActivateTicket(w http.ResponseWriter, r *http.Request) {
	h.respondByID(w, r, "activate ticket", "Ticket activated successfully", h.service.ActivateTicket)
}

// DeactivateTicket handles POST /api/tickets/{id}/deactivate
func (h *TicketHandler) DeactivateTicket(w http.ResponseWriter, r *http.Request) {
	h.respondByID(w, r, "deactivate ticket", "Ticket deactivated successfully", h.service.DeactivateTicket)
}

// RestoreTicket handles POST /api/tickets/{id}/restore
func (h *TicketHandler) RestoreTicket(w http.ResponseWriter, r *http.Request) {
	h.respondByID(w, r, "restore ticket", "Ticket restored successfully", h.service.RestoreTicket)
}

// DeleteTicket handles DELETE /api/tickets/{id}
func (h *TicketHandler) DeleteTicket(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid ticket id", nil)
		return
	}

	if err := h.service.DeleteTicket(r.Context(), id); err != nil {
		writeServiceError(w, h.log, err, "delete ticket")
		return
	}

	utils.ResponseSuccess(w, "Ticket deleted successfully", nil)
}

func (h *TicketHandler) respondList(w http.ResponseWriter, r *http.Request, operation string, fetch func(ctx context.Context) ([]response.TicketResponse, error)) {
	tickets, err := fetch(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, operation)
		return
	}

	utils.ResponseSuccess(w, "Tickets retrieved successfully", tickets)
}

func (h *TicketHandler) respondByID(w http.ResponseWriter, r *http.Request, operation, message string, apply func(ctx context.Context, id int64) (*response.TicketResponse, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid ticket id", nil)
		return
	}

	ticket, err := apply(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err, operation)
		return
	}

	utils.ResponseSuccess(w, message, ticket)
}
