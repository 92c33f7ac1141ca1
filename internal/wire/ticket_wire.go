package wire

import (
	"ticket-sales/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireTicket(r chi.Router, ticketHandler *adaptor.TicketHandler) {
	r.Route("/api/tickets", func(r chi.Router) {
		// ==================== ISSUANCE ====================
		r.Post("/", ticketHandler.CreateTicket)            // POST /api/tickets
		r.Post("/generate", ticketHandler.GenerateTickets) // POST /api/tickets/generate

		// ==================== LISTINGS ====================
		r.Get("/", ticketHandler.GetTickets) // GET /api/tickets?page=0&size=10
		r.Get("/all", ticketHandler.GetAllTickets)
		r.Get("/active", ticketHandler.GetActiveTickets)
		r.Get("/unused", ticketHandler.GetUnusedTickets)
		r.Get("/used", ticketHandler.GetUsedTickets)
		r.Get("/statistics", ticketHandler.GetTicketStatistics)
		r.Get("/event-location/{id}", ticketHandler.GetTicketsByEventLocation)

		// ==================== BY CODE ====================
		r.Post("/use", ticketHandler.UseTicketByCode) // body: {"code": "..."}
		r.Get("/code/{code}", ticketHandler.GetTicketByCode)
		r.Get("/code/{code}/qr", ticketHandler.GetTicketQRCode)

		// ==================== BY ID ====================
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", ticketHandler.GetTicketByID)
			r.Put("/", ticketHandler.UpdateTicket)
			r.Delete("/", ticketHandler.DeleteTicket) // soft delete
			r.Post("/use", ticketHandler.UseTicketByID)
			r.Post("/activate", ticketHandler.ActivateTicket)
			r.Post("/deactivate", ticketHandler.DeactivateTicket)
			r.Post("/restore", ticketHandler.RestoreTicket)
		})
	})
}
