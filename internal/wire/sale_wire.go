package wire

import (
	"ticket-sales/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireSale(r chi.Router, saleHandler *adaptor.SaleHandler) {
	r.Route("/api/sales", func(r chi.Router) {
		r.Post("/", saleHandler.CreateSale) // POST /api/sales

		// ==================== LISTINGS ====================
		r.Get("/", saleHandler.GetSales) // GET /api/sales?page=0&size=10
		r.Get("/all", saleHandler.GetAllSales)
		r.Get("/active", saleHandler.GetActiveSales)
		r.Get("/statistics", saleHandler.GetSaleStatistics)
		r.Get("/range", saleHandler.GetSalesByDateRange) // ?start=RFC3339&end=RFC3339
		r.Get("/user/{userId}", saleHandler.GetSalesByUser)
		r.Get("/partner/{partnerId}", saleHandler.GetSalesByPartner)

		// ==================== DETAILS ====================
		r.Route("/details/{id}", func(r chi.Router) {
			r.Get("/", saleHandler.GetSaleDetailByID)
			r.Put("/", saleHandler.UpdateSaleDetail)
			r.Delete("/", saleHandler.DeleteSaleDetail)
			r.Post("/restore", saleHandler.RestoreSaleDetail)
		})

		// ==================== BY ID ====================
		// Deleting a sale leaves its details untouched.
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", saleHandler.GetSaleByID)
			r.Put("/", saleHandler.UpdateSale)
			r.Delete("/", saleHandler.DeleteSale)
			r.Get("/details", saleHandler.GetSaleDetails)
			r.Post("/activate", saleHandler.ActivateSale)
			r.Post("/deactivate", saleHandler.DeactivateSale)
			r.Post("/restore", saleHandler.RestoreSale)
		})
	})
}
