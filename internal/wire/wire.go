package wire

import (
	"context"
	"net/http"
	"time"

	"ticket-sales/internal/adaptor"
	"ticket-sales/internal/data/cache"
	"ticket-sales/internal/data/repository"
	"ticket-sales/internal/usecase"
	"ticket-sales/pkg/database"
	"ticket-sales/pkg/middleware"
	"ticket-sales/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// App holds the assembled HTTP stack
type App struct {
	Router *chi.Mux
}

// Wiring builds services, handlers and the router
func Wiring(
	db database.PgxIface,
	repo *repository.Repository,
	statsCache cache.StatsCache,
	config *utils.Config,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, statsCache, logger)
	handler := adaptor.NewHandler(service, logger)

	return &App{
		Router: setupRouter(handler, db, config, logger),
	}
}

func setupRouter(
	handler *adaptor.Handler,
	db database.PgxIface,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware, outermost first
	r.Use(middleware.RequestID())
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger))
	if config.Metrics.Enabled {
		r.Use(middleware.Metrics())
	}
	r.Use(middleware.CORS(config.App.AllowedOrigins))

	wireTicket(r, handler.Ticket)
	wireSale(r, handler.Sale)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Warn("Health check failed", zap.Error(err))
			utils.ResponseJSON(w, http.StatusServiceUnavailable, false, "Database unavailable", nil, nil)
			return
		}
		utils.ResponseSuccess(w, "OK", nil)
	})

	if config.Metrics.Enabled {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	return r
}
