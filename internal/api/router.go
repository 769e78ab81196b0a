// Package api wires the HTTP surface: routes, middleware and handlers.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/carteira-app/carteira/internal/api/handlers"
	custommiddleware "github.com/carteira-app/carteira/internal/api/middleware"
	"github.com/carteira-app/carteira/internal/api/response"
	"github.com/carteira-app/carteira/internal/config"
	"github.com/carteira-app/carteira/internal/service"
)

// Services groups the services exposed over HTTP.
type Services struct {
	System      *service.SystemService
	Portfolio   *service.PortfolioService
	Transaction *service.TransactionService
	Alert       *service.AlertService
	Allocation  *service.AllocationService
	Watchlist   *service.WatchlistService
}

// NewRouter creates and configures the HTTP router
func NewRouter(services Services, cfg *config.Config, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(middleware.Recoverer)

	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.RespondError(w, http.StatusNotFound, "route not found", nil)
	})

	systemHandler := handlers.NewSystemHandler(services.System)
	portfolioHandler := handlers.NewPortfolioHandler(services.Portfolio)
	transactionHandler := handlers.NewTransactionHandler(services.Transaction)
	alertHandler := handlers.NewAlertHandler(services.Alert)
	allocationHandler := handlers.NewAllocationHandler(services.Allocation)
	watchlistHandler := handlers.NewWatchlistHandler(services.Watchlist)

	r.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Get("/benchmarks", portfolioHandler.Benchmarks)

		r.Route("/owners/{owner}", func(r chi.Router) {
			r.Use(custommiddleware.ValidateOwnerMiddleware)

			r.Get("/summary", portfolioHandler.Summary)
			r.Get("/evolution", portfolioHandler.Evolution)

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", transactionHandler.ListTransactions)
				r.Post("/", transactionHandler.CreateTransaction)
				r.Post("/import", transactionHandler.ImportTransactions)

				r.Route("/{uuid}", func(r chi.Router) {
					r.Use(custommiddleware.ValidateUUIDMiddleware)
					r.Get("/", transactionHandler.GetTransaction)
					r.Put("/", transactionHandler.UpdateTransaction)
					r.Delete("/", transactionHandler.DeleteTransaction)
				})
			})

			r.Route("/alerts", func(r chi.Router) {
				r.Get("/", alertHandler.GetAlerts)
				r.Put("/", alertHandler.SetAlert)
				r.Post("/check", alertHandler.CheckAlerts)
			})

			r.Route("/allocation", func(r chi.Router) {
				r.Get("/", allocationHandler.GetAllocation)
				r.Put("/", allocationHandler.SetAllocation)
			})

			r.Route("/watchlist", func(r chi.Router) {
				r.Get("/", watchlistHandler.GetWatchlist)
				r.Post("/", watchlistHandler.AddTicker)
				r.Delete("/{ticker}", watchlistHandler.RemoveTicker)
			})
		})
	})

	return r
}
