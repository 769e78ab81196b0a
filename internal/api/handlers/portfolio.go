package handlers

import (
	"net/http"
	"strings"

	"github.com/carteira-app/carteira/internal/api/response"
	"github.com/carteira-app/carteira/internal/service"
)

// PortfolioHandler handles the read-only portfolio views of an owner.
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// Summary handles GET requests for the owner's current holdings, realized
// result and received dividends.
//
// Endpoint: GET /api/owners/{owner}/summary
// Response: 200 OK with model.PortfolioSummary (Empty: true when there are no transactions)
// Error: 503 Service Unavailable if market data could not be assembled
// Error: 500 Internal Server Error if the ledger cannot be read
func (h *PortfolioHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.portfolioService.Summary(r.Context(), ownerParam(r))
	if err != nil {
		respondServiceError(w, r, err, "failed to build portfolio summary")
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}

// Evolution handles GET requests for the daily value and cost of the owner's
// portfolio, compared on base 100 with the requested benchmarks.
//
// Endpoint: GET /api/owners/{owner}/evolution?benchmarks=IBOV,CDI
// Response: 200 OK with model.EvolutionChart; unknown benchmarks are listed as dropped
// Error: 503 Service Unavailable if market data could not be assembled
// Error: 500 Internal Server Error if the ledger cannot be read
func (h *PortfolioHandler) Evolution(w http.ResponseWriter, r *http.Request) {
	chart, err := h.portfolioService.Evolution(r.Context(), ownerParam(r), splitList(r.URL.Query().Get("benchmarks")))
	if err != nil {
		respondServiceError(w, r, err, "failed to build portfolio evolution")
		return
	}

	response.RespondJSON(w, http.StatusOK, chart)
}

// Benchmarks handles GET requests for the benchmark catalog.
//
// Endpoint: GET /api/benchmarks
// Response: 200 OK with array of model.Benchmark
func (h *PortfolioHandler) Benchmarks(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.portfolioService.Benchmarks())
}

// splitList splits a comma-separated query value, dropping blanks.
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
