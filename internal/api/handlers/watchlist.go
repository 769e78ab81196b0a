package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carteira-app/carteira/internal/api/request"
	"github.com/carteira-app/carteira/internal/api/response"
	"github.com/carteira-app/carteira/internal/apperrors"
	"github.com/carteira-app/carteira/internal/service"
	"github.com/carteira-app/carteira/internal/validation"
)

// WatchlistHandler handles HTTP requests for watchlist endpoints.
type WatchlistHandler struct {
	watchlistService *service.WatchlistService
}

// NewWatchlistHandler creates a new WatchlistHandler.
func NewWatchlistHandler(watchlistService *service.WatchlistService) *WatchlistHandler {
	return &WatchlistHandler{
		watchlistService: watchlistService,
	}
}

// GetWatchlist handles GET requests for the owner's followed tickers with quotes.
//
// Endpoint: GET /api/owners/{owner}/watchlist
// Response: 200 OK with model.Watchlist
// Error: 503 Service Unavailable if quotes could not be fetched
func (h *WatchlistHandler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	list, err := h.watchlistService.GetWatchlist(r.Context(), ownerParam(r))
	if err != nil {
		respondServiceError(w, r, err, apperrors.ErrFailedToRetrieveWatchlist.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, list)
}

// AddTicker handles POST requests to follow a ticker.
//
// Endpoint: POST /api/owners/{owner}/watchlist
// Request Body: AddWatchlistRequest (ticker)
// Response: 201 Created with model.WatchlistItem, or 200 OK if already followed
// Error: 400 Bad Request if validation fails or the ticker is unknown
func (h *WatchlistHandler) AddTicker(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.AddWatchlistRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateAddWatchlist(req); err != nil {
		respondValidation(w, err)
		return
	}

	item, added, err := h.watchlistService.AddTicker(r.Context(), ownerParam(r), req)
	if err != nil {
		respondServiceError(w, r, err, "failed to update watchlist")
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	response.RespondJSON(w, status, item)
}

// RemoveTicker handles DELETE requests to stop following a ticker.
//
// Endpoint: DELETE /api/owners/{owner}/watchlist/{ticker}
// Response: 204 No Content
// Error: 404 Not Found if the ticker is not followed
func (h *WatchlistHandler) RemoveTicker(w http.ResponseWriter, r *http.Request) {
	if err := h.watchlistService.RemoveTicker(r.Context(), ownerParam(r), chi.URLParam(r, "ticker")); err != nil {
		respondServiceError(w, r, err, "failed to update watchlist")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
