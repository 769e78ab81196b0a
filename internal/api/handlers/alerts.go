package handlers

import (
	"net/http"

	"github.com/carteira-app/carteira/internal/api/request"
	"github.com/carteira-app/carteira/internal/api/response"
	"github.com/carteira-app/carteira/internal/apperrors"
	"github.com/carteira-app/carteira/internal/service"
	"github.com/carteira-app/carteira/internal/validation"
)

// AlertHandler handles HTTP requests for price alert endpoints.
type AlertHandler struct {
	alertService *service.AlertService
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(alertService *service.AlertService) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
	}
}

// GetAlerts handles GET requests for all of the owner's alerts, active and triggered.
//
// Endpoint: GET /api/owners/{owner}/alerts
// Response: 200 OK with array of model.PriceAlert
func (h *AlertHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alertService.GetAlerts(r.Context(), ownerParam(r))
	if err != nil {
		respondServiceError(w, r, err, apperrors.ErrFailedToRetrieveAlerts.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, alerts)
}

// SetAlert handles PUT requests to set or re-arm the alert for a ticker.
// A target price of zero removes the alert.
//
// Endpoint: PUT /api/owners/{owner}/alerts
// Request Body: SetAlertRequest (ticker, targetPrice)
// Response: 200 OK with model.PriceAlert, or 204 No Content when the alert was removed
// Error: 400 Bad Request if validation fails
func (h *AlertHandler) SetAlert(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SetAlertRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSetAlert(req); err != nil {
		respondValidation(w, err)
		return
	}

	alert, err := h.alertService.SetAlert(r.Context(), ownerParam(r), req)
	if err != nil {
		respondServiceError(w, r, err, "failed to set alert")
		return
	}
	if alert == nil {
		response.RespondJSON(w, http.StatusNoContent, nil)
		return
	}

	response.RespondJSON(w, http.StatusOK, alert)
}

// CheckAlerts handles POST requests to check the owner's active alerts now.
//
// Endpoint: POST /api/owners/{owner}/alerts/check
// Response: 200 OK with array of model.TriggeredAlert (empty when nothing triggered)
// Error: 503 Service Unavailable if quotes could not be fetched
func (h *AlertHandler) CheckAlerts(w http.ResponseWriter, r *http.Request) {
	triggered, err := h.alertService.Check(r.Context(), ownerParam(r))
	if err != nil {
		respondServiceError(w, r, err, "failed to check alerts")
		return
	}

	response.RespondJSON(w, http.StatusOK, triggered)
}
