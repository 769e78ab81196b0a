package handlers

import (
	"net/http"

	"github.com/carteira-app/carteira/internal/api/request"
	"github.com/carteira-app/carteira/internal/api/response"
	"github.com/carteira-app/carteira/internal/apperrors"
	"github.com/carteira-app/carteira/internal/service"
	"github.com/carteira-app/carteira/internal/validation"
)

// AllocationHandler handles HTTP requests for target allocation endpoints.
type AllocationHandler struct {
	allocationService *service.AllocationService
}

// NewAllocationHandler creates a new AllocationHandler.
func NewAllocationHandler(allocationService *service.AllocationService) *AllocationHandler {
	return &AllocationHandler{
		allocationService: allocationService,
	}
}

// GetAllocation handles GET requests comparing the owner's current
// distribution with the target allocation.
//
// Endpoint: GET /api/owners/{owner}/allocation
// Response: 200 OK with model.AllocationComparison
// Error: 503 Service Unavailable if quotes could not be fetched
func (h *AllocationHandler) GetAllocation(w http.ResponseWriter, r *http.Request) {
	cmp, err := h.allocationService.Compare(r.Context(), ownerParam(r))
	if err != nil {
		respondServiceError(w, r, err, apperrors.ErrFailedToRetrieveAllocation.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, cmp)
}

// SetAllocation handles PUT requests replacing the owner's target allocation.
//
// Endpoint: PUT /api/owners/{owner}/allocation
// Request Body: SetAllocationRequest (targets: [{ticker, percentage}])
// Response: 200 OK with the stored array of model.TargetAllocation
// Error: 400 Bad Request if validation fails or the targets add up to more than 100%
func (h *AllocationHandler) SetAllocation(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SetAllocationRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSetAllocation(req); err != nil {
		respondValidation(w, err)
		return
	}

	targets, err := h.allocationService.SetAllocation(r.Context(), ownerParam(r), req)
	if err != nil {
		respondServiceError(w, r, err, "failed to set allocation")
		return
	}

	response.RespondJSON(w, http.StatusOK, targets)
}
