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

// TransactionHandler handles HTTP requests for transaction endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the transactionService.
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependency.
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// ListTransactions handles GET requests to retrieve the owner's ledger in
// chronological order.
//
// Endpoint: GET /api/owners/{owner}/transactions
// Response: 200 OK with array of TransactionResponse
// Error: 400 Bad Request if owner is invalid (validated by middleware)
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.transactionService.GetTransactions(r.Context(), ownerParam(r))
	if err != nil {
		respondServiceError(w, r, err, apperrors.ErrFailedToRetrieveTransactions.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// GetTransaction handles GET requests to retrieve a single transaction of the owner.
//
// Endpoint: GET /api/owners/{owner}/transactions/{uuid}
// Response: 200 OK with TransactionResponse
// Error: 400 Bad Request if owner or transaction ID is invalid (validated by middleware)
// Error: 404 Not Found if the owner has no such transaction
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	transaction, err := h.transactionService.GetTransaction(r.Context(), ownerParam(r), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, r, err, apperrors.ErrFailedToRetrieveTransaction.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction)
}

// CreateTransaction handles POST requests to record a buy or sell.
//
// Endpoint: POST /api/owners/{owner}/transactions
// Request Body: CreateTransactionRequest (ticker, side, quantity, unitPrice, date)
// Response: 201 Created with TransactionResponse
// Error: 400 Bad Request if validation fails, the body is invalid or the ticker is unknown
// Error: 500 Internal Server Error if creation fails
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateTransaction(req); err != nil {
		respondValidation(w, err)
		return
	}

	transaction, err := h.transactionService.CreateTransaction(r.Context(), ownerParam(r), req)
	if err != nil {
		respondServiceError(w, r, err, "failed to create transaction")
		return
	}

	response.RespondJSON(w, http.StatusCreated, transaction)
}

// ImportTransactions handles POST requests recording a batch of transactions
// atomically: either every entry is stored or none is.
//
// Endpoint: POST /api/owners/{owner}/transactions/import
// Request Body: ImportTransactionsRequest (transactions: [CreateTransactionRequest])
// Response: 201 Created with array of TransactionResponse, in request order
// Error: 400 Bad Request if any entry fails validation; fields are keyed "transactions[i].field"
// Error: 500 Internal Server Error if the batch cannot be stored
func (h *TransactionHandler) ImportTransactions(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.ImportTransactionsRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateImportTransactions(req); err != nil {
		respondValidation(w, err)
		return
	}

	transactions, err := h.transactionService.ImportTransactions(r.Context(), ownerParam(r), req)
	if err != nil {
		respondServiceError(w, r, err, "failed to import transactions")
		return
	}

	response.RespondJSON(w, http.StatusCreated, transactions)
}

// UpdateTransaction handles PUT requests to update an existing transaction.
//
// Endpoint: PUT /api/owners/{owner}/transactions/{uuid}
// Request Body: UpdateTransactionRequest (all fields optional)
// Response: 200 OK with updated TransactionResponse
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the owner has no such transaction
// Error: 500 Internal Server Error if update fails
func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.UpdateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateTransaction(req); err != nil {
		respondValidation(w, err)
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(r.Context(), ownerParam(r), chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, r, err, "failed to update transaction")
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction)
}

// DeleteTransaction handles DELETE requests to remove a transaction.
//
// Endpoint: DELETE /api/owners/{owner}/transactions/{uuid}
// Response: 204 No Content on successful deletion
// Error: 404 Not Found if the owner has no such transaction
// Error: 500 Internal Server Error if deletion fails
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.transactionService.DeleteTransaction(r.Context(), ownerParam(r), chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, r, err, "failed to delete transaction")
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
