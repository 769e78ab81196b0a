package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/carteira-app/carteira/internal/api/response"
	"github.com/carteira-app/carteira/internal/apperrors"
	"github.com/carteira-app/carteira/internal/validation"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// parseJSON decodes the request body into a T. Unknown fields are rejected
// so that typos in optional fields do not pass silently.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T
	if r.Body == nil {
		return req, errors.New("request body is required")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, errors.New("request body is required")
		}
		return req, fmt.Errorf("malformed JSON: %w", err)
	}
	return req, nil
}

// ownerParam returns the owner path parameter. It is validated by
// middleware.ValidateOwnerMiddleware before any handler runs.
func ownerParam(r *http.Request) string {
	return chi.URLParam(r, "owner")
}

// respondValidation writes a 400 response for a failed validation.
// Field errors are returned as a map so clients can highlight each field.
func respondValidation(w http.ResponseWriter, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		response.RespondError(w, http.StatusBadRequest, "validation failed", verr.Fields)
		return
	}
	response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
}

// respondServiceError maps an error returned by a service to its HTTP status.
// fallback is the message used for unexpected failures.
//
// Not found errors map to 404, business rule violations to 400, and
// apperrors.ErrDataUnavailable to 503 without details; its raw cause has
// already been logged by the service.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		respondValidation(w, err)
	case errors.Is(err, apperrors.ErrTransactionNotFound),
		errors.Is(err, apperrors.ErrAlertNotFound),
		errors.Is(err, apperrors.ErrWatchlistItemNotFound),
		errors.Is(err, apperrors.ErrBenchmarkNotFound):
		response.RespondError(w, http.StatusNotFound, rootMessage(err), err.Error())
	case errors.Is(err, apperrors.ErrAllocationExceeds),
		errors.Is(err, apperrors.ErrInvalidOwner),
		errors.Is(err, apperrors.ErrInvalidUUID):
		response.RespondError(w, http.StatusBadRequest, rootMessage(err), err.Error())
	case errors.Is(err, apperrors.ErrDataUnavailable):
		response.RespondError(w, http.StatusServiceUnavailable, apperrors.ErrDataUnavailable.Error(), nil)
	case errors.Is(err, context.DeadlineExceeded):
		response.RespondError(w, http.StatusGatewayTimeout, "request timed out", nil)
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg(fallback)
		response.RespondError(w, http.StatusInternalServerError, fallback, err.Error())
	}
}

// rootMessage returns the message of the known sentinel wrapped in err.
func rootMessage(err error) string {
	for _, sentinel := range []error{
		apperrors.ErrTransactionNotFound,
		apperrors.ErrAlertNotFound,
		apperrors.ErrWatchlistItemNotFound,
		apperrors.ErrBenchmarkNotFound,
		apperrors.ErrAllocationExceeds,
		apperrors.ErrInvalidOwner,
		apperrors.ErrInvalidUUID,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
