// Package rest provides the pool-manager HTTP surface.
package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/karystudio/podpool/internal/core/domain"
	"go.uber.org/zap"
)

// errorResponse is the uniform error body
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps a domain error onto its HTTP status. Anything outside the
// taxonomy is an internal error and its detail stays in the logs.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var (
		missingField *domain.MissingFieldError
		notFound     *domain.NotFoundError
		conflict     *domain.ConflictError
		upstream     *domain.UpstreamError
	)

	switch {
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrInvalidSession):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.As(err, &missingField):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: missingField.Error()})
	case errors.Is(err, domain.ErrSwarmNotConfigured):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: notFound.Error()})
	case errors.Is(err, domain.ErrAccessDenied):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: conflict.Error()})
	case errors.As(err, &upstream):
		// The generic message only; the wrapped cause was already logged at
		// the service layer.
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: upstream.Error()})
	default:
		log.Error("Unhandled error reached the REST boundary", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
