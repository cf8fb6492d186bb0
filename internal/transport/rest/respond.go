package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/polyglothq/adaptive-srs/internal/domain"
)

// errorResponse is the envelope for every non-2xx response. Kind is a stable
// machine-readable identifier; Detail is optional human-readable context.
type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, kind string) {
	writeJSON(w, status, errorResponse{Error: kind})
}

func writeErrorDetail(w http.ResponseWriter, status int, kind, detail string) {
	writeJSON(w, status, errorResponse{Error: kind, Detail: detail})
}

// handleError maps domain sentinels to HTTP statuses. Anything unrecognized
// is logged and reported as an opaque 500.
func handleError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRating):
		writeError(w, http.StatusBadRequest, "invalid_rating")
	case errors.Is(err, domain.ErrValidation):
		writeErrorDetail(w, http.StatusBadRequest, "validation", err.Error())
	case errors.Is(err, domain.ErrUnknownItem):
		writeError(w, http.StatusNotFound, "unknown_item")
	case errors.Is(err, domain.ErrSessionUnavailable):
		writeError(w, http.StatusConflict, "session_unavailable")
	case errors.Is(err, domain.ErrNoPlacementItems):
		writeError(w, http.StatusConflict, "no_placement_items")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict")
	case errors.Is(err, domain.ErrStorageUnavailable):
		log.ErrorContext(r.Context(), "storage unavailable", slog.String("error", err.Error()))
		writeErrorDetail(w, http.StatusServiceUnavailable, "storage_unavailable", "storage temporarily unavailable, retry later")
	default:
		log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeErrorDetail(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}
