package api

import (
	"errors"
	"log/slog"
	"net/http"

	"worktime/internal/domain"
)

// errorBody is the JSON error envelope.
type errorBody struct {
	Error string `json:"error"`
}

// writeError maps domain errors onto HTTP status codes. Anything
// unrecognized is a 500 with a generic message; the detail goes to the
// log, not the client.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	var (
		notFound   *domain.NotFoundError
		validation *domain.ValidationError
		conflict   *domain.ConflictError
		guard      *domain.GuardError
	)
	switch {
	case errors.As(err, &validation):
		respondJSON(w, http.StatusBadRequest, errorBody{Error: validation.Message})
	case errors.As(err, &notFound):
		respondJSON(w, http.StatusNotFound, errorBody{Error: notFound.Message})
	case errors.As(err, &conflict):
		respondJSON(w, http.StatusConflict, errorBody{Error: conflict.Message})
	case errors.As(err, &guard):
		respondJSON(w, http.StatusForbidden, errorBody{Error: guard.Message})
	default:
		log.Error("internal error", "method", r.Method, "path", r.URL.Path, "error", err)
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}
