package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vbonduro/invreg/internal/domain"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// errorResponse maps an error from the service layer to a status and the
// message clients see. Storage failures expose the underlying message.
func errorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNoPhoto):
		return http.StatusNotFound, "Photo not found"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, domain.ErrNameRequired):
		return http.StatusBadRequest, "Name is required"
	case errors.Is(err, domain.ErrPhotoRequired):
		return http.StatusBadRequest, "Photo is required"
	case errors.Is(err, domain.ErrInvalid):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorResponse(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	jsonError(w, status, msg)
}
