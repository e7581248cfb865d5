package web

import (
	"context"
	"net/http"
	"time"
)

const healthTimeout = 2 * time.Second

// handleForm serves one of the embedded HTML forms.
func (s *Server) handleForm(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, s.templates, name)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := s.service.Ping(ctx); err != nil {
		s.logger.Error("health check failed", "error", err)
		jsonError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
