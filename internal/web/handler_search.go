package web

import (
	"errors"
	"net/http"

	"github.com/vbonduro/invreg/internal/domain"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	id := r.FormValue("id")
	includePhoto := r.FormValue("has_photo") == "on"

	result, err := s.service.Search(r.Context(), id, includePhoto)
	if errors.Is(err, domain.ErrNotFound) {
		if err := s.renderPartial(w, http.StatusNotFound, "not_found", nil); err != nil {
			s.logger.Error("render partial failed", "error", err)
		}
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.renderPartial(w, http.StatusOK, "search_result", result); err != nil {
		s.logger.Error("render partial failed", "error", err)
	}
}
