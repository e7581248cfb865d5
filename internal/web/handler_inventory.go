package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/vbonduro/invreg/internal/domain"
	"github.com/vbonduro/invreg/internal/service"
)

const (
	maxUploadSize   = 50 * 1024 * 1024 // 50 MB
	maxMemoryUpload = 8 * 1024 * 1024
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !parseUploadForm(w, r) {
		return
	}

	photo, closer, err := formPhoto(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "failed to read photo")
		return
	}
	if closer != nil {
		defer closeWithLog(closer, "upload file", s.logger)
	}

	rec, err := s.service.Register(r.Context(), r.FormValue("inventory_name"), r.FormValue("description"), photo)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, rec)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, records)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, rec)
}

type updateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	rec, err := s.service.Update(r.Context(), r.PathValue("id"), domain.RecordUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	reader, err := s.service.OpenPhoto(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "Photo not found")
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer closeWithLog(reader, "photo reader", s.logger)

	w.Header().Set("Content-Type", "image/jpeg")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write photo failed", "id", id, "error", err)
	}
}

func (s *Server) handleReplacePhoto(w http.ResponseWriter, r *http.Request) {
	if !parseUploadForm(w, r) {
		return
	}

	photo, closer, err := formPhoto(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "failed to read photo")
		return
	}
	if closer != nil {
		defer closeWithLog(closer, "upload file", s.logger)
	}

	rec, err := s.service.ReplacePhoto(r.Context(), r.PathValue("id"), photo)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, rec)
}

// parseUploadForm parses a multipart or urlencoded body capped at
// maxUploadSize. It writes the error response itself and reports whether the
// handler should continue.
func parseUploadForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	err := r.ParseMultipartForm(maxMemoryUpload)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		jsonError(w, http.StatusRequestEntityTooLarge, "upload too large")
		return false
	}
	jsonError(w, http.StatusBadRequest, "failed to parse form")
	return false
}

// formPhoto returns the "photo" file part, or nil when the request has none.
// The returned closer must be closed once the upload has been consumed.
func formPhoto(r *http.Request) (*service.Upload, io.Closer, error) {
	if r.MultipartForm == nil {
		return nil, nil, nil
	}
	file, header, err := r.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return &service.Upload{Filename: header.Filename, Data: file}, file, nil
}
