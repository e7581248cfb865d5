package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/invreg/internal/domain"
	"github.com/vbonduro/invreg/internal/logging"
	"github.com/vbonduro/invreg/internal/service"
	"github.com/vbonduro/invreg/internal/store"
	"github.com/vbonduro/invreg/internal/store/filestore"
	"github.com/vbonduro/invreg/internal/web/templates"
)

type nopPhotoStore struct{}

func (nopPhotoStore) Save(_ context.Context, _ string, r io.Reader) (string, error) {
	_, err := io.Copy(io.Discard, r)
	return "blob.jpg", err
}

func (nopPhotoStore) Get(context.Context, string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("photo: %w", domain.ErrNotFound)
}

// brokenStore fails every call with a storage error.
type brokenStore struct {
	store.Store
}

func (brokenStore) List(context.Context) ([]*domain.Record, error) {
	return nil, errors.New("data file unreadable")
}

func (brokenStore) Get(context.Context, string) (*domain.Record, error) {
	return nil, errors.New("data file unreadable")
}

func newServer(t *testing.T, st store.Store) *Server {
	t.Helper()
	if st == nil {
		fs, err := filestore.NewFileStore(filepath.Join(t.TempDir(), "inventory.json"))
		require.NoError(t, err)
		st = fs
	}
	logger := logging.Discard()
	return NewServer(service.NewInventoryService(st, nopPhotoStore{}, logger), templates.FS, logger)
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not found", fmt.Errorf("record %q: %w", "1", domain.ErrNotFound), http.StatusNotFound, "Not found"},
		{"no photo", domain.ErrNoPhoto, http.StatusNotFound, "Photo not found"},
		{"name required", domain.ErrNameRequired, http.StatusBadRequest, "Name is required"},
		{"photo required", domain.ErrPhotoRequired, http.StatusBadRequest, "Photo is required"},
		{"other invalid", fmt.Errorf("%w: bad", domain.ErrInvalid), http.StatusBadRequest, "invalid input: bad"},
		{"storage", errors.New("disk full"), http.StatusInternalServerError, "disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := errorResponse(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newServer(t, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/inventory", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestStorageErrorIs500WithMessage(t *testing.T) {
	srv := newServer(t, brokenStore{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/inventory", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"data file unreadable"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/inventory/1", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthzUnavailable(t *testing.T) {
	srv := newServer(t, brokenStore{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"data file unreadable"}`, rec.Body.String())
}

func TestRegisterUploadTooLarge(t *testing.T) {
	srv := newServer(t, nil)

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("inventory_name", "Boulder"))
	fw, err := w.CreateFormFile("photo", "huge.jpg")
	require.NoError(t, err)
	_, err = fw.Write(make([]byte, maxUploadSize+1))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/register", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestSearchEscapesRecordFields(t *testing.T) {
	srv := newServer(t, nil)

	created, err := srv.service.Register(context.Background(), "<script>x</script>", "a & b", nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/search", bytes.NewBufferString("id="+created.ID))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<h1>&lt;script&gt;x&lt;/script&gt;</h1><p>a &amp; b</p>", rec.Body.String())
}

func TestUnknownMethodOnInventory(t *testing.T) {
	srv := newServer(t, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/inventory", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := requestLogger(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"path":"/x"`)
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	srv := newServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not stop after cancel")
	}
}
