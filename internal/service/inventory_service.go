package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"github.com/vbonduro/invreg/internal/domain"
	"github.com/vbonduro/invreg/internal/photostore"
	"github.com/vbonduro/invreg/internal/store"
)

// Upload is a photo received from a client, not yet stored.
type Upload struct {
	Filename string
	Data     io.Reader
}

type InventoryService struct {
	store    store.Store
	photoStg photostore.PhotoStore
	logger   *slog.Logger
}

func NewInventoryService(st store.Store, photoStg photostore.PhotoStore, logger *slog.Logger) *InventoryService {
	return &InventoryService{
		store:    st,
		photoStg: photoStg,
		logger:   logger,
	}
}

// Register creates a record, storing the photo first when one is given. A
// failed record write after a successful photo save leaves the blob behind.
func (s *InventoryService) Register(ctx context.Context, name, description string, photo *Upload) (*domain.Record, error) {
	if err := store.ValidateCreate(name); err != nil {
		return nil, err
	}

	var photoKey *string
	if photo != nil {
		key, err := s.photoStg.Save(ctx, photo.Filename, photo.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to save photo: %w", err)
		}
		s.logger.Debug("photo saved", "storage_key", key)
		photoKey = &key
	}

	rec, err := s.store.Create(ctx, name, description, photoKey)
	if err != nil {
		if photoKey != nil {
			s.logger.Warn("photo orphaned by failed create", "storage_key", *photoKey)
		}
		return nil, err
	}

	s.logger.Info("record registered", "id", rec.ID, "has_photo", rec.HasPhoto())
	return rec, nil
}

func (s *InventoryService) List(ctx context.Context) ([]*domain.Record, error) {
	return s.store.List(ctx)
}

func (s *InventoryService) Get(ctx context.Context, id string) (*domain.Record, error) {
	return s.store.Get(ctx, id)
}

func (s *InventoryService) Update(ctx context.Context, id string, u domain.RecordUpdate) (*domain.Record, error) {
	rec, err := s.store.Update(ctx, id, u)
	if err != nil {
		return nil, err
	}
	s.logger.Info("record updated", "id", id)
	return rec, nil
}

// ReplacePhoto stores a new photo and points the record at it. The previous
// blob is kept.
func (s *InventoryService) ReplacePhoto(ctx context.Context, id string, photo *Upload) (*domain.Record, error) {
	if photo == nil {
		return nil, domain.ErrPhotoRequired
	}

	// Check first so an unknown id does not leave an orphaned blob.
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}

	key, err := s.photoStg.Save(ctx, photo.Filename, photo.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}

	rec, err := s.store.ReplacePhoto(ctx, id, key)
	if err != nil {
		s.logger.Warn("photo orphaned by failed replace", "id", id, "storage_key", key)
		return nil, err
	}

	s.logger.Info("photo replaced", "id", id, "storage_key", key)
	return rec, nil
}

func (s *InventoryService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("record deleted", "id", id)
	return nil
}

// OpenPhoto returns the photo bytes of record id. It fails with
// domain.ErrNoPhoto when the record has none.
func (s *InventoryService) OpenPhoto(ctx context.Context, id string) (io.ReadCloser, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.HasPhoto() {
		return nil, domain.ErrNoPhoto
	}
	return s.photoStg.Get(ctx, *rec.Photo)
}

// SearchResult is what the search view renders for one record.
type SearchResult struct {
	Record   *domain.Record
	PhotoURL string
}

// Search looks up a record by id for the HTML search view. PhotoURL is set
// only when includePhoto is true and the record has a photo.
func (s *InventoryService) Search(ctx context.Context, id string, includePhoto bool) (*SearchResult, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res := &SearchResult{Record: rec}
	if includePhoto && rec.HasPhoto() {
		res.PhotoURL = PhotoPath(rec.ID)
	}
	return res, nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks that the record store is reachable. Stores without a native
// ping are probed with a List.
func (s *InventoryService) Ping(ctx context.Context) error {
	if p, ok := s.store.(pinger); ok {
		return p.Ping(ctx)
	}
	_, err := s.store.List(ctx)
	return err
}

// PhotoPath is the route that serves the photo of record id.
func PhotoPath(id string) string {
	return "/inventory/" + url.PathEscape(id) + "/photo"
}
