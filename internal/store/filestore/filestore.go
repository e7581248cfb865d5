package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/vbonduro/invreg/internal/domain"
	"github.com/vbonduro/invreg/internal/store"
)

// FileStore keeps the whole record collection as a JSON array in one file.
// Every call reads the file fresh; every mutation rewrites it. Mutations are
// serialized by mu so concurrent writers cannot drop each other's changes.
type FileStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

var _ store.Store = (*FileStore)(nil)

// NewFileStore creates the data file with an empty collection if it does
// not exist yet.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &FileStore{path: path, now: time.Now}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := s.save(nil); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat data file: %w", err)
	}
	return s, nil
}

func (s *FileStore) Create(ctx context.Context, name, description string, photo *string) (*domain.Record, error) {
	if err := store.ValidateCreate(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}

	rec := &domain.Record{
		ID:          s.nextID(records),
		Name:        name,
		Description: description,
		Photo:       photo,
	}
	if err := s.save(append(records, rec)); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *FileStore) List(ctx context.Context) ([]*domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.load()
}

func (s *FileStore) Get(ctx context.Context, id string) (*domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := s.load()
	if err != nil {
		return nil, err
	}
	i := indexOf(records, id)
	if i < 0 {
		return nil, notFound(id)
	}
	return records[i], nil
}

func (s *FileStore) Update(ctx context.Context, id string, u domain.RecordUpdate) (*domain.Record, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(rec *domain.Record) {
		if u.Name != nil {
			rec.Name = *u.Name
		}
		if u.Description != nil {
			rec.Description = *u.Description
		}
	})
}

func (s *FileStore) ReplacePhoto(ctx context.Context, id, photo string) (*domain.Record, error) {
	return s.mutate(ctx, id, func(rec *domain.Record) {
		rec.Photo = &photo
	})
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	i := indexOf(records, id)
	if i < 0 {
		return notFound(id)
	}
	return s.save(append(records[:i], records[i+1:]...))
}

// mutate applies fn to the record with id under the write lock and persists
// the collection.
func (s *FileStore) mutate(ctx context.Context, id string, fn func(*domain.Record)) (*domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	i := indexOf(records, id)
	if i < 0 {
		return nil, notFound(id)
	}
	fn(records[i])
	if err := s.save(records); err != nil {
		return nil, err
	}
	return records[i], nil
}

// nextID derives an id from the current time in milliseconds, stepping past
// any id already taken so two creates in the same millisecond stay unique.
func (s *FileStore) nextID(records []*domain.Record) string {
	taken := make(map[string]bool, len(records))
	for _, r := range records {
		taken[r.ID] = true
	}
	n := s.now().UnixMilli()
	for taken[strconv.FormatInt(n, 10)] {
		n++
	}
	return strconv.FormatInt(n, 10)
}

func (s *FileStore) load() ([]*domain.Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []*domain.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []*domain.Record{}, nil
	}

	var records []*domain.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode data file: %w", err)
	}
	if records == nil {
		records = []*domain.Record{}
	}
	return records, nil
}

// save replaces the data file atomically: readers see either the old or the
// new collection, never a partial write.
func (s *FileStore) save(records []*domain.Record) error {
	if records == nil {
		records = []*domain.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".inventory-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close data file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace data file: %w", err)
	}
	return nil
}

func indexOf(records []*domain.Record, id string) int {
	for i, r := range records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func notFound(id string) error {
	return fmt.Errorf("record %q: %w", id, domain.ErrNotFound)
}
