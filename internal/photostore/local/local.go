package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/vbonduro/invreg/internal/domain"
	"github.com/vbonduro/invreg/internal/photostore"
)

// LocalPhotoStore keeps each blob as one file in a flat directory.
type LocalPhotoStore struct {
	basePath string
}

func NewLocalPhotoStore(basePath string) (*LocalPhotoStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory: %w", err)
	}
	return &LocalPhotoStore{basePath: basePath}, nil
}

func (s *LocalPhotoStore) Save(ctx context.Context, suggestedName string, r io.Reader) (string, error) {
	filename := uuid.NewString() + photostore.Ext(suggestedName)
	filePath := filepath.Join(s.basePath, filename)

	// O_EXCL so a key collision fails instead of clobbering another blob.
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		if cerr := f.Close(); cerr != nil {
			slog.Error("failed to close file after write error", "error", cerr)
		}
		if rerr := os.Remove(filePath); rerr != nil {
			slog.Error("failed to remove file after write error", "error", rerr)
		}
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		if rerr := os.Remove(filePath); rerr != nil {
			slog.Error("failed to remove file after close error", "error", rerr)
		}
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	return filename, nil
}

func (s *LocalPhotoStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	filePath, err := s.safeJoin(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("photo %q: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// safeJoin resolves key relative to basePath and rejects directory traversal.
// A rejected key is reported as not found so callers cannot probe the
// filesystem outside the photo directory.
func (s *LocalPhotoStore) safeJoin(key string) (string, error) {
	if !photostore.ValidKey(key) {
		return "", fmt.Errorf("photo %q: %w", key, domain.ErrNotFound)
	}

	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	absPath, err := filepath.Abs(filepath.Join(s.basePath, key))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("photo %q: %w", key, domain.ErrNotFound)
	}
	return absPath, nil
}
