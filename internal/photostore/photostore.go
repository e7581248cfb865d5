package photostore

import (
	"context"
	"io"
	"path"
	"strings"
)

// PhotoStore persists uploaded photo bytes under store-generated names. There
// is deliberately no Delete: records referencing a blob never clean it up.
type PhotoStore interface {
	// Save writes r under a new unique key derived from suggestedName's
	// extension and returns that key. It never overwrites an existing blob.
	Save(ctx context.Context, suggestedName string, r io.Reader) (key string, err error)
	// Get opens the blob stored under key. It returns an error wrapping
	// domain.ErrNotFound when no such blob exists.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

const maxExtLen = 8

// Ext returns the lowercased extension of suggestedName, or "" when it is
// missing or not a short alphanumeric suffix.
func Ext(suggestedName string) string {
	ext := strings.ToLower(path.Ext(suggestedName))
	if len(ext) < 2 || len(ext) > maxExtLen {
		return ""
	}
	for _, c := range ext[1:] {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return ""
		}
	}
	return ext
}

// ValidKey reports whether key is a flat blob name with no path components.
func ValidKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	return !strings.ContainsAny(key, `/\`)
}
