// Package store defines the persistence contract for inventory records.
// Implementations live in the filestore and sqlstore subpackages and must be
// indistinguishable to callers; storetest holds the suite both must pass.
package store

import (
	"context"

	"github.com/vbonduro/invreg/internal/domain"
)

// Store persists inventory records. Methods that look up a record by id
// return an error wrapping domain.ErrNotFound when it does not exist.
type Store interface {
	// Create assigns an id and persists the record before returning it.
	Create(ctx context.Context, name, description string, photo *string) (*domain.Record, error)
	// List returns every record in creation order.
	List(ctx context.Context) ([]*domain.Record, error)
	Get(ctx context.Context, id string) (*domain.Record, error)
	// Update overwrites only the non-nil fields of u.
	Update(ctx context.Context, id string, u domain.RecordUpdate) (*domain.Record, error)
	// ReplacePhoto points the record at a different blob. The old blob is
	// left in place.
	ReplacePhoto(ctx context.Context, id, photo string) (*domain.Record, error)
	Delete(ctx context.Context, id string) error
}

// ValidateCreate applies the checks every implementation runs before Create
// touches storage.
func ValidateCreate(name string) error {
	if name == "" {
		return domain.ErrNameRequired
	}
	return nil
}
