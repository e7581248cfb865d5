package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no record or blob exists for an id.
	ErrNotFound = errors.New("not found")
	// ErrInvalid is returned when a required field is missing.
	ErrInvalid = errors.New("invalid input")
)

var (
	ErrNameRequired  = fmt.Errorf("%w: name is required", ErrInvalid)
	ErrPhotoRequired = fmt.Errorf("%w: photo is required", ErrInvalid)
	ErrNoPhoto       = fmt.Errorf("photo %w", ErrNotFound)
)
