package domain

// Record is one registered inventory item. Photo is the name of a blob in the
// photo store, or nil when no photo was ever attached.
type Record struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Photo       *string `json:"photo"`
}

// HasPhoto reports whether the record references a photo blob.
func (r *Record) HasPhoto() bool {
	return r.Photo != nil && *r.Photo != ""
}

// RecordUpdate carries the fields of a partial update. A nil field keeps the
// current value.
type RecordUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Validate rejects an update that would leave the record without a name.
func (u RecordUpdate) Validate() error {
	if u.Name != nil && *u.Name == "" {
		return ErrNameRequired
	}
	return nil
}
