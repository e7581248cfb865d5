// Package storetest holds the behavioural suite every store.Store
// implementation must pass.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/invreg/internal/domain"
	"github.com/vbonduro/invreg/internal/store"
)

// Run exercises s against the record lifecycle. newStore must return an
// empty store each time it is called.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"CreateEchoesInput", testCreateEchoesInput},
		{"CreateDefaultsDescription", testCreateDefaultsDescription},
		{"CreateWithPhoto", testCreateWithPhoto},
		{"CreateRequiresName", testCreateRequiresName},
		{"CreateAssignsUniqueIDs", testCreateAssignsUniqueIDs},
		{"GetMatchesCreate", testGetMatchesCreate},
		{"GetNotFound", testGetNotFound},
		{"ListEmpty", testListEmpty},
		{"ListStableOrder", testListStableOrder},
		{"UpdateNameOnly", testUpdateNameOnly},
		{"UpdateDescriptionOnly", testUpdateDescriptionOnly},
		{"UpdateNothing", testUpdateNothing},
		{"UpdateClearsDescription", testUpdateClearsDescription},
		{"UpdateRejectsEmptyName", testUpdateRejectsEmptyName},
		{"UpdateNotFound", testUpdateNotFound},
		{"ReplacePhoto", testReplacePhoto},
		{"ReplacePhotoNotFound", testReplacePhotoNotFound},
		{"Delete", testDelete},
		{"DeleteNotFound", testDeleteNotFound},
		{"DeleteTwice", testDeleteTwice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func ptr(s string) *string { return &s }

func testCreateEchoesInput(t *testing.T, s store.Store) {
	rec, err := s.Create(context.Background(), "Drill", "Cordless", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "Drill", rec.Name)
	assert.Equal(t, "Cordless", rec.Description)
	assert.Nil(t, rec.Photo)
}

func testCreateDefaultsDescription(t *testing.T, s store.Store) {
	rec, err := s.Create(context.Background(), "Ladder", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "", rec.Description)
}

func testCreateWithPhoto(t *testing.T, s store.Store) {
	rec, err := s.Create(context.Background(), "Saw", "", ptr("saw.jpg"))
	require.NoError(t, err)
	require.NotNil(t, rec.Photo)
	assert.Equal(t, "saw.jpg", *rec.Photo)
}

func testCreateRequiresName(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.Create(ctx, "", "no name", nil)
	assert.ErrorIs(t, err, domain.ErrInvalid)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "a rejected create must persist nothing")
}

func testCreateAssignsUniqueIDs(t *testing.T, s store.Store) {
	ctx := context.Background()
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		rec, err := s.Create(ctx, "Hammer", "", nil)
		require.NoError(t, err)
		assert.False(t, seen[rec.ID], "duplicate id %s", rec.ID)
		seen[rec.ID] = true
	}
}

func testGetMatchesCreate(t *testing.T, s store.Store) {
	ctx := context.Background()

	created, err := s.Create(ctx, "Drill", "Cordless", ptr("drill.jpg"))
	require.NoError(t, err)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func testGetNotFound(t *testing.T, s store.Store) {
	_, err := s.Get(context.Background(), "999999")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.Get(context.Background(), "not-an-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testListEmpty(t *testing.T, s store.Store) {
	list, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func testListStableOrder(t *testing.T, s store.Store) {
	ctx := context.Background()

	var created []*domain.Record
	for _, name := range []string{"Wrench", "Anvil", "Pliers"} {
		rec, err := s.Create(ctx, name, "", nil)
		require.NoError(t, err)
		created = append(created, rec)
	}

	first, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 3)
	for i, rec := range created {
		assert.Equal(t, rec.ID, first[i].ID, "records must list in creation order")

		got, err := s.Get(ctx, first[i].ID)
		require.NoError(t, err)
		assert.Equal(t, rec, got)
	}

	second, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func testUpdateNameOnly(t *testing.T, s store.Store) {
	ctx := context.Background()

	rec, err := s.Create(ctx, "Drill", "Cordless", ptr("drill.jpg"))
	require.NoError(t, err)

	updated, err := s.Update(ctx, rec.ID, domain.RecordUpdate{Name: ptr("X")})
	require.NoError(t, err)
	assert.Equal(t, rec.ID, updated.ID)
	assert.Equal(t, "X", updated.Name)
	assert.Equal(t, "Cordless", updated.Description)
	assert.Equal(t, rec.Photo, updated.Photo)

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func testUpdateDescriptionOnly(t *testing.T, s store.Store) {
	ctx := context.Background()

	rec, err := s.Create(ctx, "Drill", "", nil)
	require.NoError(t, err)

	updated, err := s.Update(ctx, rec.ID, domain.RecordUpdate{Description: ptr("Cordless")})
	require.NoError(t, err)
	assert.Equal(t, "Drill", updated.Name)
	assert.Equal(t, "Cordless", updated.Description)
}

func testUpdateNothing(t *testing.T, s store.Store) {
	ctx := context.Background()

	rec, err := s.Create(ctx, "Drill", "Cordless", nil)
	require.NoError(t, err)

	updated, err := s.Update(ctx, rec.ID, domain.RecordUpdate{})
	require.NoError(t, err)
	assert.Equal(t, rec, updated)
}

func testUpdateClearsDescription(t *testing.T, s store.Store) {
	ctx := context.Background()

	rec, err := s.Create(ctx, "Drill", "Cordless", nil)
	require.NoError(t, err)

	updated, err := s.Update(ctx, rec.ID, domain.RecordUpdate{Description: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "", updated.Description)
}

func testUpdateRejectsEmptyName(t *testing.T, s store.Store) {
	ctx := context.Background()

	rec, err := s.Create(ctx, "Drill", "", nil)
	require.NoError(t, err)

	_, err = s.Update(ctx, rec.ID, domain.RecordUpdate{Name: ptr("")})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Drill", got.Name)
}

func testUpdateNotFound(t *testing.T, s store.Store) {
	_, err := s.Update(context.Background(), "424242", domain.RecordUpdate{Name: ptr("X")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testReplacePhoto(t *testing.T, s store.Store) {
	ctx := context.Background()

	rec, err := s.Create(ctx, "Drill", "Cordless", ptr("old.jpg"))
	require.NoError(t, err)

	updated, err := s.ReplacePhoto(ctx, rec.ID, "new.jpg")
	require.NoError(t, err)
	require.NotNil(t, updated.Photo)
	assert.Equal(t, "new.jpg", *updated.Photo)
	assert.Equal(t, "Drill", updated.Name)
	assert.Equal(t, "Cordless", updated.Description)

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func testReplacePhotoNotFound(t *testing.T, s store.Store) {
	_, err := s.ReplacePhoto(context.Background(), "424242", "new.jpg")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testDelete(t *testing.T, s store.Store) {
	ctx := context.Background()

	keep, err := s.Create(ctx, "Keep", "", nil)
	require.NoError(t, err)
	gone, err := s.Create(ctx, "Gone", "", nil)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, gone.ID))

	_, err = s.Get(ctx, gone.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)
}

func testDeleteNotFound(t *testing.T, s store.Store) {
	err := s.Delete(context.Background(), "424242")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testDeleteTwice(t *testing.T, s store.Store) {
	ctx := context.Background()

	rec, err := s.Create(ctx, "Drill", "", nil)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, rec.ID))
	assert.ErrorIs(t, s.Delete(ctx, rec.ID), domain.ErrNotFound)
}
