package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school_inspection_bot/internal/domain/collection"
)

func TestMemoryDraftStore_SaveGetDelete(t *testing.T) {
	store := NewMemoryDraftStore(time.Hour)
	ctx := context.Background()

	_, err := store.Get(ctx, 1)
	assert.ErrorIs(t, err, collection.ErrDraftNotFound)

	sess := &collection.Session{SubmitterID: 1, State: collection.StateSchoolName, UpdatedAt: time.Now()}
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, collection.StateSchoolName, got.State)

	got.State = collection.StateACNotes
	again, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, collection.StateSchoolName, again.State, "stored session must not alias the returned copy")

	require.NoError(t, store.Delete(ctx, 1))
	_, err = store.Get(ctx, 1)
	assert.ErrorIs(t, err, collection.ErrDraftNotFound)
}

func TestMemoryDraftStore_IdleExpiry(t *testing.T) {
	store := NewMemoryDraftStore(30 * time.Minute)
	ctx := context.Background()
	base := time.Date(2024, 12, 18, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	require.NoError(t, store.Save(ctx, &collection.Session{SubmitterID: 1, UpdatedAt: base.Add(-31 * time.Minute)}))
	require.NoError(t, store.Save(ctx, &collection.Session{SubmitterID: 2, UpdatedAt: base.Add(-5 * time.Minute)}))
	require.NoError(t, store.Save(ctx, &collection.Session{SubmitterID: 3, UpdatedAt: base.Add(-2 * time.Hour)}))

	_, err := store.Get(ctx, 1)
	assert.ErrorIs(t, err, collection.ErrDraftNotFound)

	purged, err := store.PurgeIdle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	_, err = store.Get(ctx, 2)
	assert.NoError(t, err)
}

func TestMemoryDraftStore_NoTimeoutNeverExpires(t *testing.T) {
	store := NewMemoryDraftStore(0)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &collection.Session{SubmitterID: 1, UpdatedAt: time.Unix(0, 0)}))

	purged, err := store.PurgeIdle(ctx)
	require.NoError(t, err)
	assert.Zero(t, purged)
	_, err = store.Get(ctx, 1)
	assert.NoError(t, err)
}
