package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school_inspection_bot/internal/domain/collection"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *RedisDraftStore) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisDraftStore(client, "", ttl)
}

func TestRedisDraftStore_RoundTrip(t *testing.T) {
	mr, store := newRedisStore(t, time.Hour)
	ctx := context.Background()

	sess := &collection.Session{
		SubmitterID: 99,
		State:       collection.StateReviewAndConfirm,
		Draft: collection.Draft{
			SupervisorName:   "ممدوح",
			VisitDate:        time.Date(2024, 12, 16, 0, 0, 0, 0, time.UTC),
			SchoolName:       "S1",
			MaintenanceNotes: " ",
			ACNotes:          "leak",
			CleaningNotes:    "لا يوجد",
		},
		StartedAt: time.Date(2024, 12, 16, 8, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 12, 16, 8, 5, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(ctx, sess))
	assert.True(t, mr.Exists("school_inspection:draft:99"))

	got, err := store.Get(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, sess, got)
}

func TestRedisDraftStore_MissingAndDelete(t *testing.T) {
	_, store := newRedisStore(t, time.Hour)
	ctx := context.Background()

	_, err := store.Get(ctx, 5)
	assert.ErrorIs(t, err, collection.ErrDraftNotFound)

	require.NoError(t, store.Save(ctx, &collection.Session{SubmitterID: 5}))
	require.NoError(t, store.Delete(ctx, 5))
	require.NoError(t, store.Delete(ctx, 5))

	_, err = store.Get(ctx, 5)
	assert.ErrorIs(t, err, collection.ErrDraftNotFound)
}

func TestRedisDraftStore_TTLExpiresIdleDraft(t *testing.T) {
	mr, store := newRedisStore(t, 10*time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &collection.Session{SubmitterID: 3}))
	mr.FastForward(9 * time.Minute)
	_, err := store.Get(ctx, 3)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, &collection.Session{SubmitterID: 3}))
	mr.FastForward(9 * time.Minute)
	_, err = store.Get(ctx, 3)
	require.NoError(t, err, "saving must refresh the idle TTL")

	mr.FastForward(11 * time.Minute)
	_, err = store.Get(ctx, 3)
	assert.ErrorIs(t, err, collection.ErrDraftNotFound)

	purged, err := store.PurgeIdle(ctx)
	require.NoError(t, err)
	assert.Zero(t, purged)
}

func TestRedisDraftStore_UnavailableServer(t *testing.T) {
	mr, store := newRedisStore(t, time.Minute)
	mr.Close()

	_, err := store.Get(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, collection.ErrDraftNotFound)
}
