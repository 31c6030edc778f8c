package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadbot/internal/models"
	"leadbot/internal/storage"
)

func TestSessionStore_SaveGetDelete(t *testing.T) {
	store := NewSessionStore(time.Hour)
	ctx := context.Background()

	_, err := store.Get(ctx, 42)
	assert.ErrorIs(t, err, storage.ErrNoSession)

	s := models.NewSession(42, time.Now())
	s.Language = models.LanguageRU
	s.SetAnswer("name", "Иван Иванов")
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, models.LanguageRU, got.Language)
	value, ok := got.Answer("name")
	assert.True(t, ok)
	assert.Equal(t, "Иван Иванов", value)

	require.NoError(t, store.Delete(ctx, 42))
	_, err = store.Get(ctx, 42)
	assert.ErrorIs(t, err, storage.ErrNoSession)

	// Deleting a missing session is fine
	assert.NoError(t, store.Delete(ctx, 42))
}

func TestSessionStore_ReturnsCopies(t *testing.T) {
	store := NewSessionStore(0)
	ctx := context.Background()

	s := models.NewSession(1, time.Now())
	require.NoError(t, store.Save(ctx, s))

	s.SetAnswer("name", "changed after save")
	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	_, ok := got.Answer("name")
	assert.False(t, ok, "mutating the saved value must not leak into the store")

	got.Cursor = 3
	again, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Cursor)
}

func TestSessionStore_IdleExpiry(t *testing.T) {
	store := NewSessionStore(30 * time.Minute)
	ctx := context.Background()

	now := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, models.NewSession(1, now)))
	require.NoError(t, store.Save(ctx, models.NewSession(2, now)))

	// Session 2 stays active
	now = now.Add(20 * time.Minute)
	s2, err := store.Get(ctx, 2)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, s2))

	now = now.Add(20 * time.Minute)
	_, err = store.Get(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrNoSession, "session idle for 40m should be expired")
	_, err = store.Get(ctx, 2)
	assert.NoError(t, err)

	assert.Equal(t, 2, store.Len())
	assert.Equal(t, 1, store.EvictIdle(now))
	assert.Equal(t, 1, store.Len())
}

func TestSessionStore_ZeroTTLNeverExpires(t *testing.T) {
	store := NewSessionStore(0)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, models.NewSession(1, time.Now())))
	assert.Equal(t, 0, store.EvictIdle(time.Now().Add(24*365*time.Hour)))
}
