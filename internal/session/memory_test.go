package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/irtassedat/qrmenu-gateway/internal/backend"
	"github.com/irtassedat/qrmenu-gateway/internal/session"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("put then get returns an equal session", func(t *testing.T) {
		store := session.NewMemoryStore()

		sess := testSession()
		require.NoError(t, store.Put(ctx, sess))

		got, err := store.Get(ctx, sess.ID)
		require.NoError(t, err)
		require.Equal(t, sess, got)
	})

	t.Run("get returns a copy", func(t *testing.T) {
		store := session.NewMemoryStore()
		require.NoError(t, store.Put(ctx, testSession()))

		first, err := store.Get(ctx, "sess-1")
		require.NoError(t, err)
		first.User.Username = "mutated"

		second, err := store.Get(ctx, "sess-1")
		require.NoError(t, err)
		require.Equal(t, "demo", second.User.Username)
	})

	t.Run("delete then get misses", func(t *testing.T) {
		store := session.NewMemoryStore()
		require.NoError(t, store.Put(ctx, testSession()))

		require.NoError(t, store.Delete(ctx, "sess-1"))

		_, err := store.Get(ctx, "sess-1")
		require.ErrorIs(t, err, session.ErrNotFound)

		// Deleting again is fine
		require.NoError(t, store.Delete(ctx, "sess-1"))
	})

	t.Run("all lists every stored session", func(t *testing.T) {
		store := session.NewMemoryStore()

		for _, id := range []string{"a", "b", "c"} {
			require.NoError(t, store.Put(ctx, &session.Session{
				ID:        id,
				Token:     "tok-" + id,
				User:      backend.User{Username: id},
				ExpiresAt: time.Now().Add(time.Hour).Unix(),
			}))
		}

		sessions, err := store.All(ctx)
		require.NoError(t, err)
		require.Len(t, sessions, 3)
	})
}
