package persistence

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/cvnova/internal/application/service"
)

// exerciseStore runs the behaviour every driver must share.
func exerciseStore(t *testing.T, store service.KeyValueStore) {
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		_, err := store.Get(ctx, "missing:key")
		assert.ErrorIs(t, err, service.ErrKeyNotFound)
	})

	t.Run("set get delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "cv:u1:a", []byte(`{"name":"A"}`)))
		got, err := store.Get(ctx, "cv:u1:a")
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"A"}`, string(got))

		require.NoError(t, store.Set(ctx, "cv:u1:a", []byte(`{"name":"B"}`)))
		got, err = store.Get(ctx, "cv:u1:a")
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"B"}`, string(got))

		require.NoError(t, store.Delete(ctx, "cv:u1:a"))
		require.NoError(t, store.Delete(ctx, "cv:u1:a"))
		_, err = store.Get(ctx, "cv:u1:a")
		assert.ErrorIs(t, err, service.ErrKeyNotFound)
	})

	t.Run("prefix scan stays inside owner", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "cv:owner_1:x", []byte(`{"n":1}`)))
		require.NoError(t, store.Set(ctx, "cv:owner_1:y", []byte(`{"n":2}`)))
		require.NoError(t, store.Set(ctx, "cv:ownerX1:z", []byte(`{"n":3}`)))
		require.NoError(t, store.Set(ctx, "cv:owner_10:w", []byte(`{"n":4}`)))

		entries, err := store.GetByPrefix(ctx, "cv:owner_1:")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "cv:owner_1:x", entries[0].Key)
		assert.Equal(t, "cv:owner_1:y", entries[1].Key)

		none, err := store.GetByPrefix(ctx, "cv:nobody:")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("incr", func(t *testing.T) {
		n, err := store.Incr(ctx, "cv_views:s1")
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		n, err = store.Incr(ctx, "cv_views:s1")
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
	})

	t.Run("concurrent incr loses nothing", func(t *testing.T) {
		const workers = 20
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Incr(ctx, "cv_views:hot")
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := store.Get(ctx, "cv_views:hot")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprint(workers), string(got))
	})
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_IncrOnNonInteger(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", []byte(`{"a":1}`)))

	_, err := store.Incr(ctx, "k")
	assert.Error(t, err)
}

func TestEscapers(t *testing.T) {
	assert.Equal(t, `cv:a\*b\?:`, escapeGlob("cv:a*b?:"))
	assert.Equal(t, `cv:owner\_1\%:`, escapeLike("cv:owner_1%:"))
}
