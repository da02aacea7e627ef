package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/cvnova/internal/domain/cv"
	"github.com/khoahotran/cvnova/internal/domain/preferences"
	"github.com/khoahotran/cvnova/internal/domain/share"
	"github.com/khoahotran/cvnova/internal/domain/user"
	"github.com/khoahotran/cvnova/pkg/logger"
)

func TestCVRepo_OwnerScopedKeys(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := NewCVRepo(store, logger.NewNopLogger())

	doc := &cv.Document{ID: "a1", UserID: "u1", Name: "Mon CV", Status: cv.StatusDraft}
	require.NoError(t, repo.Save(ctx, doc))

	raw, err := store.Get(ctx, "cv:u1:a1")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"Mon CV"`)

	_, err = repo.FindByID(ctx, "u2", "a1")
	assert.ErrorIs(t, err, cv.ErrCVNotFound)

	found, err := repo.FindByID(ctx, "u1", "a1")
	require.NoError(t, err)
	assert.Equal(t, "Mon CV", found.Name)
}

func TestCVRepo_ListRecoversIDsAndSkipsGarbage(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := NewCVRepo(store, logger.NewNopLogger())

	require.NoError(t, store.Set(ctx, "cv:u1:legacy", []byte(`{"name":"Sans id"}`)))
	require.NoError(t, store.Set(ctx, "cv:u1:broken", []byte(`not json`)))
	require.NoError(t, store.Set(ctx, "cv:u2:other", []byte(`{"name":"Other"}`)))

	docs, err := repo.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "legacy", docs[0].ID)
	assert.Equal(t, "u1", docs[0].UserID)
}

func TestShareRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewShareRepo(NewMemoryStore())

	_, err := repo.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, share.ErrShareNotFound)

	at := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, "s1", &share.Record{CVID: "a1", UserID: "u1", SharedAt: at}))

	rec, err := repo.FindByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "a1", rec.CVID)
	assert.True(t, at.Equal(rec.SharedAt))

	require.NoError(t, repo.Delete(ctx, "s1"))
	_, err = repo.FindByID(ctx, "s1")
	assert.ErrorIs(t, err, share.ErrShareNotFound)
}

func TestPreferencesRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewPreferencesRepo(NewMemoryStore())

	_, err := repo.Get(ctx, "u1")
	assert.ErrorIs(t, err, preferences.ErrPreferencesNotFound)

	require.NoError(t, repo.Save(ctx, "u1", preferences.Preferences{"theme": "dark"}))
	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, preferences.Preferences{"theme": "dark"}, got)
}

func TestCounters(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	counters := NewCounters(store)

	views, err := counters.Views(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, views)

	for i := 0; i < 3; i++ {
		_, err := counters.IncrementViews(ctx, "s1")
		require.NoError(t, err)
	}
	views, err = counters.Views(ctx, "s1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, views)

	require.NoError(t, counters.DeleteViews(ctx, "s1"))
	views, err = counters.Views(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, views)

	downloads, err := counters.Downloads(ctx, "a1")
	require.NoError(t, err)
	assert.Zero(t, downloads)

	last, err := counters.LastViewed(ctx, "a1")
	require.NoError(t, err)
	assert.Nil(t, last)

	at := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, counters.SetLastViewed(ctx, "a1", at))
	last, err = counters.LastViewed(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, at.Equal(*last))
}

func TestUserRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepo(NewMemoryStore())

	u := &user.User{ID: "u1", Email: "Jean@Example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, u))
	assert.ErrorIs(t, repo.Create(ctx, &user.User{ID: "u2", Email: "jean@example.com"}), user.ErrEmailTaken)

	found, err := repo.FindByEmail(ctx, "JEAN@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", found.ID)
	assert.Equal(t, "hash", found.PasswordHash)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	found.PasswordHash = "rotated"
	require.NoError(t, repo.Save(ctx, found))
	again, err := repo.FindByEmail(ctx, "jean@example.com")
	require.NoError(t, err)
	assert.Equal(t, "rotated", again.PasswordHash)
	assert.Equal(t, "u1", again.ID)
}
