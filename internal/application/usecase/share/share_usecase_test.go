package share

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/cvnova/adapters/persistence"
	"github.com/khoahotran/cvnova/internal/config"
	"github.com/khoahotran/cvnova/internal/domain/analytics"
	"github.com/khoahotran/cvnova/internal/domain/cv"
	"github.com/khoahotran/cvnova/internal/domain/share"
	"github.com/khoahotran/cvnova/pkg/apperror"
	"github.com/khoahotran/cvnova/pkg/logger"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []analytics.ViewEvent
}

func (p *recordingPublisher) PublishView(_ context.Context, evt analytics.ViewEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type fixture struct {
	cvRepo    cv.Repository
	shareRepo share.Repository
	counters  analytics.Counters
	publisher *recordingPublisher
	shareUC   *ShareCVUseCase
	getUC     *GetSharedCVUseCase
}

func newFixture(t *testing.T, policy string) *fixture {
	t.Helper()
	log := logger.NewNopLogger()
	store := persistence.NewMemoryStore()
	f := &fixture{
		cvRepo:    persistence.NewCVRepo(store, log),
		shareRepo: persistence.NewShareRepo(store),
		counters:  persistence.NewCounters(store),
		publisher: &recordingPublisher{},
	}
	f.shareUC = NewShareCVUseCase(f.cvRepo, f.shareRepo, f.counters, "https://cvnova.com", policy, log)
	f.getUC = NewGetSharedCVUseCase(f.cvRepo, f.shareRepo, f.counters, f.publisher, log)

	require.NoError(t, f.cvRepo.Save(context.Background(), &cv.Document{
		ID: "a1", UserID: "u1", Name: "Mon CV", Status: cv.StatusDraft,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}))
	return f
}

func TestShareCV_MarksPublicAndBuildsURL(t *testing.T) {
	f := newFixture(t, config.ResharePolicyInvalidate)
	ctx := context.Background()

	out, err := f.shareUC.Execute(ctx, ShareCVInput{OwnerID: "u1", CVID: "a1"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ShareID)
	assert.Equal(t, "https://cvnova.com/shared/"+out.ShareID, out.ShareURL)

	doc, err := f.cvRepo.FindByID(ctx, "u1", "a1")
	require.NoError(t, err)
	assert.True(t, doc.IsPublic)
	assert.Equal(t, out.ShareID, doc.ShareID)
	assert.NotNil(t, doc.SharedAt)

	rec, err := f.shareRepo.FindByID(ctx, out.ShareID)
	require.NoError(t, err)
	assert.Equal(t, "a1", rec.CVID)
	assert.Equal(t, "u1", rec.UserID)
}

func TestShareCV_UnknownOrForeignDocument(t *testing.T) {
	f := newFixture(t, config.ResharePolicyInvalidate)

	_, err := f.shareUC.Execute(context.Background(), ShareCVInput{OwnerID: "u1", CVID: "missing"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.shareUC.Execute(context.Background(), ShareCVInput{OwnerID: "u2", CVID: "a1"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestReshare_InvalidatePolicyKillsOldLink(t *testing.T) {
	f := newFixture(t, config.ResharePolicyInvalidate)
	ctx := context.Background()

	first, err := f.shareUC.Execute(ctx, ShareCVInput{OwnerID: "u1", CVID: "a1"})
	require.NoError(t, err)
	_, err = f.getUC.Execute(ctx, GetSharedCVInput{ShareID: first.ShareID})
	require.NoError(t, err)

	second, err := f.shareUC.Execute(ctx, ShareCVInput{OwnerID: "u1", CVID: "a1"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ShareID, second.ShareID)

	_, err = f.getUC.Execute(ctx, GetSharedCVInput{ShareID: first.ShareID})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	views, err := f.counters.Views(ctx, first.ShareID)
	require.NoError(t, err)
	assert.Zero(t, views)

	out, err := f.getUC.Execute(ctx, GetSharedCVInput{ShareID: second.ShareID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, out.Views)
}

func TestReshare_KeepPolicyServesBothLinks(t *testing.T) {
	f := newFixture(t, config.ResharePolicyKeep)
	ctx := context.Background()

	first, err := f.shareUC.Execute(ctx, ShareCVInput{OwnerID: "u1", CVID: "a1"})
	require.NoError(t, err)
	second, err := f.shareUC.Execute(ctx, ShareCVInput{OwnerID: "u1", CVID: "a1"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ShareID, second.ShareID)

	_, err = f.getUC.Execute(ctx, GetSharedCVInput{ShareID: first.ShareID})
	assert.NoError(t, err)
	_, err = f.getUC.Execute(ctx, GetSharedCVInput{ShareID: second.ShareID})
	assert.NoError(t, err)

	doc, err := f.cvRepo.FindByID(ctx, "u1", "a1")
	require.NoError(t, err)
	assert.Equal(t, []string{first.ShareID}, doc.PreviousShareIDs)
}

func TestGetShared_CountsEveryView(t *testing.T) {
	f := newFixture(t, config.ResharePolicyInvalidate)
	ctx := context.Background()

	shared, err := f.shareUC.Execute(ctx, ShareCVInput{OwnerID: "u1", CVID: "a1"})
	require.NoError(t, err)

	const n = 5
	var last *GetSharedCVOutput
	for i := 0; i < n; i++ {
		last, err = f.getUC.Execute(ctx, GetSharedCVInput{ShareID: shared.ShareID})
		require.NoError(t, err)
	}
	assert.EqualValues(t, n, last.Views)
	assert.Equal(t, "Mon CV", last.CV.Name)

	assert.Eventually(t, func() bool { return f.publisher.count() == n }, time.Second, 10*time.Millisecond)
}

func TestGetShared_NotServable(t *testing.T) {
	f := newFixture(t, config.ResharePolicyInvalidate)
	ctx := context.Background()

	_, err := f.getUC.Execute(ctx, GetSharedCVInput{ShareID: "unknown"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	shared, err := f.shareUC.Execute(ctx, ShareCVInput{OwnerID: "u1", CVID: "a1"})
	require.NoError(t, err)

	doc, err := f.cvRepo.FindByID(ctx, "u1", "a1")
	require.NoError(t, err)
	doc.IsPublic = false
	require.NoError(t, f.cvRepo.Save(ctx, doc))

	_, err = f.getUC.Execute(ctx, GetSharedCVInput{ShareID: shared.ShareID})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	require.NoError(t, f.cvRepo.Delete(ctx, "u1", "a1"))
	_, err = f.getUC.Execute(ctx, GetSharedCVInput{ShareID: shared.ShareID})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	views, err := f.counters.Views(ctx, shared.ShareID)
	require.NoError(t, err)
	assert.Zero(t, views)
}
