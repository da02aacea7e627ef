package session

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/cvnova/internal/client/api"
	"github.com/khoahotran/cvnova/internal/client/app"
	"github.com/khoahotran/cvnova/internal/domain/user"
	"github.com/khoahotran/cvnova/pkg/logger"
)

type MockAuthAPI struct {
	mock.Mock
}

func (m *MockAuthAPI) SetToken(token string) {
	m.Called(token)
}

func (m *MockAuthAPI) SignUp(ctx context.Context, email, password, name string) (*user.User, error) {
	args := m.Called(ctx, email, password, name)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *MockAuthAPI) SignIn(ctx context.Context, email, password string) (*api.Session, error) {
	args := m.Called(ctx, email, password)
	s, _ := args.Get(0).(*api.Session)
	return s, args.Error(1)
}

func (m *MockAuthAPI) CurrentUser(ctx context.Context) (*user.User, error) {
	args := m.Called(ctx)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

var ana = &user.User{ID: "u1", Email: "ana@example.com", Name: "Ana"}

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileTokenStore(path)

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	exp := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(Stored{AccessToken: "tok", ExpiresAt: exp, User: ana}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", got.AccessToken)
	assert.True(t, exp.Equal(got.ExpiresAt))
	assert.Equal(t, "ana@example.com", got.User.Email)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestManager_BootstrapSeedsStore(t *testing.T) {
	ctx := context.Background()
	tokens := NewFileTokenStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, tokens.Save(Stored{AccessToken: "tok", User: ana}))

	authAPI := new(MockAuthAPI)
	authAPI.On("SetToken", "tok").Return()
	authAPI.On("CurrentUser", ctx).Return(ana, nil)

	m := NewManager(authAPI, tokens, logger.NewNopLogger())
	store := app.NewStore(app.Initial())
	defer m.Bind(store)()

	u, err := m.Bootstrap(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, ana, store.State().User)
	authAPI.AssertExpectations(t)
}

func TestManager_BootstrapClearsRejectedToken(t *testing.T) {
	ctx := context.Background()
	tokens := NewFileTokenStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, tokens.Save(Stored{AccessToken: "expired"}))

	authAPI := new(MockAuthAPI)
	authAPI.On("SetToken", "expired").Return()
	authAPI.On("SetToken", "").Return()
	authAPI.On("CurrentUser", ctx).Return(nil, &api.APIError{StatusCode: http.StatusUnauthorized, Code: "unauthorized"})

	m := NewManager(authAPI, tokens, logger.NewNopLogger())
	u, err := m.Bootstrap(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	_, err = tokens.Load()
	assert.ErrorIs(t, err, ErrNoSession)
	authAPI.AssertExpectations(t)
}

func TestManager_BootstrapWithoutSession(t *testing.T) {
	authAPI := new(MockAuthAPI)
	m := NewManager(authAPI, NewFileTokenStore(filepath.Join(t.TempDir(), "none.json")), logger.NewNopLogger())

	u, err := m.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Nil(t, u)
	authAPI.AssertNotCalled(t, "CurrentUser", mock.Anything)
}

func TestManager_SignUpSignsInAndSignOutGoesHome(t *testing.T) {
	ctx := context.Background()
	tokens := NewFileTokenStore(filepath.Join(t.TempDir(), "session.json"))

	authAPI := new(MockAuthAPI)
	authAPI.On("SignUp", ctx, "ana@example.com", "secret1", "Ana").Return(ana, nil)
	authAPI.On("SignIn", ctx, "ana@example.com", "secret1").Return(&api.Session{AccessToken: "tok-new", User: ana}, nil)
	authAPI.On("SetToken", "tok-new").Return()
	authAPI.On("SetToken", "").Return()

	m := NewManager(authAPI, tokens, logger.NewNopLogger())
	store := app.NewStore(app.Initial())
	unbind := m.Bind(store)
	defer unbind()

	var events []EventKind
	defer m.Subscribe(func(e Event) { events = append(events, e.Kind) })()

	_, err := m.SignUp(ctx, "ana@example.com", "secret1", "Ana")
	require.NoError(t, err)
	stored, err := tokens.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-new", stored.AccessToken)

	store.Dispatch(app.Navigate{Page: app.PageDashboard})
	assert.Equal(t, app.PageDashboard, store.State().Page)

	require.NoError(t, m.SignOut())
	assert.Nil(t, store.State().User)
	assert.Equal(t, app.PageHome, store.State().Page)
	assert.Equal(t, []EventKind{SignedIn, SignedOut}, events)
	authAPI.AssertExpectations(t)
}
