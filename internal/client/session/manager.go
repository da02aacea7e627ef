package session

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/khoahotran/cvnova/internal/client/api"
	"github.com/khoahotran/cvnova/internal/client/app"
	"github.com/khoahotran/cvnova/internal/domain/user"
	"github.com/khoahotran/cvnova/pkg/logger"
)

// AuthAPI is the part of the API client the manager drives.
type AuthAPI interface {
	SetToken(token string)
	SignUp(ctx context.Context, email, password, name string) (*user.User, error)
	SignIn(ctx context.Context, email, password string) (*api.Session, error)
	CurrentUser(ctx context.Context) (*user.User, error)
}

type EventKind int

const (
	SignedIn EventKind = iota
	SignedOut
)

type Event struct {
	Kind EventKind
	User *user.User
}

type Manager struct {
	api    AuthAPI
	tokens TokenStore
	logger logger.Logger

	mu          sync.Mutex
	nextID      int
	subscribers map[int]func(Event)
}

func NewManager(authAPI AuthAPI, tokens TokenStore, log logger.Logger) *Manager {
	return &Manager{api: authAPI, tokens: tokens, logger: log, subscribers: map[int]func(Event){}}
}

// Subscribe registers fn for sign-in and sign-out events until the returned func is called.
func (m *Manager) Subscribe(fn func(Event)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subscribers[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

// Bind keeps the app store's user in step with session events.
func (m *Manager) Bind(store *app.Store) func() {
	return m.Subscribe(func(e Event) {
		if e.Kind == SignedIn {
			store.Dispatch(app.SetUser{User: e.User})
			return
		}
		store.Dispatch(app.SetUser{User: nil})
	})
}

// Bootstrap restores the stored session if the API still accepts its token.
// A rejected token clears the stored session; no session yields (nil, nil).
func (m *Manager) Bootstrap(ctx context.Context) (*user.User, error) {
	stored, err := m.tokens.Load()
	if errors.Is(err, ErrNoSession) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	m.api.SetToken(stored.AccessToken)
	u, err := m.api.CurrentUser(ctx)
	if err != nil {
		if api.IsStatus(err, http.StatusUnauthorized) {
			m.logger.Debug("Stored session rejected, clearing it")
			m.api.SetToken("")
			if clearErr := m.tokens.Clear(); clearErr != nil {
				m.logger.Warn("Failed to clear stored session", zap.Error(clearErr))
			}
			return nil, nil
		}
		return nil, err
	}

	m.emit(Event{Kind: SignedIn, User: u})
	return u, nil
}

func (m *Manager) SignIn(ctx context.Context, email, password string) (*user.User, error) {
	sess, err := m.api.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := m.tokens.Save(Stored{AccessToken: sess.AccessToken, ExpiresAt: sess.ExpiresAt, User: sess.User}); err != nil {
		return nil, err
	}
	m.api.SetToken(sess.AccessToken)
	m.emit(Event{Kind: SignedIn, User: sess.User})
	return sess.User, nil
}

// SignUp registers the account and signs straight in with it.
func (m *Manager) SignUp(ctx context.Context, email, password, name string) (*user.User, error) {
	if _, err := m.api.SignUp(ctx, email, password, name); err != nil {
		return nil, err
	}
	return m.SignIn(ctx, email, password)
}

func (m *Manager) SignOut() error {
	m.api.SetToken("")
	if err := m.tokens.Clear(); err != nil {
		return err
	}
	m.emit(Event{Kind: SignedOut})
	return nil
}

func (m *Manager) emit(e Event) {
	m.mu.Lock()
	subs := make([]func(Event), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		subs = append(subs, fn)
	}
	m.mu.Unlock()
	for _, fn := range subs {
		fn(e)
	}
}
