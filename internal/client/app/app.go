package app

import (
	"sync"

	"github.com/khoahotran/cvnova/internal/domain/user"
)

type Page string

const (
	PageHome      Page = "home"
	PageEditor    Page = "editor"
	PageDashboard Page = "dashboard"
	PageTemplates Page = "templates"
)

func (p Page) gated() bool {
	return p == PageEditor || p == PageDashboard
}

type State struct {
	User *user.User
	Page Page
	// EditingID is the document open in the editor; empty means a new document.
	EditingID string
}

func Initial() State {
	return State{Page: PageHome}
}

type Action interface {
	isAction()
}

type Navigate struct {
	Page Page
}

type SetUser struct {
	User *user.User
}

type EditCV struct {
	ID string
}

func (Navigate) isAction() {}
func (SetUser) isAction()  {}
func (EditCV) isAction()   {}

// Reduce returns the state after applying a. It never mutates s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case Navigate:
		if a.Page.gated() && s.User == nil {
			s.Page = PageHome
			return s
		}
		s.Page = a.Page
		if a.Page != PageEditor {
			s.EditingID = ""
		}
	case SetUser:
		s.User = a.User
		if a.User == nil {
			s.EditingID = ""
			if s.Page.gated() {
				s.Page = PageHome
			}
		}
	case EditCV:
		if s.User == nil {
			s.Page = PageHome
			return s
		}
		s.Page = PageEditor
		s.EditingID = a.ID
	}
	return s
}

// Store holds the current State and notifies subscribers after each dispatch.
type Store struct {
	mu          sync.Mutex
	state       State
	nextID      int
	subscribers map[int]func(State)
}

func NewStore(initial State) *Store {
	return &Store{state: initial, subscribers: map[int]func(State){}}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state
	subs := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return next
}

// Subscribe registers fn and returns a func that removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}
