package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/khoahotran/cvnova/internal/domain/user"
)

var ErrNoSession = errors.New("no stored session")

// Stored is what survives between CLI invocations.
type Stored struct {
	AccessToken string     `json:"accessToken"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	User        *user.User `json:"user"`
}

type TokenStore interface {
	Save(s Stored) error
	Load() (Stored, error)
	Clear() error
}

// FileTokenStore keeps the session as JSON in a single user-only file.
type FileTokenStore struct {
	Path string
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{Path: path}
}

func (f *FileTokenStore) Save(s Stored) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.Rename(tmp, f.Path)
}

func (f *FileTokenStore) Load() (Stored, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return Stored{}, ErrNoSession
	}
	if err != nil {
		return Stored{}, fmt.Errorf("read session: %w", err)
	}
	var s Stored
	if err := json.Unmarshal(data, &s); err != nil {
		return Stored{}, fmt.Errorf("corrupt session file %s: %w", f.Path, err)
	}
	if s.AccessToken == "" {
		return Stored{}, ErrNoSession
	}
	return s, nil
}

func (f *FileTokenStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
