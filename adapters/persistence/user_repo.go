package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/khoahotran/cvnova/internal/application/service"
	"github.com/khoahotran/cvnova/internal/domain/user"
)

type kvUserRepo struct {
	store service.KeyValueStore
}

func NewUserRepo(store service.KeyValueStore) user.Repository {
	return &kvUserRepo{store: store}
}

func (r *kvUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	data, err := r.store.Get(ctx, UserKey(email))
	if err != nil {
		if errors.Is(err, service.ErrKeyNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("error when query user: %w", err)
	}

	u := &user.User{}
	if err := json.Unmarshal(data, u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return u, nil
}

// Create rejects a taken email. The check and the write are separate store calls,
// so concurrent sign-ups with one email are not serialised.
func (r *kvUserRepo) Create(ctx context.Context, u *user.User) error {
	_, err := r.FindByEmail(ctx, u.Email)
	switch {
	case err == nil:
		return user.ErrEmailTaken
	case !errors.Is(err, user.ErrUserNotFound):
		return err
	}
	return r.Save(ctx, u)
}

func (r *kvUserRepo) Save(ctx context.Context, u *user.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return r.store.Set(ctx, UserKey(u.Email), data)
}
