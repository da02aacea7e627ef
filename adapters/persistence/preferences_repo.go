package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/khoahotran/cvnova/internal/application/service"
	"github.com/khoahotran/cvnova/internal/domain/preferences"
)

type kvPreferencesRepo struct {
	store service.KeyValueStore
}

func NewPreferencesRepo(store service.KeyValueStore) preferences.Repository {
	return &kvPreferencesRepo{store: store}
}

func (r *kvPreferencesRepo) Get(ctx context.Context, userID string) (preferences.Preferences, error) {
	data, err := r.store.Get(ctx, PreferencesKey(userID))
	if err != nil {
		if errors.Is(err, service.ErrKeyNotFound) {
			return nil, preferences.ErrPreferencesNotFound
		}
		return nil, err
	}

	var prefs preferences.Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("decode preferences of %s: %w", userID, err)
	}
	return prefs, nil
}

func (r *kvPreferencesRepo) Save(ctx context.Context, userID string, prefs preferences.Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences of %s: %w", userID, err)
	}
	return r.store.Set(ctx, PreferencesKey(userID), data)
}
