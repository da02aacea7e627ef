package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/khoahotran/cvnova/internal/application/service"
	"github.com/khoahotran/cvnova/internal/domain/share"
)

type kvShareRepo struct {
	store service.KeyValueStore
}

func NewShareRepo(store service.KeyValueStore) share.Repository {
	return &kvShareRepo{store: store}
}

func (r *kvShareRepo) Save(ctx context.Context, shareID string, rec *share.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode share %s: %w", shareID, err)
	}
	return r.store.Set(ctx, SharedKey(shareID), data)
}

func (r *kvShareRepo) FindByID(ctx context.Context, shareID string) (*share.Record, error) {
	data, err := r.store.Get(ctx, SharedKey(shareID))
	if err != nil {
		if errors.Is(err, service.ErrKeyNotFound) {
			return nil, share.ErrShareNotFound
		}
		return nil, err
	}

	rec := &share.Record{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("decode share %s: %w", shareID, err)
	}
	return rec, nil
}

func (r *kvShareRepo) Delete(ctx context.Context, shareID string) error {
	return r.store.Delete(ctx, SharedKey(shareID))
}
