package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/khoahotran/cvnova/internal/application/service"
	"github.com/khoahotran/cvnova/internal/domain/cv"
	"github.com/khoahotran/cvnova/pkg/logger"
)

type kvCVRepo struct {
	store  service.KeyValueStore
	logger logger.Logger
}

func NewCVRepo(store service.KeyValueStore, log logger.Logger) cv.Repository {
	return &kvCVRepo{store: store, logger: log}
}

func (r *kvCVRepo) Save(ctx context.Context, doc *cv.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode cv %s: %w", doc.ID, err)
	}
	return r.store.Set(ctx, CVKey(doc.UserID, doc.ID), data)
}

func (r *kvCVRepo) FindByID(ctx context.Context, ownerID, id string) (*cv.Document, error) {
	data, err := r.store.Get(ctx, CVKey(ownerID, id))
	if err != nil {
		if errors.Is(err, service.ErrKeyNotFound) {
			return nil, cv.ErrCVNotFound
		}
		return nil, err
	}

	doc := &cv.Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("decode cv %s: %w", id, err)
	}
	doc.ID = id
	doc.UserID = ownerID
	return doc, nil
}

func (r *kvCVRepo) ListByOwner(ctx context.Context, ownerID string) ([]*cv.Document, error) {
	prefix := CVPrefix(ownerID)
	entries, err := r.store.GetByPrefix(ctx, prefix)
	if err != nil {
		return nil, err
	}

	docs := make([]*cv.Document, 0, len(entries))
	for _, e := range entries {
		doc := &cv.Document{}
		if err := json.Unmarshal(e.Value, doc); err != nil {
			r.logger.Warn("Skipping unreadable cv entry", zap.String("key", e.Key), zap.Error(err))
			continue
		}
		doc.ID = strings.TrimPrefix(e.Key, prefix)
		doc.UserID = ownerID
		docs = append(docs, doc)
	}
	return docs, nil
}

func (r *kvCVRepo) Delete(ctx context.Context, ownerID, id string) error {
	return r.store.Delete(ctx, CVKey(ownerID, id))
}
