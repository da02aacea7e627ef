package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/khoahotran/cvnova/internal/application/service"
	"github.com/khoahotran/cvnova/internal/domain/analytics"
)

type kvCounters struct {
	store service.KeyValueStore
}

func NewCounters(store service.KeyValueStore) analytics.Counters {
	return &kvCounters{store: store}
}

func (c *kvCounters) IncrementViews(ctx context.Context, shareID string) (int64, error) {
	return c.store.Incr(ctx, ViewsKey(shareID))
}

func (c *kvCounters) Views(ctx context.Context, shareID string) (int64, error) {
	return c.readInt(ctx, ViewsKey(shareID))
}

func (c *kvCounters) DeleteViews(ctx context.Context, shareID string) error {
	return c.store.Delete(ctx, ViewsKey(shareID))
}

func (c *kvCounters) Downloads(ctx context.Context, cvID string) (int64, error) {
	return c.readInt(ctx, DownloadsKey(cvID))
}

func (c *kvCounters) SetLastViewed(ctx context.Context, cvID string, at time.Time) error {
	data, err := json.Marshal(at.UTC())
	if err != nil {
		return err
	}
	return c.store.Set(ctx, LastViewedKey(cvID), data)
}

func (c *kvCounters) LastViewed(ctx context.Context, cvID string) (*time.Time, error) {
	data, err := c.store.Get(ctx, LastViewedKey(cvID))
	if err != nil {
		if errors.Is(err, service.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var at time.Time
	if err := json.Unmarshal(data, &at); err != nil {
		return nil, fmt.Errorf("decode last viewed of %s: %w", cvID, err)
	}
	return &at, nil
}

// readInt treats a missing key as zero.
func (c *kvCounters) readInt(ctx context.Context, key string) (int64, error) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, service.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	n, err := strconv.ParseInt(string(bytes.TrimSpace(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("counter %q is not an integer: %w", key, err)
	}
	return n, nil
}
