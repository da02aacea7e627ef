package service

import (
	"context"
	"errors"
)

var ErrKeyNotFound = errors.New("key not found")

type Entry struct {
	Key   string
	Value []byte
}

// KeyValueStore holds JSON values under string keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	GetByPrefix(ctx context.Context, prefix string) ([]Entry, error)
	// Incr atomically adds one to the integer stored at key, starting from zero.
	Incr(ctx context.Context, key string) (int64, error)
}
