package persistence

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/khoahotran/cvnova/internal/application/service"
)

type memoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore returns a process-local store. Data is lost on restart.
func NewMemoryStore() service.KeyValueStore {
	return &memoryStore{data: make(map[string][]byte)}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, service.ErrKeyNotFound
	}
	return bytes.Clone(v), nil
}

func (s *memoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = bytes.Clone(value)
	return nil
}

func (s *memoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

func (s *memoryStore) GetByPrefix(_ context.Context, prefix string) ([]service.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []service.Entry
	for k, v := range s.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, service.Entry{Key: k, Value: bytes.Clone(v)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *memoryStore) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	if v, ok := s.data[key]; ok {
		parsed, err := strconv.ParseInt(string(bytes.TrimSpace(v)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("value at %q is not an integer: %w", key, err)
		}
		n = parsed
	}
	n++
	s.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}
