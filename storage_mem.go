package kvsearch

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
)

// MemStore is a transient in-memory Store, mostly useful for tests and tools.
// Keys are kept sorted so that pattern scans can seek to the literal prefix.
type MemStore struct {
	mu    sync.RWMutex
	items []memKV // sorted by key
}

type memKV struct {
	key   string
	value string
}

var (
	_ Store   = (*MemStore)(nil)
	_ Flusher = (*MemStore)(nil)
)

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.find(key)
	if ok {
		s.items[i].value = value
		return nil
	}
	s.items = slices.Insert(s.items, i, memKV{key: key, value: value})
	return nil
}

func (s *MemStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.find(key)
	if !ok {
		return "", false, nil
	}
	return s.items[i].value, true, nil
}

func (s *MemStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	p := compileKeyPattern(pattern)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []string
	i, _ := s.find(p.Prefix())
	for ; i < len(s.items); i++ {
		k := s.items[i].key
		if !strings.HasPrefix(k, p.Prefix()) {
			break
		}
		if p.Match(k) {
			result = append(result, k)
		}
	}
	return result, nil
}

func (s *MemStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		i, ok := s.find(k)
		if ok {
			s.items = slices.Delete(s.items, i, i+1)
		}
	}
	return nil
}

func (s *MemStore) FlushAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return nil
}

// Len returns the number of keys in the store.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *MemStore) find(key string) (idx int, ok bool) {
	items := s.items
	i := sort.Search(len(items), func(i int) bool {
		return items[i].key >= key
	})
	if i < len(items) && items[i].key == key {
		return i, true
	}
	return i, false
}
