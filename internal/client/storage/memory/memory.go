// Package memory implements client storage interfaces in process memory.
// Used in tests and for --ephemeral runs where nothing must touch disk.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/iudanet/itemsync/internal/client/storage"
	"github.com/iudanet/itemsync/internal/models"
)

// Storage in-memory реализация AuthStorage, QueueStorage и CacheStorage
type Storage struct {
	auth    *storage.AuthData
	actions map[string]models.QueuedAction
	cache   map[string]map[string]storage.CacheEntry
	mu      sync.RWMutex
}

var (
	_ storage.AuthStorage  = (*Storage)(nil)
	_ storage.QueueStorage = (*Storage)(nil)
	_ storage.CacheStorage = (*Storage)(nil)
)

// New creates an empty in-memory storage
func New() *Storage {
	return &Storage{
		actions: make(map[string]models.QueuedAction),
		cache:   make(map[string]map[string]storage.CacheEntry),
	}
}

// Close is a no-op kept for symmetry with boltdb.Storage
func (s *Storage) Close() error { return nil }

func (s *Storage) SaveAuth(_ context.Context, auth *storage.AuthData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *auth
	s.auth = &cp
	return nil
}

func (s *Storage) GetAuth(_ context.Context) (*storage.AuthData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.auth == nil {
		return nil, storage.ErrAuthNotFound
	}
	cp := *s.auth
	return &cp, nil
}

func (s *Storage) DeleteAuth(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth = nil
	return nil
}

func (s *Storage) PutAction(_ context.Context, action *models.QueuedAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *action
	cp.Payload = append([]byte(nil), action.Payload...)
	s.actions[action.ID] = cp
	return nil
}

func (s *Storage) GetAction(_ context.Context, id string) (*models.QueuedAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.actions[id]
	if !ok {
		return nil, storage.ErrActionNotFound
	}
	return &a, nil
}

func (s *Storage) ListActions(ctx context.Context) ([]*models.QueuedAction, error) {
	return s.list(func(*models.QueuedAction) bool { return true }), nil
}

func (s *Storage) ListActionsByKind(_ context.Context, kind models.ActionKind) ([]*models.QueuedAction, error) {
	return s.list(func(a *models.QueuedAction) bool { return a.Kind == kind }), nil
}

func (s *Storage) list(keep func(*models.QueuedAction) bool) []*models.QueuedAction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.QueuedAction, 0, len(s.actions))
	for _, a := range s.actions {
		if keep(&a) {
			result = append(result, &a)
		}
	}
	// Тот же порядок, что у индекса actions_by_time в boltdb
	sort.Slice(result, func(i, j int) bool {
		if result[i].EnqueuedAt.Equal(result[j].EnqueuedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].EnqueuedAt.Before(result[j].EnqueuedAt)
	})
	return result
}

func (s *Storage) DeleteAction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.actions[id]; !ok {
		return storage.ErrActionNotFound
	}
	delete(s.actions, id)
	return nil
}

func (s *Storage) CountActions(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.actions), nil
}

func (s *Storage) PutEntry(_ context.Context, ns, key string, entry *storage.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.cache[ns]
	if !ok {
		bucket = make(map[string]storage.CacheEntry)
		s.cache[ns] = bucket
	}
	cp := *entry
	cp.Header = entry.Header.Clone()
	cp.Body = append([]byte(nil), entry.Body...)
	bucket[key] = cp
	return nil
}

func (s *Storage) GetEntry(_ context.Context, ns, key string) (*storage.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.cache[ns][key]
	if !ok {
		return nil, storage.ErrCacheMiss
	}
	e.Header = e.Header.Clone()
	return &e, nil
}

func (s *Storage) ListNamespaces(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.cache))
	for ns := range s.cache {
		names = append(names, ns)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Storage) DeleteNamespace(_ context.Context, ns string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, ns)
	return nil
}
