package storage

import (
	"context"
	"net/http"
	"time"
)

//go:generate moq -out cache_mock.go . CacheStorage

// CacheStorage хранит HTTP ответы в именованных пространствах.
type CacheStorage interface {
	// PutEntry сохраняет ответ под ключом запроса в пространстве ns
	PutEntry(ctx context.Context, ns, key string, entry *CacheEntry) error

	// GetEntry возвращает ответ или ErrCacheMiss
	GetEntry(ctx context.Context, ns, key string) (*CacheEntry, error)

	// ListNamespaces возвращает имена всех существующих пространств
	ListNamespaces(ctx context.Context) ([]string, error)

	// DeleteNamespace удаляет пространство вместе со всеми записями
	DeleteNamespace(ctx context.Context, ns string) error
}

// CacheEntry сохраненный HTTP ответ.
type CacheEntry struct {
	StoredAt time.Time   `json:"stored_at"`
	Header   http.Header `json:"header"`
	Body     []byte      `json:"body"`
	Status   int         `json:"status"`
}
