package boltdb

import (
	"context"
	"fmt"
	"sync"

	"go.etcd.io/bbolt"

	"github.com/iudanet/itemsync/internal/client/storage"
)

var (
	// BoltDB bucket names
	bucketAuth          = []byte("auth")
	bucketActions       = []byte("actions")
	bucketActionsByTime = []byte("actions_by_time")
	bucketActionsByKind = []byte("actions_by_kind")
	bucketCache         = []byte("cache")
)

// Storage represents BoltDB storage implementation for client
type Storage struct {
	db *bbolt.DB
	mu sync.RWMutex
}

var (
	_ storage.AuthStorage  = (*Storage)(nil)
	_ storage.QueueStorage = (*Storage)(nil)
	_ storage.CacheStorage = (*Storage)(nil)
)

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string) (*Storage, error) {
	// Открываем BoltDB
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	storage := &Storage{db: db}

	// Инициализируем buckets
	if err := storage.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return storage, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// update выполняет fn в read-write транзакции, если база открыта
func (s *Storage) update(fn func(tx *bbolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return storage.ErrStorageClosed
	}
	return s.db.Update(fn)
}

// view выполняет fn в read-only транзакции, если база открыта
func (s *Storage) view(fn func(tx *bbolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return storage.ErrStorageClosed
	}
	return s.db.View(fn)
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{
			bucketAuth,
			bucketActions,
			bucketActionsByTime,
			bucketActionsByKind,
			bucketCache,
		} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}
