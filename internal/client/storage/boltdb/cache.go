package boltdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/itemsync/internal/client/storage"
)

// PutEntry сохраняет ответ во вложенном bucket пространства ns
func (s *Storage) PutEntry(ctx context.Context, ns, key string, entry *storage.CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	return s.update(func(tx *bbolt.Tx) error {
		bucket, err := tx.Bucket(bucketCache).CreateBucketIfNotExists([]byte(ns))
		if err != nil {
			return fmt.Errorf("failed to create namespace %s: %w", ns, err)
		}
		if err := bucket.Put([]byte(key), data); err != nil {
			return fmt.Errorf("failed to save cache entry: %w", err)
		}
		return nil
	})
}

// GetEntry возвращает ответ из пространства ns
func (s *Storage) GetEntry(ctx context.Context, ns, key string) (*storage.CacheEntry, error) {
	var entry *storage.CacheEntry

	err := s.view(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCache).Bucket([]byte(ns))
		if bucket == nil {
			return storage.ErrCacheMiss
		}
		data := bucket.Get([]byte(key))
		if data == nil {
			return storage.ErrCacheMiss
		}

		entry = &storage.CacheEntry{}
		if err := json.Unmarshal(data, entry); err != nil {
			return fmt.Errorf("failed to unmarshal cache entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// ListNamespaces возвращает имена вложенных bucket'ов кэша
func (s *Storage) ListNamespaces(ctx context.Context) ([]string, error) {
	var names []string
	err := s.view(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCache).ForEachBucket(func(k []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// DeleteNamespace удаляет пространство целиком
func (s *Storage) DeleteNamespace(ctx context.Context, ns string) error {
	return s.update(func(tx *bbolt.Tx) error {
		err := tx.Bucket(bucketCache).DeleteBucket([]byte(ns))
		if err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return fmt.Errorf("failed to delete namespace %s: %w", ns, err)
		}
		return nil
	})
}
