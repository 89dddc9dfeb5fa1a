package boltdb

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/itemsync/internal/client/storage"
	"github.com/iudanet/itemsync/internal/models"
)

// timeKey строит ключ индекса: 8 байт UnixNano (big-endian) + ID.
// Big-endian сохраняет порядок при лексикографическом обходе курсором.
func timeKey(a *models.QueuedAction) []byte {
	key := make([]byte, 8, 8+len(a.ID))
	binary.BigEndian.PutUint64(key, uint64(a.EnqueuedAt.UnixNano()))
	return append(key, a.ID...)
}

// kindKey строит ключ индекса по типу: kind + 0x00 + timeKey
func kindKey(a *models.QueuedAction) []byte {
	return append(kindPrefix(a.Kind), timeKey(a)...)
}

func kindPrefix(kind models.ActionKind) []byte {
	return append([]byte(kind), 0)
}

// PutAction сохраняет действие вместе с индексами
func (s *Storage) PutAction(ctx context.Context, action *models.QueuedAction) error {
	data, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("failed to marshal action: %w", err)
	}

	return s.update(func(tx *bbolt.Tx) error {
		actions := tx.Bucket(bucketActions)
		byTime := tx.Bucket(bucketActionsByTime)
		byKind := tx.Bucket(bucketActionsByKind)

		// Если запись уже есть, убираем старые ключи индексов
		if old := actions.Get([]byte(action.ID)); old != nil {
			var prev models.QueuedAction
			if err := json.Unmarshal(old, &prev); err != nil {
				return fmt.Errorf("failed to unmarshal action: %w", err)
			}
			if err := byTime.Delete(timeKey(&prev)); err != nil {
				return fmt.Errorf("failed to delete time index: %w", err)
			}
			if err := byKind.Delete(kindKey(&prev)); err != nil {
				return fmt.Errorf("failed to delete kind index: %w", err)
			}
		}

		if err := actions.Put([]byte(action.ID), data); err != nil {
			return fmt.Errorf("failed to save action: %w", err)
		}
		if err := byTime.Put(timeKey(action), []byte(action.ID)); err != nil {
			return fmt.Errorf("failed to save time index: %w", err)
		}
		if err := byKind.Put(kindKey(action), []byte(action.ID)); err != nil {
			return fmt.Errorf("failed to save kind index: %w", err)
		}
		return nil
	})
}

// GetAction возвращает действие по ID
func (s *Storage) GetAction(ctx context.Context, id string) (*models.QueuedAction, error) {
	var action *models.QueuedAction

	err := s.view(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketActions).Get([]byte(id))
		if data == nil {
			return storage.ErrActionNotFound
		}

		action = &models.QueuedAction{}
		if err := json.Unmarshal(data, action); err != nil {
			return fmt.Errorf("failed to unmarshal action: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return action, nil
}

// ListActions возвращает все действия в порядке EnqueuedAt
func (s *Storage) ListActions(ctx context.Context) ([]*models.QueuedAction, error) {
	var result []*models.QueuedAction

	err := s.view(func(tx *bbolt.Tx) error {
		actions := tx.Bucket(bucketActions)
		c := tx.Bucket(bucketActionsByTime).Cursor()
		for k, id := c.First(); k != nil; k, id = c.Next() {
			action, err := decodeAction(actions, id)
			if err != nil {
				return err
			}
			result = append(result, action)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ListActionsByKind возвращает действия одного типа в порядке EnqueuedAt
func (s *Storage) ListActionsByKind(ctx context.Context, kind models.ActionKind) ([]*models.QueuedAction, error) {
	var result []*models.QueuedAction
	prefix := kindPrefix(kind)

	err := s.view(func(tx *bbolt.Tx) error {
		actions := tx.Bucket(bucketActions)
		c := tx.Bucket(bucketActionsByKind).Cursor()
		for k, id := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, id = c.Next() {
			action, err := decodeAction(actions, id)
			if err != nil {
				return err
			}
			result = append(result, action)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// DeleteAction удаляет действие и его индексы
func (s *Storage) DeleteAction(ctx context.Context, id string) error {
	return s.update(func(tx *bbolt.Tx) error {
		actions := tx.Bucket(bucketActions)
		data := actions.Get([]byte(id))
		if data == nil {
			return storage.ErrActionNotFound
		}

		var action models.QueuedAction
		if err := json.Unmarshal(data, &action); err != nil {
			return fmt.Errorf("failed to unmarshal action: %w", err)
		}

		if err := tx.Bucket(bucketActionsByTime).Delete(timeKey(&action)); err != nil {
			return fmt.Errorf("failed to delete time index: %w", err)
		}
		if err := tx.Bucket(bucketActionsByKind).Delete(kindKey(&action)); err != nil {
			return fmt.Errorf("failed to delete kind index: %w", err)
		}
		if err := actions.Delete([]byte(id)); err != nil {
			return fmt.Errorf("failed to delete action: %w", err)
		}
		return nil
	})
}

// CountActions возвращает количество действий в очереди
func (s *Storage) CountActions(ctx context.Context) (int, error) {
	var count int
	err := s.view(func(tx *bbolt.Tx) error {
		count = tx.Bucket(bucketActions).Stats().KeyN
		return nil
	})
	return count, err
}

func decodeAction(bucket *bbolt.Bucket, id []byte) (*models.QueuedAction, error) {
	data := bucket.Get(id)
	if data == nil {
		return nil, fmt.Errorf("index points to missing action %s: %w", id, storage.ErrActionNotFound)
	}

	action := &models.QueuedAction{}
	if err := json.Unmarshal(data, action); err != nil {
		return nil, fmt.Errorf("failed to unmarshal action: %w", err)
	}
	return action, nil
}
