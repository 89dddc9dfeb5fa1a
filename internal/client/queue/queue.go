// Package queue is the persistent action queue: mutations that could not
// reach the server are stored here until a drain replays them.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/itemsync/internal/client/metrics"
	"github.com/iudanet/itemsync/internal/client/storage"
	"github.com/iudanet/itemsync/internal/models"
)

var (
	// ErrNotProtected действие не удалось сохранить, при потере сети оно пропадет
	ErrNotProtected = errors.New("action was not persisted")

	// ErrStopDrain возвращается из функции обхода, чтобы прервать проход
	ErrStopDrain = errors.New("stop drain")
)

// Queue очередь отложенных действий поверх storage.QueueStorage
type Queue struct {
	store  storage.QueueStorage
	logger *slog.Logger
	now    func() time.Time
	last   time.Time
	// mu сериализует запись, чтобы Enqueue во время прохода не потерялся
	mu       sync.Mutex
	draining atomic.Bool
}

// New создает очередь
func New(store storage.QueueStorage, logger *slog.Logger) *Queue {
	return &Queue{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Enqueue сохраняет действие и возвращает его ID.
// ID, EnqueuedAt и RetryCount заполняются очередью.
func (q *Queue) Enqueue(ctx context.Context, action *models.QueuedAction) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	stored := *action
	stored.ID = uuid.NewString()
	stored.RetryCount = 0
	stored.EnqueuedAt = q.now()
	// порядок постановки должен сохраниться даже при одинаковых часах
	if !stored.EnqueuedAt.After(q.last) {
		stored.EnqueuedAt = q.last.Add(time.Nanosecond)
	}

	if err := q.store.PutAction(ctx, &stored); err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotProtected, err)
	}
	q.last = stored.EnqueuedAt

	q.logger.Info("action queued",
		"id", stored.ID, "kind", stored.Kind, "method", stored.Method, "endpoint", stored.Endpoint)
	q.publishSize(ctx)
	return stored.ID, nil
}

// Drain обходит снимок очереди в порядке постановки и вызывает fn для
// каждого действия. Если другой проход еще идет, Drain ничего не делает и
// возвращает false. Действия, добавленные во время прохода, попадут в
// следующий. fn может вернуть ErrStopDrain, чтобы прервать обход.
func (q *Queue) Drain(ctx context.Context, fn func(ctx context.Context, action *models.QueuedAction) error) (bool, error) {
	if !q.draining.CompareAndSwap(false, true) {
		q.logger.Debug("drain already in progress")
		return false, nil
	}
	defer q.draining.Store(false)

	snapshot, err := q.List(ctx)
	if err != nil {
		return true, err
	}

	for _, action := range snapshot {
		if err := fn(ctx, action); err != nil {
			if errors.Is(err, ErrStopDrain) {
				return true, nil
			}
			return true, err
		}
	}
	return true, nil
}

// Draining сообщает, идет ли сейчас проход
func (q *Queue) Draining() bool {
	return q.draining.Load()
}

// List возвращает снимок очереди в порядке постановки
func (q *Queue) List(ctx context.Context) ([]*models.QueuedAction, error) {
	actions, err := q.store.ListActions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list queued actions: %w", err)
	}
	return actions, nil
}

// ListByKind возвращает действия одного типа
func (q *Queue) ListByKind(ctx context.Context, kind models.ActionKind) ([]*models.QueuedAction, error) {
	actions, err := q.store.ListActionsByKind(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list queued actions: %w", err)
	}
	return actions, nil
}

// Remove удаляет действие. Отсутствующее действие не ошибка.
func (q *Queue) Remove(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.store.DeleteAction(ctx, id); err != nil && !errors.Is(err, storage.ErrActionNotFound) {
		return fmt.Errorf("failed to remove action %s: %w", id, err)
	}
	q.publishSize(ctx)
	return nil
}

// IncrementRetry увеличивает RetryCount, единственное изменяемое поле
func (q *Queue) IncrementRetry(ctx context.Context, id string) (*models.QueuedAction, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	action, err := q.store.GetAction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get action %s: %w", id, err)
	}
	action.RetryCount++
	if err := q.store.PutAction(ctx, action); err != nil {
		return nil, fmt.Errorf("failed to update action %s: %w", id, err)
	}
	return action, nil
}

// Size возвращает число действий в очереди
func (q *Queue) Size(ctx context.Context) (int, error) {
	n, err := q.store.CountActions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count queued actions: %w", err)
	}
	return n, nil
}

func (q *Queue) publishSize(ctx context.Context) {
	if n, err := q.store.CountActions(ctx); err == nil {
		metrics.SetQueuePending(n)
	}
}
