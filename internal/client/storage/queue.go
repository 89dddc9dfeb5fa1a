package storage

import (
	"context"

	"github.com/iudanet/itemsync/internal/models"
)

//go:generate moq -out queue_mock.go . QueueStorage

// QueueStorage упорядоченное key-value хранилище отложенных действий.
// Порядок выдачи определяется вторичным индексом по EnqueuedAt.
type QueueStorage interface {
	// PutAction сохраняет действие. Повторный Put с тем же ID заменяет запись
	// и переносит индексы.
	PutAction(ctx context.Context, action *models.QueuedAction) error

	// GetAction возвращает действие по ID или ErrActionNotFound
	GetAction(ctx context.Context, id string) (*models.QueuedAction, error)

	// ListActions возвращает все действия в порядке постановки в очередь
	ListActions(ctx context.Context) ([]*models.QueuedAction, error)

	// ListActionsByKind возвращает действия одного типа в порядке постановки
	ListActionsByKind(ctx context.Context, kind models.ActionKind) ([]*models.QueuedAction, error)

	// DeleteAction удаляет действие или возвращает ErrActionNotFound
	DeleteAction(ctx context.Context, id string) error

	// CountActions возвращает число действий в очереди
	CountActions(ctx context.Context) (int, error)
}
