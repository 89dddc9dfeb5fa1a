package app

import (
	"context"
	"errors"
	"fmt"
)

// ErrRealtimeUnavailable сигнал не отправлен: realtime канал не подключен
var ErrRealtimeUnavailable = errors.New("realtime connection is not established")

// BulkQuantity тип массовой операции, который видят другие клиенты
const BulkQuantity = "quantity"

// ItemLock возвращает пользователя, который сейчас редактирует позицию.
// Блокировка текущего пользователя не учитывается.
func (a *App) ItemLock(ctx context.Context, id string) (string, bool) {
	holder, ok := a.Store.LockHolder(id)
	if !ok {
		return "", false
	}
	if authData, err := a.Session.Current(ctx); err == nil && authData.UserID == holder {
		return "", false
	}
	return holder, true
}

// editing сообщает другим клиентам, что позиция редактируется.
// Возвращенная функция снимает сигнал. Без соединения ничего не отправляется.
func (a *App) editing(id string) func() {
	if !a.Realtime.Editing(id) {
		return func() {}
	}
	return func() { a.Realtime.EditingDone(id) }
}

// BulkSetQuantity устанавливает один остаток для нескольких позиций.
// Перед началом другим клиентам уходит inventory:bulk:start.
// При ошибке возвращаются результаты уже выполненных изменений.
func (a *App) BulkSetQuantity(ctx context.Context, itemIDs []string, quantity int, reason string) ([]*MutationResult, error) {
	if len(itemIDs) == 0 {
		return nil, fmt.Errorf("no items given")
	}
	if quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative")
	}

	a.Realtime.BulkStart(BulkQuantity, itemIDs)

	results := make([]*MutationResult, 0, len(itemIDs))
	for _, id := range itemIDs {
		res, err := a.SetQuantity(ctx, id, quantity, reason)
		if err != nil {
			return results, fmt.Errorf("item %s: %w", id, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// AcknowledgeLowStock подтверждает предупреждение о низком остатке
func (a *App) AcknowledgeLowStock(id string) error {
	if !a.Realtime.AcknowledgeLowStock(id) {
		return ErrRealtimeUnavailable
	}
	return nil
}

// MarkNotificationRead отмечает уведомление прочитанным
func (a *App) MarkNotificationRead(id string) bool {
	return a.Store.MarkRead(id)
}

// MarkAllNotificationsRead отмечает все уведомления прочитанными
func (a *App) MarkAllNotificationsRead() {
	a.Store.MarkAllRead()
}

// DismissNotification удаляет уведомление, в том числе постоянное
func (a *App) DismissNotification(id string) bool {
	return a.Store.Remove(id)
}
