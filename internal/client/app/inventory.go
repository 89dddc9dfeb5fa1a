package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/iudanet/itemsync/internal/client/api"
	"github.com/iudanet/itemsync/internal/client/inventory"
	"github.com/iudanet/itemsync/internal/models"
	pkgapi "github.com/iudanet/itemsync/pkg/api"
)

// ErrPendingItem позиция создана офлайн и еще не подтверждена сервером
var ErrPendingItem = errors.New("item is not synced yet")

// MutationResult результат изменения
type MutationResult struct {
	// Item ответ сервера, nil для DELETE и отложенных изменений
	Item     *models.Item
	ActionID string
	// Queued сеть недоступна, изменение сохранено в очереди
	Queued bool
}

// ItemsView список позиций для отображения
type ItemsView struct {
	CachedAt time.Time
	Items    []inventory.View
	// Stale список взят из кэша, сервер недоступен
	Stale bool
}

// ListItems загружает позиции с сервера. Без сети возвращает
// последний известный список с примененными локальными изменениями.
func (a *App) ListItems(ctx context.Context) (*ItemsView, error) {
	items, res, err := a.API.ListItems(ctx)
	if err != nil {
		if !api.IsOffline(err) {
			return nil, err
		}
		a.Monitor.SetOnline(false)
		return &ItemsView{Items: a.Items.List(), Stale: true}, nil
	}

	a.Items.Replace(items)
	view := &ItemsView{Items: a.Items.List(), Stale: res.Stale, CachedAt: res.CachedAt}
	if !res.Stale {
		a.Monitor.SetOnline(true)
	}
	return view, nil
}

// GetItem возвращает позицию с локальными изменениями
func (a *App) GetItem(ctx context.Context, id string) (*inventory.View, error) {
	if !strings.HasPrefix(id, inventory.PendingPrefix) {
		item, _, err := a.API.GetItem(ctx, id)
		switch {
		case err == nil:
			a.Items.Upsert(*item)
		case api.IsOffline(err):
			a.Monitor.SetOnline(false)
		default:
			return nil, err
		}
	}

	v, ok := a.Items.Get(id)
	if !ok {
		return nil, fmt.Errorf("item %s not found", id)
	}
	return &v, nil
}

// CreateItem создает позицию
func (a *App) CreateItem(ctx context.Context, draft models.ItemDraft) (*MutationResult, error) {
	if err := draft.ValidateCreate(); err != nil {
		return nil, fmt.Errorf("invalid item: %w", err)
	}
	return a.mutate(ctx, models.ActionCreate, http.MethodPost, api.PathInventory, draft)
}

// UpdateItem частично обновляет позицию
func (a *App) UpdateItem(ctx context.Context, id string, draft models.ItemDraft) (*MutationResult, error) {
	if strings.HasPrefix(id, inventory.PendingPrefix) {
		return nil, ErrPendingItem
	}
	defer a.editing(id)()
	return a.mutate(ctx, models.ActionUpdate, http.MethodPatch, api.ItemPath(id), draft)
}

// SetQuantity устанавливает остаток позиции
func (a *App) SetQuantity(ctx context.Context, id string, quantity int, reason string) (*MutationResult, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative")
	}
	if strings.HasPrefix(id, inventory.PendingPrefix) {
		return nil, ErrPendingItem
	}
	defer a.editing(id)()
	req := pkgapi.QuantityRequest{Quantity: quantity, Reason: reason}
	return a.mutate(ctx, models.ActionUpdate, http.MethodPost, api.QuantityPath(id), req)
}

// DeleteItem удаляет позицию. Для позиции, созданной офлайн, из очереди
// убирается само создание.
func (a *App) DeleteItem(ctx context.Context, id string) (*MutationResult, error) {
	if actionID, ok := strings.CutPrefix(id, inventory.PendingPrefix); ok {
		if err := a.Queue.Remove(ctx, actionID); err != nil {
			return nil, err
		}
		a.Items.Discard(&models.QueuedAction{ID: actionID})
		return &MutationResult{ActionID: actionID}, nil
	}
	defer a.editing(id)()
	res, err := a.mutate(ctx, models.ActionDelete, http.MethodDelete, api.ItemPath(id), nil)
	if err != nil {
		return nil, err
	}
	if !res.Queued {
		a.Items.Delete(id)
	}
	return res, nil
}

// mutate выполняет запрос. При сетевой ошибке или таймауте изменение
// сохраняется в очередь, поверх списка появляется неподтвержденная версия.
func (a *App) mutate(ctx context.Context, kind models.ActionKind, method, endpoint string, body any) (*MutationResult, error) {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		payload = data
	}

	var item models.Item
	opts := &api.RequestOptions{}
	if kind != models.ActionDelete {
		opts.Out = &item
		opts.Validate = true
	}

	_, err := a.API.Execute(ctx, method, endpoint, payload, opts)
	if err == nil {
		a.Monitor.SetOnline(true)
		if kind == models.ActionDelete {
			return &MutationResult{}, nil
		}
		a.Items.Upsert(item)
		return &MutationResult{Item: &item}, nil
	}
	if !api.IsOffline(err) {
		return nil, err
	}

	a.Monitor.SetOnline(false)
	action := &models.QueuedAction{Kind: kind, Method: method, Endpoint: endpoint, Payload: payload}
	id, qerr := a.Queue.Enqueue(ctx, action)
	if qerr != nil {
		return nil, errors.Join(err, qerr)
	}
	action.ID = id
	a.Items.AddPending(inventory.PendingFromAction(action))

	a.Store.AddNotification(models.Notification{
		Severity: models.SeverityInfo,
		Title:    "Action Queued",
		Message:  "Your changes will be synced when you're back online",
	})
	return &MutationResult{ActionID: id, Queued: true}, nil
}
