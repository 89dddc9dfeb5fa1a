package realtime

import (
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"

	"github.com/iudanet/itemsync/internal/client/inventory"
	"github.com/iudanet/itemsync/internal/client/store"
	"github.com/iudanet/itemsync/internal/models"
	"github.com/iudanet/itemsync/pkg/api"
)

// Events применяет серверные события к общему состоянию клиента
type Events struct {
	store  *store.Store
	items  *inventory.Cache
	logger *slog.Logger
}

// NewEvents создает обработчики. items может быть nil.
func NewEvents(st *store.Store, items *inventory.Cache, logger *slog.Logger) *Events {
	return &Events{store: st, items: items, logger: logger}
}

// Table возвращает таблицу обработчиков по тегам
func (e *Events) Table() map[string]Handler {
	return map[string]Handler{
		api.TagItemCreated:     e.itemCreated,
		api.TagItemUpdated:     e.itemUpdated,
		api.TagItemDeleted:     e.itemDeleted,
		api.TagQuantityChanged: e.quantityChanged,
		api.TagLowStockAlert:   e.lowStock,
		api.TagOutOfStockAlert: e.outOfStock,
		api.TagItemLocked:      e.itemLocked,
		api.TagItemUnlocked:    e.itemUnlocked,
		api.TagUserOnline:      e.userOnline,
		api.TagUserOffline:     e.userOffline,
		api.TagNotificationNew: e.notification,
		api.TagSystemAlert:     e.systemAlert,
	}
}

func decode[T any](payload []byte) (T, error) {
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return v, fmt.Errorf("failed to decode payload: %w", err)
	}
	return v, nil
}

func (e *Events) itemCreated(payload []byte) error {
	item, err := decode[models.Item](payload)
	if err != nil {
		return err
	}
	if err := item.Validate(); err != nil {
		return fmt.Errorf("invalid item: %w", err)
	}
	if e.items != nil {
		e.items.Upsert(item)
	}
	e.store.AddNotification(models.Notification{
		Severity: models.SeveritySuccess,
		Title:    "Item Created",
		Message:  fmt.Sprintf("%s was added to inventory", item.Name),
	})
	return nil
}

func (e *Events) itemUpdated(payload []byte) error {
	item, err := decode[models.Item](payload)
	if err != nil {
		return err
	}
	if err := item.Validate(); err != nil {
		return fmt.Errorf("invalid item: %w", err)
	}
	if e.items != nil {
		e.items.Upsert(item)
	}
	return nil
}

func (e *Events) itemDeleted(payload []byte) error {
	ref, err := decode[api.ItemRef](payload)
	if err != nil {
		return err
	}
	if ref.ItemID == "" {
		return fmt.Errorf("item id is required")
	}
	if e.items != nil {
		e.items.Delete(ref.ItemID)
	}
	e.store.SetLock(ref.ItemID, "")
	e.store.AddNotification(models.Notification{
		Severity: models.SeverityWarning,
		Title:    "Item Deleted",
		Message:  fmt.Sprintf("Item %s was removed from inventory", ref.ItemID),
	})
	return nil
}

func (e *Events) quantityChanged(payload []byte) error {
	p, err := decode[api.QuantityChangedPayload](payload)
	if err != nil {
		return err
	}
	if p.ItemID == "" {
		return fmt.Errorf("item id is required")
	}

	name := p.Name
	if e.items != nil {
		if v, ok := e.items.Authoritative(p.ItemID); ok {
			v.Quantity = p.NewQuantity
			e.items.Upsert(v)
			if name == "" {
				name = v.Name
			}
		}
	}
	if name == "" {
		name = p.ItemID
	}

	e.store.AddNotification(models.Notification{
		Severity: models.SeverityInfo,
		Title:    "Quantity Updated",
		Message:  fmt.Sprintf("%s quantity changed from %d to %d", name, p.OldQuantity, p.NewQuantity),
	})
	return nil
}

func (e *Events) lowStock(payload []byte) error {
	p, err := decode[api.StockAlertPayload](payload)
	if err != nil {
		return err
	}
	data := map[string]any{"itemId": p.ItemID}
	e.store.AddNotification(models.Notification{
		Severity: models.SeverityWarning,
		Title:    "Low Stock Alert",
		Message:  fmt.Sprintf("%s is running low (%d left, minimum %d)", p.Name, p.Quantity, p.MinQuantity),
		Actions: []models.NotificationAction{
			{Label: "Reorder", Action: "reorder", Data: data},
			{Label: "Acknowledge", Action: "acknowledge", Data: data},
		},
	})
	return nil
}

func (e *Events) outOfStock(payload []byte) error {
	p, err := decode[api.StockAlertPayload](payload)
	if err != nil {
		return err
	}
	e.store.AddNotification(models.Notification{
		Severity:   models.SeverityError,
		Title:      "Out of Stock",
		Message:    fmt.Sprintf("%s is out of stock", p.Name),
		Persistent: true,
		Actions: []models.NotificationAction{
			{Label: "Reorder Now", Action: "reorder", Data: map[string]any{"itemId": p.ItemID}},
		},
	})
	return nil
}

func (e *Events) itemLocked(payload []byte) error {
	p, err := decode[api.LockPayload](payload)
	if err != nil {
		return err
	}
	if p.ItemID == "" || p.LockedBy == "" {
		return fmt.Errorf("item id and holder are required")
	}
	e.store.SetLock(p.ItemID, p.LockedBy)
	e.store.SetActivity(p.LockedBy, "editing", p.ItemID)
	return nil
}

func (e *Events) itemUnlocked(payload []byte) error {
	p, err := decode[api.LockPayload](payload)
	if err != nil {
		return err
	}
	if p.ItemID == "" {
		return fmt.Errorf("item id is required")
	}
	e.store.SetLock(p.ItemID, "")
	if p.LockedBy != "" {
		e.store.SetActivity(p.LockedBy, "idle", p.ItemID)
	}
	return nil
}

func (e *Events) userOnline(payload []byte) error {
	p, err := decode[api.PresencePayload](payload)
	if err != nil {
		return err
	}
	if p.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	e.store.SetOnline(p.UserID)
	return nil
}

func (e *Events) userOffline(payload []byte) error {
	p, err := decode[api.PresencePayload](payload)
	if err != nil {
		return err
	}
	if p.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	e.store.SetOffline(p.UserID)
	return nil
}

func (e *Events) notification(payload []byte) error {
	p, err := decode[api.NotificationPayload](payload)
	if err != nil {
		return err
	}
	severity := models.Severity(p.Type)
	if !severity.Valid() {
		severity = models.SeverityInfo
	}
	e.store.AddNotification(models.Notification{
		ID:         p.ID,
		Severity:   severity,
		Title:      p.Title,
		Message:    p.Message,
		Persistent: p.Persistent,
	})
	return nil
}

func (e *Events) systemAlert(payload []byte) error {
	p, err := decode[api.NotificationPayload](payload)
	if err != nil {
		return err
	}
	e.logger.Warn("system alert", "title", p.Title, "message", p.Message)
	e.store.AddNotification(models.Notification{
		ID:         p.ID,
		Severity:   models.SeverityAlert,
		Title:      p.Title,
		Message:    p.Message,
		Persistent: true,
	})
	return nil
}
