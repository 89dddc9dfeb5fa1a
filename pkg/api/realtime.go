package api

import "encoding/json"

// Envelope кадр realtime канала: тег и произвольный JSON payload.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Теги сообщений сервер → клиент.
const (
	TagItemCreated     = "inventory:item:created"
	TagItemUpdated     = "inventory:item:updated"
	TagItemDeleted     = "inventory:item:deleted"
	TagQuantityChanged = "inventory:quantity:changed"
	TagLowStockAlert   = "inventory:lowstock:alert"
	TagOutOfStockAlert = "inventory:outofstock:alert"
	TagItemLocked      = "inventory:item:locked"
	TagItemUnlocked    = "inventory:item:unlocked"
	TagUserOnline      = "user:online"
	TagUserOffline     = "user:offline"
	TagNotificationNew = "notification:new"
	TagSystemAlert     = "notification:system:alert"
)

// Теги сообщений клиент → сервер.
const (
	TagSubscribe           = "inventory:subscribe"
	TagEditing             = "inventory:item:editing"
	TagEditingDone         = "inventory:item:editing:done"
	TagBulkStart           = "inventory:bulk:start"
	TagLowStockAcknowledge = "inventory:lowstock:acknowledge"
)

// ItemRef payload с идентификатором позиции.
type ItemRef struct {
	ItemID string `json:"itemId"`
}

// LockPayload payload inventory:item:locked и inventory:item:unlocked.
// Для unlocked поле LockedBy пустое.
type LockPayload struct {
	ItemID   string `json:"itemId"`
	LockedBy string `json:"lockedBy,omitempty"`
}

// QuantityChangedPayload payload inventory:quantity:changed.
type QuantityChangedPayload struct {
	ItemID      string `json:"itemId"`
	Name        string `json:"name,omitempty"`
	ChangedBy   string `json:"changedBy,omitempty"`
	OldQuantity int    `json:"oldQuantity"`
	NewQuantity int    `json:"newQuantity"`
}

// StockAlertPayload payload для low-stock и out-of-stock событий.
type StockAlertPayload struct {
	ItemID      string `json:"itemId"`
	Name        string `json:"name"`
	SKU         string `json:"sku,omitempty"`
	Quantity    int    `json:"quantity"`
	MinQuantity int    `json:"minQuantity"`
}

// PresencePayload payload user:online и user:offline.
type PresencePayload struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
}

// NotificationPayload payload notification:new и notification:system:alert.
type NotificationPayload struct {
	ID         string `json:"id,omitempty"`
	Type       string `json:"type,omitempty"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	Persistent bool   `json:"persistent,omitempty"`
}

// EditingPayload payload inventory:item:editing и inventory:item:editing:done.
// Сервер пересылает его остальным клиентам с заполненным UserID.
type EditingPayload struct {
	ItemID string `json:"itemId"`
	UserID string `json:"userId,omitempty"`
}

// BulkStartPayload payload inventory:bulk:start.
type BulkStartPayload struct {
	Type    string   `json:"type"`
	ItemIDs []string `json:"itemIds"`
}
