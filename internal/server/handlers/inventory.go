package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/iudanet/itemsync/internal/models"
	"github.com/iudanet/itemsync/internal/server/storage"
	"github.com/iudanet/itemsync/pkg/api"
)

// Publisher рассылает события подписанным realtime клиентам. Реализуется *realtime.Hub.
type Publisher interface {
	Publish(tag string, payload any)
	ReleaseItem(itemID string)
}

// InventoryHandler обрабатывает запросы к /api/inventory
type InventoryHandler struct {
	logger    *slog.Logger
	items     storage.ItemStorage
	publisher Publisher
	now       func() time.Time
}

// NewInventoryHandler создает новый handler склада
func NewInventoryHandler(logger *slog.Logger, items storage.ItemStorage, publisher Publisher) *InventoryHandler {
	return &InventoryHandler{
		logger:    logger,
		items:     items,
		publisher: publisher,
		now:       time.Now,
	}
}

// List обрабатывает GET /api/inventory
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.ListItems(r.Context())
	if err != nil {
		h.storageError(w, r, err)
		return
	}
	h.sendJSON(w, items, http.StatusOK)
}

// Get обрабатывает GET /api/inventory/{id}
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.items.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.storageError(w, r, err)
		return
	}
	h.sendJSON(w, item, http.StatusOK)
}

// Create обрабатывает POST /api/inventory
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var draft models.ItemDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := draft.ValidateCreate(); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := h.now().UTC()
	item := draft.Apply(models.Item{
		ID:        uuid.NewString(),
		Unit:      "pcs",
		CreatedAt: now,
		UpdatedAt: now,
	})
	item.SKU = strings.TrimSpace(item.SKU)

	if err := h.items.CreateItem(ctx, &item); err != nil {
		h.storageError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "item created",
		slog.String("item_id", item.ID),
		slog.String("sku", item.SKU),
		slog.String("user_id", userIDOf(r)))

	h.publisher.Publish(api.TagItemCreated, item)
	h.sendJSON(w, item, http.StatusCreated)
}

// Update обрабатывает PATCH /api/inventory/{id}
// Применяются только переданные поля, конфликт правок решается last-write-wins
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var draft models.ItemDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	current, err := h.items.GetItem(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.storageError(w, r, err)
		return
	}

	item := draft.Apply(*current)
	item.UpdatedAt = h.now().UTC()
	if err := item.Validate(); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.items.UpdateItem(ctx, &item); err != nil {
		h.storageError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "item updated",
		slog.String("item_id", item.ID),
		slog.String("user_id", userIDOf(r)))

	h.publisher.Publish(api.TagItemUpdated, item)
	if current.Quantity != item.Quantity {
		h.publishQuantity(r, &item, current.Quantity)
	}
	h.sendJSON(w, item, http.StatusOK)
}

// Delete обрабатывает DELETE /api/inventory/{id}
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := h.items.DeleteItem(ctx, id); err != nil {
		h.storageError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "item deleted",
		slog.String("item_id", id),
		slog.String("user_id", userIDOf(r)))

	h.publisher.ReleaseItem(id)
	h.publisher.Publish(api.TagItemDeleted, api.ItemRef{ItemID: id})
	h.sendJSON(w, api.DeleteResponse{ID: id, Deleted: true}, http.StatusOK)
}

// SetQuantity обрабатывает POST /api/inventory/{id}/quantity
func (h *InventoryHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.QuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := validation.Validate(req.Quantity, validation.Min(0)); err != nil {
		h.sendError(w, "quantity: "+err.Error(), http.StatusBadRequest)
		return
	}

	change, err := h.items.SetQuantity(ctx, chi.URLParam(r, "id"), req.Quantity, userIDOf(r), req.Reason)
	if err != nil {
		h.storageError(w, r, err)
		return
	}

	h.logger.InfoContext(ctx, "quantity changed",
		slog.String("item_id", change.Item.ID),
		slog.Int("old", change.OldQuantity),
		slog.Int("new", change.Item.Quantity),
		slog.String("reason", req.Reason))

	h.publishQuantity(r, change.Item, change.OldQuantity)
	h.sendJSON(w, change.Item, http.StatusOK)
}

// publishQuantity рассылает quantity:changed и алерты при переходе
// в состояние "мало на складе" или "нет на складе"
func (h *InventoryHandler) publishQuantity(r *http.Request, item *models.Item, oldQuantity int) {
	changedBy := userIDOf(r)
	if id, ok := GetIdentity(r.Context()); ok && id.Email != "" {
		changedBy = id.Email
	}

	h.publisher.Publish(api.TagQuantityChanged, api.QuantityChangedPayload{
		ItemID:      item.ID,
		Name:        item.Name,
		ChangedBy:   changedBy,
		OldQuantity: oldQuantity,
		NewQuantity: item.Quantity,
	})

	if oldQuantity == item.Quantity {
		return
	}
	alert := api.StockAlertPayload{
		ItemID:      item.ID,
		Name:        item.Name,
		SKU:         item.SKU,
		Quantity:    item.Quantity,
		MinQuantity: item.MinQuantity,
	}
	before := models.Item{Quantity: oldQuantity, MinQuantity: item.MinQuantity}
	switch {
	case item.Quantity == 0:
		h.publisher.Publish(api.TagOutOfStockAlert, alert)
	case item.IsLowStock() && !before.IsLowStock():
		h.publisher.Publish(api.TagLowStockAlert, alert)
	}
}

// storageError переводит ошибки хранилища в HTTP статусы
func (h *InventoryHandler) storageError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrItemNotFound):
		h.sendError(w, "item not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrDuplicateSKU):
		h.sendError(w, "sku already exists", http.StatusConflict)
	default:
		h.logger.ErrorContext(r.Context(), "inventory storage failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
	}
}

func (h *InventoryHandler) sendJSON(w http.ResponseWriter, data any, statusCode int) {
	WriteJSON(w, h.logger, data, statusCode)
}

func (h *InventoryHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	WriteError(w, h.logger, message, statusCode)
}

func userIDOf(r *http.Request) string {
	id, _ := GetUserID(r.Context())
	return id
}
