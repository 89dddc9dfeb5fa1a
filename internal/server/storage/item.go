package storage

import (
	"context"

	"github.com/iudanet/itemsync/internal/models"
)

// QuantityChange результат изменения остатка
type QuantityChange struct {
	Item        *models.Item
	OldQuantity int
}

// ItemStorage defines interface for inventory persistence
type ItemStorage interface {
	// ListItems returns all items ordered by name
	ListItems(ctx context.Context) ([]models.Item, error)

	// GetItem retrieves item by ID
	// Returns ErrItemNotFound if item doesn't exist
	GetItem(ctx context.Context, id string) (*models.Item, error)

	// CreateItem inserts a new item
	// Returns ErrDuplicateSKU if SKU is taken
	CreateItem(ctx context.Context, item *models.Item) error

	// UpdateItem overwrites all mutable fields of the item
	// Returns ErrItemNotFound or ErrDuplicateSKU
	UpdateItem(ctx context.Context, item *models.Item) error

	// DeleteItem removes item by ID
	// Returns ErrItemNotFound if item doesn't exist
	DeleteItem(ctx context.Context, id string) error

	// SetQuantity sets item quantity and records the change in the log
	// Returns ErrItemNotFound if item doesn't exist
	SetQuantity(ctx context.Context, id string, quantity int, userID, reason string) (*QuantityChange, error)
}
