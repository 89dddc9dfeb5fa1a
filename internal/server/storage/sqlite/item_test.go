package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/itemsync/internal/models"
	"github.com/iudanet/itemsync/internal/server/storage"
)

func testItem(id, name, sku string, qty int) *models.Item {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	return &models.Item{
		ID:          id,
		Name:        name,
		SKU:         sku,
		Unit:        "pcs",
		Category:    "hardware",
		Location:    "A1",
		Quantity:    qty,
		MinQuantity: 5,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestItemStorage_CRUD(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	bolt := testItem("1", "Bolt", "B-1", 10)
	nut := testItem("2", "Anchor", "A-1", 3)
	require.NoError(t, s.CreateItem(ctx, bolt))
	require.NoError(t, s.CreateItem(ctx, nut))

	got, err := s.GetItem(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, bolt, got)

	list, err := s.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Anchor", list[0].Name, "sorted by name")

	bolt.Name = "Hex bolt"
	bolt.UpdatedAt = bolt.UpdatedAt.Add(time.Minute)
	require.NoError(t, s.UpdateItem(ctx, bolt))
	got, err = s.GetItem(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Hex bolt", got.Name)
	assert.Equal(t, bolt.UpdatedAt, got.UpdatedAt)

	require.NoError(t, s.DeleteItem(ctx, "1"))
	_, err = s.GetItem(ctx, "1")
	assert.ErrorIs(t, err, storage.ErrItemNotFound)
	assert.ErrorIs(t, s.DeleteItem(ctx, "1"), storage.ErrItemNotFound)
}

func TestItemStorage_EmptyList(t *testing.T) {
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	list, err := s.ListItems(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestItemStorage_DuplicateSKU(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	require.NoError(t, s.CreateItem(ctx, testItem("1", "Bolt", "B-1", 1)))
	assert.ErrorIs(t, s.CreateItem(ctx, testItem("2", "Other", "B-1", 1)), storage.ErrDuplicateSKU)

	require.NoError(t, s.CreateItem(ctx, testItem("3", "Nut", "N-1", 1)))
	assert.ErrorIs(t, s.UpdateItem(ctx, testItem("3", "Nut", "B-1", 1)), storage.ErrDuplicateSKU)
}

func TestItemStorage_UpdateMissing(t *testing.T) {
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	err := s.UpdateItem(context.Background(), testItem("missing", "X", "X-1", 1))
	assert.ErrorIs(t, err, storage.ErrItemNotFound)
}

func TestItemStorage_SetQuantity(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	fixed := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	require.NoError(t, s.CreateItem(ctx, testItem("1", "Bolt", "B-1", 150)))

	change, err := s.SetQuantity(ctx, "1", 145, "user-1", "recount")
	require.NoError(t, err)
	assert.Equal(t, 150, change.OldQuantity)
	assert.Equal(t, 145, change.Item.Quantity)
	assert.Equal(t, fixed, change.Item.UpdatedAt)

	got, err := s.GetItem(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 145, got.Quantity)

	n, err := s.QuantityLogLen(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.SetQuantity(ctx, "missing", 1, "", "")
	assert.ErrorIs(t, err, storage.ErrItemNotFound)
}

func TestItemStorage_SetQuantity_RejectsNegative(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	require.NoError(t, s.CreateItem(ctx, testItem("1", "Bolt", "B-1", 5)))
	_, err := s.SetQuantity(ctx, "1", -1, "", "")
	require.Error(t, err)

	got, err := s.GetItem(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)
}
