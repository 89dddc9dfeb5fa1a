package boltdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/itemsync/internal/client/storage"
	"github.com/iudanet/itemsync/internal/models"
)

func newAction(id string, kind models.ActionKind, at time.Time) *models.QueuedAction {
	return &models.QueuedAction{
		ID:         id,
		Kind:       kind,
		Endpoint:   "/inventory/" + id,
		Method:     "PATCH",
		Payload:    []byte(`{"quantity":145}`),
		EnqueuedAt: at,
	}
}

func TestQueue_ListOrderedByEnqueueTime(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	// Вставляем не по порядку
	require.NoError(t, store.PutAction(ctx, newAction("c", models.ActionUpdate, base.Add(2*time.Second))))
	require.NoError(t, store.PutAction(ctx, newAction("a", models.ActionDelete, base)))
	require.NoError(t, store.PutAction(ctx, newAction("b", models.ActionUpdate, base.Add(time.Second))))

	list, err := store.ListActions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
	assert.Equal(t, "c", list[2].ID)

	count, err := store.CountActions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestQueue_ListByKind(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)
	base := time.Now()

	require.NoError(t, store.PutAction(ctx, newAction("u1", models.ActionUpdate, base)))
	require.NoError(t, store.PutAction(ctx, newAction("d1", models.ActionDelete, base.Add(time.Millisecond))))
	require.NoError(t, store.PutAction(ctx, newAction("u2", models.ActionUpdate, base.Add(2*time.Millisecond))))

	updates, err := store.ListActionsByKind(ctx, models.ActionUpdate)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, "u1", updates[0].ID)
	assert.Equal(t, "u2", updates[1].ID)

	creates, err := store.ListActionsByKind(ctx, models.ActionCreate)
	require.NoError(t, err)
	assert.Empty(t, creates)
}

func TestQueue_PutReplacesWithoutDuplicatingIndex(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	action := newAction("x", models.ActionUpdate, time.Now())
	require.NoError(t, store.PutAction(ctx, action))

	action.RetryCount = 2
	require.NoError(t, store.PutAction(ctx, action))

	list, err := store.ListActions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].RetryCount)

	got, err := store.GetAction(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, 2, got.RetryCount)
	assert.JSONEq(t, `{"quantity":145}`, string(got.Payload))
}

func TestQueue_Delete(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	require.NoError(t, store.PutAction(ctx, newAction("x", models.ActionDelete, time.Now())))
	require.NoError(t, store.DeleteAction(ctx, "x"))

	_, err := store.GetAction(ctx, "x")
	assert.ErrorIs(t, err, storage.ErrActionNotFound)

	err = store.DeleteAction(ctx, "x")
	assert.ErrorIs(t, err, storage.ErrActionNotFound)

	byKind, err := store.ListActionsByKind(ctx, models.ActionDelete)
	require.NoError(t, err)
	assert.Empty(t, byKind)

	count, err := store.CountActions(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
