package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/itemsync/internal/client/storage"
	"github.com/iudanet/itemsync/internal/models"
)

func TestStorage_ActionsOrderAndCopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Now()

	require.NoError(t, s.PutAction(ctx, &models.QueuedAction{ID: "2", Kind: models.ActionUpdate, EnqueuedAt: base.Add(time.Second)}))
	require.NoError(t, s.PutAction(ctx, &models.QueuedAction{ID: "1", Kind: models.ActionCreate, EnqueuedAt: base}))

	list, err := s.ListActions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "1", list[0].ID)
	assert.Equal(t, "2", list[1].ID)

	// Изменение результата не меняет хранилище
	list[0].RetryCount = 9
	got, err := s.GetAction(ctx, "1")
	require.NoError(t, err)
	assert.Zero(t, got.RetryCount)

	creates, err := s.ListActionsByKind(ctx, models.ActionCreate)
	require.NoError(t, err)
	require.Len(t, creates, 1)

	require.NoError(t, s.DeleteAction(ctx, "1"))
	assert.ErrorIs(t, s.DeleteAction(ctx, "1"), storage.ErrActionNotFound)
}

func TestStorage_Cache(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.PutEntry(ctx, "a", "k", &storage.CacheEntry{Status: 200, Body: []byte("x")}))
	got, err := s.GetEntry(ctx, "a", "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got.Body)

	require.NoError(t, s.DeleteNamespace(ctx, "a"))
	_, err = s.GetEntry(ctx, "a", "k")
	assert.ErrorIs(t, err, storage.ErrCacheMiss)
}

func TestStorage_Auth(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.GetAuth(ctx)
	assert.ErrorIs(t, err, storage.ErrAuthNotFound)

	require.NoError(t, s.SaveAuth(ctx, &storage.AuthData{UserID: "u"}))
	got, err := s.GetAuth(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u", got.UserID)

	require.NoError(t, s.DeleteAuth(ctx))
	_, err = s.GetAuth(ctx)
	assert.ErrorIs(t, err, storage.ErrAuthNotFound)
}
