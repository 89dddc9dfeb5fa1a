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

func TestTokenStorage_SaveRefreshToken(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)

	tests := []struct {
		name  string
		token *models.RefreshToken
	}{
		{
			name: "save new refresh token",
			token: &models.RefreshToken{
				Token:     "token123",
				UserID:    userID,
				ExpiresAt: time.Now().Add(24 * time.Hour),
				CreatedAt: time.Now(),
			},
		},
		{
			name: "replace existing token with same value",
			token: &models.RefreshToken{
				Token:     "token123", // Same token
				UserID:    userID,
				ExpiresAt: time.Now().Add(48 * time.Hour), // Different expiry
				CreatedAt: time.Now(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.SaveRefreshToken(ctx, tt.token)
			require.NoError(t, err)

			retrieved, err := s.GetRefreshToken(ctx, tt.token.Token)
			require.NoError(t, err)
			assert.Equal(t, tt.token.Token, retrieved.Token)
			assert.Equal(t, tt.token.UserID, retrieved.UserID)
			assert.Equal(t, tt.token.ExpiresAt.UnixMilli(), retrieved.ExpiresAt.UnixMilli())
		})
	}
}

func TestTokenStorage_SaveRefreshToken_UnknownUser(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	err := s.SaveRefreshToken(ctx, &models.RefreshToken{
		Token:     "orphan",
		UserID:    "missing",
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
	})
	assert.Error(t, err, "foreign key must reject unknown user")
}

func TestTokenStorage_GetRefreshToken_NotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	token, err := s.GetRefreshToken(ctx, "nope")
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)
	assert.Nil(t, token)
}

func TestTokenStorage_DeleteRefreshToken(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)
	require.NoError(t, s.SaveRefreshToken(ctx, &models.RefreshToken{
		Token: "deleteme", UserID: userID, ExpiresAt: time.Now().Add(time.Hour), CreatedAt: time.Now(),
	}))

	require.NoError(t, s.DeleteRefreshToken(ctx, "deleteme"))
	assert.ErrorIs(t, s.DeleteRefreshToken(ctx, "deleteme"), storage.ErrTokenNotFound)
}

func TestTokenStorage_DeleteUserTokens(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)
	otherID := createTestUser(t, ctx, s)

	for _, tok := range []string{"a", "b", "c"} {
		require.NoError(t, s.SaveRefreshToken(ctx, &models.RefreshToken{
			Token: tok, UserID: userID, ExpiresAt: time.Now().Add(time.Hour), CreatedAt: time.Now(),
		}))
	}
	require.NoError(t, s.SaveRefreshToken(ctx, &models.RefreshToken{
		Token: "other", UserID: otherID, ExpiresAt: time.Now().Add(time.Hour), CreatedAt: time.Now(),
	}))

	n, err := s.DeleteUserTokens(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = s.GetRefreshToken(ctx, "other")
	assert.NoError(t, err)
}

func TestTokenStorage_DeleteExpiredTokens(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)
	now := time.Now()

	tokens := []*models.RefreshToken{
		{Token: "expired1", UserID: userID, ExpiresAt: now.Add(-time.Hour), CreatedAt: now.Add(-2 * time.Hour)},
		{Token: "expired2", UserID: userID, ExpiresAt: now.Add(-time.Minute), CreatedAt: now.Add(-2 * time.Hour)},
		{Token: "valid", UserID: userID, ExpiresAt: now.Add(time.Hour), CreatedAt: now},
	}
	for _, tok := range tokens {
		require.NoError(t, s.SaveRefreshToken(ctx, tok))
	}

	n, err := s.DeleteExpiredTokens(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = s.GetRefreshToken(ctx, "valid")
	assert.NoError(t, err)
	_, err = s.GetRefreshToken(ctx, "expired1")
	assert.ErrorIs(t, err, storage.ErrTokenNotFound)

	n, err = s.DeleteExpiredTokens(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n)
}
