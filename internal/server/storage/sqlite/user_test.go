package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/itemsync/internal/models"
	"github.com/iudanet/itemsync/internal/server/storage"
)

func TestUserStorage_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	user := &models.User{
		ID:             uuid.New().String(),
		Email:          "demo@example.com",
		Name:           "Demo",
		Role:           "admin",
		OrganizationID: "org-1",
		PasswordHash:   "$2a$10$hash",
		CreatedAt:      created,
	}
	require.NoError(t, s.CreateUser(ctx, user))

	byID, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, byID)

	// email сравнивается без учета регистра
	byEmail, err := s.GetUserByEmail(ctx, "DEMO@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, created, byEmail.CreatedAt)
}

func TestUserStorage_CreateUser_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	user := &models.User{ID: uuid.New().String(), Email: "dup@example.com", PasswordHash: "h", CreatedAt: time.Now()}
	require.NoError(t, s.CreateUser(ctx, user))

	again := &models.User{ID: uuid.New().String(), Email: "Dup@Example.com", PasswordHash: "h", CreatedAt: time.Now()}
	err := s.CreateUser(ctx, again)
	assert.ErrorIs(t, err, storage.ErrUserAlreadyExists)
}

func TestUserStorage_NotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	tests := []struct {
		get  func() (*models.User, error)
		name string
	}{
		{name: "by id", get: func() (*models.User, error) { return s.GetUserByID(ctx, "missing") }},
		{name: "by email", get: func() (*models.User, error) { return s.GetUserByEmail(ctx, "missing@example.com") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := tt.get()
			assert.ErrorIs(t, err, storage.ErrUserNotFound)
			assert.Nil(t, user)
		})
	}
}
