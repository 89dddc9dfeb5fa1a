package auth

import (
	"context"
	"errors"

	"github.com/iudanet/itemsync/internal/client/api"
	"github.com/iudanet/itemsync/internal/client/storage"
	"github.com/iudanet/itemsync/internal/models"
)

//go:generate moq -out service_mock.go . Service

// ErrNotAuthenticated возвращается, когда сохраненной сессии нет
var ErrNotAuthenticated = errors.New("not authenticated")

// Service defines the main interface for authentication operations.
// Он же владелец сессии для api.Client: отдает токен, обновляет его
// и очищает сессию при необратимой ошибке авторизации.
type Service interface {
	api.TokenSource

	// Login выполняет аутентификацию и сохраняет токены
	Login(ctx context.Context, email, password string) (*models.User, error)

	// Logout удаляет локальную сессию и уведомляет сервер, если получится
	Logout(ctx context.Context) error

	// Verify проверяет сессию запросом к серверу
	Verify(ctx context.Context) (*models.User, error)

	// Current возвращает сохраненную сессию или ErrNotAuthenticated
	Current(ctx context.Context) (*storage.AuthData, error)

	// OnSessionLost регистрирует обработчик потери сессии
	OnSessionLost(fn func(err error))
}
