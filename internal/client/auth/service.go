package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/itemsync/internal/client/api"
	"github.com/iudanet/itemsync/internal/client/storage"
	"github.com/iudanet/itemsync/internal/models"
	"github.com/iudanet/itemsync/internal/validation"
	pkgapi "github.com/iudanet/itemsync/pkg/api"
)

// refreshSkew access token обновляется заранее, если до истечения меньше
const refreshSkew = 30 * time.Second

// Session предоставляет функции авторизации и хранит текущую сессию
type Session struct {
	apiClient *api.Client
	store     storage.AuthStorage
	logger    *slog.Logger
	now       func() time.Time
	listeners []func(error)
	mu        sync.Mutex
	// lost сессия уже очищена после ошибки авторизации
	lost bool
}

var _ Service = (*Session)(nil)

// NewSession создает новый сервис авторизации и подключает его к клиенту
func NewSession(apiClient *api.Client, store storage.AuthStorage, logger *slog.Logger) *Session {
	s := &Session{
		apiClient: apiClient,
		store:     store,
		logger:    logger,
		now:       time.Now,
	}
	apiClient.SetTokenSource(s)
	return s
}

// Login выполняет аутентификацию пользователя
func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {
	// Валидация входных данных
	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	resp, err := s.apiClient.Login(ctx, pkgapi.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if resp.User == nil {
		return nil, fmt.Errorf("login failed: response has no user")
	}

	auth := &storage.AuthData{
		UserID:       resp.User.ID,
		Email:        resp.User.Email,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    s.expiresAt(resp.AccessToken, resp.ExpiresIn),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SaveAuth(ctx, auth); err != nil {
		return nil, fmt.Errorf("failed to save auth data: %w", err)
	}
	s.lost = false

	s.logger.Info("logged in", "user_id", auth.UserID, "email", auth.Email)
	return resp.User, nil
}

// Logout выполняет выход из системы.
// Локальные данные удаляются всегда, ошибка сервера только логируется.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	auth, err := s.store.GetAuth(ctx)
	if errors.Is(err, storage.ErrAuthNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get auth data: %w", err)
	}

	if err := s.apiClient.Logout(ctx, auth.AccessToken, auth.RefreshToken); err != nil {
		s.logger.Warn("server logout failed, clearing local session anyway", "error", err)
	}

	if err := s.store.DeleteAuth(ctx); err != nil {
		return fmt.Errorf("failed to delete auth data: %w", err)
	}
	s.logger.Info("logged out", "user_id", auth.UserID)
	return nil
}

// Verify проверяет токен на сервере. 401 приводит к refresh и повтору,
// неудачный refresh очищает сессию.
func (s *Session) Verify(ctx context.Context) (*models.User, error) {
	if _, err := s.Current(ctx); err != nil {
		return nil, err
	}
	user, err := s.apiClient.Verify(ctx)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Current возвращает сохраненную сессию
func (s *Session) Current(ctx context.Context) (*storage.AuthData, error) {
	auth, err := s.store.GetAuth(ctx)
	if errors.Is(err, storage.ErrAuthNotFound) {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get auth data: %w", err)
	}
	return auth, nil
}

// AccessToken возвращает текущий access token или пустую строку без сессии
func (s *Session) AccessToken(ctx context.Context) (string, error) {
	auth, err := s.store.GetAuth(ctx)
	if errors.Is(err, storage.ErrAuthNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get auth data: %w", err)
	}
	return auth.AccessToken, nil
}

// FreshAccessToken возвращает access token, заранее обновляя его, если срок
// истек или истекает в ближайшие refreshSkew. Без сессии возвращает "".
func (s *Session) FreshAccessToken(ctx context.Context) (string, error) {
	auth, err := s.store.GetAuth(ctx)
	if errors.Is(err, storage.ErrAuthNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get auth data: %w", err)
	}
	if !auth.Expired(s.now().Add(refreshSkew)) {
		return auth.AccessToken, nil
	}

	s.logger.Debug("access token expired, refreshing", "expires_at", auth.ExpiresAt)
	return s.apiClient.RefreshToken(ctx, auth.AccessToken)
}

// RefreshAccessToken обновляет токен, который отверг сервер.
// Одновременные вызовы и 401 из api.Client разделяют один refresh.
func (s *Session) RefreshAccessToken(ctx context.Context, stale string) (string, error) {
	return s.apiClient.RefreshToken(ctx, stale)
}

// Refresh обновляет access token используя refresh token и сохраняет
// новую пару. Вызывается api.Client под singleflight.
func (s *Session) Refresh(ctx context.Context) (string, error) {
	auth, err := s.store.GetAuth(ctx)
	if errors.Is(err, storage.ErrAuthNotFound) {
		return "", ErrNotAuthenticated
	}
	if err != nil {
		return "", fmt.Errorf("failed to get auth data: %w", err)
	}

	resp, err := s.apiClient.Refresh(ctx, auth.RefreshToken)
	if err != nil {
		return "", err
	}

	auth.AccessToken = resp.AccessToken
	if resp.RefreshToken != "" {
		auth.RefreshToken = resp.RefreshToken
	}
	auth.ExpiresAt = s.expiresAt(resp.AccessToken, resp.ExpiresIn)

	if err := s.store.SaveAuth(ctx, auth); err != nil {
		return "", fmt.Errorf("failed to save auth data: %w", err)
	}

	s.logger.Debug("access token refreshed", "expires_at", auth.ExpiresAt)
	return auth.AccessToken, nil
}

// HandleAuthFailure очищает сессию. Повторные вызовы до следующего
// Login ничего не делают, поэтому одновременные 401 не приводят к
// нескольким logout.
func (s *Session) HandleAuthFailure(ctx context.Context, cause error) {
	s.mu.Lock()
	if s.lost {
		s.mu.Unlock()
		return
	}
	s.lost = true

	if err := s.store.DeleteAuth(ctx); err != nil {
		s.logger.Error("failed to clear session", "error", err)
	}
	listeners := append([]func(error){}, s.listeners...)
	s.mu.Unlock()

	s.logger.Warn("session lost, re-authentication required", "error", cause)
	for _, fn := range listeners {
		fn(cause)
	}
}

// OnSessionLost регистрирует обработчик потери сессии
func (s *Session) OnSessionLost(fn func(err error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// expiresAt берет срок из claim exp, если токен похож на JWT,
// иначе считает от expiresIn
func (s *Session) expiresAt(token string, expiresIn int64) time.Time {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	if expiresIn > 0 {
		return s.now().Add(time.Duration(expiresIn) * time.Second)
	}
	return time.Time{}
}
