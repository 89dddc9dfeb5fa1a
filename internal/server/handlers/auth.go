package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/itemsync/internal/models"
	"github.com/iudanet/itemsync/internal/server/storage"
	"github.com/iudanet/itemsync/internal/validation"
	"github.com/iudanet/itemsync/pkg/api"
)

// TokenIssuer выпускает пару токенов. Реализуется *jwt.Service.
type TokenIssuer interface {
	GenerateAccessToken(user *models.User) (string, int64, error)
	GenerateRefreshToken() (string, time.Time, error)
}

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	logger       *slog.Logger
	userStorage  storage.UserStorage
	tokenStorage storage.TokenStorage
	tokens       TokenIssuer
	now          func() time.Time
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, userStorage storage.UserStorage, tokenStorage storage.TokenStorage, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{
		logger:       logger,
		userStorage:  userStorage,
		tokenStorage: tokenStorage,
		tokens:       tokens,
		now:          time.Now,
	}
}

// Login обрабатывает POST /api/auth/login
// Аутентификация по email и паролю
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(req.Email)
	if err := validation.ValidateEmail(email); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Password == "" {
		h.sendError(w, "password is required", http.StatusBadRequest)
		return
	}

	user, err := h.userStorage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "login failed: user not found", slog.String("email", email))
			h.sendError(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.logger.WarnContext(ctx, "login failed: wrong password", slog.String("email", email))
		h.sendError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	resp, ok := h.issueTokens(w, r, user)
	if !ok {
		return
	}
	resp.User = user

	h.logger.InfoContext(ctx, "user logged in successfully",
		slog.String("email", user.Email),
		slog.String("user_id", user.ID))

	h.sendJSON(w, resp, http.StatusOK)
}

// Refresh обрабатывает POST /api/auth/refresh
// Старый refresh token удаляется, выдается новая пара
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.sendError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.RefreshToken == "" {
		h.sendError(w, "refresh token is required", http.StatusUnauthorized)
		return
	}

	storedToken, err := h.tokenStorage.GetRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			h.logger.WarnContext(ctx, "refresh token not found")
			h.sendError(w, "invalid refresh token", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get refresh token", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if storedToken.IsExpired(h.now()) {
		h.logger.WarnContext(ctx, "refresh token expired", slog.String("user_id", storedToken.UserID))
		_ = h.tokenStorage.DeleteRefreshToken(ctx, req.RefreshToken)
		h.sendError(w, "refresh token expired", http.StatusUnauthorized)
		return
	}

	user, err := h.userStorage.GetUserByID(ctx, storedToken.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.sendError(w, "invalid refresh token", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// Токен одноразовый: повторное использование должно получить 401
	if err := h.tokenStorage.DeleteRefreshToken(ctx, req.RefreshToken); err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			h.sendError(w, "invalid refresh token", http.StatusUnauthorized)
			return
		}
		h.logger.WarnContext(ctx, "failed to delete old refresh token", slog.Any("error", err))
	}

	resp, ok := h.issueTokens(w, r, user)
	if !ok {
		return
	}

	h.logger.InfoContext(ctx, "tokens refreshed successfully", slog.String("user_id", user.ID))

	h.sendJSON(w, resp, http.StatusOK)
}

// Logout обрабатывает POST /api/auth/logout (за AuthMiddleware)
// С refresh token в теле отзывается только он, без тела - все токены пользователя
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.LogoutRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			h.sendError(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	if req.RefreshToken != "" {
		stored, err := h.tokenStorage.GetRefreshToken(ctx, req.RefreshToken)
		switch {
		case errors.Is(err, storage.ErrTokenNotFound):
			// уже отозван, выход все равно успешен
		case err != nil:
			h.logger.ErrorContext(ctx, "failed to get refresh token", slog.Any("error", err))
			h.sendError(w, "internal server error", http.StatusInternalServerError)
			return
		case stored.UserID != userID:
			h.sendError(w, "refresh token belongs to another user", http.StatusForbidden)
			return
		default:
			if err := h.tokenStorage.DeleteRefreshToken(ctx, req.RefreshToken); err != nil && !errors.Is(err, storage.ErrTokenNotFound) {
				h.logger.ErrorContext(ctx, "failed to delete refresh token", slog.Any("error", err))
				h.sendError(w, "internal server error", http.StatusInternalServerError)
				return
			}
		}
		h.logger.InfoContext(ctx, "user logged out", slog.String("user_id", userID))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	deletedCount, err := h.tokenStorage.DeleteUserTokens(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to delete user tokens", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user logged out from all sessions",
		slog.String("user_id", userID),
		slog.Int("tokens_deleted", deletedCount))

	w.WriteHeader(http.StatusNoContent)
}

// Verify обрабатывает GET /api/auth/verify (за AuthMiddleware)
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.userStorage.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.sendError(w, "user no longer exists", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.sendJSON(w, api.VerifyResponse{User: *user}, http.StatusOK)
}

// issueTokens выпускает пару токенов и сохраняет refresh token.
// При ошибке ответ уже отправлен.
func (h *AuthHandler) issueTokens(w http.ResponseWriter, r *http.Request, user *models.User) (*api.TokenResponse, bool) {
	ctx := r.Context()

	accessToken, expiresIn, err := h.tokens.GenerateAccessToken(user)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate access token", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return nil, false
	}

	refreshToken, expiresAt, err := h.tokens.GenerateRefreshToken()
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate refresh token", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return nil, false
	}

	token := &models.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
		CreatedAt: h.now(),
	}
	if err := h.tokenStorage.SaveRefreshToken(ctx, token); err != nil {
		h.logger.ErrorContext(ctx, "failed to save refresh token", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return nil, false
	}

	return &api.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}, true
}

func (h *AuthHandler) sendJSON(w http.ResponseWriter, data any, statusCode int) {
	WriteJSON(w, h.logger, data, statusCode)
}

func (h *AuthHandler) sendError(w http.ResponseWriter, message string, statusCode int) {
	WriteError(w, h.logger, message, statusCode)
}
