package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/itemsync/internal/server/handlers"
	"github.com/iudanet/itemsync/internal/server/jwt"
)

// TokenValidator проверяет access token. Реализуется *jwt.Service.
type TokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// BearerToken извлекает токен из заголовка "Authorization: Bearer <token>".
// Возвращает пустую строку, если заголовок отсутствует или имеет другой формат.
func BearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AuthMiddleware создает middleware для проверки JWT токена
func AuthMiddleware(logger *slog.Logger, tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				logger.Warn("Missing Authorization header", "path", r.URL.Path)
				handlers.WriteError(w, logger, "missing token", http.StatusUnauthorized)
				return
			}

			tokenString := BearerToken(r)
			if tokenString == "" {
				logger.Warn("Invalid Authorization header format", "path", r.URL.Path)
				handlers.WriteError(w, logger, "invalid token format", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.ValidateAccessToken(tokenString)
			if err != nil {
				logger.Warn("Invalid access token", "error", err)
				handlers.WriteError(w, logger, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := handlers.WithIdentity(r.Context(), handlers.Identity{
				UserID: claims.UserID(),
				Email:  claims.Email,
				Role:   claims.Role,
			})

			logger.Debug("User authenticated", "user_id", claims.UserID(), "email", claims.Email)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
