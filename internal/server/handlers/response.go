package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/iudanet/itemsync/pkg/api"
)

// contextKey тип для ключей контекста
type contextKey string

// identityKey ключ для данных аутентифицированного пользователя
const identityKey contextKey = "identity"

// Identity данные пользователя из access token
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// WithIdentity кладет данные пользователя в контекст. Используется AuthMiddleware.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity извлекает данные пользователя из контекста
func GetIdentity(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.UserID != ""
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(ctx context.Context) (string, bool) {
	id, ok := GetIdentity(ctx)
	return id.UserID, ok
}

// WriteJSON отправляет JSON ответ
func WriteJSON(w http.ResponseWriter, logger *slog.Logger, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// WriteError отправляет JSON ответ с ошибкой
func WriteError(w http.ResponseWriter, logger *slog.Logger, message string, statusCode int) {
	resp := api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	WriteJSON(w, logger, resp, statusCode)
}

// decodeJSON читает тело запроса, ограничивая его размер
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	return json.NewDecoder(r.Body).Decode(v)
}

const maxBodySize = 1 << 20
