package api

import "github.com/iudanet/itemsync/internal/models"

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Email    string `json:"email"`    // email пользователя
	Password string `json:"password"` // пароль в открытом виде, передается только по TLS
}

// RefreshRequest представляет запрос на обновление access token
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// LogoutRequest представляет запрос на выход.
// Refresh token отзывается на сервере.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse представляет ответ с токенами доступа
type TokenResponse struct {
	User         *models.User `json:"user,omitempty"` // заполняется только при login
	AccessToken  string       `json:"accessToken"`    // JWT access token
	RefreshToken string       `json:"refreshToken"`   // refresh token
	ExpiresIn    int64        `json:"expiresIn"`      // время жизни access token в секундах
}

// VerifyResponse представляет ответ GET /auth/verify
type VerifyResponse struct {
	User models.User `json:"user"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
