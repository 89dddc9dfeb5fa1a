package models

import "time"

// User представляет пользователя в системе
type User struct {
	CreatedAt      time.Time `json:"createdAt"`
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Role           string    `json:"role"`
	OrganizationID string    `json:"organizationId"`
	PasswordHash   string    `json:"-"`
}

// RefreshToken представляет refresh token пользователя
type RefreshToken struct {
	ExpiresAt time.Time `json:"expires_at"` // время истечения
	CreatedAt time.Time `json:"created_at"` // время создания
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"` // ID пользователя
}

// IsExpired проверяет, истек ли refresh token
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
