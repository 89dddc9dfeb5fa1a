package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/iudanet/itemsync/internal/models"
	"github.com/iudanet/itemsync/pkg/api"
)

// Пути REST API относительно baseURL
const (
	PathLogin     = "/auth/login"
	PathRefresh   = "/auth/refresh"
	PathLogout    = "/auth/logout"
	PathVerify    = "/auth/verify"
	PathInventory = "/inventory"
)

// ItemPath возвращает путь позиции склада
func ItemPath(id string) string {
	return PathInventory + "/" + url.PathEscape(id)
}

// QuantityPath возвращает путь изменения остатка
func QuantityPath(id string) string {
	return ItemPath(id) + "/quantity"
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	_, err := c.Execute(ctx, http.MethodPost, PathLogin, req, &RequestOptions{Out: &resp, SkipAuth: true, MaxAttempts: 1})
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Refresh обменивает refresh token на новую пару токенов
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	_, err := c.Execute(ctx, http.MethodPost, PathRefresh, api.RefreshRequest{RefreshToken: refreshToken},
		&RequestOptions{Out: &resp, SkipAuth: true, MaxAttempts: 1})
	if err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	return &resp, nil
}

// Logout отзывает refresh token на сервере
func (c *Client) Logout(ctx context.Context, accessToken, refreshToken string) error {
	_, err := c.Execute(ctx, http.MethodPost, PathLogout, api.LogoutRequest{RefreshToken: refreshToken},
		&RequestOptions{SkipAuth: true, MaxAttempts: 1, bearer: accessToken})
	if err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// Verify проверяет текущий access token
func (c *Client) Verify(ctx context.Context) (*models.User, error) {
	var resp api.VerifyResponse
	if _, err := c.Execute(ctx, http.MethodGet, PathVerify, nil, &RequestOptions{Out: &resp}); err != nil {
		return nil, fmt.Errorf("verify request failed: %w", err)
	}
	return &resp.User, nil
}

// ListItems возвращает позиции склада. Result.Stale true, если список из кэша.
func (c *Client) ListItems(ctx context.Context) (models.ItemList, *Result, error) {
	var items models.ItemList
	res, err := c.Execute(ctx, http.MethodGet, PathInventory, nil, &RequestOptions{Out: &items, Validate: true})
	if err != nil {
		return nil, nil, fmt.Errorf("list items failed: %w", err)
	}
	return items, res, nil
}

// GetItem возвращает позицию по ID
func (c *Client) GetItem(ctx context.Context, id string) (*models.Item, *Result, error) {
	var item models.Item
	res, err := c.Execute(ctx, http.MethodGet, ItemPath(id), nil, &RequestOptions{Out: &item, Validate: true})
	if err != nil {
		return nil, nil, fmt.Errorf("get item failed: %w", err)
	}
	return &item, res, nil
}

// CreateItem создает позицию
func (c *Client) CreateItem(ctx context.Context, draft models.ItemDraft) (*models.Item, error) {
	var item models.Item
	_, err := c.Execute(ctx, http.MethodPost, PathInventory, draft, &RequestOptions{Out: &item, Validate: true})
	if err != nil {
		return nil, fmt.Errorf("create item failed: %w", err)
	}
	return &item, nil
}

// UpdateItem частично обновляет позицию
func (c *Client) UpdateItem(ctx context.Context, id string, draft models.ItemDraft) (*models.Item, error) {
	var item models.Item
	_, err := c.Execute(ctx, http.MethodPatch, ItemPath(id), draft, &RequestOptions{Out: &item, Validate: true})
	if err != nil {
		return nil, fmt.Errorf("update item failed: %w", err)
	}
	return &item, nil
}

// SetQuantity устанавливает остаток позиции
func (c *Client) SetQuantity(ctx context.Context, id string, req api.QuantityRequest) (*models.Item, error) {
	var item models.Item
	_, err := c.Execute(ctx, http.MethodPost, QuantityPath(id), req, &RequestOptions{Out: &item, Validate: true})
	if err != nil {
		return nil, fmt.Errorf("set quantity failed: %w", err)
	}
	return &item, nil
}

// DeleteItem удаляет позицию
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	if _, err := c.Execute(ctx, http.MethodDelete, ItemPath(id), nil, nil); err != nil {
		return fmt.Errorf("delete item failed: %w", err)
	}
	return nil
}
