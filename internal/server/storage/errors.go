package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this email already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrTokenNotFound indicates that refresh token was not found
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrItemNotFound indicates that inventory item was not found
	ErrItemNotFound = errors.New("item not found")

	// ErrDuplicateSKU indicates that another item already uses the SKU
	ErrDuplicateSKU = errors.New("sku already exists")
)
