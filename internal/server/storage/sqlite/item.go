package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/itemsync/internal/models"
	"github.com/iudanet/itemsync/internal/server/storage"
)

const itemColumns = `id, name, sku, barcode, unit, category, location, quantity, min_quantity, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	item := &models.Item{}
	var createdAt, updatedAt int64
	if err := row.Scan(
		&item.ID,
		&item.Name,
		&item.SKU,
		&item.Barcode,
		&item.Unit,
		&item.Category,
		&item.Location,
		&item.Quantity,
		&item.MinQuantity,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	item.CreatedAt = fromMillis(createdAt)
	item.UpdatedAt = fromMillis(updatedAt)
	return item, nil
}

// ListItems returns all items ordered by name
func (s *Storage) ListItems(ctx context.Context) ([]models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY name, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	items := make([]models.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return items, nil
}

// GetItem retrieves item by ID
func (s *Storage) GetItem(ctx context.Context, id string) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ?`

	item, err := scanItem(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// CreateItem inserts a new item
func (s *Storage) CreateItem(ctx context.Context, item *models.Item) error {
	query := `INSERT INTO items (` + itemColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		item.ID,
		item.Name,
		item.SKU,
		item.Barcode,
		item.Unit,
		item.Category,
		item.Location,
		item.Quantity,
		item.MinQuantity,
		toMillis(item.CreatedAt),
		toMillis(item.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicateSKU
		}
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

// UpdateItem overwrites all mutable fields of the item
func (s *Storage) UpdateItem(ctx context.Context, item *models.Item) error {
	query := `
		UPDATE items
		SET name = ?, sku = ?, barcode = ?, unit = ?, category = ?, location = ?,
		    quantity = ?, min_quantity = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		item.Name,
		item.SKU,
		item.Barcode,
		item.Unit,
		item.Category,
		item.Location,
		item.Quantity,
		item.MinQuantity,
		toMillis(item.UpdatedAt),
		item.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicateSKU
		}
		return fmt.Errorf("failed to update item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrItemNotFound
	}
	return nil
}

// DeleteItem removes item by ID
func (s *Storage) DeleteItem(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrItemNotFound
	}
	return nil
}

// SetQuantity sets item quantity and records the change in quantity_log
func (s *Storage) SetQuantity(ctx context.Context, id string, quantity int, userID, reason string) (*storage.QuantityChange, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	item, err := scanItem(tx.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	now := s.now()
	old := item.Quantity

	if _, err := tx.ExecContext(ctx,
		`UPDATE items SET quantity = ?, updated_at = ? WHERE id = ?`,
		quantity, toMillis(now), id,
	); err != nil {
		return nil, fmt.Errorf("failed to update quantity: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO quantity_log (item_id, user_id, old_quantity, new_quantity, reason, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, userID, old, quantity, reason, toMillis(now),
	); err != nil {
		return nil, fmt.Errorf("failed to log quantity change: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}

	item.Quantity = quantity
	item.UpdatedAt = fromMillis(toMillis(now))
	return &storage.QuantityChange{Item: item, OldQuantity: old}, nil
}

// QuantityLogLen возвращает число записей журнала для позиции
func (s *Storage) QuantityLogLen(ctx context.Context, id string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quantity_log WHERE item_id = ?`, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count quantity log: %w", err)
	}
	return n, nil
}
