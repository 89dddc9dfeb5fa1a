package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"text/template"

	"github.com/iudanet/itemsync/internal/models"
)

var itemTmpl = template.Must(template.New("item").Parse(itemTemplate))

// ErrItemLocked позицию редактирует другой пользователь
var ErrItemLocked = errors.New("item is being edited by another user")

// RunList выводит список позиций
func (c *Cli) RunList(ctx context.Context) error {
	view, err := c.backend.ListItems(ctx)
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}

	c.io.Println("=== Inventory ===")
	if view.Stale {
		if view.CachedAt.IsZero() {
			c.io.Println("⚠️  Offline: showing last known data")
		} else {
			c.io.Printf("⚠️  Offline: showing data cached at %s\n", view.CachedAt.Format("2006-01-02 15:04:05"))
		}
	}
	c.io.Println()

	if len(view.Items) == 0 {
		c.io.Println("No items found.")
		return nil
	}

	w := tabwriter.NewWriter(c.io, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSKU\tQTY\tMIN\tLOCATION\t")
	for _, it := range view.Items {
		flag := ""
		switch {
		case it.Pending:
			flag = "*"
		case it.IsLowStock():
			flag = "!"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d%s\t%d\t%s\t\n",
			it.ID, truncate(it.Name, 32), it.SKU, it.Quantity, flag, it.MinQuantity, truncate(it.Location, 20))
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}

	c.io.Println()
	c.io.Printf("Total: %s (* pending sync, ! low stock)\n", pluralize(len(view.Items), "item"))
	return nil
}

// RunGet выводит одну позицию
func (c *Cli) RunGet(ctx context.Context, id string) error {
	item, err := c.backend.GetItem(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get item: %w", err)
	}
	if err := itemTmpl.Execute(c.io, item); err != nil {
		return fmt.Errorf("failed to render item: %w", err)
	}
	return nil
}

// RunAdd создает позицию
func (c *Cli) RunAdd(ctx context.Context, draft models.ItemDraft) error {
	res, err := c.backend.CreateItem(ctx, draft)
	if err != nil {
		return fmt.Errorf("failed to add item: %w", err)
	}
	if res.Item != nil {
		c.printMutation(res, fmt.Sprintf("Item created: %s (%s)", res.Item.Name, res.Item.ID))
		return nil
	}
	c.printMutation(res, "Item created")
	return nil
}

// RunEdit частично обновляет позицию
func (c *Cli) RunEdit(ctx context.Context, id string, draft models.ItemDraft, force bool) error {
	if err := c.checkLock(ctx, id, force); err != nil {
		return err
	}
	res, err := c.backend.UpdateItem(ctx, id, draft)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	c.printMutation(res, fmt.Sprintf("Item %s updated", id))
	return nil
}

// RunQuantity устанавливает остаток
func (c *Cli) RunQuantity(ctx context.Context, id string, quantity int, reason string, force bool) error {
	if err := c.checkLock(ctx, id, force); err != nil {
		return err
	}
	res, err := c.backend.SetQuantity(ctx, id, quantity, reason)
	if err != nil {
		return fmt.Errorf("failed to set quantity: %w", err)
	}
	c.printMutation(res, fmt.Sprintf("Quantity of %s set to %d", id, quantity))
	return nil
}

// RunRestock устанавливает один остаток для нескольких позиций
func (c *Cli) RunRestock(ctx context.Context, ids []string, quantity int, reason string, force bool) error {
	for _, id := range ids {
		if err := c.checkLock(ctx, id, force); err != nil {
			return err
		}
	}

	results, err := c.backend.BulkSetQuantity(ctx, ids, quantity, reason)
	for i, res := range results {
		c.printMutation(res, fmt.Sprintf("Quantity of %s set to %d", ids[i], quantity))
	}
	if err != nil {
		return fmt.Errorf("restock stopped: %w", err)
	}
	return nil
}

// RunDelete удаляет позицию
func (c *Cli) RunDelete(ctx context.Context, id string, force bool) error {
	if err := c.checkLock(ctx, id, force); err != nil {
		return err
	}
	res, err := c.backend.DeleteItem(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	c.printMutation(res, fmt.Sprintf("Item %s deleted", id))
	return nil
}

// RunAcknowledge подтверждает предупреждение о низком остатке
func (c *Cli) RunAcknowledge(id string) error {
	if err := c.backend.AcknowledgeLowStock(id); err != nil {
		return fmt.Errorf("failed to acknowledge low stock: %w", err)
	}
	c.io.Printf("✓ Low stock alert for %s acknowledged\n", id)
	return nil
}

// checkLock не дает менять позицию, которую редактирует другой
// пользователь. С force изменение выполняется с предупреждением.
func (c *Cli) checkLock(ctx context.Context, id string, force bool) error {
	holder, locked := c.backend.ItemLock(ctx, id)
	if !locked {
		return nil
	}
	if !force {
		return fmt.Errorf("%w: %s is editing %s, use --force to override", ErrItemLocked, holder, id)
	}
	c.io.Printf("⚠️  %s is editing %s, applying change anyway\n", holder, id)
	return nil
}
