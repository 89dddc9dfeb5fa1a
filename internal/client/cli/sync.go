package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/iudanet/itemsync/internal/models"
)

// RunSync воспроизводит очередь отложенных действий
func (c *Cli) RunSync(ctx context.Context) error {
	c.io.Println("=== Synchronization ===")
	c.io.Println()

	result, err := c.backend.Flush(ctx)
	if err != nil {
		return fmt.Errorf("synchronization failed: %w", err)
	}

	switch {
	case result.Skipped:
		c.io.Println("Another synchronization is already running.")
		return nil
	case result.Halted && result.Attempted == 0:
		c.io.Println("⚠️  Server is not reachable. Queued actions are kept.")
		return nil
	}

	c.io.Printf("Synced:    %d\n", result.Succeeded)
	c.io.Printf("Retrying:  %d\n", result.Retried)
	c.io.Printf("Failed:    %d\n", result.Abandoned)
	if result.Deferred > 0 {
		c.io.Printf("Waiting:   %d\n", result.Deferred)
	}
	if result.Halted {
		c.io.Println()
		c.io.Println("⚠️  Synchronization stopped early: connection or session lost.")
	}

	// Уведомления о неудачах показываем сразу
	for _, n := range c.backend.Notifications() {
		if n.Persistent && !n.Read {
			c.io.Printf("✗ %s: %s\n", n.Title, n.Message)
		}
	}
	return nil
}

// RunQueue выводит действия, ожидающие синхронизации.
// Пустой kind выводит все действия.
func (c *Cli) RunQueue(ctx context.Context, kind models.ActionKind) error {
	actions, err := c.backend.QueuedActions(ctx, kind)
	if err != nil {
		return fmt.Errorf("failed to list queue: %w", err)
	}

	c.io.Println("=== Pending Actions ===")
	c.io.Println()
	if len(actions) == 0 {
		c.io.Println("✓ Nothing to synchronize")
		return nil
	}

	w := tabwriter.NewWriter(c.io, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tREQUEST\tQUEUED\tRETRIES\t")
	for _, a := range actions {
		fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\t%d\t\n",
			a.ID, a.Kind, a.Method, a.Endpoint, a.EnqueuedAt.Format("2006-01-02 15:04:05"), a.RetryCount)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	c.io.Println()
	c.io.Printf("Total: %s\n", pluralize(len(actions), "action"))
	return nil
}
