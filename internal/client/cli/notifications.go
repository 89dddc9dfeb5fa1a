package cli

import (
	"fmt"
	"text/tabwriter"
)

// RunNotifications выводит уведомления, новые первыми
func (c *Cli) RunNotifications() error {
	notes := c.backend.Notifications()

	c.io.Println("=== Notifications ===")
	c.io.Println()
	if len(notes) == 0 {
		c.io.Println("No notifications.")
		return nil
	}

	unread := 0
	w := tabwriter.NewWriter(c.io, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, " \tID\tTIME\tTITLE\tMESSAGE\t")
	for _, n := range notes {
		mark := " "
		if !n.Read {
			mark = "●"
			unread++
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t%s\t\n",
			mark, n.ID, n.Timestamp.Format("15:04:05"), severityIcons[n.Severity], n.Title, truncate(n.Message, 48))
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}

	c.io.Println()
	c.io.Printf("Total: %s, %d unread\n", pluralize(len(notes), "notification"), unread)
	return nil
}

// RunNotificationRead отмечает уведомление прочитанным
func (c *Cli) RunNotificationRead(id string) error {
	if !c.backend.MarkNotificationRead(id) {
		return fmt.Errorf("notification %s not found", id)
	}
	c.io.Printf("✓ Notification %s marked as read\n", id)
	return nil
}

// RunNotificationsReadAll отмечает все уведомления прочитанными
func (c *Cli) RunNotificationsReadAll() error {
	c.backend.MarkAllNotificationsRead()
	c.io.Println("✓ All notifications marked as read")
	return nil
}

// RunNotificationDismiss удаляет уведомление
func (c *Cli) RunNotificationDismiss(id string) error {
	if !c.backend.DismissNotification(id) {
		return fmt.Errorf("notification %s not found", id)
	}
	c.io.Printf("✓ Notification %s dismissed\n", id)
	return nil
}
