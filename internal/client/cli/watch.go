package cli

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/iudanet/itemsync/internal/models"
)

var severityIcons = map[models.Severity]string{
	models.SeverityInfo:    "ℹ",
	models.SeveritySuccess: "✓",
	models.SeverityWarning: "⚠️ ",
	models.SeverityError:   "✗",
	models.SeverityAlert:   "‼",
}

// Exec выполняет команду, введенную во время watch
type Exec func(ctx context.Context, args []string) error

// RunWatch печатает строку состояния при каждом изменении и новые
// уведомления, пока ctx не отменен. Фоновые сервисы запускает вызывающий.
// Если exec не nil, строки ввода выполняются как команды.
func (c *Cli) RunWatch(ctx context.Context, interval time.Duration, exec Exec) error {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lines <-chan string
	if exec != nil {
		lines = c.readLines(ctx)
	}

	seen := make(map[string]bool)
	// старые уведомления не повторяем
	for _, n := range c.backend.Notifications() {
		seen[n.ID] = true
	}

	last := ""
	for {
		line, err := c.statusLine(ctx)
		if err != nil {
			return err
		}
		if line != last {
			c.io.Printf("[%s] %s\n", time.Now().Format("15:04:05"), line)
			last = line
		}

		notes := c.backend.Notifications()
		for i := len(notes) - 1; i >= 0; i-- {
			n := notes[i]
			if seen[n.ID] {
				continue
			}
			seen[n.ID] = true
			c.io.Printf("%s %s: %s\n", severityIcons[n.Severity], n.Title, n.Message)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			c.runLine(ctx, exec, line)
		}
	}
}

// readLines читает ввод до ошибки или EOF.
// ReadInput не прерывается отменой, горутина завершится вместе с вводом.
func (c *Cli) readLines(ctx context.Context) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		for {
			line, err := c.io.ReadInput("")
			if err != nil {
				return
			}
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

func (c *Cli) runLine(ctx context.Context, exec Exec, line string) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return
	}
	if err := exec(ctx, args); err != nil {
		c.io.Printf("✗ %v\n", err)
	}
}

func (c *Cli) statusLine(ctx context.Context) (string, error) {
	st, err := c.backend.Status(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get status: %w", err)
	}
	network := "online"
	if !st.Online {
		network = "offline"
	}
	line := fmt.Sprintf("network: %s | realtime: %s | pending: %d | unread: %d",
		network, st.Realtime.State, st.Pending, st.Unread)
	if len(st.OnlineUsers) > 0 {
		line += " | online: " + strings.Join(st.OnlineUsers, ",")
	}
	if len(st.Locks) > 0 {
		editing := make([]string, 0, len(st.Locks))
		for _, item := range slices.Sorted(maps.Keys(st.Locks)) {
			editing = append(editing, item+"@"+st.Locks[item])
		}
		line += " | editing: " + strings.Join(editing, ",")
	}
	return line, nil
}
