package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/iudanet/itemsync/internal/client/app"
	"github.com/iudanet/itemsync/internal/client/inventory"
	"github.com/iudanet/itemsync/internal/client/iocli"
	"github.com/iudanet/itemsync/internal/client/sync"
	"github.com/iudanet/itemsync/internal/models"
)

// PasswordEnv переменная окружения с паролем для неинтерактивного входа
const PasswordEnv = "ITEMSYNC_PASSWORD"

//go:generate moq -out backend_mock.go . Backend

// Backend операции клиента, которые вызывают команды. Реализуется *app.App.
type Backend interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	Logout(ctx context.Context) error
	Status(ctx context.Context) (*app.Status, error)
	ListItems(ctx context.Context) (*app.ItemsView, error)
	GetItem(ctx context.Context, id string) (*inventory.View, error)
	CreateItem(ctx context.Context, draft models.ItemDraft) (*app.MutationResult, error)
	UpdateItem(ctx context.Context, id string, draft models.ItemDraft) (*app.MutationResult, error)
	SetQuantity(ctx context.Context, id string, quantity int, reason string) (*app.MutationResult, error)
	BulkSetQuantity(ctx context.Context, itemIDs []string, quantity int, reason string) ([]*app.MutationResult, error)
	DeleteItem(ctx context.Context, id string) (*app.MutationResult, error)
	ItemLock(ctx context.Context, id string) (string, bool)
	AcknowledgeLowStock(id string) error
	Flush(ctx context.Context) (*sync.SyncResult, error)
	QueuedActions(ctx context.Context, kind models.ActionKind) ([]*models.QueuedAction, error)
	Notifications() []models.Notification
	MarkNotificationRead(id string) bool
	MarkAllNotificationsRead()
	DismissNotification(id string) bool
}

var _ Backend = (*app.App)(nil)

// Cli команды клиента
type Cli struct {
	io      iocli.IO
	backend Backend
}

// New создает набор команд
func New(io iocli.IO, backend Backend) *Cli {
	return &Cli{io: io, backend: backend}
}

// readPassword берет пароль из окружения или спрашивает у пользователя
func (c *Cli) readPassword() (string, error) {
	if envPassword := os.Getenv(PasswordEnv); envPassword != "" {
		return envPassword, nil
	}
	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	return password, nil
}

// printMutation сообщает, применено ли изменение сразу или отложено
func (c *Cli) printMutation(res *app.MutationResult, done string) {
	if res.Queued {
		c.io.Println("⚠️  Offline: change saved and will be synced when the server is reachable.")
		c.io.Printf("Queued action: %s\n", res.ActionID)
		return
	}
	c.io.Println("✓ " + done)
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
