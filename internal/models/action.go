package models

import (
	"fmt"
	"strings"
	"time"
)

// ActionKind тип отложенной мутации.
type ActionKind string

const (
	ActionCreate ActionKind = "CREATE"
	ActionUpdate ActionKind = "UPDATE"
	ActionDelete ActionKind = "DELETE"
)

// ParseActionKind разбирает тип действия без учета регистра
func ParseActionKind(s string) (ActionKind, error) {
	switch kind := ActionKind(strings.ToUpper(strings.TrimSpace(s))); kind {
	case ActionCreate, ActionUpdate, ActionDelete:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown action kind %q", s)
	}
}

// QueuedAction мутация, которая еще не подтверждена сервером.
// После постановки в очередь меняется только RetryCount.
type QueuedAction struct {
	EnqueuedAt time.Time  `json:"enqueuedAt"`
	ID         string     `json:"id"`
	Kind       ActionKind `json:"kind"`
	Endpoint   string     `json:"endpoint"`
	Method     string     `json:"method"`
	Payload    []byte     `json:"payload,omitempty"`
	RetryCount int        `json:"retryCount"`
}

// EntityKey возвращает ключ сущности, к которой относится действие.
// "/inventory/42/quantity" и "/inventory/42" дают "inventory/42";
// создание в коллекции получает собственный ключ по ID действия.
func (a *QueuedAction) EntityKey() string {
	parts := strings.Split(strings.Trim(a.Endpoint, "/"), "/")
	if len(parts) >= 2 && parts[1] != "" {
		return parts[0] + "/" + parts[1]
	}
	return a.Endpoint + "#" + a.ID
}

// KindForMethod выводит тип действия из HTTP метода.
func KindForMethod(method string) ActionKind {
	switch strings.ToUpper(method) {
	case "POST":
		return ActionCreate
	case "DELETE":
		return ActionDelete
	default:
		return ActionUpdate
	}
}
