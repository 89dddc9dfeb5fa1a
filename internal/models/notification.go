package models

import "time"

// Severity уровень уведомления.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeverityAlert   Severity = "alert"
)

// Valid сообщает, известен ли уровень
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeveritySuccess, SeverityWarning, SeverityError, SeverityAlert:
		return true
	}
	return false
}

// NotificationAction кнопка, прикрепленная к уведомлению.
type NotificationAction struct {
	Data   map[string]any `json:"data,omitempty"`
	Label  string         `json:"label"`
	Action string         `json:"action"`
}

// Notification уведомление для пользователя.
// После создания меняется только Read.
type Notification struct {
	Timestamp  time.Time            `json:"timestamp"`
	ID         string               `json:"id"`
	Severity   Severity             `json:"type"`
	Title      string               `json:"title"`
	Message    string               `json:"message"`
	Actions    []NotificationAction `json:"actions,omitempty"`
	Persistent bool                 `json:"persistent,omitempty"`
	Read       bool                 `json:"read,omitempty"`
}
