// Package network отслеживает доступность сервера и сообщает о переходах
// online/offline подписчикам (очередь, realtime, статусная строка).
package network

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iudanet/itemsync/internal/client/metrics"
)

// DefaultCheckInterval интервал проверки по умолчанию
const DefaultCheckInterval = 15 * time.Second

// Listener вызывается при каждом переходе состояния
type Listener func(online bool)

// Monitor хранит текущее состояние сети.
// До первой проверки сеть считается доступной.
type Monitor struct {
	client    *http.Client
	logger    *slog.Logger
	listeners map[uint64]Listener
	checkURL  string
	interval  time.Duration
	seq       uint64
	mu        sync.Mutex
	online    atomic.Bool
}

// NewMonitor создает монитор. checkURL адрес, любой HTTP ответ от которого
// означает, что сервер доступен.
func NewMonitor(client *http.Client, checkURL string, interval time.Duration, logger *slog.Logger) *Monitor {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	m := &Monitor{
		client:    client,
		logger:    logger,
		listeners: make(map[uint64]Listener),
		checkURL:  checkURL,
		interval:  interval,
	}
	m.online.Store(true)
	metrics.SetOnline(true)
	return m
}

// Online возвращает последнее известное состояние
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// OnChange подписывает fn на переходы. Возвращает функцию отписки.
func (m *Monitor) OnChange(fn Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := m.seq
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// SetOnline фиксирует состояние. Подписчики вызываются только при смене состояния.
func (m *Monitor) SetOnline(online bool) {
	if m.online.Swap(online) == online {
		return
	}
	metrics.SetOnline(online)
	if online {
		m.logger.Info("network is back online")
	} else {
		m.logger.Warn("network is offline")
	}

	m.mu.Lock()
	listeners := make([]Listener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(online)
	}
}

// Check проверяет доступность сервера и обновляет состояние
func (m *Monitor) Check(ctx context.Context) bool {
	online := m.get(ctx) == nil
	if ctx.Err() != nil {
		// отмена не говорит ничего о сети
		return m.Online()
	}
	m.SetOnline(online)
	return online
}

func (m *Monitor) get(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.checkURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		m.logger.Debug("health check failed", "url", m.checkURL, "error", err)
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Run проверяет сеть сразу и затем каждые interval до отмены ctx
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}
