// Package realtime рассылает события склада подключенным клиентам
// и ведет присутствие пользователей и блокировки редактирования.
package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/iudanet/itemsync/internal/server/jwt"
	"github.com/iudanet/itemsync/pkg/api"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 * 1024
	sendBuffer     = 64
)

// TokenValidator проверяет access token из handshake. Реализуется *jwt.Service.
type TokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// Config параметры hub
type Config struct {
	// PingInterval период ping кадров; pong продлевает чтение на 2 периода
	PingInterval time.Duration
	// LockTTL блокировка снимается, если editing:done не пришел вовремя
	LockTTL time.Duration
}

// DefaultConfig значения по умолчанию
func DefaultConfig() Config {
	return Config{
		PingInterval: 30 * time.Second,
		LockTTL:      5 * time.Minute,
	}
}

type lock struct {
	at     time.Time
	userID string
}

// Hub websocket endpoint и рассылка событий
type Hub struct {
	tokens   TokenValidator
	logger   *slog.Logger
	now      func() time.Time
	clients  map[*client]struct{}
	locks    map[string]lock
	upgrader websocket.Upgrader
	cfg      Config
	mu       sync.Mutex
}

// NewHub создает hub
func NewHub(cfg Config, tokens TokenValidator, logger *slog.Logger) *Hub {
	return &Hub{
		tokens:  tokens,
		logger:  logger,
		now:     time.Now,
		clients: make(map[*client]struct{}),
		locks:   make(map[string]lock),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		cfg: cfg,
	}
}

type client struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	userID string
	email  string
	once   sync.Once
	// subscribed клиент прислал inventory:subscribe
	subscribed bool
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
	})
}

// ServeHTTP проверяет Bearer токен и переводит соединение в websocket
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		http.Error(w, "Unauthorized: missing token", http.StatusUnauthorized)
		return
	}
	claims, err := h.tokens.ValidateAccessToken(token)
	if err != nil {
		h.logger.Warn("websocket handshake rejected", slog.Any("error", err))
		http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	c := &client{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		userID: claims.UserID(),
		email:  claims.Email,
	}
	h.register(c)

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	first := !h.userConnected(c.userID)
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	hubClients.Set(float64(n))
	h.logger.Info("websocket client connected", slog.String("user_id", c.userID), slog.Int("clients", n))

	if first {
		h.broadcast(api.TagUserOnline, api.PresencePayload{UserID: c.userID, Email: c.email}, c, false)
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	n := len(h.clients)
	last := !h.userConnected(c.userID)

	var released []string
	if last {
		for itemID, l := range h.locks {
			if l.userID == c.userID {
				delete(h.locks, itemID)
				released = append(released, itemID)
			}
		}
	}
	locks := len(h.locks)
	h.mu.Unlock()

	c.close()
	hubClients.Set(float64(n))
	hubLocks.Set(float64(locks))
	h.logger.Info("websocket client disconnected", slog.String("user_id", c.userID), slog.Int("clients", n))

	for _, itemID := range released {
		h.broadcast(api.TagItemUnlocked, api.LockPayload{ItemID: itemID}, nil, true)
	}
	if last {
		h.broadcast(api.TagUserOffline, api.PresencePayload{UserID: c.userID, Email: c.email}, nil, false)
	}
}

// userConnected вызывается под h.mu
func (h *Hub) userConnected(userID string) bool {
	for c := range h.clients {
		if c.userID == userID {
			return true
		}
	}
	return false
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	readWait := 2 * h.cfg.PingInterval
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(readWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("websocket read failed", slog.String("user_id", c.userID), slog.Any("error", err))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(readWait))
		h.handleSignal(c, data)
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (h *Hub) handleSignal(c *client, data []byte) {
	var env api.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		h.logger.Debug("malformed client signal", slog.String("user_id", c.userID), slog.Any("error", err))
		return
	}
	hubSignals.WithLabelValues(env.Type).Inc()

	switch env.Type {
	case api.TagSubscribe:
		h.mu.Lock()
		c.subscribed = true
		h.mu.Unlock()

	case api.TagEditing:
		var p api.EditingPayload
		if json.Unmarshal(env.Payload, &p) != nil || p.ItemID == "" {
			return
		}
		if h.acquire(p.ItemID, c.userID) {
			h.broadcast(api.TagItemLocked, api.LockPayload{ItemID: p.ItemID, LockedBy: c.userID}, c, true)
		}

	case api.TagEditingDone:
		var p api.EditingPayload
		if json.Unmarshal(env.Payload, &p) != nil || p.ItemID == "" {
			return
		}
		if h.release(p.ItemID, c.userID) {
			h.broadcast(api.TagItemUnlocked, api.LockPayload{ItemID: p.ItemID}, c, true)
		}

	case api.TagBulkStart:
		var p api.BulkStartPayload
		if json.Unmarshal(env.Payload, &p) != nil {
			return
		}
		h.logger.Info("bulk operation started",
			slog.String("user_id", c.userID), slog.String("type", p.Type), slog.Int("items", len(p.ItemIDs)))
		h.broadcast(api.TagNotificationNew, api.NotificationPayload{
			Type:    "info",
			Title:   "Bulk Operation",
			Message: fmt.Sprintf("%s started a bulk %s of %d items", c.email, p.Type, len(p.ItemIDs)),
		}, c, true)

	case api.TagLowStockAcknowledge:
		var p api.ItemRef
		if json.Unmarshal(env.Payload, &p) != nil {
			return
		}
		h.logger.Info("low stock acknowledged", slog.String("user_id", c.userID), slog.String("item_id", p.ItemID))

	default:
		h.logger.Debug("unknown client signal", slog.String("type", env.Type))
	}
}

// acquire занимает блокировку; повторный editing от владельца продлевает ее
func (h *Hub) acquire(itemID, userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if l, ok := h.locks[itemID]; ok && l.userID != userID && !h.expired(l) {
		return false
	}
	h.locks[itemID] = lock{userID: userID, at: h.now()}
	hubLocks.Set(float64(len(h.locks)))
	return true
}

func (h *Hub) release(itemID, userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	l, ok := h.locks[itemID]
	if !ok || l.userID != userID {
		return false
	}
	delete(h.locks, itemID)
	hubLocks.Set(float64(len(h.locks)))
	return true
}

func (h *Hub) expired(l lock) bool {
	return h.now().Sub(l.at) >= h.cfg.LockTTL
}

// Locks возвращает текущие блокировки item → user
func (h *Hub) Locks() map[string]string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]string, len(h.locks))
	for id, l := range h.locks {
		out[id] = l.userID
	}
	return out
}

// ReleaseItem снимает блокировку удаленной позиции
func (h *Hub) ReleaseItem(itemID string) {
	h.mu.Lock()
	delete(h.locks, itemID)
	hubLocks.Set(float64(len(h.locks)))
	h.mu.Unlock()
}

// SweepLocks снимает просроченные блокировки и рассылает unlocked
func (h *Hub) SweepLocks() int {
	h.mu.Lock()
	var expired []string
	for id, l := range h.locks {
		if h.expired(l) {
			delete(h.locks, id)
			expired = append(expired, id)
		}
	}
	hubLocks.Set(float64(len(h.locks)))
	h.mu.Unlock()

	for _, id := range expired {
		h.broadcast(api.TagItemUnlocked, api.LockPayload{ItemID: id}, nil, true)
	}
	return len(expired)
}

// Publish рассылает событие всем подписанным клиентам
func (h *Hub) Publish(tag string, payload any) {
	h.broadcast(tag, payload, nil, true)
}

// broadcast отправляет сообщение всем клиентам, кроме except.
// Медленный клиент с полным буфером отключается.
func (h *Hub) broadcast(tag string, payload any, except *client, subscribedOnly bool) {
	msg, err := encode(tag, payload)
	if err != nil {
		h.logger.Error("failed to encode event", slog.String("type", tag), slog.Any("error", err))
		return
	}

	var slow []*client
	h.mu.Lock()
	for c := range h.clients {
		if c == except || (subscribedOnly && !c.subscribed) {
			continue
		}
		select {
		case c.send <- msg:
			hubMessages.WithLabelValues(tag).Inc()
		default:
			slow = append(slow, c)
		}
	}
	h.mu.Unlock()

	for _, c := range slow {
		h.logger.Warn("dropping slow websocket client", slog.String("user_id", c.userID))
		c.close()
	}
}

// Run снимает просроченные блокировки до отмены ctx, затем закрывает соединения
func (h *Hub) Run(ctx context.Context) error {
	interval := h.cfg.LockTTL / 5
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.Close()
			return nil
		case <-ticker.C:
			if n := h.SweepLocks(); n > 0 {
				h.logger.Info("expired edit locks released", slog.Int("count", n))
			}
		}
	}
}

// Close закрывает все соединения
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

// Clients число подключенных клиентов
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func encode(tag string, payload any) ([]byte, error) {
	env := api.Envelope{Type: tag}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}
