// Package realtime поддерживает постоянный websocket канал с сервером:
// handshake с access token, ограниченное переподключение, диспетчеризация
// входящих событий по таблице обработчиков и неблокирующая отправка сигналов.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	clientapi "github.com/iudanet/itemsync/internal/client/api"
	"github.com/iudanet/itemsync/internal/client/auth"
	"github.com/iudanet/itemsync/internal/client/metrics"
	"github.com/iudanet/itemsync/internal/client/retry"
	"github.com/iudanet/itemsync/pkg/api"
)

var (
	// ErrUnauthorized сервер отклонил handshake
	ErrUnauthorized = errors.New("realtime handshake rejected")
	// ErrNoSession нет access token для handshake
	ErrNoSession = errors.New("no session for realtime connection")
	// ErrReconnectFailed исчерпаны попытки переподключения
	ErrReconnectFailed = errors.New("realtime reconnect attempts exhausted")
)

// State состояние соединения
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// ConnectionState снимок состояния для UI
type ConnectionState struct {
	State        State
	Attempt      int
	Connected    bool
	Reconnecting bool
	// Failed попытки переподключения исчерпаны
	Failed bool
}

//go:generate moq -out tokensource_mock.go . TokenSource

// TokenSource источник access token для handshake.
// Реализуется auth.Session.
type TokenSource interface {
	// FreshAccessToken возвращает действующий токен, обновляя истекший.
	// Пустая строка означает, что сессии нет.
	FreshAccessToken(ctx context.Context) (string, error)

	// RefreshAccessToken обновляет токен, который сервер отверг при handshake
	RefreshAccessToken(ctx context.Context, stale string) (string, error)

	// HandleAuthFailure вызывается, когда сессию восстановить не удалось
	HandleAuthFailure(ctx context.Context, err error)
}

// Handler обрабатывает payload входящего события
type Handler func(payload []byte) error

// Config настройки транспорта
type Config struct {
	URL               string
	ReconnectAttempts int
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
	HandshakeTimeout  time.Duration
	ReadTimeout       time.Duration
	SignalRate        rate.Limit
	SignalBurst       int
	OutboundBuffer    int
}

// DefaultConfig возвращает настройки по умолчанию для url
func DefaultConfig(url string) Config {
	return Config{
		URL:               url,
		ReconnectAttempts: 5,
		ReconnectDelay:    time.Second,
		MaxReconnectDelay: 5 * time.Second,
		HandshakeTimeout:  10 * time.Second,
		ReadTimeout:       90 * time.Second,
		SignalRate:        10,
		SignalBurst:       5,
		OutboundBuffer:    32,
	}
}

// Transport websocket клиент
type Transport struct {
	tokens    TokenSource
	logger    *slog.Logger
	dialer    *websocket.Dialer
	limiter   *rate.Limiter
	handlers  map[string]Handler
	listeners []func(ConnectionState)
	out       chan []byte
	sleep     func(ctx context.Context, d time.Duration) error
	cfg       Config
	mu        sync.RWMutex
	running   atomic.Bool
	state     atomic.Int32
	attempt   atomic.Int32
	failed    atomic.Bool
}

// New создает транспорт. Соединение устанавливает Run.
func New(cfg Config, tokens TokenSource, logger *slog.Logger) *Transport {
	def := DefaultConfig(cfg.URL)
	if cfg.ReconnectAttempts <= 0 {
		cfg.ReconnectAttempts = def.ReconnectAttempts
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = def.ReconnectDelay
	}
	if cfg.MaxReconnectDelay <= 0 {
		cfg.MaxReconnectDelay = def.MaxReconnectDelay
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = def.HandshakeTimeout
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.SignalRate <= 0 {
		cfg.SignalRate = def.SignalRate
	}
	if cfg.SignalBurst <= 0 {
		cfg.SignalBurst = def.SignalBurst
	}
	if cfg.OutboundBuffer <= 0 {
		cfg.OutboundBuffer = def.OutboundBuffer
	}

	return &Transport{
		tokens:   tokens,
		logger:   logger,
		dialer:   &websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout, Proxy: http.ProxyFromEnvironment},
		limiter:  rate.NewLimiter(cfg.SignalRate, cfg.SignalBurst),
		handlers: make(map[string]Handler),
		out:      make(chan []byte, cfg.OutboundBuffer),
		sleep:    sleepCtx,
		cfg:      cfg,
	}
}

// Handle регистрирует обработчик для тега. Повторная регистрация заменяет обработчик.
func (t *Transport) Handle(tag string, h Handler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handlers[tag] = h
}

// HandleAll регистрирует таблицу обработчиков
func (t *Transport) HandleAll(table map[string]Handler) {
	for tag, h := range table {
		t.Handle(tag, h)
	}
}

// OnStateChange подписывает fn на смену состояния
func (t *Transport) OnStateChange(fn func(ConnectionState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, fn)
}

// State возвращает текущее состояние
func (t *Transport) State() State {
	return State(t.state.Load())
}

// Status возвращает снимок состояния соединения
func (t *Transport) Status() ConnectionState {
	s := t.State()
	return ConnectionState{
		State:        s,
		Attempt:      int(t.attempt.Load()),
		Connected:    s == StateConnected,
		Reconnecting: s == StateReconnecting,
		Failed:       t.failed.Load(),
	}
}

func (t *Transport) setState(s State) {
	if State(t.state.Swap(int32(s))) == s {
		return
	}
	metrics.SetRealtimeState(int(s))
	t.logger.Debug("realtime state changed", "state", s.String())

	status := t.Status()
	t.mu.RLock()
	listeners := append([]func(ConnectionState){}, t.listeners...)
	t.mu.RUnlock()
	for _, fn := range listeners {
		fn(status)
	}
}

// Run держит соединение до отмены ctx.
//
// Истекший access token обновляется перед dial. Если сервер отверг handshake,
// токен обновляется один раз и dial повторяется. Если и это не помогло или
// сервер отверг refresh token, транспорт не переподключается: сессия
// сообщается владельцу через HandleAuthFailure и возвращается ErrUnauthorized.
// Недоступность сервера при refresh считается обычным разрывом.
// После ReconnectAttempts неудачных попыток подряд транспорт остается
// DISCONNECTED с флагом Failed и возвращает ErrReconnectFailed.
// Отмена ctx возвращает nil.
func (t *Transport) Run(ctx context.Context) error {
	if !t.running.CompareAndSwap(false, true) {
		return errors.New("realtime transport is already running")
	}
	defer t.running.Store(false)

	t.failed.Store(false)
	t.attempt.Store(0)
	t.setState(StateConnecting)

	for {
		err := t.session(ctx)
		if ctx.Err() != nil {
			t.setState(StateDisconnected)
			return nil
		}

		if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNoSession) {
			t.setState(StateDisconnected)
			if errors.Is(err, ErrUnauthorized) && t.tokens != nil {
				t.tokens.HandleAuthFailure(ctx, err)
			}
			t.logger.Warn("realtime connection rejected", "error", err)
			return err
		}

		attempt := int(t.attempt.Add(1))
		if attempt > t.cfg.ReconnectAttempts {
			t.failed.Store(true)
			t.setState(StateDisconnected)
			t.logger.Error("realtime reconnect failed", "attempts", attempt-1, "error", err)
			return fmt.Errorf("%w: %w", ErrReconnectFailed, err)
		}

		t.setState(StateReconnecting)
		metrics.RecordReconnect()
		delay := t.reconnectDelay(attempt)
		t.logger.Info("realtime reconnecting", "attempt", attempt, "delay", delay, "error", err)

		if err := t.sleep(ctx, delay); err != nil {
			t.setState(StateDisconnected)
			return nil
		}
	}
}

func (t *Transport) reconnectDelay(attempt int) time.Duration {
	d := retry.Backoff(t.cfg.ReconnectDelay, attempt)
	if d > t.cfg.MaxReconnectDelay {
		return t.cfg.MaxReconnectDelay
	}
	return d
}

// session устанавливает одно соединение и обслуживает его до разрыва
func (t *Transport) session(ctx context.Context) error {
	conn, err := t.dial(ctx)
	if err != nil {
		return err
	}

	sessCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-sessCtx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}()
	defer wg.Wait()

	if err := t.writeEnvelope(conn, api.TagSubscribe, nil); err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	t.drainOutbound()
	t.attempt.Store(0)
	t.failed.Store(false)
	t.setState(StateConnected)
	t.logger.Info("realtime connected", "url", t.cfg.URL)

	wg.Add(1)
	go func() {
		defer wg.Done()
		t.writeLoop(sessCtx, conn, cancel)
	}()

	err = t.readLoop(conn)
	cancel()
	return err
}

func (t *Transport) dial(ctx context.Context) (*websocket.Conn, error) {
	if t.tokens == nil {
		return nil, ErrNoSession
	}
	token, err := t.tokens.FreshAccessToken(ctx)
	if err != nil {
		return nil, tokenError(err)
	}
	if token == "" {
		return nil, ErrNoSession
	}

	conn, err := t.handshake(ctx, token)
	if !errors.Is(err, ErrUnauthorized) {
		return conn, err
	}

	t.logger.Info("realtime handshake rejected, refreshing token", "error", err)
	fresh, rerr := t.tokens.RefreshAccessToken(ctx, token)
	if rerr != nil {
		return nil, tokenError(rerr)
	}
	return t.handshake(ctx, fresh)
}

func (t *Transport) handshake(ctx context.Context, token string) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, resp, err := t.dialer.DialContext(ctx, t.cfg.URL, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to dial %s: %w", t.cfg.URL, err)
	}
	return conn, nil
}

// tokenError отделяет потерю сессии от временной недоступности сервера.
// Отказ сервера в refresh (4xx) означает потерю сессии, сеть, таймаут и 5xx
// уходят в обычный цикл переподключения.
func tokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrNotAuthenticated):
		return ErrNoSession
	case clientapi.KindOf(err) == clientapi.KindClient, clientapi.KindOf(err) == clientapi.KindAuth:
		return fmt.Errorf("%w: token refresh failed: %w", ErrUnauthorized, err)
	default:
		return fmt.Errorf("failed to get access token: %w", err)
	}
}

func (t *Transport) readLoop(conn *websocket.Conn) error {
	_ = conn.SetReadDeadline(time.Now().Add(t.cfg.ReadTimeout))
	conn.SetPingHandler(func(data string) error {
		_ = conn.SetReadDeadline(time.Now().Add(t.cfg.ReadTimeout))
		err := conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read failed: %w", err)
		}
		_ = conn.SetReadDeadline(time.Now().Add(t.cfg.ReadTimeout))
		t.dispatch(data)
	}
}

// dispatch применяет событие. Неизвестные теги и битые кадры пропускаются.
func (t *Transport) dispatch(data []byte) {
	var env api.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.logger.Warn("invalid realtime frame", "error", err)
		return
	}

	t.mu.RLock()
	h, ok := t.handlers[env.Type]
	t.mu.RUnlock()
	if !ok {
		t.logger.Debug("unhandled realtime event", "type", env.Type)
		return
	}

	metrics.RecordRealtimeEvent(env.Type)
	if err := h(env.Payload); err != nil {
		t.logger.Warn("realtime handler failed", "type", env.Type, "error", err)
	}
}

func (t *Transport) writeLoop(ctx context.Context, conn *websocket.Conn, cancel context.CancelFunc) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-t.out:
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				t.logger.Warn("realtime write failed", "error", err)
				cancel()
				return
			}
		}
	}
}

// drainOutbound выбрасывает сигналы, накопленные до соединения
func (t *Transport) drainOutbound() {
	for {
		select {
		case <-t.out:
			metrics.RecordSignalDropped()
		default:
			return
		}
	}
}

func (t *Transport) writeEnvelope(conn *websocket.Conn, tag string, payload any) error {
	msg, err := encode(tag, payload)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, msg)
}

// Send ставит сигнал в очередь отправки без ожидания.
// Сигнал отбрасывается, если соединения нет, лимит превышен или очередь полна.
// Доставка не подтверждается и не повторяется.
func (t *Transport) Send(tag string, payload any) bool {
	if t.State() != StateConnected {
		metrics.RecordSignalDropped()
		return false
	}
	if !t.limiter.Allow() {
		metrics.RecordSignalDropped()
		t.logger.Debug("realtime signal rate limited", "type", tag)
		return false
	}

	msg, err := encode(tag, payload)
	if err != nil {
		t.logger.Warn("failed to encode realtime signal", "type", tag, "error", err)
		return false
	}

	select {
	case t.out <- msg:
		return true
	default:
		metrics.RecordSignalDropped()
		return false
	}
}

// Editing сообщает, что пользователь начал редактировать позицию
func (t *Transport) Editing(itemID string) bool {
	return t.Send(api.TagEditing, api.EditingPayload{ItemID: itemID})
}

// EditingDone сообщает, что редактирование закончено
func (t *Transport) EditingDone(itemID string) bool {
	return t.Send(api.TagEditingDone, api.EditingPayload{ItemID: itemID})
}

// BulkStart сообщает о начале массовой операции
func (t *Transport) BulkStart(kind string, itemIDs []string) bool {
	return t.Send(api.TagBulkStart, api.BulkStartPayload{Type: kind, ItemIDs: itemIDs})
}

// AcknowledgeLowStock подтверждает предупреждение о низком остатке
func (t *Transport) AcknowledgeLowStock(itemID string) bool {
	return t.Send(api.TagLowStockAcknowledge, api.ItemRef{ItemID: itemID})
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

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
