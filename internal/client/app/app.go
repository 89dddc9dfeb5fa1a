// Package app собирает клиентские сервисы в одно приложение и управляет
// их жизненным циклом: Init открывает хранилище и связывает сервисы,
// Run запускает фоновые циклы, Dispose освобождает ресурсы.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/iudanet/itemsync/internal/client/api"
	"github.com/iudanet/itemsync/internal/client/auth"
	"github.com/iudanet/itemsync/internal/client/cache"
	"github.com/iudanet/itemsync/internal/client/config"
	"github.com/iudanet/itemsync/internal/client/inventory"
	"github.com/iudanet/itemsync/internal/client/metrics"
	"github.com/iudanet/itemsync/internal/client/network"
	"github.com/iudanet/itemsync/internal/client/queue"
	"github.com/iudanet/itemsync/internal/client/realtime"
	"github.com/iudanet/itemsync/internal/client/retry"
	"github.com/iudanet/itemsync/internal/client/storage"
	"github.com/iudanet/itemsync/internal/client/storage/boltdb"
	"github.com/iudanet/itemsync/internal/client/store"
	"github.com/iudanet/itemsync/internal/client/sync"
	"github.com/iudanet/itemsync/internal/models"
)

// App клиентское приложение
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *boltdb.Storage

	API      *api.Client
	Cache    *cache.Manager
	Session  *auth.Session
	Queue    *queue.Queue
	Sync     sync.Service
	Store    *store.Store
	Items    *inventory.Cache
	Monitor  *network.Monitor
	Realtime *realtime.Transport

	flush     chan struct{}
	reconnect chan struct{}
}

// New создает приложение. Сервисы создаются в Init.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		flush:     make(chan struct{}, 1),
		reconnect: make(chan struct{}, 1),
	}
}

// Init открывает локальное хранилище и связывает сервисы
func (a *App) Init(ctx context.Context) error {
	db, err := boltdb.New(ctx, a.cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	a.db = db

	transport := http.DefaultTransport.(*http.Transport).Clone()
	a.Cache = cache.New(transport, db, a.cfg.Build, a.logger.With("component", "cache"))
	if err := a.Cache.Activate(ctx); err != nil {
		a.logger.Warn("failed to purge old caches", "error", err)
	}

	opts := []api.Option{
		api.WithTransport(a.Cache),
		api.WithTimeout(a.cfg.Executor.Timeout),
		api.WithRetry(a.cfg.Executor.Attempts, a.cfg.Executor.BaseDelay),
		api.WithLogger(a.logger.With("component", "api")),
		api.WithOnRetry(a.onRetry),
	}
	if a.cfg.Executor.Breaker.Enabled() {
		opts = append(opts, api.WithBreaker(api.BreakerSettings{
			Failures:    a.cfg.Executor.Breaker.Failures,
			OpenTimeout: a.cfg.Executor.Breaker.OpenTimeout,
		}))
	}
	a.API = api.NewClient(a.cfg.Server.APIURL(), opts...)

	a.Session = auth.NewSession(a.API, db, a.logger.With("component", "auth"))
	a.Store = store.New(a.cfg.Realtime.LockTTL)
	a.Items = inventory.NewCache()
	a.Queue = queue.New(db, a.logger.With("component", "queue"))

	policy := retry.Policy{MaxRetries: a.cfg.Queue.MaxRetries, BaseDelay: a.cfg.Queue.BaseDelay}
	a.Sync = sync.NewService(a.Queue, a.API, a.Store, a.Items, policy, a.logger.With("component", "sync"))

	checker := &http.Client{Transport: transport, Timeout: 5 * time.Second}
	a.Monitor = network.NewMonitor(checker, a.cfg.Server.URL+a.cfg.Monitor.HealthPath,
		a.cfg.Monitor.CheckInterval, a.logger.With("component", "network"))
	a.Monitor.OnChange(a.onNetworkChange)

	wsURL, err := a.cfg.Server.WebsocketURL(a.cfg.Realtime.Path)
	if err != nil {
		return err
	}
	a.Realtime = realtime.New(realtime.Config{
		URL:               wsURL,
		ReconnectAttempts: a.cfg.Realtime.ReconnectAttempts,
		ReconnectDelay:    a.cfg.Realtime.ReconnectDelay,
		MaxReconnectDelay: a.cfg.Realtime.MaxReconnectDelay,
		SignalRate:        rate.Limit(a.cfg.Realtime.SignalRate),
		SignalBurst:       a.cfg.Realtime.SignalBurst,
	}, a.Session, a.logger.With("component", "realtime"))
	a.Realtime.HandleAll(realtime.NewEvents(a.Store, a.Items, a.logger.With("component", "events")).Table())
	a.Realtime.OnStateChange(a.onRealtimeState)

	a.Session.OnSessionLost(func(err error) {
		a.Store.AddNotification(models.Notification{
			Severity:   models.SeverityWarning,
			Title:      "Session Expired",
			Message:    "Please log in again",
			Persistent: true,
		})
	})

	// Неподтвержденные изменения переживают перезапуск
	actions, err := a.Queue.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore queue: %w", err)
	}
	for _, action := range actions {
		a.Items.AddPending(inventory.PendingFromAction(action))
	}
	if len(actions) > 0 {
		a.logger.Info("restored queued actions", "count", len(actions))
	}
	return nil
}

// Dispose отменяет запросы, дожидается фоновых задач кэша и закрывает базу
func (a *App) Dispose() error {
	if a.API != nil {
		a.API.CancelAll()
	}
	if a.Cache != nil {
		a.Cache.Wait()
	}
	if a.db == nil {
		return nil
	}
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// Run запускает фоновые циклы до отмены ctx: проверку сети,
// воспроизведение очереди, realtime канал и очистку блокировок.
func (a *App) Run(ctx context.Context) error {
	if _, err := a.Session.Current(ctx); err == nil {
		if _, err := a.Session.Verify(ctx); err != nil && !api.IsOffline(err) {
			a.logger.Warn("session verification failed", "error", err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return a.Monitor.Run(ctx) })
	g.Go(func() error { return a.flushLoop(ctx) })
	g.Go(func() error { return a.sweepLoop(ctx) })
	g.Go(func() error {
		if err := a.Cache.Precache(ctx, a.cfg.Server.URL, cache.StaticAssets); err != nil {
			a.logger.Debug("precache incomplete", "error", err)
		}
		return nil
	})
	if a.cfg.Realtime.Enabled {
		g.Go(func() error { return a.realtimeLoop(ctx) })
	}
	a.RequestFlush()

	return g.Wait()
}

// Flush воспроизводит очередь, если сеть доступна
func (a *App) Flush(ctx context.Context) (*sync.SyncResult, error) {
	if !a.Monitor.Online() {
		return &sync.SyncResult{Halted: true}, nil
	}
	result, err := a.Sync.Sync(ctx)
	if err != nil {
		return result, err
	}
	if result.Halted && ctx.Err() == nil {
		a.Monitor.Check(ctx)
	}
	return result, nil
}

// RequestFlush просит цикл воспроизведения выполнить проход
func (a *App) RequestFlush() {
	select {
	case a.flush <- struct{}{}:
	default:
	}
}

func (a *App) flushLoop(ctx context.Context) error {
	ticker := time.NewTicker(a.cfg.Queue.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-a.flush:
		}

		n, err := a.Queue.Size(ctx)
		if err != nil || n == 0 {
			continue
		}
		if _, err := a.Flush(ctx); err != nil {
			a.logger.Error("flush failed", "error", err)
		}
	}
}

func (a *App) sweepLoop(ctx context.Context) error {
	interval := a.cfg.Realtime.LockTTL / 5
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := a.Store.SweepLocks(); n > 0 {
				a.logger.Debug("expired locks removed", "count", n)
			}
		}
	}
}

// realtimeLoop перезапускает транспорт, когда сеть возвращается
func (a *App) realtimeLoop(ctx context.Context) error {
	for {
		err := a.Realtime.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			a.logger.Warn("realtime stopped", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-a.reconnect:
		}
	}
}

func (a *App) onNetworkChange(online bool) {
	if !online {
		return
	}
	a.RequestFlush()
	select {
	case a.reconnect <- struct{}{}:
	default:
	}
}

func (a *App) onRealtimeState(cs realtime.ConnectionState) {
	// Блокировки приходят только от сервера: без канала они устаревают
	if cs.State == realtime.StateDisconnected {
		a.Store.ClearLocks()
	}
}

func (a *App) onRetry(e api.RetryEvent) {
	metrics.RecordRequestRetry()
	a.logger.Info("retrying request",
		"method", e.Method, "path", e.Path, "attempt", e.Attempt, "delay", e.Delay, "error", e.Err)
}

// Status снимок состояния клиента
type Status struct {
	Auth *storage.AuthData
	// Locks позиция -> пользователь, который ее редактирует
	Locks       map[string]string
	OnlineUsers []string
	Realtime    realtime.ConnectionState
	Pending     int
	Unread      int
	Online      bool
}

// Status возвращает текущее состояние клиента
func (a *App) Status(ctx context.Context) (*Status, error) {
	n, err := a.Queue.Size(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count queued actions: %w", err)
	}
	st := &Status{
		Online:      a.Monitor.Online(),
		Pending:     n,
		Unread:      a.Store.UnreadCount(),
		Realtime:    a.Realtime.Status(),
		Locks:       a.Store.Locks(),
		OnlineUsers: a.Store.OnlineUsers(),
	}
	authData, err := a.Session.Current(ctx)
	switch {
	case err == nil:
		st.Auth = authData
	case !errors.Is(err, auth.ErrNotAuthenticated):
		return nil, err
	}
	return st, nil
}

// Login входит в систему и сохраняет сессию
func (a *App) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := a.Session.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	a.Monitor.SetOnline(true)
	return user, nil
}

// Logout завершает сессию и удаляет кэш ответов: ключ кэша не содержит
// пользователя. Очередь сохраняется до следующего входа.
func (a *App) Logout(ctx context.Context) error {
	if err := a.Session.Logout(ctx); err != nil {
		return err
	}
	a.Items.Replace(nil)
	if err := a.Cache.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// QueuedActions возвращает действия в порядке постановки.
// Пустой kind означает все действия.
func (a *App) QueuedActions(ctx context.Context, kind models.ActionKind) ([]*models.QueuedAction, error) {
	if kind == "" {
		return a.Queue.List(ctx)
	}
	return a.Queue.ListByKind(ctx, kind)
}

// Notifications возвращает уведомления, новые первыми
func (a *App) Notifications() []models.Notification {
	return a.Store.Notifications()
}
