package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/itemsync/internal/client/api"
	"github.com/iudanet/itemsync/internal/client/config"
	"github.com/iudanet/itemsync/internal/client/inventory"
	"github.com/iudanet/itemsync/internal/client/realtime"
	"github.com/iudanet/itemsync/internal/client/storage"
	"github.com/iudanet/itemsync/internal/models"
	pkgapi "github.com/iudanet/itemsync/pkg/api"
)

// fakeServer минимальный сервер инвентаря, который можно "выключить"
type fakeServer struct {
	*httptest.Server
	items    map[string]models.Item
	signals  chan pkgapi.Envelope
	requests []string
	nextID   int
	mu       sync.Mutex
	down     bool
}

func newFakeServer(t *testing.T, items ...models.Item) *fakeServer {
	t.Helper()
	s := &fakeServer{items: make(map[string]models.Item), nextID: 100, signals: make(chan pkgapi.Envelope, 16)}
	for _, it := range items {
		s.items[it.ID] = it
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /api/inventory", s.list)
	mux.HandleFunc("GET /api/inventory/{id}", s.get)
	mux.HandleFunc("POST /api/inventory", s.create)
	mux.HandleFunc("PATCH /api/inventory/{id}", s.update)
	mux.HandleFunc("POST /api/inventory/{id}/quantity", s.quantity)
	mux.HandleFunc("DELETE /api/inventory/{id}", s.delete)
	mux.HandleFunc("GET /ws", s.websocket)

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		down := s.down
		if !down && r.URL.Path != "/health" {
			s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		}
		s.mu.Unlock()

		if down {
			if hj, ok := w.(http.Hijacker); ok {
				if conn, _, err := hj.Hijack(); err == nil {
					_ = conn.Close()
				}
			}
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *fakeServer) setDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}

func (s *fakeServer) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *fakeServer) item(id string) (models.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	return it, ok
}

// websocket принимает любой токен и складывает сигналы клиента в signals
func (s *fakeServer) websocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var env pkgapi.Envelope
		if json.Unmarshal(data, &env) != nil {
			continue
		}
		select {
		case s.signals <- env:
		default:
		}
	}
}

func (s *fakeServer) signal(t *testing.T) pkgapi.Envelope {
	t.Helper()
	select {
	case env := <-s.signals:
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("no realtime signal")
		return pkgapi.Envelope{}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *fakeServer) list(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make(models.ItemList, 0, len(s.items))
	for _, it := range s.items {
		list = append(list, it)
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *fakeServer) get(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[r.PathValue("id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, pkgapi.ErrorResponse{Error: "not_found", Message: "Item not found"})
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *fakeServer) create(w http.ResponseWriter, r *http.Request) {
	var draft models.ItemDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, pkgapi.ErrorResponse{Error: "bad_request"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	it := draft.Apply(models.Item{ID: strconv.Itoa(s.nextID)})
	s.items[it.ID] = it
	writeJSON(w, http.StatusCreated, it)
}

func (s *fakeServer) update(w http.ResponseWriter, r *http.Request) {
	var draft models.ItemDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, pkgapi.ErrorResponse{Error: "bad_request"})
		return
	}
	if draft.SKU != nil && *draft.SKU == "" {
		writeJSON(w, http.StatusBadRequest, pkgapi.ErrorResponse{Error: "bad_request", Message: "SKU is required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[r.PathValue("id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, pkgapi.ErrorResponse{Error: "not_found", Message: "Item not found"})
		return
	}
	it = draft.Apply(it)
	s.items[it.ID] = it
	writeJSON(w, http.StatusOK, it)
}

func (s *fakeServer) quantity(w http.ResponseWriter, r *http.Request) {
	var req pkgapi.QuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, pkgapi.ErrorResponse{Error: "bad_request"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[r.PathValue("id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, pkgapi.ErrorResponse{Error: "not_found", Message: "Item not found"})
		return
	}
	it.Quantity = req.Quantity
	s.items[it.ID] = it
	writeJSON(w, http.StatusOK, it)
}

func (s *fakeServer) delete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := r.PathValue("id")
	if _, ok := s.items[id]; !ok {
		writeJSON(w, http.StatusNotFound, pkgapi.ErrorResponse{Error: "not_found", Message: "Item not found"})
		return
	}
	delete(s.items, id)
	writeJSON(w, http.StatusOK, pkgapi.DeleteResponse{ID: id, Deleted: true})
}

func testConfig(t *testing.T, serverURL string) *config.Config {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Server.URL = serverURL
	cfg.Storage.Path = filepath.Join(t.TempDir(), "client.db")
	cfg.Executor.Timeout = 2 * time.Second
	cfg.Executor.BaseDelay = time.Millisecond
	cfg.Executor.Attempts = 2
	cfg.Executor.Breaker = config.BreakerConfig{}
	cfg.Realtime.Enabled = false
	require.NoError(t, cfg.Validate())
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, a.Init(context.Background()))
	t.Cleanup(func() { _ = a.Dispose() })
	return a
}

var towels = models.Item{ID: "1", Name: "White Towels", SKU: "TWL-001", Quantity: 150, MinQuantity: 20}

func TestApp_InitAndStatus(t *testing.T) {
	srv := newFakeServer(t)
	a := newTestApp(t, testConfig(t, srv.URL))

	st, err := a.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, st.Online)
	assert.Zero(t, st.Pending)
	assert.Nil(t, st.Auth)
	assert.False(t, st.Realtime.Connected)
}

func TestApp_OnlineMutation(t *testing.T) {
	srv := newFakeServer(t, towels)
	a := newTestApp(t, testConfig(t, srv.URL))
	ctx := context.Background()

	name := "Bath Towels"
	res, err := a.UpdateItem(ctx, "1", models.ItemDraft{Name: &name})
	require.NoError(t, err)
	assert.False(t, res.Queued)
	require.NotNil(t, res.Item)
	assert.Equal(t, "Bath Towels", res.Item.Name)

	v, ok := a.Items.Get("1")
	require.True(t, ok)
	assert.Equal(t, "Bath Towels", v.Name)
	assert.False(t, v.Pending)

	n, err := a.Queue.Size(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestApp_ClientErrorIsNotQueued(t *testing.T) {
	srv := newFakeServer(t, towels)
	a := newTestApp(t, testConfig(t, srv.URL))
	ctx := context.Background()

	empty := ""
	_, err := a.UpdateItem(ctx, "1", models.ItemDraft{SKU: &empty})
	require.Error(t, err)
	assert.Equal(t, api.KindClient, api.KindOf(err))
	assert.Equal(t, http.StatusBadRequest, api.StatusOf(err))

	n, err := a.Queue.Size(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, a.Store.Notifications())
}

func TestApp_OfflineQuantityChangeIsQueuedAndReplayed(t *testing.T) {
	srv := newFakeServer(t, towels)
	a := newTestApp(t, testConfig(t, srv.URL))
	ctx := context.Background()

	view, err := a.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)

	srv.setDown(true)
	res, err := a.SetQuantity(ctx, "1", 145, "count")
	require.NoError(t, err)
	assert.True(t, res.Queued)
	assert.NotEmpty(t, res.ActionID)
	assert.False(t, a.Monitor.Online())

	v, ok := a.Items.Get("1")
	require.True(t, ok)
	assert.Equal(t, 145, v.Quantity)
	assert.True(t, v.Pending)

	notes := a.Store.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, "Action Queued", notes[0].Title)

	// список без сети берется из кэша
	view, err = a.ListItems(ctx)
	require.NoError(t, err)
	assert.True(t, view.Stale)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 145, view.Items[0].Quantity)

	// без сети проход не запускается
	result, err := a.Flush(ctx)
	require.NoError(t, err)
	assert.True(t, result.Halted)
	assert.Zero(t, result.Attempted)

	srv.setDown(false)
	a.Monitor.SetOnline(true)

	result, err = a.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)

	st, err := a.Status(ctx)
	require.NoError(t, err)
	assert.Zero(t, st.Pending)

	serverItem, ok := srv.item("1")
	require.True(t, ok)
	assert.Equal(t, 145, serverItem.Quantity)
	assert.Contains(t, srv.seen(), "POST /api/inventory/1/quantity")

	v, ok = a.Items.Get("1")
	require.True(t, ok)
	assert.Equal(t, 145, v.Quantity)
	assert.False(t, v.Pending)
	assert.Equal(t, "Sync Complete", a.Store.Notifications()[0].Title)
}

func TestApp_QueueSurvivesRestart(t *testing.T) {
	srv := newFakeServer(t, towels)
	cfg := testConfig(t, srv.URL)
	ctx := context.Background()

	first := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, first.Init(ctx))

	srv.setDown(true)
	name, sku := "Hand Soap", "SOP-010"
	res, err := first.CreateItem(ctx, models.ItemDraft{Name: &name, SKU: &sku})
	require.NoError(t, err)
	require.True(t, res.Queued)
	require.NoError(t, first.Dispose())

	second := newTestApp(t, cfg)
	st, err := second.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Pending)

	v, ok := second.Items.Get(inventory.PendingPrefix + res.ActionID)
	require.True(t, ok)
	assert.Equal(t, "Hand Soap", v.Name)
	assert.True(t, v.Pending)
}

func TestApp_DeletePendingCreateDropsQueuedAction(t *testing.T) {
	srv := newFakeServer(t)
	a := newTestApp(t, testConfig(t, srv.URL))
	ctx := context.Background()

	srv.setDown(true)
	name, sku := "Hand Soap", "SOP-010"
	res, err := a.CreateItem(ctx, models.ItemDraft{Name: &name, SKU: &sku})
	require.NoError(t, err)
	require.True(t, res.Queued)

	pendingID := inventory.PendingPrefix + res.ActionID
	_, err = a.UpdateItem(ctx, pendingID, models.ItemDraft{Name: &name})
	assert.ErrorIs(t, err, ErrPendingItem)

	_, err = a.DeleteItem(ctx, pendingID)
	require.NoError(t, err)

	n, err := a.Queue.Size(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	_, ok := a.Items.Get(pendingID)
	assert.False(t, ok)
	assert.Empty(t, srv.seen())
}

func TestApp_DeleteOnline(t *testing.T) {
	srv := newFakeServer(t, towels)
	a := newTestApp(t, testConfig(t, srv.URL))
	ctx := context.Background()

	_, err := a.ListItems(ctx)
	require.NoError(t, err)

	res, err := a.DeleteItem(ctx, "1")
	require.NoError(t, err)
	assert.False(t, res.Queued)

	_, ok := a.Items.Get("1")
	assert.False(t, ok)
	_, ok = srv.item("1")
	assert.False(t, ok)
}

func TestApp_CreateValidatesDraft(t *testing.T) {
	srv := newFakeServer(t)
	a := newTestApp(t, testConfig(t, srv.URL))

	name := "No SKU"
	_, err := a.CreateItem(context.Background(), models.ItemDraft{Name: &name})
	require.Error(t, err)
	assert.Empty(t, srv.seen())
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	srv := newFakeServer(t)
	cfg := testConfig(t, srv.URL)
	cfg.Monitor.CheckInterval = 50 * time.Millisecond
	a := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestApp_LogoutClearsResponseCache(t *testing.T) {
	srv := newFakeServer(t, towels)
	a := newTestApp(t, testConfig(t, srv.URL))
	ctx := context.Background()

	_, err := a.ListItems(ctx)
	require.NoError(t, err)
	names, err := a.db.ListNamespaces(ctx)
	require.NoError(t, err)
	require.Contains(t, names, a.Cache.APINamespace())

	require.NoError(t, a.Logout(ctx))

	names, err = a.db.ListNamespaces(ctx)
	require.NoError(t, err)
	assert.NotContains(t, names, a.Cache.APINamespace())
	assert.Empty(t, a.Items.List())

	// следующий пользователь офлайн не видит список предыдущего
	srv.setDown(true)
	view, err := a.ListItems(ctx)
	require.NoError(t, err)
	assert.True(t, view.Stale)
	assert.Empty(t, view.Items)
}

func TestApp_QueuedActionsByKind(t *testing.T) {
	bolts := models.Item{ID: "2", Name: "Bolts", SKU: "BLT-1", Quantity: 10}
	srv := newFakeServer(t, towels, bolts)
	a := newTestApp(t, testConfig(t, srv.URL))
	ctx := context.Background()

	srv.setDown(true)
	_, err := a.SetQuantity(ctx, "1", 145, "")
	require.NoError(t, err)
	_, err = a.DeleteItem(ctx, "2")
	require.NoError(t, err)

	all, err := a.QueuedActions(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	deletes, err := a.QueuedActions(ctx, models.ActionDelete)
	require.NoError(t, err)
	require.Len(t, deletes, 1)
	assert.Equal(t, "/inventory/2", deletes[0].Endpoint)
}

func TestApp_ItemLockIgnoresOwnLock(t *testing.T) {
	srv := newFakeServer(t)
	a := newTestApp(t, testConfig(t, srv.URL))
	ctx := context.Background()

	_, locked := a.ItemLock(ctx, "1")
	assert.False(t, locked)

	a.Store.SetLock("1", "u2")
	holder, locked := a.ItemLock(ctx, "1")
	assert.True(t, locked)
	assert.Equal(t, "u2", holder)

	require.NoError(t, a.db.SaveAuth(ctx, &storage.AuthData{UserID: "u2", AccessToken: "a", RefreshToken: "r"}))
	_, locked = a.ItemLock(ctx, "1")
	assert.False(t, locked)
}

func TestApp_StatusShowsPresence(t *testing.T) {
	srv := newFakeServer(t)
	a := newTestApp(t, testConfig(t, srv.URL))

	a.Store.SetOnline("bob")
	a.Store.SetOnline("alice")
	a.Store.SetLock("7", "bob")

	st, err := a.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, st.OnlineUsers)
	assert.Equal(t, map[string]string{"7": "bob"}, st.Locks)
}

func TestApp_NotificationActions(t *testing.T) {
	srv := newFakeServer(t)
	a := newTestApp(t, testConfig(t, srv.URL))

	first := a.Store.AddNotification(models.Notification{Title: "Sync Failed", Persistent: true})
	second := a.Store.AddNotification(models.Notification{Title: "Action Queued"})
	require.Equal(t, 2, a.Store.UnreadCount())

	assert.True(t, a.MarkNotificationRead(first.ID))
	assert.False(t, a.MarkNotificationRead("missing"))
	assert.Equal(t, 1, a.Store.UnreadCount())

	a.MarkAllNotificationsRead()
	assert.Zero(t, a.Store.UnreadCount())

	assert.True(t, a.DismissNotification(first.ID))
	assert.False(t, a.DismissNotification(first.ID))
	notes := a.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, second.ID, notes[0].ID)
}

func TestApp_BulkSetQuantity(t *testing.T) {
	bolts := models.Item{ID: "2", Name: "Bolts", SKU: "BLT-1", Quantity: 10}
	srv := newFakeServer(t, towels, bolts)
	a := newTestApp(t, testConfig(t, srv.URL))
	ctx := context.Background()

	results, err := a.BulkSetQuantity(ctx, []string{"1", "2"}, 80, "delivery")
	require.NoError(t, err)
	assert.Len(t, results, 2)

	for _, id := range []string{"1", "2"} {
		it, ok := srv.item(id)
		require.True(t, ok)
		assert.Equal(t, 80, it.Quantity)
	}

	_, err = a.BulkSetQuantity(ctx, nil, 1, "")
	assert.Error(t, err)

	results, err = a.BulkSetQuantity(ctx, []string{"1", inventory.PendingPrefix + "x"}, 5, "")
	require.ErrorIs(t, err, ErrPendingItem)
	assert.Len(t, results, 1)
}

func TestApp_AcknowledgeLowStockNeedsRealtime(t *testing.T) {
	srv := newFakeServer(t)
	a := newTestApp(t, testConfig(t, srv.URL))

	assert.ErrorIs(t, a.AcknowledgeLowStock("1"), ErrRealtimeUnavailable)
}

func TestApp_MutationSendsEditingSignals(t *testing.T) {
	srv := newFakeServer(t, towels)
	a := newTestApp(t, testConfig(t, srv.URL))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, a.db.SaveAuth(ctx, &storage.AuthData{
		UserID: "u1", AccessToken: "a", RefreshToken: "r", ExpiresAt: time.Now().Add(time.Hour),
	}))

	done := make(chan error, 1)
	go func() { done <- a.Realtime.Run(ctx) }()
	require.Eventually(t, func() bool { return a.Realtime.State() == realtime.StateConnected },
		2*time.Second, 5*time.Millisecond)
	assert.Equal(t, pkgapi.TagSubscribe, srv.signal(t).Type)

	_, err := a.SetQuantity(ctx, "1", 140, "recount")
	require.NoError(t, err)

	editing := srv.signal(t)
	assert.Equal(t, pkgapi.TagEditing, editing.Type)
	assert.JSONEq(t, `{"itemId":"1"}`, string(editing.Payload))
	assert.Equal(t, pkgapi.TagEditingDone, srv.signal(t).Type)

	require.NoError(t, a.AcknowledgeLowStock("1"))
	assert.Equal(t, pkgapi.TagLowStockAcknowledge, srv.signal(t).Type)

	_, err = a.BulkSetQuantity(ctx, []string{"1"}, 150, "")
	require.NoError(t, err)
	bulk := srv.signal(t)
	assert.Equal(t, pkgapi.TagBulkStart, bulk.Type)
	assert.JSONEq(t, `{"type":"quantity","itemIds":["1"]}`, string(bulk.Payload))

	cancel()
	require.NoError(t, <-done)
}
