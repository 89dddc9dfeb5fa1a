package sync

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/itemsync/internal/client/api"
	"github.com/iudanet/itemsync/internal/client/inventory"
	"github.com/iudanet/itemsync/internal/client/queue"
	"github.com/iudanet/itemsync/internal/client/retry"
	"github.com/iudanet/itemsync/internal/client/storage/memory"
	"github.com/iudanet/itemsync/internal/client/store"
	"github.com/iudanet/itemsync/internal/models"
	pkgapi "github.com/iudanet/itemsync/pkg/api"
)

type testEnv struct {
	svc   *service
	queue *queue.Queue
	store *store.Store
	items *inventory.Cache
	clock time.Time
	mu    sync.Mutex
}

func (e *testEnv) now() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock
}

func (e *testEnv) advance(d time.Duration) {
	e.mu.Lock()
	e.clock = e.clock.Add(d)
	e.mu.Unlock()
}

func (e *testEnv) enqueue(t *testing.T, kind models.ActionKind, method, endpoint, payload string) string {
	t.Helper()
	a := &models.QueuedAction{Kind: kind, Method: method, Endpoint: endpoint}
	if payload != "" {
		a.Payload = []byte(payload)
	}
	id, err := e.queue.Enqueue(context.Background(), a)
	require.NoError(t, err)
	a.ID = id
	e.items.AddPending(inventory.PendingFromAction(a))
	return id
}

func (e *testEnv) size(t *testing.T) int {
	t.Helper()
	n, err := e.svc.GetPendingSyncCount(context.Background())
	require.NoError(t, err)
	return n
}

func newTestEnv(t *testing.T, serverURL string, tokens api.TokenSource) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	client := api.NewClient(serverURL+"/api", api.WithLogger(logger), api.WithTimeout(time.Second))
	if tokens != nil {
		client.SetTokenSource(tokens)
	}

	env := &testEnv{
		queue: queue.New(memory.New(), logger),
		store: store.New(0),
		items: inventory.NewCache(),
		clock: time.Date(2026, 8, 3, 7, 0, 0, 0, time.UTC),
	}
	policy := retry.Policy{MaxRetries: 3, BaseDelay: time.Second}
	env.svc = NewService(env.queue, client, env.store, env.items, policy, logger).(*service)
	env.svc.now = env.now
	return env
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestSync_ScenarioA_OfflineQuantityChangeSyncs(t *testing.T) {
	towels := models.Item{ID: "1", Name: "White Towels", SKU: "TWL-001", Quantity: 150}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/inventory/1", r.URL.Path)

		var draft models.ItemDraft
		require.NoError(t, json.NewDecoder(r.Body).Decode(&draft))
		updated := draft.Apply(towels)
		writeJSON(w, http.StatusOK, updated)
	}))
	defer server.Close()

	env := newTestEnv(t, server.URL, nil)
	env.items.Replace([]models.Item{towels})
	env.enqueue(t, models.ActionUpdate, http.MethodPatch, "/inventory/1", `{"quantity":145}`)
	require.Equal(t, 1, env.size(t))

	result, err := env.svc.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Attempted)
	assert.Equal(t, 1, result.Succeeded)
	assert.Zero(t, env.size(t))

	notes := env.store.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, models.SeveritySuccess, notes[0].Severity)
	assert.Equal(t, "Sync Complete", notes[0].Title)
	assert.False(t, notes[0].Persistent)

	v, ok := env.items.Get("1")
	require.True(t, ok)
	assert.Equal(t, 145, v.Quantity)
	assert.False(t, v.Pending)
}

func TestSync_ScenarioB_GoneItemAbandonedImmediately(t *testing.T) {
	var deletes atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			deletes.Add(1)
			writeJSON(w, http.StatusNotFound, pkgapi.ErrorResponse{Error: "not_found", Message: "Item not found"})
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	env := newTestEnv(t, server.URL, nil)
	env.enqueue(t, models.ActionDelete, http.MethodDelete, "/inventory/42", "")
	env.enqueue(t, models.ActionUpdate, http.MethodPatch, "/inventory/7", `{"name":"Pillows"}`)
	require.Equal(t, 2, env.size(t))

	result, err := env.svc.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Abandoned)
	assert.Equal(t, 1, result.Retried)
	assert.Equal(t, int32(1), deletes.Load(), "404 is not retried")
	assert.Equal(t, 1, env.size(t), "queue shrinks by exactly one")

	notes := env.store.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, models.SeverityError, notes[0].Severity)
	assert.Contains(t, notes[0].Message, "DELETE")
	assert.Contains(t, notes[0].Message, "Item not found")
}

func TestSync_ScenarioC_AbandonAfterThreeServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	env := newTestEnv(t, server.URL, nil)
	id := env.enqueue(t, models.ActionUpdate, http.MethodPatch, "/inventory/1", `{"quantity":145}`)
	ctx := context.Background()

	// 1-я неудача
	result, err := env.svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Retried)
	action, err := env.queue.List(ctx)
	require.NoError(t, err)
	require.Len(t, action, 1)
	assert.Equal(t, id, action[0].ID)
	assert.Equal(t, 1, action[0].RetryCount)

	// До истечения задержки действие не отправляется
	result, err = env.svc.Sync(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Attempted)
	assert.Equal(t, 1, result.Deferred)

	// 2-я неудача после 1s
	env.advance(time.Second)
	_, err = env.svc.Sync(ctx)
	require.NoError(t, err)

	// задержка удваивается
	env.advance(time.Second)
	result, err = env.svc.Sync(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Attempted)

	// 3-я неудача удаляет действие
	env.advance(time.Second)
	result, err = env.svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Abandoned)
	assert.Zero(t, env.size(t))
	assert.Equal(t, int32(3), calls.Load())

	notes := env.store.Notifications()
	require.Len(t, notes, 1)
	assert.True(t, notes[0].Persistent)
	assert.Equal(t, "Sync Failed", notes[0].Title)
	assert.Contains(t, notes[0].Message, "UPDATE action could not be synced after 3 attempts")

	// Постоянное уведомление остается, пока его не удалят
	env.store.MarkAllRead()
	assert.Len(t, env.store.Notifications(), 1)
	env.store.Remove(notes[0].ID)
	assert.Empty(t, env.store.Notifications())
}

func TestSync_NetworkLossHaltsPass(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	env := newTestEnv(t, url, nil)
	env.enqueue(t, models.ActionUpdate, http.MethodPatch, "/inventory/1", `{}`)
	env.enqueue(t, models.ActionUpdate, http.MethodPatch, "/inventory/2", `{}`)

	result, err := env.svc.Sync(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Halted)
	assert.Equal(t, 1, result.Attempted)
	assert.Equal(t, 2, env.size(t))
	assert.Empty(t, env.store.Notifications())
}

func TestSync_DependentActionsWaitForEarlierOnes(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.Path)
		mu.Unlock()
		if strings.HasPrefix(r.URL.Path, "/api/inventory/1") {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{})
	}))
	defer server.Close()

	env := newTestEnv(t, server.URL, nil)
	env.enqueue(t, models.ActionUpdate, http.MethodPatch, "/inventory/1", `{"name":"Towels"}`)
	env.enqueue(t, models.ActionUpdate, http.MethodPost, "/inventory/1/quantity", `{"quantity":140}`)
	env.enqueue(t, models.ActionDelete, http.MethodDelete, "/inventory/2", "")

	result, err := env.svc.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Retried)
	assert.Equal(t, 1, result.Deferred)
	assert.Equal(t, 1, result.Succeeded)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"PATCH /api/inventory/1", "DELETE /api/inventory/2"}, seen)

	list, err := env.queue.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Zero(t, list[1].RetryCount, "deferred action keeps its attempts")
}

func TestSync_AuthFailureKeepsQueue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, pkgapi.ErrorResponse{Error: "unauthorized"})
	}))
	defer server.Close()

	tokens := &api.TokenSourceMock{
		AccessTokenFunc:       func(ctx context.Context) (string, error) { return "expired", nil },
		RefreshFunc:           func(ctx context.Context) (string, error) { return "", errors.New("revoked") },
		HandleAuthFailureFunc: func(ctx context.Context, err error) {},
	}
	env := newTestEnv(t, server.URL, tokens)
	env.enqueue(t, models.ActionUpdate, http.MethodPatch, "/inventory/1", `{}`)
	env.enqueue(t, models.ActionUpdate, http.MethodPatch, "/inventory/2", `{}`)

	result, err := env.svc.Sync(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Halted)
	assert.Equal(t, 1, result.Attempted)
	assert.Equal(t, 2, env.size(t))

	list, err := env.queue.List(context.Background())
	require.NoError(t, err)
	assert.Zero(t, list[0].RetryCount)
	assert.Len(t, tokens.HandleAuthFailureCalls(), 1)
}

func TestSync_ConcurrentPassIsSkipped(t *testing.T) {
	arrived := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(arrived) })
		<-release
		writeJSON(w, http.StatusOK, map[string]any{})
	}))
	defer server.Close()

	env := newTestEnv(t, server.URL, nil)
	env.enqueue(t, models.ActionDelete, http.MethodDelete, "/inventory/1", "")

	done := make(chan *SyncResult, 1)
	go func() {
		r, err := env.svc.Sync(context.Background())
		assert.NoError(t, err)
		done <- r
	}()

	<-arrived
	second, err := env.svc.Sync(context.Background())
	require.NoError(t, err)
	assert.True(t, second.Skipped)
	assert.Zero(t, second.Attempted)

	close(release)
	first := <-done
	assert.Equal(t, 1, first.Succeeded)
	assert.Zero(t, env.size(t))
}
