package network

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recorder struct {
	got []bool
	mu  sync.Mutex
}

func (r *recorder) listen(online bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, online)
}

func (r *recorder) events() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.got...)
}

func TestMonitor_StartsOnline(t *testing.T) {
	m := NewMonitor(nil, "http://localhost/health", 0, testLogger())
	assert.True(t, m.Online())
	assert.Equal(t, DefaultCheckInterval, m.interval)
}

func TestMonitor_SetOnlineNotifiesOnTransitions(t *testing.T) {
	m := NewMonitor(nil, "http://localhost/health", time.Second, testLogger())
	rec := &recorder{}
	unsubscribe := m.OnChange(rec.listen)

	m.SetOnline(true) // без изменений
	m.SetOnline(false)
	m.SetOnline(false)
	m.SetOnline(true)

	assert.Equal(t, []bool{false, true}, rec.events())

	unsubscribe()
	m.SetOnline(false)
	assert.Len(t, rec.events(), 2)
	assert.False(t, m.Online())
}

func TestMonitor_Check(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	m := NewMonitor(server.Client(), server.URL+"/health", time.Second, testLogger())
	rec := &recorder{}
	m.OnChange(rec.listen)

	// любой ответ сервера означает, что сеть есть
	assert.True(t, m.Check(context.Background()))

	server.Close()
	assert.False(t, m.Check(context.Background()))
	assert.False(t, m.Online())
	assert.Equal(t, []bool{false}, rec.events())
}

func TestMonitor_CheckCancelledKeepsState(t *testing.T) {
	m := NewMonitor(nil, "http://127.0.0.1:1/health", time.Second, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.True(t, m.Check(ctx))
	assert.True(t, m.Online())
}

func TestMonitor_RunDetectsRecovery(t *testing.T) {
	var mu sync.Mutex
	up := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if !up {
			// обрываем соединение, клиент видит сетевую ошибку
			hj, ok := w.(http.Hijacker)
			if !ok {
				return
			}
			if conn, _, err := hj.Hijack(); err == nil {
				_ = conn.Close()
			}
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	m := NewMonitor(server.Client(), server.URL+"/health", 10*time.Millisecond, testLogger())
	back := make(chan struct{})
	var once sync.Once
	m.OnChange(func(online bool) {
		if online {
			once.Do(func() { close(back) })
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	require.Eventually(t, func() bool { return !m.Online() }, time.Second, 5*time.Millisecond)

	mu.Lock()
	up = true
	mu.Unlock()

	select {
	case <-back:
	case <-time.After(time.Second):
		t.Fatal("monitor did not report recovery")
	}

	cancel()
	assert.NoError(t, <-done)
}
