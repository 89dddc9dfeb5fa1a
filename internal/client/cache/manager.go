// Package cache intercepts GET requests at the http.RoundTripper boundary.
//
// Static assets are served cache-first with background revalidation,
// API reads (paths containing /api/) network-first with a stale fallback.
// Responses live in two namespaces versioned by the build id, so a new
// build starts with empty caches after Activate.
package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/iudanet/itemsync/internal/client/metrics"
	"github.com/iudanet/itemsync/internal/client/storage"
	"github.com/iudanet/itemsync/pkg/api"
)

const (
	// Prefix общий префикс всех пространств кэша
	Prefix = "itemsync-"
	// OfflinePath резервный документ для неудачной навигации
	OfflinePath = "/offline.html"

	strategyCacheFirst   = "cache-first"
	strategyNetworkFirst = "network-first"

	revalidateTimeout = 30 * time.Second
)

// StaticAssets ресурсы, которые кладутся в кэш при установке
var StaticAssets = []string{"/", "/manifest.json", OfflinePath}

// Manager http.RoundTripper с кэшированием GET запросов
type Manager struct {
	next   http.RoundTripper
	store  storage.CacheStorage
	logger *slog.Logger
	now    func() time.Time
	build  string
	wg     sync.WaitGroup
}

var _ http.RoundTripper = (*Manager)(nil)

// New создает менеджер кэша поверх транспорта next.
// next == nil означает http.DefaultTransport.
func New(next http.RoundTripper, store storage.CacheStorage, build string, logger *slog.Logger) *Manager {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Manager{
		next:   next,
		store:  store,
		logger: logger,
		now:    time.Now,
		build:  build,
	}
}

// StaticNamespace пространство статических ресурсов текущей сборки
func (m *Manager) StaticNamespace() string {
	return Prefix + "static-" + m.build
}

// APINamespace пространство ответов API текущей сборки
func (m *Manager) APINamespace() string {
	return Prefix + "api-" + m.build
}

// RoundTrip выбирает стратегию по классу запроса.
// Не-GET запросы проходят мимо кэша.
func (m *Manager) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return m.next.RoundTrip(req)
	}
	if isAPIRequest(req) {
		return m.networkFirst(req)
	}
	return m.cacheFirst(req)
}

// Activate удаляет пространства предыдущих сборок
func (m *Manager) Activate(ctx context.Context) error {
	names, err := m.store.ListNamespaces(ctx)
	if err != nil {
		return fmt.Errorf("failed to list cache namespaces: %w", err)
	}

	current := map[string]bool{m.StaticNamespace(): true, m.APINamespace(): true}
	for _, ns := range names {
		if !strings.HasPrefix(ns, Prefix) || current[ns] {
			continue
		}
		if err := m.store.DeleteNamespace(ctx, ns); err != nil {
			return fmt.Errorf("failed to purge cache namespace %s: %w", ns, err)
		}
		m.logger.Info("purged stale cache namespace", "namespace", ns)
	}
	return nil
}

// Precache загружает статические ресурсы в кэш.
// Ошибка одного ресурса не прерывает загрузку остальных.
func (m *Manager) Precache(ctx context.Context, baseURL string, paths []string) error {
	var errs []error
	for _, p := range paths {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+p, nil)
		if err != nil {
			errs = append(errs, fmt.Errorf("precache %s: %w", p, err))
			continue
		}
		if err := m.fetchAndStore(req, m.StaticNamespace()); err != nil {
			errs = append(errs, fmt.Errorf("precache %s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

// Clear удаляет все пространства кэша
func (m *Manager) Clear(ctx context.Context) error {
	names, err := m.store.ListNamespaces(ctx)
	if err != nil {
		return fmt.Errorf("failed to list cache namespaces: %w", err)
	}
	for _, ns := range names {
		if !strings.HasPrefix(ns, Prefix) {
			continue
		}
		if err := m.store.DeleteNamespace(ctx, ns); err != nil {
			return fmt.Errorf("failed to delete cache namespace %s: %w", ns, err)
		}
	}
	return nil
}

// Wait дожидается фоновых перепроверок
func (m *Manager) Wait() {
	m.wg.Wait()
}

// cacheFirst отдает запись из кэша сразу и обновляет ее в фоне
func (m *Manager) cacheFirst(req *http.Request) (*http.Response, error) {
	ns := m.StaticNamespace()
	key := requestKey(req)

	entry, err := m.store.GetEntry(req.Context(), ns, key)
	if err == nil {
		metrics.RecordCacheResult(strategyCacheFirst, "hit")
		m.revalidate(req, ns)
		return entryResponse(req, entry), nil
	}
	if !errors.Is(err, storage.ErrCacheMiss) {
		m.logger.Warn("cache read failed", "key", key, "error", err)
	}

	resp, err := m.next.RoundTrip(req)
	if err != nil {
		if req.Context().Err() != nil {
			return nil, err
		}
		metrics.RecordCacheResult(strategyCacheFirst, "offline")
		return m.offlineStatic(req), nil
	}

	metrics.RecordCacheResult(strategyCacheFirst, "miss")
	return m.storeResponse(req, ns, resp)
}

// networkFirst идет в сеть, при сетевой ошибке отдает последнюю запись
// с пометкой X-From-Cache или структурированный 503
func (m *Manager) networkFirst(req *http.Request) (*http.Response, error) {
	ns := m.APINamespace()

	resp, err := m.next.RoundTrip(req)
	if err == nil {
		metrics.RecordCacheResult(strategyNetworkFirst, "network")
		return m.storeResponse(req, ns, resp)
	}
	if req.Context().Err() != nil {
		return nil, err
	}

	entry, cacheErr := m.store.GetEntry(req.Context(), ns, requestKey(req))
	if cacheErr != nil {
		metrics.RecordCacheResult(strategyNetworkFirst, "offline")
		m.logger.Debug("network failed and nothing cached", "url", req.URL.String(), "error", err)
		return offlineJSON(req), nil
	}

	metrics.RecordCacheResult(strategyNetworkFirst, "stale")
	m.logger.Debug("serving stale response", "url", req.URL.String(), "stored_at", entry.StoredAt)
	resp = entryResponse(req, entry)
	resp.Header.Set(api.HeaderFromCache, "true")
	resp.Header.Set(api.HeaderCacheTime, entry.StoredAt.UTC().Format(time.RFC3339))
	return resp, nil
}

// revalidate обновляет запись в фоне, ошибки только логируются
func (m *Manager) revalidate(req *http.Request, ns string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(req.Context()), revalidateTimeout)
	bg := req.Clone(ctx)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer cancel()
		if err := m.fetchAndStore(bg, ns); err != nil {
			m.logger.Debug("background revalidation failed", "url", bg.URL.String(), "error", err)
		}
	}()
}

func (m *Manager) fetchAndStore(req *http.Request, ns string) error {
	resp, err := m.next.RoundTrip(req)
	if err != nil {
		return err
	}
	resp, err = m.storeResponse(req, ns, resp)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// storeResponse сохраняет успешный ответ и возвращает его с
// перечитываемым телом
func (m *Manager) storeResponse(req *http.Request, ns string, resp *http.Response) (*http.Response, error) {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))

	entry := &storage.CacheEntry{
		Status:   resp.StatusCode,
		Header:   resp.Header.Clone(),
		Body:     body,
		StoredAt: m.now(),
	}
	if err := m.store.PutEntry(req.Context(), ns, requestKey(req), entry); err != nil {
		m.logger.Warn("failed to store cache entry", "url", req.URL.String(), "error", err)
	}
	return resp, nil
}

// offlineStatic резервный документ для навигации или текстовый 503
func (m *Manager) offlineStatic(req *http.Request) *http.Response {
	if isNavigation(req) {
		u := *req.URL
		u.Path, u.RawQuery, u.Fragment = OfflinePath, "", ""
		if entry, err := m.store.GetEntry(req.Context(), m.StaticNamespace(), u.String()); err == nil {
			return entryResponse(req, entry)
		}
	}

	resp := newResponse(req, http.StatusServiceUnavailable, []byte("Offline"))
	resp.Header.Set("Content-Type", "text/plain; charset=utf-8")
	resp.Header.Set(api.HeaderOffline, "true")
	return resp
}

func offlineJSON(req *http.Request) *http.Response {
	resp := newResponse(req, http.StatusServiceUnavailable,
		[]byte(`{"error":"Offline","message":"No cached data available"}`))
	resp.Header.Set("Content-Type", "application/json")
	resp.Header.Set(api.HeaderOffline, "true")
	return resp
}

func entryResponse(req *http.Request, entry *storage.CacheEntry) *http.Response {
	resp := newResponse(req, entry.Status, entry.Body)
	for k, v := range entry.Header {
		resp.Header[k] = append([]string(nil), v...)
	}
	return resp
}

func newResponse(req *http.Request, status int, body []byte) *http.Response {
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        make(http.Header),
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

func requestKey(req *http.Request) string {
	u := *req.URL
	u.Fragment = ""
	return u.String()
}

func isAPIRequest(req *http.Request) bool {
	return strings.Contains(req.URL.Path, "/api/")
}

func isNavigation(req *http.Request) bool {
	return req.Header.Get("Sec-Fetch-Mode") == "navigate" ||
		strings.Contains(req.Header.Get("Accept"), "text/html")
}
