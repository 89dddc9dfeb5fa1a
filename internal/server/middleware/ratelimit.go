package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/iudanet/itemsync/internal/server/handlers"
)

// RateLimiter ограничивает частоту запросов по ключу (обычно IP адрес).
// Для каждого ключа свой token bucket из golang.org/x/time/rate.
type RateLimiter struct {
	visitors map[string]*visitor
	logger   *slog.Logger
	cleanupC chan struct{}
	now      func() time.Time
	limit    rate.Limit
	burst    int
	window   time.Duration
	interval time.Duration
	mu       sync.Mutex
	stopOnce sync.Once
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter создает новый rate limiter
// requests - максимальное количество запросов за window, они же размер всплеска
func NewRateLimiter(requests int, window time.Duration, logger *slog.Logger) *RateLimiter {
	requests = max(requests, 1)
	if window <= 0 {
		window = time.Minute
	}
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		logger:   logger,
		cleanupC: make(chan struct{}),
		now:      time.Now,
		limit:    rate.Every(window / time.Duration(requests)),
		burst:    requests,
		window:   window,
		interval: window / time.Duration(requests),
	}

	go rl.cleanup()

	return rl
}

// cleanup периодически удаляет неактивных посетителей
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupVisitors()
		case <-rl.cleanupC:
			return
		}
	}
}

// cleanupVisitors удаляет ключи, не встречавшиеся дольше двух окон.
// За это время bucket гарантированно успевает наполниться.
func (rl *RateLimiter) cleanupVisitors() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.window*2 {
			delete(rl.visitors, key)
			removed++
		}
	}
	return removed
}

// Stop останавливает cleanup goroutine. Повторный вызов безопасен.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.cleanupC) })
}

// Allow проверяет, разрешен ли запрос для данного ключа
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	now := rl.now()
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	rl.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// RateLimitMiddleware создает middleware для ограничения частоты запросов
func RateLimitMiddleware(limiter *RateLimiter) func(http.Handler) http.Handler {
	// через interval в bucket появляется следующий токен
	retryAfter := strconv.Itoa(max(1, int(math.Ceil(limiter.interval.Seconds()))))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := getClientIP(r)

			if !limiter.Allow(key) {
				limiter.logger.Warn("Rate limit exceeded",
					"ip", key,
					"method", r.Method,
					"path", r.URL.Path,
				)

				w.Header().Set("Retry-After", retryAfter)
				handlers.WriteError(w, limiter.logger, "rate limit exceeded, please try again later", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP извлекает IP адрес клиента из запроса.
// X-Forwarded-For и X-Real-IP разбирает chi middleware.RealIP перед этим middleware.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
