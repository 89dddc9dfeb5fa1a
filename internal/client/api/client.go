package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	"github.com/iudanet/itemsync/internal/client/retry"
	"github.com/iudanet/itemsync/pkg/api"
)

const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxAttempts = 3
)

//go:generate moq -out tokensource_mock.go . TokenSource

// TokenSource владелец сессии. Client берет у него access token,
// просит обновить его при 401 и сообщает о потере сессии.
type TokenSource interface {
	// AccessToken возвращает текущий access token или пустую строку
	AccessToken(ctx context.Context) (string, error)

	// Refresh обменивает refresh token на новую пару и возвращает access token
	Refresh(ctx context.Context) (string, error)

	// HandleAuthFailure вызывается при каждой неудаче refresh.
	// Реализация сама гарантирует, что сессия очищается один раз.
	HandleAuthFailure(ctx context.Context, err error)
}

// RetryEvent описывает запланированный повтор запроса
type RetryEvent struct {
	Err     error
	Method  string
	Path    string
	Attempt int
	Delay   time.Duration
}

// RequestOptions параметры одного вызова Execute
type RequestOptions struct {
	// Out цель декодирования тела 2xx ответа
	Out any
	// Validate проверить Out через validation.Validatable после декодирования
	Validate bool
	// MaxAttempts 0 означает значение клиента, 1 отключает повторы
	MaxAttempts int
	// SkipAuth не брать токен у TokenSource и не обрабатывать 401 (login, refresh)
	SkipAuth bool
	// bearer явный токен для SkipAuth запросов (logout)
	bearer string
}

// Result ответ сервера или кэша
type Result struct {
	CachedAt time.Time
	Header   http.Header
	Body     []byte
	Status   int
	// Stale ответ отдан из кэша, сеть недоступна
	Stale bool
}

// Decode декодирует JSON тело ответа
func (r *Result) Decode(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Client представляет HTTP клиент для взаимодействия с сервером.
// Каждый запрос ограничен таймаутом, 5xx и сетевые ошибки повторяются
// с экспоненциальной задержкой, 401 запускает единственный на процесс refresh.
type Client struct {
	httpClient *http.Client
	tokens     TokenSource
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	logger     *slog.Logger
	onRetry    func(RetryEvent)
	pending    map[uint64]context.CancelFunc
	refresh    singleflight.Group
	baseURL    string
	policy     retry.Policy
	timeout    time.Duration
	attempts   int
	mu         sync.Mutex
	seq        uint64
}

// Option настраивает Client
type Option func(*Client)

// WithTransport подменяет http.RoundTripper (кэш, тесты)
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.httpClient.Transport = rt }
}

// WithTimeout задает таймаут одной попытки
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetry задает число попыток и базовую задержку для прямых вызовов
func WithRetry(attempts int, base time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		c.policy.BaseDelay = base
	}
}

// WithLogger задает логгер
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithOnRetry регистрирует хук, вызываемый перед каждым повтором
func WithOnRetry(fn func(RetryEvent)) Option {
	return func(c *Client) { c.onRetry = fn }
}

// BreakerSettings параметры circuit breaker перед транспортом
type BreakerSettings struct {
	// OpenTimeout сколько breaker остается открытым
	OpenTimeout time.Duration
	// Failures подряд идущих сетевых ошибок для размыкания
	Failures uint32
}

// WithBreaker включает circuit breaker. Пока он разомкнут, запросы
// сразу завершаются с KindNetwork, не дожидаясь таймаута.
func WithBreaker(s BreakerSettings) Option {
	return func(c *Client) {
		if s.Failures == 0 {
			return
		}
		c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:        "itemsync-api",
			MaxRequests: 1,
			Timeout:     s.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= s.Failures
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				c.logger.Info("circuit breaker state changed",
					"name", name, "from", from.String(), "to", to.String())
			},
		})
	}
}

// NewClient создает новый API клиент. baseURL включает префикс /api.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
		logger:   slog.Default(),
		policy:   retry.DefaultPolicy(),
		timeout:  DefaultTimeout,
		attempts: DefaultMaxAttempts,
		pending:  make(map[uint64]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTokenSource подключает владельца сессии.
// Вызывается один раз при сборке приложения, до первых запросов.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// BaseURL возвращает адрес API
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CancelAll отменяет все выполняющиеся запросы
func (c *Client) CancelAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, cancel := range c.pending {
		cancel()
		delete(c.pending, id)
	}
}

func (c *Client) track(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.seq++
	id := c.seq
	c.pending[id] = cancel
	c.mu.Unlock()

	return ctx, func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		cancel()
	}
}

// Execute выполняет запрос с таймаутом, повторами и обновлением токена.
// body может быть nil, []byte/json.RawMessage (отправляется как есть) или
// любым значением для json.Marshal.
func (c *Client) Execute(ctx context.Context, method, path string, body any, opts *RequestOptions) (*Result, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}

	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	ctx, done := c.track(ctx)
	defer done()

	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = c.attempts
	}

	attempt := 0
	operation := func() (*Result, error) {
		attempt++
		res, err := c.executeAuthorized(ctx, method, path, payload, opts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(fmt.Errorf("request canceled: %w", ctx.Err()))
			}
			if !retryableHere(err) {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return res, nil
	}

	res, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(c.policy.NewBackOff()),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithNotify(func(err error, delay time.Duration) {
			c.logger.Warn("retrying request",
				"method", method, "path", path,
				"attempt", attempt, "delay", delay, "error", err)
			if c.onRetry != nil {
				c.onRetry(RetryEvent{Method: method, Path: path, Attempt: attempt, Delay: delay, Err: err})
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	if opts.Out != nil {
		if err := res.Decode(opts.Out); err != nil {
			return nil, &Error{Kind: KindValidation, Status: res.Status, Message: "Invalid response format", Err: err}
		}
		if v, ok := opts.Out.(validation.Validatable); ok && opts.Validate {
			if err := v.Validate(); err != nil {
				return nil, &Error{Kind: KindValidation, Status: res.Status, Message: "Invalid response format", Err: err}
			}
		}
	}

	return res, nil
}

// retryableHere прямые вызовы повторяют только сеть, таймаут и 5xx
func retryableHere(err error) bool {
	switch KindOf(err) {
	case KindNetwork, KindTimeout, KindServer:
		return true
	default:
		return false
	}
}

// executeAuthorized выполняет одну попытку. При 401 дожидается общего
// refresh и повторяет запрос один раз с новым токеном.
func (c *Client) executeAuthorized(ctx context.Context, method, path string, payload []byte, opts *RequestOptions) (*Result, error) {
	if opts.SkipAuth || c.tokens == nil {
		return c.do(ctx, method, path, payload, opts.bearer)
	}

	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, &Error{Kind: KindAuth, Err: err}
	}

	res, err := c.do(ctx, method, path, payload, token)
	if StatusOf(err) != http.StatusUnauthorized {
		return res, err
	}

	fresh, err := c.refreshToken(ctx, token)
	if err != nil {
		authErr := &Error{Kind: KindAuth, Status: http.StatusUnauthorized, Message: "session expired", Err: err}
		c.tokens.HandleAuthFailure(ctx, authErr)
		return nil, authErr
	}

	res, err = c.do(ctx, method, path, payload, fresh)
	if StatusOf(err) == http.StatusUnauthorized {
		authErr := &Error{Kind: KindAuth, Status: http.StatusUnauthorized, Message: "token rejected after refresh", Err: err}
		c.tokens.HandleAuthFailure(ctx, authErr)
		return nil, authErr
	}
	return res, err
}

// RefreshToken обновляет access token через тот же singleflight слот, что и
// Execute при 401. stale токен, который отверг сервер: если его уже заменили,
// возвращается текущий без запроса.
func (c *Client) RefreshToken(ctx context.Context, stale string) (string, error) {
	if c.tokens == nil {
		return "", errors.New("token source is not configured")
	}
	return c.refreshToken(ctx, stale)
}

// refreshToken обновляет токен через singleflight: все одновременные
// вызовы получают результат одного запроса /auth/refresh.
func (c *Client) refreshToken(ctx context.Context, stale string) (string, error) {
	// Токен уже обновили, пока этот запрос был в полете
	if current, err := c.tokens.AccessToken(ctx); err == nil && current != "" && current != stale {
		return current, nil
	}

	ch := c.refresh.DoChan("refresh", func() (any, error) {
		// отмена одного вызывающего не должна прерывать общий refresh
		return c.tokens.Refresh(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return "", r.Err
		}
		return r.Val.(string), nil
	}
}

// do выполняет ровно один HTTP запрос и классифицирует результат
func (c *Client) do(ctx context.Context, method, path string, payload []byte, token string) (*Result, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.send(req)
	if err != nil {
		return nil, c.transportError(ctx, reqCtx, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(ctx, reqCtx, err)
	}

	if resp.StatusCode == http.StatusServiceUnavailable && resp.Header.Get(api.HeaderOffline) != "" {
		return nil, &Error{Kind: KindNetwork, Status: resp.StatusCode, Message: errorMessage(respBody)}
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, &Error{Kind: KindServer, Status: resp.StatusCode, Message: errorMessage(respBody)}
	case resp.StatusCode >= 400:
		return nil, &Error{Kind: KindClient, Status: resp.StatusCode, Message: errorMessage(respBody)}
	}

	result := &Result{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   respBody,
	}
	if resp.Header.Get(api.HeaderFromCache) == "true" {
		result.Stale = true
		if t, err := time.Parse(time.RFC3339, resp.Header.Get(api.HeaderCacheTime)); err == nil {
			result.CachedAt = t
		}
	}
	return result, nil
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.httpClient.Do(req)
	}
	return c.breaker.Execute(func() (*http.Response, error) {
		return c.httpClient.Do(req)
	})
}

// transportError отличает таймаут попытки от прочих сетевых ошибок
func (c *Client) transportError(parent, reqCtx context.Context, err error) error {
	if parent.Err() != nil {
		return fmt.Errorf("request canceled: %w", parent.Err())
	}
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: fmt.Sprintf("no response within %s", c.timeout), Err: err}
	}
	return &Error{Kind: KindNetwork, Err: err}
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		return data, nil
	}
}

func errorMessage(body []byte) string {
	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Message != "" {
			return errResp.Message
		}
		if errResp.Error != "" {
			return errResp.Error
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
