// Package config описывает конфигурацию клиента itemsync.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Форматы логов
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config конфигурация клиента
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
	Executor ExecutorConfig `yaml:"executor"`
	Queue    QueueConfig    `yaml:"queue"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Realtime RealtimeConfig `yaml:"realtime"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	// Build версия сборки, входит в имена пространств кэша
	Build string `yaml:"build"`
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Build, validation.Required, validation.Match(buildRe)),
	); err != nil {
		return err
	}
	validators := []validation.Validatable{
		&c.Server, &c.Storage, &c.Log, &c.Executor, &c.Queue, &c.Monitor, &c.Realtime, &c.Metrics,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ServerConfig адрес сервера
type ServerConfig struct {
	URL string `yaml:"url"`
}

// Validate проверяет адрес сервера
func (c *ServerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Required, is.URL),
	)
}

// APIURL базовый адрес REST API
func (c *ServerConfig) APIURL() string {
	return strings.TrimRight(c.URL, "/") + "/api"
}

// WebsocketURL адрес realtime канала
func (c *ServerConfig) WebsocketURL(path string) (string, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String(), nil
}

// StorageConfig локальная база
type StorageConfig struct {
	Path string `yaml:"path"`
}

// Validate проверяет путь к базе
func (c *StorageConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// LogConfig настройки логирования
type LogConfig struct {
	Format string     `yaml:"format"`
	Level  slog.Level `yaml:"level"`
}

// Validate проверяет формат
func (c *LogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Format, validation.In(LogFormatText, LogFormatJSON)),
	)
}

// NewLogger создает логгер, пишущий в w
func (c *LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level}
	if c.Format == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ExecutorConfig настройки исполнителя запросов
type ExecutorConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	BaseDelay time.Duration `yaml:"base_delay"`
	Breaker   BreakerConfig `yaml:"breaker"`
	Attempts  int           `yaml:"attempts"`
}

// Validate проверяет настройки исполнителя
func (c *ExecutorConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.BaseDelay, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.Attempts, validation.Required, validation.Min(1), validation.Max(10)),
	); err != nil {
		return fmt.Errorf("executor: %w", err)
	}
	return c.Breaker.Validate()
}

// BreakerConfig circuit breaker. Failures = 0 отключает breaker.
type BreakerConfig struct {
	OpenTimeout time.Duration `yaml:"open_timeout"`
	Failures    uint32        `yaml:"failures"`
}

// Validate проверяет breaker
func (c *BreakerConfig) Validate() error {
	if c.Failures == 0 {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.OpenTimeout, validation.Required, validation.Min(time.Second)),
	)
}

// Enabled включен ли breaker
func (c *BreakerConfig) Enabled() bool {
	return c.Failures > 0
}

// QueueConfig настройки воспроизведения очереди
type QueueConfig struct {
	BaseDelay     time.Duration `yaml:"base_delay"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	MaxRetries    int           `yaml:"max_retries"`
}

// Validate проверяет настройки очереди
func (c *QueueConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.BaseDelay, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.FlushInterval, validation.Required, validation.Min(100*time.Millisecond)),
		validation.Field(&c.MaxRetries, validation.Required, validation.Min(1)),
	); err != nil {
		return fmt.Errorf("queue: %w", err)
	}
	return nil
}

// MonitorConfig проверка доступности сервера
type MonitorConfig struct {
	HealthPath    string        `yaml:"health_path"`
	CheckInterval time.Duration `yaml:"check_interval"`
}

// Validate проверяет настройки монитора
func (c *MonitorConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.HealthPath, validation.Required, validation.Match(pathRe)),
		validation.Field(&c.CheckInterval, validation.Required, validation.Min(100*time.Millisecond)),
	); err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	return nil
}

// RealtimeConfig настройки websocket канала
type RealtimeConfig struct {
	Path              string        `yaml:"path"`
	ReconnectDelay    time.Duration `yaml:"reconnect_delay"`
	MaxReconnectDelay time.Duration `yaml:"max_reconnect_delay"`
	LockTTL           time.Duration `yaml:"lock_ttl"`
	SignalRate        float64       `yaml:"signal_rate"`
	SignalBurst       int           `yaml:"signal_burst"`
	ReconnectAttempts int           `yaml:"reconnect_attempts"`
	Enabled           bool          `yaml:"enabled"`
}

// Validate проверяет realtime настройки
func (c *RealtimeConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required, validation.Match(pathRe)),
		validation.Field(&c.ReconnectDelay, validation.Required),
		validation.Field(&c.MaxReconnectDelay, validation.Required, validation.Min(c.ReconnectDelay)),
		validation.Field(&c.LockTTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.SignalRate, validation.Required, validation.Min(0.1)),
		validation.Field(&c.SignalBurst, validation.Required, validation.Min(1)),
		validation.Field(&c.ReconnectAttempts, validation.Required, validation.Min(1)),
	); err != nil {
		return fmt.Errorf("realtime: %w", err)
	}
	return nil
}

// MetricsConfig адрес /metrics для команды watch. Пустой адрес отключает.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Validate проверяет адрес метрик
func (c *MetricsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Addr, is.DialString),
	)
}

// NewDefaultConfig возвращает конфигурацию по умолчанию
func NewDefaultConfig() *Config {
	return &Config{
		Server:  ServerConfig{URL: "http://localhost:8080"},
		Storage: StorageConfig{Path: "itemsync-client.db"},
		Log:     LogConfig{Level: slog.LevelWarn, Format: LogFormatText},
		Build:   "v1",
		Executor: ExecutorConfig{
			Timeout:   30 * time.Second,
			BaseDelay: time.Second,
			Attempts:  3,
			Breaker:   BreakerConfig{Failures: 5, OpenTimeout: 30 * time.Second},
		},
		Queue: QueueConfig{
			BaseDelay:     time.Second,
			FlushInterval: 10 * time.Second,
			MaxRetries:    3,
		},
		Monitor: MonitorConfig{
			HealthPath:    "/health",
			CheckInterval: 15 * time.Second,
		},
		Realtime: RealtimeConfig{
			Enabled:           true,
			Path:              "/ws",
			ReconnectAttempts: 5,
			ReconnectDelay:    time.Second,
			MaxReconnectDelay: 5 * time.Second,
			LockTTL:           5 * time.Minute,
			SignalRate:        10,
			SignalBurst:       5,
		},
	}
}
