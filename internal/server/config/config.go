// Package config описывает конфигурацию сервера itemsync.
package config

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Config конфигурация сервера
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Realtime  RealtimeConfig  `yaml:"realtime"`
	Seed      SeedConfig      `yaml:"seed"`
	LogLevel  slog.Level      `yaml:"log_level"`
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	validators := []validation.Validatable{
		&c.HTTP, &c.Database, &c.JWT, &c.RateLimit, &c.Realtime, &c.Seed,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// HTTPConfig адрес и таймауты HTTP сервера
type HTTPConfig struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// Validate проверяет настройки HTTP
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.ReadHeaderTimeout, validation.Required),
		validation.Field(&c.ShutdownTimeout, validation.Required),
	)
}

// Address адрес для ListenAndServe
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig путь к sqlite
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// Validate проверяет путь к базе
func (c *DatabaseConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// JWTConfig подпись и время жизни токенов
type JWTConfig struct {
	Secret          string        `yaml:"secret"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`
}

// Validate проверяет настройки JWT
func (c *JWTConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Secret, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.AccessTokenTTL, validation.Required),
		validation.Field(&c.RefreshTokenTTL, validation.Required,
			validation.By(func(any) error {
				if c.RefreshTokenTTL <= c.AccessTokenTTL {
					return fmt.Errorf("must be longer than access_token_ttl")
				}
				return nil
			})),
	)
}

// RateLimitConfig ограничение запросов с одного IP.
// Requests == 0 отключает ограничение.
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// Validate проверяет лимиты
func (c *RateLimitConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Requests, validation.Min(0)),
		validation.Field(&c.Window, validation.When(c.Requests > 0, validation.Required)),
	)
}

// Enabled включено ли ограничение
func (c *RateLimitConfig) Enabled() bool {
	return c.Requests > 0
}

// RealtimeConfig настройки websocket hub
type RealtimeConfig struct {
	PingInterval time.Duration `yaml:"ping_interval"`
	LockTTL      time.Duration `yaml:"lock_ttl"`
}

// Validate проверяет настройки hub
func (c *RealtimeConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.PingInterval, validation.Required),
		validation.Field(&c.LockTTL, validation.Required),
	)
}

// SeedConfig пользователь, создаваемый при старте, если его нет.
// Пустой Email отключает создание.
type SeedConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Role     string `yaml:"role"`
}

// Validate проверяет seed пользователя
func (c *SeedConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Email, is.EmailFormat),
		validation.Field(&c.Password, validation.When(c.Email != "", validation.Required, validation.Length(8, 0))),
		validation.Field(&c.Role, validation.In("admin", "manager", "viewer")),
	)
}

// NewDefaultConfig значения по умолчанию
func NewDefaultConfig() *Config {
	return &Config{
		LogLevel: slog.LevelInfo,
		HTTP: HTTPConfig{
			Port:              8080,
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "itemsync-server.db",
		},
		JWT: JWTConfig{
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			Requests: 100,
			Window:   time.Minute,
		},
		Realtime: RealtimeConfig{
			PingInterval: 30 * time.Second,
			LockTTL:      5 * time.Minute,
		},
		Seed: SeedConfig{
			Role: "manager",
		},
	}
}
