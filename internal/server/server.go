// Package server собирает HTTP API, websocket hub и хранилище в один процесс.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/iudanet/itemsync/internal/models"
	"github.com/iudanet/itemsync/internal/server/config"
	"github.com/iudanet/itemsync/internal/server/handlers"
	"github.com/iudanet/itemsync/internal/server/jwt"
	"github.com/iudanet/itemsync/internal/server/middleware"
	"github.com/iudanet/itemsync/internal/server/realtime"
	"github.com/iudanet/itemsync/internal/server/storage"
	"github.com/iudanet/itemsync/internal/server/storage/sqlite"
)

// tokenCleanupInterval период удаления просроченных refresh токенов
const tokenCleanupInterval = time.Hour

// Option is a functional option for configuring the server.
type Option func(*Server)

// WithLogger задает логгер. По умолчанию логи отбрасываются.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion задает версию для /health
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// Server справочный сервер склада
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *sqlite.Storage
	tokens  *jwt.Service
	hub     *realtime.Hub
	limiter *middleware.RateLimiter
	handler http.Handler
	version string
}

// New открывает базу, создает seed пользователя и строит роутер
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	s := &Server{
		cfg:     cfg,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}

	store, err := sqlite.New(ctx, cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	s.store = store

	if err := s.EnsureSeedUser(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	s.tokens = jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL)
	s.hub = realtime.NewHub(realtime.Config{
		PingInterval: cfg.Realtime.PingInterval,
		LockTTL:      cfg.Realtime.LockTTL,
	}, s.tokens, s.logger)
	if cfg.RateLimit.Enabled() {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, s.logger)
	}
	s.handler = s.routes()

	return s, nil
}

func (s *Server) routes() http.Handler {
	authHandler := handlers.NewAuthHandler(s.logger, s.store, s.store, s.tokens)
	inventoryHandler := handlers.NewInventoryHandler(s.logger, s.store, s.hub)
	healthHandler := handlers.NewHealthHandler(s.logger, s.store, s.version)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.LoggingWithSkip(s.logger, []string{"/health", "/metrics"}))
	r.Use(middleware.RecoveryMiddleware(s.logger))
	r.Use(middleware.MetricsMiddleware)

	r.Get("/health", healthHandler.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", s.hub.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(middleware.RateLimitMiddleware(s.limiter))
		}

		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(s.logger, s.tokens))

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/verify", authHandler.Verify)

			r.Get("/inventory", inventoryHandler.List)
			r.Post("/inventory", inventoryHandler.Create)
			r.Get("/inventory/{id}", inventoryHandler.Get)
			r.Patch("/inventory/{id}", inventoryHandler.Update)
			r.Delete("/inventory/{id}", inventoryHandler.Delete)
			r.Post("/inventory/{id}/quantity", inventoryHandler.SetQuantity)
		})
	})

	r.Handle("/*", handlers.StaticHandler())

	return r
}

// Handler корневой http.Handler сервера
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Hub websocket hub сервера
func (s *Server) Hub() *realtime.Hub {
	return s.hub
}

// Tokens сервис JWT сервера
func (s *Server) Tokens() *jwt.Service {
	return s.tokens
}

// Storage хранилище сервера
func (s *Server) Storage() *sqlite.Storage {
	return s.store
}

// EnsureSeedUser создает пользователя из конфигурации, если его еще нет
func (s *Server) EnsureSeedUser(ctx context.Context) error {
	seed := s.cfg.Seed
	if seed.Email == "" {
		return nil
	}

	_, err := s.store.GetUserByEmail(ctx, seed.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return fmt.Errorf("failed to look up seed user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	name := seed.Name
	if name == "" {
		name, _, _ = strings.Cut(seed.Email, "@")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(seed.Email),
		Name:         name,
		Role:         seed.Role,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to create seed user: %w", err)
	}

	s.logger.Info("seed user created", slog.String("email", user.Email), slog.String("role", user.Role))
	return nil
}

// Run обслуживает HTTP до отмены ctx
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.HTTP.Address(),
		Handler:           s.handler,
		ReadHeaderTimeout: s.cfg.HTTP.ReadHeaderTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("Starting HTTP server", slog.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return s.hub.Run(gCtx)
	})

	g.Go(func() error {
		s.cleanupTokens(gCtx)
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		s.logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("HTTP server shutdown error", slog.Any("error", err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.Info("Server stopped successfully")
	return nil
}

// cleanupTokens периодически удаляет просроченные refresh токены
func (s *Server) cleanupTokens(ctx context.Context) {
	ticker := time.NewTicker(tokenCleanupInterval)
	defer ticker.Stop()

	for {
		n, err := s.store.DeleteExpiredTokens(ctx, time.Now())
		switch {
		case err != nil && ctx.Err() == nil:
			s.logger.Warn("failed to delete expired tokens", slog.Any("error", err))
		case n > 0:
			s.logger.Info("expired refresh tokens deleted", slog.Int("count", n))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Close освобождает ресурсы сервера
func (s *Server) Close() error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	s.hub.Close()
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	return nil
}
