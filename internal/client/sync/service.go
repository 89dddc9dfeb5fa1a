package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/itemsync/internal/client/api"
	"github.com/iudanet/itemsync/internal/client/metrics"
	"github.com/iudanet/itemsync/internal/client/queue"
	"github.com/iudanet/itemsync/internal/client/retry"
	"github.com/iudanet/itemsync/internal/models"
)

//go:generate moq -out service_mock.go . Service

// Service определяет интерфейс для sync.Service
type Service interface {
	// Sync воспроизводит очередь отложенных действий
	Sync(ctx context.Context) (*SyncResult, error)

	// GetPendingSyncCount возвращает количество действий, ожидающих синхронизации
	GetPendingSyncCount(ctx context.Context) (int, error)
}

// Executor выполняет один запрос. Реализуется *api.Client.
type Executor interface {
	Execute(ctx context.Context, method, path string, body any, opts *api.RequestOptions) (*api.Result, error)
}

// Notifier принимает уведомления для пользователя. Реализуется store.Store.
type Notifier interface {
	AddNotification(n models.Notification) models.Notification
}

// Reconciler сводит слой неподтвержденных изменений с результатом повтора
type Reconciler interface {
	Confirm(action *models.QueuedAction, body []byte)
	Discard(action *models.QueuedAction)
}

// SyncResult contains sync operation results
type SyncResult struct {
	Attempted int // количество отправленных запросов
	Succeeded int // подтверждены сервером и удалены
	Retried   int // оставлены в очереди с увеличенным счетчиком
	Abandoned int // удалены без успеха
	Deferred  int // пропущены в этом проходе (задержка или зависимость)
	// Skipped другой проход уже выполнялся
	Skipped bool
	// Halted проход прерван: сеть пропала или сессия потеряна
	Halted bool
}

type service struct {
	queue      *queue.Queue
	executor   Executor
	notifier   Notifier
	reconciler Reconciler
	logger     *slog.Logger
	now        func() time.Time
	notBefore  map[string]time.Time
	policy     retry.Policy
	mu         sync.Mutex
}

// NewService creates a new sync service.
// reconciler может быть nil.
func NewService(q *queue.Queue, executor Executor, notifier Notifier, reconciler Reconciler, policy retry.Policy, logger *slog.Logger) Service {
	return &service{
		queue:      q,
		executor:   executor,
		notifier:   notifier,
		reconciler: reconciler,
		logger:     logger,
		now:        time.Now,
		notBefore:  make(map[string]time.Time),
		policy:     policy,
	}
}

// Sync воспроизводит снимок очереди в порядке постановки.
//
// Каждое действие отправляется один раз за проход. Успех удаляет его,
// 4xx удаляет сразу, сеть/таймаут/5xx увеличивают счетчик и откладывают
// следующую попытку на base*2^(n-1); после MaxRetries неудач действие
// удаляется. Если действие по сущности осталось в очереди, следующие
// действия по той же сущности ждут следующего прохода и не тратят попытку.
func (s *service) Sync(ctx context.Context) (*SyncResult, error) {
	result := &SyncResult{}
	blocked := make(map[string]bool)

	ran, err := s.queue.Drain(ctx, func(ctx context.Context, action *models.QueuedAction) error {
		if ctx.Err() != nil {
			result.Halted = true
			return queue.ErrStopDrain
		}

		key := action.EntityKey()
		if blocked[key] || s.waiting(action.ID) {
			blocked[key] = true
			result.Deferred++
			metrics.RecordReplay("deferred")
			return nil
		}

		result.Attempted++
		res, err := s.executor.Execute(ctx, action.Method, action.Endpoint, action.Payload, &api.RequestOptions{MaxAttempts: 1})
		if err == nil {
			return s.succeed(ctx, action, res, result)
		}
		if ctx.Err() != nil {
			result.Halted = true
			return queue.ErrStopDrain
		}

		failures := action.RetryCount + 1
		decision := s.policy.Decide(err, failures)
		s.logger.Warn("replay failed",
			"id", action.ID, "kind", action.Kind, "endpoint", action.Endpoint,
			"failures", failures, "decision", decision.String(), "error", err)

		switch decision {
		case retry.Halt:
			result.Halted = true
			metrics.RecordReplay("halted")
			return queue.ErrStopDrain

		case retry.AbandonNow, retry.AbandonMax:
			return s.abandon(ctx, action, err, decision, result)

		default:
			if _, err := s.queue.IncrementRetry(ctx, action.ID); err != nil {
				return err
			}
			s.schedule(action.ID, s.policy.Backoff(failures))
			blocked[key] = true
			result.Retried++
			metrics.RecordReplay("retry")

			// Сеть пропала: остальные попытки тоже упадут
			if api.IsOffline(err) {
				result.Halted = true
				return queue.ErrStopDrain
			}
			return nil
		}
	})
	if err != nil {
		return result, fmt.Errorf("drain failed: %w", err)
	}
	if !ran {
		result.Skipped = true
		return result, nil
	}

	if result.Attempted > 0 || result.Deferred > 0 {
		s.logger.Info("sync pass finished",
			"attempted", result.Attempted, "succeeded", result.Succeeded,
			"retried", result.Retried, "abandoned", result.Abandoned,
			"deferred", result.Deferred, "halted", result.Halted)
	}
	return result, nil
}

func (s *service) succeed(ctx context.Context, action *models.QueuedAction, res *api.Result, result *SyncResult) error {
	if err := s.queue.Remove(ctx, action.ID); err != nil {
		return err
	}
	s.clear(action.ID)
	result.Succeeded++
	metrics.RecordReplay("success")

	if s.reconciler != nil {
		var body []byte
		if res != nil {
			body = res.Body
		}
		s.reconciler.Confirm(action, body)
	}

	s.notifier.AddNotification(models.Notification{
		Severity: models.SeveritySuccess,
		Title:    "Sync Complete",
		Message:  fmt.Sprintf("%s action synced successfully", action.Kind),
	})
	return nil
}

func (s *service) abandon(ctx context.Context, action *models.QueuedAction, cause error, decision retry.Decision, result *SyncResult) error {
	if err := s.queue.Remove(ctx, action.ID); err != nil {
		return err
	}
	s.clear(action.ID)
	result.Abandoned++

	if s.reconciler != nil {
		s.reconciler.Discard(action)
	}

	n := models.Notification{
		Severity:   models.SeverityError,
		Title:      "Sync Failed",
		Persistent: true,
		Actions: []models.NotificationAction{
			{Label: "Dismiss", Action: "dismiss"},
		},
	}
	if decision == retry.AbandonMax {
		metrics.RecordReplay("abandoned_max")
		n.Message = fmt.Sprintf("%s action could not be synced after %d attempts", action.Kind, action.RetryCount+1)
	} else {
		metrics.RecordReplay("abandoned")
		n.Message = fmt.Sprintf("Failed to sync %s action: %s", action.Kind, reason(cause))
	}
	s.notifier.AddNotification(n)
	return nil
}

// GetPendingSyncCount возвращает количество действий в очереди
func (s *service) GetPendingSyncCount(ctx context.Context) (int, error) {
	return s.queue.Size(ctx)
}

func (s *service) waiting(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.notBefore[id]
	return ok && s.now().Before(t)
}

func (s *service) schedule(id string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notBefore[id] = s.now().Add(delay)
}

func (s *service) clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.notBefore, id)
}

func reason(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
