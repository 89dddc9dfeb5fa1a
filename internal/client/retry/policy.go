// Package retry decides what happens to a failed operation: retry it later
// or abandon it. Both the request executor and the queue replay use it.
package retry

import (
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Class грубая классификация ошибки с точки зрения повторов.
type Class int

const (
	// Transient сеть, таймаут, 5xx, 408, 401 при доступном refresh
	Transient Class = iota
	// Terminal 4xx и ошибки формата ответа: повтор не поможет
	Terminal
	// Auth сессия потеряна, повторять бессмысленно до нового входа
	Auth
)

// Classifier реализуется ошибками, которые знают свой класс.
// Ошибки без классификатора считаются Transient.
type Classifier interface {
	RetryClass() Class
}

// ClassOf возвращает класс ошибки.
func ClassOf(err error) Class {
	var c Classifier
	if errors.As(err, &c) {
		return c.RetryClass()
	}
	return Transient
}

// Decision результат применения политики к неудачному повтору.
type Decision int

const (
	// Retry оставить в очереди, увеличить счетчик
	Retry Decision = iota
	// AbandonNow удалить без повторов
	AbandonNow
	// AbandonMax удалить, исчерпан лимит попыток
	AbandonMax
	// Halt прекратить текущий проход, ничего не трогая
	Halt
)

func (d Decision) String() string {
	switch d {
	case Retry:
		return "retry"
	case AbandonNow:
		return "abandon"
	case AbandonMax:
		return "abandon-max"
	case Halt:
		return "halt"
	default:
		return "unknown"
	}
}

const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second
)

// Policy параметры повторов.
type Policy struct {
	BaseDelay  time.Duration
	MaxRetries int
}

// DefaultPolicy возвращает политику по умолчанию: 3 попытки, база 1s.
func DefaultPolicy() Policy {
	return Policy{MaxRetries: DefaultMaxRetries, BaseDelay: DefaultBaseDelay}
}

// Decide классифицирует очередную неудачу.
// failures число неудачных попыток с учетом текущей.
func (p Policy) Decide(err error, failures int) Decision {
	switch ClassOf(err) {
	case Terminal:
		return AbandonNow
	case Auth:
		return Halt
	}
	if failures >= p.maxRetries() {
		return AbandonMax
	}
	return Retry
}

// Backoff задержка перед попыткой attempt (с единицы): base * 2^(attempt-1).
func (p Policy) Backoff(attempt int) time.Duration {
	return Backoff(p.baseDelay(), attempt)
}

// NewBackOff возвращает экспоненциальный backoff без jitter, который
// выдает ту же последовательность, что и Backoff.
func (p Policy) NewBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.baseDelay()
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = p.baseDelay() << 10
	b.Reset()
	return b
}

func (p Policy) maxRetries() int {
	if p.MaxRetries <= 0 {
		return DefaultMaxRetries
	}
	return p.MaxRetries
}

func (p Policy) baseDelay() time.Duration {
	if p.BaseDelay <= 0 {
		return DefaultBaseDelay
	}
	return p.BaseDelay
}

// Backoff считает base * 2^(attempt-1). attempt < 1 трактуется как 1.
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	// больше 2^30 все равно не дождемся
	if attempt > 31 {
		attempt = 31
	}
	return base << (attempt - 1)
}
