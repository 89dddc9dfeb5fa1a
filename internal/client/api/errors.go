package api

import (
	"errors"
	"fmt"

	"github.com/iudanet/itemsync/internal/client/retry"
)

// Kind категория ошибки запроса
type Kind int

const (
	// KindNetwork ответ от сервера не получен
	KindNetwork Kind = iota + 1
	// KindTimeout запрос не уложился в таймаут
	KindTimeout
	// KindClient 4xx, повтор не поможет
	KindClient
	// KindServer 5xx
	KindServer
	// KindValidation 2xx, но тело не соответствует ожидаемой форме
	KindValidation
	// KindAuth refresh не удался или сервер отверг свежий токен
	KindAuth
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// Error ошибка выполнения запроса
type Error struct {
	Err     error
	Message string
	Kind    Kind
	Status  int
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("%s error (%d): %s", e.Kind, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s error (%d)", e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// RetryClass классифицирует ошибку для retry.Policy.
// 408 и 401 без успешного refresh считаются временными.
func (e *Error) RetryClass() retry.Class {
	switch e.Kind {
	case KindNetwork, KindTimeout, KindServer:
		return retry.Transient
	case KindAuth:
		return retry.Auth
	case KindClient:
		if e.Status == 408 || e.Status == 401 {
			return retry.Transient
		}
		return retry.Terminal
	default:
		return retry.Terminal
	}
}

// KindOf возвращает Kind ошибки или 0, если это не *Error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// StatusOf возвращает HTTP статус ошибки или 0
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// IsRetryable сообщает, имеет ли смысл повторить запрос
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.RetryClass() == retry.Transient
}

// IsOffline сообщает, что до сервера не достучались (сеть или таймаут).
// Такие мутации ставятся в очередь.
func IsOffline(err error) bool {
	k := KindOf(err)
	return k == KindNetwork || k == KindTimeout
}

// IsAuth сообщает, что сессия потеряна
func IsAuth(err error) bool {
	return KindOf(err) == KindAuth
}
