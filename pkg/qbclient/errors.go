package qbclient

import (
	"errors"
	"fmt"
	"time"
)

// Коды ошибок API — отражают классификацию отказов платформы QuickBase.
const (
	ErrCodeAuth       = "QB_AUTH_FAILED"       // HTTP 401 — невалидный user token или realm
	ErrCodeNotFound   = "QB_NOT_FOUND"         // HTTP 404 — таблица/поле/ресурс не найдены
	ErrCodeRateLimit  = "QB_RATE_LIMITED"      // HTTP 429 — превышен лимит запросов, есть Retry-After
	ErrCodeValidation = "QB_VALIDATION_FAILED" // невалидные аргументы, запрос не отправлялся
	ErrCodeAPI        = "QB_API_ERROR"         // все остальные отказы платформы
)

// Sentinel errors — используются вызывающим кодом через errors.Is
// для определения типа отказа.
var (
	ErrAuth       = errors.New(ErrCodeAuth)
	ErrNotFound   = errors.New(ErrCodeNotFound)
	ErrRateLimit  = errors.New(ErrCodeRateLimit)
	ErrValidation = errors.New(ErrCodeValidation)
	ErrAPI        = errors.New(ErrCodeAPI)
)

// APIError — ошибка ответа платформы с HTTP-статусом и телом ответа.
// Unwrap возвращает соответствующий sentinel, поэтому
// errors.Is(err, ErrNotFound) работает сквозь обёртки.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter time.Duration // заполняется только для HTTP 429
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap маппит код ошибки на sentinel.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case ErrCodeAuth:
		return ErrAuth
	case ErrCodeNotFound:
		return ErrNotFound
	case ErrCodeRateLimit:
		return ErrRateLimit
	case ErrCodeValidation:
		return ErrValidation
	default:
		return ErrAPI
	}
}

// newAPIError классифицирует HTTP-статус ответа платформы.
func newAPIError(status int, body string, retryAfter time.Duration) *APIError {
	code := ErrCodeAPI
	switch status {
	case 401:
		code = ErrCodeAuth
	case 404:
		code = ErrCodeNotFound
	case 429:
		code = ErrCodeRateLimit
	}
	return &APIError{
		StatusCode: status,
		Code:       code,
		Message:    body,
		RetryAfter: retryAfter,
	}
}

// validationError создает ошибку валидации аргументов (до сетевого вызова).
func validationError(format string, args ...any) *APIError {
	return &APIError{Code: ErrCodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ErrorCode преобразует ошибку клиента в строковый код.
func ErrorCode(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	switch {
	case errors.Is(err, ErrAuth):
		return ErrCodeAuth
	case errors.Is(err, ErrNotFound):
		return ErrCodeNotFound
	case errors.Is(err, ErrRateLimit):
		return ErrCodeRateLimit
	case errors.Is(err, ErrValidation):
		return ErrCodeValidation
	default:
		return ErrCodeAPI
	}
}
