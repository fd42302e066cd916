package service

import (
	"errors"
	"fmt"
)

// ошибки уровня сервиса, по которым API выбирает код ответа
var (
	ErrNotFound           = errors.New("ссылка не найдена")
	ErrAliasTaken         = errors.New("короткая ссылка уже занята")
	ErrForbidden          = errors.New("операция доступна только владельцу ссылки")
	ErrValidation         = errors.New("невалидные данные запроса")
	ErrCodeSpaceExhausted = errors.New("не удалось сгенерировать уникальный код: алфавит или длина исчерпаны")
)

// DenyReason — причина отказа в редиректе
type DenyReason string

const (
	DenyGone             DenyReason = "gone"
	DenyDeactivated      DenyReason = "deactivated"
	DenyExpired          DenyReason = "expired"
	DenyQuotaExceeded    DenyReason = "quota_exceeded"
	DenyPasswordRequired DenyReason = "password_required"
	DenyPasswordMismatch DenyReason = "password_mismatch"
)

// AccessDeniedError возвращается, когда ссылка существует, но переход запрещён,
// причина отказа не смешивается с "не найдено"
type AccessDeniedError struct {
	Reason   DenyReason
	ShortURL string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("переход по ссылке %s запрещён: %s", e.ShortURL, e.Reason)
}

// AsAccessDenied возвращает *AccessDeniedError, если err им является
func AsAccessDenied(err error) (*AccessDeniedError, bool) {
	var denied *AccessDeniedError
	if errors.As(err, &denied) {
		return denied, true
	}
	return nil, false
}
