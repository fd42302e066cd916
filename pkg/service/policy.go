package service

import (
	"time"

	"github.com/IPampurin/LinkTracker/pkg/db"
	"golang.org/x/crypto/bcrypt"
)

/*
Authorize решает, разрешён ли переход по ссылке.
Проверки выполняются в фиксированном порядке, чтобы причина отказа
была детерминированной (истёкшая ссылка с исчерпанной квотой — expired):
  1. мягко удалена     → gone
  2. деактивирована    → deactivated
  3. срок истёк        → expired
  4. квота исчерпана   → quota_exceeded
  5. пароль не передан → password_required
  6. пароль не подошёл → password_mismatch

Функция чистая: никаких побочных эффектов, по отказанной ссылке
событие клика не публикуется.
*/
func Authorize(link *db.Link, suppliedPassword string, now time.Time) (string, error) {

	if link.DeletedAt != nil {
		return "", &AccessDeniedError{Reason: DenyGone, ShortURL: link.ShortURL}
	}

	if !link.IsActive {
		return "", &AccessDeniedError{Reason: DenyDeactivated, ShortURL: link.ShortURL}
	}

	if link.ExpiresAt != nil && link.ExpiresAt.Before(now) {
		return "", &AccessDeniedError{Reason: DenyExpired, ShortURL: link.ShortURL}
	}

	if link.MaxClicks > 0 && link.ClicksCount >= link.MaxClicks {
		return "", &AccessDeniedError{Reason: DenyQuotaExceeded, ShortURL: link.ShortURL}
	}

	if link.PasswordHash != "" {
		if suppliedPassword == "" {
			return "", &AccessDeniedError{Reason: DenyPasswordRequired, ShortURL: link.ShortURL}
		}
		if bcrypt.CompareHashAndPassword([]byte(link.PasswordHash), []byte(suppliedPassword)) != nil {
			return "", &AccessDeniedError{Reason: DenyPasswordMismatch, ShortURL: link.ShortURL}
		}
	}

	return link.OriginalURL, nil
}
