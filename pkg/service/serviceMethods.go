package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/IPampurin/LinkTracker/pkg/db"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/logger"
	"golang.org/x/crypto/bcrypt"
)

// CreateShortLink создаёт новую короткую ссылку
// (валидирует адрес назначения, проверяет уникальность кастомного алиаса,
// хэширует пароль, отклоняет прошедший срок действия,
// при отсутствии алиаса генерирует случайный код и сохраняет ссылку в БД и кэш)
func (s *Service) CreateShortLink(ctx context.Context, log logger.Logger, in CreateLinkInput, principal Principal) (*ResponseLink, error) {

	// 1. Валидируем адрес назначения и срок действия до любой записи
	if err := validateDestination(in.OriginalURL); err != nil {
		return nil, err
	}
	if in.ExpiresAt != nil && in.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("%w: срок действия уже истёк", ErrValidation)
	}
	if in.MaxClicks < 0 {
		return nil, fmt.Errorf("%w: лимит переходов не может быть отрицательным", ErrValidation)
	}

	// 2. Если задан кастомный алиас, проверяем формат и уникальность
	shortURL := in.CustomAlias
	if shortURL != "" {
		if !customAliasPattern.MatchString(shortURL) {
			return nil, fmt.Errorf("%w: алиас должен быть 3-50 символов из букв, цифр, дефиса и подчёркивания", ErrValidation)
		}
		exists, err := s.link.ShortCodeExists(ctx, shortURL)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrAliasTaken
		}
	} else {
		// 3. Генерируем код (исчерпание попыток — громкая ошибка конфигурации)
		var err error
		shortURL, err = s.generateUniqueCode(ctx)
		if err != nil {
			return nil, err
		}
	}

	// 4. Хэшируем пароль, если он задан
	passwordHash := ""
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("ошибка хэширования пароля в CreateShortLink: %w", err)
		}
		passwordHash = string(hash)
	}

	newLink := &db.Link{
		ShortURL:     shortURL,
		OriginalURL:  in.OriginalURL,
		Title:        in.Title,
		IsCustom:     in.CustomAlias != "",
		ExpiresAt:    in.ExpiresAt,
		IsActive:     true,
		PasswordHash: passwordHash,
		MaxClicks:    in.MaxClicks,
	}
	if principal.UserID != 0 {
		owner := principal.UserID
		newLink.OwnerID = &owner
	}

	// 5. Создаём новую ссылку
	link, err := s.link.CreateLink(ctx, newLink)
	if err != nil {
		return nil, err
	}

	// 6. Сохраняем в кэш
	if err := s.cache.SetLink(ctx, shortURL, link); err != nil {
		log.Ctx(ctx).Error("ошибка сохранения в кэш", "error", err)
	}

	log.Ctx(ctx).Info("новая короткая ссылка создана",
		"short_url", shortURL,
		"original_url", in.OriginalURL,
		"is_custom", in.CustomAlias != "")

	return toResponseLink(link), nil
}

// BulkCreate создаёт пакет ссылок с частичным успехом:
// элементы с занятым алиасом или невалидными данными пропускаются,
// остальные создаются, в ответе created/skipped и причины пропуска
func (s *Service) BulkCreate(ctx context.Context, log logger.Logger, items []CreateLinkInput, principal Principal) (*BulkResult, error) {

	result := &BulkResult{Links: make([]*ResponseLink, 0, len(items))}

	for i, item := range items {
		created, err := s.CreateShortLink(ctx, log, item, principal)
		if err != nil {
			// фатальную ошибку генератора не маскируем под пропуск
			if errors.Is(err, ErrCodeSpaceExhausted) {
				return nil, err
			}
			result.Skipped++
			result.Errors = append(result.Errors, BulkItemError{Index: i, Reason: err.Error()})
			log.Ctx(ctx).Warn("элемент пакета пропущен", "index", i, "error", err)
			continue
		}
		result.Created++
		result.Links = append(result.Links, created)
	}

	log.Ctx(ctx).Info("пакетное создание завершено", "created", result.Created, "skipped", result.Skipped)

	return result, nil
}

// Resolve возвращает ссылку по коду через кэш (cache-aside):
// попадание отдаёт кэшированную запись, промах читает БД и наполняет кэш,
// недоступность кэша не мешает поиску
func (s *Service) Resolve(ctx context.Context, log logger.Logger, shortURL string) (*db.Link, error) {

	link, err := s.cache.GetLink(ctx, shortURL)
	if err != nil {
		log.Ctx(ctx).Error("ошибка получения из кэша", "error", err)
	}
	if link != nil {
		log.Ctx(ctx).Debug("ссылка получена из кэша", "short_url", shortURL)
		return link, nil
	}

	link, err = s.link.GetLinkByShortURL(ctx, shortURL)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrNotFound
	}

	if err := s.cache.SetLink(ctx, shortURL, link); err != nil {
		log.Ctx(ctx).Error("ошибка сохранения в кэш", "error", err)
	}

	log.Ctx(ctx).Debug("ссылка получена из БД", "short_url", shortURL)

	return link, nil
}

// Redirect разрешает переход по короткой ссылке:
// находит запись через кэш, прогоняет через политику доступа и,
// только если переход разрешён, публикует событие клика в очередь,
// само сохранение клика происходит асинхронно и редирект не задерживает
func (s *Service) Redirect(ctx context.Context, log logger.Logger, shortURL, password, clientIP, userAgent, referer string) (string, error) {

	link, err := s.Resolve(ctx, log, shortURL)
	if err != nil {
		return "", err
	}

	destination, err := Authorize(link, password, time.Now())
	if err != nil {
		// по отказанной ссылке событие клика не публикуется
		log.Ctx(ctx).Info("переход запрещён", "short_url", shortURL, "error", err)
		return "", err
	}

	event := db.ClickEvent{
		UID:        uuid.New(),
		LinkID:     link.ID,
		ShortURL:   shortURL,
		IPAddress:  clientIP,
		UserAgent:  userAgent,
		Referer:    referer,
		OccurredAt: time.Now().UTC(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Ctx(ctx).Error("ошибка маршалинга события клика", "uid", event.UID, "error", err)
		return destination, nil
	}

	// публикация best-effort: потерянный клик не ломает редирект
	if err := s.publisher.Publish(ctx, body); err != nil {
		log.Ctx(ctx).Error("не удалось опубликовать событие клика", "uid", event.UID, "error", err)
	}

	return destination, nil
}

// UpdateLink меняет изменяемые поля ссылки (заголовок, активность, срок, квоту),
// операция доступна владельцу или администратору, кэш ссылки инвалидируется
func (s *Service) UpdateLink(ctx context.Context, log logger.Logger, shortURL string, in UpdateLinkInput, principal Principal) (*ResponseLink, error) {

	link, err := s.link.GetLinkByShortURL(ctx, shortURL)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrNotFound
	}

	if err := checkOwnership(link, principal); err != nil {
		return nil, err
	}

	if in.ExpiresAt != nil && !in.ExpiresAt.IsZero() && in.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("%w: срок действия уже истёк", ErrValidation)
	}
	if in.MaxClicks != nil && *in.MaxClicks < 0 {
		return nil, fmt.Errorf("%w: лимит переходов не может быть отрицательным", ErrValidation)
	}

	updated, err := s.link.UpdateLink(ctx, link.ID, db.LinkUpdate{
		Title:     in.Title,
		IsActive:  in.IsActive,
		ExpiresAt: in.ExpiresAt,
		MaxClicks: in.MaxClicks,
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// ссылку успели удалить между чтением и обновлением
		return nil, ErrNotFound
	}

	// пропущенная инвалидация - устаревший редирект, поэтому всегда чистим
	if err := s.cache.InvalidateLink(ctx, shortURL); err != nil {
		log.Ctx(ctx).Error("ошибка инвалидации кэша", "short_url", shortURL, "error", err)
	}

	log.Ctx(ctx).Info("ссылка обновлена", "short_url", shortURL)

	return toResponseLink(updated), nil
}

// DeleteLink мягко удаляет ссылку (запись остаётся в БД как надгробие),
// операция доступна владельцу или администратору, кэш инвалидируется
func (s *Service) DeleteLink(ctx context.Context, log logger.Logger, shortURL string, principal Principal) error {

	link, err := s.link.GetLinkByShortURL(ctx, shortURL)
	if err != nil {
		return err
	}
	if link == nil {
		return ErrNotFound
	}

	if err := checkOwnership(link, principal); err != nil {
		return err
	}

	if err := s.link.SoftDeleteLink(ctx, link.ID); err != nil {
		return err
	}

	if err := s.cache.InvalidateLink(ctx, shortURL); err != nil {
		log.Ctx(ctx).Error("ошибка инвалидации кэша", "short_url", shortURL, "error", err)
	}
	if err := s.cache.InvalidateAnalytics(ctx, shortURL); err != nil {
		log.Ctx(ctx).Error("ошибка инвалидации аналитики", "short_url", shortURL, "error", err)
	}

	log.Ctx(ctx).Info("ссылка удалена", "short_url", shortURL)

	return nil
}

// LastLinks возвращает список последних сокращённых ссылок
func (s *Service) LastLinks(ctx context.Context, log logger.Logger) ([]*ResponseLink, error) {

	links, err := s.link.GetLinks(ctx)
	if err != nil {
		return nil, err
	}

	return toResponseLinks(links), nil
}

// SearchByOriginalURL ищет ссылки, OriginalURL которых содержит подстроку query
func (s *Service) SearchByOriginalURL(ctx context.Context, log logger.Logger, query string) ([]*ResponseLink, error) {

	links, err := s.link.SearchByOriginalURL(ctx, query)
	if err != nil {
		return nil, err
	}

	return toResponseLinks(links), nil
}

// SearchByShortURL ищет ссылки, ShortURL которых содержит подстроку query
func (s *Service) SearchByShortURL(ctx context.Context, log logger.Logger, query string) ([]*ResponseLink, error) {

	links, err := s.link.SearchByShortURL(ctx, query)
	if err != nil {
		return nil, err
	}

	return toResponseLinks(links), nil
}

// checkOwnership разрешает операцию владельцу ссылки, администратору
// и кому угодно для бесхозных ссылок
func checkOwnership(link *db.Link, principal Principal) error {

	if link.OwnerID == nil || principal.IsAdmin() {
		return nil
	}
	if principal.UserID != *link.OwnerID {
		return ErrForbidden
	}

	return nil
}

// validateDestination проверяет адрес назначения:
// абсолютный URL, схема http/https, хост не loopback/приватный/link-local.
// Проверка синтаксическая: доменное имя, резолвящееся в приватный адрес,
// здесь не ловится — DNS при создании ссылки не опрашиваем, чтобы
// не зависеть от сети и её текущего состояния
func validateDestination(rawURL string) error {

	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		return fmt.Errorf("%w: ожидается абсолютный URL", ErrValidation)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("%w: допустимы только схемы http и https", ErrValidation)
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: в URL отсутствует хост", ErrValidation)
	}
	if strings.EqualFold(host, "localhost") {
		return fmt.Errorf("%w: адрес назначения указывает на локальный хост", ErrValidation)
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
			return fmt.Errorf("%w: адрес назначения указывает на служебную сеть", ErrValidation)
		}
	}

	return nil
}

// toResponseLink конвертирует модель БД в ответ API
func toResponseLink(l *db.Link) *ResponseLink {
	return &ResponseLink{
		ID:          l.ID,
		ShortURL:    l.ShortURL,
		OriginalURL: l.OriginalURL,
		Title:       l.Title,
		IsCustom:    l.IsCustom,
		IsActive:    l.IsActive,
		ClicksCount: l.ClicksCount,
		MaxClicks:   l.MaxClicks,
		ExpiresAt:   l.ExpiresAt,
		CreatedAt:   l.CreatedAt,
	}
}

func toResponseLinks(links []*db.Link) []*ResponseLink {
	out := make([]*ResponseLink, 0, len(links))
	for _, l := range links {
		out = append(out, toResponseLink(l))
	}
	return out
}
