package service

import (
	"context"

	"github.com/IPampurin/LinkTracker/pkg/cache"
	"github.com/IPampurin/LinkTracker/pkg/configuration"
	"github.com/IPampurin/LinkTracker/pkg/db"
)

// ClickPublisher публикует события кликов в очередь
type ClickPublisher interface {
	Publish(ctx context.Context, body []byte) error
}

type Service struct {
	link      db.LinkMethods
	click     db.ClickMethods
	cache     cache.CacheMethods
	publisher ClickPublisher

	codeLength   int
	codeAttempts int
}

// NewService собирает сервис из явно переданных зависимостей,
// глобального состояния нет, в тестах зависимости подменяются фейками
func NewService(link db.LinkMethods, click db.ClickMethods, cacheLinks cache.CacheMethods, publisher ClickPublisher, codeLength, codeAttempts int) *Service {

	if codeLength == 0 {
		codeLength = defaultCodeLength
	}
	if codeAttempts == 0 {
		codeAttempts = defaultMaxAttempts
	}

	return &Service{
		link:         link,
		click:        click,
		cache:        cacheLinks,
		publisher:    publisher,
		codeLength:   codeLength,
		codeAttempts: codeAttempts,
	}
}

func InitService(ctx context.Context, storage *db.DataBase, cacheLinks *cache.Cache, publisher ClickPublisher, cfgApp *configuration.ConfApp) *Service {

	// *db.DataBase реализует LinkMethods и ClickMethods, *cache.Cache - CacheMethods
	return NewService(storage, storage, cacheLinks, publisher, cfgApp.CodeLength, cfgApp.CodeAttempts)
}
