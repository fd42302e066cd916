package cache

import (
	"context"

	"github.com/IPampurin/LinkTracker/pkg/db"
)

type CacheMethods interface {
	// GetLink возвращает ссылку из кэша по её короткому коду (nil, nil — промах)
	GetLink(ctx context.Context, shortURL string) (*db.Link, error)

	// SetLink сохраняет ссылку в кэш с предустановленным TTL
	SetLink(ctx context.Context, shortURL string, link *db.Link) error

	// InvalidateLink удаляет ссылку из кэша,
	// вызывается на каждой мутации (update/delete/increment) — пропуск инвалидации
	// означает устаревший редирект, то есть ошибку корректности, а не оптимизации
	InvalidateLink(ctx context.Context, shortURL string) error

	// InvalidateAnalytics удаляет перечисленный список аналитических ключей ссылки
	InvalidateAnalytics(ctx context.Context, shortURL string) error

	// GetPayload возвращает закэшированный аналитический ответ по ключу (nil, nil — промах)
	GetPayload(ctx context.Context, key string) ([]byte, error)

	// SetPayload сохраняет аналитический ответ с коротким TTL
	SetPayload(ctx context.Context, key string, data []byte) error

	// LoadDataToCache выполняет прогрев кэша, сохраняя переданный список ссылок
	LoadDataToCache(ctx context.Context, lastLinks []*db.Link) error
}
