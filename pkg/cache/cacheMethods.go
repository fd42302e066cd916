package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/IPampurin/LinkTracker/pkg/db"
	"github.com/wb-go/wbf/redis"
	"github.com/wb-go/wbf/retry"
)

// LoadDataToCache загружает данные за последнее время в кэш при старте
func (c *Cache) LoadDataToCache(ctx context.Context, lastLinks []*db.Link) error {

	if c == nil || c.redis == nil {
		return nil
	}

	strategy := retry.Strategy{Attempts: 3, Delay: 100 * time.Millisecond, Backoff: 2}

	for _, link := range lastLinks {

		key := LinkKey(link.ShortURL)
		data, err := json.Marshal(link)
		if err != nil {
			log.Printf("ошибка маршалинга ссылки %s при прогреве кэша: %v", key, err)
			continue
		}

		err = c.redis.SetWithExpirationAndRetry(ctx, strategy, key, data, c.linkTTL)
		if err != nil {
			log.Printf("ошибка добавления ссылки %s при прогреве кэша: %v", key, err)
			continue
		}
	}

	return nil
}

// GetLink возвращает ссылку из кэша по короткому коду (или nil, nil при промахе),
// недоступность Redis промахом и считается — поиск уходит в БД, редирект не падает
func (c *Cache) GetLink(ctx context.Context, shortURL string) (*db.Link, error) {

	if c == nil || c.redis == nil {
		return nil, nil
	}

	data, err := c.redis.Get(ctx, LinkKey(shortURL))
	if err != nil {
		if errors.Is(err, redis.NoMatches) {
			return nil, nil
		}
		return nil, err
	}

	var link db.Link
	if err := json.Unmarshal([]byte(data), &link); err != nil {
		return nil, err
	}

	return &link, nil
}

// SetLink сохраняет ссылку в кэш с внутренним TTL
func (c *Cache) SetLink(ctx context.Context, shortURL string, link *db.Link) error {

	if c == nil || c.redis == nil {
		return nil
	}

	data, err := json.Marshal(link)
	if err != nil {
		return err
	}

	return c.redis.SetWithExpiration(ctx, LinkKey(shortURL), data, c.linkTTL)
}

// InvalidateLink удаляет ссылку из кэша
func (c *Cache) InvalidateLink(ctx context.Context, shortURL string) error {

	if c == nil || c.redis == nil {
		return nil
	}

	return c.redis.Del(ctx, LinkKey(shortURL))
}

// InvalidateAnalytics удаляет перечисленный список аналитических ключей ссылки
func (c *Cache) InvalidateAnalytics(ctx context.Context, shortURL string) error {

	if c == nil || c.redis == nil {
		return nil
	}

	var lastErr error
	for _, key := range AnalyticsKeys(shortURL) {
		if err := c.redis.Del(ctx, key); err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// GetPayload возвращает закэшированный аналитический ответ по ключу (nil, nil — промах)
func (c *Cache) GetPayload(ctx context.Context, key string) ([]byte, error) {

	if c == nil || c.redis == nil {
		return nil, nil
	}

	data, err := c.redis.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.NoMatches) {
			return nil, nil
		}
		return nil, err
	}

	return []byte(data), nil
}

// SetPayload сохраняет аналитический ответ с коротким TTL
func (c *Cache) SetPayload(ctx context.Context, key string, data []byte) error {

	if c == nil || c.redis == nil {
		return nil
	}

	return c.redis.SetWithExpiration(ctx, key, data, c.analyticsTTL)
}
