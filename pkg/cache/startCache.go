package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/IPampurin/LinkTracker/pkg/configuration"
	"github.com/IPampurin/LinkTracker/pkg/db"
	"github.com/wb-go/wbf/logger"
	"github.com/wb-go/wbf/redis"
)

/*
кэш хранит два вида записей:
  - link:<code> — полная запись ссылки (TTL длинный, ~1 час),
  - analytics:*:<code> — готовые ответы аналитики (TTL короткий, ~5 минут)
кэш всегда best-effort: источником истины остаётся только БД
*/

// Cache хранит подключение к БД Redis
type Cache struct {
	redis        *redis.Client
	linkTTL      time.Duration
	analyticsTTL time.Duration
	warming      time.Duration
}

// InitCache запускает работу с Redis
func InitCache(ctx context.Context, storage *db.DataBase, cfgCache *configuration.ConfCache, log logger.Logger) (*Cache, error) {

	// определяем конфигурацию подключения к Redis
	options := redis.Options{
		Address:   fmt.Sprintf("%s:%d", cfgCache.HostName, cfgCache.Port),
		Password:  cfgCache.Password,
		MaxMemory: "100mb",
		Policy:    "allkeys-lru",
	}

	// пробуем подключиться
	clientRedis, err := redis.Connect(options)
	if err != nil {
		return nil, fmt.Errorf("ошибка установки соединения с Redis: %v\n", err)
	}

	// проверяем подключение
	err = clientRedis.Ping(context.Background())
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к Redis: %v\n", err)
	}

	// получаем экземпляр
	cache := &Cache{
		redis:        clientRedis,
		linkTTL:      cfgCache.LinkTTL,
		analyticsTTL: cfgCache.AnalyticsTTL,
		warming:      cfgCache.Warming,
	}

	// прогреваем кэш ссылками за крайний период
	links, err := storage.GetLinksOfPeriod(ctx, cache.warming)
	if err != nil {
		log.Warn("ошибка прогрева кэша", "error", err)
	}

	err = cache.LoadDataToCache(ctx, links)
	if err != nil {
		log.Warn("ошибка прогрева кэша", "error", err)
	}

	log.Info("Кэш работает.")

	return cache, nil
}
