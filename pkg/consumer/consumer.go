package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"net"

	"github.com/IPampurin/LinkTracker/pkg/cache"
	"github.com/IPampurin/LinkTracker/pkg/configuration"
	"github.com/IPampurin/LinkTracker/pkg/db"
	"github.com/IPampurin/LinkTracker/pkg/rabbit"
	"github.com/rabbitmq/amqp091-go"
	"github.com/wb-go/wbf/logger"
	"github.com/wb-go/wbf/rabbitmq"
	"github.com/wb-go/wbf/retry"
)

// ClickStorage — часть хранилища, нужная конвейеру кликов
type ClickStorage interface {
	// SaveClick сохраняет обогащённую запись о переходе
	SaveClick(ctx context.Context, click *db.Click) error

	// IncrementClicks увеличивает счётчик переходов по ссылке
	IncrementClicks(ctx context.Context, linkID int64) error
}

// Consumer обрабатывает события кликов из очереди: обогащает данными
// о браузере и геолокации, сохраняет в БД и сбрасывает кэш аналитики
type Consumer struct {
	storage ClickStorage
	cache   *cache.Cache
	rabbit  *rabbit.ClientRabbit
	cfg     *configuration.ConfPipeline
	env     string
	log     logger.Logger
}

// InitConsumer запускает консумер очереди кликов
func InitConsumer(ctx context.Context, storage ClickStorage, cacheLinks *cache.Cache, rabbitClient *rabbit.ClientRabbit, cfg *configuration.ConfPipeline, env string, log logger.Logger) error {

	c := &Consumer{
		storage: storage,
		cache:   cacheLinks,
		rabbit:  rabbitClient,
		cfg:     cfg,
		env:     env,
		log:     log,
	}

	// конфигурация потребителя
	consumerCfg := rabbitmq.ConsumerConfig{
		Queue:         rabbitClient.GetQueueName(),
		ConsumerTag:   "link-tracker",
		AutoAck:       false, // ручное подтверждение
		Ask:           rabbitmq.AskConfig{Multiple: false},
		Nack:          rabbitmq.NackConfig{Multiple: false, Requeue: false}, // по умолчанию не возвращаем в очередь
		Args:          nil,
		Workers:       cfg.Workers,
		PrefetchCount: cfg.Prefetch,
	}

	// создаём консумера, используя Client
	queueConsumer := rabbitmq.NewConsumer(rabbitClient.Client, consumerCfg, c.handleMessage)

	log.Info("запуск консумера", "queue", consumerCfg.Queue, "workers", consumerCfg.Workers)

	// запускаем консумер (блокируется до отмены контекста или ошибки)
	// в случае ошибки возвращаем её, и из main отменяется общий контекст
	if err := queueConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// handleMessage обрабатывает одно событие клика из очереди
func (c *Consumer) handleMessage(ctx context.Context, delivery amqp091.Delivery) error {

	// 1. Парсим событие клика
	var event db.ClickEvent
	if err := json.Unmarshal(delivery.Body, &event); err != nil {
		c.log.Error("ошибка разбора сообщения", "error", err)
		// битое сообщение чинить некому — откладываем в очередь недоставленных
		if pubErr := c.rabbit.PublishDead(ctx, delivery.Body); pubErr != nil {
			c.log.Error("не удалось отложить битое сообщение", "error", pubErr)
		}
		return delivery.Ack(false)
	}

	c.log.Info("получено событие клика", "uid", event.UID, "shortUrl", event.ShortURL)

	// 2. Обогащаем: разбор User-Agent и геолокация по IP
	ua := ParseUserAgent(event.UserAgent)
	geo := c.resolveGeo(ctx, event.IPAddress)

	click := &db.Click{
		LinkID:         event.LinkID,
		IPAddress:      net.ParseIP(event.IPAddress),
		UserAgent:      event.UserAgent,
		Referer:        event.Referer,
		Browser:        ua.Browser,
		BrowserVersion: ua.BrowserVersion,
		OS:             ua.OS,
		OSVersion:      ua.OSVersion,
		DeviceType:     ua.DeviceType,
		EventUID:       event.UID,
		CreatedAt:      event.OccurredAt,
	}
	if geo != nil {
		click.Country = geo.Country
		click.City = geo.City
		click.Timezone = geo.Timezone
		click.Latitude = geo.Latitude
		click.Longitude = geo.Longitude
	}

	// 3. Сохраняем клик и увеличиваем счётчик с повторными попытками
	if err := c.persistClick(ctx, &event, click); err != nil {
		// после всех попыток БД так и не ответила — откладываем событие
		// в очередь недоставленных, чтобы не блокировать остальные клики
		c.log.Error("не удалось сохранить клик после всех попыток",
			"uid", event.UID,
			"attempts", c.cfg.RetryCount,
			"error", err)
		if pubErr := c.rabbit.PublishDead(ctx, delivery.Body); pubErr != nil {
			c.log.Error("не удалось отложить событие клика", "uid", event.UID, "error", pubErr)
			// и отложить не вышло — возвращаем в рабочую очередь
			return delivery.Nack(false, true)
		}
		return delivery.Ack(false)
	}

	// 4. Инвалидируем кэш: запись ссылки (счётчик изменился) и готовые ответы аналитики
	if delErr := c.cache.InvalidateLink(ctx, event.ShortURL); delErr != nil {
		c.log.Error("не удалось удалить ссылку из кэша", "shortUrl", event.ShortURL, "error", delErr)
	}
	if delErr := c.cache.InvalidateAnalytics(ctx, event.ShortURL); delErr != nil {
		c.log.Error("не удалось удалить аналитику из кэша", "shortUrl", event.ShortURL, "error", delErr)
	}

	c.log.Info("клик сохранён", "uid", event.UID, "shortUrl", event.ShortURL)

	// подтверждаем обработку сообщения (оно удаляется из очереди)
	return delivery.Ack(false)
}

// persistClick сохраняет клик и увеличивает счётчик переходов с повторными
// попытками. Вставка выполняется не более одного раза: если она прошла,
// а счётчик обновить не удалось, повторы трогают только счётчик —
// иначе каждая новая попытка плодила бы дубликат записи о том же переходе
func (c *Consumer) persistClick(ctx context.Context, event *db.ClickEvent, click *db.Click) error {

	strategy := retry.Strategy{
		Attempts: c.cfg.RetryCount,
		Delay:    c.cfg.RetryDelay,
		Backoff:  float64(c.cfg.Backoff),
	}

	saved := false

	return retry.DoContext(ctx, strategy, func() error {
		if !saved {
			if saveErr := c.storage.SaveClick(ctx, click); saveErr != nil {
				c.log.Warn("ошибка сохранения клика, попытка повтора", "uid", event.UID, "error", saveErr)
				return saveErr
			}
			saved = true
		}
		return c.storage.IncrementClicks(ctx, int64(event.LinkID))
	})
}

// resolveGeo определяет геолокацию по IP за ограниченное время,
// при любых проблемах клик сохраняется без географии
func (c *Consumer) resolveGeo(ctx context.Context, ipAddress string) *GeoInfo {

	geoCtx, cancel := context.WithTimeout(ctx, c.cfg.GeoTimeout)
	defer cancel()

	geo, err := LookupGeo(geoCtx, ipAddress, c.env)
	if err != nil {
		c.log.Warn("ошибка определения геолокации", "ip", ipAddress, "error", err)
		return nil
	}

	return geo
}
