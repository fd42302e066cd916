package service

import (
	"context"

	"github.com/IPampurin/LinkTracker/pkg/db"
	"github.com/wb-go/wbf/logger"
)

type ServiceMethods interface {
	// CreateShortLink создаёт новую короткую ссылку
	CreateShortLink(ctx context.Context, log logger.Logger, in CreateLinkInput, principal Principal) (*ResponseLink, error)

	// BulkCreate создаёт пакет ссылок с частичным успехом
	BulkCreate(ctx context.Context, log logger.Logger, items []CreateLinkInput, principal Principal) (*BulkResult, error)

	// Resolve возвращает ссылку по короткому коду через кэш
	Resolve(ctx context.Context, log logger.Logger, shortURL string) (*db.Link, error)

	// Redirect разрешает переход: политика доступа + публикация события клика
	Redirect(ctx context.Context, log logger.Logger, shortURL, password, clientIP, userAgent, referer string) (string, error)

	// UpdateLink меняет изменяемые поля ссылки (владелец или администратор)
	UpdateLink(ctx context.Context, log logger.Logger, shortURL string, in UpdateLinkInput, principal Principal) (*ResponseLink, error)

	// DeleteLink мягко удаляет ссылку (владелец или администратор)
	DeleteLink(ctx context.Context, log logger.Logger, shortURL string, principal Principal) error

	// LastLinks возвращает список последних сокращённых ссылок
	LastLinks(ctx context.Context, log logger.Logger) ([]*ResponseLink, error)

	// SearchByOriginalURL ищет ссылки, OriginalURL которых содержит подстроку query
	SearchByOriginalURL(ctx context.Context, log logger.Logger, query string) ([]*ResponseLink, error)

	// SearchByShortURL ищет ссылки, ShortURL которых содержит подстроку query
	SearchByShortURL(ctx context.Context, log logger.Logger, query string) ([]*ResponseLink, error)

	// Overview возвращает сводную аналитику по ссылке
	Overview(ctx context.Context, log logger.Logger, shortURL string) (*ResponseOverview, error)

	// Timeline возвращает временной ряд кликов
	Timeline(ctx context.Context, log logger.Logger, shortURL, interval string, days int) (*ResponseTimeline, error)

	// Locations возвращает топ стран и городов
	Locations(ctx context.Context, log logger.Logger, shortURL string) (*ResponseLocations, error)

	// Devices возвращает разбивку по устройствам, браузерам и ОС
	Devices(ctx context.Context, log logger.Logger, shortURL string) (*ResponseDevices, error)

	// Referrers возвращает топ источников переходов
	Referrers(ctx context.Context, log logger.Logger, shortURL string) (*ResponseReferrers, error)

	// ExportCSV выгружает все клики по ссылке в CSV
	ExportCSV(ctx context.Context, log logger.Logger, shortURL string) ([]byte, error)
}
