package db

import (
	"context"
	"time"
)

// методы по таблице links
type LinkMethods interface {
	// CreateLink создаёт новую запись в таблице links
	CreateLink(ctx context.Context, link *Link) (*Link, error)

	// GetLinkByShortURL возвращает живую (не удалённую) ссылку по её короткому коду
	GetLinkByShortURL(ctx context.Context, shortURL string) (*Link, error)

	// GetLinkByID возвращает живую ссылку по внутреннему идентификатору
	GetLinkByID(ctx context.Context, id int) (*Link, error)

	// ShortCodeExists проверяет занятость короткого кода,
	// мягко удалённые записи тоже считаются занятыми (код остаётся зарезервированным)
	ShortCodeExists(ctx context.Context, shortURL string) (bool, error)

	// UpdateLink меняет изменяемые поля ссылки и возвращает обновлённую запись
	UpdateLink(ctx context.Context, id int, upd LinkUpdate) (*Link, error)

	// SoftDeleteLink помечает ссылку удалённой (tombstone), физически строка остаётся
	SoftDeleteLink(ctx context.Context, id int) error

	// IncrementClicks увеличивает счётчик переходов атомарным UPDATE на стороне БД
	IncrementClicks(ctx context.Context, linkID int64) error

	// GetLinks возвращает последние 20 созданных живых ссылок
	GetLinks(ctx context.Context) ([]*Link, error)

	// GetLinksOfPeriod возвращает живые ссылки, созданные за указанный период времени
	GetLinksOfPeriod(ctx context.Context, period time.Duration) ([]*Link, error)

	// SearchByOriginalURL ищет живые ссылки, OriginalURL которых содержит подстроку query
	SearchByOriginalURL(ctx context.Context, search string) ([]*Link, error)

	// SearchByShortURL ищет живые ссылки, ShortURL которых содержит подстроку query
	SearchByShortURL(ctx context.Context, search string) ([]*Link, error)
}

// методы по таблице clicks
type ClickMethods interface {
	// SaveClick сохраняет обогащённую запись о переходе
	SaveClick(ctx context.Context, click *Click) error

	// GetOverviewCounts возвращает сводные показатели: всего переходов, уникальных IP, время крайнего перехода
	GetOverviewCounts(ctx context.Context, linkID int) (*OverviewCounts, error)

	// TopCountry возвращает страну с наибольшим числом переходов ("" — переходов не было)
	TopCountry(ctx context.Context, linkID int) (string, error)

	// TopDeviceType возвращает самый частый тип устройства
	TopDeviceType(ctx context.Context, linkID int) (string, error)

	// TopBrowser возвращает самый частый браузер
	TopBrowser(ctx context.Context, linkID int) (string, error)

	// CountClicksByBucket группирует переходы по временным интервалам (hour/day/week) начиная с from
	CountClicksByBucket(ctx context.Context, linkID int, interval string, from time.Time) ([]BucketCount, error)

	// CountClicksByCountry возвращает страны по убыванию числа переходов (не больше limit)
	CountClicksByCountry(ctx context.Context, linkID, limit int) ([]ValueCount, error)

	// CountClicksByCity возвращает города по убыванию числа переходов (не больше limit)
	CountClicksByCity(ctx context.Context, linkID, limit int) ([]ValueCount, error)

	// CountClicksByDeviceType группирует переходы по типу устройства
	CountClicksByDeviceType(ctx context.Context, linkID int) ([]ValueCount, error)

	// CountClicksByBrowserVersion группирует переходы по связке "браузер + версия"
	CountClicksByBrowserVersion(ctx context.Context, linkID int) ([]ValueCount, error)

	// CountClicksByOSVersion группирует переходы по связке "ОС + версия"
	CountClicksByOSVersion(ctx context.Context, linkID int) ([]ValueCount, error)

	// CountClicksByReferer возвращает источники переходов по убыванию числа переходов (не больше limit)
	CountClicksByReferer(ctx context.Context, linkID, limit int) ([]ValueCount, error)

	// GetClicksForExport возвращает все переходы по ссылке, новые первыми (для выгрузки CSV)
	GetClicksForExport(ctx context.Context, linkID int) ([]*Click, error)
}
