package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// SaveClick записывает один обогащённый переход,
// запись неизменяемая: обновлений по таблице clicks не бывает
func (d *DataBase) SaveClick(ctx context.Context, click *Click) error {

	query := `INSERT INTO clicks (event_uid, link_id, ip_address, user_agent, referer,
	                              browser, browser_version, os, os_version, device_type,
	                              country, city, timezone, latitude, longitude, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := d.Pool.Exec(ctx, query,
		click.EventUID,
		click.LinkID,
		click.IPAddress,
		click.UserAgent,
		click.Referer,
		click.Browser,
		click.BrowserVersion,
		click.OS,
		click.OSVersion,
		click.DeviceType,
		click.Country,
		click.City,
		click.Timezone,
		click.Latitude,
		click.Longitude,
		click.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("ошибка добавления записи о переходе в SaveClick: %w", err)
	}

	return nil
}

// GetOverviewCounts возвращает сводные показатели по переходам одной ссылки
func (d *DataBase) GetOverviewCounts(ctx context.Context, linkID int) (*OverviewCounts, error) {

	query := `SELECT COUNT(*),
	                 COUNT(DISTINCT ip_address),
	                 MAX(created_at)
                FROM clicks
               WHERE link_id = $1`

	counts := &OverviewCounts{}

	err := d.Pool.QueryRow(ctx, query, linkID).
		Scan(&counts.TotalClicks, &counts.UniqueVisitors, &counts.LastClickAt)
	if err != nil {
		return nil, fmt.Errorf("ошибка при выполнении запроса в GetOverviewCounts: %w", err)
	}

	return counts, nil
}

// TopCountry возвращает страну с наибольшим числом переходов ("" — данных нет)
func (d *DataBase) TopCountry(ctx context.Context, linkID int) (string, error) {

	return d.topValue(ctx, "TopCountry", `SELECT country
	                                        FROM clicks
                                           WHERE link_id = $1 AND country <> ''
                                           GROUP BY country
                                           ORDER BY COUNT(*) DESC
                                           LIMIT 1`, linkID)
}

// TopDeviceType возвращает самый частый тип устройства
func (d *DataBase) TopDeviceType(ctx context.Context, linkID int) (string, error) {

	return d.topValue(ctx, "TopDeviceType", `SELECT device_type
	                                           FROM clicks
                                              WHERE link_id = $1 AND device_type <> ''
                                              GROUP BY device_type
                                              ORDER BY COUNT(*) DESC
                                              LIMIT 1`, linkID)
}

// TopBrowser возвращает самый частый браузер
func (d *DataBase) TopBrowser(ctx context.Context, linkID int) (string, error) {

	return d.topValue(ctx, "TopBrowser", `SELECT browser
	                                        FROM clicks
                                           WHERE link_id = $1 AND browser <> ''
                                           GROUP BY browser
                                           ORDER BY COUNT(*) DESC
                                           LIMIT 1`, linkID)
}

// topValue выполняет запрос "самое частое значение", отсутствие строк не считается ошибкой
func (d *DataBase) topValue(ctx context.Context, caller, query string, linkID int) (string, error) {

	var value string
	err := d.Pool.QueryRow(ctx, query, linkID).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("ошибка при выполнении запроса в %s: %w", caller, err)
	}

	return value, nil
}

// CountClicksByBucket группирует переходы по временным интервалам начиная с from,
// interval ограничен значениями hour/day/week (подставляется в date_trunc)
func (d *DataBase) CountClicksByBucket(ctx context.Context, linkID int, interval string, from time.Time) ([]BucketCount, error) {

	switch interval {
	case "hour", "day", "week":
	default:
		return nil, fmt.Errorf("недопустимый интервал группировки в CountClicksByBucket: %q", interval)
	}

	query := `SELECT date_trunc($2, created_at) AS bucket,
	                 COUNT(*) AS count
                FROM clicks
               WHERE link_id = $1 AND created_at >= $3
               GROUP BY bucket
               ORDER BY bucket`

	rows, err := d.Pool.Query(ctx, query, linkID, interval, from)
	if err != nil {
		return nil, fmt.Errorf("ошибка при выполнении запроса в CountClicksByBucket: %w", err)
	}
	defer rows.Close()

	buckets := make([]BucketCount, 0)
	for rows.Next() {
		var b BucketCount
		if err := rows.Scan(&b.Bucket, &b.Count); err != nil {
			return nil, fmt.Errorf("ошибка при сканировании строки запроса в CountClicksByBucket: %w", err)
		}

		buckets = append(buckets, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по списку записей в CountClicksByBucket: %w", err)
	}

	return buckets, nil
}

// CountClicksByCountry возвращает страны по убыванию числа переходов (не больше limit)
func (d *DataBase) CountClicksByCountry(ctx context.Context, linkID, limit int) ([]ValueCount, error) {

	query := `SELECT country,
	                 COUNT(*) AS count
                FROM clicks
               WHERE link_id = $1 AND country <> ''
               GROUP BY country
               ORDER BY count DESC
               LIMIT $2`

	return d.queryValueCounts(ctx, "CountClicksByCountry", query, linkID, limit)
}

// CountClicksByCity возвращает города по убыванию числа переходов (не больше limit)
func (d *DataBase) CountClicksByCity(ctx context.Context, linkID, limit int) ([]ValueCount, error) {

	query := `SELECT city,
	                 COUNT(*) AS count
                FROM clicks
               WHERE link_id = $1 AND city <> ''
               GROUP BY city
               ORDER BY count DESC
               LIMIT $2`

	return d.queryValueCounts(ctx, "CountClicksByCity", query, linkID, limit)
}

// CountClicksByDeviceType группирует переходы по типу устройства
func (d *DataBase) CountClicksByDeviceType(ctx context.Context, linkID int) ([]ValueCount, error) {

	query := `SELECT device_type,
	                 COUNT(*) AS count
                FROM clicks
               WHERE link_id = $1
               GROUP BY device_type
               ORDER BY count DESC`

	return d.queryValueCounts(ctx, "CountClicksByDeviceType", query, linkID)
}

// CountClicksByBrowserVersion группирует переходы по связке "браузер + версия"
func (d *DataBase) CountClicksByBrowserVersion(ctx context.Context, linkID int) ([]ValueCount, error) {

	query := `SELECT TRIM(browser || ' ' || browser_version) AS label,
	                 COUNT(*) AS count
                FROM clicks
               WHERE link_id = $1 AND browser <> ''
               GROUP BY label
               ORDER BY count DESC`

	return d.queryValueCounts(ctx, "CountClicksByBrowserVersion", query, linkID)
}

// CountClicksByOSVersion группирует переходы по связке "ОС + версия"
func (d *DataBase) CountClicksByOSVersion(ctx context.Context, linkID int) ([]ValueCount, error) {

	query := `SELECT TRIM(os || ' ' || os_version) AS label,
	                 COUNT(*) AS count
                FROM clicks
               WHERE link_id = $1 AND os <> ''
               GROUP BY label
               ORDER BY count DESC`

	return d.queryValueCounts(ctx, "CountClicksByOSVersion", query, linkID)
}

// CountClicksByReferer возвращает источники переходов по убыванию числа переходов,
// пустой referer остаётся пустой строкой, подпись "Direct" подставляет слой сервиса
func (d *DataBase) CountClicksByReferer(ctx context.Context, linkID, limit int) ([]ValueCount, error) {

	query := `SELECT referer,
	                 COUNT(*) AS count
                FROM clicks
               WHERE link_id = $1
               GROUP BY referer
               ORDER BY count DESC
               LIMIT $2`

	return d.queryValueCounts(ctx, "CountClicksByReferer", query, linkID, limit)
}

// GetClicksForExport возвращает все переходы по ссылке, новые первыми
func (d *DataBase) GetClicksForExport(ctx context.Context, linkID int) ([]*Click, error) {

	query := `SELECT id, event_uid, link_id, ip_address, user_agent, referer,
	                 browser, browser_version, os, os_version, device_type,
	                 country, city, timezone, latitude, longitude, created_at
                FROM clicks
               WHERE link_id = $1
               ORDER BY created_at DESC`

	rows, err := d.Pool.Query(ctx, query, linkID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении списка переходов в GetClicksForExport: %w", err)
	}
	defer rows.Close()

	clicks := make([]*Click, 0)
	for rows.Next() {
		var c Click
		err := rows.Scan(
			&c.ID,
			&c.EventUID,
			&c.LinkID,
			&c.IPAddress,
			&c.UserAgent,
			&c.Referer,
			&c.Browser,
			&c.BrowserVersion,
			&c.OS,
			&c.OSVersion,
			&c.DeviceType,
			&c.Country,
			&c.City,
			&c.Timezone,
			&c.Latitude,
			&c.Longitude,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка при сканировании строки списка переходов в GetClicksForExport: %w", err)
		}

		clicks = append(clicks, &c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по списку переходов в GetClicksForExport: %w", err)
	}

	return clicks, nil
}

// queryValueCounts выполняет агрегирующий запрос "значение-количество" и сканирует результат
func (d *DataBase) queryValueCounts(ctx context.Context, caller, query string, args ...any) ([]ValueCount, error) {

	rows, err := d.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка при выполнении запроса в %s: %w", caller, err)
	}
	defer rows.Close()

	counts := make([]ValueCount, 0)
	for rows.Next() {
		var vc ValueCount
		if err := rows.Scan(&vc.Value, &vc.Count); err != nil {
			return nil, fmt.Errorf("ошибка при сканировании строки запроса в %s: %w", caller, err)
		}

		counts = append(counts, vc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по списку записей в %s: %w", caller, err)
	}

	return counts, nil
}
