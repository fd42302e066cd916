package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// linkColumns — полный список колонок таблицы links в порядке сканирования
const linkColumns = `id, short_url, original_url, title, owner_id, is_custom, clicks_count,
	                 expires_at, is_active, password_hash, max_clicks, created_at, updated_at, deleted_at`

// linkFields возвращает адреса полей структуры в порядке linkColumns
func linkFields(l *Link) []any {
	return []any{
		&l.ID,
		&l.ShortURL,
		&l.OriginalURL,
		&l.Title,
		&l.OwnerID,
		&l.IsCustom,
		&l.ClicksCount,
		&l.ExpiresAt,
		&l.IsActive,
		&l.PasswordHash,
		&l.MaxClicks,
		&l.CreatedAt,
		&l.UpdatedAt,
		&l.DeletedAt,
	}
}

// CreateLink добавляет новую запись в таблицу links БД
func (d *DataBase) CreateLink(ctx context.Context, link *Link) (*Link, error) {

	query := `   INSERT INTO links (short_url, original_url, title, owner_id, is_custom,
	                                expires_at, is_active, password_hash, max_clicks, created_at, updated_at)
                 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
			  RETURNING id, clicks_count, created_at, updated_at`

	err := d.Pool.QueryRow(ctx, query,
		link.ShortURL,
		link.OriginalURL,
		link.Title,
		link.OwnerID,
		link.IsCustom,
		link.ExpiresAt,
		link.IsActive,
		link.PasswordHash,
		link.MaxClicks,
	).Scan(&link.ID, &link.ClicksCount, &link.CreatedAt, &link.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("ошибка добавления записи о ссылке в CreateLink: %w", err)
	}

	return link, nil
}

// GetLinkByShortURL получает из таблицы links БД живую запись по короткому коду
func (d *DataBase) GetLinkByShortURL(ctx context.Context, shortURL string) (*Link, error) {

	query := `SELECT ` + linkColumns + `
	            FROM links
			   WHERE short_url = $1 AND deleted_at IS NULL`

	link := &Link{}

	err := d.Pool.QueryRow(ctx, query, shortURL).Scan(linkFields(link)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения записи о ссылке в GetLinkByShortURL: %w", err)
	}

	return link, nil
}

// GetLinkByID получает из таблицы links БД живую запись по внутреннему идентификатору
func (d *DataBase) GetLinkByID(ctx context.Context, id int) (*Link, error) {

	query := `SELECT ` + linkColumns + `
	            FROM links
			   WHERE id = $1 AND deleted_at IS NULL`

	link := &Link{}

	err := d.Pool.QueryRow(ctx, query, id).Scan(linkFields(link)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения записи о ссылке в GetLinkByID: %w", err)
	}

	return link, nil
}

// ShortCodeExists проверяет занятость короткого кода,
// tombstone-записи учитываются: удалённый код остаётся зарезервированным,
// чтобы старая закладка или зависший кэш не увели посетителя на чужую ссылку
func (d *DataBase) ShortCodeExists(ctx context.Context, shortURL string) (bool, error) {

	query := `SELECT EXISTS (SELECT 1
	                           FROM links
			                  WHERE short_url = $1)`

	var exists bool
	err := d.Pool.QueryRow(ctx, query, shortURL).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки занятости кода в ShortCodeExists: %w", err)
	}

	return exists, nil
}

// UpdateLink меняет изменяемые поля ссылки (название, активность, срок действия, лимит)
// и возвращает обновлённую запись, остальные поля после создания неизменяемы
func (d *DataBase) UpdateLink(ctx context.Context, id int, upd LinkUpdate) (*Link, error) {

	// срок действия передаётся отдельной парой "менять/значение",
	// потому что nil-указатель означает "не трогать", а нулевое время — "снять срок"
	expiresTouched := upd.ExpiresAt != nil
	var expiresValue *time.Time
	if expiresTouched && !upd.ExpiresAt.IsZero() {
		expiresValue = upd.ExpiresAt
	}

	query := `   UPDATE links
	                SET title      = COALESCE($2, title),
			            is_active  = COALESCE($3, is_active),
			            expires_at = CASE WHEN $4::boolean THEN $5 ELSE expires_at END,
			            max_clicks = COALESCE($6, max_clicks),
			            updated_at = NOW()
			      WHERE id = $1 AND deleted_at IS NULL
			  RETURNING ` + linkColumns

	link := &Link{}

	err := d.Pool.QueryRow(ctx, query, id, upd.Title, upd.IsActive, expiresTouched, expiresValue, upd.MaxClicks).
		Scan(linkFields(link)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка обновления записи о ссылке в UpdateLink: %w", err)
	}

	return link, nil
}

// SoftDeleteLink помечает ссылку удалённой, физически строка и её переходы остаются
// (окончательную зачистку tombstone-записей делает внешний фоновый процесс)
func (d *DataBase) SoftDeleteLink(ctx context.Context, id int) error {

	query := `UPDATE links
	             SET deleted_at = NOW(),
			         updated_at = NOW()
			   WHERE id = $1 AND deleted_at IS NULL`

	tag, err := d.Pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("ошибка мягкого удаления ссылки в SoftDeleteLink: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows // ссылка не найдена или уже удалена
	}

	return nil
}

// IncrementClicks увеличивает счётчик переходов по ссылке,
// инкремент выполняется одним атомарным UPDATE на стороне БД,
// никогда не через чтение-изменение-запись (иначе при конкуренции теряются обновления)
func (d *DataBase) IncrementClicks(ctx context.Context, linkID int64) error {

	query := `UPDATE links
	             SET clicks_count = clicks_count + 1
			   WHERE id = $1`

	_, err := d.Pool.Exec(ctx, query, linkID)
	if err != nil {
		return fmt.Errorf("ошибка увеличения счётчика переходов в IncrementClicks: %w", err)
	}

	return nil
}

// GetLinks получает крайние по времени 20 живых записей о ссылках
func (d *DataBase) GetLinks(ctx context.Context) ([]*Link, error) {

	const limitGetLinks = 20

	query := `SELECT ` + linkColumns + `
	            FROM links
			   WHERE deleted_at IS NULL
			   ORDER BY created_at DESC
			   LIMIT $1`

	return d.queryLinks(ctx, "GetLinks", query, limitGetLinks)
}

// GetLinksOfPeriod возвращает живые записи за крайний period времени (для прогрева кэша)
func (d *DataBase) GetLinksOfPeriod(ctx context.Context, period time.Duration) ([]*Link, error) {

	threshold := time.Now().Add(-period)

	query := `SELECT ` + linkColumns + `
	            FROM links
			   WHERE created_at >= $1 AND deleted_at IS NULL`

	return d.queryLinks(ctx, "GetLinksOfPeriod", query, threshold)
}

// SearchByOriginalURL ищет живые ссылки, OriginalURL которых содержит подстроку query (регистронезависимо)
func (d *DataBase) SearchByOriginalURL(ctx context.Context, search string) ([]*Link, error) {

	query := `SELECT ` + linkColumns + `
	            FROM links
			   WHERE original_url ILIKE '%' || $1 || '%' AND deleted_at IS NULL
			   ORDER BY created_at DESC`

	return d.queryLinks(ctx, "SearchByOriginalURL", query, search)
}

// SearchByShortURL ищет живые ссылки, ShortURL которых содержит подстроку query (регистронезависимо)
func (d *DataBase) SearchByShortURL(ctx context.Context, search string) ([]*Link, error) {

	query := `SELECT ` + linkColumns + `
	            FROM links
			   WHERE short_url ILIKE '%' || $1 || '%' AND deleted_at IS NULL
			   ORDER BY created_at DESC`

	return d.queryLinks(ctx, "SearchByShortURL", query, search)
}

// queryLinks выполняет запрос со стандартным набором колонок links и сканирует результат
func (d *DataBase) queryLinks(ctx context.Context, caller, query string, args ...any) ([]*Link, error) {

	rows, err := d.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении списка ссылок в %s: %w", caller, err)
	}
	defer rows.Close()

	links := make([]*Link, 0)
	for rows.Next() {
		var link Link
		if err := rows.Scan(linkFields(&link)...); err != nil {
			return nil, fmt.Errorf("ошибка при сканировании строки списка ссылок в %s: %w", caller, err)
		}

		links = append(links, &link)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по списку ссылок в %s: %w", caller, err)
	}

	return links, nil
}
