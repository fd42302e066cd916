package db

import (
	"net"
	"time"

	"github.com/google/uuid"
)

// Link представляет запись в таблице links
type Link struct {
	ID           int        `json:"id"`            // внутренний идентификатор ссылки (автоинкремент)
	ShortURL     string     `json:"short_url"`     // короткий код (например, "abc123"), уникален в пределах таблицы
	OriginalURL  string     `json:"original_url"`  // исходный длинный URL
	Title        string     `json:"title"`         // необязательное название ссылки
	OwnerID      *int       `json:"owner_id"`      // владелец ссылки (nil — ссылка анонимная)
	IsCustom     bool       `json:"is_custom"`     // флаг, указывающий, что short_url задан пользователем
	ClicksCount  int        `json:"clicks_count"`  // количество переходов (меняется только атомарным инкрементом)
	ExpiresAt    *time.Time `json:"expires_at"`    // срок действия ссылки (nil — бессрочная)
	IsActive     bool       `json:"is_active"`     // флаг активности (выключенная ссылка не редиректит)
	PasswordHash string     `json:"-"`             // bcrypt-хэш пароля ("" — пароль не задан)
	MaxClicks    int        `json:"max_clicks"`    // лимит переходов (0 — без лимита)
	CreatedAt    time.Time  `json:"created_at"`    // время создания записи
	UpdatedAt    time.Time  `json:"updated_at"`    // время последнего изменения
	DeletedAt    *time.Time `json:"-"`             // время мягкого удаления (nil — ссылка живая)
}

// LinkUpdate описывает частичное обновление ссылки,
// менять после создания можно только название, активность, срок действия и лимит переходов
type LinkUpdate struct {
	Title     *string
	IsActive  *bool
	ExpiresAt *time.Time // указатель на нулевое время снимает срок действия
	MaxClicks *int
}

// ClickEvent — сырое событие перехода, публикуемое в очередь при редиректе
// (в БД не сохраняется, это полезная нагрузка сообщения конвейера)
type ClickEvent struct {
	UID        uuid.UUID `json:"uid"`         // идентификатор события (сохраняется с переходом, задел под дедупликацию)
	LinkID     int       `json:"link_id"`     // идентификатор ссылки
	ShortURL   string    `json:"short_url"`   // короткий код (для инвалидации кэша и логов)
	IPAddress  string    `json:"ip_address"`  // IP клиента как есть
	UserAgent  string    `json:"user_agent"`  // сырая строка User-Agent
	Referer    string    `json:"referer"`     // сырая строка Referer
	OccurredAt time.Time `json:"occurred_at"` // момент перехода
}

// Click представляет обогащённую запись о переходе в таблице clicks,
// запись неизменяемая: только вставка, обновлений не бывает
type Click struct {
	ID             int       // уникальный идентификатор записи (автоинкремент)
	EventUID       uuid.UUID // идентификатор исходного события из очереди
	LinkID         int       // идентификатор ссылки, по которой совершён переход
	IPAddress      net.IP    // IP-адрес посетителя (nil — не определён)
	UserAgent      string    // сырая строка User-Agent
	Referer        string    // URL источника перехода
	Browser        string    // браузер, разобранный из User-Agent
	BrowserVersion string    // версия браузера
	OS             string    // операционная система
	OSVersion      string    // версия операционной системы
	DeviceType     string    // тип устройства (mobile/tablet/desktop/tv/wearable/console/bot)
	Country        string    // страна по IP ("" — не определена)
	City           string    // город по IP
	Timezone       string    // часовой пояс по IP
	Latitude       *float64  // широта (nil — не определена)
	Longitude      *float64  // долгота
	CreatedAt      time.Time // момент перехода
}

// ValueCount — пара "значение-количество" для агрегатов
type ValueCount struct {
	Value string
	Count int
}

// BucketCount — количество переходов в одном временном интервале
type BucketCount struct {
	Bucket time.Time
	Count  int
}

// OverviewCounts — сводные показатели по переходам одной ссылки
type OverviewCounts struct {
	TotalClicks    int
	UniqueVisitors int // по различным IP
	LastClickAt    *time.Time
}
