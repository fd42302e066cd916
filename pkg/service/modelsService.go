package service

import "time"

// Principal - кто выполняет операцию (заполняется из заголовков внешней авторизации)
type Principal struct {
	UserID int
	Role   string
}

// IsAdmin сообщает, есть ли у субъекта права администратора
func (p Principal) IsAdmin() bool {
	return p.Role == "admin"
}

// CreateLinkInput - данные на создание ссылки (POST /shorten вход)
type CreateLinkInput struct {
	OriginalURL string     `json:"original_url"`
	CustomAlias string     `json:"custom_alias,omitempty"`
	Title       string     `json:"title,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Password    string     `json:"password,omitempty"`
	MaxClicks   int        `json:"max_clicks,omitempty"`
}

// UpdateLinkInput - изменяемые после создания поля (PATCH /links/:short_url вход)
type UpdateLinkInput struct {
	Title     *string    `json:"title,omitempty"`
	IsActive  *bool      `json:"is_active,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"` // нулевое время снимает срок действия
	MaxClicks *int       `json:"max_clicks,omitempty"`
}

// ResponseLink - ответ на успешное создание (POST /shorten выход) или запрос данных (элемент на GET /links выход)
type ResponseLink struct {
	ID          int        `json:"-"`
	ShortURL    string     `json:"short_url"`
	OriginalURL string     `json:"original_url"`
	Title       string     `json:"title,omitempty"`
	IsCustom    bool       `json:"is_custom"`
	IsActive    bool       `json:"is_active"`
	ClicksCount int        `json:"clicks_count"`
	MaxClicks   int        `json:"max_clicks,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// BulkResult - итог пакетного создания (POST /shorten/bulk выход),
// частичный успех: конфликтные элементы пропускаются, а не валят весь пакет
type BulkResult struct {
	Created int             `json:"created"`
	Skipped int             `json:"skipped"`
	Links   []*ResponseLink `json:"links"`
	Errors  []BulkItemError `json:"errors,omitempty"`
}

// BulkItemError - причина пропуска одного элемента пакета
type BulkItemError struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ResponseOverview - сводка по ссылке (GET /analytics/:short_url/overview выход)
type ResponseOverview struct {
	TotalClicks         int        `json:"total_clicks"`
	UniqueVisitors      int        `json:"unique_visitors"`
	TopCountry          string     `json:"top_country,omitempty"`
	TopDevice           string     `json:"top_device,omitempty"`
	TopBrowser          string     `json:"top_browser,omitempty"`
	AverageClicksPerDay float64    `json:"average_clicks_per_day"`
	LastClickAt         *time.Time `json:"last_click_at,omitempty"`
}

// TimelinePoint - одна корзина временного ряда
type TimelinePoint struct {
	Bucket time.Time `json:"bucket"`
	Clicks int       `json:"clicks"`
}

// ResponseTimeline - временной ряд кликов (GET /analytics/:short_url/timeline выход)
type ResponseTimeline struct {
	Interval string          `json:"interval"`
	Days     int             `json:"days"`
	Points   []TimelinePoint `json:"points"`
}

// ShareItem - значение с числом кликов и долей в процентах (2 знака)
type ShareItem struct {
	Value   string  `json:"value"`
	Clicks  int     `json:"clicks"`
	Percent float64 `json:"percent"`
}

// ResponseLocations - география переходов (GET /analytics/:short_url/locations выход)
type ResponseLocations struct {
	Countries []ShareItem `json:"countries"`
	Cities    []ShareItem `json:"cities"`
}

// ResponseDevices - разбивка по устройствам (GET /analytics/:short_url/devices выход)
type ResponseDevices struct {
	DeviceTypes []ShareItem `json:"device_types"`
	Browsers    []ShareItem `json:"browsers"`
	OS          []ShareItem `json:"os"`
}

// ResponseReferrers - источники переходов (GET /analytics/:short_url/referrers выход)
type ResponseReferrers struct {
	Referrers []ShareItem `json:"referrers"`
}
