package cache

import "fmt"

// TimelineIntervals — интервалы группировки, по которым перечисляются ключи таймлайна при инвалидации
var TimelineIntervals = []string{"hour", "day", "week"}

// DefaultTimelineDays — окно таймлайна по умолчанию (для перечисления ключей при инвалидации),
// ключи с нестандартным окном отдельно не удаляются и доживают свой короткий TTL
const DefaultTimelineDays = 30

// ValidTimelineInterval проверяет, поддерживается ли интервал группировки
func ValidTimelineInterval(interval string) bool {
	for _, v := range TimelineIntervals {
		if v == interval {
			return true
		}
	}
	return false
}

// LinkKey возвращает ключ кэша ссылки по короткому коду
func LinkKey(shortURL string) string {
	return "link:" + shortURL
}

// OverviewKey возвращает ключ кэша сводной аналитики
func OverviewKey(shortURL string) string {
	return "analytics:overview:" + shortURL
}

// TimelineKey возвращает ключ кэша таймлайна, параметризованный интервалом и окном в днях
func TimelineKey(shortURL, interval string, days int) string {
	return fmt.Sprintf("analytics:timeline:%s:%s:%d", shortURL, interval, days)
}

// LocationsKey возвращает ключ кэша географии переходов
func LocationsKey(shortURL string) string {
	return "analytics:locations:" + shortURL
}

// DevicesKey возвращает ключ кэша разбивки по устройствам
func DevicesKey(shortURL string) string {
	return "analytics:devices:" + shortURL
}

// ReferrersKey возвращает ключ кэша источников переходов
func ReferrersKey(shortURL string) string {
	return "analytics:referrers:" + shortURL
}

// AnalyticsKeys возвращает перечисленный список аналитических ключей одной ссылки,
// именно этот список удаляется при каждом новом переходе — никакого глобального сброса кэша
func AnalyticsKeys(shortURL string) []string {

	keys := []string{
		OverviewKey(shortURL),
		LocationsKey(shortURL),
		DevicesKey(shortURL),
		ReferrersKey(shortURL),
	}
	for _, interval := range TimelineIntervals {
		keys = append(keys, TimelineKey(shortURL, interval, DefaultTimelineDays))
	}

	return keys
}
