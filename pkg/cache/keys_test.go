package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestKeys проверяет формат ключей кэша
func TestKeys(t *testing.T) {

	assert.Equal(t, "link:abc123", LinkKey("abc123"))
	assert.Equal(t, "analytics:overview:abc123", OverviewKey("abc123"))
	assert.Equal(t, "analytics:timeline:abc123:day:30", TimelineKey("abc123", "day", 30))
	assert.Equal(t, "analytics:locations:abc123", LocationsKey("abc123"))
	assert.Equal(t, "analytics:devices:abc123", DevicesKey("abc123"))
	assert.Equal(t, "analytics:referrers:abc123", ReferrersKey("abc123"))
}

// TestAnalyticsKeys проверяет перечисленный список для инвалидации:
// четыре фиксированных ключа плюс таймлайн по каждому интервалу
func TestAnalyticsKeys(t *testing.T) {

	keys := AnalyticsKeys("abc123")

	assert.Len(t, keys, 4+len(TimelineIntervals))
	assert.Contains(t, keys, OverviewKey("abc123"))
	assert.Contains(t, keys, LocationsKey("abc123"))
	assert.Contains(t, keys, DevicesKey("abc123"))
	assert.Contains(t, keys, ReferrersKey("abc123"))
	for _, interval := range TimelineIntervals {
		assert.Contains(t, keys, TimelineKey("abc123", interval, DefaultTimelineDays))
	}

	// ключ самой ссылки в список аналитики не входит
	assert.NotContains(t, keys, LinkKey("abc123"))
}

// TestValidTimelineInterval проверяет допустимые интервалы группировки
func TestValidTimelineInterval(t *testing.T) {

	assert.True(t, ValidTimelineInterval("hour"))
	assert.True(t, ValidTimelineInterval("day"))
	assert.True(t, ValidTimelineInterval("week"))
	assert.False(t, ValidTimelineInterval("month"))
	assert.False(t, ValidTimelineInterval(""))
}
