package consumer

import (
	"context"
	"fmt"
	"net"
)

// GeoInfo хранит результат геолокации по IP-адресу
type GeoInfo struct {
	Country   string
	City      string
	Timezone  string
	Latitude  *float64
	Longitude *float64
}

// geoRange — одна запись локальной таблицы геолокации
type geoRange struct {
	cidr     string
	country  string
	city     string
	timezone string
	lat      float64
	lon      float64
}

// локальная таблица соответствия диапазонов адресов регионам,
// покрывает адреса известных публичных DNS и облачных провайдеров
var geoTable = []geoRange{
	{"8.8.8.0/24", "United States", "Mountain View", "America/Los_Angeles", 37.4056, -122.0775},
	{"8.8.4.0/24", "United States", "Mountain View", "America/Los_Angeles", 37.4056, -122.0775},
	{"1.1.1.0/24", "Australia", "Sydney", "Australia/Sydney", -33.8688, 151.2093},
	{"9.9.9.0/24", "United States", "Berkeley", "America/Los_Angeles", 37.8715, -122.2730},
	{"77.88.8.0/24", "Russia", "Moscow", "Europe/Moscow", 55.7558, 37.6173},
	{"95.163.0.0/16", "Russia", "Moscow", "Europe/Moscow", 55.7558, 37.6173},
	{"185.32.185.0/24", "Russia", "Saint Petersburg", "Europe/Moscow", 59.9311, 30.3609},
	{"51.15.0.0/16", "France", "Paris", "Europe/Paris", 48.8566, 2.3522},
	{"185.199.108.0/22", "United States", "San Francisco", "America/Los_Angeles", 37.7749, -122.4194},
	{"104.16.0.0/13", "United States", "San Francisco", "America/Los_Angeles", 37.7749, -122.4194},
	{"13.107.0.0/16", "United States", "Redmond", "America/Los_Angeles", 47.6740, -122.1215},
	{"34.64.0.0/10", "United States", "Council Bluffs", "America/Chicago", 41.2619, -95.8608},
	{"52.0.0.0/8", "United States", "Ashburn", "America/New_York", 39.0438, -77.4874},
	{"3.120.0.0/14", "Germany", "Frankfurt", "Europe/Berlin", 50.1109, 8.6821},
	{"18.130.0.0/16", "United Kingdom", "London", "Europe/London", 51.5074, -0.1278},
}

// parsedGeoTable — таблица с разобранными CIDR, заполняется при старте
var parsedGeoTable = mustParseGeoTable()

func mustParseGeoTable() []struct {
	network *net.IPNet
	info    GeoInfo
} {
	parsed := make([]struct {
		network *net.IPNet
		info    GeoInfo
	}, 0, len(geoTable))

	for _, r := range geoTable {
		_, network, err := net.ParseCIDR(r.cidr)
		if err != nil {
			continue
		}
		lat, lon := r.lat, r.lon
		parsed = append(parsed, struct {
			network *net.IPNet
			info    GeoInfo
		}{
			network: network,
			info: GeoInfo{
				Country:   r.country,
				City:      r.city,
				Timezone:  r.timezone,
				Latitude:  &lat,
				Longitude: &lon,
			},
		})
	}

	return parsed
}

// LookupGeo определяет геолокацию по IP-адресу, env — окружение приложения:
//   - приватные и loopback адреса вне production дают фиксированную
//     псевдолокацию (для воспроизводимости тестов), в production — ничего,
//   - публичные адреса ищутся в локальной таблице,
//   - адрес вне таблицы — не ошибка, клик сохраняется без географии
func LookupGeo(ctx context.Context, ipAddress, env string) (*GeoInfo, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ip := net.ParseIP(ipAddress)
	if ip == nil {
		return nil, fmt.Errorf("невалидный IP-адрес: %q", ipAddress)
	}

	if isPrivateIP(ip) {
		if env == "production" {
			return nil, nil
		}
		lat, lon := 55.7558, 37.6173
		return &GeoInfo{
			Country:   "Local",
			City:      "Localhost",
			Timezone:  "Europe/Moscow",
			Latitude:  &lat,
			Longitude: &lon,
		}, nil
	}

	for _, r := range parsedGeoTable {
		if r.network.Contains(ip) {
			info := r.info
			return &info, nil
		}
	}

	return nil, nil
}

// isPrivateIP проверяет, относится ли адрес к приватным или служебным диапазонам
func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}
