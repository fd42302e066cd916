package consumer

import (
	"regexp"
	"strings"
)

// UserAgentInfo хранит результат разбора строки User-Agent
type UserAgentInfo struct {
	Browser        string
	BrowserVersion string
	OS             string
	OSVersion      string
	DeviceType     string
}

// типы устройств
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
	DeviceTV      = "tv"
	DeviceWear    = "wearable"
	DeviceConsole = "console"
	DeviceBot     = "bot"
)

// browserPatterns — порядок важен: Edge и Opera содержат токены Chrome,
// Chrome содержит токен Safari, поэтому проверяем от частного к общему
var browserPatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"Edge", regexp.MustCompile(`Edg(?:e|A|iOS)?/([\d.]+)`)},
	{"Opera", regexp.MustCompile(`(?:Opera|OPR)[/ ]([\d.]+)`)},
	{"Yandex Browser", regexp.MustCompile(`YaBrowser/([\d.]+)`)},
	{"Samsung Internet", regexp.MustCompile(`SamsungBrowser/([\d.]+)`)},
	{"Firefox", regexp.MustCompile(`(?:Firefox|FxiOS)/([\d.]+)`)},
	{"Chrome", regexp.MustCompile(`(?:Chrome|CriOS)/([\d.]+)`)},
	{"Safari", regexp.MustCompile(`Version/([\d.]+).*Safari`)},
	{"Internet Explorer", regexp.MustCompile(`MSIE ([\d.]+)`)},
	{"Internet Explorer", regexp.MustCompile(`Trident/.*rv:([\d.]+)`)},
}

var osPatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"Windows", regexp.MustCompile(`Windows NT ([\d.]+)`)},
	{"Android", regexp.MustCompile(`Android ([\d.]+)`)},
	{"iOS", regexp.MustCompile(`(?:iPhone|iPad|iPod).*OS ([\d_]+)`)},
	{"macOS", regexp.MustCompile(`Mac OS X ([\d_.]+)`)},
	{"Chrome OS", regexp.MustCompile(`CrOS \S+ ([\d.]+)`)},
	{"Linux", regexp.MustCompile(`Linux`)},
}

// botKeywords — маркеры роботов и краулеров в строке User-Agent
var botKeywords = []string{
	"bot", "crawler", "spider", "curl", "wget", "python-requests",
	"go-http-client", "facebookexternalhit", "telegrambot", "whatsapp",
	"slackbot", "headless",
}

// мобильные ОС для эвристики определения типа устройства
var mobileOSNames = map[string]bool{
	"Android": true,
	"iOS":     true,
}

// ParseUserAgent разбирает строку User-Agent на браузер, ОС и тип устройства,
// при пустой или неизвестной строке возвращает "Unknown"/"desktop"
func ParseUserAgent(rawUA string) UserAgentInfo {

	info := UserAgentInfo{
		Browser:    "Unknown",
		OS:         "Unknown",
		DeviceType: DeviceDesktop,
	}

	if rawUA == "" {
		info.DeviceType = DeviceBot
		return info
	}

	// браузер и версия
	for _, p := range browserPatterns {
		if m := p.pattern.FindStringSubmatch(rawUA); m != nil {
			info.Browser = p.name
			info.BrowserVersion = m[1]
			break
		}
	}

	// ОС и версия (в iOS и macOS версия пишется через подчёркивания)
	for _, p := range osPatterns {
		if m := p.pattern.FindStringSubmatch(rawUA); m != nil {
			info.OS = p.name
			if len(m) > 1 {
				info.OSVersion = strings.ReplaceAll(m[1], "_", ".")
			}
			break
		}
	}

	info.DeviceType = classifyDevice(rawUA, info.OS)

	return info
}

// classifyDevice определяет тип устройства:
// явный маркер устройства → мобильная ОС → маркер робота → desktop
func classifyDevice(rawUA, osName string) string {

	ua := strings.ToLower(rawUA)

	switch {
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		return DeviceTablet
	case strings.Contains(ua, "smart-tv") || strings.Contains(ua, "smarttv") || strings.Contains(ua, "appletv") || strings.Contains(ua, "googletv"):
		return DeviceTV
	case strings.Contains(ua, "watch") || strings.Contains(ua, "glass"):
		return DeviceWear
	case strings.Contains(ua, "playstation") || strings.Contains(ua, "xbox") || strings.Contains(ua, "nintendo"):
		return DeviceConsole
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "iphone") || strings.Contains(ua, "ipod"):
		return DeviceMobile
	}

	if mobileOSNames[osName] {
		return DeviceMobile
	}

	for _, kw := range botKeywords {
		if strings.Contains(ua, kw) {
			return DeviceBot
		}
	}

	return DeviceDesktop
}
