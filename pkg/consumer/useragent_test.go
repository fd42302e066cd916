package consumer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestParseUserAgent проверяет разбор реальных строк User-Agent
func TestParseUserAgent(t *testing.T) {

	tests := []struct {
		name       string
		ua         string
		browser    string
		os         string
		deviceType string
	}{
		{
			name:       "Chrome на Windows",
			ua:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			browser:    "Chrome",
			os:         "Windows",
			deviceType: DeviceDesktop,
		},
		{
			name:       "Firefox на Linux",
			ua:         "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/119.0",
			browser:    "Firefox",
			os:         "Linux",
			deviceType: DeviceDesktop,
		},
		{
			name:       "Safari на iPhone",
			ua:         "Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1",
			browser:    "Safari",
			os:         "iOS",
			deviceType: DeviceMobile,
		},
		{
			name:       "Chrome на Android",
			ua:         "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
			browser:    "Chrome",
			os:         "Android",
			deviceType: DeviceMobile,
		},
		{
			name:       "iPad — планшет",
			ua:         "Mozilla/5.0 (iPad; CPU OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1",
			browser:    "Safari",
			os:         "iOS",
			deviceType: DeviceTablet,
		},
		{
			name:       "Edge содержит токен Chrome, но определяется как Edge",
			ua:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.2210.91",
			browser:    "Edge",
			os:         "Windows",
			deviceType: DeviceDesktop,
		},
		{
			name:       "Яндекс Браузер",
			ua:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 YaBrowser/24.1.0.0 Safari/537.36",
			browser:    "Yandex Browser",
			os:         "Windows",
			deviceType: DeviceDesktop,
		},
		{
			name:       "Googlebot — робот",
			ua:         "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			browser:    "Unknown",
			os:         "Unknown",
			deviceType: DeviceBot,
		},
		{
			name:       "curl — робот",
			ua:         "curl/8.4.0",
			browser:    "Unknown",
			os:         "Unknown",
			deviceType: DeviceBot,
		},
		{
			name:       "телевизор",
			ua:         "Mozilla/5.0 (SMART-TV; Linux; Tizen 6.0) AppleWebKit/537.36 (KHTML, like Gecko) Version/6.0 TV Safari/537.36",
			browser:    "Safari",
			os:         "Linux",
			deviceType: DeviceTV,
		},
		{
			name:       "игровая консоль",
			ua:         "Mozilla/5.0 (PlayStation; PlayStation 5/6.50) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
			browser:    "Safari",
			os:         "Unknown",
			deviceType: DeviceConsole,
		},
		{
			name:       "пустая строка — робот",
			ua:         "",
			browser:    "Unknown",
			os:         "Unknown",
			deviceType: DeviceBot,
		},
		{
			name:       "мусорная строка — неизвестный десктоп",
			ua:         "definitely-not-a-real-agent",
			browser:    "Unknown",
			os:         "Unknown",
			deviceType: DeviceDesktop,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info := ParseUserAgent(tc.ua)
			assert.Equal(t, tc.browser, info.Browser, "браузер")
			assert.Equal(t, tc.os, info.OS, "ОС")
			assert.Equal(t, tc.deviceType, info.DeviceType, "тип устройства")
		})
	}
}

// TestParseUserAgentVersions проверяет извлечение версий
func TestParseUserAgentVersions(t *testing.T) {

	info := ParseUserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	assert.Equal(t, "120.0.0.0", info.BrowserVersion)
	assert.Equal(t, "10.0", info.OSVersion)

	// версии iOS пишутся через подчёркивания и нормализуются в точки
	info = ParseUserAgent("Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1")
	assert.Equal(t, "17.1", info.OSVersion)
}
