package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"math"
	"time"

	"github.com/IPampurin/LinkTracker/pkg/cache"
	"github.com/IPampurin/LinkTracker/pkg/db"
	"github.com/wb-go/wbf/logger"
)

const (
	topLocationsLimit = 10
	topReferrersLimit = 20
	minTimelineDays   = 1
	maxTimelineDays   = 365
)

// Overview возвращает сводку по ссылке: общее число кликов, уникальные
// посетители по IP, топ страны/устройства/браузера и среднее число кликов в день
func (s *Service) Overview(ctx context.Context, log logger.Logger, shortURL string) (*ResponseOverview, error) {

	var cached ResponseOverview
	if ok := s.fromCache(ctx, log, cache.OverviewKey(shortURL), &cached); ok {
		return &cached, nil
	}

	link, err := s.requireLink(ctx, shortURL)
	if err != nil {
		return nil, err
	}

	counts, err := s.click.GetOverviewCounts(ctx, link.ID)
	if err != nil {
		return nil, err
	}

	overview := &ResponseOverview{
		TotalClicks:    counts.TotalClicks,
		UniqueVisitors: counts.UniqueVisitors,
		LastClickAt:    counts.LastClickAt,
	}

	if counts.TotalClicks > 0 {
		if overview.TopCountry, err = s.click.TopCountry(ctx, link.ID); err != nil {
			return nil, err
		}
		if overview.TopDevice, err = s.click.TopDeviceType(ctx, link.ID); err != nil {
			return nil, err
		}
		if overview.TopBrowser, err = s.click.TopBrowser(ctx, link.ID); err != nil {
			return nil, err
		}
	}

	// среднее за день: возраст ссылки меньше суток считается одним днём
	days := int(time.Since(link.CreatedAt).Hours() / 24)
	if days < 1 {
		days = 1
	}
	overview.AverageClicksPerDay = round2(float64(counts.TotalClicks) / float64(days))

	s.toCache(ctx, log, cache.OverviewKey(shortURL), overview)

	return overview, nil
}

// Timeline возвращает временной ряд кликов с корзинами hour/day/week,
// окно days зажимается в пределы [1, 365]
func (s *Service) Timeline(ctx context.Context, log logger.Logger, shortURL, interval string, days int) (*ResponseTimeline, error) {

	if !cache.ValidTimelineInterval(interval) {
		interval = "day"
	}
	if days < minTimelineDays {
		days = minTimelineDays
	}
	if days > maxTimelineDays {
		days = maxTimelineDays
	}

	key := cache.TimelineKey(shortURL, interval, days)

	var cached ResponseTimeline
	if ok := s.fromCache(ctx, log, key, &cached); ok {
		return &cached, nil
	}

	link, err := s.requireLink(ctx, shortURL)
	if err != nil {
		return nil, err
	}

	from := time.Now().UTC().AddDate(0, 0, -days)
	buckets, err := s.click.CountClicksByBucket(ctx, link.ID, interval, from)
	if err != nil {
		return nil, err
	}

	timeline := &ResponseTimeline{
		Interval: interval,
		Days:     days,
		Points:   make([]TimelinePoint, 0, len(buckets)),
	}
	for _, b := range buckets {
		timeline.Points = append(timeline.Points, TimelinePoint{Bucket: b.Bucket, Clicks: b.Count})
	}

	s.toCache(ctx, log, key, timeline)

	return timeline, nil
}

// Locations возвращает топ-10 стран и городов с процентной долей переходов
func (s *Service) Locations(ctx context.Context, log logger.Logger, shortURL string) (*ResponseLocations, error) {

	var cached ResponseLocations
	if ok := s.fromCache(ctx, log, cache.LocationsKey(shortURL), &cached); ok {
		return &cached, nil
	}

	link, err := s.requireLink(ctx, shortURL)
	if err != nil {
		return nil, err
	}

	counts, err := s.click.GetOverviewCounts(ctx, link.ID)
	if err != nil {
		return nil, err
	}

	countries, err := s.click.CountClicksByCountry(ctx, link.ID, topLocationsLimit)
	if err != nil {
		return nil, err
	}
	cities, err := s.click.CountClicksByCity(ctx, link.ID, topLocationsLimit)
	if err != nil {
		return nil, err
	}

	locations := &ResponseLocations{
		Countries: toShareItems(countries, counts.TotalClicks),
		Cities:    toShareItems(cities, counts.TotalClicks),
	}

	s.toCache(ctx, log, cache.LocationsKey(shortURL), locations)

	return locations, nil
}

// Devices возвращает разбивку кликов по типам устройств, браузерам и ОС
func (s *Service) Devices(ctx context.Context, log logger.Logger, shortURL string) (*ResponseDevices, error) {

	var cached ResponseDevices
	if ok := s.fromCache(ctx, log, cache.DevicesKey(shortURL), &cached); ok {
		return &cached, nil
	}

	link, err := s.requireLink(ctx, shortURL)
	if err != nil {
		return nil, err
	}

	counts, err := s.click.GetOverviewCounts(ctx, link.ID)
	if err != nil {
		return nil, err
	}

	deviceTypes, err := s.click.CountClicksByDeviceType(ctx, link.ID)
	if err != nil {
		return nil, err
	}
	browsers, err := s.click.CountClicksByBrowserVersion(ctx, link.ID)
	if err != nil {
		return nil, err
	}
	systems, err := s.click.CountClicksByOSVersion(ctx, link.ID)
	if err != nil {
		return nil, err
	}

	devices := &ResponseDevices{
		DeviceTypes: toShareItems(deviceTypes, counts.TotalClicks),
		Browsers:    toShareItems(browsers, counts.TotalClicks),
		OS:          toShareItems(systems, counts.TotalClicks),
	}

	s.toCache(ctx, log, cache.DevicesKey(shortURL), devices)

	return devices, nil
}

// Referrers возвращает топ-20 источников переходов,
// пустой referer показывается как "Direct"
func (s *Service) Referrers(ctx context.Context, log logger.Logger, shortURL string) (*ResponseReferrers, error) {

	var cached ResponseReferrers
	if ok := s.fromCache(ctx, log, cache.ReferrersKey(shortURL), &cached); ok {
		return &cached, nil
	}

	link, err := s.requireLink(ctx, shortURL)
	if err != nil {
		return nil, err
	}

	counts, err := s.click.GetOverviewCounts(ctx, link.ID)
	if err != nil {
		return nil, err
	}

	referrers, err := s.click.CountClicksByReferer(ctx, link.ID, topReferrersLimit)
	if err != nil {
		return nil, err
	}
	for i := range referrers {
		if referrers[i].Value == "" {
			referrers[i].Value = "Direct"
		}
	}

	response := &ResponseReferrers{Referrers: toShareItems(referrers, counts.TotalClicks)}

	s.toCache(ctx, log, cache.ReferrersKey(shortURL), response)

	return response, nil
}

// ExportCSV выгружает все клики по ссылке в CSV, новые записи первыми
func (s *Service) ExportCSV(ctx context.Context, log logger.Logger, shortURL string) ([]byte, error) {

	link, err := s.requireLink(ctx, shortURL)
	if err != nil {
		return nil, err
	}

	clicks, err := s.click.GetClicksForExport(ctx, link.ID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"timestamp", "ip", "country", "city", "device", "browser", "os", "referer"}); err != nil {
		return nil, err
	}

	for _, c := range clicks {
		ip := ""
		if c.IPAddress != nil {
			ip = c.IPAddress.String()
		}
		record := []string{
			c.CreatedAt.UTC().Format(time.RFC3339),
			ip,
			c.Country,
			c.City,
			c.DeviceType,
			c.Browser,
			c.OS,
			c.Referer,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info("экспорт кликов выполнен", "short_url", shortURL, "rows", len(clicks))

	return buf.Bytes(), nil
}

// requireLink возвращает не удалённую ссылку по коду или ErrNotFound
func (s *Service) requireLink(ctx context.Context, shortURL string) (*db.Link, error) {

	link, err := s.link.GetLinkByShortURL(ctx, shortURL)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrNotFound
	}

	return link, nil
}

// fromCache пытается заполнить out закэшированным ответом аналитики
func (s *Service) fromCache(ctx context.Context, log logger.Logger, key string, out any) bool {

	data, err := s.cache.GetPayload(ctx, key)
	if err != nil {
		log.Ctx(ctx).Error("ошибка получения из кэша", "key", key, "error", err)
		return false
	}
	if data == nil {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Ctx(ctx).Error("ошибка разбора кэшированного ответа", "key", key, "error", err)
		return false
	}

	return true
}

// toCache сохраняет готовый ответ аналитики (best-effort)
func (s *Service) toCache(ctx context.Context, log logger.Logger, key string, payload any) {

	data, err := json.Marshal(payload)
	if err != nil {
		log.Ctx(ctx).Error("ошибка маршалинга ответа аналитики", "key", key, "error", err)
		return
	}
	if err := s.cache.SetPayload(ctx, key, data); err != nil {
		log.Ctx(ctx).Error("ошибка сохранения в кэш", "key", key, "error", err)
	}
}

// toShareItems добавляет к счётчикам процентную долю (2 знака после запятой)
func toShareItems(counts []db.ValueCount, total int) []ShareItem {

	items := make([]ShareItem, 0, len(counts))
	for _, c := range counts {
		percent := 0.0
		if total > 0 {
			percent = round2(float64(c.Count) * 100 / float64(total))
		}
		items = append(items, ShareItem{Value: c.Value, Clicks: c.Count, Percent: percent})
	}

	return items
}

// round2 округляет до двух знаков после запятой
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
