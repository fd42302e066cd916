package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/IPampurin/LinkTracker/pkg/db"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/logger"
)

// testLogger возвращает логгер для тестов
func testLogger(t *testing.T) logger.Logger {
	t.Helper()
	log, err := logger.InitLogger(logger.ZapEngine, "test", "", logger.WithLevel(logger.InfoLevel))
	require.NoError(t, err)
	return log
}

// fakeStore — хранилище ссылок в памяти, реализует db.LinkMethods
type fakeStore struct {
	mu     sync.Mutex
	links  map[int]*db.Link
	nextID int
}

func newFakeStore() *fakeStore {
	return &fakeStore{links: make(map[int]*db.Link), nextID: 1}
}

func (f *fakeStore) CreateLink(ctx context.Context, link *db.Link) (*db.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored := *link
	stored.ID = f.nextID
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.links[stored.ID] = &stored
	f.nextID++

	out := stored
	return &out, nil
}

func (f *fakeStore) GetLinkByShortURL(ctx context.Context, shortURL string) (*db.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, l := range f.links {
		if l.ShortURL == shortURL && l.DeletedAt == nil {
			out := *l
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetLinkByID(ctx context.Context, id int) (*db.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if l, ok := f.links[id]; ok && l.DeletedAt == nil {
		out := *l
		return &out, nil
	}
	return nil, nil
}

func (f *fakeStore) ShortCodeExists(ctx context.Context, shortURL string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// надгробия тоже считаются занятыми
	for _, l := range f.links {
		if l.ShortURL == shortURL {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) UpdateLink(ctx context.Context, id int, upd db.LinkUpdate) (*db.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	l, ok := f.links[id]
	if !ok {
		return nil, fmt.Errorf("ссылка %d не найдена", id)
	}
	if upd.Title != nil {
		l.Title = *upd.Title
	}
	if upd.IsActive != nil {
		l.IsActive = *upd.IsActive
	}
	if upd.ExpiresAt != nil {
		if upd.ExpiresAt.IsZero() {
			l.ExpiresAt = nil
		} else {
			v := *upd.ExpiresAt
			l.ExpiresAt = &v
		}
	}
	if upd.MaxClicks != nil {
		l.MaxClicks = *upd.MaxClicks
	}
	l.UpdatedAt = time.Now()

	out := *l
	return &out, nil
}

func (f *fakeStore) SoftDeleteLink(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	l, ok := f.links[id]
	if !ok {
		return fmt.Errorf("ссылка %d не найдена", id)
	}
	now := time.Now()
	l.DeletedAt = &now
	return nil
}

func (f *fakeStore) IncrementClicks(ctx context.Context, linkID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if l, ok := f.links[int(linkID)]; ok {
		l.ClicksCount++
	}
	return nil
}

func (f *fakeStore) GetLinks(ctx context.Context) ([]*db.Link, error) {
	return f.alive(func(l *db.Link) bool { return true }), nil
}

func (f *fakeStore) GetLinksOfPeriod(ctx context.Context, period time.Duration) ([]*db.Link, error) {
	edge := time.Now().Add(-period)
	return f.alive(func(l *db.Link) bool { return l.CreatedAt.After(edge) }), nil
}

func (f *fakeStore) SearchByOriginalURL(ctx context.Context, search string) ([]*db.Link, error) {
	return f.alive(func(l *db.Link) bool { return strings.Contains(l.OriginalURL, search) }), nil
}

func (f *fakeStore) SearchByShortURL(ctx context.Context, search string) ([]*db.Link, error) {
	return f.alive(func(l *db.Link) bool { return strings.Contains(l.ShortURL, search) }), nil
}

func (f *fakeStore) alive(match func(*db.Link) bool) []*db.Link {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*db.Link, 0)
	for _, l := range f.links {
		if l.DeletedAt == nil && match(l) {
			copied := *l
			out = append(out, &copied)
		}
	}
	return out
}

// fakeClicks — источник агрегатов по переходам, реализует db.ClickMethods
type fakeClicks struct {
	overview  db.OverviewCounts
	country   string
	device    string
	browser   string
	buckets   []db.BucketCount
	countries []db.ValueCount
	cities    []db.ValueCount
	devices   []db.ValueCount
	browsers  []db.ValueCount
	systems   []db.ValueCount
	referrers []db.ValueCount
	exported  []*db.Click
}

func (f *fakeClicks) SaveClick(ctx context.Context, click *db.Click) error { return nil }

func (f *fakeClicks) GetOverviewCounts(ctx context.Context, linkID int) (*db.OverviewCounts, error) {
	out := f.overview
	return &out, nil
}

func (f *fakeClicks) TopCountry(ctx context.Context, linkID int) (string, error) {
	return f.country, nil
}

func (f *fakeClicks) TopDeviceType(ctx context.Context, linkID int) (string, error) {
	return f.device, nil
}

func (f *fakeClicks) TopBrowser(ctx context.Context, linkID int) (string, error) {
	return f.browser, nil
}

func (f *fakeClicks) CountClicksByBucket(ctx context.Context, linkID int, interval string, from time.Time) ([]db.BucketCount, error) {
	return f.buckets, nil
}

func (f *fakeClicks) CountClicksByCountry(ctx context.Context, linkID, limit int) ([]db.ValueCount, error) {
	return f.countries, nil
}

func (f *fakeClicks) CountClicksByCity(ctx context.Context, linkID, limit int) ([]db.ValueCount, error) {
	return f.cities, nil
}

func (f *fakeClicks) CountClicksByDeviceType(ctx context.Context, linkID int) ([]db.ValueCount, error) {
	return f.devices, nil
}

func (f *fakeClicks) CountClicksByBrowserVersion(ctx context.Context, linkID int) ([]db.ValueCount, error) {
	return f.browsers, nil
}

func (f *fakeClicks) CountClicksByOSVersion(ctx context.Context, linkID int) ([]db.ValueCount, error) {
	return f.systems, nil
}

func (f *fakeClicks) CountClicksByReferer(ctx context.Context, linkID, limit int) ([]db.ValueCount, error) {
	return f.referrers, nil
}

func (f *fakeClicks) GetClicksForExport(ctx context.Context, linkID int) ([]*db.Click, error) {
	return f.exported, nil
}

// fakeCache — кэш в памяти, реализует cache.CacheMethods
// и считает инвалидации для проверки когерентности
type fakeCache struct {
	mu                   sync.Mutex
	links                map[string]*db.Link
	payloads             map[string][]byte
	linkInvalidations    int
	analyticInvalidation int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		links:    make(map[string]*db.Link),
		payloads: make(map[string][]byte),
	}
}

func (f *fakeCache) GetLink(ctx context.Context, shortURL string) (*db.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if l, ok := f.links[shortURL]; ok {
		out := *l
		return &out, nil
	}
	return nil, nil
}

func (f *fakeCache) SetLink(ctx context.Context, shortURL string, link *db.Link) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	copied := *link
	f.links[shortURL] = &copied
	return nil
}

func (f *fakeCache) InvalidateLink(ctx context.Context, shortURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.links, shortURL)
	f.linkInvalidations++
	return nil
}

func (f *fakeCache) InvalidateAnalytics(ctx context.Context, shortURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for key := range f.payloads {
		if strings.Contains(key, shortURL) {
			delete(f.payloads, key)
		}
	}
	f.analyticInvalidation++
	return nil
}

func (f *fakeCache) GetPayload(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if data, ok := f.payloads[key]; ok {
		return data, nil
	}
	return nil, nil
}

func (f *fakeCache) SetPayload(ctx context.Context, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.payloads[key] = data
	return nil
}

func (f *fakeCache) LoadDataToCache(ctx context.Context, lastLinks []*db.Link) error {
	for _, l := range lastLinks {
		_ = f.SetLink(ctx, l.ShortURL, l)
	}
	return nil
}

// fakePublisher собирает опубликованные события кликов
type fakePublisher struct {
	mu        sync.Mutex
	published [][]byte
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, body)
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

// newTestService собирает сервис на фейках
func newTestService(store *fakeStore, clicks *fakeClicks, cacheFake *fakeCache, pub *fakePublisher) *Service {
	if clicks == nil {
		clicks = &fakeClicks{}
	}
	return NewService(store, clicks, cacheFake, pub, 6, 5)
}
