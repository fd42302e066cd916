package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/IPampurin/LinkTracker/pkg/db"
	"github.com/IPampurin/LinkTracker/pkg/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/logger"
)

// stubService отдаёт заранее заданные ответы, реализует service.ServiceMethods
type stubService struct {
	link        *service.ResponseLink
	bulk        *service.BulkResult
	destination string
	err         error

	lastPrincipal service.Principal
	deleted       bool
}

func (s *stubService) CreateShortLink(ctx context.Context, log logger.Logger, in service.CreateLinkInput, principal service.Principal) (*service.ResponseLink, error) {
	s.lastPrincipal = principal
	return s.link, s.err
}

func (s *stubService) BulkCreate(ctx context.Context, log logger.Logger, items []service.CreateLinkInput, principal service.Principal) (*service.BulkResult, error) {
	return s.bulk, s.err
}

func (s *stubService) Resolve(ctx context.Context, log logger.Logger, shortURL string) (*db.Link, error) {
	return nil, s.err
}

func (s *stubService) Redirect(ctx context.Context, log logger.Logger, shortURL, password, clientIP, userAgent, referer string) (string, error) {
	return s.destination, s.err
}

func (s *stubService) UpdateLink(ctx context.Context, log logger.Logger, shortURL string, in service.UpdateLinkInput, principal service.Principal) (*service.ResponseLink, error) {
	s.lastPrincipal = principal
	return s.link, s.err
}

func (s *stubService) DeleteLink(ctx context.Context, log logger.Logger, shortURL string, principal service.Principal) error {
	s.lastPrincipal = principal
	s.deleted = true
	return s.err
}

func (s *stubService) LastLinks(ctx context.Context, log logger.Logger) ([]*service.ResponseLink, error) {
	return []*service.ResponseLink{s.link}, s.err
}

func (s *stubService) SearchByOriginalURL(ctx context.Context, log logger.Logger, query string) ([]*service.ResponseLink, error) {
	return nil, s.err
}

func (s *stubService) SearchByShortURL(ctx context.Context, log logger.Logger, query string) ([]*service.ResponseLink, error) {
	return nil, s.err
}

func (s *stubService) Overview(ctx context.Context, log logger.Logger, shortURL string) (*service.ResponseOverview, error) {
	return &service.ResponseOverview{TotalClicks: 5}, s.err
}

func (s *stubService) Timeline(ctx context.Context, log logger.Logger, shortURL, interval string, days int) (*service.ResponseTimeline, error) {
	return &service.ResponseTimeline{Interval: interval, Days: days}, s.err
}

func (s *stubService) Locations(ctx context.Context, log logger.Logger, shortURL string) (*service.ResponseLocations, error) {
	return &service.ResponseLocations{}, s.err
}

func (s *stubService) Devices(ctx context.Context, log logger.Logger, shortURL string) (*service.ResponseDevices, error) {
	return &service.ResponseDevices{}, s.err
}

func (s *stubService) Referrers(ctx context.Context, log logger.Logger, shortURL string) (*service.ResponseReferrers, error) {
	return &service.ResponseReferrers{}, s.err
}

func (s *stubService) ExportCSV(ctx context.Context, log logger.Logger, shortURL string) ([]byte, error) {
	return []byte("timestamp,ip\n"), s.err
}

var _ service.ServiceMethods = (*stubService)(nil)

// newTestRouter собирает gin-движок с одним маршрутом
func newTestRouter(t *testing.T, method, path string, handler gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Handle(method, path, handler)
	return router
}

func testLogger(t *testing.T) logger.Logger {
	t.Helper()
	log, err := logger.InitLogger(logger.ZapEngine, "test", "", logger.WithLevel(logger.InfoLevel))
	require.NoError(t, err)
	return log
}

// TestRedirectHandler проверяет коды ответов редиректа:
// 302 при успехе, 404 для gone и неизвестного кода, 400 для остальных отказов
func TestRedirectHandler(t *testing.T) {

	log := testLogger(t)

	t.Run("успех — 302 с Location", func(t *testing.T) {
		svc := &stubService{destination: "https://example.com"}
		router := newTestRouter(t, http.MethodGet, "/s/:short_url", Redirect(svc, log))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/s/abc123", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "https://example.com", w.Header().Get("Location"))
	})

	t.Run("неизвестный код — 404", func(t *testing.T) {
		svc := &stubService{err: service.ErrNotFound}
		router := newTestRouter(t, http.MethodGet, "/s/:short_url", Redirect(svc, log))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/s/nosuch", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	denials := []struct {
		reason service.DenyReason
		status int
	}{
		{service.DenyGone, http.StatusNotFound},
		{service.DenyDeactivated, http.StatusBadRequest},
		{service.DenyExpired, http.StatusBadRequest},
		{service.DenyQuotaExceeded, http.StatusBadRequest},
		{service.DenyPasswordRequired, http.StatusBadRequest},
		{service.DenyPasswordMismatch, http.StatusBadRequest},
	}

	for _, tc := range denials {
		t.Run("отказ "+string(tc.reason), func(t *testing.T) {
			svc := &stubService{err: &service.AccessDeniedError{Reason: tc.reason, ShortURL: "abc123"}}
			router := newTestRouter(t, http.MethodGet, "/s/:short_url", Redirect(svc, log))

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/s/abc123", nil))

			assert.Equal(t, tc.status, w.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, string(tc.reason), body.Reason)
			assert.Equal(t, "abc123", body.ShortURL)
		})
	}
}

// TestCreateHandler проверяет создание ссылки и коды ошибок
func TestCreateHandler(t *testing.T) {

	log := testLogger(t)

	t.Run("успех — 201", func(t *testing.T) {
		svc := &stubService{link: &service.ResponseLink{ShortURL: "abc123", OriginalURL: "https://example.com"}}
		router := newTestRouter(t, http.MethodPost, "/shorten", CreateShortLink(svc, log))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/shorten",
			strings.NewReader(`{"original_url":"https://example.com"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "abc123")
	})

	t.Run("битый JSON — 400", func(t *testing.T) {
		svc := &stubService{}
		router := newTestRouter(t, http.MethodPost, "/shorten", CreateShortLink(svc, log))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/shorten", strings.NewReader("{broken"))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("занятый алиас — 409", func(t *testing.T) {
		svc := &stubService{err: service.ErrAliasTaken}
		router := newTestRouter(t, http.MethodPost, "/shorten", CreateShortLink(svc, log))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/shorten",
			strings.NewReader(`{"original_url":"https://example.com","custom_alias":"taken1"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("субъект берётся из заголовков", func(t *testing.T) {
		svc := &stubService{link: &service.ResponseLink{ShortURL: "abc123"}}
		router := newTestRouter(t, http.MethodPost, "/shorten", CreateShortLink(svc, log))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/shorten",
			strings.NewReader(`{"original_url":"https://example.com"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", "42")
		req.Header.Set("X-User-Role", "admin")
		router.ServeHTTP(w, req)

		assert.Equal(t, 42, svc.lastPrincipal.UserID)
		assert.Equal(t, "admin", svc.lastPrincipal.Role)
	})
}

// TestDeleteHandler проверяет удаление: 204 при успехе, 403 для чужой ссылки
func TestDeleteHandler(t *testing.T) {

	log := testLogger(t)

	t.Run("успех — 204", func(t *testing.T) {
		svc := &stubService{}
		router := newTestRouter(t, http.MethodDelete, "/links/:short_url", DeleteLink(svc, log))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/links/abc123", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.True(t, svc.deleted)
	})

	t.Run("чужая ссылка — 403", func(t *testing.T) {
		svc := &stubService{err: service.ErrForbidden}
		router := newTestRouter(t, http.MethodDelete, "/links/:short_url", DeleteLink(svc, log))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/links/abc123", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

// TestExportHandler проверяет заголовки выгрузки CSV
func TestExportHandler(t *testing.T) {

	log := testLogger(t)
	svc := &stubService{}
	router := newTestRouter(t, http.MethodGet, "/analytics/:short_url/export", ExportCSV(svc, log))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/analytics/abc123/export", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, "attachment; filename=clicks_abc123.csv", w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "timestamp")
}

// TestSearchHandlers проверяет обязательность параметра q
func TestSearchHandlers(t *testing.T) {

	log := testLogger(t)
	svc := &stubService{}

	router := newTestRouter(t, http.MethodGet, "/links/search/original", SearchByOriginal(svc, log))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/links/search/original", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/links/search/original?q=example", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
