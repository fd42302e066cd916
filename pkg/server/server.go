package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/IPampurin/LinkTracker/pkg/api"
	"github.com/IPampurin/LinkTracker/pkg/configuration"
	"github.com/IPampurin/LinkTracker/pkg/service"
	"github.com/gin-gonic/gin"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/logger"
)

func Run(ctx context.Context, cfgServer *configuration.ConfServer, service *service.Service, log logger.Logger) error {

	// создаём движок Gin через обёртку ginext
	engine := ginext.New(cfgServer.GinMode)

	// добавляем middleware (логгер и восстановление)
	engine.Use(ginext.Logger(), ginext.Recovery())

	// добавляем свой middleware для структурного логирования запросов
	engine.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		// используем переданный логгер для записи информации о запросе
		log.LogRequest(c.Request.Context(), c.Request.Method, c.Request.URL.Path, c.Writer.Status(), duration)
	})

	// регистрируем эндпоинты
	engine.POST("/shorten", api.CreateShortLink(service, log))  // создание новой сокращённой ссылки
	engine.POST("/shorten/bulk", api.BulkCreate(service, log))  // пакетное создание с частичным успехом
	engine.GET("/s/:short_url", api.Redirect(service, log))     // переход по короткой ссылке
	engine.PATCH("/links/:short_url", api.UpdateLink(service, log))
	engine.DELETE("/links/:short_url", api.DeleteLink(service, log))
	engine.GET("/links", api.GetLinks(service, log)) // список последних ссылок для UI
	engine.GET("/links/search/original", api.SearchByOriginal(service, log)) // поиск по OriginalURL
	engine.GET("/links/search/short", api.SearchByShort(service, log))       // поиск по ShortURL

	// аналитика
	engine.GET("/analytics/:short_url/overview", api.GetOverview(service, log))
	engine.GET("/analytics/:short_url/timeline", api.GetTimeline(service, log))
	engine.GET("/analytics/:short_url/locations", api.GetLocations(service, log))
	engine.GET("/analytics/:short_url/devices", api.GetDevices(service, log))
	engine.GET("/analytics/:short_url/referrers", api.GetReferrers(service, log))
	engine.GET("/analytics/:short_url/export", api.ExportCSV(service, log))

	// формируем адрес запуска
	addr := fmt.Sprintf("%s:%d", cfgServer.HostName, cfgServer.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: engine, // engine реализует http.Handler
	}

	// канал для ошибок от сервера
	errCh := make(chan error, 1)

	// запускаем сервер в горутине
	go func() {
		log.Info("запуск HTTP-сервера", "address", addr)
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// ожидаем либо сигнала от контекста, либо ошибки запуска
	select {
	case <-ctx.Done():
		log.Info("получен сигнал завершения, останавливаем сервер...")
		// даём время на завершение текущих запросов (например, 5 секунд)
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("ошибка при graceful shutdown", "error", err)
			return err
		}
		log.Info("сервер корректно остановлен")
		return nil

	case err := <-errCh:
		log.Error("сервер завершился с ошибкой", "error", err)
		return err
	}
}
