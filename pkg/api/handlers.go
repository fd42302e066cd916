package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/IPampurin/LinkTracker/pkg/service"
	"github.com/gin-gonic/gin"
	"github.com/wb-go/wbf/logger"
)

// principalFrom достаёт субъекта операции из заголовков внешней авторизации
func principalFrom(c *gin.Context) service.Principal {

	p := service.Principal{Role: c.GetHeader("X-User-Role")}
	if id, err := strconv.Atoi(c.GetHeader("X-User-ID")); err == nil {
		p.UserID = id
	}

	return p
}

// writeServiceError переводит ошибку сервиса в HTTP-ответ
func writeServiceError(c *gin.Context, log logger.Logger, err error) {

	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "ссылка не найдена"})
	case errors.Is(err, service.ErrAliasTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "короткая ссылка уже занята"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "операция доступна только владельцу ссылки"})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		log.Ctx(c.Request.Context()).Error("внутренняя ошибка", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "внутренняя ошибка сервера"})
	}
}

// CreateShortLink обрабатывает POST /shorten
func CreateShortLink(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		var req service.CreateLinkInput
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Ctx(c.Request.Context()).Error("неверный формат запроса", "error", err)
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "неверный формат запроса"})
			return
		}

		link, err := svc.CreateShortLink(c.Request.Context(), log, req, principalFrom(c))
		if err != nil {
			writeServiceError(c, log, err)
			return
		}

		c.JSON(http.StatusCreated, link)
	}
}

// BulkCreate обрабатывает POST /shorten/bulk,
// конфликтные элементы пропускаются, а не валят весь пакет
func BulkCreate(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		var req BulkCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Ctx(c.Request.Context()).Error("неверный формат запроса", "error", err)
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "неверный формат запроса"})
			return
		}

		result, err := svc.BulkCreate(c.Request.Context(), log, req.Links, principalFrom(c))
		if err != nil {
			writeServiceError(c, log, err)
			return
		}

		c.JSON(http.StatusCreated, result)
	}
}

// Redirect обрабатывает GET /s/:short_url:
// 302 на адрес назначения либо структурированная ошибка с причиной отказа,
// Gone и неизвестный код дают 404, остальные отказы - 400
func Redirect(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		shortURL := c.Param("short_url")
		password := c.Query("password")

		destination, err := svc.Redirect(c.Request.Context(), log,
			shortURL,
			password,
			c.ClientIP(),
			c.GetHeader("User-Agent"),
			c.GetHeader("Referer"),
		)
		if err != nil {
			if denied, ok := service.AsAccessDenied(err); ok {
				status := http.StatusBadRequest
				if denied.Reason == service.DenyGone {
					status = http.StatusNotFound
				}
				c.JSON(status, ErrorResponse{
					Error:    "переход запрещён",
					Reason:   string(denied.Reason),
					ShortURL: denied.ShortURL,
				})
				return
			}
			if errors.Is(err, service.ErrNotFound) {
				c.JSON(http.StatusNotFound, ErrorResponse{Error: "ссылка не найдена", ShortURL: shortURL})
				return
			}
			writeServiceError(c, log, err)
			return
		}

		c.Redirect(http.StatusFound, destination)
	}
}

// UpdateLink обрабатывает PATCH /links/:short_url
func UpdateLink(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		var req service.UpdateLinkInput
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Ctx(c.Request.Context()).Error("неверный формат запроса", "error", err)
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "неверный формат запроса"})
			return
		}

		link, err := svc.UpdateLink(c.Request.Context(), log, c.Param("short_url"), req, principalFrom(c))
		if err != nil {
			writeServiceError(c, log, err)
			return
		}

		c.JSON(http.StatusOK, link)
	}
}

// DeleteLink обрабатывает DELETE /links/:short_url
func DeleteLink(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		err := svc.DeleteLink(c.Request.Context(), log, c.Param("short_url"), principalFrom(c))
		if err != nil {
			writeServiceError(c, log, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// GetLinks обрабатывает GET /links
func GetLinks(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		links, err := svc.LastLinks(c.Request.Context(), log)
		if err != nil {
			writeServiceError(c, log, err)
			return
		}

		c.JSON(http.StatusOK, links)
	}
}

// SearchByOriginal обрабатывает GET /links/search/original?q=...
func SearchByOriginal(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		query := c.Query("q")
		if query == "" {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "параметр q обязателен"})
			return
		}

		links, err := svc.SearchByOriginalURL(c.Request.Context(), log, query)
		if err != nil {
			writeServiceError(c, log, err)
			return
		}

		c.JSON(http.StatusOK, links)
	}
}

// SearchByShort обрабатывает GET /links/search/short?q=...
func SearchByShort(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		query := c.Query("q")
		if query == "" {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "параметр q обязателен"})
			return
		}

		links, err := svc.SearchByShortURL(c.Request.Context(), log, query)
		if err != nil {
			writeServiceError(c, log, err)
			return
		}

		c.JSON(http.StatusOK, links)
	}
}

// GetOverview обрабатывает GET /analytics/:short_url/overview
func GetOverview(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		overview, err := svc.Overview(c.Request.Context(), log, c.Param("short_url"))
		if err != nil {
			writeServiceError(c, log, err)
			return
		}

		c.JSON(http.StatusOK, overview)
	}
}

// GetTimeline обрабатывает GET /analytics/:short_url/timeline?interval=day&days=30
func GetTimeline(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		interval := c.DefaultQuery("interval", "day")
		days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

		timeline, err := svc.Timeline(c.Request.Context(), log, c.Param("short_url"), interval, days)
		if err != nil {
			writeServiceError(c, log, err)
			return
		}

		c.JSON(http.StatusOK, timeline)
	}
}

// GetLocations обрабатывает GET /analytics/:short_url/locations
func GetLocations(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		locations, err := svc.Locations(c.Request.Context(), log, c.Param("short_url"))
		if err != nil {
			writeServiceError(c, log, err)
			return
		}

		c.JSON(http.StatusOK, locations)
	}
}

// GetDevices обрабатывает GET /analytics/:short_url/devices
func GetDevices(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		devices, err := svc.Devices(c.Request.Context(), log, c.Param("short_url"))
		if err != nil {
			writeServiceError(c, log, err)
			return
		}

		c.JSON(http.StatusOK, devices)
	}
}

// GetReferrers обрабатывает GET /analytics/:short_url/referrers
func GetReferrers(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		referrers, err := svc.Referrers(c.Request.Context(), log, c.Param("short_url"))
		if err != nil {
			writeServiceError(c, log, err)
			return
		}

		c.JSON(http.StatusOK, referrers)
	}
}

// ExportCSV обрабатывает GET /analytics/:short_url/export,
// отдаёт CSV всех кликов файлом
func ExportCSV(svc service.ServiceMethods, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		shortURL := c.Param("short_url")

		data, err := svc.ExportCSV(c.Request.Context(), log, shortURL)
		if err != nil {
			writeServiceError(c, log, err)
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=clicks_%s.csv", shortURL))
		c.Data(http.StatusOK, "text/csv", data)
	}
}
