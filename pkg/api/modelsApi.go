package api

import "github.com/IPampurin/LinkTracker/pkg/service"

// BulkCreateRequest - запрос на пакетное создание (POST /shorten/bulk вход)
type BulkCreateRequest struct {
	Links []service.CreateLinkInput `json:"links" binding:"required,min=1,max=100"`
}

// ErrorResponse - стандартный ответ с ошибкой,
// при отказе в редиректе дополняется причиной и кодом ссылки
type ErrorResponse struct {
	Error    string `json:"error"`
	Reason   string `json:"reason,omitempty"`
	ShortURL string `json:"short_url,omitempty"`
}
