package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/IPampurin/LinkTracker/pkg/cache"
	"github.com/IPampurin/LinkTracker/pkg/configuration"
	"github.com/IPampurin/LinkTracker/pkg/consumer"
	"github.com/IPampurin/LinkTracker/pkg/db"
	"github.com/IPampurin/LinkTracker/pkg/rabbit"
	"github.com/IPampurin/LinkTracker/pkg/server"
	"github.com/IPampurin/LinkTracker/pkg/service"
	"github.com/wb-go/wbf/logger"
)

func main() {

	// cоздаём контекст
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// запускаем горутину обработки сигналов
	go func() {
		<-sigChan
		cancel()
	}()

	// считываем .env файл
	cfg, err := configuration.ReadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// настраиваем логгер
	appLogger, err := logger.InitLogger(
		logger.ZapEngine,
		"link-tracker",
		cfg.App.Env,
		logger.WithLevel(logger.InfoLevel),
	)
	if err != nil {
		log.Fatalf("Ошибка создания логгера: %v", err)
	}

	// подключаем базу данных
	storage, err := db.InitDB(ctx, &cfg.DB, appLogger)
	if err != nil {
		appLogger.Error("ошибка подключения к БД", "error", err)
		return
	}
	defer func() { _ = db.CloseDB(storage) }()

	// инициализируем кэш (без кэша работаем напрямую с БД)
	cacheLinks, err := cache.InitCache(ctx, storage, &cfg.Redis, appLogger)
	if err != nil {
		appLogger.Warn("кэш не работает", "error", err)
	}

	// запускаем RabbitMQ
	rabbitClient, err := rabbit.InitRabbit(&cfg.RabbitMQ, &cfg.Pipeline, appLogger)
	if err != nil {
		appLogger.Error("ошибка подключения к RabbitMQ", "error", err)
		return
	}
	defer func() { _ = rabbitClient.Close() }()

	// запускаем горутину-консумер конвейера кликов
	go func() {
		err := consumer.InitConsumer(ctx, storage, cacheLinks, rabbitClient, &cfg.Pipeline, cfg.App.Env, appLogger)
		if err != nil {
			appLogger.Error("консумер завершился с ошибкой", "error", err)
			cancel()
		}
	}()

	// собираем сервис
	svc := service.InitService(ctx, storage, cacheLinks, rabbitClient, &cfg.App)

	// запускаем сервер
	err = server.Run(ctx, &cfg.Server, svc, appLogger)
	if err != nil {
		appLogger.Error("Ошибка сервера", "error", err)
		cancel()
		return
	}

	appLogger.Info("Приложение корректно завершено")
}
