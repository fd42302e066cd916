package configuration

import (
	"time"

	cleanenvport "github.com/wb-go/wbf/config/cleanenv-port"
)

// ConfServer — параметры HTTP-сервера
type ConfServer struct {
	HostName string `env:"SERVICE_HOST_NAME" env-default:"localhost"`
	Port     int    `env:"SERVICE_PORT"       env-default:"8081"`
	GinMode  string `env:"GIN_MODE"           env-default:"debug"`
}

// ConfDB — параметры подключения к PostgreSQL
type ConfDB struct {
	HostName string `env:"DB_HOST_NAME" env-default:"dbPostgres"`
	Port     int    `env:"DB_PORT"      env-default:"5432"`
	Name     string `env:"DB_NAME"      env-default:"db-postgres"`
	User     string `env:"DB_USER"      env-default:"postgres"`
	Password string `env:"DB_PASSWORD"  env-default:"postgres"`
}

// ConfCache — параметры Redis
type ConfCache struct {
	HostName     string        `env:"REDIS_HOST_NAME"     env-default:"dbRedis"`
	Port         int           `env:"REDIS_PORT"          env-default:"6379"`
	Password     string        `env:"REDIS_PASSWORD"      env-default:""`
	DB           int           `env:"REDIS_DB"            env-default:"0"`
	LinkTTL      time.Duration `env:"REDIS_LINK_TTL"      env-default:"3600s"`
	AnalyticsTTL time.Duration `env:"REDIS_ANALYTICS_TTL" env-default:"300s"`
	Warming      time.Duration `env:"REDIS_WARMING"       env-default:"24h"`
}

// ConfRabbitMQ — параметры RabbitMQ
type ConfRabbitMQ struct {
	HostName  string `env:"RABBIT_HOST_NAME"  env-default:"RabbitMQ"`
	Port      int    `env:"RABBIT_PORT"       env-default:"5672"`
	User      string `env:"RABBIT_USER"       env-default:"rabbitMQ"`
	Password  string `env:"RABBIT_PASSWORD"   env-default:""`
	VHost     string `env:"RABBIT_VHOST"      env-default:"/"`
	Queue     string `env:"RABBIT_QUEUE"      env-default:"clicksQueue"`
	DeadQueue string `env:"RABBIT_DEAD_QUEUE" env-default:"clicksQueue.dead"`
}

// ConfPipeline — параметры конвейера обработки переходов
type ConfPipeline struct {
	Workers    int           `env:"PIPELINE_WORKERS"  env-default:"4"`
	Prefetch   int           `env:"PIPELINE_PREFETCH" env-default:"8"`
	RetryCount int           `env:"RETRY_COUNT"       env-default:"3"`
	RetryDelay time.Duration `env:"RETRY_DELAY"       env-default:"2s"`
	Backoff    int           `env:"RETRY_BACKOFF"     env-default:"2"`
	GeoTimeout time.Duration `env:"GEO_TIMEOUT"       env-default:"3s"`
}

// ConfApp — общие параметры приложения
type ConfApp struct {
	Env          string `env:"APP_ENV"       env-default:""`
	CodeLength   int    `env:"CODE_LENGTH"   env-default:"6"`
	CodeAttempts int    `env:"CODE_ATTEMPTS" env-default:"5"`
}

// Config — корневая структура конфигурации
type Config struct {
	Server   ConfServer
	DB       ConfDB
	Redis    ConfCache
	RabbitMQ ConfRabbitMQ
	Pipeline ConfPipeline
	App      ConfApp
}

// ReadConfig загружает .env файл из корня проекта и возвращает заполненную структуру Config
func ReadConfig() (*Config, error) {

	var config Config

	// загружаем конфигурацию из файла .env напрямую в структуру
	if err := cleanenvport.LoadPath("./.env", &config); err != nil {
		return nil, err
	}

	// единицы измерения для time.Duration указаны прямо в тегах env-default
	// (например, "2s", "300s", "24h"), поэтому дополнительной обработки не требуется

	return &config, nil
}
