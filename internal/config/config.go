// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/go-playground/validator"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env             string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer      `yaml:"http_server"`
	RedisConnection `yaml:"redis_connection"`
	Telegram        `yaml:"telegram"`
	Perplexity      `yaml:"perplexity"`
	TON             `yaml:"ton"`
	Limits          `yaml:"limits"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"30s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDR" validate:"required"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"10s"`
}

// Telegram структура для настройки бота и вебхука
type Telegram struct {
	BotToken      string `yaml:"bot_token" env:"BOT_TOKEN" validate:"required"`
	WebhookBase   string `yaml:"webhook_base" env:"WEBHOOK_BASE"`
	WebhookSecret string `yaml:"webhook_secret" env:"WEBHOOK_SECRET"`
}

// Perplexity структура для настройки провайдера генерации изображений
type Perplexity struct {
	APIKey      string        `yaml:"api_key" env:"PERPLEXITY_KEY" validate:"required"`
	APIURL      string        `yaml:"api_url" env-default:"https://api.perplexity.ai/chat/completions"`
	Model       string        `yaml:"model" env-default:"sonar-pro"`
	TimeoutGen  time.Duration `yaml:"timeout" env-default:"60s"`
	FallbackURL string        `yaml:"fallback_url" env-default:"https://cataas.com/cat"`
}

// TON структура для настройки приёма платежей в сети TON
type TON struct {
	Wallet          string        `yaml:"wallet" env:"TON_WALLET" validate:"required"`
	ExplorerAPI     string        `yaml:"explorer_api" env-default:"https://tonapi.io"`
	MonthlyPriceTON float64       `yaml:"monthly_price_ton" env-default:"5"`
	PerGenPriceTON  float64       `yaml:"pergen_price_ton" env-default:"0.5"`
	ProDays         int           `yaml:"pro_days" env-default:"30"`
	TimeoutLedger   time.Duration `yaml:"ledger_timeout" env-default:"15s"`
}

// Limits структура для настройки квот
type Limits struct {
	FreeDaily int `yaml:"free_daily" env-default:"3"`
}

// MustLoad функция для загрузки конфига, путь берётся из CONFIG_PATH.
// Отсутствие обязательных полей (токен бота, ключ провайдера, кошелёк,
// адрес redis) считается фатальной ошибкой конфигурации.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		log.Fatalf("invalid config: %s", err)
	}
	return &cfg
}
