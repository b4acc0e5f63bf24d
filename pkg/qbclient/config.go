package qbclient

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config содержит полную конфигурацию подключения к QuickBase REST API v1.
type Config struct {
	Token     string `yaml:"token"`      // User token (QB-USER-TOKEN)
	Realm     string `yaml:"realm"`      // Hostname realm, например "yourrealm.quickbase.com"
	AppID     string `yaml:"app_id"`     // ID приложения по умолчанию (опционально)
	BaseURL   string `yaml:"base_url"`   // Переопределение базового URL (пустое = api.quickbase.com/v1)
	UserAgent string `yaml:"user_agent"` // User-Agent запросов (пустое = значение по умолчанию)
	Timeout   int    `yaml:"timeout"`    // Таймаут HTTP-запроса в секундах (0 = 30)

	Retry     RetryConfig     `yaml:"retry"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Cache     CacheConfig     `yaml:"cache"`
}

// RetryConfig определяет параметры повторов запросов.
// Повторы живут только на этом уровне — транслятор SQL их не делает.
type RetryConfig struct {
	MaxAttempts int     `yaml:"max_attempts"` // Максимум попыток (0 = 3)
	InitialDelay float64 `yaml:"initial_delay"` // Начальная задержка в секундах (0 = 1.0), backoff экспоненциальный
}

// RateLimitConfig определяет клиентское ограничение частоты запросов.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerSecond int  `yaml:"requests_per_second"` // 0 = 10
	RequestsPerMinute int  `yaml:"requests_per_minute"` // 0 = 100
}

// CacheConfig определяет кеш GET-ответов.
// Это отдельный механизм от schema-кеша: у ответов есть TTL,
// schema-кеш инвалидируется явно при DDL-операциях.
type CacheConfig struct {
	Enabled bool         `yaml:"enabled"`
	TTL     int          `yaml:"ttl"`   // TTL записи в секундах (0 = 300)
	Redis   *RedisConfig `yaml:"redis"` // nil = кеш в памяти процесса
}

// RedisConfig определяет разделяемый Redis-бэкенд кеша ответов.
type RedisConfig struct {
	Address  string `yaml:"address"`  // Адрес Redis, например "127.0.0.1:6379"
	Password string `yaml:"password"` // Пароль (опционально)
	DB       int    `yaml:"db"`       // Индекс базы (по умолчанию 0)
	Prefix   string `yaml:"prefix"`   // Префикс ключей (пустое = "qb:cache")
}

// LoadConfig читает конфигурацию из YAML-файла.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет обязательные поля конфигурации.
func (c *Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("config: token is required")
	}
	if c.Realm == "" {
		return fmt.Errorf("config: realm is required")
	}
	return nil
}

// applyDefaults заполняет нулевые значения значениями по умолчанию.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.quickbase.com/v1"
	}
	if c.UserAgent == "" {
		c.UserAgent = "quickbase-go/1.0"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.InitialDelay <= 0 {
		c.Retry.InitialDelay = 1.0
	}
	if c.RateLimit.RequestsPerSecond <= 0 {
		c.RateLimit.RequestsPerSecond = 10
	}
	if c.RateLimit.RequestsPerMinute <= 0 {
		c.RateLimit.RequestsPerMinute = 100
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = 300
	}
	if c.Cache.Redis != nil && c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "qb:cache"
	}
}
