// Package config предоставялет структуры и функции для загрузки конфигурации сервиса
// из переменных окружения, .env файла и (опционально) YAML-файла.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"db_uri" env:"DB_URI" env-required:"true"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Gate                    `yaml:"gate"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQ                `yaml:"rabbitmq"`
	Scheduler               `yaml:"scheduler"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	Port        string        `yaml:"port" env:"PORT" env-default:"3000"`
	TimeoutHTTP time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// Address возвращает адрес для net/http сервера.
func (s HTTPServer) Address() string {
	return ":" + s.Port
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string `yaml:"jwt_secret_key" env:"JWT_SECRET" env-default:"secret"`
	TokenTTL     Expiry `yaml:"token_ttl" env:"JWT_EXPIRES_IN" env-default:"1D"`
}

// Gate настройки фильтра запросов (rate limit + боты).
type Gate struct {
	Key        string        `yaml:"key" env:"ARCJET_KEY"`
	Env        string        `yaml:"env" env:"ARCJET_ENV" env-default:"development"`
	RefillRate int           `yaml:"refill_rate" env:"GATE_REFILL_RATE" env-default:"5"`
	Interval   time.Duration `yaml:"interval" env:"GATE_INTERVAL" env-default:"10s"`
	Capacity   int           `yaml:"capacity" env:"GATE_CAPACITY" env-default:"10"`
	Requested  int           `yaml:"requested" env:"GATE_REQUESTED" env-default:"5"`
}

// Live сообщает, блокирует ли фильтр запросы или только логирует решения.
func (g Gate) Live() bool {
	return g.Key != ""
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес отключает кеш.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDR"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	MaxRetries   int           `yaml:"max_retries" env:"REDIS_MAX_RETRIES" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env:"REDIS_TIMEOUT" env-default:"3s"`
}

// RabbitMQ настройки публикации событий. Пустой URL отключает публикацию.
type RabbitMQ struct {
	URL     string        `yaml:"url" env:"RABBITMQ_URL"`
	Retries int           `yaml:"retries" env:"RABBITMQ_RETRIES" env-default:"5"`
	Delay   time.Duration `yaml:"delay" env:"RABBITMQ_DELAY" env-default:"2s"`
}

// Scheduler настройки фоновой проверки истёкших подписок.
// Нулевой интервал отключает проверку.
type Scheduler struct {
	ExpiryInterval time.Duration `yaml:"expiry_interval" env:"SCHEDULER_EXPIRY_INTERVAL" env-default:"1h"`
}

// Expiry время жизни токена. Помимо формата time.ParseDuration понимает
// дни ("1D", "7d") и голое число секунд ("3600").
type Expiry time.Duration

// Duration возвращает значение как time.Duration.
func (e Expiry) Duration() time.Duration {
	return time.Duration(e)
}

// SetValue реализует cleanenv.Setter.
func (e *Expiry) SetValue(s string) error {
	d, err := ParseExpiry(s)
	if err != nil {
		return err
	}
	*e = Expiry(d)
	return nil
}

// UnmarshalText позволяет задавать значение в YAML.
func (e *Expiry) UnmarshalText(text []byte) error {
	return e.SetValue(string(text))
}

// ParseExpiry разбирает строку срока действия токена.
func ParseExpiry(s string) (time.Duration, error) {
	const op = "config.ParseExpiry"
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%s: empty value", op)
	}
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	if last := s[len(s)-1]; last == 'd' || last == 'D' {
		n, err := strconv.Atoi(s[:len(s)-1])
		if err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return d, nil
}

// Load читает .env (если есть), затем YAML из CONFIG_PATH (если задан) и переменные окружения.
func Load() (*Config, error) {
	const op = "config.Load"

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var cfg Config
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad загружает конфиг и завершает процесс, если он некорректен
// (например, не задан DB_URI).
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "****"
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"JWTToken:\n"+
			"  JWTSecretKey: %s\n"+
			"  TokenTTL: %s\n"+
			"Gate:\n"+
			"  Key: %s\n"+
			"  Env: %s\n"+
			"  Live: %t\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"RabbitMQ:\n"+
			"  URL: %s\n"+
			"Scheduler:\n"+
			"  ExpiryInterval: %s\n",
		c.Env,
		mask(c.StorageConnectionString),
		c.Address(),
		c.TimeoutHTTP,
		c.IdleTimeout,
		mask(c.JWTSecretKey),
		c.TokenTTL.Duration(),
		mask(c.Key),
		c.Gate.Env,
		c.Live(),
		c.AddressRedis,
		c.DB,
		mask(c.URL),
		c.ExpiryInterval,
	)
}
