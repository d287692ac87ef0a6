// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yml"

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Logging    LoggingConfig    `yaml:"logging"`
	Repository RepositoryConfig `yaml:"repository"`
	Weather    WeatherConfig    `yaml:"weather"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Host            string        `yaml:"host"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	URL            string        `yaml:"url"`
	MaxConnections int           `yaml:"max_connections"`
	MinConnections int           `yaml:"min_connections"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	Migrate        bool          `yaml:"migrate"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type RepositoryConfig struct {
	Type string `yaml:"type"` // "inmemory", "postgres" или "redis"
}

type WeatherConfig struct {
	BaseURL         string         `yaml:"base_url"`
	APIKey          string         `yaml:"api_key"`
	Timeout         time.Duration  `yaml:"timeout"`
	RefreshInterval time.Duration  `yaml:"refresh_interval"`
	QueueSize       int            `yaml:"queue_size"`
	Location        LocationConfig `yaml:"location"`
}

// LocationConfig - статичные координаты вместо геолокации устройства
type LocationConfig struct {
	Enabled bool    `yaml:"enabled"`
	Lat     float64 `yaml:"lat"`
	Lon     float64 `yaml:"lon"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

const (
	RepositoryInMemory = "inmemory"
	RepositoryPostgres = "postgres"
	RepositoryRedis    = "redis"
)

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Database: DatabaseConfig{
			MaxConnections: 10,
			MinConnections: 2,
			IdleTimeout:    5 * time.Minute,
			Migrate:        true,
		},
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "todo",
		},
		Repository: RepositoryConfig{Type: RepositoryInMemory},
		Weather: WeatherConfig{
			Timeout:   10 * time.Second,
			QueueSize: 8,
		},
		RateLimit: RateLimitConfig{RequestsPerMinute: 100},
	}
}

func Load() (*Config, error) {
	return LoadFrom(DefaultPath)
}

// LoadFrom читает yaml поверх значений по умолчанию. Отсутствующий файл не ошибка.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	file, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
	default:
		defer file.Close()
		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
		}
	}

	overrideFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overrideFromEnv(cfg *Config) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Server.Port = port
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}
	if repoType := os.Getenv("REPOSITORY_TYPE"); repoType != "" {
		cfg.Repository.Type = repoType
	}
	if key := os.Getenv("WEATHER_API_KEY"); key != "" {
		cfg.Weather.APIKey = key
	}
	if dev := os.Getenv("LOG_DEVELOPMENT"); dev != "" {
		if v, err := strconv.ParseBool(dev); err == nil {
			cfg.Logging.Development = v
		}
	}
}

func (c *Config) Validate() error {
	switch c.Repository.Type {
	case RepositoryInMemory, RepositoryRedis:
	case RepositoryPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("repository.type=postgres: не задан database.url")
		}
	default:
		return fmt.Errorf("неизвестный тип хранилища: %q", c.Repository.Type)
	}
	if c.Server.Port == "" {
		return fmt.Errorf("не задан server.port")
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
