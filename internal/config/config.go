package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"bookingrisk/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Model      ModelConfig      `yaml:"model"`
	HTTP       HTTPConfig       `yaml:"http"`
	GRPC       GRPCConfig       `yaml:"grpc"`
	Redis      RedisConfig      `yaml:"redis"`
	Session    SessionConfig    `yaml:"session"`
	Cache      CacheConfig      `yaml:"cache"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type ModelConfig struct {
	// Path to the pipeline artifact. Relative paths are resolved against the
	// directory of the running executable.
	Path string `yaml:"path"`
}

type HTTPConfig struct {
	Port      int             `yaml:"port"`
	Title     string          `yaml:"title"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// GRPCConfig controls the gRPC health endpoint.
type GRPCConfig struct {
	Enabled    bool `yaml:"enabled"`
	Port       int  `yaml:"port"`
	Reflection bool `yaml:"reflection"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type RedisConfig struct {
	Address    string `yaml:"address"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	PoolSize   int    `yaml:"pool_size"`
	MaxRetries int    `yaml:"max_retries"`
}

type SessionConfig struct {
	CookieName string `yaml:"cookie_name"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

type CacheConfig struct {
	Size int `yaml:"size"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	FilePath   string `yaml:"file_path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

const (
	DefaultModelPath   = "artifacts/booking_cancellation_dt.json"
	DefaultTitle       = "Hotel Booking Cancellation Predictor"
	DefaultCookieName  = "booking_session"
	DefaultHTTPPort    = 8080
	DefaultMetricsPort = 9090
	DefaultGRPCPort    = 9091
)

func Load(configPath string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Model.Path) == "" {
		return errors.New("model path is required")
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port %d", c.HTTP.Port)
	}
	if c.GRPC.Port < 0 || c.GRPC.Port > 65535 {
		return fmt.Errorf("invalid grpc port %d", c.GRPC.Port)
	}
	if c.HTTP.RateLimit.RPS < 0 {
		return errors.New("http.rate_limit.rps must not be negative")
	}
	if c.Cache.Size < 0 {
		return errors.New("cache.size must not be negative")
	}
	if strings.EqualFold(strings.TrimSpace(c.Logging.Output), "file") && c.Logging.FilePath == "" {
		return errors.New("logging.output=file requires logging.file_path")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "bookingrisk"
	}
	if c.Model.Path == "" {
		c.Model.Path = DefaultModelPath
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = DefaultHTTPPort
	}
	if c.HTTP.Title == "" {
		c.HTTP.Title = DefaultTitle
	}
	if c.HTTP.RateLimit.RPS > 0 && c.HTTP.RateLimit.Burst == 0 {
		c.HTTP.RateLimit.Burst = 5
	}
	if c.GRPC.Enabled && c.GRPC.Port == 0 {
		c.GRPC.Port = DefaultGRPCPort
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = DefaultMetricsPort
	}
	if c.Redis.MaxRetries == 0 {
		c.Redis.MaxRetries = 3
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = DefaultCookieName
	}
	if c.Session.TTLSeconds == 0 {
		c.Session.TTLSeconds = models.DefaultSessionTTL
	}
	if c.Cache.Size == 0 {
		c.Cache.Size = models.DefaultPredictionCacheSize
	}
}
