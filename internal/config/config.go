package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	Port            string        `yaml:"port"`
	DBPath          string        `yaml:"db_path"`
	JWTSecret       string        `yaml:"jwt_secret"`
	ServiceURL      string        `yaml:"service_url"` // catalog REST API
	LoginURL        string        `yaml:"login_url"`
	LogoutURL       string        `yaml:"logout_url"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
	BlobMaxAge      time.Duration `yaml:"blob_max_age"`
	CutoutRateLimit int           `yaml:"cutout_rate_limit"` // requests per minute per IP
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	MaxMemory       int64         `yaml:"max_memory"` // 最大内存使用（字节）
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		Port:            ":8080",
		DBPath:          "./data/cache/lightcurves.db",
		JWTSecret:       "your-secret-key-change-in-production",
		ServiceURL:      "http://localhost:8000",
		LoginURL:        "/login",
		LogoutURL:       "/logout",
		CacheTTL:        10 * time.Minute,
		FetchTimeout:    30 * time.Second,
		BlobMaxAge:      30 * time.Minute,
		CutoutRateLimit: 120,
		AllowedOrigins:  []string{"*"},
		MaxMemory:       1024 * 1024 * 800, // 800MB
	}
}

// Load 加载配置: defaults, then the YAML file at path (if any), then the environment.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		content, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(content, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if port := os.Getenv("PORT"); port != "" {
		if !strings.Contains(port, ":") {
			port = ":" + port
		}
		cfg.Port = port
	}
	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWTSecret = secret
	}
	if serviceURL := os.Getenv("SERVICE_URL"); serviceURL != "" {
		cfg.ServiceURL = serviceURL
	}
	if ttl := os.Getenv("CACHE_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("parse CACHE_TTL: %w", err)
		}
		cfg.CacheTTL = d
	}
	if limit := os.Getenv("CUTOUT_RATE_LIMIT"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return fmt.Errorf("parse CUTOUT_RATE_LIMIT: %w", err)
		}
		cfg.CutoutRateLimit = n
	}
	return nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.ServiceURL == "" {
		return errors.New("service_url is required")
	}
	if !strings.HasPrefix(c.ServiceURL, "http://") && !strings.HasPrefix(c.ServiceURL, "https://") {
		return fmt.Errorf("service_url must be an http(s) URL, got %q", c.ServiceURL)
	}
	if c.CacheTTL < 0 {
		return errors.New("cache_ttl must not be negative")
	}
	if c.FetchTimeout <= 0 {
		return errors.New("fetch_timeout must be positive")
	}
	if c.CutoutRateLimit <= 0 {
		return errors.New("cutout_rate_limit must be positive")
	}
	return nil
}
