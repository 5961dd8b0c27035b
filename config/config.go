package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Quality    QualityConfig    `yaml:"quality"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	EnableQualityDDL       bool   `yaml:"enable_quality_ddl"`
}

// QualityConfig tunes the measurement submission pipeline.
type QualityConfig struct {
	DuplicateWindowSeconds int           `yaml:"duplicate_window_seconds"`
	DuplicateWindow        time.Duration `yaml:"-"` // Ignored by YAML parser
	DueSoonMargin          int64         `yaml:"due_soon_margin"`
	DefaultThreshold       int64         `yaml:"default_maintenance_threshold"`
}

// PushConfig holds the VAPID keys for maintenance alert notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the alert worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Quality.DuplicateWindowSeconds < 0 {
		cfg.Quality.DuplicateWindowSeconds = 0
	} else if cfg.Quality.DuplicateWindowSeconds == 0 {
		cfg.Quality.DuplicateWindowSeconds = 300
	}
	cfg.Quality.DuplicateWindow = time.Duration(cfg.Quality.DuplicateWindowSeconds) * time.Second

	if cfg.Quality.DueSoonMargin <= 0 {
		cfg.Quality.DueSoonMargin = 5000
	}
	if cfg.Quality.DefaultThreshold <= 0 {
		cfg.Quality.DefaultThreshold = 50000
	}

	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 60
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}
