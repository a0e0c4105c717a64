package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Yard       YardConfig       `yaml:"yard"`
	Storage    StorageConfig    `yaml:"storage"`
	Fee        FeeConfig        `yaml:"fee"`
	Recognizer RecognizerConfig `yaml:"recognizer"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	Monitor    MonitorConfig    `yaml:"monitor"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// YardConfig describes the storage yard geometry and its aggregate capacity.
type YardConfig struct {
	Rows        int `yaml:"rows"`
	Cols        int `yaml:"cols"`
	MaxCapacity int `yaml:"max_capacity"`
}

// Areas returns the total number of zones in the yard grid.
func (y YardConfig) Areas() int {
	return y.Rows * y.Cols
}

// StorageConfig holds the paths of the whole-state snapshot files.
type StorageConfig struct {
	DataFile    string `yaml:"data_file"`
	HistoryFile string `yaml:"history_file"`
}

// FeeConfig holds the overdue fee schedule. Monetary values are decimal
// strings so amounts like "49.90" survive the YAML round trip exactly.
type FeeConfig struct {
	GraceDays int    `yaml:"grace_days"`
	BaseFee   string `yaml:"base_fee"`
	DailyRate string `yaml:"daily_rate"`
}

// RecognizerConfig defines the external text-recognition endpoint.
type RecognizerConfig struct {
	URL            string            `yaml:"url"`
	APIKey         string            `yaml:"api_key"`
	Language       string            `yaml:"language"`
	Engine         int               `yaml:"engine"`
	Headers        map[string]string `yaml:"headers"`
	HTTPProxy      string            `yaml:"http_proxy"`
	TimeoutSeconds int               `yaml:"timeout_seconds"`
}

// DatabaseConfig holds the subscription database connection configuration.
// A postgres:// DSN selects Postgres; anything else is treated as an SQLite
// file path.
type DatabaseConfig struct {
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// MonitorConfig controls the overdue sweep loop.
type MonitorConfig struct {
	Enabled         bool `yaml:"enabled"`
	IntervalSeconds int  `yaml:"interval_seconds"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
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

	if cfg.Yard.Rows <= 0 {
		cfg.Yard.Rows = 4
	}
	if cfg.Yard.Cols <= 0 {
		cfg.Yard.Cols = 4
	}
	if cfg.Yard.MaxCapacity <= 0 {
		cfg.Yard.MaxCapacity = 650
	}

	if cfg.Storage.DataFile == "" {
		cfg.Storage.DataFile = "data.json"
	}
	if cfg.Storage.HistoryFile == "" {
		cfg.Storage.HistoryFile = "history.json"
	}

	if cfg.Fee.GraceDays <= 0 {
		cfg.Fee.GraceDays = 7
	}
	if cfg.Fee.BaseFee == "" {
		cfg.Fee.BaseFee = "25.00"
	}
	if cfg.Fee.DailyRate == "" {
		cfg.Fee.DailyRate = "12.50"
	}

	if cfg.Recognizer.TimeoutSeconds <= 0 {
		cfg.Recognizer.TimeoutSeconds = 40
	}
	if cfg.Recognizer.Language == "" {
		cfg.Recognizer.Language = "eng"
	}
	if cfg.Recognizer.Engine <= 0 {
		cfg.Recognizer.Engine = 2
	}

	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	if cfg.Monitor.IntervalSeconds <= 0 {
		cfg.Monitor.IntervalSeconds = 600
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
