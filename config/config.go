package config

import (
	"errors"
	"io"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Dataset    DatasetConfig    `yaml:"dataset"`
	Storage    StorageConfig    `yaml:"storage"`
	Dashboard  DashboardConfig  `yaml:"dashboard"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// WorkerPoolConfig holds the size of the per-doctor aggregation worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatasetConfig controls the synthetic dataset built at startup.
type DatasetConfig struct {
	Seed        uint64   `yaml:"seed"` // 0 means time-based
	DaysHistory int      `yaml:"days_history"`
	DaysFuture  int      `yaml:"days_future"`
	Timezone    string   `yaml:"timezone"`
	Doctors     []string `yaml:"doctors"`
}

// StorageConfig selects where the generated snapshot is queried from.
type StorageConfig struct {
	Driver                 string `yaml:"driver"` // memory, sqlite or postgres
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	SeedBatchSize          int    `yaml:"seed_batch_size"`
	LogSQL                 bool   `yaml:"log_sql"`
}

// DashboardConfig holds the query policy of the dashboard endpoints.
type DashboardConfig struct {
	LookbackDays     int    `yaml:"lookback_days"`
	MaxSpanDays      int    `yaml:"max_span_days"`
	PageSize         int    `yaml:"page_size"`
	AutoAssignPolicy string `yaml:"auto_assign_policy"` // static or legacy-random
	ExportProfile    string `yaml:"export_profile"`
}

// DefaultDoctors is the roster used when none is configured.
var DefaultDoctors = []string{
	"Dr. Vejas Sai", "Dr. Priya Sharma", "Dr. Amit Patel", "Dr. Sneha Gupta",
	"Dr. Vikram Singh", "Dr. Anjali Verma", "Dr. Rahul Reddy", "Dr. Kavita Iyer",
	"Dr. Sanjay Mehta", "Dr. Neha Joshi",
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Keys absent from the file keep their Default value; an explicit 0
	// still disables the bound it controls.
	cfg := Default()
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills every unset field with its default value.
func (cfg *Config) ApplyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds < 0 {
		cfg.Server.CacheTTLSeconds = 0
	}

	if cfg.Dataset.DaysHistory <= 0 {
		cfg.Dataset.DaysHistory = 90
	}
	if cfg.Dataset.DaysFuture < 0 {
		cfg.Dataset.DaysFuture = 0
	}
	if cfg.Dataset.Timezone == "" {
		cfg.Dataset.Timezone = "Local"
	}
	if len(cfg.Dataset.Doctors) == 0 {
		cfg.Dataset.Doctors = append([]string(nil), DefaultDoctors...)
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "memory"
	}
	if cfg.Storage.Driver == "sqlite" && cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "file::memory:?cache=shared"
	}
	if cfg.Storage.SeedBatchSize <= 0 {
		cfg.Storage.SeedBatchSize = 500
	}

	if cfg.Dashboard.LookbackDays < 0 {
		cfg.Dashboard.LookbackDays = 0
	}
	if cfg.Dashboard.MaxSpanDays < 0 {
		cfg.Dashboard.MaxSpanDays = 0
	}
	if cfg.Dashboard.PageSize <= 0 {
		cfg.Dashboard.PageSize = 10
	}
	if cfg.Dashboard.AutoAssignPolicy == "" {
		cfg.Dashboard.AutoAssignPolicy = "static"
	}
	if cfg.Dashboard.ExportProfile == "" {
		cfg.Dashboard.ExportProfile = "v1"
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{
		Dashboard:  DashboardConfig{LookbackDays: 90, MaxSpanDays: 15},
		Dataset:    DatasetConfig{DaysFuture: 30},
		WorkerPool: WorkerPoolConfig{Size: 1},
	}
	cfg.ApplyDefaults()
	return cfg
}
