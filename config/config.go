package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Reminder   ReminderConfig   `yaml:"reminder"`

	// Timezone is the household's local time zone. Day boundaries and
	// displayed times use it.
	Timezone string         `yaml:"timezone"`
	Location *time.Location `yaml:"-"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// ReminderConfig controls the reminder dispatcher.
type ReminderConfig struct {
	Enabled          bool          `yaml:"enabled"`
	PollSeconds      int           `yaml:"poll_seconds"`
	PollInterval     time.Duration `yaml:"-"`
	DailyCheckCron   string        `yaml:"daily_check_cron"`
	SnoozeMinutes    int           `yaml:"snooze_minutes"`
	ResultsDelayMins int           `yaml:"results_delay_minutes"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"`
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
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

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied, backed by a
// local SQLite file.
func Default() *Config {
	cfg := &Config{
		Database: DatabaseConfig{Driver: "sqlite", DSN: "babycare.db"},
		Reminder: ReminderConfig{Enabled: true},
	}
	// Defaults never fail to resolve the local zone.
	_ = cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() error {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
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

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 2
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if cfg.Reminder.PollSeconds <= 0 {
		cfg.Reminder.PollSeconds = 30
	}
	cfg.Reminder.PollInterval = time.Duration(cfg.Reminder.PollSeconds) * time.Second
	if cfg.Reminder.DailyCheckCron == "" {
		cfg.Reminder.DailyCheckCron = "0 0 8 * * *"
	}
	if cfg.Reminder.SnoozeMinutes <= 0 {
		cfg.Reminder.SnoozeMinutes = 15
	}
	if cfg.Reminder.ResultsDelayMins <= 0 {
		cfg.Reminder.ResultsDelayMins = 15
	}

	if cfg.Timezone == "" {
		cfg.Location = time.Local
		return nil
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc
	return nil
}
