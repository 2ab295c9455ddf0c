// Package config loads process-wide configuration once at boot.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all process configuration. Values come from the environment
// (optionally seeded from a config file) and are read once at startup.
type Config struct {
	AppEnv   string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	HTTPAddr string `mapstructure:"http_addr"`

	DatabaseURL     string        `mapstructure:"database_url"`
	DBMaxConns      int32         `mapstructure:"db_max_conns"`
	DBMinConns      int32         `mapstructure:"db_min_conns"`
	DBMaxConnIdle   time.Duration `mapstructure:"db_max_conn_idle"`
	DBStatementWait time.Duration `mapstructure:"db_statement_timeout"`

	JWTSecret string `mapstructure:"jwt_secret"`

	// PDFDir is where rendered receipts are written. The only persisted
	// file artifacts of the system.
	PDFDir string `mapstructure:"pdf_dir"`

	// DeferredQueueSize bounds the in-process deferred-tail queue.
	DeferredQueueSize int `mapstructure:"deferred_queue_size"`
}

// Load reads configuration from environment variables (VENDURA_ prefix)
// with sensible defaults for development.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults also register the keys so AutomaticEnv + Unmarshal can
	// see them.
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("db_max_conns", 25)
	v.SetDefault("db_min_conns", 5)
	v.SetDefault("db_max_conn_idle", 30*time.Minute)
	v.SetDefault("db_statement_timeout", 30*time.Second)
	v.SetDefault("pdf_dir", "./invoices")
	v.SetDefault("deferred_queue_size", 1024)
	v.SetDefault("database_url", "")
	v.SetDefault("jwt_secret", "")

	v.SetEnvPrefix("VENDURA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("VENDURA_DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" && cfg.AppEnv != "development" {
		return nil, fmt.Errorf("VENDURA_JWT_SECRET is required outside development")
	}

	return &cfg, nil
}
