package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging"`

	// Application configuration
	App AppConfig `yaml:"app"`

	// Database configuration
	Database DatabaseConfig `yaml:"database"`

	// Export channel (Telegram) configuration
	Telegram TelegramConfig `yaml:"telegram"`

	// Export document configuration
	Export ExportConfig `yaml:"export"`

	// Inbound request handling
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Survey engine configuration
	Survey SurveyConfig `yaml:"survey"`

	// Janitor configuration
	Janitor JanitorConfig `yaml:"janitor"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Host         string        `yaml:"host" env:"SERVER_HOST" env-default:"localhost"`
	Port         string        `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
}

// LoggingConfig holds logging-specific configuration
type LoggingConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `yaml:"name" env:"APP_NAME" env-default:"csi-survey"`
	Version     string `yaml:"version" env:"APP_VERSION" env-default:"1.0.0"`
	Environment string `yaml:"environment" env:"ENV" env-default:"development"`
	Debug       bool   `yaml:"debug" env:"DEBUG" env-default:"false"`
}

// DatabaseConfig holds the sqlite database location
type DatabaseConfig struct {
	Path string `yaml:"path" env:"DB_PATH" env-default:"data/survey.db"`
}

// TelegramConfig holds the export channel settings.
// BotToken is a secret and is only read from the environment.
type TelegramConfig struct {
	BotToken    string        `yaml:"-" env:"TELEGRAM_BOT_TOKEN"`
	AdminChatID string        `yaml:"admin_chat_id" env:"ADMIN_CHAT_ID"`
	ProbeDelay  time.Duration `yaml:"probe_delay" env:"TELEGRAM_PROBE_DELAY" env-default:"1s"` // wait before a probe message
}

// ExportConfig holds settings of the transient export document
type ExportConfig struct {
	TempDir    string        `yaml:"temp_dir" env:"EXPORT_TEMP_DIR" env-default:"data/tmp"`
	StaleAfter time.Duration `yaml:"stale_after" env:"EXPORT_STALE_AFTER" env-default:"1h"` // age after which the janitor removes leftovers
}

// CORSConfig holds the allowed cross-origin settings
type CORSConfig struct {
	AllowedOrigin string `yaml:"allowed_origin" env:"CORS_ORIGIN" env-default:"http://localhost:3000"`
}

// RateLimitConfig holds inbound request throttling per client IP
type RateLimitConfig struct {
	Window time.Duration `yaml:"window" env:"RATE_LIMIT_WINDOW" env-default:"15m"`
	Max    int           `yaml:"max" env:"RATE_LIMIT_MAX" env-default:"100"`
}

// SurveyConfig holds survey engine settings
type SurveyConfig struct {
	ScorePolicy string `yaml:"score_policy" env:"SCORE_POLICY" env-default:"verify"` // trust, verify or recompute
}

// JanitorConfig holds janitor settings
type JanitorConfig struct {
	ShortCleanInterval time.Duration `yaml:"short_clean_interval" env:"JANITOR_SHORT_CLEAN_INTERVAL" env-default:"5m"`
	FullCleanInterval  time.Duration `yaml:"full_clean_interval" env:"JANITOR_FULL_CLEAN_INTERVAL" env-default:"1h"`
}

// Load reads the configuration. When CONFIG_PATH names a YAML file it is read
// first; environment variables always override it.
func Load() (*Config, error) {
	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// MustLoad is Load for command line entry points, it panics on an invalid configuration
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

// validate validates the configuration
func (c *Config) validate() error {
	// Validate server port
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %s", c.Server.Port)
	}

	// Validate environment
	validEnvs := []string{"development", "staging", "production"}
	if !slices.Contains(validEnvs, c.App.Environment) {
		return fmt.Errorf("invalid environment: %s (must be one of: %s)",
			c.App.Environment, strings.Join(validEnvs, ", "))
	}

	// Validate log level
	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)",
			c.Logging.Level, strings.Join(validLevels, ", "))
	}

	validPolicies := []string{"trust", "verify", "recompute"}
	if !slices.Contains(validPolicies, c.Survey.ScorePolicy) {
		return fmt.Errorf("invalid score policy: %s (must be one of: %s)",
			c.Survey.ScorePolicy, strings.Join(validPolicies, ", "))
	}

	if c.RateLimit.Window <= 0 || c.RateLimit.Max <= 0 {
		return fmt.Errorf("invalid rate limit: %d requests per %s", c.RateLimit.Max, c.RateLimit.Window)
	}

	if c.Janitor.ShortCleanInterval <= 0 || c.Janitor.FullCleanInterval <= 0 {
		return fmt.Errorf("janitor intervals must be positive")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("DB_PATH must not be empty")
	}

	// ADMIN_CHAT_ID is either a numeric chat id or a public @channel name
	if id := c.Telegram.AdminChatID; id != "" && !strings.HasPrefix(id, "@") {
		if _, err := strconv.ParseInt(id, 10, 64); err != nil {
			return fmt.Errorf("invalid ADMIN_CHAT_ID: %s", id)
		}
	}

	return nil
}

// IsDevelopment returns true if the app is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the app is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetServerAddress returns the server address in the format "host:port"
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// ChannelConfigured reports whether both export channel settings are present
func (c *Config) ChannelConfigured() bool {
	return c.Telegram.BotToken != "" && c.Telegram.AdminChatID != ""
}
