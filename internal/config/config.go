package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	appErrors "github.com/afyacard/healthcard-backend/internal/errors"
)

// Config holds all configuration for the application. It is built once at
// process start and passed explicitly into the components that need it;
// nothing reads environment variables after startup.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Gateway       GatewayConfig       `yaml:"gateway"`
	Notifications NotificationsConfig `yaml:"notifications"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds postgres connection settings
type DatabaseConfig struct {
	// URL takes precedence over the discrete fields when set.
	URL      string `yaml:"url"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// GatewayConfig holds credentials for the templated-messaging gateway
type GatewayConfig struct {
	BaseURL        string `yaml:"base_url"`
	AccessToken    string `yaml:"access_token"`
	SenderID       string `yaml:"sender_id"`
	Language       string `yaml:"language"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (c GatewayConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks that every credential required to reach the gateway is
// present. A missing credential is a hard configuration error: sends must
// fail fast, never silently no-op.
func (c GatewayConfig) Validate() error {
	if c.BaseURL == "" {
		return appErrors.NewMissingGatewayConfig("base_url")
	}
	if c.AccessToken == "" {
		return appErrors.NewMissingGatewayConfig("access_token")
	}
	if c.SenderID == "" {
		return appErrors.NewMissingGatewayConfig("sender_id")
	}
	return nil
}

// NotificationsConfig holds settings for the renewal-notification engine
type NotificationsConfig struct {
	// Enabled is the master kill switch. Default false: a fresh deploy
	// sends nothing until an operator opts in.
	Enabled          bool   `yaml:"enabled"`
	Environment      string `yaml:"environment"`
	TestDestination  string `yaml:"test_destination"`
	BusinessTimezone string `yaml:"business_timezone"`
	MaxRetries       int    `yaml:"max_retries"`
	RetryBackoffMS   int    `yaml:"retry_backoff_ms"`
	MessageDelayMS   int    `yaml:"message_delay_ms"`
}

func (c NotificationsConfig) IsProduction() bool {
	return c.Environment == "prod"
}

// Location resolves the business timezone used for eligibility-day
// boundaries. Eligibility windows are calendar days in this zone, not in
// UTC and not in the server's local zone.
func (c NotificationsConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.BusinessTimezone)
}

func (c NotificationsConfig) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMS) * time.Millisecond
}

func (c NotificationsConfig) MessageDelay() time.Duration {
	return time.Duration(c.MessageDelayMS) * time.Millisecond
}

// Load reads and parses the configuration file. An empty path yields a
// config with defaults only.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Gateway.TimeoutSeconds == 0 {
		cfg.Gateway.TimeoutSeconds = 30
	}
	if cfg.Gateway.Language == "" {
		cfg.Gateway.Language = "en"
	}
	if cfg.Notifications.Environment == "" {
		cfg.Notifications.Environment = "dev"
	}
	if cfg.Notifications.BusinessTimezone == "" {
		cfg.Notifications.BusinessTimezone = "Africa/Nairobi"
	}
	if cfg.Notifications.MaxRetries == 0 {
		cfg.Notifications.MaxRetries = 3
	}
	if cfg.Notifications.RetryBackoffMS == 0 {
		cfg.Notifications.RetryBackoffMS = 2000
	}
	if cfg.Notifications.MessageDelayMS == 0 {
		cfg.Notifications.MessageDelayMS = 1000
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It loads a .env file (if present) before reading env vars, so secrets
// can live in .env locally and in real env vars in deployment.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = p
		}
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Database.Name = v
	}

	if v := os.Getenv("GATEWAY_BASE_URL"); v != "" {
		cfg.Gateway.BaseURL = v
	}
	if v := os.Getenv("GATEWAY_ACCESS_TOKEN"); v != "" {
		cfg.Gateway.AccessToken = v
	}
	if v := os.Getenv("GATEWAY_SENDER_ID"); v != "" {
		cfg.Gateway.SenderID = v
	}

	if v := os.Getenv("NOTIFICATIONS_ENABLED"); v != "" {
		cfg.Notifications.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.Notifications.Environment = v
	}
	if v := os.Getenv("TEST_DESTINATION"); v != "" {
		cfg.Notifications.TestDestination = v
	}
	if v := os.Getenv("BUSINESS_TIMEZONE"); v != "" {
		cfg.Notifications.BusinessTimezone = v
	}

	return cfg, nil
}
