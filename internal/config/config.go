package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FITHOME_"

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Database  DatabaseConfig  `yaml:"database"`
	Timer     TimerConfig     `yaml:"timer"`
	Alarm     AlarmConfig     `yaml:"alarm"`
	Session   SessionConfig   `yaml:"session"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Log       LogConfig       `yaml:"log"`
	OTel      OTelConfig      `yaml:"otel"`
}

type ServerConfig struct {
	Host string `yaml:"host" env:"SERVER_HOST"`
	Port int    `yaml:"port" env:"SERVER_PORT"`
}

type AuthConfig struct {
	// APIKey protects the session API when set.
	APIKey string `yaml:"api_key" env:"AUTH_API_KEY"`
}

// CatalogConfig selects where the workout plan comes from: "builtin",
// "file" (YAML at Path) or "database".
type CatalogConfig struct {
	Source string `yaml:"source" env:"CATALOG_SOURCE"`
	Path   string `yaml:"path" env:"CATALOG_PATH"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver" env:"DB_DRIVER"`
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	Name     string `yaml:"name" env:"DB_NAME"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE"`
	// Path is the database file for the sqlite driver.
	Path string `yaml:"path" env:"DB_PATH"`
}

type TimerConfig struct {
	InitialSeconds int   `yaml:"initial_seconds" env:"TIMER_INITIAL_SECONDS"`
	QuickAdd       []int `yaml:"quick_add" env:"TIMER_QUICK_ADD"`
}

type AlarmConfig struct {
	// Player is "auto", "none" or a command line reading WAV on stdin.
	Player string `yaml:"player" env:"ALARM_PLAYER"`
}

type SessionConfig struct {
	IdleTTL       time.Duration `yaml:"idle_ttl" env:"SESSION_IDLE_TTL"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SESSION_SWEEP_INTERVAL"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled" env:"TAILSCALE_ENABLED"`
	Hostname string `yaml:"hostname" env:"TAILSCALE_HOSTNAME"`
	StateDir string `yaml:"state_dir" env:"TAILSCALE_STATE_DIR"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
}

type OTelConfig struct {
	// Endpoint is the OTLP/HTTP collector address. Empty disables tracing.
	Endpoint string `yaml:"endpoint" env:"OTEL_ENDPOINT"`
}

// Default returns a config that runs with no file: the built-in catalog on
// 0.0.0.0:8080.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{Host: "0.0.0.0", Port: 8080},
		Catalog:  CatalogConfig{Source: "builtin"},
		Database: DatabaseConfig{Driver: "postgres", Port: 5432, SSLMode: "disable", Path: "fithome.db"},
		Timer:    TimerConfig{InitialSeconds: 50, QuickAdd: []int{10, 30, 50}},
		Alarm:    AlarmConfig{Player: "auto"},
		Session:  SessionConfig{IdleTTL: 2 * time.Hour, SweepInterval: 5 * time.Minute},
		Tailscale: TailscaleConfig{
			Hostname: "fithome",
			StateDir: "tsnet-state",
		},
		Log: LogConfig{Level: "info"},
	}
}

// DSN returns the connection string for the configured driver: a PostgreSQL
// URL, or the file path for sqlite.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {sslmode}}.Encode(),
	}
	return u.String()
}

// MigrateURL returns the database URL in the form golang-migrate expects.
func (d DatabaseConfig) MigrateURL() string {
	if d.Driver == "sqlite" {
		return "sqlite://" + d.Path
	}
	return d.DSN()
}

// SlogLevel maps the configured level name to a slog level.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads config from a YAML file on top of Default, then applies
// environment variable overrides. Env vars use the prefix FITHOME_ and
// underscore-separated paths:
//
//	FITHOME_SERVER_HOST, FITHOME_SERVER_PORT, FITHOME_AUTH_API_KEY,
//	FITHOME_CATALOG_SOURCE, FITHOME_CATALOG_PATH,
//	FITHOME_DB_DRIVER, FITHOME_DB_HOST, FITHOME_DB_PORT, FITHOME_DB_NAME,
//	FITHOME_DB_USER, FITHOME_DB_PASSWORD, FITHOME_DB_SSLMODE, FITHOME_DB_PATH,
//	FITHOME_TIMER_INITIAL_SECONDS, FITHOME_TIMER_QUICK_ADD (comma separated),
//	FITHOME_ALARM_PLAYER, FITHOME_SESSION_IDLE_TTL, FITHOME_SESSION_SWEEP_INTERVAL,
//	FITHOME_TAILSCALE_ENABLED, FITHOME_TAILSCALE_HOSTNAME, FITHOME_TAILSCALE_STATE_DIR,
//	FITHOME_LOG_LEVEL, FITHOME_OTEL_ENDPOINT
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return finish(cfg)
}

// LoadEnv builds a config from Default and the environment alone.
func LoadEnv() (*Config, error) {
	return finish(Default())
}

func finish(cfg *Config) (*Config, error) {
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	switch c.Catalog.Source {
	case "builtin":
	case "file":
		if c.Catalog.Path == "" {
			return fmt.Errorf("catalog.path is required for the file source")
		}
	case "database":
		if err := c.Database.validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("catalog.source must be builtin, file or database, got %q", c.Catalog.Source)
	}

	if c.Timer.InitialSeconds <= 0 {
		return fmt.Errorf("timer.initial_seconds must be positive")
	}
	for _, s := range c.Timer.QuickAdd {
		if s <= 0 {
			return fmt.Errorf("timer.quick_add entries must be positive, got %d", s)
		}
	}
	if c.Alarm.Player == "" {
		return fmt.Errorf("alarm.player is required")
	}
	if c.Session.IdleTTL <= 0 {
		return fmt.Errorf("session.idle_ttl must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session.sweep_interval must be positive")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}

// ValidateDatabase checks the fields needed to connect, regardless of the
// catalog source.
func (c *Config) ValidateDatabase() error {
	return c.Database.validate()
}

func (d DatabaseConfig) validate() error {
	switch d.Driver {
	case "postgres":
		if d.Host == "" {
			return fmt.Errorf("database.host is required")
		}
		if d.Port == 0 {
			return fmt.Errorf("database.port is required")
		}
		if d.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if d.User == "" {
			return fmt.Errorf("database.user is required")
		}
	case "sqlite":
		if d.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", d.Driver)
	}
	return nil
}
