package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/MrJamesThe3rd/pocket/internal/database"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Pocket"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	Storage struct {
		// Backend is one of memory, postgres or sqlite. The memory backend is demo mode.
		Backend    string `envconfig:"STORAGE_BACKEND" default:"sqlite"`
		SQLitePath string `envconfig:"SQLITE_PATH" default:"data/pocket.db"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"pocket"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	AMQP struct {
		// Events are only published when URL is set.
		URL      string `envconfig:"AMQP_URL"`
		Exchange string `envconfig:"AMQP_EXCHANGE" default:"pocket.events"`
	}

	Auth struct {
		// Requests to /api must carry an HS256 bearer token signed with this secret when set.
		JWTSecret string `envconfig:"AUTH_JWT_SECRET"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"text"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// DemoMode reports whether the ledger lives only in memory.
func (c *Config) DemoMode() bool {
	return c.Storage.Backend == BackendMemory
}

// Database returns the dialect and DSN for the configured SQL backend.
// It fails for the memory backend.
func (c *Config) Database() (database.Dialect, string, error) {
	switch c.Storage.Backend {
	case BackendPostgres:
		return database.Postgres, c.ConnectionString(), nil
	case BackendSQLite:
		return database.SQLite, c.Storage.SQLitePath, nil
	default:
		return "", "", fmt.Errorf("backend %q has no database", c.Storage.Backend)
	}
}

// LogLevel parses Log.Level; Validate has already rejected unknown names.
func (c *Config) LogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}

	return lvl
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Backend {
	case BackendMemory, BackendPostgres, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}

	if c.Storage.Backend == BackendSQLite && strings.TrimSpace(c.Storage.SQLitePath) == "" {
		errs = append(errs, errors.New("SQLITE_PATH must be set for the sqlite backend"))
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}

	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.App.Port))
	}

	return errors.Join(errs...)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
