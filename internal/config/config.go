package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Backends lists the accepted DATA_BACKEND values.
var Backends = []string{"sqlite", "postgres", "memory"}

type Config struct {
	// Backend selection
	DataBackend string `koanf:"DATA_BACKEND"`

	// SQLite
	SQLiteDBPath string `koanf:"SQLITE_DB_PATH"`

	// PostgreSQL
	PostgresDSN      string `koanf:"POSTGRES_DSN"`
	PostgresMaxConns int32  `koanf:"POSTGRES_MAX_CONNS"`

	// Memory backend seed directory
	MemoryDataDir string `koanf:"MEMORY_DATA_DIR"`

	// Store write retries
	StoreRetryAttempts uint          `koanf:"STORE_RETRY_ATTEMPTS"`
	StoreRetryDelay    time.Duration `koanf:"STORE_RETRY_DELAY"`

	// Reporting
	ChartsDir        string `koanf:"CHARTS_DIR"`
	TopExpensesLimit int    `koanf:"TOP_EXPENSES_LIMIT"`

	// Logging
	LogLevel  string `koanf:"LOG_LEVEL"`
	LogFormat string `koanf:"LOG_FORMAT"`
}

// Default returns the configuration used when no environment is set.
func Default() *Config {
	return &Config{
		DataBackend:        "sqlite",
		SQLiteDBPath:       "./finance.db",
		PostgresMaxConns:   4,
		MemoryDataDir:      "data",
		StoreRetryAttempts: 3,
		StoreRetryDelay:    100 * time.Millisecond,
		ChartsDir:          "charts",
		TopExpensesLimit:   10,
		LogLevel:           "INFO",
		LogFormat:          "text",
	}
}

// Load reads the configuration from the environment on top of Default.
// Variables set to the empty string are treated as unset.
func Load() (*Config, error) {
	k := koanf.New(".")
	provider := env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if strings.TrimSpace(value) == "" {
			return "", nil
		}
		return key, value
	})
	if err := k.Load(provider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if !slices.Contains(Backends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, Backends))
	}

	switch c.DataBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	case "postgres":
		if c.PostgresDSN == "" {
			errors = append(errors, "POSTGRES_DSN is required when using postgres backend")
		}
		if c.PostgresMaxConns < 1 {
			errors = append(errors, fmt.Sprintf("invalid postgres max connections %d: must be at least 1", c.PostgresMaxConns))
		}
	}

	if c.StoreRetryAttempts < 1 || c.StoreRetryAttempts > 10 {
		errors = append(errors, fmt.Sprintf("invalid store retry attempts %d: must be between 1 and 10", c.StoreRetryAttempts))
	}
	if c.StoreRetryDelay < 0 || c.StoreRetryDelay > 10*time.Second {
		errors = append(errors, fmt.Sprintf("invalid store retry delay %v: must be between 0 and 10s", c.StoreRetryDelay))
	}

	if c.ChartsDir == "" {
		errors = append(errors, "charts directory cannot be empty")
	}
	if c.TopExpensesLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid top expenses limit %d: must be at least 1", c.TopExpensesLimit))
	}

	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be DEBUG, INFO, WARN or ERROR", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}
