package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"

	DefaultDataPath = "data/habits.json"
)

var (
	ErrInvalidDriver   = errors.New("invalid storage driver (must be json, sqlite or memory)")
	ErrEmptyDataPath   = errors.New("data path cannot be empty")
	ErrInvalidLogLevel = errors.New("invalid log level (must be debug, info, warn or error)")
)

// Config holds application configuration.
type Config struct {
	DataPath  string `yaml:"data_path"`
	Driver    string `yaml:"storage"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func Default() *Config {
	return &Config{
		DataPath:  DefaultDataPath,
		Driver:    DriverJSON,
		LogLevel:  "warn",
		LogFormat: "console",
	}
}

// Load builds the configuration from defaults, then the optional YAML file
// at path (or $KANSO_CONFIG), then environment variables. A .env file in the
// working directory is read first if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv("KANSO_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.DataPath = getEnv("KANSO_DATA_PATH", cfg.DataPath)
	cfg.Driver = getEnv("KANSO_STORAGE", cfg.Driver)
	cfg.LogLevel = getEnv("KANSO_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("KANSO_LOG_FORMAT", cfg.LogFormat)

	cfg.Driver = strings.ToLower(strings.TrimSpace(cfg.Driver))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s not found: %w", path, err)
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Driver {
	case DriverJSON, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDriver, c.Driver)
	}

	if c.Driver != DriverMemory && strings.TrimSpace(c.DataPath) == "" {
		return ErrEmptyDataPath
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
