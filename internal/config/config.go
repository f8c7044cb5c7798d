package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no explicit config path is given and it exists.
const DefaultFile = "tramboard.yml"

// Config holds application configuration from the config file and environment variables.
type Config struct {
	Port           int           `yaml:"port" validate:"gt=0,lt=65536"`
	DBPath         string        `yaml:"db_path" validate:"required"`
	BaseURL        string        `yaml:"base_url" validate:"required,url"`
	DirectoryPath  string        `yaml:"directory_path"` // empty = embedded directory
	Limit          int           `yaml:"limit" validate:"gt=0,lte=100"`
	TransportTypes []string      `yaml:"transport_types" validate:"min=1,dive,required"`
	Timeout        time.Duration `yaml:"timeout" validate:"gt=0"`
	Language       string        `yaml:"language"`
	Timezone       string        `yaml:"timezone"`                                             // empty = local
	Notifications  string        `yaml:"notifications" validate:"oneof=prompt granted denied"` // initial permission policy
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:           8080,
		DBPath:         "./tramboard.db",
		BaseURL:        "https://www.mvg.de/api/bgw-pt/v3",
		Limit:          10,
		TransportTypes: []string{"TRAM", "BUS"},
		Timeout:        10 * time.Second,
		Language:       "en",
		Notifications:  "prompt",
	}
}

// Load builds the configuration from defaults, the YAML file at path (or DefaultFile when
// path is empty and the file exists) and TRAMBOARD_* environment variables, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.Port = envInt("TRAMBOARD_PORT", cfg.Port)
	cfg.DBPath = envStr("TRAMBOARD_DB_PATH", cfg.DBPath)
	cfg.BaseURL = envStr("TRAMBOARD_BASE_URL", cfg.BaseURL)
	cfg.DirectoryPath = envStr("TRAMBOARD_DIRECTORY", cfg.DirectoryPath)
	cfg.Limit = envInt("TRAMBOARD_LIMIT", cfg.Limit)
	cfg.TransportTypes = envList("TRAMBOARD_TRANSPORT_TYPES", cfg.TransportTypes)
	cfg.Timeout = envDuration("TRAMBOARD_TIMEOUT", cfg.Timeout)
	cfg.Language = envStr("TRAMBOARD_LANG", cfg.Language)
	cfg.Timezone = envStr("TRAMBOARD_TZ", cfg.Timezone)
	cfg.Notifications = envStr("TRAMBOARD_NOTIFICATIONS", cfg.Notifications)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Location resolves Timezone, falling back to the process local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList reads a comma-separated list.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
