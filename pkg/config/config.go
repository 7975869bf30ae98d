// Package config loads the server and CLI configuration from an optional
// YAML file, an optional .env file and the environment, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/Fepozopo/lunaratelier/pkg/adjust"
)

// DefaultSecret is the token secret used when none is configured.
// Servers running with it log a warning at startup.
const DefaultSecret = "change-this-secret"

// Config is the complete runtime configuration.
type Config struct {
	Server   ServerConfig    `yaml:"server"`
	Auth     AuthConfig      `yaml:"auth"`
	Database DatabaseConfig  `yaml:"database"`
	Images   ImageConfig     `yaml:"images"`
	Logging  LoggingConfig   `yaml:"logging"`
	Presets  []adjust.Preset `yaml:"presets"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port         int      `yaml:"port"`
	FrontendURLs []string `yaml:"frontend_urls"`
	MaxBodyBytes int64    `yaml:"max_body_bytes"`
}

// AuthConfig configures token issuing.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ImageConfig bounds image fetches and decoding.
type ImageConfig struct {
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	MaxPixels    int64         `yaml:"max_pixels"`
	// AllowPrivateNetworks lets the API fetch image URLs on loopback and
	// private addresses. Only for local development.
	AllowPrivateNetworks bool `yaml:"allow_private_networks"`
}

// LoggingConfig configures the zap logger and preview diagnostics.
type LoggingConfig struct {
	Level        string `yaml:"level"` // debug, info, warn, error
	PreviewDebug bool   `yaml:"preview_debug"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         5001,
			FrontendURLs: []string{"http://localhost:5173", "http://localhost:3000"},
			MaxBodyBytes: 50 << 20,
		},
		Auth: AuthConfig{
			JWTSecret: DefaultSecret,
			TokenTTL:  7 * 24 * time.Hour,
		},
		Database: DatabaseConfig{Path: "lunar.db"},
		Images:   ImageConfig{FetchTimeout: 15 * time.Second, MaxPixels: 50_000_000},
		Logging:  LoggingConfig{Level: "info"},
	}
}

// Load builds the configuration. path names an optional YAML file; a
// missing file yields the defaults. A .env file in the working directory, if
// present, is loaded into the environment without overriding variables that
// are already set.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		c.Server.FrontendURLs = splitList(v)
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_BODY_BYTES %q: %w", v, err)
		}
		c.Server.MaxBodyBytes = n
	}
	if v := os.Getenv("FETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid FETCH_TIMEOUT %q: %w", v, err)
		}
		c.Images.FetchTimeout = d
	}
	if v := os.Getenv("MAX_IMAGE_PIXELS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_IMAGE_PIXELS %q: %w", v, err)
		}
		c.Images.MaxPixels = n
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TOKEN_TTL %q: %w", v, err)
		}
		c.Auth.TokenTTL = d
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PREVIEW_DEBUG"); v == "1" || v == "true" {
		c.Logging.PreviewDebug = true
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return errors.New("database path is empty")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("jwt secret is empty")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("invalid max body size: %d", c.Server.MaxBodyBytes)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if _, err := c.Catalog(); err != nil {
		return err
	}
	return nil
}

// UsingDefaultSecret reports whether the token secret was left at its default.
func (c *Config) UsingDefaultSecret() bool {
	return c.Auth.JWTSecret == DefaultSecret
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}

// LogLevel parses the configured log level.
func (c *Config) LogLevel() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", c.Logging.Level, err)
	}
	return lvl, nil
}

// Catalog returns the built-in presets followed by the configured ones.
func (c *Config) Catalog() (*adjust.Catalog, error) {
	return adjust.NewCatalog(c.Presets...)
}
