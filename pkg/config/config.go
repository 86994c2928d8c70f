package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	envConfigPath = "AVICBOT_CONFIG"
	envToken      = "TWITCH_OAUTH_TOKEN"
	envNick       = "TWITCH_BOT_USERNAME"
	envChannel    = "TWITCH_CHANNEL"
	envOwner      = "TWITCH_OWNER"
	envServer     = "TWITCH_SERVER"

	// DefaultServer is the plain-text Twitch chat endpoint.
	DefaultServer = "irc.chat.twitch.tv:6667"

	// DefaultLineIntervalMillis spaces out multi-line replies; Twitch silently
	// drops lines sent back to back.
	DefaultLineIntervalMillis = 2000

	tokenPrefix = "oauth:"
)

// Config is the root runtime configuration loaded from config.json or config.yaml.
type Config struct {
	Server         string        `json:"server" yaml:"server"`
	Token          string        `json:"token" yaml:"token"`
	Nick           string        `json:"nick" yaml:"nick"`
	Channel        string        `json:"channel" yaml:"channel"`
	Owner          string        `json:"owner" yaml:"owner"`
	Greeting       string        `json:"greeting,omitempty" yaml:"greeting,omitempty"`
	LineIntervalMS *int          `json:"line_interval_ms,omitempty" yaml:"line_interval_ms,omitempty"`
	Status         StatusConfig  `json:"status" yaml:"status"`
	Logging        LoggingConfig `json:"logging,omitempty" yaml:"logging,omitempty"`
}

// LoggingConfig controls structured log output format and verbosity.
type LoggingConfig struct {
	Format    string `json:"format,omitempty" yaml:"format,omitempty"`
	Level     string `json:"level,omitempty" yaml:"level,omitempty"`
	AddSource bool   `json:"add_source,omitempty" yaml:"add_source,omitempty"`
}

// StatusConfig configures the optional health and metrics HTTP listener.
type StatusConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Host    string `json:"host" yaml:"host"`
	Port    int    `json:"port" yaml:"port"`
}

// LineInterval returns the pause between lines of one multi-line reply in milliseconds.
func (c *Config) LineInterval() int {
	if c.LineIntervalMS == nil || *c.LineIntervalMS < 0 {
		return DefaultLineIntervalMillis
	}

	return *c.LineIntervalMS
}

// LoadConfig resolves the config file, unmarshals it, applies .env and environment
// overrides, then normalizes and validates the result.
func LoadConfig() (*Config, error) {
	configPath, err := findConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadFile(configPath)
}

// LoadFile loads one explicit config file.
func LoadFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg, err := parse(path, content)
	if err != nil {
		return nil, err
	}

	cfg.finish()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadLocal loads configuration for commands that never connect. It skips
// validation, and an unreadable or missing file leaves only the .env and
// environment settings. An empty path uses the default search.
func LoadLocal(path string) *Config {
	cfg := &Config{}

	if path == "" {
		if found, err := findConfigPath(); err == nil {
			path = found
		}
	}
	if path != "" {
		if content, err := os.ReadFile(path); err == nil {
			if parsed, err := parse(path, content); err == nil {
				cfg = parsed
			}
		}
	}

	cfg.finish()
	return cfg
}

// finish layers .env and environment overrides on the file values.
func (c *Config) finish() {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	applyEnvOverrides(c)
	c.normalize()
}

func parse(path string, content []byte) (*Config, error) {
	var cfg Config

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	default:
		if err := json.Unmarshal(content, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	return &cfg, nil
}

// applyEnvOverrides injects selected env-driven settings on top of file config.
func applyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	overrides := []struct {
		env    string
		target *string
	}{
		{envToken, &cfg.Token},
		{envNick, &cfg.Nick},
		{envChannel, &cfg.Channel},
		{envOwner, &cfg.Owner},
		{envServer, &cfg.Server},
	}

	for _, o := range overrides {
		if value := strings.TrimSpace(os.Getenv(o.env)); value != "" {
			*o.target = value
		}
	}
}

func (c *Config) normalize() {
	c.Server = strings.TrimSpace(c.Server)
	if c.Server == "" {
		c.Server = DefaultServer
	}

	c.Token = strings.TrimSpace(c.Token)
	if c.Token != "" && !strings.HasPrefix(c.Token, tokenPrefix) {
		c.Token = tokenPrefix + c.Token
	}

	c.Nick = strings.ToLower(strings.TrimSpace(c.Nick))
	c.Owner = strings.ToLower(strings.TrimSpace(c.Owner))

	c.Channel = strings.ToLower(strings.TrimSpace(c.Channel))
	if c.Channel != "" && !strings.HasPrefix(c.Channel, "#") {
		c.Channel = "#" + c.Channel
	}
}

// Validate reports missing connection settings.
func (c *Config) Validate() error {
	var errs []error

	if c.Token == "" {
		errs = append(errs, errors.New("token is required"))
	}
	if c.Nick == "" {
		errs = append(errs, errors.New("nick is required"))
	}
	if c.Channel == "" || c.Channel == "#" {
		errs = append(errs, errors.New("channel is required"))
	}
	if c.Status.Port < 0 {
		errs = append(errs, fmt.Errorf("status.port must not be negative, got %d", c.Status.Port))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// findConfigPath resolves the active config file location.
//
// Precedence is AVICBOT_CONFIG first, then cwd-local fallback paths.
func findConfigPath() (string, error) {
	if value := strings.TrimSpace(os.Getenv(envConfigPath)); value != "" {
		if info, err := os.Stat(value); err == nil && !info.IsDir() {
			return value, nil
		}
		return "", fmt.Errorf("%s does not point to a file: %s", envConfigPath, value)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get current working directory: %w", err)
	}

	candidates := []string{
		filepath.Join(cwd, "config.json"),
		filepath.Join(cwd, "config.yaml"),
		filepath.Join(cwd, "config", "config.json"),
		filepath.Join(cwd, "config", "config.yaml"),
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("config file not found (checked %s)", strings.Join(candidates, ", "))
}
