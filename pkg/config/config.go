// Package config loads browserd configuration with the precedence
// defaults < YAML file < environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete browserd configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Browser BrowserConfig `yaml:"browser"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Bind            string        `yaml:"bind"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// SettleDelay is the default pause applied after navigation-style
	// calls when the request carries no wait parameter.
	SettleDelay time.Duration `yaml:"settle_delay"`

	// MaxWait caps the per-request wait parameter.
	MaxWait time.Duration `yaml:"max_wait"`
}

// BrowserConfig controls the launched browser session.
type BrowserConfig struct {
	Headless  *bool         `yaml:"headless"`
	Width     int           `yaml:"width"`
	Height    int           `yaml:"height"`
	UserAgent string        `yaml:"user_agent"`
	ProxyURL  string        `yaml:"proxy_url"`
	OpTimeout time.Duration `yaml:"op_timeout"`

	// AutoStart launches the browser at daemon startup instead of
	// waiting for the first /start call.
	AutoStart bool `yaml:"auto_start"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	headless := true
	return &Config{
		Server: ServerConfig{
			Bind:            "127.0.0.1:5000",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    2 * time.Minute,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			SettleDelay:     0,
			MaxWait:         30 * time.Second,
		},
		Browser: BrowserConfig{
			Headless:  &headless,
			Width:     1920,
			Height:    1080,
			OpTimeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from an optional YAML file, then applies
// environment overrides. An empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BROWSERD_BIND"); v != "" {
		cfg.Server.Bind = v
	}
	if v, ok := envBool("BROWSERD_HEADLESS"); ok {
		cfg.Browser.Headless = &v
	}
	if v := os.Getenv("BROWSERD_USER_AGENT"); v != "" {
		cfg.Browser.UserAgent = v
	}
	if v := os.Getenv("BROWSERD_PROXY_URL"); v != "" {
		cfg.Browser.ProxyURL = v
	}
	if v, ok := envDuration("BROWSERD_OP_TIMEOUT"); ok {
		cfg.Browser.OpTimeout = v
	}
	if v, ok := envBool("BROWSERD_AUTO_START"); ok {
		cfg.Browser.AutoStart = v
	}
	if v := os.Getenv("BROWSERD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks whether the config is usable.
func (c *Config) Validate() error {
	if c.Server.Bind == "" {
		return fmt.Errorf("server.bind is required")
	}
	if c.Browser.Width <= 0 || c.Browser.Height <= 0 {
		return fmt.Errorf("browser window size must be positive")
	}
	if c.Browser.OpTimeout < 0 {
		return fmt.Errorf("browser.op_timeout must be zero or positive")
	}
	if c.Server.MaxWait < 0 {
		return fmt.Errorf("server.max_wait must be zero or positive")
	}
	return nil
}

// HeadlessEnabled resolves the headless tri-state (unset means true).
func (c *Config) HeadlessEnabled() bool {
	if c.Browser.Headless == nil {
		return true
	}
	return *c.Browser.Headless
}

func envBool(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return parsed, true
}

func envDuration(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, false
	}
	return parsed, true
}
