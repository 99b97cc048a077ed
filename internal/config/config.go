// Package config loads the optional bazaarlens YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath is the environment variable naming the config file.
const EnvConfigPath = "BAZAARLENS_CONFIG"

// MaxConfigFileSize is the maximum allowed size for a config file (64KB).
const MaxConfigFileSize = 64 * 1024

// Config is the on-disk configuration. Zero-valued fields keep their defaults.
type Config struct {
	// LogPath is the Player.log location. Empty means auto-detect.
	LogPath string `yaml:"log_path"`

	// ItemsPath and MonstersPath point at the static catalogs
	// (JSON, optionally zstd-compressed with a .zst suffix).
	ItemsPath    string `yaml:"items"`
	MonstersPath string `yaml:"monsters"`

	// Listen is the HTTP/websocket address, e.g. "127.0.0.1:8787".
	// Empty disables the server.
	Listen string `yaml:"listen"`

	// Format is the stdout snapshot format ("jsonl" or "pretty").
	Format string `yaml:"format"`

	PollInterval time.Duration `yaml:"poll_interval"`
	Heartbeat    time.Duration `yaml:"heartbeat"`
	SettleDelay  time.Duration `yaml:"settle_delay"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`

	// Polling makes the tailer poll instead of using filesystem notifications.
	Polling bool `yaml:"polling"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Format:       "jsonl",
		PollInterval: 2 * time.Second,
		Heartbeat:    10 * time.Second,
		SettleDelay:  2 * time.Second,
		IdleTimeout:  250 * time.Millisecond,
	}
}

// ValidationError reports an invalid configuration value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// sanitizePathError strips the path from an *os.PathError.
func sanitizePathError(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return fmt.Errorf("%s: %w", pathErr.Op, pathErr.Err)
	}
	return err
}

// Load reads the config file at path on top of Default.
// Non-regular files and files over MaxConfigFileSize are rejected.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", sanitizePathError(err))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", sanitizePathError(err))
	}
	if !info.Mode().IsRegular() {
		return nil, errors.New("config file must be a regular file")
	}
	if info.Size() > MaxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), MaxConfigFileSize)
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxConfigFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", sanitizePathError(err))
	}
	if len(data) > MaxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", len(data), MaxConfigFileSize)
	}

	return LoadBytes(data)
}

// LoadBytes parses YAML config data on top of Default.
// Empty data yields the defaults.
func LoadBytes(data []byte) (*Config, error) {
	cfg := Default()
	if len(data) > MaxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", len(data), MaxConfigFileSize)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv loads the file named by BAZAARLENS_CONFIG, or returns Default
// when the variable is unset.
func FromEnv() (*Config, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	durations := []struct {
		field string
		value time.Duration
		zero  bool // zero allowed
	}{
		{"poll_interval", c.PollInterval, false},
		{"heartbeat", c.Heartbeat, false},
		{"settle_delay", c.SettleDelay, true},
		{"idle_timeout", c.IdleTimeout, false},
	}
	for _, d := range durations {
		if d.value < 0 || (d.value == 0 && !d.zero) {
			return &ValidationError{
				Field:   d.field,
				Message: fmt.Sprintf("must be positive, got %v", d.value),
			}
		}
	}

	if c.Listen != "" {
		if _, _, err := net.SplitHostPort(c.Listen); err != nil {
			return &ValidationError{Field: "listen", Message: err.Error()}
		}
	}
	return nil
}
