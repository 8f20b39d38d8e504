// Package config loads the engine's YAML configuration file. The exchange
// engine reads MaxFrameSize and WSSubprotocols and the daemon reads
// ListenAddr; the remaining fields are loaded and validated, but nothing in
// the module reads them.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration document.
type Config struct {
	MaxFrameSize       int      `yaml:"max_frame_size"`
	WSEnabled          bool     `yaml:"ws_enabled"`
	WSSubprotocols     []string `yaml:"ws_subprotocols"`
	KeepAliveTimeoutMs int      `yaml:"keep_alive_timeout_ms"`
	RequestTimeoutMs   int      `yaml:"request_timeout_ms"`
	WriteIdleTimeoutMs int      `yaml:"write_idle_timeout_ms"`
	HTTP2Enabled       bool     `yaml:"http2_enabled"`
	ListenAddr         string   `yaml:"listen_addr"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		MaxFrameSize:       1 << 20,
		WSEnabled:          true,
		KeepAliveTimeoutMs: 75_000,
		RequestTimeoutMs:   30_000,
		WriteIdleTimeoutMs: 15_000,
		ListenAddr:         ":8080",
	}
}

// Load reads and validates a YAML configuration file at path.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate enforces the invariants the engine relies on: a positive frame
// budget and non-negative timeouts.
func (c Config) Validate() error {
	if c.MaxFrameSize <= 0 {
		return fmt.Errorf("config: max_frame_size must be positive, got %d", c.MaxFrameSize)
	}
	if c.KeepAliveTimeoutMs < 0 || c.RequestTimeoutMs < 0 || c.WriteIdleTimeoutMs < 0 {
		return fmt.Errorf("config: timeouts must be non-negative")
	}
	return nil
}

// KeepAliveTimeout returns the keep-alive idle timeout as a duration.
func (c Config) KeepAliveTimeout() time.Duration {
	return time.Duration(c.KeepAliveTimeoutMs) * time.Millisecond
}

// RequestTimeout returns the per-request timeout as a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// WriteIdleTimeout returns the write-stall timeout as a duration.
func (c Config) WriteIdleTimeout() time.Duration {
	return time.Duration(c.WriteIdleTimeoutMs) * time.Millisecond
}
