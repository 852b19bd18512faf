package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chaz8081/meshblocks/internal/block"
)

// Config holds all application configuration.
type Config struct {
	LogLevel string        `yaml:"log_level"`
	Scan     ScanConfig    `yaml:"scan"`
	Blocks   []BlockConfig `yaml:"blocks"`
	BLE      BLEConfig     `yaml:"ble"`
}

// ScanConfig holds discovery settings.
type ScanConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// BlockConfig selects one block to connect to.
type BlockConfig struct {
	Kind    string `yaml:"kind"`    // "button", "move" or "led"
	Serial  string `yaml:"serial"`  // optional serial-number substring of the advertised name
	Address string `yaml:"address"` // optional; skips scanning when set
}

// BLEConfig holds transport settings.
type BLEConfig struct {
	QueueSize    int     `yaml:"queue_size"`
	ReconnectMax int     `yaml:"reconnect_max"` // seconds
	WriteRate    float64 `yaml:"write_rate"`    // writes per second, 0 = unlimited
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "meshblocks")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Scan: ScanConfig{
			Timeout: 10 * time.Second,
		},
		BLE: BLEConfig{
			QueueSize:    16,
			ReconnectMax: 30,
			WriteRate:    10,
		},
	}
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.Scan.Timeout <= 0 {
		return fmt.Errorf("scan.timeout must be > 0")
	}

	for i, b := range c.Blocks {
		if _, err := block.ParseKind(b.Kind); err != nil {
			return fmt.Errorf("blocks[%d].kind must be button, move, or led, got %q", i, b.Kind)
		}
	}

	if c.BLE.QueueSize < 0 {
		return fmt.Errorf("ble.queue_size must be >= 0")
	}
	if c.BLE.ReconnectMax < 0 {
		return fmt.Errorf("ble.reconnect_max must be >= 0")
	}
	if c.BLE.WriteRate < 0 {
		return fmt.Errorf("ble.write_rate must be >= 0")
	}

	return nil
}

// SlogLevel returns the slog level for LogLevel. Invalid levels map to info;
// call Validate first to reject them.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log_level must be debug, info, warn, or error, got %q", s)
	}
}
