// Package config loads the gauge host configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"gaugedrive/host/serial"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid config")

// Config is the gauge host configuration
type Config struct {
	Serial     serial.Config `yaml:"serial"`
	Price      PriceConfig   `yaml:"price"`
	Schedule   string        `yaml:"schedule"`    // cron expression or duration between polls
	RetryDelay time.Duration `yaml:"retry_delay"` // wait before retrying a failed poll
	MaxRetries int           `yaml:"max_retries"` // retries within one schedule slot
	Sweep      SweepConfig   `yaml:"sweep"`
	Log        LogConfig     `yaml:"log"`
}

// PriceConfig configures the market price source and its mapping to the dial
type PriceConfig struct {
	URL            string        `yaml:"url"`
	Field          string        `yaml:"field"` // dotted path to the number, e.g. "bitcoin.usd"
	Min            float64       `yaml:"min"`   // price shown at 0 percent
	Max            float64       `yaml:"max"`   // price shown at 100 percent
	Timeout        time.Duration `yaml:"timeout"`
	DiagnosticsDir string        `yaml:"diagnostics_dir"`
	Breaker        BreakerConfig `yaml:"breaker"`
}

// BreakerConfig configures the circuit breaker around the price API
type BreakerConfig struct {
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
	Interval    time.Duration `yaml:"interval"`
}

// SweepConfig configures the host-driven calibration sweep
type SweepConfig struct {
	Rate  float64       `yaml:"rate"`  // bytes per second
	Pause time.Duration `yaml:"pause"` // dwell at dial marks
}

// LogConfig configures host logging
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Load reads and parses a YAML config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies defaults and validates
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// applyDefaults fills in missing configuration values with sensible defaults
func applyDefaults(cfg *Config) {
	def := serial.DefaultConfig("/dev/ttyACM0")
	if cfg.Serial.Device == "" {
		cfg.Serial.Device = def.Device
	}
	if cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = def.Baud
	}
	if cfg.Serial.ReadTimeout == 0 {
		cfg.Serial.ReadTimeout = def.ReadTimeout
	}

	if cfg.Price.Field == "" {
		cfg.Price.Field = "bitcoin.usd"
	}
	if cfg.Price.Timeout == 0 {
		cfg.Price.Timeout = 10 * time.Second
	}
	if cfg.Price.DiagnosticsDir == "" {
		cfg.Price.DiagnosticsDir = os.TempDir()
	}
	if cfg.Price.Breaker.MaxFailures == 0 {
		cfg.Price.Breaker.MaxFailures = 5
	}
	if cfg.Price.Breaker.Timeout == 0 {
		cfg.Price.Breaker.Timeout = 30 * time.Second
	}
	if cfg.Price.Breaker.Interval == 0 {
		cfg.Price.Breaker.Interval = 60 * time.Second
	}

	if cfg.Schedule == "" {
		cfg.Schedule = "@every 5s"
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 5 * time.Second
	}

	if cfg.Sweep.Rate == 0 {
		cfg.Sweep.Rate = 50
	}
	if cfg.Sweep.Pause == 0 {
		cfg.Sweep.Pause = time.Second
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// Validate checks values that have no usable default
func (c *Config) Validate() error {
	if c.Serial.Baud < 0 {
		return fmt.Errorf("%w: serial.baud must be positive", ErrInvalid)
	}
	if c.Price.URL != "" && !(c.Price.Max > c.Price.Min) {
		return fmt.Errorf("%w: price.max (%v) must exceed price.min (%v)", ErrInvalid, c.Price.Max, c.Price.Min)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: max_retries must not be negative", ErrInvalid)
	}
	if c.Sweep.Rate < 0 {
		return fmt.Errorf("%w: sweep.rate must be positive", ErrInvalid)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format must be text or json, got %q", ErrInvalid, c.Log.Format)
	}
	return nil
}
