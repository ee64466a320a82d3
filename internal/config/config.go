package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/shahar-caura/diagroute/internal/primary"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration with YAML unmarshaling from strings like "8s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// Config is the top-level diagroute configuration.
type Config struct {
	// Catalog is an optional path to a catalog file replacing the embedded one.
	Catalog string        `yaml:"catalog"`
	Primary PrimaryConfig `yaml:"primary"`
	Batch   BatchConfig   `yaml:"batch"`
	Log     LogConfig     `yaml:"log"`
}

// PrimaryConfig selects the model-backed classifier tried before the fallback.
type PrimaryConfig struct {
	Provider      string   `yaml:"provider"`
	Model         string   `yaml:"model"`
	APIKey        string   `yaml:"api_key"`
	BaseURL       string   `yaml:"base_url"`
	Timeout       Duration `yaml:"timeout"`
	MinConfidence *float64 `yaml:"min_confidence"`
	RatePerSecond float64  `yaml:"rate_per_second"`
	Burst         int      `yaml:"burst"`
}

type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

const (
	defaultTimeout       = 10 * time.Second
	defaultMinConfidence = 0.5
	defaultConcurrency   = 8
	defaultLogLevel      = "info"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "diagroute.yaml"

var logLevels = []string{"debug", "info", "warn", "error"}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads, expands env vars, parses, and validates a diagroute config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault loads path when it exists. A missing file is only an error
// when the caller asked for it explicitly.
func LoadOrDefault(path string, explicit bool) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !explicit {
		return Default(), nil
	}
	return Load(path)
}

// MinConfidenceValue returns the confidence threshold.
func (p PrimaryConfig) MinConfidenceValue() float64 {
	if p.MinConfidence == nil {
		return defaultMinConfidence
	}
	return *p.MinConfidence
}

func applyDefaults(cfg *Config) {
	if cfg.Primary.Provider == "" {
		cfg.Primary.Provider = primary.ProviderNone
	}
	if cfg.Primary.Timeout.Duration == 0 {
		cfg.Primary.Timeout.Duration = defaultTimeout
	}
	if cfg.Primary.MinConfidence == nil {
		v := defaultMinConfidence
		cfg.Primary.MinConfidence = &v
	}
	if cfg.Batch.Concurrency == 0 {
		cfg.Batch.Concurrency = defaultConcurrency
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
}

func validate(cfg *Config) error {
	var errs []error

	if !slices.Contains(primary.Providers, cfg.Primary.Provider) {
		errs = append(errs, fmt.Errorf("primary.provider must be one of %v, got %q", primary.Providers, cfg.Primary.Provider))
	}
	if cfg.Primary.Timeout.Duration <= 0 {
		errs = append(errs, errors.New("primary.timeout must be positive"))
	}
	if mc := cfg.Primary.MinConfidenceValue(); mc < 0 || mc > 1 {
		errs = append(errs, fmt.Errorf("primary.min_confidence must be within [0, 1], got %g", mc))
	}
	if cfg.Primary.RatePerSecond < 0 {
		errs = append(errs, errors.New("primary.rate_per_second must not be negative"))
	}
	if cfg.Primary.Burst < 0 {
		errs = append(errs, errors.New("primary.burst must not be negative"))
	}

	// Only validate model settings when a model-backed provider is selected.
	if cfg.Primary.Provider == primary.ProviderNone {
		if cfg.Primary.Model != "" || cfg.Primary.BaseURL != "" {
			errs = append(errs, errors.New("primary.model and primary.base_url require a primary.provider"))
		}
	}
	if cfg.Primary.Provider == primary.ProviderClaudeCLI && cfg.Primary.BaseURL != "" {
		errs = append(errs, errors.New("primary.base_url is not supported by the claude-cli provider"))
	}

	if cfg.Batch.Concurrency < 0 {
		errs = append(errs, errors.New("batch.concurrency must not be negative"))
	}
	if !slices.Contains(logLevels, cfg.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of %v, got %q", logLevels, cfg.Log.Level))
	}

	return errors.Join(errs...)
}
