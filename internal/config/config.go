// Package config manages the nudge configuration directory: the TOML
// config file, the tutorial progress file, and the registry of running
// nudge processes.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// Config holds the nudge configuration.
type Config struct {
	// Language is the UI language tag ("en", "de"). Empty means detect
	// from the environment.
	Language string `toml:"language" validate:"omitempty,bcp47_language_tag"`

	Provider  ProviderConfig  `toml:"provider"`
	Collector CollectorConfig `toml:"collector"`
	Tutorial  TutorialConfig  `toml:"tutorial"`
	Engine    EngineConfig    `toml:"engine"`
}

// ProviderConfig selects and configures the suggestion provider.
type ProviderConfig struct {
	// Kind is "http" or "words" (the offline demo provider).
	Kind string `toml:"kind" validate:"oneof=http words"`

	// URL is the HTTP provider base URL.
	URL string `toml:"url" validate:"omitempty,url"`

	// Model is passed through to the HTTP provider.
	Model string `toml:"model"`

	// Timeout bounds one completion request, e.g. "5s".
	Timeout string `toml:"timeout"`

	// MaxResults caps recommendations per request.
	MaxResults int `toml:"max_results" validate:"gte=0,lte=10"`
}

// CollectorConfig configures telemetry shipping and the collector server.
type CollectorConfig struct {
	// Enabled turns on shipping from the editor host.
	Enabled bool `toml:"enabled"`

	// URL is the collector base URL the host ships to.
	URL string `toml:"url" validate:"omitempty,url"`

	// Token guards the collector API when non-empty.
	Token string `toml:"token"`

	// Host and Port are the collector server bind address.
	Host string `toml:"host" validate:"omitempty,hostname|ip"`
	Port int    `toml:"port" validate:"gte=0,lte=65535"`

	// DBPath is the DuckDB file; empty means <dir>/events.duckdb.
	DBPath string `toml:"db_path"`
}

// TutorialConfig configures the onboarding hints.
type TutorialConfig struct {
	// Enabled turns the hint engine on. The gutter indicator is
	// independent of this.
	Enabled bool `toml:"enabled"`

	// Persist keeps tutorial progress across sessions.
	Persist bool `toml:"persist"`
}

// EngineConfig holds engine tuning knobs.
type EngineConfig struct {
	// RefreshDebounce coalesces tracker-driven refreshes, e.g. "250ms".
	RefreshDebounce string `toml:"refresh_debounce"`
}

// RefreshDebounceDuration returns the parsed debounce (default: 250ms).
func (c EngineConfig) RefreshDebounceDuration() time.Duration {
	if c.RefreshDebounce != "" {
		if d, err := time.ParseDuration(c.RefreshDebounce); err == nil {
			return d
		}
	}
	return 250 * time.Millisecond
}

// TimeoutDuration returns the parsed provider timeout (default: 5s).
func (c ProviderConfig) TimeoutDuration() time.Duration {
	if c.Timeout != "" {
		if d, err := time.ParseDuration(c.Timeout); err == nil {
			return d
		}
	}
	return 5 * time.Second
}

// Addr returns the collector bind address.
func (c CollectorConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Dir returns the path to the .nudge directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".nudge"), nil
}

// Path returns the path to the main config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Default returns a configuration with all defaults set.
func Default() Config {
	return Config{
		Provider: ProviderConfig{
			Kind:       "words",
			Timeout:    "5s",
			MaxResults: 3,
		},
		Collector: CollectorConfig{
			Host: "localhost",
			Port: 8790,
			URL:  "http://localhost:8790",
		},
		Tutorial: TutorialConfig{
			Enabled: true,
			Persist: true,
		},
		Engine: EngineConfig{
			RefreshDebounce: "250ms",
		},
	}
}

var validate = validator.New()

// Validate checks the configuration against its struct tags.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Load reads ~/.nudge/config.toml. A missing file yields defaults, which
// are persisted so the user has a file to edit.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}, err
	}
	return LoadFrom(path)
}

// LoadFrom reads a config file from an explicit path.
func LoadFrom(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := Default()
		if saveErr := SaveTo(path, cfg); saveErr != nil {
			return cfg, nil // defaults still usable when save fails
		}
		return cfg, nil
	} else if err != nil {
		return Config{}, err
	}

	// Start from defaults so missing keys keep their correct values
	// instead of zeroing features off.
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes the configuration to ~/.nudge/config.toml.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes the configuration to an explicit path.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// TipViewsPath returns the tips-page view counter file.
func TipViewsPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tip_views"), nil
}

// TutorialStatePath returns the persisted tutorial progress file.
func TutorialStatePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tutorial_state"), nil
}
