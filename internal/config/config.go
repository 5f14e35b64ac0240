// Package config loads and hot-reloads the configuration of a bridge
// host process: which address it listens on, where logs go, which
// preload features are on by default, and which extensions are
// enabled.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the root document a bridge host reads from its YAML
// config file. Environment variables do not override its fields.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`

	LogLevel      string `yaml:"log_level"`
	LogToFile     bool   `yaml:"log_to_file"`
	LogFile       string `yaml:"log_file"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"`

	Preload   PreloadConfig   `yaml:"preload"`
	Queued    QueuedConfig    `yaml:"queued"`
	Auth      AuthConfig      `yaml:"auth"`
	Extensions ExtensionsConfig `yaml:"extensions"`
}

// PreloadConfig mirrors preload.Features, controlling which shims the
// compiled preload script includes by default.
type PreloadConfig struct {
	UseGlobalCommonJS bool `yaml:"use_global_commonjs"`
	UseGlobalNodeJS   bool `yaml:"use_global_nodejs"`
	UseGlobalArgs     bool `yaml:"use_global_args"`
	UseHTMLMarkup     bool `yaml:"use_html_markup"`
	UseESM            bool `yaml:"use_esm"`
}

// QueuedConfig controls the default TTL and sweep interval for the
// QueuedResponse store.
type QueuedConfig struct {
	DefaultTTL     time.Duration `yaml:"default_ttl"`
	SweepInterval  time.Duration `yaml:"sweep_interval"`
}

// AuthConfig configures the pre-dispatch IPC token gate.
type AuthConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Secret   string `yaml:"secret"`
}

// ExtensionsConfig toggles optional Router/SchemeHandlers add-ons.
type ExtensionsConfig struct {
	AuditEnabled       bool `yaml:"audit_enabled"`
	ArchiveEnabled     bool `yaml:"archive_enabled"`
	DevRelayEnabled    bool `yaml:"dev_relay_enabled"`
	PassthroughEnabled bool `yaml:"passthrough_enabled"`
}

// Default returns the configuration a bridge host starts with absent
// any config file.
func Default() *Config {
	return &Config{
		ListenAddr:   ":7777",
		LogLevel:     "info",
		LogMaxSizeMB: 10,
		Preload: PreloadConfig{
			UseGlobalCommonJS: true,
			UseGlobalArgs:     true,
		},
		Queued: QueuedConfig{
			DefaultTTL:    5 * time.Minute,
			SweepInterval: 30 * time.Second,
		},
	}
}

// Load reads cfg from path, first calling LoadEnv on path's directory
// so a .env file there populates the process environment. A missing
// file is not an error when optional is true; it falls back to
// Default().
func Load(path string, optional bool) (*Config, error) {
	LoadEnv(filepath.Dir(path))

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadEnv loads a .env file from dir if present. A missing .env is
// silently ignored; any other read error is logged, not fatal.
func LoadEnv(dir string) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).Warn("config: failed to load .env file")
		}
	}
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: failed to marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: failed to create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
