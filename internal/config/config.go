package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/nu_plugin_beancount/internal/logger"
)

// Config represents the nu_plugin_beancount.yaml configuration.
type Config struct {
	Plugin PluginConfig `yaml:"plugin"`
	Log    LogConfig    `yaml:"log"`
	Output OutputConfig `yaml:"output"`
}

// PluginConfig controls the command advertised to the host.
type PluginConfig struct {
	Command string `yaml:"command"`
	Usage   string `yaml:"usage"`
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level string `yaml:"level"` // zerolog level name
}

// OutputConfig controls how `convert` prints records.
type OutputConfig struct {
	Format string `yaml:"format"` // "json" or "yaml"
	Indent int    `yaml:"indent"`
}

// Load reads a config file from disk. Keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that an empty path or a missing file yields
// the defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Plugin: PluginConfig{
			Command: "from beancount",
			Usage:   "Convert from beancount to structured data",
		},
		Log: LogConfig{
			Level: "warn",
		},
		Output: OutputConfig{
			Format: "json",
			Indent: 2,
		},
	}
}

// Validate checks values that would otherwise fail later at use.
func (c *Config) Validate() error {
	if c.Plugin.Command == "" {
		return errors.New("plugin.command must not be empty")
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Output.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("output.format must be json or yaml, got %q", c.Output.Format)
	}
	if c.Output.Indent < 0 {
		return fmt.Errorf("output.indent must not be negative, got %d", c.Output.Indent)
	}
	return nil
}
