// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the variable [Load] reads the config path
// from.
const EnvironmentVariable = "HWCOUNT_CONFIG"

// Format is the encoding of a configuration document.
type Format string

const (
	// FormatYAML is the native format.
	FormatYAML Format = "yaml"
	// FormatJSON is plain JSON.
	FormatJSON Format = "json"
	// FormatJSONC is JSON with comments and trailing commas.
	FormatJSONC Format = "jsonc"
)

// FormatForPath picks the format from a file extension. Anything that
// is not .json or .jsonc is treated as YAML.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".jsonc":
		return FormatJSONC
	default:
		return FormatYAML
	}
}

// Config is the master configuration for hwcount.
type Config struct {
	// Presets maps a preset name to the ordered event names it
	// expands to. Nil when the file has no presets section.
	Presets map[string][]string `yaml:"presets" json:"presets"`

	// Perf configures the perf_event_open backend.
	Perf PerfConfig `yaml:"perf" json:"perf"`

	// Log configures the CLI logger.
	Log LogConfig `yaml:"log" json:"log"`
}

// PerfConfig configures the Linux perf_event_open backend.
type PerfConfig struct {
	// Registers overrides the number of general-purpose counter
	// registers the backend admits per counter set. Zero means use
	// the backend's default for the detected PMU.
	Registers int `yaml:"registers" json:"registers"`

	// ExcludeKernel stops counting while the thread is in kernel mode.
	// Required when kernel.perf_event_paranoid is 2 or higher.
	// Default: true
	ExcludeKernel bool `yaml:"exclude_kernel" json:"exclude_kernel"`

	// ExcludeHypervisor stops counting while in hypervisor mode.
	// Default: true
	ExcludeHypervisor bool `yaml:"exclude_hypervisor" json:"exclude_hypervisor"`
}

// LogConfig configures the logger built by the CLI.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level" json:"level"`

	// Format is text or json.
	// Default: text
	Format string `yaml:"format" json:"format"`
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Default returns the default configuration. It has no presets.
func Default() *Config {
	return &Config{
		Perf: PerfConfig{
			ExcludeKernel:     true,
			ExcludeHypervisor: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from the HWCOUNT_CONFIG environment
// variable. There are no fallbacks: if the variable is not set, this
// fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your hwcount.yaml config file, or use --config flag", EnvironmentVariable)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. The format
// follows the file extension (see [FormatForPath]).
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a configuration document over [Default] and validates
// the result.
func Parse(data []byte, format Format) (*Config, error) {
	cfg := Default()
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, cfg)
	case FormatJSON, FormatJSONC:
		err = json.Unmarshal(jsonc.ToJSON(data), cfg)
	default:
		return nil, fmt.Errorf("unknown config format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s config: %w", format, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	for name, events := range c.Presets {
		if name == "" {
			errs = append(errs, fmt.Errorf("presets: empty preset name"))
			continue
		}
		if len(events) == 0 {
			errs = append(errs, fmt.Errorf("presets.%s: no events", name))
		}
		for index, event := range events {
			if event == "" {
				errs = append(errs, fmt.Errorf("presets.%s[%d]: empty event name", name, index))
			}
		}
	}

	if c.Perf.Registers < 0 {
		errs = append(errs, fmt.Errorf("perf.registers must not be negative, got %d", c.Perf.Registers))
	}

	if !slices.Contains(logLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", logLevels))
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of: %v", logFormats))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// PresetNames returns the configured preset names, sorted.
func (c *Config) PresetNames() []string {
	names := make([]string, 0, len(c.Presets))
	for name := range c.Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
