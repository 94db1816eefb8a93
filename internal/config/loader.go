package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"mmdevice/internal/common/fsutil"
)

// Config describes a hardware probe: where to look for adapter libraries,
// how to log, and which devices to create.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	SearchPaths []string       `json:"search_paths" yaml:"search_paths" toml:"search_paths"`
	LogLevel    string         `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat   string         `json:"log_format" yaml:"log_format" toml:"log_format"`
	Devices     []DeviceConfig `json:"devices" yaml:"devices" toml:"devices"`
}

// DeviceConfig names one device instance to create.
type DeviceConfig struct {
	Label   string `json:"label" yaml:"label" toml:"label"`
	Adapter string `json:"adapter" yaml:"adapter" toml:"adapter"`
	Device  string `json:"device" yaml:"device" toml:"device"`
	// Initialize defaults to true when omitted.
	Initialize *bool `json:"initialize,omitempty" yaml:"initialize,omitempty" toml:"initialize,omitempty"`
}

// ShouldInitialize reports whether the device is to be initialized after creation.
func (d DeviceConfig) ShouldInitialize() bool { return d.Initialize == nil || *d.Initialize }

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "text"}
)

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
// Search paths have a leading ~ expanded; defaults are applied.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if cfg.SearchPaths, err = fsutil.ExpandHomeAll(cfg.SearchPaths); err != nil {
		return cfg, fmt.Errorf("search_paths: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills unset logging fields.
func (c *Config) ApplyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "json"
	}
}

// Validate checks that every device is fully specified and that labels are
// unique. All problems are reported together.
func (c Config) Validate() error {
	var errs []error
	if c.LogLevel != "" && !slices.Contains(logLevels, strings.ToLower(c.LogLevel)) {
		errs = append(errs, fmt.Errorf("log_level %q: want one of %s", c.LogLevel, strings.Join(logLevels, ", ")))
	}
	if c.LogFormat != "" && !slices.Contains(logFormats, strings.ToLower(c.LogFormat)) {
		errs = append(errs, fmt.Errorf("log_format %q: want one of %s", c.LogFormat, strings.Join(logFormats, ", ")))
	}
	seen := make(map[string]int, len(c.Devices))
	for i, d := range c.Devices {
		switch {
		case strings.TrimSpace(d.Label) == "":
			errs = append(errs, fmt.Errorf("devices[%d]: label is required", i))
		case seen[d.Label] > 0:
			errs = append(errs, fmt.Errorf("devices[%d]: label %q already used by devices[%d]", i, d.Label, seen[d.Label]-1))
		default:
			seen[d.Label] = i + 1
		}
		if d.Adapter == "" {
			errs = append(errs, fmt.Errorf("devices[%d]: adapter is required", i))
		}
		if d.Device == "" {
			errs = append(errs, fmt.Errorf("devices[%d]: device is required", i))
		}
	}
	return errors.Join(errs...)
}
