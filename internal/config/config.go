// Package config provides configuration management for the archlens CLI.
package config

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/tidwall/sjson"
)

const appName = "archlens"

// Defaults applied after all sources are merged.
const (
	DefaultBackendURL = "http://localhost:8000"
	DefaultViewerAddr = "127.0.0.1:0"
)

// Environment variables that override file values.
const (
	EnvBackendURL = "ARCHLENS_BACKEND_URL"
	EnvViewerAddr = "ARCHLENS_VIEWER_ADDR"
)

// Config is the top-level configuration structure.
type Config struct {
	Backend Backend  `json:"backend"`
	Viewer  Viewer   `json:"viewer"`
	Options *Options `json:"options,omitempty"`

	sources []string
}

// Backend points at the analysis service.
type Backend struct {
	URL string `json:"url,omitempty"`
	// Timeout is a duration string such as "90s". Empty means no timeout.
	Timeout string `json:"timeout,omitempty"`
}

// Viewer configures the local browser surface.
type Viewer struct {
	Enabled     *bool  `json:"enabled,omitempty"`
	Addr        string `json:"addr,omitempty"`
	OpenCommand string `json:"open_command,omitempty"`
}

// Options holds optional configuration settings.
//
//nolint:govet // Field order is intentional for JSON readability.
type Options struct {
	DataDir string `json:"data_directory,omitempty"`
	Debug   bool   `json:"debug,omitempty"`
}

// NewConfig creates an empty Config.
func NewConfig() *Config {
	return &Config{Options: &Options{}}
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := NewConfig()
	applyDefaults(cfg)
	return cfg
}

// Sources lists the files and environment inputs the config was built from,
// in the order they were applied.
func (c *Config) Sources() []string {
	return c.sources
}

// ViewerEnabled reports whether the browser surface should run.
func (c *Config) ViewerEnabled() bool {
	return c.Viewer.Enabled == nil || *c.Viewer.Enabled
}

// RequestTimeout parses Backend.Timeout. Zero means none.
func (c *Config) RequestTimeout() (time.Duration, error) {
	if c.Backend.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Backend.Timeout)
	if err != nil {
		return 0, fmt.Errorf("parsing backend.timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("backend.timeout must not be negative: %s", c.Backend.Timeout)
	}
	return d, nil
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return c.Options != nil && c.Options.Debug
}

// DataDir returns the data directory path from configuration.
func (c *Config) DataDir() string {
	if c.Options != nil && c.Options.DataDir != "" {
		return c.Options.DataDir
	}
	return filepath.Join(xdg.DataHome, appName)
}

// DebugLogPath is where the debug log is written.
func (c *Config) DebugLogPath() string {
	return filepath.Join(c.DataDir(), "debug.log")
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.URL)
	if err != nil {
		return fmt.Errorf("parsing backend.url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend.url must be http or https: %q", c.Backend.URL)
	}
	if _, err := c.RequestTimeout(); err != nil {
		return err
	}
	return nil
}

// ErrUnknownKey is returned by ParseValue for keys that are not settable.
var ErrUnknownKey = errors.New("unknown config key")

type keyKind int

const (
	kindString keyKind = iota
	kindBool
	kindDuration
	kindURL
)

var settable = map[string]keyKind{
	"backend.url":            kindURL,
	"backend.timeout":        kindDuration,
	"viewer.enabled":         kindBool,
	"viewer.addr":            kindString,
	"viewer.open_command":    kindString,
	"options.debug":          kindBool,
	"options.data_directory": kindString,
}

// Keys returns the settable config keys in sorted order.
func Keys() []string {
	return slices.Sorted(maps.Keys(settable))
}

// ParseValue converts a command-line value for key into the JSON value
// stored in the config file.
func ParseValue(key, raw string) (any, error) {
	kind, ok := settable[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	switch kind {
	case kindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%s expects true or false: %w", key, err)
		}
		return b, nil
	case kindDuration:
		if raw == "" {
			return raw, nil
		}
		if _, err := time.ParseDuration(raw); err != nil {
			return nil, fmt.Errorf("%s expects a duration: %w", key, err)
		}
		return raw, nil
	case kindURL:
		probe := Config{Backend: Backend{URL: raw}}
		if err := probe.Validate(); err != nil {
			return nil, err
		}
		return raw, nil
	default:
		return raw, nil
	}
}

// SetConfigField updates a single field in the global config file using JSON
// path notation.
func SetConfigField(key string, value any) error {
	return SetFieldInFile(GlobalConfigPath(), key, value)
}

// SetFieldInFile updates one field of the config file at path with sjson,
// leaving every other byte of the file untouched.
func SetFieldInFile(path, key string, value any) error {
	//nolint:gosec // G304: path is a config location, not user input.
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("reading config file: %w", err)
		}
		data = []byte("{}")
	}

	newData, err := sjson.Set(string(data), key, value)
	if err != nil {
		return fmt.Errorf("setting config field %q: %w", key, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	//nolint:gosec // 0o600 is intentionally restrictive.
	if err := os.WriteFile(path, []byte(newData), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
