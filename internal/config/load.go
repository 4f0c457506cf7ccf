package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

const (
	configFileName = "archlens.json"
	dotEnvFileName = ".env"
)

// Load finds and loads configuration from standard locations.
// Global config is merged with the nearest project config (project takes
// precedence), then a .env file in the working directory and the process
// environment are applied.
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return load(GlobalConfigPath(), cwd)
}

func load(globalPath, dir string) (*Config, error) {
	cfg := NewConfig()
	if err := loadFile(globalPath, cfg); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading global config: %w", err)
		}
	} else {
		cfg.sources = append(cfg.sources, globalPath)
	}

	if projectPath := findProjectConfig(dir); projectPath != "" && projectPath != globalPath {
		projectCfg := NewConfig()
		if err := loadFile(projectPath, projectCfg); err != nil {
			return nil, fmt.Errorf("loading project config: %w", err)
		}
		mergeConfig(cfg, projectCfg)
		cfg.sources = append(cfg.sources, projectPath)
	}

	envPath := filepath.Join(dir, dotEnvFileName)
	loaded, err := loadDotEnv(envPath)
	if err != nil {
		return nil, err
	}
	if loaded {
		cfg.sources = append(cfg.sources, envPath)
	}
	applyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific file path. The
// environment still overrides file values.
func LoadFromFile(path string) (*Config, error) {
	cfg := NewConfig()
	if err := loadFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.sources = append(cfg.sources, path)
	applyEnv(cfg)
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	//nolint:gosec // G304: Path is from trusted config locations, not user input.
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// loadDotEnv sets variables from path that are not already in the
// environment. A missing file is not an error.
func loadDotEnv(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		return false, nil //nolint:nilerr // A missing .env is normal.
	}
	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("loading %s: %w", path, err)
	}
	return true, nil
}

func findProjectConfig(start string) string {
	dir := start
	for {
		path := filepath.Join(dir, configFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}

		hiddenPath := filepath.Join(dir, "."+configFileName)
		if _, err := os.Stat(hiddenPath); err == nil {
			return hiddenPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func mergeConfig(dst, src *Config) {
	if src.Backend.URL != "" {
		dst.Backend.URL = src.Backend.URL
	}
	if src.Backend.Timeout != "" {
		dst.Backend.Timeout = src.Backend.Timeout
	}
	if src.Viewer.Enabled != nil {
		dst.Viewer.Enabled = src.Viewer.Enabled
	}
	if src.Viewer.Addr != "" {
		dst.Viewer.Addr = src.Viewer.Addr
	}
	if src.Viewer.OpenCommand != "" {
		dst.Viewer.OpenCommand = src.Viewer.OpenCommand
	}

	if src.Options != nil {
		if dst.Options == nil {
			dst.Options = &Options{}
		}
		if src.Options.DataDir != "" {
			dst.Options.DataDir = src.Options.DataDir
		}
		if src.Options.Debug {
			dst.Options.Debug = true
		}
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvBackendURL); v != "" {
		cfg.Backend.URL = v
	}
	if v := os.Getenv(EnvViewerAddr); v != "" {
		cfg.Viewer.Addr = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Backend.URL == "" {
		cfg.Backend.URL = DefaultBackendURL
	}
	if cfg.Viewer.Addr == "" {
		cfg.Viewer.Addr = DefaultViewerAddr
	}
	if cfg.Viewer.Enabled == nil {
		enabled := true
		cfg.Viewer.Enabled = &enabled
	}
	if cfg.Options == nil {
		cfg.Options = &Options{}
	}
	if cfg.Options.DataDir == "" {
		cfg.Options.DataDir = filepath.Join(xdg.DataHome, appName)
	}
}

// GlobalConfigPath returns the path to the global configuration file.
func GlobalConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, configFileName)
}
