package config

import (
	"os"
)

// IsFirstRun reports whether no global config file exists yet.
func IsFirstRun() bool {
	return isFirstRun(GlobalConfigPath())
}

func isFirstRun(path string) bool {
	_, err := os.Stat(path)
	return os.IsNotExist(err)
}

// EnsureGlobalConfig writes a default config file on first run so users have
// something to edit. It reports whether a file was created.
func EnsureGlobalConfig() (bool, error) {
	return ensureConfig(GlobalConfigPath())
}

func ensureConfig(path string) (bool, error) {
	if !isFirstRun(path) {
		return false, nil
	}
	cfg := NewConfig()
	cfg.Backend.URL = DefaultBackendURL
	if err := SaveToFile(cfg, path); err != nil {
		return false, err
	}
	return true, nil
}
