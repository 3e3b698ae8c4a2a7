package paths

import (
	"os"
	"path/filepath"
)

func DefaultConfigDir() string {
	if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
		return filepath.Join(x, "resolveup")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "resolveup")
}

func DefaultCacheDir() string {
	if x := os.Getenv("XDG_CACHE_HOME"); x != "" {
		return filepath.Join(x, "resolveup")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "resolveup")
}

func DefaultProfilePath() string  { return filepath.Join(DefaultConfigDir(), "registration.conf") }
func DefaultSettingsPath() string { return filepath.Join(DefaultConfigDir(), "settings.yaml") }
func DefaultBuildDir() string     { return filepath.Join(DefaultCacheDir(), "build") }
