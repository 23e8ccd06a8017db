// Package config provides XDG paths and the TOML settings file.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	appName       = "tuirace"
	datasetSuffix = ".toml"
)

func xdgDir(env string, fallback ...string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}

// XDGConfigHome returns $XDG_CONFIG_HOME or ~/.config.
func XDGConfigHome() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// XDGDataHome returns $XDG_DATA_HOME or ~/.local/share.
func XDGDataHome() string {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}

// DefaultDBPath returns the dataset database path.
func DefaultDBPath() string {
	return filepath.Join(XDGDataHome(), appName, appName+".db")
}

// DefaultConfigPath returns the settings file path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}

// DefaultDatasetDir returns the directory searched for dataset files by name.
func DefaultDatasetDir() string {
	return filepath.Join(XDGDataHome(), appName, "datasets")
}

// DatasetPath maps a dataset name onto a file in the dataset directory.
// Directory components in name are dropped.
func DatasetPath(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if !strings.HasSuffix(base, datasetSuffix) {
		base += datasetSuffix
	}
	return filepath.Join(DefaultDatasetDir(), base)
}
