package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// AppName is the directory in the user's config and data directories used by the exporter
	AppName string = "zenhub-export"

	exportsDirName = "exports"
)

// MustConfigDir returns the exporter's directory under the user config dir
func MustConfigDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		panic(fmt.Errorf("cannot obtain user config dir: %w", err))
	}

	return filepath.Join(configDir, AppName)
}

// userDataDir follows the XDG base directory layout: $XDG_DATA_HOME, else ~/.local/share
func userDataDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot obtain user home dir: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share"), nil
}

// ExportsDir returns the default output directory for exported files
func ExportsDir() (string, error) {
	dataDir, err := userDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, AppName, exportsDirName), nil
}
