package config

import (
	"errors"
	"os"
	"path/filepath"
)

// EnsureUserConfig makes sure a user-editable config exists in the data dir,
// seeding it from the shipped default on first run. Returns the path to use.
func EnsureUserConfig(dataDir, defaultPath string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	if _, err := os.Stat(userPath); err == nil {
		return userPath, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	seed, err := os.ReadFile(defaultPath)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(userPath, seed, 0o644); err != nil {
		return "", err
	}
	return userPath, nil
}
