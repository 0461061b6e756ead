// Package config reads typed settings for the collaborators and the review
// policy out of viper.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands a leading ~ and $VAR references in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}

	return os.ExpandEnv(path)
}

// Dir returns the configuration directory, $HOME/.config/facet.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "facet")
	}
	return filepath.Join(home, ".config", "facet")
}

// DefaultDatabasePath is where records are stored when database.path is unset.
func DefaultDatabasePath() string {
	return filepath.Join(Dir(), "records.db")
}

// DefaultTokenPath is where the Google Sheets OAuth token is cached.
func DefaultTokenPath() string {
	return filepath.Join(Dir(), "sheets-token.json")
}
