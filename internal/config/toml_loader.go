package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ConfigFileName is the project configuration file scopeflow looks for
const ConfigFileName = ".scopeflow.toml"

// isTomlFile reports whether the path looks like a TOML file
func isTomlFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// LoadTomlConfig loads configuration from a TOML file
func LoadTomlConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return config, nil
}

// FindConfigFile searches for a project config file starting at startDir
// and walking up to the filesystem root. Returns an empty string when no
// config file exists.
func FindConfigFile(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}

	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// DefaultTomlConfig renders the default configuration as TOML, used by
// the init command to seed a project config file
func DefaultTomlConfig() ([]byte, error) {
	return toml.Marshal(DefaultConfig())
}
