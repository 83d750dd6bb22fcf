package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config is the top-level scopeflow configuration
type Config struct {
	Structure StructureConfig `mapstructure:"structure" toml:"structure" yaml:"structure"`
	Output    OutputConfig    `mapstructure:"output" toml:"output" yaml:"output"`
	Input     InputConfig     `mapstructure:"input" toml:"input" yaml:"input"`
}

// StructureConfig configures block-structure reconstruction
type StructureConfig struct {
	// SortBy orders results: "file", "name", or "nodes"
	SortBy string `mapstructure:"sort_by" toml:"sort_by" yaml:"sort_by"`

	// ShowUnreachable lists nodes omitted from the reconstructed tree
	ShowUnreachable *bool `mapstructure:"show_unreachable" toml:"show_unreachable" yaml:"show_unreachable"` // pointer to detect unset

	// UseCache enables the parsed-document cache
	UseCache *bool `mapstructure:"use_cache" toml:"use_cache" yaml:"use_cache"` // pointer to detect unset
}

// OutputConfig configures report output
type OutputConfig struct {
	// Format is one of "text", "json", "yaml", "csv", "dot"
	Format string `mapstructure:"format" toml:"format" yaml:"format"`

	// Path writes the report to a file instead of stdout
	Path string `mapstructure:"path" toml:"path" yaml:"path"`
}

// InputConfig configures document collection
type InputConfig struct {
	Recursive       *bool    `mapstructure:"recursive" toml:"recursive" yaml:"recursive"` // pointer to detect unset
	IncludePatterns []string `mapstructure:"include_patterns" toml:"include_patterns" yaml:"include_patterns"`
	ExcludePatterns []string `mapstructure:"exclude_patterns" toml:"exclude_patterns" yaml:"exclude_patterns"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Structure: StructureConfig{
			SortBy: "file",
		},
		Output: OutputConfig{
			Format: "text",
		},
		Input: InputConfig{
			IncludePatterns: []string{"**/*.cfg.yaml", "**/*.cfg.yml"},
			ExcludePatterns: []string{},
		},
	}
}

// LoadConfig loads configuration from the given file. TOML files go
// through the dedicated loader; everything else is handled by viper.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	if isTomlFile(configPath) {
		return LoadTomlConfig(configPath)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config := DefaultConfig()
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}
	return config, nil
}

// SaveConfig writes the configuration to the given path as YAML
func SaveConfig(config *Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("structure", config.Structure)
	v.Set("output", config.Output)
	v.Set("input", config.Input)

	return v.WriteConfig()
}
