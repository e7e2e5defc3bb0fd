package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for jsift
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Preview PreviewConfig `yaml:"preview"`
	Naming  NamingConfig  `yaml:"naming"`
	Schema  SchemaConfig  `yaml:"schema"`
	Dev     DevConfig     `yaml:"dev"`
}

// OutputConfig controls export rendering
type OutputConfig struct {
	Format    string `yaml:"format"`
	Delimiter string `yaml:"delimiter"`
	NullText  string `yaml:"null_text"`
}

// PreviewConfig controls the preview table
type PreviewConfig struct {
	Rows int `yaml:"rows"`
}

// NamingConfig controls output column naming
type NamingConfig struct {
	// SnakeCaseHeaders normalizes output names to snake_case when the user
	// did not rename a selection explicitly.
	SnakeCaseHeaders bool `yaml:"snake_case_headers"`
}

// SchemaConfig controls schema discovery
type SchemaConfig struct {
	// SampleLimit caps how many records are inspected when listing keys
	// relative to a root path.
	SampleLimit int `yaml:"sample_limit"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format:    "csv",
			Delimiter: ",",
			NullText:  "",
		},
		Preview: PreviewConfig{
			Rows: 3,
		},
		Naming: NamingConfig{
			SnakeCaseHeaders: false,
		},
		Schema: SchemaConfig{
			SampleLimit: 50,
		},
		Dev: DevConfig{
			Debug: false,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Preview.Rows < 1 {
		cfg.Preview.Rows = 1
	}
	if cfg.Schema.SampleLimit < 1 {
		cfg.Schema.SampleLimit = 1
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsift.yml", ".jsift.yaml", "jsift.yml", "jsift.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// HeaderName applies the configured naming rules to an output column name
func (c *Config) HeaderName(name string) string {
	if c.Naming.SnakeCaseHeaders {
		return strcase.ToSnake(name)
	}
	return name
}

// DelimiterRune returns the configured CSV delimiter as a rune, falling
// back to ',' for empty or multi-rune values
func (c *Config) DelimiterRune() rune {
	for _, r := range c.Output.Delimiter {
		return r
	}
	return ','
}
