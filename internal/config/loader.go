package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".toolaudit"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .toolaudit configuration file.
// Every field is optional; unset fields keep their defaults.
type File struct {
	// Dataset is the primary dataset path.
	Dataset string `yaml:"dataset,omitempty"`

	// SplitDir is the per-category split file directory.
	// An explicit empty string disables split validation, which is why
	// the field is a pointer: absent and empty mean different things.
	SplitDir *string `yaml:"splitDir,omitempty"`

	// RefMarker overrides the required attribution marker.
	RefMarker string `yaml:"refMarker,omitempty"`

	// Schemes overrides the accepted URL scheme prefixes.
	Schemes []string `yaml:"schemes,omitempty"`
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Callers should
// handle this based on whether the path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// Apply copies the file's set values onto the config, leaving everything
// else untouched. Flag values applied after this call win over the file.
func (cf *File) Apply(c *Config) {
	if cf.Dataset != "" {
		c.Datasets = []string{cf.Dataset}
	}
	if cf.SplitDir != nil {
		c.SplitDir = *cf.SplitDir
	}
	if cf.RefMarker != "" {
		c.RefMarker = cf.RefMarker
	}
	if len(cf.Schemes) > 0 {
		c.Schemes = cf.Schemes
	}
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .toolaudit in the current directory
// 3. Look for .toolaudit in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if
// not found.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
