package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".fomapcheck"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .fomapcheck configuration file.
type File struct {
	// ProtoPath is the prototype catalog root. Relative paths are relative
	// to the directory containing the configuration file.
	ProtoPath string `yaml:"proto_path,omitempty"`

	// MapsPath is the map directory, relative like ProtoPath.
	MapsPath string `yaml:"maps_path,omitempty"`

	// Extension overrides the map file extension.
	Extension string `yaml:"extension,omitempty"`

	// Workers overrides the number of concurrent workers.
	Workers int `yaml:"workers,omitempty"`

	// Report overrides the invalid-object report path.
	Report string `yaml:"report,omitempty"`

	// Backup enables backups before writing.
	Backup *bool `yaml:"backup,omitempty"`

	// FailFast stops the batch on the first failed map.
	FailFast *bool `yaml:"fail_fast,omitempty"`

	// History enables recording runs in the history database.
	History *bool `yaml:"history,omitempty"`
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error based on whether the path was
// explicitly specified by the user.
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

	base := filepath.Dir(path)
	cf.ProtoPath = relativeTo(base, cf.ProtoPath)
	cf.MapsPath = relativeTo(base, cf.MapsPath)

	return &cf, nil
}

// relativeTo joins a relative, non-empty p onto base.
func relativeTo(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .fomapcheck in the current directory
// 3. Look for .fomapcheck in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
