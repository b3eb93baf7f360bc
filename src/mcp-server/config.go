// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigEnv names the environment variable holding the config file path.
const ConfigEnv = "MCP_TRUST_GUARD_CONFIG_FILE"

const (
	defaultFormat         = "tree"
	defaultTimeoutSeconds = 10
)

// configFormat represents supported configuration file formats.
type configFormat int

const (
	// configFormatJSON represents JSON configuration format (.json)
	configFormatJSON configFormat = iota
	// configFormatYAML represents YAML configuration format (.yaml, .yml)
	configFormatYAML
)

// Config represents the MCP server configuration structure.
//
// The configuration can be loaded from a JSON or YAML file specified by the
// MCP_TRUST_GUARD_CONFIG_FILE environment variable, with defaults applied
// for any missing values. Supported file extensions: .json, .yaml, .yml
type Config struct {
	Defaults struct {
		// PolicyFile is used by resolve_policy when the call names no config.
		PolicyFile string `json:"policyFile" yaml:"policyFile"`
		// Format is the validate_trust output format: tree, table or json.
		Format string `json:"format" yaml:"format"`
		// Timeout bounds trust store loading, in seconds.
		Timeout int `json:"timeoutSeconds" yaml:"timeoutSeconds"`
	} `json:"defaults" yaml:"defaults"`
}

// LoadTimeout returns Defaults.Timeout as a duration.
func (c *Config) LoadTimeout() time.Duration {
	return time.Duration(c.Defaults.Timeout) * time.Second
}

// detectConfigFormat determines the configuration file format based on file extension.
// Matching is case-insensitive; anything but .yaml and .yml is read as JSON.
func detectConfigFormat(configPath string) configFormat {
	ext := strings.ToLower(filepath.Ext(configPath))
	switch ext {
	case ".yaml", ".yml":
		return configFormatYAML
	default:
		return configFormatJSON
	}
}

// unmarshalConfig unmarshals configuration data based on the specified format.
func unmarshalConfig(data []byte, config *Config, format configFormat) error {
	switch format {
	case configFormatYAML:
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	}
	return nil
}

// loadConfig loads MCP server configuration from a JSON or YAML file or applies defaults.
//
// Parameters:
//   - configPath: Path to the configuration file (optional, can be empty)
//
// Returns:
//   - A pointer to the loaded Config struct with defaults applied
//   - An error if the configuration file cannot be read or parsed
//
// Configuration Priority:
//  1. Default values are set
//  2. MCP_TRUST_GUARD_CONFIG_FILE is checked if configPath is empty
//  3. Config file values override defaults
//  4. Invalid values fall back to the defaults
func loadConfig(configPath string) (*Config, error) {
	config := &Config{}
	config.Defaults.Format = defaultFormat
	config.Defaults.Timeout = defaultTimeoutSeconds

	if configPath == "" {
		configPath = os.Getenv(ConfigEnv)
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		format := detectConfigFormat(configPath)
		if err := unmarshalConfig(data, config, format); err != nil {
			return nil, err
		}

		if config.Defaults.Timeout <= 0 {
			config.Defaults.Timeout = defaultTimeoutSeconds
		}
		switch config.Defaults.Format {
		case "tree", "table", "json":
		default:
			config.Defaults.Format = defaultFormat
		}
	}

	return config, nil
}
