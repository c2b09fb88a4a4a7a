package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config defines runtime settings for hlsflow.
type Config struct {
	// CatalogPath points at a YAML pass/backend catalog. Empty uses the builtin one.
	CatalogPath string   `yaml:"catalogPath"`
	LogLevel    string   `yaml:"logLevel"`
	LogFormat   string   `yaml:"logFormat"`
	Backends    []string `yaml:"backends"`
}

// LoadConfig loads configuration from a YAML file and environment overrides.
// A missing file at the default location is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		LogLevel:  "info",
		LogFormat: "text",
	}

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if catalog := os.Getenv("HLSFLOW_CATALOG"); catalog != "" {
		cfg.CatalogPath = catalog
	}
	if level := os.Getenv("HLSFLOW_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if format := os.Getenv("HLSFLOW_LOG_FORMAT"); format != "" {
		cfg.LogFormat = format
	}
	if backends := os.Getenv("HLSFLOW_BACKENDS"); backends != "" {
		cfg.Backends = splitList(backends)
	}

	if cfg.CatalogPath != "" {
		if _, err := os.Stat(cfg.CatalogPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("catalog path does not exist: %s", cfg.CatalogPath)
		}
	}
	return cfg, nil
}

// DefaultConfigPath returns the default location for the CLI config file.
func DefaultConfigPath() string {
	if path := os.Getenv("HLSFLOW_CONFIG"); path != "" {
		return path
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".hlsflow", "config.yaml")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
