package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigLoader handles loading and parsing YAML configuration files
type ConfigLoader struct {
	configDir string
}

// NewConfigLoader creates a new config loader with the specified directory
func NewConfigLoader(configDir string) *ConfigLoader {
	return &ConfigLoader{
		configDir: configDir,
	}
}

// LoadMatcherSettings loads the semantic matcher instruction settings.
// Missing file falls back to the built-in defaults so a bare checkout works.
func (c *ConfigLoader) LoadMatcherSettings() (*MatcherSettings, error) {
	var settings MatcherSettings
	err := c.loadYAMLFile("matcher.yaml", &settings)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultMatcherSettings(), nil
		}
		return nil, fmt.Errorf("failed to load matcher settings: %w", err)
	}
	settings.applyDefaults()
	return &settings, nil
}

// loadYAMLFile loads and unmarshals a YAML file into the provided structure
func (c *ConfigLoader) loadYAMLFile(filename string, target interface{}) error {
	filePath := filepath.Join(c.configDir, filename)

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	err = yaml.Unmarshal(data, target)
	if err != nil {
		return fmt.Errorf("failed to parse YAML in %s: %w", filePath, err)
	}

	return nil
}

// MatcherSettings controls the instruction block the semantic matcher embeds
// in every matching prompt.
type MatcherSettings struct {
	// DeprioritizedTerms are substrings of cluster names that should only be
	// matched when no other candidate exists (test/dev environments).
	DeprioritizedTerms []string `yaml:"deprioritized_terms"`
	SystemPrompt       string   `yaml:"system_prompt"`
}

// DefaultMatcherSettings returns the compiled-in matcher settings
func DefaultMatcherSettings() *MatcherSettings {
	return &MatcherSettings{
		DeprioritizedTerms: []string{"test", "experiment", "dev", "sandbox"},
		SystemPrompt:       "You help match ECS cluster/service names in JSON.",
	}
}

func (s *MatcherSettings) applyDefaults() {
	defaults := DefaultMatcherSettings()
	if len(s.DeprioritizedTerms) == 0 {
		s.DeprioritizedTerms = defaults.DeprioritizedTerms
	}
	if s.SystemPrompt == "" {
		s.SystemPrompt = defaults.SystemPrompt
	}
}
