package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the main configuration structure
type Config struct {
	AWS      AWSConfig      `mapstructure:"aws"`
	MCP      MCPConfig      `mapstructure:"mcp"`
	Matcher  MatcherConfig  `mapstructure:"matcher"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// AWSConfig contains AWS-specific configuration
type AWSConfig struct {
	Region string `mapstructure:"region"`
}

// MCPConfig contains Model Context Protocol configuration
type MCPConfig struct {
	ServerName string `mapstructure:"server_name"`
	Version    string `mapstructure:"version"`
}

// MatcherConfig contains configuration for the semantic name matcher
type MatcherConfig struct {
	Provider       string  `mapstructure:"provider"` // openai, gemini
	OpenAIAPIKey   string  `mapstructure:"openai_api_key"`
	GeminiAPIKey   string  `mapstructure:"gemini_api_key"`
	Model          string  `mapstructure:"model"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	Temperature    float64 `mapstructure:"temperature"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

// ResolverConfig contains configuration for the name resolver core
type ResolverConfig struct {
	TopologyTTLSeconds int `mapstructure:"topology_ttl_seconds"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Load loads configuration from file, environment variables, and defaults
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("$HOME/.ecsops")

	// Environment variable support
	viper.SetEnvPrefix("ECSOPS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Try to read config file (optional)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables for sensitive data
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.Matcher.OpenAIAPIKey = apiKey
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Matcher.GeminiAPIKey = apiKey
	}
	if awsRegion := os.Getenv("AWS_REGION"); awsRegion != "" {
		config.AWS.Region = awsRegion
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// AWS defaults
	viper.SetDefault("aws.region", "us-west-2")

	// MCP defaults
	viper.SetDefault("mcp.server_name", "ecs-ops-agent")
	viper.SetDefault("mcp.version", "1.0.0")

	// Matcher defaults
	viper.SetDefault("matcher.provider", "openai")
	viper.SetDefault("matcher.model", "gpt-4o-mini")
	viper.SetDefault("matcher.max_tokens", 500)
	viper.SetDefault("matcher.temperature", 0.1)
	viper.SetDefault("matcher.timeout_seconds", 30)

	// Resolver defaults
	viper.SetDefault("resolver.topology_ttl_seconds", 300)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.output", "stdout")
}

// IsProductionMode returns true if running in production mode
func (c *Config) IsProductionMode() bool {
	return c.Logging.Level != "debug"
}
