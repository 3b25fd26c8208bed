// Package core holds application-level configuration and logging setup.
package core

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration. Values are resolved in three
// layers: built-in defaults, an optional YAML config file, then environment
// variables. No global mutable configuration exists; the loaded struct is
// passed into each component's constructor.
type Config struct {
	LogLevel string `yaml:"log_level"`

	// Model configuration.
	OllamaBaseURL string  `yaml:"ollama_base_url"`
	Model         string  `yaml:"model"`
	Temperature   float64 `yaml:"temperature"`
	TopP          float64 `yaml:"top_p"`
	MaxTokens     int     `yaml:"max_tokens"`
	MaxAttempts   int     `yaml:"max_attempts"`

	// Generation options.
	IncludeEdgeCases     bool `yaml:"include_edge_cases"`
	IncludeNegativeTests bool `yaml:"include_negative_tests"`
	StrictValidation     bool `yaml:"strict_validation"`

	// Output options.
	OutputDir             string `yaml:"output_dir"`
	CSVPreserveLineBreaks bool   `yaml:"csv_preserve_line_breaks"`
	CSVIncludeSummary     bool   `yaml:"csv_include_summary"`
	AppendDatetime        bool   `yaml:"append_datetime"`

	// Web server.
	WebHost string `yaml:"web_host"`
	WebPort int    `yaml:"web_port"`
}

// DefaultConfigFile is looked up by LoadConfig when no explicit path is
// given.
const DefaultConfigFile = "tcgen.yaml"

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:              "info",
		OllamaBaseURL:         "http://localhost:11434",
		Model:                 "llama3.1:8b",
		Temperature:           0.3,
		TopP:                  0.9,
		MaxTokens:             4096,
		MaxAttempts:           3,
		IncludeEdgeCases:      true,
		IncludeNegativeTests:  true,
		StrictValidation:      true,
		OutputDir:             "output",
		CSVPreserveLineBreaks: true,
		CSVIncludeSummary:     true,
		AppendDatetime:        true,
		WebHost:               "0.0.0.0",
		WebPort:               5000,
	}
}

// LoadConfig resolves configuration from defaults, the optional config file
// at path (DefaultConfigFile is tried when path is empty; a missing default
// file is not an error), and environment variables, in that order.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if path == "" {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file; defaults plus environment apply.
	default:
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overlays environment variables on the config.
func (c *Config) applyEnv() error {
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	if os.Getenv("DEBUG") == "1" {
		c.LogLevel = "debug"
	}

	c.OllamaBaseURL = getEnvOrDefault("OLLAMA_BASE_URL", c.OllamaBaseURL)
	c.Model = getEnvOrDefault("TCGEN_MODEL", c.Model)
	c.OutputDir = getEnvOrDefault("TCGEN_OUTPUT_DIR", c.OutputDir)
	c.WebHost = getEnvOrDefault("TCGEN_WEB_HOST", c.WebHost)

	var err error
	if c.Temperature, err = getEnvFloat("TCGEN_TEMPERATURE", c.Temperature); err != nil {
		return err
	}
	if c.TopP, err = getEnvFloat("TCGEN_TOP_P", c.TopP); err != nil {
		return err
	}
	if c.MaxTokens, err = getEnvInt("TCGEN_MAX_TOKENS", c.MaxTokens); err != nil {
		return err
	}
	if c.MaxAttempts, err = getEnvInt("TCGEN_MAX_ATTEMPTS", c.MaxAttempts); err != nil {
		return err
	}
	if c.WebPort, err = getEnvInt("TCGEN_WEB_PORT", c.WebPort); err != nil {
		return err
	}

	return nil
}

// Validate bounds-checks the configuration.
func (c *Config) Validate() error {
	if c.Temperature < 0.0 || c.Temperature > 1.0 {
		return fmt.Errorf("temperature must be between 0.0 and 1.0, got %g", c.Temperature)
	}
	if c.TopP < 0.0 || c.TopP > 1.0 {
		return fmt.Errorf("top_p must be between 0.0 and 1.0, got %g", c.TopP)
	}
	if c.MaxTokens < 100 {
		return fmt.Errorf("max_tokens should be at least 100, got %d", c.MaxTokens)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.WebPort < 1 || c.WebPort > 65535 {
		return fmt.Errorf("web_port must be a valid port, got %d", c.WebPort)
	}
	return nil
}

// getEnvOrDefault returns the value of an environment variable or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}
