package llm

import (
	"fmt"
	"net/url"
	"time"
)

// Config contains configuration for the Ollama client.
type Config struct {
	// BaseURL is the Ollama server URL
	// Default: http://localhost:11434
	BaseURL string

	// Model is the Ollama model identifier
	// Example: llama3.1:8b
	Model string

	// Timeout is the HTTP request timeout for completion calls.
	// Local inference is slow; completions routinely take tens of seconds.
	// Default: 120 seconds
	Timeout time.Duration
}

// SetDefaults fills in default values for optional fields.
func (c *Config) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:11434"
	}

	if c.Model == "" {
		c.Model = "llama3.1:8b"
	}

	if c.Timeout == 0 {
		c.Timeout = 120 * time.Second
	}
}

// Validate checks that config fields are usable.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("BaseURL is required")
	}

	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("BaseURL is not a valid URL: %w", err)
	}

	if c.Model == "" {
		return fmt.Errorf("Model is required")
	}

	if c.Timeout < 0 {
		return fmt.Errorf("Timeout must not be negative")
	}

	return nil
}

// SamplingParams are the generation parameters passed through to the model.
type SamplingParams struct {
	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	// Lower values are better for structured output like JSON.
	Temperature float64

	// TopP is the nucleus sampling threshold (0.0-1.0).
	TopP float64

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int
}

// DefaultSampling returns the sampling parameters used when the caller does
// not specify any.
func DefaultSampling() SamplingParams {
	return SamplingParams{
		Temperature: 0.3,
		TopP:        0.9,
		MaxTokens:   4096,
	}
}
