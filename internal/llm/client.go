package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client is a single-shot completion client for a local Ollama server.
// It performs no retries and no response parsing beyond whitespace trimming;
// retry policy belongs to the generation orchestrator.
type Client struct {
	config *Config
	http   *http.Client
}

// NewClient creates a new Ollama client and verifies the service is
// reachable. Failing fast here catches configuration problems before any
// generation work is attempted.
func NewClient(config *Config) (*Client, error) {
	config.SetDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Client{
		config: config,
		http: &http.Client{
			Timeout: config.Timeout,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.config.Model
}

// ollamaGenerateRequest is the request body for Ollama's /api/generate.
type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

// ollamaGenerateResponse is the non-streaming response body.
type ollamaGenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Ping checks that the Ollama service is reachable by listing its models.
// Returns an unavailable-typed error on failure.
func (c *Client) Ping(ctx context.Context) error {
	url := c.config.BaseURL + "/api/tags"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return NewUnavailableError(c.config.BaseURL, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return NewUnavailableError(c.config.BaseURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return NewUnavailableError(c.config.BaseURL,
			fmt.Errorf("listing models returned status %d", resp.StatusCode))
	}

	return nil
}

// Generate sends a prompt to the model and returns the trimmed completion
// text. Any backend failure is wrapped as a generation-typed ClientError;
// the raw cause is preserved via Unwrap.
func (c *Client) Generate(ctx context.Context, prompt string, params SamplingParams) (string, error) {
	slog.Debug("generating completion via Ollama",
		"model", c.config.Model,
		"temperature", params.Temperature,
		"prompt_length", len(prompt),
	)

	payload := ollamaGenerateRequest{
		Model:  c.config.Model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]any{
			"temperature": params.Temperature,
			"top_p":       params.TopP,
			"num_predict": params.MaxTokens,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", NewGenerationError("marshal request", err)
	}

	url := c.config.BaseURL + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", NewGenerationError("create request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)

	if err != nil {
		slog.Error("Ollama completion call failed", "error", err, "duration", duration)
		return "", NewGenerationError("completion call failed", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewGenerationError("read response body", err)
	}

	slog.Debug("Ollama completion call finished",
		"status_code", resp.StatusCode,
		"duration", duration,
	)

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound && bytes.Contains(respBody, []byte("not found")) {
			return "", NewGenerationStatusError(resp.StatusCode,
				fmt.Sprintf("model %q not found; run: ollama pull %s", c.config.Model, c.config.Model))
		}
		return "", NewGenerationStatusError(resp.StatusCode, string(respBody))
	}

	var genResp ollamaGenerateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", NewGenerationError("decode response", err)
	}

	return strings.TrimSpace(genResp.Response), nil
}
