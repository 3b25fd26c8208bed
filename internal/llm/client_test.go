package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newTagsHandler serves a minimal /api/tags response so NewClient's liveness
// check passes.
func newTagsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"models": [{"name": "llama3.1:8b"}]}`))
	}
}

func TestNewClient(t *testing.T) {
	t.Run("reachable service", func(t *testing.T) {
		server := httptest.NewServer(newTagsHandler())
		defer server.Close()

		client, err := NewClient(&Config{BaseURL: server.URL})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if client.config.Model != "llama3.1:8b" {
			t.Errorf("expected default model, got %s", client.config.Model)
		}
		if client.config.Timeout != 120*time.Second {
			t.Errorf("expected default timeout 120s, got %v", client.config.Timeout)
		}
	})

	t.Run("unreachable service", func(t *testing.T) {
		server := httptest.NewServer(newTagsHandler())
		server.Close() // shut down before the client connects

		_, err := NewClient(&Config{BaseURL: server.URL})
		if err == nil {
			t.Fatal("expected error, got nil")
		}

		var clientErr *ClientError
		if !errors.As(err, &clientErr) {
			t.Fatalf("expected ClientError, got %T", err)
		}
		if clientErr.Type != ErrorTypeUnavailable {
			t.Errorf("expected unavailable error, got %s", clientErr.Type)
		}
		if clientErr.Retryable() {
			t.Error("unavailable errors must not be retryable")
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := NewClient(&Config{BaseURL: "://not-a-url"})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestGenerate(t *testing.T) {
	t.Run("returns trimmed completion", func(t *testing.T) {
		var gotReq ollamaGenerateRequest
		mux := http.NewServeMux()
		mux.HandleFunc("/api/tags", newTagsHandler())
		mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
			if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
				t.Errorf("decode request: %v", err)
			}
			_ = json.NewEncoder(w).Encode(ollamaGenerateResponse{
				Model:    gotReq.Model,
				Response: "  [{\"Test Case ID\": \"TC001\"}]  \n",
				Done:     true,
			})
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		client, err := NewClient(&Config{BaseURL: server.URL, Model: "test-model"})
		if err != nil {
			t.Fatalf("NewClient: %v", err)
		}

		params := SamplingParams{Temperature: 0.4, TopP: 0.9, MaxTokens: 2048}
		text, err := client.Generate(context.Background(), "a prompt", params)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}

		if text != `[{"Test Case ID": "TC001"}]` {
			t.Errorf("completion should be trimmed, got %q", text)
		}
		if gotReq.Model != "test-model" {
			t.Errorf("expected model test-model, got %s", gotReq.Model)
		}
		if gotReq.Stream {
			t.Error("request must disable streaming")
		}
		if gotReq.Options["temperature"] != 0.4 {
			t.Errorf("expected temperature 0.4, got %v", gotReq.Options["temperature"])
		}
		if gotReq.Options["num_predict"] != float64(2048) {
			t.Errorf("expected num_predict 2048, got %v", gotReq.Options["num_predict"])
		}
	})

	t.Run("backend error is wrapped and retryable", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/tags", newTagsHandler())
		mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error": "model is overloaded"}`, http.StatusInternalServerError)
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		client, err := NewClient(&Config{BaseURL: server.URL})
		if err != nil {
			t.Fatalf("NewClient: %v", err)
		}

		_, err = client.Generate(context.Background(), "a prompt", DefaultSampling())
		if err == nil {
			t.Fatal("expected error, got nil")
		}

		var clientErr *ClientError
		if !errors.As(err, &clientErr) {
			t.Fatalf("expected ClientError, got %T", err)
		}
		if clientErr.Type != ErrorTypeGeneration {
			t.Errorf("expected generation error, got %s", clientErr.Type)
		}
		if !clientErr.Retryable() {
			t.Error("generation errors must be retryable")
		}
	})

	t.Run("missing model names the pull command", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/tags", newTagsHandler())
		mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error": "model 'nope' not found"}`, http.StatusNotFound)
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		client, err := NewClient(&Config{BaseURL: server.URL, Model: "nope"})
		if err != nil {
			t.Fatalf("NewClient: %v", err)
		}

		_, err = client.Generate(context.Background(), "a prompt", DefaultSampling())
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if got := err.Error(); !strings.Contains(got, "ollama pull nope") {
			t.Errorf("error should suggest pulling the model, got %q", got)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"defaults are valid", Config{}, false},
		{"negative timeout", Config{Timeout: -time.Second}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.SetDefaults()
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
