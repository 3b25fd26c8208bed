package llm

import "fmt"

// ClientError represents an error from the Ollama client.
type ClientError struct {
	// Type categorizes the error
	Type string

	// Message is a human-readable error message
	Message string

	// Code is the HTTP status code (if applicable)
	Code int

	// Err is the underlying error
	Err error
}

// Error types.
const (
	// ErrorTypeUnavailable means the Ollama service could not be reached at
	// client construction time. Fatal; never retried.
	ErrorTypeUnavailable = "unavailable"

	// ErrorTypeGeneration means a single completion call failed. Retryable.
	ErrorTypeGeneration = "generation"
)

// Error implements the error interface.
func (e *ClientError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("ollama %s error (status %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("ollama %s error: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *ClientError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the orchestrator may retry after this error.
func (e *ClientError) Retryable() bool {
	return e.Type == ErrorTypeGeneration
}

// NewUnavailableError creates an error for an unreachable Ollama service.
func NewUnavailableError(baseURL string, err error) *ClientError {
	return &ClientError{
		Type:    ErrorTypeUnavailable,
		Message: fmt.Sprintf("cannot connect to Ollama at %s; make sure Ollama is running", baseURL),
		Err:     err,
	}
}

// NewGenerationError creates an error for a failed completion call.
func NewGenerationError(message string, err error) *ClientError {
	return &ClientError{
		Type:    ErrorTypeGeneration,
		Message: fmt.Sprintf("model generation failed: %s", message),
		Err:     err,
	}
}

// NewGenerationStatusError creates an error for a non-200 completion response.
func NewGenerationStatusError(code int, body string) *ClientError {
	return &ClientError{
		Type:    ErrorTypeGeneration,
		Code:    code,
		Message: body,
	}
}
