package generator

import (
	"errors"
	"fmt"

	"tcgen/internal/extract"
	"tcgen/internal/llm"
	"tcgen/internal/validate"
)

// ExhaustedError means every attempt failed with a retryable error. It is
// terminal and self-contained: the message carries the last underlying
// cause plus remediation guidance, so a user reading only it can diagnose
// likely causes.
type ExhaustedError struct {
	Attempts int
	Model    string
	LastErr  error
}

func (e *ExhaustedError) Error() string {
	model := e.Model
	if model == "" {
		model = "the configured model"
	}
	return fmt.Sprintf(
		"failed to generate valid test cases after %d attempts\n"+
			"last error: %v\n"+
			"suggestions:\n"+
			"  - check that Ollama is running properly\n"+
			"  - verify that %s is available (ollama list)\n"+
			"  - try simplifying the user story or reducing acceptance criteria\n"+
			"  - increase the maximum attempts for more complex scenarios",
		e.Attempts, e.LastErr, model,
	)
}

func (e *ExhaustedError) Unwrap() error {
	return e.LastErr
}

// retryable reports whether the retry loop may catch this error and try
// again. Only the three pipeline failure kinds qualify: a failed completion
// call, a failed extraction, or a failed validation. Everything else,
// including an unavailable service, propagates immediately.
func retryable(err error) bool {
	var clientErr *llm.ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Retryable()
	}

	var extractErr *extract.Error
	if errors.As(err, &extractErr) {
		return true
	}

	var ruleErr *validate.RuleError
	return errors.As(err, &ruleErr)
}
