// Package extract recovers structured test case records from raw model
// output. Completions are not guaranteed to contain only the requested JSON,
// so a layered set of increasingly permissive strategies is tried in order.
package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"tcgen/pkg/schema"
)

// Error represents a failed extraction: no strategy recovered a non-empty
// parseable JSON array. Retryable; model non-compliance, not a systemic fault.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extraction failed: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// strategy is a pure parsing function tried against the raw text.
type strategy struct {
	name string
	fn   func(string) ([]schema.TestCase, error)
}

// Extract parses test case records from raw model output. Strategies run in
// priority order; the first to yield a non-empty record sequence wins and
// later strategies are never tried.
func Extract(raw string) ([]schema.TestCase, error) {
	strategies := []strategy{
		{"direct", parseDirect},
		{"fenced", parseFenced},
		{"boundary", parseBoundary},
	}

	var lastErr error
	for _, s := range strategies {
		records, err := s.fn(raw)
		if err != nil {
			lastErr = fmt.Errorf("%s parse: %w", s.name, err)
			continue
		}
		if len(records) > 0 {
			return records, nil
		}
		lastErr = fmt.Errorf("%s parse: empty result", s.name)
	}

	return nil, &Error{
		Message: "unable to recover a valid JSON array from the response; the model may not have followed the required format",
		Err:     lastErr,
	}
}

// parseDirect treats the trimmed whole text as a JSON array literal. Works
// when the model follows instructions exactly.
func parseDirect(text string) ([]schema.TestCase, error) {
	var records []schema.TestCase
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &records); err != nil {
		return nil, err
	}
	return records, nil
}

// fencePattern matches the first fenced code block, optionally language
// tagged. The capture is everything up to the closing fence.
var fencePattern = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")

// parseFenced extracts a JSON array from the first fenced code block, taking
// the outermost bracket pair inside the fence.
func parseFenced(text string) ([]schema.TestCase, error) {
	match := fencePattern.FindStringSubmatch(text)
	if match == nil {
		return nil, fmt.Errorf("no fenced code block found")
	}
	return parseBoundary(match[1])
}

// parseBoundary extracts the substring between the first '[' and the last
// ']' inclusive, ignoring anything outside. Handles explanatory prose before
// or after the array.
func parseBoundary(text string) ([]schema.TestCase, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")

	if start == -1 || end == -1 || start >= end {
		return nil, fmt.Errorf("no JSON array boundaries found")
	}

	var records []schema.TestCase
	if err := json.Unmarshal([]byte(text[start:end+1]), &records); err != nil {
		return nil, err
	}
	return records, nil
}
