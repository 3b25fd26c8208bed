// Package store handles file input and output for test case generation:
// user story input files, generated JSON results, and CSV conversion.
// Centralizing file handling keeps formats and write semantics in one place.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tcgen/pkg/schema"
)

// Document is the metadata-wrapped output format produced by
// SaveWithMetadata and accepted (alongside bare arrays) by LoadResults.
type Document struct {
	GeneratedAt string            `json:"generated_at"`
	TestCases   []schema.TestCase `json:"test_cases"`
	Count       int               `json:"count"`
	Metadata    map[string]any    `json:"metadata,omitempty"`
}

// LoadStory reads a user story input file. The file must be a JSON object
// with a "user_story" string and an "acceptance_criteria" array; both keys
// are required even when empty.
func LoadStory(path string) (string, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read story file: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", nil, fmt.Errorf("parse story file %s: %w", path, err)
	}

	storyRaw, ok := raw["user_story"]
	if !ok {
		return "", nil, fmt.Errorf("story file %s missing required key %q", path, "user_story")
	}
	criteriaRaw, ok := raw["acceptance_criteria"]
	if !ok {
		return "", nil, fmt.Errorf("story file %s missing required key %q", path, "acceptance_criteria")
	}

	var story string
	if err := json.Unmarshal(storyRaw, &story); err != nil {
		return "", nil, fmt.Errorf("story file %s: %q must be a string", path, "user_story")
	}
	var criteria []string
	if err := json.Unmarshal(criteriaRaw, &criteria); err != nil {
		return "", nil, fmt.Errorf("story file %s: %q must be an array of strings", path, "acceptance_criteria")
	}

	return story, criteria, nil
}

// SaveJSON writes the records as a pretty-printed JSON array.
func SaveJSON(records []schema.TestCase, path string) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal test cases: %w", err)
	}
	return writeFileAtomic(path, append(data, '\n'))
}

// SaveWithMetadata writes the records wrapped in a Document carrying the
// generation timestamp, a run identifier, the record count, and any extra
// metadata (model name, attempt count, source file).
func SaveWithMetadata(records []schema.TestCase, path string, metadata map[string]any) error {
	doc := Document{
		GeneratedAt: time.Now().Format(time.RFC3339),
		TestCases:   records,
		Count:       len(records),
		Metadata:    metadata,
	}
	if doc.Metadata == nil {
		doc.Metadata = map[string]any{}
	}
	if _, ok := doc.Metadata["run_id"]; !ok {
		runID, err := schema.NewRunID()
		if err != nil {
			return fmt.Errorf("mint run id: %w", err)
		}
		doc.Metadata["run_id"] = runID
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal test case document: %w", err)
	}
	return writeFileAtomic(path, append(data, '\n'))
}

// LoadResults reads a previously saved results file. Both the bare-array
// format from SaveJSON and the wrapped format from SaveWithMetadata are
// accepted.
func LoadResults(path string) ([]schema.TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}

	var records []schema.TestCase
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil || doc.TestCases == nil {
		return nil, fmt.Errorf("results file %s: expected a JSON array or an object with a %q key", path, "test_cases")
	}
	return doc.TestCases, nil
}

// WriteTemplate writes a starter input file showing the expected story
// format, for users beginning from scratch.
func WriteTemplate(path string) error {
	template := map[string]any{
		"user_story": "As a [user type], I want to [action] so that [benefit]",
		"acceptance_criteria": []string{
			"Criterion 1: Description of what should happen",
			"Criterion 2: Description of another requirement",
			"Criterion 3: Description of additional constraint",
		},
	}
	data, err := json.MarshalIndent(template, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal template: %w", err)
	}
	return writeFileAtomic(path, append(data, '\n'))
}

// writeFileAtomic writes data to path via a temp file in the same directory
// followed by a rename, so readers never observe a partial file. Parent
// directories are created as needed.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tcgen-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
