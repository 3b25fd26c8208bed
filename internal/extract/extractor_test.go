package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture is one well-formed record array used across the wrapping tests.
const fixture = `[
  {
    "Test Case ID": "TC001",
    "Test Case Title": "Valid login",
    "Steps": "1. Open page\\n2. Enter credentials\\n3. Submit",
    "Expected Result": "User is logged in",
    "Linked Acceptance Criterion": "AC1"
  },
  {
    "Test Case ID": "TC002",
    "Test Case Title": "Invalid password",
    "Steps": "1. Open page\\n2. Enter wrong password\\n3. Submit",
    "Expected Result": "Error message is shown",
    "Linked Acceptance Criterion": "AC2"
  }
]`

func TestExtractWrappings(t *testing.T) {
	wrappings := []struct {
		name string
		text string
	}{
		{"plain array", fixture},
		{"plain array with whitespace", "\n  " + fixture + "  \n"},
		{"fenced with language tag", "```json\n" + fixture + "\n```"},
		{"fenced without tag", "```\n" + fixture + "\n```"},
		{"prose wrapped", "Here are the test cases you asked for:\n\n" + fixture + "\n\nLet me know if you need more."},
		{"fence wrapped in prose", "Sure! Here you go:\n\n```json\n" + fixture + "\n```\nHope that helps."},
	}

	for _, tt := range wrappings {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Extract(tt.text)
			require.NoError(t, err)
			require.Len(t, records, 2)

			assert.Equal(t, "TC001", records[0].ID)
			assert.Equal(t, "TC002", records[1].ID)
			assert.Equal(t, `1. Open page\n2. Enter credentials\n3. Submit`, records[0].Steps)
			assert.Equal(t, "AC2", records[1].Criterion)
		})
	}
}

func TestExtractFailures(t *testing.T) {
	failures := []struct {
		name string
		text string
	}{
		{"no brackets at all", "I could not generate any test cases, sorry."},
		{"only opening bracket", "Here is the start: [ but nothing else"},
		{"only closing bracket", "stray ] in prose"},
		{"empty array", "[]"},
		{"reversed brackets", "] nothing useful ["},
		{"malformed array", `[{"Test Case ID": }]`},
		{"empty input", ""},
	}

	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Extract(tt.text)
			require.Error(t, err)
			assert.Nil(t, records)

			var extractErr *Error
			require.True(t, errors.As(err, &extractErr), "expected *extract.Error, got %T", err)
			assert.Contains(t, extractErr.Error(), "valid JSON array")
		})
	}
}

func TestExtractFirstStrategyWins(t *testing.T) {
	// A plain array that also happens to contain a fence marker in a field
	// value must be handled by the direct parse, not mangled by the fenced
	// strategy.
	text := `[{"Test Case ID": "TC001", "Test Case Title": "backtick test", "Steps": "1. Type three backticks", "Expected Result": "ok", "Linked Acceptance Criterion": "AC1"}]`

	records, err := Extract(text)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "TC001", records[0].ID)
}

func TestExtractObjectNotArray(t *testing.T) {
	// A bare object is not an acceptable response shape; the boundary
	// strategy must not be fooled by the braces.
	_, err := Extract(`{"Test Case ID": "TC001"}`)
	require.Error(t, err)
}
