package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tcgen/pkg/schema"
)

func sampleRecords() []schema.TestCase {
	return []schema.TestCase{
		{
			ID:             "TC001",
			Title:          "Valid login",
			Steps:          `1. Open the login page\n2. Enter valid credentials\n3. Click submit`,
			ExpectedResult: "User is redirected to the dashboard",
			Criterion:      "AC1",
		},
		{
			ID:             "TC002",
			Title:          "Invalid password rejected",
			Steps:          `1. Open the login page\n2. Enter a wrong password`,
			ExpectedResult: "An error message is shown",
			Criterion:      "AC2",
		},
	}
}

func TestLoadStory(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "story.json")
		content := `{
			"user_story": "As a user, I want to log in",
			"acceptance_criteria": ["Valid credentials succeed", "Invalid credentials fail"]
		}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		story, criteria, err := LoadStory(path)
		require.NoError(t, err)
		assert.Equal(t, "As a user, I want to log in", story)
		assert.Equal(t, []string{"Valid credentials succeed", "Invalid credentials fail"}, criteria)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := LoadStory(filepath.Join(dir, "nope.json"))
		assert.Error(t, err)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
		_, _, err := LoadStory(path)
		assert.ErrorContains(t, err, "parse story file")
	})

	t.Run("missing user_story key", func(t *testing.T) {
		path := filepath.Join(dir, "no-story.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"acceptance_criteria": []}`), 0644))
		_, _, err := LoadStory(path)
		assert.ErrorContains(t, err, `"user_story"`)
	})

	t.Run("missing acceptance_criteria key", func(t *testing.T) {
		path := filepath.Join(dir, "no-criteria.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"user_story": "story"}`), 0644))
		_, _, err := LoadStory(path)
		assert.ErrorContains(t, err, `"acceptance_criteria"`)
	})

	t.Run("criteria must be an array", func(t *testing.T) {
		path := filepath.Join(dir, "scalar-criteria.json")
		content := `{"user_story": "story", "acceptance_criteria": "just one"}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		_, _, err := LoadStory(path)
		assert.ErrorContains(t, err, "must be an array")
	})

	t.Run("empty criteria list allowed", func(t *testing.T) {
		path := filepath.Join(dir, "empty-criteria.json")
		content := `{"user_story": "story", "acceptance_criteria": []}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		story, criteria, err := LoadStory(path)
		require.NoError(t, err)
		assert.Equal(t, "story", story)
		assert.Empty(t, criteria)
	})
}

func TestSaveJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "cases.json")
	records := sampleRecords()

	require.NoError(t, SaveJSON(records, path))

	loaded, err := LoadResults(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, records[0].ID, loaded[0].ID)
	assert.Equal(t, records[0].Steps, loaded[0].Steps)
	assert.Equal(t, records[1].Criterion, loaded[1].Criterion)

	// No stray temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cases.json", entries[0].Name())
}

func TestSaveWithMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.json")
	records := sampleRecords()

	err := SaveWithMetadata(records, path, map[string]any{"model": "llama3.1:8b"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 2, doc.Count)
	assert.NotEmpty(t, doc.GeneratedAt)
	assert.Len(t, doc.TestCases, 2)
	assert.Equal(t, "llama3.1:8b", doc.Metadata["model"])

	runID, ok := doc.Metadata["run_id"].(string)
	require.True(t, ok, "run_id should be minted when absent")
	assert.Contains(t, runID, "GEN-")

	// Wrapped documents load the same as bare arrays.
	loaded, err := LoadResults(path)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}

func TestLoadResultsRejectsOtherShapes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weird.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"cases": []}`), 0644))

	_, err := LoadResults(path)
	assert.ErrorContains(t, err, `"test_cases"`)
}

func TestWriteTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, WriteTemplate(path))

	story, criteria, err := LoadStory(path)
	require.NoError(t, err)
	assert.Contains(t, story, "As a [user type]")
	assert.Len(t, criteria, 3)
}
