package schema

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Canonical field names. These match the JSON keys the model is instructed
// to emit and the CSV column headers, so they appear verbatim in prompts,
// output files, and validation messages.
const (
	FieldID             = "Test Case ID"
	FieldTitle          = "Test Case Title"
	FieldSteps          = "Steps"
	FieldExpectedResult = "Expected Result"
	FieldCriterion      = "Linked Acceptance Criterion"
)

// RequiredFields is the canonical field order for test case records.
func RequiredFields() []string {
	return []string{
		FieldID,
		FieldTitle,
		FieldSteps,
		FieldExpectedResult,
		FieldCriterion,
	}
}

// TestCase is one generated test case.
//
// Steps holds the ordered instructions as a single string using the literal
// two-character sequence `\n` as the step separator. The escape sequence is a
// deliberate serialization choice so the value survives both JSON and CSV
// representations unambiguously; nothing in the pipeline converts it.
type TestCase struct {
	ID             string `json:"Test Case ID"`
	Title          string `json:"Test Case Title"`
	Steps          string `json:"Steps"`
	ExpectedResult string `json:"Expected Result"`
	Criterion      string `json:"Linked Acceptance Criterion"`

	// present records which canonical keys appeared in the source JSON,
	// so validation can distinguish an absent field from a blank one.
	present map[string]bool
}

// UnmarshalJSON decodes a record while tracking which canonical keys were
// present. Scalar values that are not strings are coerced with fmt.Sprint;
// the model occasionally emits bare numbers for IDs.
func (t *TestCase) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	t.present = make(map[string]bool, len(raw))
	get := func(key string) string {
		v, ok := raw[key]
		if !ok {
			return ""
		}
		t.present[key] = true
		if s, isString := v.(string); isString {
			return s
		}
		return fmt.Sprint(v)
	}

	t.ID = get(FieldID)
	t.Title = get(FieldTitle)
	t.Steps = get(FieldSteps)
	t.ExpectedResult = get(FieldExpectedResult)
	t.Criterion = get(FieldCriterion)
	return nil
}

// Field returns the value of a canonical field by name.
func (t *TestCase) Field(name string) string {
	switch name {
	case FieldID:
		return t.ID
	case FieldTitle:
		return t.Title
	case FieldSteps:
		return t.Steps
	case FieldExpectedResult:
		return t.ExpectedResult
	case FieldCriterion:
		return t.Criterion
	}
	return ""
}

// Has reports whether a canonical field is present on the record. For records
// decoded from JSON this reflects the source keys; for records constructed
// directly it falls back to non-emptiness.
func (t *TestCase) Has(name string) bool {
	if t.present != nil {
		return t.present[name]
	}
	return t.Field(name) != ""
}

// CriterionLabels mints the acceptance criterion labels AC1..ACn for a
// criteria list of length n. This numbering is authoritative: it is the only
// place labels are created, and input order decides the number.
func CriterionLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("AC%d", i+1)
	}
	return labels
}

// CoveredCriteria returns the sorted set of criterion labels referenced by
// the records.
func CoveredCriteria(records []TestCase) []string {
	seen := make(map[string]bool)
	for _, tc := range records {
		if tc.Criterion != "" {
			seen[tc.Criterion] = true
		}
	}
	covered := make([]string, 0, len(seen))
	for label := range seen {
		covered = append(covered, label)
	}
	sort.Strings(covered)
	return covered
}

// Summary describes a generated sequence at a glance.
type Summary struct {
	TotalTestCases  int      `json:"total_test_cases"`
	CriteriaCovered []string `json:"criteria_covered"`
	CoverageCount   int      `json:"coverage_count"`
}

// Summarize computes summary statistics for a record sequence.
func Summarize(records []TestCase) Summary {
	covered := CoveredCriteria(records)
	return Summary{
		TotalTestCases:  len(records),
		CriteriaCovered: covered,
		CoverageCount:   len(covered),
	}
}
