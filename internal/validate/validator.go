// Package validate checks extracted test case records against structural
// rules. It is the single source of truth for what constitutes a valid
// generated sequence.
package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"tcgen/pkg/schema"
)

// Rule identifiers carried by RuleError so callers can tell which check
// failed without parsing the message.
const (
	RuleNonEmptySequence = "non_empty_sequence"
	RuleRequiredFields   = "required_fields"
	RuleIDFormat         = "id_format"
	RuleNonBlankFields   = "non_blank_fields"
	RuleCriterionFormat  = "criterion_format"
	RuleUniqueIDs        = "unique_ids"
	RuleCoverage         = "criteria_coverage"
)

// RuleError represents a validation failure. It names the violated rule and
// the offending value(s). Retryable by the orchestrator.
type RuleError struct {
	Rule    string
	Message string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Rule, e.Message)
}

var idPattern = regexp.MustCompile(`^TC[0-9]+$`)

// Validator checks test case record sequences.
//
// Strict mode enforces canonical ID/label formats and full criteria
// coverage. Lenient mode relaxes those but still enforces field presence,
// non-blankness, and ID uniqueness unconditionally.
type Validator struct {
	Strict bool
}

// Validate checks a record sequence and returns the first violation found.
// expectedLabels is the label set that must be covered in strict mode; pass
// nil to skip the coverage check.
func (v *Validator) Validate(records []schema.TestCase, expectedLabels []string) error {
	if len(records) == 0 {
		return &RuleError{
			Rule:    RuleNonEmptySequence,
			Message: "no test cases to validate",
		}
	}

	for i := range records {
		if err := v.validateRecord(&records[i], i+1); err != nil {
			return err
		}
	}

	if err := validateUniqueIDs(records); err != nil {
		return err
	}

	if v.Strict && len(expectedLabels) > 0 {
		if err := validateCoverage(records, expectedLabels); err != nil {
			return err
		}
	}

	return nil
}

// Report runs the same checks as Validate but collects issues instead of
// stopping at the first one. Each record contributes at most its first
// violation. Intended for diagnostics outside the retry loop.
func (v *Validator) Report(records []schema.TestCase, expectedLabels []string) *Report {
	report := &Report{
		Valid:          true,
		TotalTestCases: len(records),
		Issues:         []string{},
	}

	if len(records) == 0 {
		report.addIssue("no test cases to validate")
		return report
	}

	for i := range records {
		if err := v.validateRecord(&records[i], i+1); err != nil {
			report.addIssue(err.Error())
		}
	}

	if err := validateUniqueIDs(records); err != nil {
		report.addIssue(err.Error())
	}

	if v.Strict && len(expectedLabels) > 0 {
		if err := validateCoverage(records, expectedLabels); err != nil {
			report.addIssue(err.Error())
		}
	}

	return report
}

// Report is the structured result of a non-throwing validation pass.
type Report struct {
	Valid          bool     `json:"is_valid"`
	TotalTestCases int      `json:"total_test_cases"`
	Issues         []string `json:"issues"`
}

func (r *Report) addIssue(issue string) {
	r.Valid = false
	r.Issues = append(r.Issues, issue)
}

// validateRecord checks one record. index is 1-based for error messages.
// Check order: field presence, ID format (strict), non-blankness, criterion
// format (strict).
func (v *Validator) validateRecord(tc *schema.TestCase, index int) error {
	var missing []string
	for _, field := range schema.RequiredFields() {
		if !tc.Has(field) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return &RuleError{
			Rule:    RuleRequiredFields,
			Message: fmt.Sprintf("test case %d is missing required fields: %s", index, strings.Join(missing, ", ")),
		}
	}

	if v.Strict && !idPattern.MatchString(tc.ID) {
		return &RuleError{
			Rule:    RuleIDFormat,
			Message: fmt.Sprintf("test case %d: ID %q should be 'TC' followed by digits", index, tc.ID),
		}
	}

	for _, field := range schema.RequiredFields() {
		if strings.TrimSpace(tc.Field(field)) == "" {
			return &RuleError{
				Rule:    RuleNonBlankFields,
				Message: fmt.Sprintf("test case %d: field %q cannot be blank", index, field),
			}
		}
	}

	if v.Strict && !strings.HasPrefix(tc.Criterion, "AC") {
		return &RuleError{
			Rule:    RuleCriterionFormat,
			Message: fmt.Sprintf("test case %d: criterion %q should start with 'AC'", index, tc.Criterion),
		}
	}

	return nil
}

// validateUniqueIDs ensures all IDs are pairwise distinct, reporting the
// specific duplicated values.
func validateUniqueIDs(records []schema.TestCase) error {
	counts := make(map[string]int, len(records))
	for _, tc := range records {
		counts[tc.ID]++
	}

	var duplicates []string
	for id, n := range counts {
		if n > 1 {
			duplicates = append(duplicates, id)
		}
	}
	if len(duplicates) == 0 {
		return nil
	}

	sort.Strings(duplicates)
	return &RuleError{
		Rule:    RuleUniqueIDs,
		Message: fmt.Sprintf("duplicate test case IDs found: %s", strings.Join(duplicates, ", ")),
	}
}

// validateCoverage ensures every expected label is referenced by at least
// one record, reporting the set difference.
func validateCoverage(records []schema.TestCase, expectedLabels []string) error {
	covered := make(map[string]bool, len(records))
	for _, tc := range records {
		covered[tc.Criterion] = true
	}

	var missing []string
	for _, label := range expectedLabels {
		if !covered[label] {
			missing = append(missing, label)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	sort.Strings(missing)
	return &RuleError{
		Rule:    RuleCoverage,
		Message: fmt.Sprintf("acceptance criteria not covered by any test case: %s", strings.Join(missing, ", ")),
	}
}
