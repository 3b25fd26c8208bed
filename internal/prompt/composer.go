// Package prompt builds the generation prompt sent to the model.
// It knows nothing about models, parsing, or validation; changing prompting
// strategy happens here without rippling through the pipeline.
package prompt

import (
	"fmt"
	"strings"

	"tcgen/pkg/schema"
)

// Composer constructs test case generation prompts.
type Composer struct {
	// IncludeEdgeCases requests edge case and boundary condition coverage.
	IncludeEdgeCases bool

	// IncludeNegativeTests requests error scenario coverage.
	IncludeNegativeTests bool
}

// recordExample is the literal example of the target record shape embedded
// in every prompt. The doubled backslash keeps `\n` as a two-character
// escape inside the JSON string, which is the step separator convention.
const recordExample = `[
  {
    "Test Case ID": "TC001",
    "Test Case Title": "Brief description of what is being tested",
    "Steps": "1. First step\\n2. Second step\\n3. Third step",
    "Expected Result": "Clear description of expected outcome",
    "Linked Acceptance Criterion": "AC1"
  }
]`

// Compose builds the complete generation prompt for a user story and its
// acceptance criteria. Pure function of its inputs. Criteria are numbered
// AC1..ACn in input order; an empty criteria list still yields a prompt,
// coverage enforcement happens downstream.
func (c *Composer) Compose(userStory string, criteria []string) string {
	var sb strings.Builder

	sb.WriteString("You are an expert SDET (Software Development Engineer in Test). Generate comprehensive test cases for the following user story.\n\n")

	sb.WriteString("USER STORY:\n")
	sb.WriteString(userStory)
	sb.WriteString("\n\n")

	sb.WriteString("ACCEPTANCE CRITERIA:\n")
	sb.WriteString(formatCriteria(criteria))
	sb.WriteString("\n\n")

	sb.WriteString("INSTRUCTIONS:\n")
	sb.WriteString("1. Generate test cases that cover ALL acceptance criteria\n")
	sb.WriteString(c.coverageInstructions())
	sb.WriteString("3. Make steps clear, specific, and actionable\n")
	sb.WriteString("4. Each test case must link to at least one acceptance criterion using the AC labels (AC1, AC2, etc.)\n")
	sb.WriteString("5. Return ONLY a valid JSON array with NO additional text, explanations, or markdown formatting before or after\n\n")

	sb.WriteString("REQUIRED JSON FORMAT:\n")
	sb.WriteString(recordExample)
	sb.WriteString("\n\n")

	sb.WriteString("CRITICAL: Output must be valid JSON only. Do not include any text before the opening bracket [ or after the closing bracket ].\n\n")
	sb.WriteString("Generate the test cases now:")

	return sb.String()
}

// formatCriteria numbers the criteria with AC labels so the model can
// reference them. The labels minted here are the same ones coverage
// validation expects.
func formatCriteria(criteria []string) string {
	labels := schema.CriterionLabels(len(criteria))
	lines := make([]string, len(criteria))
	for i, criterion := range criteria {
		lines[i] = fmt.Sprintf("%s: %s", labels[i], strings.TrimSpace(criterion))
	}
	return strings.Join(lines, "\n")
}

// coverageInstructions builds the coverage requirement lines from the
// composer's flags. Positive coverage is always requested.
func (c *Composer) coverageInstructions() string {
	var sb strings.Builder

	sb.WriteString("2. Include positive test cases (happy path scenarios)\n")

	if c.IncludeNegativeTests {
		sb.WriteString("   Include negative test cases (error scenarios)\n")
	}

	if c.IncludeEdgeCases {
		sb.WriteString("   Include edge cases and boundary conditions\n")
	}

	return sb.String()
}
