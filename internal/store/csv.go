package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"tcgen/pkg/schema"
)

// CSVOptions controls CSV rendering.
//
// PreserveLineBreaks decides how the Steps separator is flattened for
// spreadsheet display: when true, each literal `\n` becomes a real newline
// inside a quoted cell (Excel renders multi-line cells); when false, steps
// are joined on one line with "; ". ReadCSV reverses whichever flattening
// was applied. The preserve-line-breaks round trip is exact; the
// single-line one is best-effort, since a "; " occurring inside a step's
// own text is indistinguishable from the separator on re-parse.
type CSVOptions struct {
	PreserveLineBreaks bool
	IncludeSummary     bool
}

// DefaultCSVOptions preserves line breaks and omits the summary block.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{PreserveLineBreaks: true}
}

// WriteCSV writes the records as a CSV file with the canonical column
// order. With IncludeSummary, a small statistics block precedes the header.
func WriteCSV(records []schema.TestCase, path string, opts CSVOptions) error {
	if len(records) == 0 {
		return errors.New("no test cases to convert")
	}

	var buf strings.Builder
	w := csv.NewWriter(&buf)

	fields := schema.RequiredFields()
	if opts.IncludeSummary {
		writeSummaryRows(w, records, len(fields))
	}
	if err := w.Write(fields); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, tc := range records {
		row := make([]string, len(fields))
		for i, field := range fields {
			row[i] = flattenField(field, tc.Field(field), opts.PreserveLineBreaks)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return writeFileAtomic(path, []byte(buf.String()))
}

// ReadCSV reads a CSV file previously written by WriteCSV back into
// records, undoing the Steps flattening. Summary rows and blank rows are
// skipped.
func ReadCSV(path string, opts CSVOptions) ([]schema.TestCase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv file %s: %w", path, err)
	}

	fields := schema.RequiredFields()
	var records []schema.TestCase
	headerSeen := false
	for _, row := range rows {
		if len(row) == 0 || row[0] == "" || strings.HasPrefix(row[0], "SUMMARY") {
			continue
		}
		if !headerSeen {
			if row[0] == fields[0] {
				headerSeen = true
				continue
			}
			// Summary label rows precede the header.
			continue
		}

		var tc schema.TestCase
		for i, field := range fields {
			value := ""
			if i < len(row) {
				value = strings.TrimSpace(row[i])
			}
			setField(&tc, field, unflattenField(field, value, opts.PreserveLineBreaks))
		}
		records = append(records, tc)
	}

	if !headerSeen {
		return nil, fmt.Errorf("csv file %s: header row not found", path)
	}
	return records, nil
}

func flattenField(field, value string, preserveLineBreaks bool) string {
	if field != schema.FieldSteps || value == "" {
		return value
	}
	if preserveLineBreaks {
		return strings.ReplaceAll(value, `\n`, "\n")
	}
	return strings.ReplaceAll(value, `\n`, "; ")
}

func unflattenField(field, value string, preserveLineBreaks bool) string {
	if field != schema.FieldSteps || value == "" {
		return value
	}
	if preserveLineBreaks {
		return strings.ReplaceAll(value, "\n", `\n`)
	}
	return strings.ReplaceAll(value, "; ", `\n`)
}

func setField(tc *schema.TestCase, field, value string) {
	switch field {
	case schema.FieldID:
		tc.ID = value
	case schema.FieldTitle:
		tc.Title = value
	case schema.FieldSteps:
		tc.Steps = value
	case schema.FieldExpectedResult:
		tc.ExpectedResult = value
	case schema.FieldCriterion:
		tc.Criterion = value
	}
}

// writeSummaryRows emits the statistics block: a SUMMARY marker, totals,
// the sorted covered-criteria list, and a blank separator row. Labels go in
// the first column and values in the second so spreadsheet readers show
// them as ordinary rows.
func writeSummaryRows(w *csv.Writer, records []schema.TestCase, width int) {
	covered := make(map[string]bool)
	for _, tc := range records {
		covered[tc.Criterion] = true
	}
	labels := make([]string, 0, len(covered))
	for label := range covered {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	rows := [][2]string{
		{"SUMMARY", ""},
		{"Total Test Cases", fmt.Sprintf("%d", len(records))},
		{"Acceptance Criteria Covered", strings.Join(labels, ", ")},
		{"", ""},
	}
	for _, pair := range rows {
		row := make([]string, width)
		row[0], row[1] = pair[0], pair[1]
		w.Write(row)
	}
}
