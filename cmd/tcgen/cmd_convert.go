package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"tcgen/internal/store"
)

var (
	convOutput     string
	convSingleLine bool
	convSummary    bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <input.json>",
	Short: "Convert a saved JSON test case file to CSV",
	Long: `Convert an existing JSON test case file to CSV format. Both the bare
array format and the metadata-wrapped format are accepted. The output path
defaults to the input path with a .csv extension.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputPath := args[0]

		records, err := store.LoadResults(inputPath)
		if err != nil {
			return err
		}

		outputPath := convOutput
		if outputPath == "" {
			outputPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".csv"
		}

		opts := store.CSVOptions{
			PreserveLineBreaks: !convSingleLine,
			IncludeSummary:     convSummary,
		}
		if err := store.WriteCSV(records, outputPath, opts); err != nil {
			return err
		}

		fmt.Printf("Converted %d test cases\n", len(records))
		fmt.Printf("CSV saved to: %s\n", outputPath)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convOutput, "output", "o", "", "Output CSV path (default: input path with .csv extension)")
	convertCmd.Flags().BoolVar(&convSingleLine, "csv-single-line", false, "Join CSV steps on one line instead of preserving line breaks")
	convertCmd.Flags().BoolVar(&convSummary, "csv-summary", false, "Include a summary block at the top of the CSV")
}
