package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tcgen/internal/generator"
	"tcgen/internal/llm"
	"tcgen/internal/store"
	"tcgen/pkg/schema"
)

var (
	genOutput        string
	genFormat        string
	genModel         string
	genMaxAttempts   int
	genTemperature   float64
	genCSVSingleLine bool
	genCSVSummary    bool
	genWithMetadata  bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <input.json>",
	Short: "Generate test cases from a user story file",
	Long: `Generate test cases from a JSON input file containing a user story and
acceptance criteria. The model output is extracted, validated, and retried
with escalating temperature until a structurally sound suite is produced.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "Output path without extension (default: <output_dir>/test_cases)")
	generateCmd.Flags().StringVar(&genFormat, "format", "json", "Output format: json, csv, or both")
	generateCmd.Flags().StringVar(&genModel, "model", "", "Model name (default from configuration)")
	generateCmd.Flags().IntVar(&genMaxAttempts, "max-attempts", 0, "Maximum generation attempts (default from configuration)")
	generateCmd.Flags().Float64Var(&genTemperature, "temperature", 0, "Base sampling temperature (default from configuration)")
	generateCmd.Flags().BoolVar(&genCSVSingleLine, "csv-single-line", false, "Join CSV steps on one line instead of preserving line breaks")
	generateCmd.Flags().BoolVar(&genCSVSummary, "csv-summary", false, "Include a summary block at the top of the CSV")
	generateCmd.Flags().BoolVar(&genWithMetadata, "with-metadata", false, "Wrap JSON output with generation metadata")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	inputFile := args[0]

	if genFormat != "json" && genFormat != "csv" && genFormat != "both" {
		return fmt.Errorf("invalid format %q: use json, csv, or both", genFormat)
	}

	model := cfg.Model
	if genModel != "" {
		model = genModel
	}
	maxAttempts := cfg.MaxAttempts
	if genMaxAttempts > 0 {
		maxAttempts = genMaxAttempts
	}
	// 0 is a valid temperature, so only a flag the user actually set
	// overrides the configuration.
	temperature := cfg.Temperature
	if cmd.Flags().Changed("temperature") {
		temperature = genTemperature
	}

	story, criteria, err := store.LoadStory(inputFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("file not found: %s (use \"tcgen template\" to create a starter file)", inputFile)
		}
		return err
	}
	fmt.Printf("Loaded user story with %d acceptance criteria\n", len(criteria))

	client, err := llm.NewClient(&llm.Config{BaseURL: cfg.OllamaBaseURL, Model: model})
	if err != nil {
		return remediate(err, model)
	}

	fmt.Printf("Generating test cases using %s...\n", model)
	gen := generator.New(client, generator.Options{
		MaxAttempts:          maxAttempts,
		Temperature:          &temperature,
		TopP:                 &cfg.TopP,
		MaxTokens:            cfg.MaxTokens,
		IncludeEdgeCases:     cfg.IncludeEdgeCases,
		IncludeNegativeTests: cfg.IncludeNegativeTests,
		StrictValidation:     cfg.StrictValidation,
		Model:                model,
		Notifier: generator.NotifierFunc(func(e generator.Event) {
			if e.Type != generator.EventSucceeded {
				fmt.Println("  " + e.Message())
			}
		}),
	})

	records, err := gen.Run(cmd.Context(), story, criteria)
	if err != nil {
		return remediate(err, model)
	}
	fmt.Printf("Generated %d test cases\n", len(records))

	if err := saveResults(records, inputFile, model, maxAttempts); err != nil {
		return fmt.Errorf("save output: %w", err)
	}

	summary := schema.Summarize(records)
	fmt.Printf("Coverage: %d acceptance criteria covered\n", summary.CoverageCount)
	return nil
}

func saveResults(records []schema.TestCase, inputFile, model string, maxAttempts int) error {
	base := genOutput
	if base == "" {
		name := "test_cases"
		if cfg.AppendDatetime {
			name = timestampName(name)
		}
		base = filepath.Join(cfg.OutputDir, name)
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))

	csvOpts := store.CSVOptions{
		PreserveLineBreaks: !genCSVSingleLine,
		IncludeSummary:     genCSVSummary,
	}

	if genFormat == "json" || genFormat == "both" {
		jsonPath := base + ".json"
		if genWithMetadata {
			meta := map[string]any{
				"model":        model,
				"max_attempts": maxAttempts,
				"input_file":   inputFile,
			}
			if err := store.SaveWithMetadata(records, jsonPath, meta); err != nil {
				return err
			}
		} else if err := store.SaveJSON(records, jsonPath); err != nil {
			return err
		}
		fmt.Printf("JSON saved to: %s\n", jsonPath)
	}

	if genFormat == "csv" || genFormat == "both" {
		csvPath := base + ".csv"
		if err := store.WriteCSV(records, csvPath, csvOpts); err != nil {
			return err
		}
		fmt.Printf("CSV saved to: %s\n", csvPath)
	}
	return nil
}

// remediate rewraps backend connectivity failures with the steps that fix
// them; other errors pass through unchanged.
func remediate(err error, model string) error {
	var clientErr *llm.ClientError
	if errors.As(err, &clientErr) && !clientErr.Retryable() {
		return fmt.Errorf(`%w

Make sure Ollama is running with the %s model:
  - Check: ollama list
  - Install: ollama pull %s
  - Start: ollama serve`, err, model, model)
	}
	return err
}

// timestampName appends a wall clock suffix so repeated runs do not
// overwrite each other.
func timestampName(base string) string {
	return fmt.Sprintf("%s_%s", base, time.Now().Format("20060102_150405"))
}
