package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after applying defaults, the configuration
file, and environment variable overrides.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Model: %s\n", cfg.Model)
		fmt.Printf("Ollama Base URL: %s\n", cfg.OllamaBaseURL)
		fmt.Printf("Temperature: %g\n", cfg.Temperature)
		fmt.Printf("Top P: %g\n", cfg.TopP)
		fmt.Printf("Max Tokens: %d\n", cfg.MaxTokens)
		fmt.Printf("Max Attempts: %d\n", cfg.MaxAttempts)
		fmt.Printf("Include Edge Cases: %t\n", cfg.IncludeEdgeCases)
		fmt.Printf("Include Negative Tests: %t\n", cfg.IncludeNegativeTests)
		fmt.Printf("Strict Validation: %t\n", cfg.StrictValidation)
		fmt.Printf("Output Directory: %s\n", cfg.OutputDir)
		fmt.Printf("CSV Preserve Line Breaks: %t\n", cfg.CSVPreserveLineBreaks)
		fmt.Printf("CSV Include Summary: %t\n", cfg.CSVIncludeSummary)
		fmt.Printf("Web Address: %s:%d\n", cfg.WebHost, cfg.WebPort)
		return nil
	},
}
