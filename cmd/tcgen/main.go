// tcgen generates structured test cases from user stories and acceptance
// criteria using a locally hosted model behind Ollama.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"tcgen/internal/core"
)

var (
	cfgFile string
	verbose bool

	// cfg is the effective configuration, resolved before any command runs.
	cfg *core.Config
)

var rootCmd = &cobra.Command{
	Use:   "tcgen",
	Short: "Generate test cases from user stories with a local AI model",
	Long: `tcgen turns a user story and its acceptance criteria into a structured
test case suite using a locally hosted model behind Ollama.

Input is a JSON file with "user_story" and "acceptance_criteria" fields
(run "tcgen template" to create one). Output is JSON, CSV, or both.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = core.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		if verbose {
			cfg.LogLevel = "debug"
		}
		core.SetupLogger(cfg.LogLevel)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to the configuration file (default "+core.DefaultConfigFile+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
