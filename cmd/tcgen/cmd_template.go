package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tcgen/internal/store"
)

var templateCmd = &cobra.Command{
	Use:   "template [path]",
	Short: "Create a starter input file",
	Long: `Create a template input file showing the expected JSON format for user
stories and acceptance criteria. Defaults to test_case_input.json.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "test_case_input.json"
		if len(args) == 1 {
			path = args[0]
		}
		if err := store.WriteTemplate(path); err != nil {
			return fmt.Errorf("create template: %w", err)
		}
		fmt.Printf("Template created: %s\n", path)
		fmt.Println("Edit this file with your user story, then run: tcgen generate " + path)
		return nil
	},
}
