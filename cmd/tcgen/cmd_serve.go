package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tcgen/internal/llm"
	"tcgen/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web API",
	Long: `Run the HTTP API: POST /api/generate runs the pipeline, GET
/api/logs/<session> streams progress as server-sent events, and
/api/health and /api/config report backend status and settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := llm.NewClient(&llm.Config{
			BaseURL: cfg.OllamaBaseURL,
			Model:   cfg.Model,
		})
		if err != nil {
			return remediate(err, cfg.Model)
		}

		fmt.Printf("Model: %s\n", cfg.Model)
		fmt.Printf("Output: %s\n", cfg.OutputDir)
		fmt.Printf("Listening on http://%s:%d\n", cfg.WebHost, cfg.WebPort)
		return web.NewServer(cfg, client).Run()
	},
}
