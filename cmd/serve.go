package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/promptflow/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing workflow generation and the embeddings tool to AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cfg, true)
		if err != nil {
			return err
		}
		defer a.Close()

		if cfg.APIKey == "" {
			fmt.Fprintln(os.Stderr, "Warning: no API key configured; tool calls will fail until one is set.")
		}

		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "promptflow MCP server started on stdio (model=%s, history=%s)\n", cfg.Model, cfg.HistoryPath())

		srv := mcpserver.NewServer(a.workflow, a.store, a.embedding, nil)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
