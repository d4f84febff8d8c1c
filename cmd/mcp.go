package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mcpserver "github.com/galatea-comics/galatea/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing get_comic_page and list_comic_pages tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		fetcher, err := buildFetcher(cmd.Context(), cfg, nil)
		if err != nil {
			return err
		}

		mcpserver.Version = Version
		logger.Info("galatea MCP server started on stdio",
			zap.String("catalog", string(cfg.Catalog.Source)),
			zap.String("remote", cfg.Reader.RemoteURL),
		)

		return mcpserver.NewServer(fetcher, logger).Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
