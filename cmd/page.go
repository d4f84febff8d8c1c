package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/galatea-comics/galatea/internal/comic"
	mcpserver "github.com/galatea-comics/galatea/internal/mcp"
)

var pagePanel int

var pageCmd = &cobra.Command{
	Use:   "page <number>",
	Short: "Print one page of the comic as text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		n, err := comic.ParsePageNumber(args[0])
		if err != nil {
			return fmt.Errorf("%s", comic.Describe(err))
		}

		fetcher, err := buildFetcher(cmd.Context(), cfg, nil)
		if err != nil {
			return err
		}
		res, err := fetcher.Fetch(cmd.Context(), n)
		if err != nil {
			return fmt.Errorf("%s", comic.Describe(err))
		}
		if pagePanel >= len(res.Page.Panels) {
			return fmt.Errorf("page %d has %d panel(s)", res.PageNumber, len(res.Page.Panels))
		}

		fmt.Fprint(cmd.OutOrStdout(), mcpserver.FormatPage(res, pagePanel))
		return nil
	},
}

func init() {
	pageCmd.Flags().IntVar(&pagePanel, "panel", -1, "only print this 0-based panel")
	rootCmd.AddCommand(pageCmd)
}
