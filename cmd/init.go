package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/galatea-comics/galatea/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize galatea configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose a catalog source and server settings, and writes a .galatea.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.RunWizard(cfgFile)
		if err != nil {
			return err
		}
		if cfg.Catalog.Source == config.SourceSQLite {
			fmt.Fprintln(cmd.OutOrStdout(), "Next: run `galatea catalog import <file>` to fill the database.")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Next: run `galatea serve` or `galatea read`.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
