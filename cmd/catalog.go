package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/galatea-comics/galatea/internal/catalog"
	"github.com/galatea-comics/galatea/internal/config"
	"github.com/galatea-comics/galatea/internal/db"
	"github.com/galatea-comics/galatea/internal/progress"
)

var importPattern string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the stored comic catalog",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file-or-dir>",
	Short: "Import comic pages into the database",
	Long: `Reads pages from a YAML file, or from a directory of per-page YAML files
matched by --pattern, and replaces the catalog stored in the database.
Set catalog.source to sqlite to serve the imported pages.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		src := args[0]
		info, err := os.Stat(src)
		if err != nil {
			return fmt.Errorf("reading %s: %w", src, err)
		}
		var c *catalog.Catalog
		if info.IsDir() {
			c, err = catalog.LoadDir(src, importPattern)
		} else {
			c, err = catalog.LoadFile(src)
		}
		if err != nil {
			return err
		}

		database, err := db.Open(cfg.DatabasePath())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		rec, err := catalog.NewStore(database).Import(cmd.Context(), c, src, progress.NewReporter("Importing pages"))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d page(s), %d panel(s) from %s (run %s)\n",
			rec.Pages, rec.Panels, rec.Source, rec.ID)
		return nil
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the pages of the configured catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		c, err := loadCatalog(cmd.Context(), cfg, nil)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if cfg.Catalog.Source == config.SourceSQLite {
			if rec, err := lastImport(cmd, cfg.DatabasePath()); err == nil && rec != nil {
				fmt.Fprintf(out, "Imported from %s (run %s)\n\n", rec.Source, rec.ID)
			}
		}

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PAGE\tPANELS\tTITLE")
		for i, p := range c.Pages() {
			fmt.Fprintf(w, "%d\t%d\t%s\n", i+1, len(p.Panels), p.Title)
		}
		return w.Flush()
	},
}

func lastImport(cmd *cobra.Command, path string) (*catalog.ImportRecord, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	defer database.Close()
	return catalog.NewStore(database).LastImport(cmd.Context())
}

func init() {
	catalogImportCmd.Flags().StringVar(&importPattern, "pattern", "**/*.yaml", "glob for page files when importing a directory")
	catalogCmd.AddCommand(catalogImportCmd, catalogListCmd)
	rootCmd.AddCommand(catalogCmd)
}
