package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/galatea-comics/galatea/internal/reader"
	"github.com/galatea-comics/galatea/internal/tui"
)

var readStyle string

var readCmd = &cobra.Command{
	Use:   "read [page]",
	Short: "Read the comic in the terminal",
	Long: `Opens the terminal reader on the given page (default 1).

Keys: ←/h previous panel, →/l/space next panel, 1-9 jump to panel,
f fullscreen, +/- zoom, r retry, home first page, q quit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fetcher, err := buildFetcher(ctx, cfg, nil)
		if err != nil {
			return err
		}

		// Log lines on stderr would draw over the reader.
		log := logger
		if !verbose {
			log = zap.NewNop()
		}

		ctrl := reader.New(fetcher, reader.WithLogger(log))
		defer ctrl.Close()

		page := "1"
		if len(args) == 1 {
			page = args[0]
		}
		return tui.Run(ctx, ctrl, page, tui.Options{
			MarkdownStyle: readStyle,
			Logger:        log,
		})
	},
}

func init() {
	readCmd.Flags().StringVar(&readStyle, "style", "dark", "markdown style: dark, light, or notty")
	rootCmd.AddCommand(readCmd)
}
