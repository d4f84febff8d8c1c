package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/galatea-comics/galatea/internal/comic"
	"github.com/galatea-comics/galatea/internal/db"
	"github.com/galatea-comics/galatea/internal/profiles"
	"github.com/galatea-comics/galatea/internal/server"
	"github.com/galatea-comics/galatea/internal/session"
	"github.com/galatea-comics/galatea/internal/web"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the comic server",
	Long: `Starts the galatea HTTP server: the browser reader under /comic, the page
API under /api/comic, websocket reader sessions on /ws/reader, and the
profile API under /api/profiles.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}

		database, err := db.Open(cfg.DatabasePath())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fetcher, err := buildFetcher(ctx, cfg, database)
		if err != nil {
			return err
		}

		srv := server.New(server.Config{
			Port:      cfg.Server.Port,
			AllowAll:  cfg.Server.AllowAllOrigins,
			RateLimit: cfg.Server.RateLimit,
			RateBurst: cfg.Server.RateBurst,
		}, database, logger)

		if err := registerAllRoutes(srv, fetcher); err != nil {
			return err
		}

		go func() {
			<-ctx.Done()
			logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("shutdown failed", zap.Error(err))
			}
		}()

		logger.Info("galatea server starting",
			zap.String("version", Version),
			zap.Int("port", cfg.Server.Port),
			zap.String("database", cfg.DatabasePath()),
			zap.String("catalog", string(cfg.Catalog.Source)),
		)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

// registerAllRoutes wires every feature onto the server.
func registerAllRoutes(srv *server.Server, fetcher comic.Fetcher) error {
	// Page API
	comic.RegisterRoutes(srv.API(), fetcher, logger)

	// Profiles
	profiles.RegisterRoutes(srv.API(), profiles.NewStore(srv.Database()))

	// Websocket reader sessions
	session.New(fetcher, logger).RegisterRoutes(srv.Router())

	// Browser reader
	pages, err := web.New(fetcher, logger)
	if err != nil {
		return fmt.Errorf("creating web reader: %w", err)
	}
	pages.RegisterRoutes(srv.Router())

	return nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}
