package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/galatea-comics/galatea/internal/catalog"
	"github.com/galatea-comics/galatea/internal/comic"
	"github.com/galatea-comics/galatea/internal/config"
	"github.com/galatea-comics/galatea/internal/db"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `galatea init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// loadCatalog reads the catalog from the configured source. database is
// only consulted for the sqlite source and may be nil otherwise.
func loadCatalog(ctx context.Context, cfg *config.Config, database *db.DB) (*catalog.Catalog, error) {
	switch cfg.Catalog.Source {
	case config.SourceFile:
		return catalog.LoadFile(cfg.Catalog.Path)
	case config.SourceDir:
		return catalog.LoadDir(cfg.Catalog.Path, cfg.Catalog.Pattern)
	case config.SourceSQLite:
		if database == nil {
			var err error
			database, err = db.Open(cfg.DatabasePath())
			if err != nil {
				return nil, fmt.Errorf("opening database: %w", err)
			}
			defer database.Close()
		}
		c, err := catalog.NewStore(database).Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading stored catalog: %w\nRun `galatea catalog import` first", err)
		}
		return c, nil
	default:
		return catalog.Embedded()
	}
}

// buildFetcher returns a RemoteFetcher when reader.remote_url is set and a
// LocalFetcher over the configured catalog otherwise.
func buildFetcher(ctx context.Context, cfg *config.Config, database *db.DB) (comic.Fetcher, error) {
	if cfg.Reader.RemoteURL != "" {
		logger.Debug("using remote pages", zap.String("url", cfg.Reader.RemoteURL))
		return comic.NewRemoteFetcher(cfg.Reader.RemoteURL,
			comic.WithTimeout(cfg.Reader.FetchTimeout),
			comic.WithCacheTTL(cfg.Reader.CacheTTL),
			comic.WithLogger(logger),
		), nil
	}

	c, err := loadCatalog(ctx, cfg, database)
	if err != nil {
		return nil, err
	}
	if empty := c.EmptyPages(); len(empty) > 0 {
		logger.Warn("catalog has pages without panels", zap.Ints("pages", empty))
	}
	logger.Debug("catalog loaded",
		zap.String("source", string(cfg.Catalog.Source)),
		zap.Int("pages", c.Len()),
	)
	return comic.NewLocalFetcher(c), nil
}
