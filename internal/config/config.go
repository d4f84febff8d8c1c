package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GALATEA_"

// sections are the nested config blocks; GALATEA_SERVER_PORT maps to
// server.port while GALATEA_DATA_DIR stays data_dir.
var sections = []string{"catalog", "server", "reader", "log"}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (GALATEA_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// envKey maps GALATEA_READER_CACHE_TTL to reader.cache_ttl.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, sec := range sections {
		if strings.HasPrefix(key, sec+"_") {
			return sec + "." + strings.TrimPrefix(key, sec+"_")
		}
	}
	return key
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validSources = map[CatalogSource]bool{
	SourceEmbedded: true,
	SourceFile:     true,
	SourceDir:      true,
	SourceSQLite:   true,
}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

var validFormats = map[string]bool{"json": true, "console": true}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if !validSources[c.Catalog.Source] {
		return fmt.Errorf("invalid catalog.source %q: must be one of embedded, file, dir, sqlite", c.Catalog.Source)
	}
	if (c.Catalog.Source == SourceFile || c.Catalog.Source == SourceDir) && c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path is required for source %q", c.Catalog.Source)
	}
	if c.Catalog.Source == SourceSQLite && c.DataDir == "" {
		return fmt.Errorf("data_dir is required for source %q", c.Catalog.Source)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must be non-negative")
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		return fmt.Errorf("server.rate_burst must be at least 1 when rate_limit is set")
	}

	if c.Reader.RemoteURL != "" {
		u, err := url.Parse(c.Reader.RemoteURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid reader.remote_url %q: must be an http(s) URL", c.Reader.RemoteURL)
		}
	}
	if c.Reader.FetchTimeout <= 0 {
		return fmt.Errorf("reader.fetch_timeout must be positive")
	}
	if c.Reader.CacheTTL < 0 {
		return fmt.Errorf("reader.cache_ttl must be non-negative")
	}

	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q: must be one of debug, info, warn, error", c.Log.Level)
	}
	if !validFormats[strings.ToLower(c.Log.Format)] {
		return fmt.Errorf("invalid log.format %q: must be json or console", c.Log.Format)
	}

	return nil
}

// DatabasePath returns the SQLite database location under DataDir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "galatea.db")
}
