package config

import "time"

// CatalogSource identifies where the comic catalog is loaded from.
type CatalogSource string

const (
	SourceEmbedded CatalogSource = "embedded"
	SourceFile     CatalogSource = "file"
	SourceDir      CatalogSource = "dir"
	SourceSQLite   CatalogSource = "sqlite"
)

// Config is the top-level galatea configuration, corresponding to .galatea.yml.
type Config struct {
	Catalog CatalogConfig `yaml:"catalog" koanf:"catalog"`
	DataDir string        `yaml:"data_dir" koanf:"data_dir"`
	Server  ServerConfig  `yaml:"server" koanf:"server"`
	Reader  ReaderConfig  `yaml:"reader" koanf:"reader"`
	Log     LogConfig     `yaml:"log" koanf:"log"`
}

// CatalogConfig selects the catalog source. Path is a YAML file for
// SourceFile and a directory for SourceDir; Pattern filters SourceDir.
type CatalogConfig struct {
	Source  CatalogSource `yaml:"source" koanf:"source"`
	Path    string        `yaml:"path,omitempty" koanf:"path"`
	Pattern string        `yaml:"pattern,omitempty" koanf:"pattern"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int     `yaml:"port" koanf:"port"`
	AllowAllOrigins bool    `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	RateLimit       float64 `yaml:"rate_limit" koanf:"rate_limit"`
	RateBurst       int     `yaml:"rate_burst" koanf:"rate_burst"`
}

// ReaderConfig controls how readers fetch pages. An empty RemoteURL means
// pages are resolved in-process.
type ReaderConfig struct {
	RemoteURL    string        `yaml:"remote_url,omitempty" koanf:"remote_url"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" koanf:"fetch_timeout"`
	CacheTTL     time.Duration `yaml:"cache_ttl" koanf:"cache_ttl"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
}
