package config

import "time"

const (
	// DefaultPath is the config file read when --config is not given.
	DefaultPath = ".galatea.yml"

	DefaultPort         = 3000
	DefaultFetchTimeout = 10 * time.Second
	DefaultCacheTTL     = 5 * time.Minute
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Source:  SourceEmbedded,
			Pattern: "**/*.yaml",
		},
		DataDir: ".galatea",
		Server: ServerConfig{
			Port:      DefaultPort,
			RateLimit: 20,
			RateBurst: 40,
		},
		Reader: ReaderConfig{
			FetchTimeout: DefaultFetchTimeout,
			CacheTTL:     DefaultCacheTTL,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
