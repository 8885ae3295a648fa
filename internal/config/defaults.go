package config

import "time"

// DefaultConfigPath is where the loader looks when no path is given and the
// GRAPHSYNC_CONFIG environment variable is unset.
const DefaultConfigPath = "config.yml"

// DefaultConfig returns a Config populated with defaults for everything
// except the source list, which has no sensible default and must come from
// the config file or environment.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			URI:                     "bolt://localhost:7687",
			Username:                "neo4j",
			Password:                "password",
			Database:                "",
			MaxConnectionPoolSize:   50,
			ConnectionTimeout:       30 * time.Second,
			MaxTransactionRetryTime: 30 * time.Second,
		},
		Sync: SyncConfig{
			CategoryPrefixes: []string{"Custom"},
			IncludeReverse:   true,
		},
		Server: ServerConfig{
			Address:      ":8000",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// applyDefaults fills zero-valued optional fields on a loaded config so the
// rest of the code never has to guard against them.
func applyDefaults(cfg *Config) {
	def := DefaultConfig()

	if cfg.Store.MaxConnectionPoolSize == 0 {
		cfg.Store.MaxConnectionPoolSize = def.Store.MaxConnectionPoolSize
	}
	if cfg.Store.ConnectionTimeout == 0 {
		cfg.Store.ConnectionTimeout = def.Store.ConnectionTimeout
	}
	if cfg.Store.MaxTransactionRetryTime == 0 {
		cfg.Store.MaxTransactionRetryTime = def.Store.MaxTransactionRetryTime
	}
	if len(cfg.Sync.CategoryPrefixes) == 0 {
		cfg.Sync.CategoryPrefixes = def.Sync.CategoryPrefixes
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = def.Server.Address
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = def.Server.ReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = def.Server.WriteTimeout
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = def.Logging.Format
	}
}
