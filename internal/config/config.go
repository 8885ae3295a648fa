package config

import (
	"time"
)

// Config is the root configuration for the graph-sync service.
type Config struct {
	Sources []SourceConfig `mapstructure:"sources" yaml:"sources" validate:"required,min=1,dive"`
	Store   StoreConfig    `mapstructure:"store" yaml:"store" validate:"required"`
	Sync    SyncConfig     `mapstructure:"sync" yaml:"sync"`
	Server  ServerConfig   `mapstructure:"server" yaml:"server"`
	Logging LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// SourceConfig describes one remote source exposing the dependency-graph API.
// A source is immutable for the duration of a sync run.
type SourceConfig struct {
	// Name uniquely identifies the source; it prefixes every node ID the
	// source contributes.
	Name string `mapstructure:"name" yaml:"name" validate:"required"`

	// URL is the base URL of the source's JSON-RPC endpoints.
	URL string `mapstructure:"url" yaml:"url" validate:"required,url"`

	// Optional credentials, passed through to the remote call.
	Database string `mapstructure:"database" yaml:"database,omitempty"`
	Username string `mapstructure:"username" yaml:"username,omitempty"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	APIKey   string `mapstructure:"api_key" yaml:"api_key,omitempty"`
}

// StoreConfig contains Neo4j connection parameters.
type StoreConfig struct {
	// URI is the connection URI, e.g. "bolt://host:7687" or "neo4j://host".
	URI      string `mapstructure:"uri" yaml:"uri" validate:"required"`
	Username string `mapstructure:"username" yaml:"username" validate:"required"`
	Password string `mapstructure:"password" yaml:"password" validate:"required"`

	// Database name to connect to. Empty string uses the default database.
	Database string `mapstructure:"database" yaml:"database,omitempty"`

	// MaxConnectionPoolSize limits the number of connections in the pool.
	MaxConnectionPoolSize int `mapstructure:"max_connection_pool_size" yaml:"max_connection_pool_size"`

	// ConnectionTimeout is the maximum time to wait for a connection.
	ConnectionTimeout time.Duration `mapstructure:"connection_timeout" yaml:"connection_timeout"`

	// MaxTransactionRetryTime is the maximum time the driver retries failed
	// transactions within its own atomic unit.
	MaxTransactionRetryTime time.Duration `mapstructure:"max_transaction_retry_time" yaml:"max_transaction_retry_time"`
}

// SyncConfig carries run defaults applied when a trigger omits them.
type SyncConfig struct {
	// CategoryPrefixes filters which module categories seed a run when no
	// explicit module IDs are given.
	CategoryPrefixes []string `mapstructure:"category_prefixes" yaml:"category_prefixes"`

	// IncludeReverse controls whether reverse dependency fragments are
	// fetched in addition to forward ones.
	IncludeReverse bool `mapstructure:"include_reverse" yaml:"include_reverse"`

	// MaxDepth bounds graph traversal on the remote side; zero means the
	// remote default.
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth" validate:"min=0"`
}

// ServerConfig contains HTTP front-door settings.
type ServerConfig struct {
	Address string `mapstructure:"address" yaml:"address"`

	ReadTimeout  time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=text json"`
}
