package store

import (
	"context"
	"time"

	"github.com/GldzzPro/graph-sync/internal/config"
	"github.com/GldzzPro/graph-sync/internal/types"
)

// Store provides access to the property-graph database. Implementations must
// be safe for concurrent use, but a connected Store is scoped to one sync
// run: acquired at the start of loading and released on every exit path.
type Store interface {
	// Connect establishes a connection to the graph database.
	Connect(ctx context.Context) error

	// Close releases all resources and closes the database connection.
	// Safe to call on every exit path, including after a failed Connect.
	Close(ctx context.Context) error

	// Health returns the current health status of the store connection.
	Health(ctx context.Context) types.HealthStatus

	// ExecuteRead runs a Cypher query in a read transaction.
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (QueryResult, error)

	// ExecuteWrite runs a Cypher statement in a write transaction. The
	// statement is the store's atomic unit; there is no transactional
	// rollback across statements.
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (QueryResult, error)
}

// QueryResult represents the result of a Cypher execution.
type QueryResult struct {
	// Records contains the result rows as maps of column name to value.
	Records []map[string]any

	// Columns contains the names of the columns in the result set.
	Columns []string

	// Summary contains metadata about the execution.
	Summary QuerySummary
}

// QuerySummary provides metadata about query execution.
type QuerySummary struct {
	ExecutionTime        time.Duration
	NodesCreated         int
	RelationshipsCreated int
	PropertiesSet        int
}

// Config contains connection options for the graph store.
type Config struct {
	// URI is the connection URI for the graph database.
	// For Neo4j, use:
	//   - "bolt://host:port" for unencrypted connections
	//   - "bolt+s://host:port" for TLS encrypted connections
	//   - "neo4j://" or "neo4j+s://" for routing
	URI string

	// Username for authentication.
	Username string

	// Password for authentication.
	Password string

	// Database name to connect to. Empty string uses the default database.
	Database string

	// MaxConnectionPoolSize limits the number of connections in the pool.
	// Zero or negative values use the driver default.
	MaxConnectionPoolSize int

	// ConnectionTimeout is the maximum time to wait for a connection.
	ConnectionTimeout time.Duration

	// MaxTransactionRetryTime is the maximum time to retry failed transactions.
	MaxTransactionRetryTime time.Duration
}

// ConfigFrom adapts the validated application StoreConfig.
func ConfigFrom(sc config.StoreConfig) Config {
	return Config{
		URI:                     sc.URI,
		Username:                sc.Username,
		Password:                sc.Password,
		Database:                sc.Database,
		MaxConnectionPoolSize:   sc.MaxConnectionPoolSize,
		ConnectionTimeout:       sc.ConnectionTimeout,
		MaxTransactionRetryTime: sc.MaxTransactionRetryTime,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.URI == "" {
		return types.NewError(ErrCodeStoreInvalidConfig, "URI cannot be empty")
	}
	if c.Username == "" {
		return types.NewError(ErrCodeStoreInvalidConfig, "Username cannot be empty")
	}
	if c.Password == "" {
		return types.NewError(ErrCodeStoreInvalidConfig, "Password cannot be empty")
	}
	if c.ConnectionTimeout <= 0 {
		return types.NewError(ErrCodeStoreInvalidConfig, "ConnectionTimeout must be positive")
	}
	if c.MaxTransactionRetryTime <= 0 {
		return types.NewError(ErrCodeStoreInvalidConfig, "MaxTransactionRetryTime must be positive")
	}
	return nil
}
