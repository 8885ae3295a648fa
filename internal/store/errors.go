package store

import "github.com/GldzzPro/graph-sync/internal/types"

// Graph store error codes
const (
	// Connection errors
	ErrCodeStoreConnectionFailed types.ErrorCode = "STORE_CONNECTION_FAILED"
	ErrCodeStoreConnectionClosed types.ErrorCode = "STORE_CONNECTION_CLOSED"

	// Configuration errors
	ErrCodeStoreInvalidConfig types.ErrorCode = "STORE_INVALID_CONFIG"

	// Schema errors: fatal to the run, ingestion must not proceed without
	// the uniqueness guarantee the bootstrap provides.
	ErrCodeSchemaBootstrapFailed types.ErrorCode = "STORE_SCHEMA_BOOTSTRAP_FAILED"

	// Write errors, tagged by phase
	ErrCodeNodeWriteFailed types.ErrorCode = "STORE_NODE_WRITE_FAILED"
	ErrCodeEdgeWriteFailed types.ErrorCode = "STORE_EDGE_WRITE_FAILED"

	// Query errors
	ErrCodeStoreQueryFailed types.ErrorCode = "STORE_QUERY_FAILED"
)
