package store

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/GldzzPro/graph-sync/internal/types"
)

// Neo4jStore implements Store for Neo4j graph databases.
type Neo4jStore struct {
	config Config
	driver neo4j.DriverWithContext
}

// NewNeo4jStore creates a new Neo4j store with the given configuration.
// The store must be connected via Connect() before use.
func NewNeo4jStore(config Config) (*Neo4jStore, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Neo4jStore{
		config: config,
	}, nil
}

// Connect establishes a connection to the Neo4j database.
// Uses exponential backoff for connection retries.
func (s *Neo4jStore) Connect(ctx context.Context) error {
	auth := neo4j.BasicAuth(s.config.Username, s.config.Password, "")

	driverConfig := func(config *neo4j.Config) {
		config.MaxConnectionPoolSize = s.config.MaxConnectionPoolSize
		config.ConnectionAcquisitionTimeout = s.config.ConnectionTimeout
		config.MaxTransactionRetryTime = s.config.MaxTransactionRetryTime
		// Encryption is controlled by the URI scheme (bolt:// vs bolt+s://).
	}

	var driver neo4j.DriverWithContext
	var lastErr error
	maxRetries := 5
	baseDelay := 100 * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		var err error
		driver, err = neo4j.NewDriverWithContext(s.config.URI, auth, driverConfig)
		if err == nil {
			err = driver.VerifyConnectivity(ctx)
			if err == nil {
				s.driver = driver
				return nil
			}
		}

		lastErr = err

		if ctx.Err() != nil {
			return types.WrapError(ErrCodeStoreConnectionFailed,
				"connection attempt cancelled", ctx.Err())
		}

		// Backoff delay: baseDelay * 2^attempt, capped at the connection timeout.
		delay := baseDelay * time.Duration(math.Pow(2, float64(attempt)))
		if delay > s.config.ConnectionTimeout {
			delay = s.config.ConnectionTimeout
		}

		select {
		case <-time.After(delay):
			continue
		case <-ctx.Done():
			return types.WrapError(ErrCodeStoreConnectionFailed,
				"connection attempt cancelled", ctx.Err())
		}
	}

	// Exhausting the backoff is transient from the caller's view: the store
	// may come back before the next trigger.
	return types.WrapRetryableError(ErrCodeStoreConnectionFailed,
		fmt.Sprintf("failed to connect after %d attempts", maxRetries), lastErr)
}

// Close releases all resources and closes the database connection.
func (s *Neo4jStore) Close(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	if err := s.driver.Close(ctx); err != nil {
		return types.WrapError(ErrCodeStoreConnectionClosed,
			"failed to close driver", err)
	}

	s.driver = nil
	return nil
}

// Health returns the current health status of the Neo4j connection.
func (s *Neo4jStore) Health(ctx context.Context) types.HealthStatus {
	if s.driver == nil {
		return types.Unhealthy("driver not initialized")
	}

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.driver.VerifyConnectivity(healthCtx); err != nil {
		return types.Unhealthy(fmt.Sprintf("connectivity check failed: %v", err))
	}

	return types.Healthy("connected to Neo4j")
}

// ExecuteRead runs a Cypher query in a read transaction.
func (s *Neo4jStore) ExecuteRead(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	return s.execute(ctx, cypher, params, neo4j.AccessModeRead)
}

// ExecuteWrite runs a Cypher statement in a write transaction.
func (s *Neo4jStore) ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	return s.execute(ctx, cypher, params, neo4j.AccessModeWrite)
}

func (s *Neo4jStore) execute(ctx context.Context, cypher string, params map[string]any, mode neo4j.AccessMode) (QueryResult, error) {
	if s.driver == nil {
		return QueryResult{}, types.NewError(ErrCodeStoreConnectionClosed,
			"driver not connected")
	}

	startTime := time.Now()

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.config.Database,
		AccessMode:   mode,
	})
	defer session.Close(ctx)

	work := func(tx neo4j.ManagedTransaction) (any, error) {
		neoResult, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}

		records, err := neoResult.Collect(ctx)
		if err != nil {
			return nil, err
		}

		summary, err := neoResult.Consume(ctx)
		if err != nil {
			return nil, err
		}

		return convertNeo4jResult(records, summary), nil
	}

	var result any
	var err error
	if mode == neo4j.AccessModeRead {
		result, err = session.ExecuteRead(ctx, work)
	} else {
		result, err = session.ExecuteWrite(ctx, work)
	}

	if err != nil {
		return QueryResult{}, types.WrapError(ErrCodeStoreQueryFailed,
			"query execution failed", err)
	}

	queryResult := result.(QueryResult)
	queryResult.Summary.ExecutionTime = time.Since(startTime)

	return queryResult, nil
}

// convertNeo4jResult converts Neo4j records and summary to our QueryResult format.
func convertNeo4jResult(records []*neo4j.Record, summary neo4j.ResultSummary) QueryResult {
	result := QueryResult{
		Records: make([]map[string]any, 0, len(records)),
		Columns: []string{},
	}

	if len(records) > 0 {
		result.Columns = records[0].Keys
	}

	for _, record := range records {
		recordMap := make(map[string]any)
		for i, key := range record.Keys {
			recordMap[key] = record.Values[i]
		}
		result.Records = append(result.Records, recordMap)
	}

	if summary != nil && summary.Counters() != nil {
		counters := summary.Counters()
		result.Summary = QuerySummary{
			NodesCreated:         counters.NodesCreated(),
			RelationshipsCreated: counters.RelationshipsCreated(),
			PropertiesSet:        counters.PropertiesSet(),
		}
	}

	return result
}
