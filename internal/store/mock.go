package store

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/GldzzPro/graph-sync/internal/types"
)

// MockCall represents a recorded method call on the mock store.
type MockCall struct {
	Method    string
	Cypher    string
	Timestamp time.Time
}

// MockStore is an in-memory Store for testing. It interprets the statement
// shapes the loader and schema bootstrap emit, so tests can assert on the
// resulting node and relationship state rather than on raw Cypher strings.
type MockStore struct {
	mu sync.RWMutex

	// State
	connected     bool
	nodes         map[string]mockNode
	relationships map[mockRelKey]mockRelationship
	schema        []string
	calls         []MockCall

	// Configurable responses
	connectError   error
	closeError     error
	writeError     error
	edgeWriteError error
	readError      error
}

// mockNode holds the stored state of one upserted node.
type mockNode struct {
	ID     string
	Name   string
	Source string
	Props  map[string]any
}

type mockRelKey struct {
	FromID string
	ToID   string
	Label  string
}

// mockRelationship holds the stored state of one upserted relationship.
type mockRelationship struct {
	FromID string
	ToID   string
	Label  string
	Props  map[string]any
}

// NewMockStore creates a new mock store for testing.
func NewMockStore() *MockStore {
	return &MockStore{
		nodes:         make(map[string]mockNode),
		relationships: make(map[mockRelKey]mockRelationship),
	}
}

// Connect records the call and simulates connection.
func (m *MockStore) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("Connect", "")
	if m.connectError != nil {
		return m.connectError
	}
	m.connected = true
	return nil
}

// Close records the call and simulates disconnection.
func (m *MockStore) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("Close", "")
	if m.closeError != nil {
		return m.closeError
	}
	m.connected = false
	return nil
}

// Health reports healthy whenever the mock is connected.
func (m *MockStore) Health(ctx context.Context) types.HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected {
		return types.Unhealthy("not connected")
	}
	return types.Healthy("mock store")
}

// ExecuteRead answers the loader's verification reads from mock state.
func (m *MockStore) ExecuteRead(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("ExecuteRead", cypher)
	if m.readError != nil {
		return QueryResult{}, m.readError
	}

	switch {
	case strings.Contains(cypher, "count(n)"):
		return QueryResult{
			Records: []map[string]any{{"count": int64(len(m.nodes))}},
			Columns: []string{"count"},
		}, nil
	case strings.Contains(cypher, "type(r)"):
		counts := make(map[string]int64)
		for key := range m.relationships {
			counts[key.Label]++
		}
		result := QueryResult{Columns: []string{"label", "count"}}
		for label, count := range counts {
			result.Records = append(result.Records, map[string]any{
				"label": label,
				"count": count,
			})
		}
		return result, nil
	}

	return QueryResult{}, nil
}

// ExecuteWrite interprets schema, node-upsert and edge-upsert statements.
func (m *MockStore) ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("ExecuteWrite", cypher)
	if m.writeError != nil {
		return QueryResult{}, m.writeError
	}

	switch {
	case strings.HasPrefix(cypher, "CREATE CONSTRAINT"), strings.HasPrefix(cypher, "CREATE INDEX"):
		m.schema = append(m.schema, cypher)
		return QueryResult{}, nil
	case strings.Contains(cypher, "UNWIND $nodes"):
		return m.applyNodeUpsert(params)
	case strings.Contains(cypher, "UNWIND $edges"):
		if m.edgeWriteError != nil {
			return QueryResult{}, m.edgeWriteError
		}
		return m.applyEdgeUpsert(cypher, params)
	}

	return QueryResult{}, nil
}

func (m *MockStore) applyNodeUpsert(params map[string]any) (QueryResult, error) {
	records, _ := params["nodes"].([]map[string]any)
	created := 0
	propertiesSet := 0
	for _, record := range records {
		id, _ := record["id"].(string)
		if id == "" {
			return QueryResult{}, types.NewError(ErrCodeStoreQueryFailed,
				"node record missing id")
		}
		if _, exists := m.nodes[id]; !exists {
			created++
		}
		name, _ := record["name"].(string)
		source, _ := record["source"].(string)
		props, _ := record["props"].(map[string]any)
		// Mirrors the statement's SET clauses: the spread props plus name,
		// source and last_updated.
		propertiesSet += len(props) + 3
		m.nodes[id] = mockNode{ID: id, Name: name, Source: source, Props: props}
	}
	return QueryResult{Summary: QuerySummary{
		NodesCreated:  created,
		PropertiesSet: propertiesSet,
	}}, nil
}

var relLabelPattern = regexp.MustCompile("MERGE \\(a\\)-\\[r:`([^`]+)`\\]->\\(b\\)")

func (m *MockStore) applyEdgeUpsert(cypher string, params map[string]any) (QueryResult, error) {
	match := relLabelPattern.FindStringSubmatch(cypher)
	if match == nil {
		return QueryResult{}, types.NewError(ErrCodeStoreQueryFailed,
			"unrecognized edge statement")
	}
	label := match[1]

	records, _ := params["edges"].([]map[string]any)
	created := 0
	propertiesSet := 0
	for _, record := range records {
		from, _ := record["source"].(string)
		to, _ := record["target"].(string)
		if _, ok := m.nodes[from]; !ok {
			continue
		}
		if _, ok := m.nodes[to]; !ok {
			continue
		}
		key := mockRelKey{FromID: from, ToID: to, Label: label}
		if _, exists := m.relationships[key]; !exists {
			created++
		}
		props, _ := record["props"].(map[string]any)
		// Spread props plus last_updated.
		propertiesSet += len(props) + 1
		m.relationships[key] = mockRelationship{FromID: from, ToID: to, Label: label, Props: props}
	}
	return QueryResult{Summary: QuerySummary{
		RelationshipsCreated: created,
		PropertiesSet:        propertiesSet,
	}}, nil
}

func (m *MockStore) record(method, cypher string) {
	m.calls = append(m.calls, MockCall{Method: method, Cypher: cypher, Timestamp: time.Now()})
}

// SetConnectError configures Connect to fail with the given error.
func (m *MockStore) SetConnectError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectError = err
}

// SetCloseError configures Close to fail with the given error.
func (m *MockStore) SetCloseError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeError = err
}

// SetWriteError configures ExecuteWrite to fail with the given error.
func (m *MockStore) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeError = err
}

// SetEdgeWriteError configures only edge-upsert writes to fail.
func (m *MockStore) SetEdgeWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edgeWriteError = err
}

// SetReadError configures ExecuteRead to fail with the given error.
func (m *MockStore) SetReadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readError = err
}

// GetNodes returns a copy of the stored nodes keyed by id.
func (m *MockStore) GetNodes() map[string]mockNode {
	m.mu.RLock()
	defer m.mu.RUnlock()

	nodes := make(map[string]mockNode, len(m.nodes))
	for id, node := range m.nodes {
		nodes[id] = node
	}
	return nodes
}

// GetRelationships returns a copy of the stored relationships.
func (m *MockStore) GetRelationships() []mockRelationship {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rels := make([]mockRelationship, 0, len(m.relationships))
	for _, rel := range m.relationships {
		rels = append(rels, rel)
	}
	return rels
}

// SchemaStatements returns the schema statements applied so far.
func (m *MockStore) SchemaStatements() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.schema...)
}

// GetCallsByMethod returns all recorded calls for the given method.
func (m *MockStore) GetCallsByMethod(method string) []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var calls []MockCall
	for _, call := range m.calls {
		if call.Method == method {
			calls = append(calls, call)
		}
	}
	return calls
}

// IsConnected reports whether the mock is currently connected.
func (m *MockStore) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Reset clears all state and recorded calls.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connected = false
	m.nodes = make(map[string]mockNode)
	m.relationships = make(map[mockRelKey]mockRelationship)
	m.schema = nil
	m.calls = nil
	m.connectError = nil
	m.closeError = nil
	m.writeError = nil
	m.edgeWriteError = nil
	m.readError = nil
}
