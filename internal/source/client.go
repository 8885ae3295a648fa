package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/GldzzPro/graph-sync/internal/config"
)

// Fixed per-call timeouts. Data calls traverse the whole remote dependency
// graph; health checks must answer fast or the source is treated as down.
const (
	DataCallTimeout    = 30 * time.Second
	HealthCheckTimeout = 5 * time.Second
)

// Versioned remote endpoints of the module-graph API.
const (
	endpointModuleGraph   = "/api/graph/module"
	endpointReverseGraph  = "/api/graph/reverse"
	endpointCategoryGraph = "/api/graph/category"
	endpointHealth        = "/web/session/get_session_info"
	jsonRPCVersion        = "2.0"
	jsonRPCMethod         = "call"
)

// RawGraph is the node/edge payload of one remote call, untouched.
type RawGraph struct {
	Nodes []map[string]any `json:"nodes"`
	Edges []map[string]any `json:"edges"`
}

// CallOptions are passed through to the remote graph computation.
type CallOptions struct {
	// MaxDepth bounds traversal depth on the remote side; nil means the
	// remote default, 0 is meaningful (identifiers only, no expansion).
	MaxDepth *int `json:"max_depth,omitempty"`
}

// RPC is the typed remote surface of one source. Implementations issue one
// request per call and never retry.
type RPC interface {
	// HealthCheck reports whether the source is reachable and responsive.
	HealthCheck(ctx context.Context) bool

	// ResolveModules returns the module IDs matching the category prefixes,
	// via a depth-0 lookup that returns identifiers without expansion.
	ResolveModules(ctx context.Context, categoryPrefixes []string) ([]int, error)

	// FetchForward returns the forward dependency subgraph of the modules.
	FetchForward(ctx context.Context, moduleIDs []int, opts CallOptions) (*RawGraph, error)

	// FetchReverse returns the reverse dependency subgraph of the modules.
	FetchReverse(ctx context.Context, moduleIDs []int, opts CallOptions) (*RawGraph, error)
}

// Client implements RPC against one source's JSON-RPC endpoints.
type Client struct {
	source     config.SourceConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for one configured source.
func NewClient(source config.SourceConfig) *Client {
	return &Client{
		source:     source,
		httpClient: &http.Client{},
		logger:     slog.Default().With("source", source.Name),
	}
}

// rpcRequest is the JSON-RPC 2.0 request envelope.
type rpcRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
	ID      int            `json:"id"`
}

// rpcResponse is the JSON-RPC 2.0 response envelope. A populated Error field
// is an application-level failure regardless of HTTP status.
type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Message string `json:"message"`
}

// HealthCheck issues a lightweight probe. Any failure, including timeout,
// reports the source as unhealthy rather than raising.
func (c *Client) HealthCheck(ctx context.Context) bool {
	result, err := c.call(ctx, endpointHealth, map[string]any{}, HealthCheckTimeout)
	if err != nil {
		c.logger.Warn("health check failed", "error", err)
		return false
	}
	return result != nil
}

// ResolveModules looks up module IDs by category prefix using a depth-0
// category call that returns identifiers without graph expansion.
func (c *Client) ResolveModules(ctx context.Context, categoryPrefixes []string) ([]int, error) {
	zero := 0
	params := c.params(map[string]any{
		"category_prefixes": categoryPrefixes,
		"options":           CallOptions{MaxDepth: &zero},
	})

	result, err := c.call(ctx, endpointCategoryGraph, params, DataCallTimeout)
	if err != nil {
		return nil, err
	}

	raw, err := c.decodeGraph(result)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(raw.Nodes))
	for _, node := range raw.Nodes {
		if id, ok := node["id"].(float64); ok {
			ids = append(ids, int(id))
		}
	}
	return ids, nil
}

// FetchForward fetches the forward dependency subgraph of the given modules.
func (c *Client) FetchForward(ctx context.Context, moduleIDs []int, opts CallOptions) (*RawGraph, error) {
	return c.fetchGraph(ctx, endpointModuleGraph, moduleIDs, opts)
}

// FetchReverse fetches the reverse dependency subgraph of the given modules.
func (c *Client) FetchReverse(ctx context.Context, moduleIDs []int, opts CallOptions) (*RawGraph, error) {
	return c.fetchGraph(ctx, endpointReverseGraph, moduleIDs, opts)
}

func (c *Client) fetchGraph(ctx context.Context, endpoint string, moduleIDs []int, opts CallOptions) (*RawGraph, error) {
	params := c.params(map[string]any{
		"module_ids": moduleIDs,
		"options":    opts,
	})

	result, err := c.call(ctx, endpoint, params, DataCallTimeout)
	if err != nil {
		return nil, err
	}
	return c.decodeGraph(result)
}

// params attaches the source's optional credentials to the call parameters.
// Credentials pass through untouched; this layer performs no authentication
// of its own.
func (c *Client) params(base map[string]any) map[string]any {
	if c.source.Database != "" {
		base["db"] = c.source.Database
	}
	if c.source.Username != "" {
		base["login"] = c.source.Username
	}
	if c.source.Password != "" {
		base["password"] = c.source.Password
	}
	return base
}

// call issues one JSON-RPC request with a fixed timeout and classifies every
// failure mode into a RemoteCallError. No retries occur at this layer.
func (c *Client) call(ctx context.Context, endpoint string, params map[string]any, timeout time.Duration) (json.RawMessage, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, err := json.Marshal(rpcRequest{
		JSONRPC: jsonRPCVersion,
		Method:  jsonRPCMethod,
		Params:  params,
		ID:      1,
	})
	if err != nil {
		return nil, &RemoteCallError{
			Source: c.source.Name, Kind: CallErrorApplication,
			Message: "failed to encode request", Cause: err,
		}
	}

	url := strings.TrimSuffix(c.source.URL, "/") + endpoint
	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &RemoteCallError{
			Source: c.source.Name, Kind: CallErrorHTTPStatus,
			Message: "failed to build request", Cause: err,
		}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.source.APIKey != "" {
		req.Header.Set("X-API-Key", c.source.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded {
			return nil, &RemoteCallError{
				Source: c.source.Name, Kind: CallErrorTimeout,
				Message: fmt.Sprintf("request to %s timed out after %s", endpoint, timeout),
				Cause:   err,
			}
		}
		return nil, &RemoteCallError{
			Source: c.source.Name, Kind: CallErrorHTTPStatus,
			Message: fmt.Sprintf("request to %s failed", endpoint), Cause: err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RemoteCallError{
			Source: c.source.Name, Kind: CallErrorHTTPStatus,
			Message: fmt.Sprintf("HTTP %d from %s", resp.StatusCode, endpoint),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteCallError{
			Source: c.source.Name, Kind: CallErrorHTTPStatus,
			Message: "failed to read response body", Cause: err,
		}
	}

	var envelope rpcResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &RemoteCallError{
			Source: c.source.Name, Kind: CallErrorApplication,
			Message: "invalid response envelope", Cause: err,
		}
	}

	if envelope.Error != nil {
		return nil, &RemoteCallError{
			Source: c.source.Name, Kind: CallErrorApplication,
			Message: fmt.Sprintf("remote error: %s", envelope.Error.Message),
		}
	}

	return envelope.Result, nil
}

// decodeGraph parses the node/edge payload out of a call result.
func (c *Client) decodeGraph(result json.RawMessage) (*RawGraph, error) {
	var raw RawGraph
	if err := json.Unmarshal(result, &raw); err != nil {
		return nil, &RemoteCallError{
			Source: c.source.Name, Kind: CallErrorApplication,
			Message: "invalid graph payload", Cause: err,
		}
	}
	return &raw, nil
}
