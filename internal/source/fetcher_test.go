package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GldzzPro/graph-sync/internal/config"
	"github.com/GldzzPro/graph-sync/internal/types"
)

// fakeRPC is a configurable in-memory RPC for fetcher tests.
type fakeRPC struct {
	healthy bool

	resolved   []int
	resolveErr error

	forward    *RawGraph
	forwardErr error

	reverse    *RawGraph
	reverseErr error

	forwardCalls [][]int
	reverseCalls [][]int
	resolveCalls [][]string
}

func (f *fakeRPC) HealthCheck(ctx context.Context) bool { return f.healthy }

func (f *fakeRPC) ResolveModules(ctx context.Context, prefixes []string) ([]int, error) {
	f.resolveCalls = append(f.resolveCalls, prefixes)
	return f.resolved, f.resolveErr
}

func (f *fakeRPC) FetchForward(ctx context.Context, ids []int, opts CallOptions) (*RawGraph, error) {
	f.forwardCalls = append(f.forwardCalls, ids)
	return f.forward, f.forwardErr
}

func (f *fakeRPC) FetchReverse(ctx context.Context, ids []int, opts CallOptions) (*RawGraph, error) {
	f.reverseCalls = append(f.reverseCalls, ids)
	return f.reverse, f.reverseErr
}

func testFetcher(rpc RPC) *Fetcher {
	return newFetcher(config.SourceConfig{Name: "prod", URL: "http://prod.example.com"}, rpc)
}

func TestFetcher_UnhealthySourceSkipsDataCalls(t *testing.T) {
	rpc := &fakeRPC{healthy: false}

	result := testFetcher(rpc).Fetch(context.Background(), Options{ModuleIDs: []int{1}})

	assert.Equal(t, types.SourceStatusError, result.Status)
	assert.Equal(t, "instance not healthy or not reachable", result.Error)
	assert.Nil(t, result.Graph)
	assert.Empty(t, rpc.forwardCalls, "no data calls may follow a failed health check")
}

func TestFetcher_ForwardOnly(t *testing.T) {
	rpc := &fakeRPC{
		healthy: true,
		forward: &RawGraph{
			Nodes: []map[string]any{{"id": float64(1), "label": "sale"}, {"id": float64(2), "label": "stock"}},
			Edges: []map[string]any{{"from": float64(1), "to": float64(2)}},
		},
	}

	result := testFetcher(rpc).Fetch(context.Background(), Options{ModuleIDs: []int{1, 2}})

	require.Equal(t, types.SourceStatusSuccess, result.Status)
	assert.Equal(t, 2, result.Nodes)
	assert.Equal(t, 1, result.Edges)
	assert.Equal(t, [][]int{{1, 2}}, rpc.forwardCalls)
	assert.Empty(t, rpc.reverseCalls)

	require.NotNil(t, result.Graph)
	assert.Equal(t, "prod_1", result.Graph.Nodes[0].ID)
}

func TestFetcher_MergesForwardAndReverse(t *testing.T) {
	rpc := &fakeRPC{
		healthy: true,
		forward: &RawGraph{
			Nodes: []map[string]any{{"id": float64(1)}, {"id": float64(2)}},
			Edges: []map[string]any{{"from": float64(1), "to": float64(2)}},
		},
		reverse: &RawGraph{
			Nodes: []map[string]any{{"id": float64(2)}, {"id": float64(3)}},
			Edges: []map[string]any{{"from": float64(2), "to": float64(1)}},
		},
	}

	result := testFetcher(rpc).Fetch(context.Background(), Options{
		ModuleIDs:      []int{1},
		IncludeReverse: true,
	})

	require.Equal(t, types.SourceStatusSuccess, result.Status)
	assert.Equal(t, 3, result.Nodes, "overlapping node must be deduplicated")
	assert.Equal(t, 2, result.Edges)
}

func TestFetcher_ForwardFailureFailsSource(t *testing.T) {
	rpc := &fakeRPC{
		healthy:    true,
		forwardErr: &RemoteCallError{Source: "prod", Kind: CallErrorTimeout, Message: "request timed out"},
	}

	result := testFetcher(rpc).Fetch(context.Background(), Options{ModuleIDs: []int{1}})

	assert.Equal(t, types.SourceStatusError, result.Status)
	assert.Contains(t, result.Error, "timed out")
	assert.Nil(t, result.Graph)
}

func TestFetcher_ReverseFailureFailsWholeSource(t *testing.T) {
	rpc := &fakeRPC{
		healthy: true,
		forward: &RawGraph{Nodes: []map[string]any{{"id": float64(1)}}},
		reverseErr: &RemoteCallError{
			Source: "prod", Kind: CallErrorApplication, Message: "remote error: boom",
		},
	}

	result := testFetcher(rpc).Fetch(context.Background(), Options{
		ModuleIDs:      []int{1},
		IncludeReverse: true,
	})

	assert.Equal(t, types.SourceStatusError, result.Status,
		"forward-only data must not be kept when the reverse fetch fails")
	assert.Contains(t, result.Error, "boom")
	assert.Nil(t, result.Graph)
}

func TestFetcher_ResolvesModulesByCategory(t *testing.T) {
	rpc := &fakeRPC{
		healthy:  true,
		resolved: []int{11, 12},
		forward:  &RawGraph{Nodes: []map[string]any{{"id": float64(11)}}},
	}

	result := testFetcher(rpc).Fetch(context.Background(), Options{
		CategoryPrefixes: []string{"Custom", "Internal"},
	})

	require.Equal(t, types.SourceStatusSuccess, result.Status)
	assert.Equal(t, [][]string{{"Custom", "Internal"}}, rpc.resolveCalls)
	assert.Equal(t, [][]int{{11, 12}}, rpc.forwardCalls)
}

func TestFetcher_ExplicitModuleIDsSkipResolution(t *testing.T) {
	rpc := &fakeRPC{
		healthy: true,
		forward: &RawGraph{Nodes: []map[string]any{{"id": float64(5)}}},
	}

	result := testFetcher(rpc).Fetch(context.Background(), Options{
		ModuleIDs:        []int{5},
		CategoryPrefixes: []string{"Custom"},
	})

	require.Equal(t, types.SourceStatusSuccess, result.Status)
	assert.Empty(t, rpc.resolveCalls)
}

func TestFetcher_NoModulesNoCategoriesUsesDefault(t *testing.T) {
	rpc := &fakeRPC{
		healthy: true,
		forward: &RawGraph{Nodes: []map[string]any{{"id": float64(1)}}},
	}

	result := testFetcher(rpc).Fetch(context.Background(), Options{})

	require.Equal(t, types.SourceStatusSuccess, result.Status)
	assert.Equal(t, [][]int{{defaultModuleID}}, rpc.forwardCalls)
}

func TestFetcher_EmptyCategoryResolutionFailsSource(t *testing.T) {
	rpc := &fakeRPC{healthy: true, resolved: []int{}}

	result := testFetcher(rpc).Fetch(context.Background(), Options{
		CategoryPrefixes: []string{"Nope"},
	})

	assert.Equal(t, types.SourceStatusError, result.Status)
	assert.Empty(t, rpc.forwardCalls)
}
