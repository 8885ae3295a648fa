package source

import (
	"context"
	"log/slog"

	"github.com/GldzzPro/graph-sync/internal/config"
	"github.com/GldzzPro/graph-sync/internal/graph"
	"github.com/GldzzPro/graph-sync/internal/types"
)

// defaultModuleID anchors a run that names neither module IDs nor category
// prefixes: module 1 is the platform's base module, the root every
// dependency chain terminates in.
const defaultModuleID = 1

// Options select what one run fetches from each source.
type Options struct {
	// ModuleIDs names the modules to query explicitly. When empty, IDs are
	// resolved from CategoryPrefixes.
	ModuleIDs []int `json:"module_ids,omitempty"`

	// CategoryPrefixes filter the lightweight ID lookup used when ModuleIDs
	// is empty.
	CategoryPrefixes []string `json:"category_prefixes,omitempty"`

	// MaxDepth bounds traversal on the remote side; nil means remote default.
	MaxDepth *int `json:"max_depth,omitempty"`

	// IncludeReverse also fetches the reverse dependency subgraph.
	IncludeReverse bool `json:"include_reverse"`
}

// Result is the complete per-source outcome of one fetch: either a merged
// per-source graph or an isolated error, never partially populated.
type Result struct {
	Source string             `json:"source"`
	Status types.SourceStatus `json:"status"`
	Error  string             `json:"error,omitempty"`
	Nodes  int                `json:"nodes"`
	Edges  int                `json:"edges"`

	// Graph carries the merged forward/reverse fragment on success.
	Graph *graph.Graph `json:"-"`
}

func successResult(sourceName string, g *graph.Graph) Result {
	return Result{
		Source: sourceName,
		Status: types.SourceStatusSuccess,
		Nodes:  g.NodeCount(),
		Edges:  g.EdgeCount(),
		Graph:  g,
	}
}

func errorResult(sourceName, message string) Result {
	return Result{
		Source: sourceName,
		Status: types.SourceStatusError,
		Error:  message,
	}
}

// Fetcher produces one Result for one source. Failures are isolated into the
// result; nothing escapes its boundary.
type Fetcher struct {
	source config.SourceConfig
	rpc    RPC
	logger *slog.Logger
}

// NewFetcher creates a fetcher backed by the real JSON-RPC client.
func NewFetcher(source config.SourceConfig) *Fetcher {
	return newFetcher(source, NewClient(source))
}

func newFetcher(source config.SourceConfig, rpc RPC) *Fetcher {
	return &Fetcher{
		source: source,
		rpc:    rpc,
		logger: slog.Default().With("source", source.Name),
	}
}

// Fetch health-checks the source, resolves the module set, fetches the
// forward and optionally reverse subgraphs, and merges them into one
// per-source graph. Every failure path returns an error Result; a reverse
// fetch failure fails the whole source rather than silently keeping
// forward-only data.
func (f *Fetcher) Fetch(ctx context.Context, opts Options) Result {
	if !f.rpc.HealthCheck(ctx) {
		f.logger.Warn("skipping unhealthy source")
		return errorResult(f.source.Name, "instance not healthy or not reachable")
	}

	moduleIDs, err := f.resolveModuleIDs(ctx, opts)
	if err != nil {
		return errorResult(f.source.Name, err.Error())
	}
	if len(moduleIDs) == 0 {
		return errorResult(f.source.Name, "no modules matched the requested categories")
	}

	callOpts := CallOptions{MaxDepth: opts.MaxDepth}

	f.logger.Info("fetching forward graph", "modules", len(moduleIDs))
	forward, err := f.rpc.FetchForward(ctx, moduleIDs, callOpts)
	if err != nil {
		f.logger.Error("forward fetch failed", "error", err)
		return errorResult(f.source.Name, err.Error())
	}

	fragments := []graph.Fragment{{
		SourceName: f.source.Name,
		Kind:       graph.KindDependency,
		Nodes:      forward.Nodes,
		Edges:      forward.Edges,
	}}

	if opts.IncludeReverse {
		f.logger.Info("fetching reverse graph", "modules", len(moduleIDs))
		reverse, err := f.rpc.FetchReverse(ctx, moduleIDs, callOpts)
		if err != nil {
			// Reported, not swallowed: forward-only data would make a
			// partially synced source look fully synced.
			f.logger.Error("reverse fetch failed", "error", err)
			return errorResult(f.source.Name, err.Error())
		}
		fragments = append(fragments, graph.Fragment{
			SourceName: f.source.Name,
			Kind:       graph.KindReverseDependency,
			Nodes:      reverse.Nodes,
			Edges:      reverse.Edges,
		})
	}

	merged := graph.Merge(fragments...)
	f.logger.Info("fetched source graph",
		"nodes", merged.NodeCount(), "edges", merged.EdgeCount())

	return successResult(f.source.Name, merged)
}

// resolveModuleIDs picks the node-key set for the run: explicit IDs win,
// otherwise a category-prefix lookup, otherwise the fixed default module.
func (f *Fetcher) resolveModuleIDs(ctx context.Context, opts Options) ([]int, error) {
	if len(opts.ModuleIDs) > 0 {
		return opts.ModuleIDs, nil
	}

	if len(opts.CategoryPrefixes) > 0 {
		f.logger.Info("resolving modules by category", "prefixes", opts.CategoryPrefixes)
		return f.rpc.ResolveModules(ctx, opts.CategoryPrefixes)
	}

	return []int{defaultModuleID}, nil
}
