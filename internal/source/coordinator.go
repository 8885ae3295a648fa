package source

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/GldzzPro/graph-sync/internal/config"
)

// Coordinator fans one fetch out across every configured source
// concurrently. Each source's failure is captured as a value in its Result;
// a failing source never cancels or blocks its siblings.
type Coordinator struct {
	newFetcher func(config.SourceConfig) *Fetcher
	logger     *slog.Logger
}

// NewCoordinator creates a coordinator using the real JSON-RPC fetcher.
func NewCoordinator() *Coordinator {
	return &Coordinator{
		newFetcher: NewFetcher,
		logger:     slog.Default(),
	}
}

// FetchAll runs one Fetch per source concurrently and collects every
// per-source result, success or failure. Results carry their source name;
// no ordering is promised between sources.
func (c *Coordinator) FetchAll(ctx context.Context, sources []config.SourceConfig, opts Options) []Result {
	if len(sources) == 0 {
		c.logger.Warn("no sources configured, nothing to fetch")
		return nil
	}

	c.logger.Info("fetching from sources", "count", len(sources),
		"include_reverse", opts.IncludeReverse)

	results := make([]Result, len(sources))

	var g errgroup.Group
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			results[i] = c.fetchOne(ctx, src, opts)
			return nil
		})
	}
	// Workers never return errors; failures live in the results.
	_ = g.Wait()

	return results
}

// fetchOne runs a single source's fetch, converting even a panic into an
// isolated error result so one source can never take down the fan-out.
func (c *Coordinator) fetchOne(ctx context.Context, src config.SourceConfig, opts Options) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("fetch panicked", "source", src.Name, "panic", r)
			result = errorResult(src.Name, fmt.Sprintf("unhandled failure: %v", r))
		}
	}()

	return c.newFetcher(src).Fetch(ctx, opts)
}
