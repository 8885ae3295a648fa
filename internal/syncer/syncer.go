package syncer

import (
	"context"
	"log/slog"
	"time"

	"github.com/GldzzPro/graph-sync/internal/config"
	"github.com/GldzzPro/graph-sync/internal/graph"
	"github.com/GldzzPro/graph-sync/internal/source"
	"github.com/GldzzPro/graph-sync/internal/store"
	"github.com/GldzzPro/graph-sync/internal/types"
)

// Syncer error codes
const (
	ErrCodeSyncNoSources types.ErrorCode = "SYNC_NO_SOURCES"
)

// Report is the outcome of one complete sync run: every per-source result
// plus the merged graph shape and what the store accepted.
type Report struct {
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Sources    []source.Result `json:"sources"`

	// MergedNodes and MergedEdges describe the cross-source union graph
	// before loading.
	MergedNodes int `json:"merged_nodes"`
	MergedEdges int `json:"merged_edges"`

	Stats store.LoadStats `json:"stats"`
}

// SucceededSources counts sources that contributed a graph to the run.
func (r *Report) SucceededSources() int {
	n := 0
	for _, res := range r.Sources {
		if res.Status == types.SourceStatusSuccess {
			n++
		}
	}
	return n
}

// Syncer drives one full fetch, merge and load cycle.
type Syncer struct {
	cfg      *config.Config
	fetchAll func(ctx context.Context, sources []config.SourceConfig, opts source.Options) []source.Result
	newStore func() (store.Store, error)
	logger   *slog.Logger
}

// New creates a syncer backed by the real fetchers and a Neo4j store.
func New(cfg *config.Config, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		cfg:      cfg,
		fetchAll: source.NewCoordinator().FetchAll,
		newStore: func() (store.Store, error) {
			return store.NewNeo4jStore(store.ConfigFrom(cfg.Store))
		},
		logger: logger,
	}
}

// DefaultOptions builds run options from the configured sync defaults.
// Callers layer trigger-specific overrides on top.
func (s *Syncer) DefaultOptions() source.Options {
	opts := source.Options{
		CategoryPrefixes: s.cfg.Sync.CategoryPrefixes,
		IncludeReverse:   s.cfg.Sync.IncludeReverse,
	}
	if s.cfg.Sync.MaxDepth > 0 {
		depth := s.cfg.Sync.MaxDepth
		opts.MaxDepth = &depth
	}
	return opts
}

// StoreHealth probes the graph store with a short-lived connection. Used by
// the healthcheck endpoint; sync runs hold their own connection instead.
func (s *Syncer) StoreHealth(ctx context.Context) types.HealthStatus {
	st, err := s.newStore()
	if err != nil {
		return types.Unhealthy(err.Error())
	}

	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := st.Connect(probeCtx); err != nil {
		return types.Unhealthy(err.Error())
	}
	defer func() {
		if closeErr := st.Close(ctx); closeErr != nil {
			s.logger.Warn("store close failed after health probe", "error", closeErr)
		}
	}()

	return st.Health(probeCtx)
}

// Run fetches from every configured source, merges the successful graphs and
// loads the union into the store. Per-source failures land in the report; an
// error return means the run itself could not complete, store phase included.
func (s *Syncer) Run(ctx context.Context, opts source.Options) (*Report, error) {
	report := &Report{StartedAt: time.Now()}
	defer func() { report.FinishedAt = time.Now() }()

	if len(s.cfg.Sources) == 0 {
		return report, types.NewError(ErrCodeSyncNoSources, "no sources configured")
	}

	report.Sources = s.fetchAll(ctx, s.cfg.Sources, opts)

	graphs := make([]*graph.Graph, 0, len(report.Sources))
	for _, res := range report.Sources {
		if res.Status == types.SourceStatusSuccess && res.Graph != nil {
			graphs = append(graphs, res.Graph)
		}
	}

	merged := graph.MergeGraphs(graphs...)
	report.MergedNodes = merged.NodeCount()
	report.MergedEdges = merged.EdgeCount()

	s.logger.Info("merged source graphs",
		"sources_succeeded", report.SucceededSources(),
		"sources_total", len(report.Sources),
		"nodes", report.MergedNodes,
		"edges", report.MergedEdges)

	st, err := s.newStore()
	if err != nil {
		return report, err
	}
	if err := st.Connect(ctx); err != nil {
		return report, err
	}
	defer func() {
		if closeErr := st.Close(ctx); closeErr != nil {
			s.logger.Warn("store close failed", "error", closeErr)
		}
	}()

	if err := store.Bootstrap(ctx, st, s.logger); err != nil {
		return report, err
	}

	stats, err := store.NewLoader(st, s.logger).Load(ctx, merged)
	report.Stats = stats
	if err != nil {
		return report, err
	}

	s.logger.Info("sync run complete",
		"nodes_written", stats.NodesWritten,
		"edges_written", stats.EdgesWritten,
		"edges_skipped", stats.EdgesSkipped)

	return report, nil
}
