package syncer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GldzzPro/graph-sync/internal/config"
	"github.com/GldzzPro/graph-sync/internal/graph"
	"github.com/GldzzPro/graph-sync/internal/source"
	"github.com/GldzzPro/graph-sync/internal/store"
	"github.com/GldzzPro/graph-sync/internal/types"
)

func testConfig(sourceNames ...string) *config.Config {
	cfg := config.DefaultConfig()
	for _, name := range sourceNames {
		cfg.Sources = append(cfg.Sources, config.SourceConfig{
			Name: name,
			URL:  "http://" + name + ".example.com",
		})
	}
	return cfg
}

func sourceGraph(sourceName string, rawIDs ...int) *graph.Graph {
	g := &graph.Graph{}
	for _, id := range rawIDs {
		g.Nodes = append(g.Nodes, graph.Node{
			ID:          graph.CanonicalID(sourceName, id),
			DisplayName: "mod",
			SourceName:  sourceName,
			Properties:  map[string]any{},
		})
	}
	for i := 1; i < len(rawIDs); i++ {
		g.Edges = append(g.Edges, graph.Edge{
			SourceID:   graph.CanonicalID(sourceName, rawIDs[i]),
			TargetID:   graph.CanonicalID(sourceName, rawIDs[0]),
			Kind:       graph.KindDependency,
			Properties: map[string]any{},
		})
	}
	return g
}

// testSyncer wires a syncer against stubbed fetch results and a mock store.
func testSyncer(cfg *config.Config, results []source.Result, st store.Store) *Syncer {
	s := New(cfg, nil)
	s.fetchAll = func(ctx context.Context, sources []config.SourceConfig, opts source.Options) []source.Result {
		return results
	}
	if st != nil {
		s.newStore = func() (store.Store, error) { return st, nil }
	}
	return s
}

func successFor(name string, g *graph.Graph) source.Result {
	return source.Result{
		Source: name,
		Status: types.SourceStatusSuccess,
		Nodes:  g.NodeCount(),
		Edges:  g.EdgeCount(),
		Graph:  g,
	}
}

func failureFor(name, message string) source.Result {
	return source.Result{Source: name, Status: types.SourceStatusError, Error: message}
}

func TestSyncer_RunLoadsMergedGraph(t *testing.T) {
	mock := store.NewMockStore()
	results := []source.Result{
		successFor("a", sourceGraph("a", 1, 2)),
		successFor("b", sourceGraph("b", 1, 3)),
	}

	s := testSyncer(testConfig("a", "b"), results, mock)
	report, err := s.Run(context.Background(), s.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 4, report.MergedNodes)
	assert.Equal(t, 2, report.MergedEdges)
	assert.Equal(t, 2, report.SucceededSources())
	assert.Equal(t, 4, report.Stats.NodesWritten)
	assert.Equal(t, 2, report.Stats.EdgesWritten)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
}

func TestSyncer_PartialSourceFailureStillLoads(t *testing.T) {
	mockStore := store.NewMockStore()
	results := []source.Result{
		successFor("a", sourceGraph("a", 1, 2)),
		failureFor("b", "instance not healthy or not reachable"),
	}

	s := testSyncer(testConfig("a", "b"), results, mockStore)
	report, err := s.Run(context.Background(), s.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, report.SucceededSources())
	assert.Equal(t, 2, report.MergedNodes)
	assert.Len(t, mockStore.GetNodes(), 2)

	// The failed source stays visible in the report.
	require.Len(t, report.Sources, 2)
	assert.Equal(t, types.SourceStatusError, report.Sources[1].Status)
}

func TestSyncer_AllSourcesFailedLoadsNothing(t *testing.T) {
	mockStore := store.NewMockStore()
	results := []source.Result{
		failureFor("a", "timeout"),
		failureFor("b", "timeout"),
	}

	s := testSyncer(testConfig("a", "b"), results, mockStore)
	report, err := s.Run(context.Background(), s.DefaultOptions())
	require.NoError(t, err)

	assert.Zero(t, report.MergedNodes)
	assert.Zero(t, report.Stats.NodesWritten)
	assert.Empty(t, mockStore.GetNodes())
}

func TestSyncer_NoSourcesConfigured(t *testing.T) {
	s := New(testConfig(), nil)
	_, err := s.Run(context.Background(), s.DefaultOptions())
	require.Error(t, err)
	assert.Equal(t, ErrCodeSyncNoSources, types.CodeOf(err))
}

func TestSyncer_StoreConnectFailureReturnsReport(t *testing.T) {
	mockStore := store.NewMockStore()
	mockStore.SetConnectError(types.NewError(store.ErrCodeStoreConnectionFailed, "refused"))

	results := []source.Result{successFor("a", sourceGraph("a", 1))}
	s := testSyncer(testConfig("a"), results, mockStore)

	report, err := s.Run(context.Background(), s.DefaultOptions())
	require.Error(t, err)
	assert.Equal(t, store.ErrCodeStoreConnectionFailed, types.CodeOf(err))

	// Fetch results survive the store failure.
	assert.Equal(t, 1, report.SucceededSources())
	assert.Equal(t, 1, report.MergedNodes)
}

func TestSyncer_StoreClosedOnSuccess(t *testing.T) {
	mockStore := store.NewMockStore()

	results := []source.Result{successFor("a", sourceGraph("a", 1))}
	s := testSyncer(testConfig("a"), results, mockStore)

	_, err := s.Run(context.Background(), s.DefaultOptions())
	require.NoError(t, err)
	assert.False(t, mockStore.IsConnected())
}

func TestSyncer_DefaultOptions(t *testing.T) {
	cfg := testConfig("a")
	cfg.Sync.CategoryPrefixes = []string{"Custom", "Localization"}
	cfg.Sync.IncludeReverse = true
	cfg.Sync.MaxDepth = 3

	opts := New(cfg, nil).DefaultOptions()

	assert.Equal(t, []string{"Custom", "Localization"}, opts.CategoryPrefixes)
	assert.True(t, opts.IncludeReverse)
	require.NotNil(t, opts.MaxDepth)
	assert.Equal(t, 3, *opts.MaxDepth)
}

func TestSyncer_DefaultOptionsZeroDepthMeansRemoteDefault(t *testing.T) {
	cfg := testConfig("a")
	cfg.Sync.MaxDepth = 0

	opts := New(cfg, nil).DefaultOptions()
	assert.Nil(t, opts.MaxDepth)
}

func TestSyncer_StoreHealthProbe(t *testing.T) {
	mockStore := store.NewMockStore()
	s := testSyncer(testConfig("a"), nil, mockStore)

	health := s.StoreHealth(context.Background())
	assert.True(t, health.IsHealthy())

	// The probe connection is released, not held.
	assert.False(t, mockStore.IsConnected())
}

func TestSyncer_StoreHealthUnreachable(t *testing.T) {
	mockStore := store.NewMockStore()
	mockStore.SetConnectError(types.NewError(store.ErrCodeStoreConnectionFailed, "refused"))
	s := testSyncer(testConfig("a"), nil, mockStore)

	health := s.StoreHealth(context.Background())
	assert.Equal(t, types.HealthStateUnhealthy, health.State)
	assert.Contains(t, health.Message, "refused")
}

func TestJobManager_Lifecycle(t *testing.T) {
	m := NewJobManager()

	job := m.Create()
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, types.JobStatusPending, job.Status)

	m.Start(job.ID)
	running, ok := m.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, types.JobStatusRunning, running.Status)
	require.NotNil(t, running.StartedAt)

	report := &Report{StartedAt: time.Now(), FinishedAt: time.Now()}
	m.Complete(job.ID, report)

	done, ok := m.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, types.JobStatusSucceeded, done.Status)
	assert.True(t, done.Status.IsTerminal())
	require.NotNil(t, done.FinishedAt)
	assert.Equal(t, report, done.Report)
}

func TestJobManager_FailKeepsReport(t *testing.T) {
	m := NewJobManager()
	job := m.Create()
	m.Start(job.ID)

	report := &Report{Sources: []source.Result{failureFor("a", "timeout")}}
	m.Fail(job.ID, report, "node upsert failed")

	failed, ok := m.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, types.JobStatusFailed, failed.Status)
	assert.Equal(t, "node upsert failed", failed.Error)
	require.NotNil(t, failed.Report)
	assert.Len(t, failed.Report.Sources, 1)
}

func TestJobManager_UnknownJob(t *testing.T) {
	_, ok := NewJobManager().Get("nope")
	assert.False(t, ok)
}

func TestJobManager_DistinctIDs(t *testing.T) {
	m := NewJobManager()
	assert.NotEqual(t, m.Create().ID, m.Create().ID)
}
