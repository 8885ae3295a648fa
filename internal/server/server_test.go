package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GldzzPro/graph-sync/internal/config"
	"github.com/GldzzPro/graph-sync/internal/source"
	"github.com/GldzzPro/graph-sync/internal/store"
	"github.com/GldzzPro/graph-sync/internal/syncer"
	"github.com/GldzzPro/graph-sync/internal/types"
)

// fakeRunner records the options it was run with and returns a canned
// report, error, and store probe result.
type fakeRunner struct {
	mu       sync.Mutex
	defaults source.Options
	report   *syncer.Report
	err      error
	health   types.HealthStatus
	lastOpts *source.Options
}

func (f *fakeRunner) DefaultOptions() source.Options { return f.defaults }

func (f *fakeRunner) StoreHealth(ctx context.Context) types.HealthStatus {
	if f.health.State == "" {
		return types.Healthy("connected")
	}
	return f.health
}

func (f *fakeRunner) Run(ctx context.Context, opts source.Options) (*syncer.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastOpts = &opts
	return f.report, f.err
}

func (f *fakeRunner) runOptions() *source.Options {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOpts
}

func serverConfig(sourceNames ...string) *config.Config {
	cfg := config.DefaultConfig()
	for _, name := range sourceNames {
		cfg.Sources = append(cfg.Sources, config.SourceConfig{
			Name: name,
			URL:  "http://" + name + ".example.com",
		})
	}
	return cfg
}

func successReport() *syncer.Report {
	return &syncer.Report{
		Sources: []source.Result{
			{Source: "a", Status: types.SourceStatusSuccess, Nodes: 2, Edges: 1},
		},
		MergedNodes: 2,
		MergedEdges: 1,
		Stats:       store.LoadStats{NodesWritten: 2, EdgesWritten: 1},
	}
}

func postTrigger(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/trigger", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func getJob(handler http.Handler, id string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/jobs/"+id, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func waitForTerminal(t *testing.T, handler http.Handler, id string) syncer.Job {
	t.Helper()
	var job syncer.Job
	require.Eventually(t, func() bool {
		rec := getJob(handler, id)
		if rec.Code != http.StatusOK {
			return false
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
		return job.Status.IsTerminal()
	}, 2*time.Second, 10*time.Millisecond)
	return job
}

func TestServer_TriggerReturnsJobHandle(t *testing.T) {
	runner := &fakeRunner{report: successReport()}
	srv := New(serverConfig("a"), runner, nil)

	rec := postTrigger(t, srv.Handler(), `{}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		JobID  string `json:"job_id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.JobID)
	assert.Equal(t, "pending", resp.Status)
}

func TestServer_JobReachesSucceeded(t *testing.T) {
	runner := &fakeRunner{report: successReport()}
	srv := New(serverConfig("a"), runner, nil)

	rec := postTrigger(t, srv.Handler(), `{}`)
	var resp struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	job := waitForTerminal(t, srv.Handler(), resp.JobID)
	assert.Equal(t, types.JobStatusSucceeded, job.Status)
	require.NotNil(t, job.Report)
	assert.Equal(t, 2, job.Report.Stats.NodesWritten)
}

func TestServer_JobReachesFailed(t *testing.T) {
	runner := &fakeRunner{
		report: &syncer.Report{},
		err:    errors.New("node upsert failed"),
	}
	srv := New(serverConfig("a"), runner, nil)

	rec := postTrigger(t, srv.Handler(), `{}`)
	var resp struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	job := waitForTerminal(t, srv.Handler(), resp.JobID)
	assert.Equal(t, types.JobStatusFailed, job.Status)
	assert.Equal(t, "node upsert failed", job.Error)
}

func TestServer_TriggerOverridesDefaults(t *testing.T) {
	depth := 2
	runner := &fakeRunner{
		defaults: source.Options{
			CategoryPrefixes: []string{"Custom"},
			IncludeReverse:   true,
		},
		report: successReport(),
	}
	srv := New(serverConfig("a"), runner, nil)

	rec := postTrigger(t, srv.Handler(),
		`{"module_ids":[4,7],"max_depth":2,"include_reverse":false}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	waitForTerminal(t, srv.Handler(), resp.JobID)

	opts := runner.runOptions()
	require.NotNil(t, opts)
	assert.Equal(t, []int{4, 7}, opts.ModuleIDs)
	assert.Equal(t, []string{"Custom"}, opts.CategoryPrefixes)
	require.NotNil(t, opts.MaxDepth)
	assert.Equal(t, depth, *opts.MaxDepth)
	assert.False(t, opts.IncludeReverse)
}

func TestServer_TriggerEmptyBodyUsesDefaults(t *testing.T) {
	runner := &fakeRunner{
		defaults: source.Options{CategoryPrefixes: []string{"Custom"}, IncludeReverse: true},
		report:   successReport(),
	}
	srv := New(serverConfig("a"), runner, nil)

	rec := postTrigger(t, srv.Handler(), "")
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	waitForTerminal(t, srv.Handler(), resp.JobID)

	opts := runner.runOptions()
	require.NotNil(t, opts)
	assert.Equal(t, []string{"Custom"}, opts.CategoryPrefixes)
	assert.True(t, opts.IncludeReverse)
}

func TestServer_TriggerMalformedBody(t *testing.T) {
	runner := &fakeRunner{report: successReport()}
	srv := New(serverConfig("a"), runner, nil)

	rec := postTrigger(t, srv.Handler(), `{"module_ids": "not a list"`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_JobNotFound(t *testing.T) {
	srv := New(serverConfig("a"), &fakeRunner{}, nil)

	rec := getJob(srv.Handler(), "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Healthcheck(t *testing.T) {
	srv := New(serverConfig("alpha", "beta"), &fakeRunner{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthcheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, types.HealthStateHealthy, resp.Status)
	assert.Equal(t, types.HealthStateHealthy, resp.Store.State)
	assert.Equal(t, []string{"alpha", "beta"}, resp.Sources)
}

func TestServer_HealthcheckDegradedWhenStoreDown(t *testing.T) {
	runner := &fakeRunner{health: types.Unhealthy("connection refused")}
	srv := New(serverConfig("alpha"), runner, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	// The service itself is alive; the store state is reported, not gating.
	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthcheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, types.HealthStateDegraded, resp.Status)
	assert.Equal(t, types.HealthStateUnhealthy, resp.Store.State)
	assert.Equal(t, "connection refused", resp.Store.Message)
}

func TestServer_TriggerRequiresPost(t *testing.T) {
	srv := New(serverConfig("a"), &fakeRunner{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/trigger", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
