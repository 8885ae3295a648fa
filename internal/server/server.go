package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/GldzzPro/graph-sync/internal/config"
	"github.com/GldzzPro/graph-sync/internal/source"
	"github.com/GldzzPro/graph-sync/internal/syncer"
	"github.com/GldzzPro/graph-sync/internal/types"
)

// Runner executes sync runs and probes the store. Satisfied by
// *syncer.Syncer.
type Runner interface {
	Run(ctx context.Context, opts source.Options) (*syncer.Report, error)
	DefaultOptions() source.Options
	StoreHealth(ctx context.Context) types.HealthStatus
}

// Server is the HTTP front door: it accepts sync triggers, reports job
// progress and answers health probes. Runs execute asynchronously; the
// trigger response carries only the job handle.
type Server struct {
	cfg    *config.Config
	runner Runner
	jobs   *syncer.JobManager
	logger *slog.Logger

	httpServer *http.Server
}

// New creates a server around the given runner.
func New(cfg *config.Config, runner Runner, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:    cfg,
		runner: runner,
		jobs:   syncer.NewJobManager(),
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /trigger", s.handleTrigger)
	mux.HandleFunc("GET /jobs/{id}", s.handleJob)
	mux.HandleFunc("GET /healthcheck", s.handleHealthcheck)

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

// Handler exposes the route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe blocks serving HTTP until the context is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "address", s.httpServer.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// triggerRequest is the POST /trigger body. Every field is optional;
// omitted fields fall back to the configured sync defaults.
type triggerRequest struct {
	ModuleIDs        []int    `json:"module_ids"`
	CategoryPrefixes []string `json:"category_prefixes"`
	MaxDepth         *int     `json:"max_depth"`
	IncludeReverse   *bool    `json:"include_reverse"`
}

// triggerResponse is the POST /trigger reply: the handle for polling.
type triggerResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	var req triggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	opts := s.runner.DefaultOptions()
	if len(req.ModuleIDs) > 0 {
		opts.ModuleIDs = req.ModuleIDs
	}
	if len(req.CategoryPrefixes) > 0 {
		opts.CategoryPrefixes = req.CategoryPrefixes
	}
	if req.MaxDepth != nil {
		opts.MaxDepth = req.MaxDepth
	}
	if req.IncludeReverse != nil {
		opts.IncludeReverse = *req.IncludeReverse
	}

	job := s.jobs.Create()
	s.logger.Info("sync triggered", "job_id", job.ID,
		"module_ids", opts.ModuleIDs,
		"category_prefixes", opts.CategoryPrefixes,
		"include_reverse", opts.IncludeReverse)

	go s.runJob(job.ID, opts)

	writeJSON(w, http.StatusAccepted, triggerResponse{JobID: job.ID, Status: string(job.Status)})
}

// runJob executes one sync run detached from the trigger request, so jobs
// survive the client disconnecting.
func (s *Server) runJob(jobID string, opts source.Options) {
	s.jobs.Start(jobID)

	report, err := s.runner.Run(context.Background(), opts)
	if err != nil {
		s.logger.Error("sync run failed", "job_id", jobID, "error", err,
			"retryable", types.IsRetryable(err))
		s.jobs.Fail(jobID, report, err.Error())
		return
	}

	s.logger.Info("sync run succeeded", "job_id", jobID,
		"nodes_written", report.Stats.NodesWritten,
		"edges_written", report.Stats.EdgesWritten)
	s.jobs.Complete(jobID, report)
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job, ok := s.jobs.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "job not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// healthcheckResponse reports the service, a live store probe, and the
// configured source names. Sources are listed, not probed; probing them
// belongs to a sync run.
type healthcheckResponse struct {
	Status  types.HealthState  `json:"status"`
	Store   types.HealthStatus `json:"store"`
	Sources []string           `json:"sources"`
}

func (s *Server) handleHealthcheck(w http.ResponseWriter, r *http.Request) {
	names := make([]string, len(s.cfg.Sources))
	for i, src := range s.cfg.Sources {
		names[i] = src.Name
	}

	storeHealth := s.runner.StoreHealth(r.Context())

	// The service answering at all is alive; a dead store degrades it
	// rather than failing the probe.
	status := types.HealthStateHealthy
	if !storeHealth.IsHealthy() {
		status = types.HealthStateDegraded
	}

	writeJSON(w, http.StatusOK, healthcheckResponse{
		Status:  status,
		Store:   storeHealth,
		Sources: names,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
