package syncer

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GldzzPro/graph-sync/internal/types"
)

// Job tracks one triggered sync run through its lifecycle.
type Job struct {
	ID        string          `json:"id"`
	Status    types.JobStatus `json:"status"`
	CreatedAt time.Time       `json:"created_at"`

	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Report is populated when the run finishes, on success and on failure
	// alike, so per-source outcomes survive a failed store phase.
	Report *Report `json:"report,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// JobManager holds job state in memory. Jobs do not survive a restart and
// are never evicted; a sync service triggers on the order of runs per day.
type JobManager struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewJobManager creates an empty job manager.
func NewJobManager() *JobManager {
	return &JobManager{jobs: make(map[string]*Job)}
}

// Create registers a new pending job and returns a copy of it.
func (m *JobManager) Create() Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	job := &Job{
		ID:        uuid.New().String(),
		Status:    types.JobStatusPending,
		CreatedAt: time.Now(),
	}
	m.jobs[job.ID] = job
	return *job
}

// Start marks the job running.
func (m *JobManager) Start(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if job, ok := m.jobs[id]; ok {
		now := time.Now()
		job.Status = types.JobStatusRunning
		job.StartedAt = &now
	}
}

// Complete marks the job succeeded and attaches its report.
func (m *JobManager) Complete(id string, report *Report) {
	m.finish(id, types.JobStatusSucceeded, report, "")
}

// Fail marks the job failed, keeping whatever report the run produced.
func (m *JobManager) Fail(id string, report *Report, message string) {
	m.finish(id, types.JobStatusFailed, report, message)
}

func (m *JobManager) finish(id string, status types.JobStatus, report *Report, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if job, ok := m.jobs[id]; ok {
		now := time.Now()
		job.Status = status
		job.FinishedAt = &now
		job.Report = report
		job.Error = message
	}
}

// Get returns a copy of the job, if it exists.
func (m *JobManager) Get(id string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}
