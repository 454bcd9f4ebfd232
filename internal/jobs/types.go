package jobs

import (
	"context"
	"errors"
	"time"
)

// ErrJobNotFound is returned by JobStore lookups for unknown ids.
var ErrJobNotFound = errors.New("job not found")

// ErrQueueClosed is returned when publishing to a stopped queue.
var ErrQueueClosed = errors.New("queue is closed")

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job completed successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the job failed.
	JobStatusFailed JobStatus = "failed"
	// JobStatusRetrying indicates the job failed and is waiting for a retry.
	JobStatusRetrying JobStatus = "retrying"
)

// ParseJobStatus validates a status name.
func ParseJobStatus(s string) (JobStatus, bool) {
	switch st := JobStatus(s); st {
	case JobStatusPending, JobStatusRunning, JobStatusCompleted, JobStatusFailed, JobStatusRetrying:
		return st, true
	}
	return "", false
}

// RefreshJob asks for the dataset to be reloaded from its source.
type RefreshJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// Reason records who or what asked for the refresh.
	Reason string `json:"reason,omitempty"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains the last failure, if any.
	Error string `json:"error,omitempty"`

	// SnapshotID and RowCount describe the snapshot the job produced.
	SnapshotID string `json:"snapshot_id,omitempty"`
	RowCount   int    `json:"row_count"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Publisher enqueues refresh jobs.
type Publisher interface {
	// PublishRefresh enqueues job, filling in its id and defaults.
	PublishRefresh(ctx context.Context, job *RefreshJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer processes queued jobs.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler runs one attempt of a job. It may record results on job and
// should return an error if the attempt failed and should be retried.
type JobHandler func(ctx context.Context, job *RefreshJob) error

// JobStore keeps job state for status queries.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *RefreshJob) error

	// GetJob retrieves a job by ID. Unknown ids yield ErrJobNotFound.
	GetJob(ctx context.Context, jobID string) (*RefreshJob, error)

	// ListJobs retrieves jobs, newest first, with optional filtering.
	ListJobs(ctx context.Context, filter JobFilter) ([]*RefreshJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
